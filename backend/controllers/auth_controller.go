package controllers

import (
	"time"

	"advocatr/backend/config"
	"advocatr/backend/middleware"
	"advocatr/backend/models"
	"advocatr/backend/services"
	"advocatr/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Auth *services.AuthService
	Cfg  *config.Config
}

func NewAuthController(auth *services.AuthService, cfg *config.Config) *AuthController {
	return &AuthController{Auth: auth, Cfg: cfg}
}

type SessionResponse struct {
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" example:"user@example.com"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword" minLength:"6"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates an account and opens a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.RegisterInput true "Registration data"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	res, err := ac.Auth.Register(c.UserContext(), input, sessionMeta(c))
	if err != nil {
		return err
	}
	utils.SetSessionCookie(c, res.Token, res.Session.ExpiresAt, ac.Cfg.CookieSecure)
	return utils.Created(c, ac.sessionResponse(res))
}

// Login godoc
// @Summary User login
// @Description Checks credentials and sets the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.LoginInput true "Login credentials"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	res, err := ac.Auth.Login(c.UserContext(), input, sessionMeta(c))
	if err != nil {
		return err
	}
	utils.SetSessionCookie(c, res.Token, res.Session.ExpiresAt, ac.Cfg.CookieSecure)
	return c.JSON(ac.sessionResponse(res))
}

// Logout godoc
// @Summary Log out
// @Description Ends the current session. Succeeds without a session too.
// @Tags auth
// @Produce json
// @Success 200 {object} utils.MessageResponse
// @Router /api/logout [post]
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	if err := ac.Auth.Logout(c.UserContext(), utils.ExtractSessionToken(c)); err != nil {
		return err
	}
	utils.ClearSessionCookie(c, ac.Cfg.CookieSecure)
	return utils.Message(c, "Logged out")
}

// CurrentUser godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} utils.ErrorResponse
// @Security SessionCookie
// @Router /api/user [get]
func (ac *AuthController) CurrentUser(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}

// ForgotPassword godoc
// @Summary Request a password reset link
// @Description Always answers with the same message so that account existence is not revealed
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Account email"
// @Success 200 {object} utils.MessageResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Router /api/forgot-password [post]
func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var input ForgotPasswordRequest
	if err := parseBody(c, &input); err != nil {
		return err
	}

	msg, err := ac.Auth.RequestPasswordReset(c.UserContext(), input.Email)
	if err != nil {
		return err
	}
	return utils.Message(c, msg)
}

// ResetPassword godoc
// @Summary Reset password with a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Token and new password"
// @Success 200 {object} utils.MessageResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/reset-password [post]
func (ac *AuthController) ResetPassword(c *fiber.Ctx) error {
	var input ResetPasswordRequest
	if err := parseBody(c, &input); err != nil {
		return err
	}

	if err := ac.Auth.ResetPassword(c.UserContext(), input.Token, input.NewPassword); err != nil {
		return err
	}
	return utils.Message(c, "Password has been reset")
}

func (ac *AuthController) sessionResponse(res *services.SessionResult) SessionResponse {
	return SessionResponse{
		User:      res.User,
		Token:     res.Token,
		ExpiresAt: res.Session.ExpiresAt,
	}
}
