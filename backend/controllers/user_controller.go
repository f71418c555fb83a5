package controllers

import (
	"time"

	"advocatr/backend/middleware"
	"advocatr/backend/models"
	"advocatr/backend/services"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Auth     *services.AuthService
	Progress *services.ProgressService
}

func NewUserController(auth *services.AuthService, progress *services.ProgressService) *UserController {
	return &UserController{Auth: auth, Progress: progress}
}

type ProfileResponse struct {
	User        models.User            `json:"user"`
	LastLoginAt *time.Time             `json:"lastLoginAt"`
	Progress    models.ProgressSummary `json:"progress"`
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the user with last login time and completion summary
// @Tags users
// @Produce json
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security SessionCookie
// @Router /api/user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	return uc.profile(c, *middleware.CurrentUser(c))
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Changes username or email. Changing the password requires oldPassword.
// @Tags users
// @Accept json
// @Produce json
// @Param request body services.UpdateProfileInput true "Fields to change"
// @Success 200 {object} ProfileResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security SessionCookie
// @Router /api/user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	var input services.UpdateProfileInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	user, err := uc.Auth.UpdateProfile(c.UserContext(), middleware.CurrentUser(c).ID, input)
	if err != nil {
		return err
	}
	return uc.profile(c, *user)
}

func (uc *UserController) profile(c *fiber.Ctx, user models.User) error {
	ctx := c.UserContext()

	lastLogin, err := uc.Auth.LastLogin(ctx, user.ID)
	if err != nil {
		return err
	}
	summary, err := uc.Progress.Summary(ctx, user.ID)
	if err != nil {
		return err
	}
	return c.JSON(ProfileResponse{User: user, LastLoginAt: lastLogin, Progress: summary})
}
