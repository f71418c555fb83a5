package controllers

import (
	"advocatr/backend/services"
	"advocatr/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AdminController struct {
	Auth *services.AuthService
}

func NewAdminController(auth *services.AuthService) *AdminController {
	return &AdminController{Auth: auth}
}

type AdminResetPasswordRequest struct {
	NewPassword string `json:"newPassword" minLength:"6"`
}

// ResetUserPassword godoc
// @Summary Set a user's password
// @Description Replaces the password and ends all of the user's sessions
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body AdminResetPasswordRequest true "New password"
// @Success 200 {object} utils.MessageResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security SessionCookie
// @Router /api/admin/users/{id}/reset-password [post]
func (ac *AdminController) ResetUserPassword(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var input AdminResetPasswordRequest
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if err := ac.Auth.AdminResetPassword(c.UserContext(), id, input.NewPassword); err != nil {
		return err
	}
	return utils.Message(c, "Password reset successfully")
}
