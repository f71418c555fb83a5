package controllers

import (
	"advocatr/backend/services"
	"advocatr/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ContactController struct {
	Contact *services.ContactService
}

func NewContactController(contact *services.ContactService) *ContactController {
	return &ContactController{Contact: contact}
}

// SendMessage godoc
// @Summary Contact form
// @Description Forwards a message to the support inbox
// @Tags contact
// @Accept json
// @Produce json
// @Param request body services.ContactInput true "Message"
// @Success 200 {object} utils.MessageResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Router /api/contact [post]
func (cc *ContactController) SendMessage(c *fiber.Ctx) error {
	var input services.ContactInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if err := cc.Contact.Send(c.UserContext(), input); err != nil {
		return err
	}
	return utils.Message(c, "Message sent successfully")
}
