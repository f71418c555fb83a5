package controllers

import (
	"advocatr/backend/middleware"
	"advocatr/backend/services"
	"advocatr/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type FeedbackController struct {
	Feedback *services.FeedbackService
}

func NewFeedbackController(feedback *services.FeedbackService) *FeedbackController {
	return &FeedbackController{Feedback: feedback}
}

// SubmitFeedback godoc
// @Summary Leave feedback on a completed exercise
// @Tags feedback
// @Accept json
// @Produce json
// @Param progressId path int true "Progress ID"
// @Param request body services.FeedbackInput true "Feedback"
// @Success 201 {object} models.Feedback
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security SessionCookie
// @Router /api/feedback/{progressId} [post]
func (fc *FeedbackController) SubmitFeedback(c *fiber.Ctx) error {
	progressID, err := parseID(c, "progressId")
	if err != nil {
		return err
	}
	var input services.FeedbackInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	feedback, err := fc.Feedback.Submit(c.UserContext(), middleware.CurrentUser(c).ID, progressID, input)
	if err != nil {
		return err
	}
	return utils.Created(c, feedback)
}

// ListFeedback godoc
// @Summary Feedback on a progress row
// @Tags feedback
// @Produce json
// @Param progressId path int true "Progress ID"
// @Success 200 {array} models.Feedback
// @Failure 404 {object} utils.ErrorResponse
// @Security SessionCookie
// @Router /api/feedback/{progressId} [get]
func (fc *FeedbackController) ListFeedback(c *fiber.Ctx) error {
	progressID, err := parseID(c, "progressId")
	if err != nil {
		return err
	}
	feedback, err := fc.Feedback.List(c.UserContext(), middleware.CurrentUser(c).ID, progressID)
	if err != nil {
		return err
	}
	return c.JSON(feedback)
}
