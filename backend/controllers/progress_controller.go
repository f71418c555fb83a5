package controllers

import (
	"advocatr/backend/middleware"
	"advocatr/backend/services"

	"github.com/gofiber/fiber/v2"
)

type ProgressController struct {
	Progress *services.ProgressService
}

func NewProgressController(progress *services.ProgressService) *ProgressController {
	return &ProgressController{Progress: progress}
}

// ListProgress godoc
// @Summary List own progress
// @Description Returns the caller's progress rows with feedback
// @Tags progress
// @Produce json
// @Success 200 {array} models.UserProgress
// @Security SessionCookie
// @Router /api/progress [get]
func (pc *ProgressController) ListProgress(c *fiber.Ctx) error {
	progress, err := pc.Progress.ListProgress(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(progress)
}

// GetSummary godoc
// @Summary Completion summary
// @Tags progress
// @Produce json
// @Success 200 {object} models.ProgressSummary
// @Security SessionCookie
// @Router /api/progress/summary [get]
func (pc *ProgressController) GetSummary(c *fiber.Ctx) error {
	summary, err := pc.Progress.Summary(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// GetDashboard godoc
// @Summary Exercise dashboard
// @Description Every exercise with the caller's progress and unlock state
// @Tags progress
// @Produce json
// @Success 200 {array} models.ExerciseStatus
// @Security SessionCookie
// @Router /api/dashboard [get]
func (pc *ProgressController) GetDashboard(c *fiber.Ctx) error {
	rows, err := pc.Progress.Dashboard(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

// GetProgress godoc
// @Summary Progress on one exercise
// @Description Returns null when the caller has not started the exercise
// @Tags progress
// @Produce json
// @Param exerciseId path int true "Exercise ID"
// @Success 200 {object} models.UserProgress
// @Security SessionCookie
// @Router /api/progress/{exerciseId} [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	exerciseID, err := parseID(c, "exerciseId")
	if err != nil {
		return err
	}
	progress, err := pc.Progress.GetProgress(c.UserContext(), middleware.CurrentUser(c).ID, exerciseID)
	if err != nil {
		return err
	}
	if progress == nil {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString("null")
	}
	return c.JSON(progress)
}

// UpsertProgress godoc
// @Summary Submit progress
// @Description Creates or updates the caller's progress on an unlocked exercise
// @Tags progress
// @Accept json
// @Produce json
// @Param exerciseId path int true "Exercise ID"
// @Param request body services.ProgressInput true "Submission"
// @Success 200 {object} models.UserProgress
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security SessionCookie
// @Router /api/progress/{exerciseId} [post]
func (pc *ProgressController) UpsertProgress(c *fiber.Ctx) error {
	exerciseID, err := parseID(c, "exerciseId")
	if err != nil {
		return err
	}
	var input services.ProgressInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	progress, err := pc.Progress.UpsertProgress(c.UserContext(), middleware.CurrentUser(c).ID, exerciseID, input)
	if err != nil {
		return err
	}
	return c.JSON(progress)
}

// ListAllProgress godoc
// @Summary List all progress
// @Tags admin
// @Produce json
// @Success 200 {array} models.UserProgress
// @Failure 403 {object} utils.ErrorResponse
// @Security SessionCookie
// @Router /api/admin/progress [get]
func (pc *ProgressController) ListAllProgress(c *fiber.Ctx) error {
	progress, err := pc.Progress.ListAllProgress(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(progress)
}

// ResetProgress godoc
// @Summary Reset a progress row
// @Description Marks the row incomplete and clears its video. Feedback is kept.
// @Tags admin
// @Produce json
// @Param id path int true "Progress ID"
// @Success 200 {object} models.UserProgress
// @Failure 404 {object} utils.ErrorResponse
// @Security SessionCookie
// @Router /api/admin/progress/{id}/reset [post]
func (pc *ProgressController) ResetProgress(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	progress, err := pc.Progress.ResetProgress(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(progress)
}
