package controllers

import (
	"advocatr/backend/services"
	"advocatr/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ExerciseController struct {
	Exercises *services.ExerciseService
}

func NewExerciseController(exercises *services.ExerciseService) *ExerciseController {
	return &ExerciseController{Exercises: exercises}
}

// ListExercises godoc
// @Summary List exercises
// @Description Returns every exercise ordered by its position in the sequence
// @Tags exercises
// @Produce json
// @Success 200 {array} models.Exercise
// @Failure 401 {object} utils.ErrorResponse
// @Security SessionCookie
// @Router /api/exercises [get]
func (ec *ExerciseController) ListExercises(c *fiber.Ctx) error {
	exercises, err := ec.Exercises.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(exercises)
}

// GetExercise godoc
// @Summary Get exercise
// @Tags exercises
// @Produce json
// @Param id path int true "Exercise ID"
// @Success 200 {object} models.Exercise
// @Failure 404 {object} utils.ErrorResponse
// @Security SessionCookie
// @Router /api/exercises/{id} [get]
func (ec *ExerciseController) GetExercise(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	exercise, err := ec.Exercises.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(exercise)
}

// CreateExercise godoc
// @Summary Create exercise
// @Tags admin
// @Accept json
// @Produce json
// @Param request body services.ExerciseInput true "Exercise"
// @Success 201 {object} models.Exercise
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security SessionCookie
// @Router /api/admin/exercises [post]
func (ec *ExerciseController) CreateExercise(c *fiber.Ctx) error {
	var input services.ExerciseInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	exercise, err := ec.Exercises.Create(c.UserContext(), input)
	if err != nil {
		return err
	}
	return utils.Created(c, exercise)
}

// UpdateExercise godoc
// @Summary Update exercise
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Exercise ID"
// @Param request body services.ExerciseInput true "Exercise"
// @Success 200 {object} models.Exercise
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security SessionCookie
// @Router /api/admin/exercises/{id} [put]
func (ec *ExerciseController) UpdateExercise(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var input services.ExerciseInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	exercise, err := ec.Exercises.Update(c.UserContext(), id, input)
	if err != nil {
		return err
	}
	return c.JSON(exercise)
}

// DeleteExercise godoc
// @Summary Delete exercise
// @Description Also deletes all progress and feedback on the exercise
// @Tags admin
// @Produce json
// @Param id path int true "Exercise ID"
// @Success 200 {object} utils.MessageResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security SessionCookie
// @Router /api/admin/exercises/{id} [delete]
func (ec *ExerciseController) DeleteExercise(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := ec.Exercises.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return utils.Message(c, "Exercise deleted")
}
