package services

import (
	"math"

	"advocatr/backend/models"
)

// The functions in this file are pure: they work on data already loaded for
// a single user and are recomputed on every request.

// FindProgress returns the progress row for exerciseID, or nil.
func FindProgress(exerciseID uint, progress []models.UserProgress) *models.UserProgress {
	for i := range progress {
		if progress[i].ExerciseID == exerciseID {
			return &progress[i]
		}
	}
	return nil
}

// IsExerciseUnlocked applies the linear gating rule. Order 1 is always
// open. Any later order is open only when the exercise one step before it
// exists and is completed. If several exercises share that order the first
// one in the slice wins; the storage layer keeps order unique.
func IsExerciseUnlocked(order int, exercises []models.Exercise, progress []models.UserProgress) bool {
	if order == 1 {
		return true
	}

	var previous *models.Exercise
	for i := range exercises {
		if exercises[i].Order == order-1 {
			previous = &exercises[i]
			break
		}
	}
	if previous == nil {
		return false
	}

	p := FindProgress(previous.ID, progress)
	return p != nil && p.Completed
}

// BuildDashboard pairs every exercise with its progress and unlock state,
// keeping the order of exercises.
func BuildDashboard(exercises []models.Exercise, progress []models.UserProgress) []models.ExerciseStatus {
	rows := make([]models.ExerciseStatus, 0, len(exercises))
	for _, ex := range exercises {
		rows = append(rows, models.ExerciseStatus{
			Exercise: ex,
			Progress: FindProgress(ex.ID, progress),
			Unlocked: IsExerciseUnlocked(ex.Order, exercises, progress),
		})
	}
	return rows
}

// Summarize counts completed exercises. Percent is rounded to the nearest
// integer and is 0 when there are no exercises.
func Summarize(exercises []models.Exercise, progress []models.UserProgress) models.ProgressSummary {
	summary := models.ProgressSummary{Total: len(exercises)}
	for _, ex := range exercises {
		if p := FindProgress(ex.ID, progress); p != nil && p.Completed {
			summary.Completed++
		}
	}
	if summary.Total > 0 {
		summary.Percent = int(math.Round(float64(summary.Completed) / float64(summary.Total) * 100))
	}
	return summary
}
