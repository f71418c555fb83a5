package services

import (
	"testing"

	"advocatr/backend/models"

	"github.com/stretchr/testify/assert"
)

func exercisesWithOrders(orders ...int) []models.Exercise {
	exercises := make([]models.Exercise, 0, len(orders))
	for i, order := range orders {
		exercises = append(exercises, models.Exercise{ID: uint(i + 1), Order: order})
	}
	return exercises
}

func TestIsExerciseUnlocked(t *testing.T) {
	exercises := exercisesWithOrders(1, 2, 3, 5)

	tests := []struct {
		name     string
		order    int
		progress []models.UserProgress
		want     bool
	}{
		{"first is always open", 1, nil, true},
		{"first open even with no exercises", 1, []models.UserProgress{}, true},
		{"second locked without progress", 2, nil, false},
		{"second locked when first incomplete", 2, []models.UserProgress{{ExerciseID: 1, Completed: false}}, false},
		{"second open when first complete", 2, []models.UserProgress{{ExerciseID: 1, Completed: true}}, true},
		{"third needs second not first", 3, []models.UserProgress{{ExerciseID: 1, Completed: true}}, false},
		{"third open when second complete", 3, []models.UserProgress{{ExerciseID: 2, Completed: true}}, true},
		{"gap before order locks", 5, []models.UserProgress{{ExerciseID: 3, Completed: true}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExerciseUnlocked(tt.order, exercises, tt.progress))
		})
	}
}

func TestIsExerciseUnlockedFirstDuplicateWins(t *testing.T) {
	exercises := []models.Exercise{{ID: 10, Order: 1}, {ID: 11, Order: 1}, {ID: 12, Order: 2}}

	assert.False(t, IsExerciseUnlocked(2, exercises, []models.UserProgress{{ExerciseID: 11, Completed: true}}))
	assert.True(t, IsExerciseUnlocked(2, exercises, []models.UserProgress{{ExerciseID: 10, Completed: true}}))
}

func TestBuildDashboard(t *testing.T) {
	exercises := exercisesWithOrders(1, 2, 3)
	progress := []models.UserProgress{{ID: 7, ExerciseID: 1, Completed: true}, {ID: 8, ExerciseID: 2}}

	rows := BuildDashboard(exercises, progress)
	if assert.Len(t, rows, 3) {
		assert.True(t, rows[0].Unlocked)
		assert.Equal(t, uint(7), rows[0].Progress.ID)
		assert.True(t, rows[1].Unlocked)
		assert.Equal(t, uint(8), rows[1].Progress.ID)
		assert.False(t, rows[2].Unlocked)
		assert.Nil(t, rows[2].Progress)
	}
}

func TestSummarize(t *testing.T) {
	exercises := exercisesWithOrders(1, 2, 3)

	summary := Summarize(exercises, []models.UserProgress{{ExerciseID: 1, Completed: true}, {ExerciseID: 2}})
	assert.Equal(t, models.ProgressSummary{Completed: 1, Total: 3, Percent: 33}, summary)

	summary = Summarize(exercises, []models.UserProgress{{ExerciseID: 1, Completed: true}, {ExerciseID: 2, Completed: true}})
	assert.Equal(t, 67, summary.Percent)

	assert.Equal(t, models.ProgressSummary{}, Summarize(nil, nil))
}
