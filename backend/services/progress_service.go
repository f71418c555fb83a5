package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"advocatr/backend/models"
	"advocatr/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{DB: db, Now: time.Now}
}

type ProgressInput struct {
	VideoURL  *string `json:"videoUrl"`
	Completed bool    `json:"completed"`
}

// GetProgress returns the caller's progress on an exercise, or nil when
// there is none yet.
func (s *ProgressService) GetProgress(ctx context.Context, userID, exerciseID uint) (*models.UserProgress, error) {
	var p models.UserProgress
	err := s.DB.WithContext(ctx).
		Preload("Feedback", orderByCreated).
		Where("user_id = ? AND exercise_id = ?", userID, exerciseID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, utils.Internal("Could not load progress", err)
	}
	return &p, nil
}

// ListProgress returns every progress row of the user with its feedback.
func (s *ProgressService) ListProgress(ctx context.Context, userID uint) ([]models.UserProgress, error) {
	progress, err := s.userProgress(s.DB.WithContext(ctx), userID)
	if err != nil {
		return nil, utils.Internal("Could not load progress", err)
	}
	return progress, nil
}

// UpsertProgress records a submission. A second call for the same exercise
// updates the existing row, including when both calls race.
func (s *ProgressService) UpsertProgress(ctx context.Context, userID, exerciseID uint, in ProgressInput) (*models.UserProgress, error) {
	if in.VideoURL != nil {
		trimmed := strings.TrimSpace(*in.VideoURL)
		if trimmed == "" {
			in.VideoURL = nil
		} else {
			in.VideoURL = &trimmed
		}
	}

	var saved models.UserProgress
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exercises, err := listExercises(tx)
		if err != nil {
			return err
		}
		var target *models.Exercise
		for i := range exercises {
			if exercises[i].ID == exerciseID {
				target = &exercises[i]
				break
			}
		}
		if target == nil {
			return utils.ErrExerciseNotFound
		}

		progress, err := s.userProgress(tx, userID)
		if err != nil {
			return err
		}
		if !IsExerciseUnlocked(target.Order, exercises, progress) {
			return utils.ErrExerciseLocked
		}

		now := s.Now()
		row := models.UserProgress{
			UserID:     userID,
			ExerciseID: exerciseID,
			VideoURL:   in.VideoURL,
			Completed:  in.Completed,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		err = tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "exercise_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"video_url", "completed", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return err
		}

		return tx.Preload("Feedback", orderByCreated).
			Where("user_id = ? AND exercise_id = ?", userID, exerciseID).
			First(&saved).Error
	})
	if err != nil {
		return nil, asAppError(err, "Could not save progress")
	}
	return &saved, nil
}

// ResetProgress clears a progress row so the exercises after it lock
// again. Feedback on the row is kept.
func (s *ProgressService) ResetProgress(ctx context.Context, progressID uint) (*models.UserProgress, error) {
	var p models.UserProgress
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.UserProgress{}).Where("id = ?", progressID).Updates(map[string]interface{}{
			"completed":  false,
			"video_url":  nil,
			"updated_at": s.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrProgressNotFound
		}
		return tx.Preload("Feedback", orderByCreated).First(&p, progressID).Error
	})
	if err != nil {
		return nil, asAppError(err, "Could not reset progress")
	}
	return &p, nil
}

// ListAllProgress returns every progress row with its user, exercise and
// feedback, newest activity first.
func (s *ProgressService) ListAllProgress(ctx context.Context) ([]models.UserProgress, error) {
	var progress []models.UserProgress
	err := s.DB.WithContext(ctx).
		Preload("User").
		Preload("Exercise").
		Preload("Feedback", orderByCreated).
		Order("updated_at DESC").
		Order("id ASC").
		Find(&progress).Error
	if err != nil {
		return nil, utils.Internal("Could not load progress", err)
	}
	return progress, nil
}

// Dashboard lists every exercise with the user's progress on it and whether
// it is unlocked.
func (s *ProgressService) Dashboard(ctx context.Context, userID uint) ([]models.ExerciseStatus, error) {
	exercises, progress, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildDashboard(exercises, progress), nil
}

func (s *ProgressService) Summary(ctx context.Context, userID uint) (models.ProgressSummary, error) {
	exercises, progress, err := s.load(ctx, userID)
	if err != nil {
		return models.ProgressSummary{}, err
	}
	return Summarize(exercises, progress), nil
}

func (s *ProgressService) load(ctx context.Context, userID uint) ([]models.Exercise, []models.UserProgress, error) {
	db := s.DB.WithContext(ctx)
	exercises, err := listExercises(db)
	if err != nil {
		return nil, nil, utils.Internal("Could not load exercises", err)
	}
	progress, err := s.userProgress(db, userID)
	if err != nil {
		return nil, nil, utils.Internal("Could not load progress", err)
	}
	return exercises, progress, nil
}

func (s *ProgressService) userProgress(db *gorm.DB, userID uint) ([]models.UserProgress, error) {
	var progress []models.UserProgress
	err := db.Preload("Feedback", orderByCreated).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&progress).Error
	return progress, err
}

func orderByCreated(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}
