package services

import (
	"context"
	"errors"
	"strings"

	"advocatr/backend/models"
	"advocatr/backend/utils"

	"gorm.io/gorm"
)

type ExerciseService struct {
	DB        *gorm.DB
	Validator *utils.Validator
}

func NewExerciseService(db *gorm.DB, v *utils.Validator) *ExerciseService {
	return &ExerciseService{DB: db, Validator: v}
}

type ExerciseInput struct {
	Title                 string  `json:"title" validate:"required,max=255"`
	Description           string  `json:"description" validate:"required"`
	DemoVideoURL          string  `json:"demoVideoUrl" validate:"required,url"`
	ProfessionalAnswerURL string  `json:"professionalAnswerUrl" validate:"required,url"`
	PDFURL                *string `json:"pdfUrl" validate:"omitempty,url"`
	Order                 int     `json:"order" validate:"required,gte=1"`
}

func (in *ExerciseInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.DemoVideoURL = strings.TrimSpace(in.DemoVideoURL)
	in.ProfessionalAnswerURL = strings.TrimSpace(in.ProfessionalAnswerURL)
	if in.PDFURL != nil {
		trimmed := strings.TrimSpace(*in.PDFURL)
		if trimmed == "" {
			in.PDFURL = nil
		} else {
			in.PDFURL = &trimmed
		}
	}
}

func (in ExerciseInput) apply(ex *models.Exercise) {
	ex.Title = in.Title
	ex.Description = in.Description
	ex.DemoVideoURL = in.DemoVideoURL
	ex.ProfessionalAnswerURL = in.ProfessionalAnswerURL
	ex.PDFURL = in.PDFURL
	ex.Order = in.Order
}

// List returns every exercise ordered by its position in the sequence.
func (s *ExerciseService) List(ctx context.Context) ([]models.Exercise, error) {
	exercises, err := listExercises(s.DB.WithContext(ctx))
	if err != nil {
		return nil, utils.Internal("Could not load exercises", err)
	}
	return exercises, nil
}

func (s *ExerciseService) Get(ctx context.Context, id uint) (*models.Exercise, error) {
	var ex models.Exercise
	if err := s.DB.WithContext(ctx).First(&ex, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrExerciseNotFound
		}
		return nil, utils.Internal("Could not load exercise", err)
	}
	return &ex, nil
}

func (s *ExerciseService) Create(ctx context.Context, in ExerciseInput) (*models.Exercise, error) {
	in.normalize()
	if err := s.Validator.Struct(in); err != nil {
		return nil, err
	}

	var ex models.Exercise
	in.apply(&ex)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if taken, err := exists(tx, &models.Exercise{}, "exercise_order = ?", in.Order); err != nil {
			return err
		} else if taken {
			return utils.ErrOrderTaken
		}
		return tx.Create(&ex).Error
	})
	if err != nil {
		return nil, orderError(err, "Could not create exercise")
	}
	return &ex, nil
}

func (s *ExerciseService) Update(ctx context.Context, id uint, in ExerciseInput) (*models.Exercise, error) {
	in.normalize()
	if err := s.Validator.Struct(in); err != nil {
		return nil, err
	}

	var ex models.Exercise
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ex, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrExerciseNotFound
			}
			return err
		}
		if taken, err := exists(tx, &models.Exercise{}, "exercise_order = ? AND id <> ?", in.Order, id); err != nil {
			return err
		} else if taken {
			return utils.ErrOrderTaken
		}
		in.apply(&ex)
		return tx.Save(&ex).Error
	})
	if err != nil {
		return nil, orderError(err, "Could not update exercise")
	}
	return &ex, nil
}

// Delete removes the exercise together with every progress row on it and
// their feedback.
func (s *ExerciseService) Delete(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var progressIDs []uint
		if err := tx.Model(&models.UserProgress{}).Where("exercise_id = ?", id).Pluck("id", &progressIDs).Error; err != nil {
			return err
		}
		if len(progressIDs) > 0 {
			if err := tx.Where("progress_id IN ?", progressIDs).Delete(&models.Feedback{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", progressIDs).Delete(&models.UserProgress{}).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Exercise{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrExerciseNotFound
		}
		return nil
	})
	return asAppError(err, "Could not delete exercise")
}

// UpsertByOrder creates the exercise at in.Order or overwrites the one
// already there. created reports which of the two happened.
func (s *ExerciseService) UpsertByOrder(ctx context.Context, in ExerciseInput) (ex *models.Exercise, created bool, err error) {
	in.normalize()
	if err := s.Validator.Struct(in); err != nil {
		return nil, false, err
	}

	var row models.Exercise
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("exercise_order = ?", in.Order).First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			in.apply(&row)
			return tx.Create(&row).Error
		case err != nil:
			return err
		}
		in.apply(&row)
		return tx.Save(&row).Error
	})
	if err != nil {
		return nil, false, orderError(err, "Could not save exercise")
	}
	return &row, created, nil
}

// Count returns how many exercises exist.
func (s *ExerciseService) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Exercise{}).Count(&n).Error; err != nil {
		return 0, utils.Internal("Could not count exercises", err)
	}
	return n, nil
}

func listExercises(db *gorm.DB) ([]models.Exercise, error) {
	var exercises []models.Exercise
	if err := db.Order("exercise_order ASC").Find(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

func orderError(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return utils.ErrOrderTaken
	}
	return asAppError(err, message)
}
