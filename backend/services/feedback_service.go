package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"advocatr/backend/models"
	"advocatr/backend/utils"

	"gorm.io/gorm"
)

type FeedbackService struct {
	DB        *gorm.DB
	Validator *utils.Validator
	Now       func() time.Time
}

func NewFeedbackService(db *gorm.DB, v *utils.Validator) *FeedbackService {
	return &FeedbackService{DB: db, Validator: v, Now: time.Now}
}

type FeedbackInput struct {
	Content string `json:"content" validate:"required,max=5000"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
}

// Submit attaches feedback to one of the caller's progress rows. Rows owned
// by someone else are reported as missing.
func (s *FeedbackService) Submit(ctx context.Context, userID, progressID uint, in FeedbackInput) (*models.Feedback, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := s.Validator.Struct(in); err != nil {
		return nil, err
	}

	fb := models.Feedback{
		ProgressID: progressID,
		Content:    in.Content,
		Rating:     in.Rating,
		CreatedAt:  s.Now(),
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedProgress(tx, userID, progressID); err != nil {
			return err
		}
		return tx.Create(&fb).Error
	})
	if err != nil {
		return nil, asAppError(err, "Could not save feedback")
	}
	return &fb, nil
}

// List returns the feedback on one of the caller's progress rows, oldest
// first.
func (s *FeedbackService) List(ctx context.Context, userID, progressID uint) ([]models.Feedback, error) {
	db := s.DB.WithContext(ctx)
	if _, err := ownedProgress(db, userID, progressID); err != nil {
		return nil, asAppError(err, "Could not load feedback")
	}

	var feedback []models.Feedback
	if err := orderByCreated(db.Where("progress_id = ?", progressID)).Find(&feedback).Error; err != nil {
		return nil, utils.Internal("Could not load feedback", err)
	}
	return feedback, nil
}

func ownedProgress(db *gorm.DB, userID, progressID uint) (*models.UserProgress, error) {
	var p models.UserProgress
	err := db.Where("id = ? AND user_id = ?", progressID, userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrProgressNotFound
		}
		return nil, err
	}
	return &p, nil
}
