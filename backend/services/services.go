// Package services holds the business rules of Advocatr. Services take a
// context on every call, talk to the database through GORM and return
// *utils.AppError values that the HTTP layer renders as is.
package services

import (
	"time"

	"advocatr/backend/config"
	"advocatr/backend/utils"

	"gorm.io/gorm"
)

// ResetTokenTTL is how long a password reset token can be redeemed.
const ResetTokenTTL = 24 * time.Hour

// Services bundles every service so routes and the CLI can build them in
// one place.
type Services struct {
	Auth      *AuthService
	Exercises *ExerciseService
	Progress  *ProgressService
	Feedback  *FeedbackService
	Contact   *ContactService
	Sweeper   *TokenSweeper
}

func New(db *gorm.DB, cfg *config.Config, mailer Mailer) *Services {
	v := utils.NewValidator()
	return &Services{
		Auth:      NewAuthService(db, cfg, mailer, v),
		Exercises: NewExerciseService(db, v),
		Progress:  NewProgressService(db),
		Feedback:  NewFeedbackService(db, v),
		Contact:   NewContactService(cfg, mailer, v),
		Sweeper:   NewTokenSweeper(db),
	}
}

// SetClock replaces the time source of every service. Tests use it to
// move across expiry boundaries.
func (s *Services) SetClock(now func() time.Time) {
	s.Auth.Now = now
	s.Progress.Now = now
	s.Feedback.Now = now
	s.Sweeper.Now = now
}
