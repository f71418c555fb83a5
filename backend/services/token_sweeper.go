package services

import (
	"context"
	"log/slog"
	"time"

	"advocatr/backend/models"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// TokenSweeper deletes expired reset tokens and sessions. Expiry is always
// checked on use, so sweeping only reclaims space.
type TokenSweeper struct {
	DB  *gorm.DB
	Now func() time.Time

	scheduler *gocron.Scheduler
}

type SweepResult struct {
	ResetTokens int64 `json:"resetTokens"`
	Sessions    int64 `json:"sessions"`
}

func NewTokenSweeper(db *gorm.DB) *TokenSweeper {
	return &TokenSweeper{DB: db, Now: time.Now}
}

func (s *TokenSweeper) SweepExpired(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	now := s.Now()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("expires_at <= ?", now).Delete(&models.PasswordResetToken{})
		if res.Error != nil {
			return res.Error
		}
		result.ResetTokens = res.RowsAffected

		res = tx.Where("expires_at <= ?", now).Delete(&models.Session{})
		if res.Error != nil {
			return res.Error
		}
		result.Sessions = res.RowsAffected
		return nil
	})
	return result, err
}

// Start runs SweepExpired every interval until Stop is called.
func (s *TokenSweeper) Start(interval time.Duration) error {
	scheduler := gocron.NewScheduler(time.UTC)
	_, err := scheduler.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		result, err := s.SweepExpired(ctx)
		if err != nil {
			slog.Error("token sweep failed", "error", err)
			return
		}
		if result.ResetTokens > 0 || result.Sessions > 0 {
			slog.Info("expired tokens removed",
				"reset_tokens", result.ResetTokens,
				"sessions", result.Sessions,
			)
		}
	})
	if err != nil {
		return err
	}

	scheduler.StartAsync()
	s.scheduler = scheduler
	slog.Info("token sweeper started", "interval", interval.String())
	return nil
}

func (s *TokenSweeper) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
		s.scheduler = nil
	}
}
