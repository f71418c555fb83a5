package services

import (
	"context"
	"testing"
	"time"

	"advocatr/backend/models"
	"advocatr/backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, "alice", models.RoleUser)
	now := f.clock.Now()

	require.NoError(t, f.db.Create(&[]models.PasswordResetToken{
		{UserID: user.ID, Token: "expired", ExpiresAt: now.Add(-time.Minute)},
		{UserID: user.ID, Token: "live", ExpiresAt: now.Add(time.Hour)},
	}).Error)
	require.NoError(t, f.db.Create(&[]models.Session{
		{ID: "old", UserID: user.ID, ExpiresAt: now},
		{ID: "new", UserID: user.ID, ExpiresAt: now.Add(time.Hour)},
	}).Error)

	result, err := f.svc.Sweeper.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{ResetTokens: 1, Sessions: 1}, result)

	var tokens []models.PasswordResetToken
	require.NoError(t, f.db.Find(&tokens).Error)
	require.Len(t, tokens, 1)
	assert.Equal(t, "live", tokens[0].Token)
}

func TestSweeperStartStop(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Sweeper.Start(time.Hour))
	f.svc.Sweeper.Stop()
	f.svc.Sweeper.Stop()
}
