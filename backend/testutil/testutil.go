// Package testutil provides an isolated in-memory database and fixtures for
// tests across packages.
package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"advocatr/backend/config"
	"advocatr/backend/models"
	"advocatr/backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Password is the plaintext password of every fixture user.
const Password = "password123"

var (
	hashOnce sync.Once
	hashed   string
)

// Config returns a configuration suitable for tests.
func Config() *config.Config {
	return &config.Config{
		Env:                "test",
		ServerPort:         "0",
		DBDriver:           "sqlite",
		SessionSecret:      "test-secret",
		SessionTTL:         24 * time.Hour,
		PasswordMinLen:     6,
		AppBaseURL:         "http://localhost:5173",
		AllowedOrigins:     "*",
		SMTPHost:           "localhost",
		SMTPPort:           25,
		ContactEmail:       "contact@advocatr.com",
		RateLimitPerMinute: 1000,
		RequestTimeout:     5 * time.Second,
	}
}

// NewDB opens a fresh migrated in-memory SQLite database that is closed at
// the end of the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := utils.OpenDB("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	t.Cleanup(func() { utils.CloseDB(db) })
	return db
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts at the current time so signed tokens issued against it
// are still accepted by wall-clock checks.
func NewClock() *Clock {
	return &Clock{now: time.Now().UTC().Truncate(time.Millisecond)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// CreateUser inserts a user whose password is Password.
func CreateUser(t testing.TB, db *gorm.DB, username string, role models.Role) models.User {
	t.Helper()

	hashOnce.Do(func() {
		var err error
		hashed, err = utils.HashPassword(Password)
		if err != nil {
			panic(err)
		}
	})

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hashed,
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// CreateExercise inserts an exercise at order.
func CreateExercise(t testing.TB, db *gorm.DB, order int) models.Exercise {
	t.Helper()

	ex := models.Exercise{
		Title:                 fmt.Sprintf("Exercise %d", order),
		Description:           fmt.Sprintf("Description of exercise %d", order),
		DemoVideoURL:          fmt.Sprintf("https://example.com/demo-%d", order),
		ProfessionalAnswerURL: fmt.Sprintf("https://example.com/pro-%d", order),
		Order:                 order,
	}
	require.NoError(t, db.Create(&ex).Error)
	return ex
}

// CreateProgress inserts a progress row directly, bypassing unlock checks.
func CreateProgress(t testing.TB, db *gorm.DB, userID, exerciseID uint, completed bool) models.UserProgress {
	t.Helper()

	p := models.UserProgress{UserID: userID, ExerciseID: exerciseID, Completed: completed}
	require.NoError(t, db.Create(&p).Error)
	return p
}
