package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"advocatr/backend/models"
	"advocatr/backend/services"
	"advocatr/backend/testutil"
	"advocatr/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	app *fiber.App
	db  *gorm.DB
	svc *services.Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.NewDB(t)
	cfg := testutil.Config()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := services.New(db, cfg, services.LogMailer{Logger: logger})
	return &testServer{app: NewApp(svc, cfg, logger), db: db, svc: svc}
}

// do sends a JSON request, authenticating with token when it is not empty.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()

	resp := s.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"username": username,
		"password": testutil.Password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	decode(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body utils.ErrorResponse
	decode(t, resp, &body)
	assert.False(t, body.Success)
	return body.Code
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ok", string(body))
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == utils.SessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	var body struct {
		User map[string]interface{} `json:"user"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "alice", body.User["username"])
	assert.Equal(t, false, body.User["isAdmin"])
	assert.NotContains(t, body.User, "password")

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	me, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, me.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, utils.ErrUsernameTaken.Code, errorCode(t, resp))
}

func TestSessionRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/user", "/api/exercises", "/api/progress", "/api/dashboard", "/api/progress/summary"} {
		resp := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
	resp := s.do(t, http.MethodGet, "/api/exercises", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminGate(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "student", models.RoleUser)
	testutil.CreateUser(t, s.db, "boss", models.RoleAdmin)

	resp := s.do(t, http.MethodGet, "/api/admin/progress", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/admin/progress", s.login(t, "student"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, utils.ErrForbidden.Code, errorCode(t, resp))

	resp = s.do(t, http.MethodGet, "/api/admin/progress", s.login(t, "boss"), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogoutIsIdempotent(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "alice", models.RoleUser)
	token := s.login(t, "alice")

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/logout", token, nil).StatusCode)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/logout", token, nil).StatusCode)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/logout", "", nil).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/user", token, nil).StatusCode)
}

// Two users walk the same two exercises; completing the first unlocks the
// second only for the user who completed it, and an admin reset locks it
// again.
func TestProgressFlow(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "usera", models.RoleUser)
	testutil.CreateUser(t, s.db, "userb", models.RoleUser)
	testutil.CreateUser(t, s.db, "boss", models.RoleAdmin)
	ex1 := testutil.CreateExercise(t, s.db, 1)
	ex2 := testutil.CreateExercise(t, s.db, 2)

	tokenA := s.login(t, "usera")
	tokenB := s.login(t, "userb")
	admin := s.login(t, "boss")

	resp := s.do(t, http.MethodGet, fmt.Sprintf("/api/progress/%d", ex1.ID), tokenA, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "null", string(raw))

	resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/progress/%d", ex2.ID), tokenA, map[string]interface{}{"completed": true})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, utils.ErrExerciseLocked.Code, errorCode(t, resp))

	resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/progress/%d", ex1.ID), tokenA, map[string]interface{}{
		"videoUrl":  "https://videos.example.com/a1",
		"completed": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var progress models.UserProgress
	decode(t, resp, &progress)
	assert.True(t, progress.Completed)

	var dashA, dashB []models.ExerciseStatus
	decode(t, s.do(t, http.MethodGet, "/api/dashboard", tokenA, nil), &dashA)
	decode(t, s.do(t, http.MethodGet, "/api/dashboard", tokenB, nil), &dashB)
	require.Len(t, dashA, 2)
	require.Len(t, dashB, 2)
	assert.True(t, dashA[1].Unlocked)
	assert.False(t, dashB[1].Unlocked)

	var summary models.ProgressSummary
	decode(t, s.do(t, http.MethodGet, "/api/progress/summary", tokenA, nil), &summary)
	assert.Equal(t, models.ProgressSummary{Completed: 1, Total: 2, Percent: 50}, summary)

	resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/feedback/%d", progress.ID), tokenB, map[string]interface{}{"content": "nice", "rating": 5})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/feedback/%d", progress.ID), tokenA, map[string]interface{}{"content": "nice", "rating": 7})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/feedback/%d", progress.ID), tokenA, map[string]interface{}{"content": "nice", "rating": 5})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/admin/progress/%d/reset", progress.ID), admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	decode(t, s.do(t, http.MethodGet, "/api/dashboard", tokenA, nil), &dashA)
	assert.False(t, dashA[1].Unlocked)

	var feedback []models.Feedback
	decode(t, s.do(t, http.MethodGet, fmt.Sprintf("/api/feedback/%d", progress.ID), tokenA, nil), &feedback)
	assert.Len(t, feedback, 1)
}

func TestAdminExerciseCRUD(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "boss", models.RoleAdmin)
	admin := s.login(t, "boss")

	input := map[string]interface{}{
		"title":                 "Cross examination",
		"description":           "Ask short leading questions.",
		"demoVideoUrl":          "https://example.com/demo",
		"professionalAnswerUrl": "https://example.com/pro",
		"order":                 1,
	}
	resp := s.do(t, http.MethodPost, "/api/admin/exercises", admin, input)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var ex models.Exercise
	decode(t, resp, &ex)

	resp = s.do(t, http.MethodPost, "/api/admin/exercises", admin, input)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	input["title"] = "Cross examination II"
	resp = s.do(t, http.MethodPut, fmt.Sprintf("/api/admin/exercises/%d", ex.ID), admin, input)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var list []models.Exercise
	decode(t, s.do(t, http.MethodGet, "/api/exercises", admin, nil), &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Cross examination II", list[0].Title)

	resp = s.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/exercises/%d", ex.ID), admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = s.do(t, http.MethodGet, fmt.Sprintf("/api/exercises/%d", ex.ID), admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = s.do(t, http.MethodGet, "/api/exercises/abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPasswordResetFlow(t *testing.T) {
	s := newTestServer(t)
	user := testutil.CreateUser(t, s.db, "alice", models.RoleUser)

	known := s.do(t, http.MethodPost, "/api/forgot-password", "", map[string]string{"email": "alice@example.com"})
	unknown := s.do(t, http.MethodPost, "/api/forgot-password", "", map[string]string{"email": "nobody@example.com"})
	require.Equal(t, http.StatusOK, known.StatusCode)
	require.Equal(t, http.StatusOK, unknown.StatusCode)
	var knownBody, unknownBody utils.MessageResponse
	decode(t, known, &knownBody)
	decode(t, unknown, &unknownBody)
	assert.Equal(t, knownBody, unknownBody)

	var reset models.PasswordResetToken
	require.NoError(t, s.db.Where("user_id = ?", user.ID).First(&reset).Error)

	body := map[string]string{"token": reset.Token, "newPassword": "brandnew"}
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/reset-password", "", body).StatusCode)

	resp := s.do(t, http.MethodPost, "/api/reset-password", "", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, utils.ErrInvalidOrExpiredToken.Code, errorCode(t, resp))

	resp = s.do(t, http.MethodPost, "/api/login", "", map[string]string{"username": "alice", "password": "brandnew"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminResetPassword(t *testing.T) {
	s := newTestServer(t)
	user := testutil.CreateUser(t, s.db, "alice", models.RoleUser)
	testutil.CreateUser(t, s.db, "boss", models.RoleAdmin)
	admin := s.login(t, "boss")

	path := fmt.Sprintf("/api/admin/users/%d/reset-password", user.ID)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, path, admin, map[string]string{"newPassword": "adminset"}).StatusCode)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, path, admin, map[string]string{"newPassword": "x"}).StatusCode)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/admin/users/9999/reset-password", admin, map[string]string{"newPassword": "adminset"}).StatusCode)
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "alice", models.RoleUser)
	token := s.login(t, "alice")

	var profile struct {
		User        map[string]interface{} `json:"user"`
		LastLoginAt *string                `json:"lastLoginAt"`
		Progress    models.ProgressSummary `json:"progress"`
	}
	decode(t, s.do(t, http.MethodGet, "/api/user/profile", token, nil), &profile)
	assert.Equal(t, "alice", profile.User["username"])
	assert.NotNil(t, profile.LastLoginAt)

	resp := s.do(t, http.MethodPut, "/api/user/profile", token, map[string]string{"email": "alice@new.example"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &profile)
	assert.Equal(t, "alice@new.example", profile.User["email"])
}

func TestContact(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/contact", "", map[string]string{
		"name":    "Ann",
		"email":   "ann@example.com",
		"content": "Hello there",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/contact", "", map[string]string{"name": "Ann"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, utils.ErrValidationFailed.Code, errorCode(t, resp))
}

func TestRateLimit(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	cfg.RateLimitPerMinute = 2
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := &testServer{app: NewApp(services.New(db, cfg, services.LogMailer{Logger: logger}), cfg, logger), db: db}

	body := map[string]string{"email": "nobody@example.com"}
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/forgot-password", "", body).StatusCode)
	}
	resp := s.do(t, http.MethodPost, "/api/forgot-password", "", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, resp))
}
