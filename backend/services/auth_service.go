package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"advocatr/backend/config"
	"advocatr/backend/models"
	"advocatr/backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResetRequestMessage is returned for every forgot-password request,
// whether or not the email belongs to an account.
const ResetRequestMessage = "If an account exists with that email, a password reset link has been sent."

// dummyPasswordHash is checked against when the username is unknown so that
// both login failures cost the same.
var dummyPasswordHash = strings.Repeat("00", 64) + "." + strings.Repeat("00", 16)

type AuthService struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Mailer    Mailer
	Validator *utils.Validator
	Now       func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *config.Config, mailer Mailer, v *utils.Validator) *AuthService {
	return &AuthService{DB: db, Cfg: cfg, Mailer: mailer, Validator: v, Now: time.Now}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileInput struct {
	Username    string `json:"username" validate:"omitempty,min=3,max=50"`
	Email       string `json:"email" validate:"omitempty,email,max=255"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// SessionMeta describes the client a session is opened for.
type SessionMeta struct {
	IP        string
	UserAgent string
}

// SessionResult is an opened session and the signed token that refers to
// it.
type SessionResult struct {
	User    models.User
	Session models.Session
	Token   string
}

// Register creates an account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta SessionMeta) (*SessionResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if err := s.Validator.Struct(in); err != nil {
		return nil, err
	}
	if err := s.checkPassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, utils.Internal("Could not hash password", err)
	}

	user := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if taken, err := exists(tx, &models.User{}, "username = ?", user.Username); err != nil {
			return err
		} else if taken {
			return utils.ErrUsernameTaken
		}
		if taken, err := exists(tx, &models.User{}, "LOWER(email) = ?", user.Email); err != nil {
			return err
		} else if taken {
			return utils.ErrEmailTaken
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Could not create user")
	}

	return s.openSession(ctx, user, meta)
}

// Login checks credentials and opens a session. Unknown usernames and wrong
// passwords fail identically.
func (s *AuthService) Login(ctx context.Context, in LoginInput, meta SessionMeta) (*SessionResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := s.Validator.Struct(in); err != nil {
		return nil, err
	}

	var user models.User
	err := s.DB.WithContext(ctx).Where("username = ?", in.Username).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.Internal("Could not query database", err)
		}
		utils.CheckPassword(in.Password, dummyPasswordHash)
		return nil, utils.ErrInvalidCredentials
	}
	if !utils.CheckPassword(in.Password, user.PasswordHash) {
		return nil, utils.ErrInvalidCredentials
	}

	history := models.LoginHistory{UserID: user.ID, LoginTime: s.Now()}
	if err := s.DB.WithContext(ctx).Create(&history).Error; err != nil {
		slog.Warn("could not record login", "user_id", user.ID, "error", err)
	}

	return s.openSession(ctx, user, meta)
}

// Logout deletes the session token refers to. Missing, malformed and already
// revoked tokens are not errors.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := utils.ParseSessionToken(token, s.Cfg.SessionSecret)
	if err != nil {
		return nil
	}
	if err := s.DB.WithContext(ctx).Where("id = ?", claims.ID).Delete(&models.Session{}).Error; err != nil {
		return utils.Internal("Could not end session", err)
	}
	return nil
}

// Authenticate resolves a session token to its live session and user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, *models.Session, error) {
	if token == "" {
		return nil, nil, utils.ErrUnauthorized
	}
	claims, err := utils.ParseSessionToken(token, s.Cfg.SessionSecret)
	if err != nil {
		return nil, nil, utils.ErrUnauthorized
	}

	var session models.Session
	err = s.DB.WithContext(ctx).Preload("User").Where("id = ?", claims.ID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, utils.ErrUnauthorized
		}
		return nil, nil, utils.Internal("Could not load session", err)
	}
	if session.Expired(s.Now()) || session.User == nil || session.UserID != claims.UserID {
		return nil, nil, utils.ErrUnauthorized
	}
	return session.User, &session, nil
}

// RequestPasswordReset replaces the user's reset tokens with a fresh one and
// mails the link. The caller always gets ResetRequestMessage back; only
// storage failures surface as errors.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", utils.ValidationFailed(map[string]string{"email": "This field is required"})
	}

	var user models.User
	err := s.DB.WithContext(ctx).Where("LOWER(email) = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Info("password reset requested for unknown email")
			return ResetRequestMessage, nil
		}
		return "", utils.Internal("Could not process request", err)
	}

	token, err := utils.GenerateResetToken()
	if err != nil {
		return "", utils.Internal("Could not process request", err)
	}

	now := s.Now()
	reset := models.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(ResetTokenTTL),
		CreatedAt: now,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&reset).Error
	})
	if err != nil {
		return "", utils.Internal("Could not process request", err)
	}

	if err := s.Mailer.Send(ctx, PasswordResetMessage(s.Cfg, user, token)); err != nil {
		slog.Error("could not send password reset email", "user_id", user.ID, "error", err)
	}
	return ResetRequestMessage, nil
}

// ResetPassword redeems a reset token. A token works once and only before
// its expiry; expired tokens are left for the next request or the sweeper.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := s.checkPassword(newPassword); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return utils.ErrInvalidOrExpiredToken
	}

	var reset models.PasswordResetToken
	err := s.DB.WithContext(ctx).Where("token = ?", token).First(&reset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrInvalidOrExpiredToken
		}
		return utils.Internal("Could not reset password", err)
	}
	if reset.Expired(s.Now()) {
		return utils.ErrInvalidOrExpiredToken
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return utils.Internal("Could not hash password", err)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Deleting first makes a concurrent second redemption fail.
		res := tx.Where("id = ?", reset.ID).Delete(&models.PasswordResetToken{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrInvalidOrExpiredToken
		}
		return s.setPassword(tx, reset.UserID, hash)
	})
	return asAppError(err, "Could not reset password")
}

// AdminResetPassword force-sets a user's password, dropping their reset
// tokens and sessions.
func (s *AuthService) AdminResetPassword(ctx context.Context, userID uint, newPassword string) error {
	if err := s.checkPassword(newPassword); err != nil {
		return err
	}
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return utils.Internal("Could not hash password", err)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return s.setPassword(tx, userID, hash)
	})
	return asAppError(err, "Could not reset password")
}

func (s *AuthService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrUserNotFound
		}
		return nil, utils.Internal("Could not load user", err)
	}
	return &user, nil
}

// LastLogin returns the time of the most recent login, or nil.
func (s *AuthService) LastLogin(ctx context.Context, userID uint) (*time.Time, error) {
	var history models.LoginHistory
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("login_time DESC").First(&history).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, utils.Internal("Could not load login history", err)
	}
	return &history.LoginTime, nil
}

// UpdateProfile changes username, email and password. Empty fields are left
// as they are; a new password needs the current one.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if err := s.Validator.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.NewPassword != "" {
		if in.OldPassword == "" {
			return nil, utils.BadRequestError("Old password is required to set new password")
		}
		if !utils.CheckPassword(in.OldPassword, user.PasswordHash) {
			return nil, utils.ErrInvalidOldPassword
		}
		if err := s.checkPassword(in.NewPassword); err != nil {
			return nil, err
		}
		hash, err := utils.HashPassword(in.NewPassword)
		if err != nil {
			return nil, utils.Internal("Could not hash password", err)
		}
		user.PasswordHash = hash
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.Username != "" && in.Username != user.Username {
			if taken, err := exists(tx, &models.User{}, "username = ? AND id <> ?", in.Username, user.ID); err != nil {
				return err
			} else if taken {
				return utils.ErrUsernameTaken
			}
			user.Username = in.Username
		}
		if in.Email != "" && in.Email != user.Email {
			if taken, err := exists(tx, &models.User{}, "LOWER(email) = ? AND id <> ?", in.Email, user.ID); err != nil {
				return err
			} else if taken {
				return utils.ErrEmailTaken
			}
			user.Email = in.Email
		}
		user.UpdatedAt = s.Now()
		if err := tx.Save(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Could not update user")
	}
	return user, nil
}

func (s *AuthService) openSession(ctx context.Context, user models.User, meta SessionMeta) (*SessionResult, error) {
	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.Now().Add(s.Cfg.SessionTTL),
		IP:        meta.IP,
		UserAgent: truncate(meta.UserAgent, 255),
		CreatedAt: s.Now(),
	}
	if err := s.DB.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, utils.Internal("Could not create session", err)
	}

	token, err := utils.GenerateSessionToken(session.ID, user.ID, session.ExpiresAt, s.Cfg.SessionSecret)
	if err != nil {
		return nil, utils.Internal("Could not generate token", err)
	}
	return &SessionResult{User: user, Session: session, Token: token}, nil
}

// setPassword stores hash and revokes every session of the user.
func (s *AuthService) setPassword(tx *gorm.DB, userID uint, hash string) error {
	res := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"password":   hash,
		"updated_at": s.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrUserNotFound
	}
	return tx.Where("user_id = ?", userID).Delete(&models.Session{}).Error
}

func (s *AuthService) checkPassword(password string) error {
	if len(password) < s.Cfg.PasswordMinLen {
		return utils.ValidationFailed(map[string]string{
			"password": fmt.Sprintf("Must be at least %d characters long", s.Cfg.PasswordMinLen),
		})
	}
	return nil
}

func exists(tx *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// asAppError passes AppErrors through and wraps anything else as internal.
func asAppError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return utils.Internal(message, err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
