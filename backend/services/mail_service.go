package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"advocatr/backend/config"
	"advocatr/backend/models"
	"advocatr/backend/utils"

	"gopkg.in/gomail.v2"
)

type MailMessage struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers outgoing email.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// SMTPMailer sends through an authenticated SMTP server.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPassword),
		from:   cfg.EmailUser,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	from := msg.From
	if from == "" {
		from = m.from
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", from)
	gm.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		gm.SetHeader("Reply-To", msg.ReplyTo)
	}
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them. It is used
// when no SMTP account is configured.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(_ context.Context, msg MailMessage) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("mail not sent, SMTP disabled",
		"to", msg.To,
		"reply_to", msg.ReplyTo,
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}

func NewMailer(cfg *config.Config) Mailer {
	if !cfg.MailEnabled() {
		slog.Warn("EMAIL_USER not set, outgoing mail will only be logged")
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}

// PasswordResetMessage builds the email carrying the reset link for token.
func PasswordResetMessage(cfg *config.Config, user models.User, token string) MailMessage {
	link := fmt.Sprintf("%s/reset-password?token=%s", cfg.AppBaseURL, url.QueryEscape(token))
	return MailMessage{
		To:      user.Email,
		Subject: "Reset your Advocatr password",
		Text: fmt.Sprintf("Hello %s,\n\n"+
			"We received a request to reset your password. Open the link below to choose a new one:\n\n"+
			"%s\n\n"+
			"The link expires in 24 hours. If you did not ask for this, ignore this email.\n",
			user.Username, link),
	}
}

type ContactInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Content string `json:"content" validate:"required,max=5000"`
}

// ContactService forwards contact form messages to the support inbox.
type ContactService struct {
	Cfg       *config.Config
	Mailer    Mailer
	Validator *utils.Validator
}

func NewContactService(cfg *config.Config, mailer Mailer, v *utils.Validator) *ContactService {
	return &ContactService{Cfg: cfg, Mailer: mailer, Validator: v}
}

func (s *ContactService) Send(ctx context.Context, in ContactInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Content = strings.TrimSpace(in.Content)
	if err := s.Validator.Struct(in); err != nil {
		return err
	}

	msg := MailMessage{
		To:      s.Cfg.ContactEmail,
		ReplyTo: in.Email,
		Subject: "Contact Form Message from " + in.Name,
		Text:    fmt.Sprintf("Name: %s\nEmail: %s\n\nMessage:\n%s\n", in.Name, in.Email, in.Content),
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		return utils.Internal("Failed to send message", err)
	}
	return nil
}
