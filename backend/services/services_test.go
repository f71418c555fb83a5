package services

import (
	"context"
	"sync"
	"testing"

	"advocatr/backend/testutil"

	"gorm.io/gorm"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []MailMessage
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *recordingMailer) messages() []MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MailMessage(nil), m.sent...)
}

type fixture struct {
	svc    *Services
	db     *gorm.DB
	clock  *testutil.Clock
	mailer *recordingMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	mailer := &recordingMailer{}
	clock := testutil.NewClock()
	svc := New(db, testutil.Config(), mailer)
	svc.SetClock(clock.Now)
	return &fixture{svc: svc, db: db, clock: clock, mailer: mailer}
}
