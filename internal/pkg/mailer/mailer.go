package mailer

import (
	"context"
	"fmt"
	"log"
)

// Mailer delivers fully-rendered messages. Implementations must not panic;
// callers decide whether a delivery failure is fatal for the surrounding flow.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, resetLink string) error
	SendPasswordChanged(ctx context.Context, email string) error
	SendVerificationCode(ctx context.Context, email, code string) error
}

// DevConsoleMailer logs outgoing mail instead of delivering it. Used outside
// production so reset links and verification codes land in the server log.
type DevConsoleMailer struct {
	enabled bool
}

func NewDevConsoleMailer(enabled bool) *DevConsoleMailer {
	return &DevConsoleMailer{enabled: enabled}
}

func (m *DevConsoleMailer) SendPasswordReset(_ context.Context, email, resetLink string) error {
	if m.enabled {
		log.Printf("[DEV-EMAIL] password reset email=%s link=%s", email, resetLink)
	}
	return nil
}

func (m *DevConsoleMailer) SendPasswordChanged(_ context.Context, email string) error {
	if m.enabled {
		log.Printf("[DEV-EMAIL] password changed notification email=%s", email)
	}
	return nil
}

func (m *DevConsoleMailer) SendVerificationCode(_ context.Context, email, code string) error {
	if m.enabled {
		log.Printf("[DEV-EMAIL] verification code email=%s code=%s", email, code)
	}
	return nil
}

// ResetLink builds the link embedded in reset emails.
func ResetLink(baseURL, token string, adminID int64) string {
	return fmt.Sprintf("%s/admin/reset-password?token=%s&id=%d", baseURL, token, adminID)
}
