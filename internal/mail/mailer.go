// Package mail abstracts delivery of account verification mail.
package mail

import (
	"context"

	"go.uber.org/zap"
)

// Mailer delivers a verification message carrying the confirmation token.
type Mailer interface {
	SendVerification(ctx context.Context, to, token string) error
}

// LogMailer writes the mail to the log instead of sending it. Used in
// development deployments where no mail relay is configured.
type LogMailer struct{ log *zap.Logger }

// NewLogMailer constructs a LogMailer.
func NewLogMailer(log *zap.Logger) *LogMailer { return &LogMailer{log: log} }

// SendVerification logs the verification token for the recipient.
func (m *LogMailer) SendVerification(_ context.Context, to, token string) error {
	m.log.Info("verification mail",
		zap.String("to", to),
		zap.String("token", token),
	)
	return nil
}
