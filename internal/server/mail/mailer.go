// Package mail abstracts outbound email delivery. The server only ever
// sends short transactional messages (sign-up and password-reset codes), so
// the contract is a single Send.
package mail

import (
	"context"

	"github.com/vevey/vevey/internal/logging"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, text string) error
}

// LogMailer writes messages to the log instead of delivering them. Used in
// development and tests. The body carries confirmation codes, so it is
// logged at debug only.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("component", "mail")}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, text string) error {
	m.logger.Info(ctx, "mail suppressed", "to", to, "subject", subject)
	m.logger.Debug(ctx, "mail body", "text", text)
	return nil
}
