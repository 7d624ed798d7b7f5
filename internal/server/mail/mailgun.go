package mail

import (
	"context"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// MailgunMailer delivers through the Mailgun API.
type MailgunMailer struct {
	mg   *mailgun.MailgunImpl
	from string
}

func NewMailgunMailer(domain, apiKey, from string) *MailgunMailer {
	return &MailgunMailer{mg: mailgun.NewMailgun(domain, apiKey), from: from}
}

func (m *MailgunMailer) Send(ctx context.Context, to, subject, text string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	message := m.mg.NewMessage(m.from, subject, text, to)
	_, _, err := m.mg.Send(ctx, message)
	return err
}
