package notification

import (
	"context"
	"fmt"

	"github.com/keighl/postmark"
	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// postmarkMailer sends email through Postmark.
type postmarkMailer struct {
	client *postmark.Client
	from   string
}

// NewPostmarkMailer creates a Mailer backed by a Postmark server token.
func NewPostmarkMailer(serverToken, from string) Mailer {
	return &postmarkMailer{
		client: postmark.NewClient(serverToken, ""),
		from:   from,
	}
}

// Send delivers msg. The Postmark client has no context support, so ctx is
// only checked before the call.
func (m *postmarkMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := m.client.SendEmail(postmark.Email{
		From:     m.from,
		To:       msg.To,
		Subject:  msg.Subject,
		HtmlBody: msg.HTMLBody,
		TextBody: msg.TextBody,
		Tag:      "order-confirmation",
	})
	if err != nil {
		return fmt.Errorf("failed to send email via postmark: %w", err)
	}
	return nil
}

// sendGridMailer sends email through SendGrid.
type sendGridMailer struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

// NewSendGridMailer creates a Mailer backed by a SendGrid API key.
func NewSendGridMailer(apiKey, from, fromName string) Mailer {
	return &sendGridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}
}

func (m *sendGridMailer) Send(ctx context.Context, msg Message) error {
	email := mail.NewSingleEmail(
		mail.NewEmail(m.fromName, m.from),
		msg.Subject,
		mail.NewEmail("", msg.To),
		msg.TextBody,
		msg.HTMLBody,
	)

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid rejected email: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// logMailer writes emails to the log instead of sending them.
type logMailer struct {
	logger zerolog.Logger
}

// NewLogMailer creates a Mailer for local development.
func NewLogMailer(logger zerolog.Logger) Mailer {
	return &logMailer{logger: logger.With().Str("component", "log-mailer").Logger()}
}

func (m *logMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("html_bytes", len(msg.HTMLBody)).
		Msg("email not sent, log provider configured")
	return nil
}
