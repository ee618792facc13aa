package mailer

import (
	"context"

	"github.com/resend/resend-go/v2"

	"seo-weekly-mail/internal/config"
	"seo-weekly-mail/internal/models"
)

// ResendSender sends the digest through the Resend API.
type ResendSender struct {
	client *resend.Client
}

// NewResendSender creates a new Resend sender.
func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey)}
}

// Send sends msg as a plain-text email.
func (s *ResendSender) Send(ctx context.Context, msg models.Message) error {
	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Body,
	}
	if msg.ID != "" {
		params.Headers = map[string]string{"X-Entity-Ref-ID": msg.ID}
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return &DeliveryError{Transport: config.TransportResend, Op: "send", Err: err}
	}
	return nil
}
