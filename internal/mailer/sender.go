// Package mailer delivers the weekly digest. Every transport makes exactly
// one attempt; failures come back as *DeliveryError and are never retried.
package mailer

import (
	"context"
	"fmt"
	"log"
	"time"

	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"seo-weekly-mail/internal/config"
	"seo-weekly-mail/internal/models"
)

// Timeout bounds every network operation of a single delivery.
const Timeout = 30 * time.Second

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg models.Message) error
}

// DeliveryError reports a failed connect, authentication or transmission.
type DeliveryError struct {
	Transport config.Transport
	Op        string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Transport, e.Op, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// New returns the Sender for cfg.Transport.
func New(cfg *config.Config) (Sender, error) {
	switch cfg.Transport {
	case config.TransportSMTP:
		return NewSMTPSender(cfg.SMTP), nil
	case config.TransportResend:
		return NewResendSender(cfg.Resend.APIKey), nil
	case config.TransportNATS:
		return NewQueueSender(cfg.NATS), nil
	case config.TransportGraph:
		return NewGraphSender(cfg.Graph), nil
	}
	return nil, &config.ConfigurationError{Key: "SEO_MAIL_TRANSPORT", Reason: fmt.Sprintf("unknown transport %q", cfg.Transport)}
}

// Dispatch resolves the mail configuration from env and sends msg once.
// Configuration problems are reported before any connection is opened.
func Dispatch(ctx context.Context, env config.Env, msg models.Message) error {
	cfg, err := config.Load(env)
	if err != nil {
		return err
	}
	sender, err := New(cfg)
	if err != nil {
		return err
	}
	return deliver(ctx, cfg, sender, msg)
}

func deliver(ctx context.Context, cfg *config.Config, sender Sender, msg models.Message) (err error) {
	msg.From = cfg.From
	msg.To = cfg.To

	span, ctx := tracer.StartSpanFromContext(ctx, "digest.dispatch",
		tracer.ResourceName(string(cfg.Transport)),
		tracer.Tag("digest.week", msg.Week),
		tracer.Tag("digest.id", msg.ID),
	)
	defer func() { span.Finish(tracer.WithError(err)) }()

	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	log.Printf("Sending week %d digest via %s (id %s)", msg.Week, cfg.Transport, msg.ID)
	if err = sender.Send(ctx, msg); err != nil {
		log.Printf("ERROR: delivery of week %d digest failed: %v", msg.Week, err)
		return err
	}
	log.Printf("Successfully sent week %d digest via %s", msg.Week, cfg.Transport)
	return nil
}
