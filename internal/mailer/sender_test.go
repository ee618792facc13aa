package mailer

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seo-weekly-mail/internal/config"
	"seo-weekly-mail/internal/models"
)

type recordingSender struct {
	sent []models.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg models.Message) error {
	s.sent = append(s.sent, msg)
	return s.err
}

func TestDispatch_MissingConfigurationNoConnection(t *testing.T) {
	relay := startRelay(t, "235 ok")
	base := config.Env{
		"SEO_SMTP_HOST":     relay.host(),
		"SEO_SMTP_PORT":     strconv.Itoa(relay.port()),
		"SEO_SMTP_USER":     "bot@example.com",
		"SEO_SMTP_PASSWORD": "secret",
		"SEO_MAIL_TO":       "owner@example.com",
		"SEO_SMTP_USE_TLS":  "false",
	}

	for _, missing := range []string{"SEO_SMTP_USER", "SEO_SMTP_PASSWORD", "SEO_MAIL_TO"} {
		t.Run(missing, func(t *testing.T) {
			env := config.Env{}
			for k, v := range base {
				env[k] = v
			}
			delete(env, missing)

			err := Dispatch(context.Background(), env, testMessage())

			var cfgErr *config.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, missing, cfgErr.Key)
		})
	}

	accepted, _, _, _ := relay.snapshot()
	assert.Zero(t, accepted, "no connection may be attempted with incomplete configuration")
}

func TestDispatch_AllRequiredUnset(t *testing.T) {
	err := Dispatch(context.Background(), config.Env{}, testMessage())

	var cfgErr *config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "SEO_SMTP_HOST", cfgErr.Key)
}

func TestDispatch_SMTPEndToEnd(t *testing.T) {
	relay := startRelay(t, "235 ok")
	env := config.Env{
		"SEO_SMTP_HOST":     relay.host(),
		"SEO_SMTP_PORT":     strconv.Itoa(relay.port()),
		"SEO_SMTP_USER":     "bot@example.com",
		"SEO_SMTP_PASSWORD": "secret",
		"SEO_MAIL_FROM":     "seo@example.com",
		"SEO_MAIL_TO":       "owner@example.com",
		"SEO_SMTP_USE_TLS":  "0",
	}
	msg := testMessage()
	msg.From, msg.To = "", ""

	require.NoError(t, Dispatch(context.Background(), env, msg))

	assert.True(t, relay.sawCommand("MAIL FROM:<SEO@EXAMPLE.COM>"))
	assert.True(t, relay.sawCommand("RCPT TO:<OWNER@EXAMPLE.COM>"))
}

func TestDeliver_FillsEnvelopeAndPropagatesError(t *testing.T) {
	cfg := &config.Config{Transport: config.TransportSMTP, From: "seo@example.com", To: "owner@example.com"}
	failure := &DeliveryError{Transport: config.TransportSMTP, Op: "send", Err: errors.New("452 mailbox full")}
	sender := &recordingSender{err: failure}

	err := deliver(context.Background(), cfg, sender, models.Message{Subject: "s", Body: "b", Week: 2})

	assert.Same(t, failure, err)
	require.Len(t, sender.sent, 1, "a failed delivery is not retried")
	assert.Equal(t, "seo@example.com", sender.sent[0].From)
	assert.Equal(t, "owner@example.com", sender.sent[0].To)
}

func TestNew_SelectsTransport(t *testing.T) {
	tests := []struct {
		cfg  config.Config
		want Sender
	}{
		{config.Config{Transport: config.TransportSMTP}, &SMTPSender{}},
		{config.Config{Transport: config.TransportResend}, &ResendSender{}},
		{config.Config{Transport: config.TransportNATS}, &QueueSender{}},
		{config.Config{Transport: config.TransportGraph}, &GraphSender{}},
	}
	for _, tt := range tests {
		s, err := New(&tt.cfg)
		require.NoError(t, err)
		assert.IsType(t, tt.want, s)
	}

	_, err := New(&config.Config{Transport: "fax"})
	var cfgErr *config.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}
