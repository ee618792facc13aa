package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/mail.v2"

	"seo-weekly-mail/internal/config"
	"seo-weekly-mail/internal/models"
)

var (
	errNoSTARTTLS = errors.New("relay does not offer STARTTLS")
	errNoAuth     = errors.New("relay does not offer a supported AUTH mechanism")
)

// SMTPSender relays through an authenticated SMTP server. It owns the TCP
// connection for the whole session so the socket is closed on every path.
type SMTPSender struct {
	cfg       config.SMTPConfig
	tlsConfig *tls.Config
}

// NewSMTPSender builds a sender that upgrades to TLS with STARTTLS before
// authenticating when cfg.TLS is set, and never upgrades otherwise.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		cfg:       cfg,
		tlsConfig: &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
	}
}

// Send dials, authenticates and transmits msg.
func (s *SMTPSender) Send(ctx context.Context, msg models.Message) error {
	if err := ctx.Err(); err != nil {
		return s.fail("connect", err)
	}

	m := mail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.ID != "" {
		m.SetHeader("Message-ID", fmt.Sprintf("<%s@%s>", msg.ID, s.cfg.Host))
	}
	m.SetBody("text/plain", msg.Body)

	d := net.Dialer{Timeout: Timeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port)))
	if err != nil {
		return s.fail("connect", err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(Timeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return s.fail("connect", err)
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return s.fail("connect", err)
	}
	defer c.Close()

	if s.cfg.TLS {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return s.fail("starttls", errNoSTARTTLS)
		}
		if err := c.StartTLS(s.tlsConfig); err != nil {
			return s.fail("starttls", err)
		}
	}

	ok, mechs := c.Extension("AUTH")
	if !ok {
		return s.fail("authenticate", errNoAuth)
	}
	auth := credentials(mechs, s.cfg.User, s.cfg.Password)
	if auth == nil {
		return s.fail("authenticate", fmt.Errorf("%w: %s", errNoAuth, mechs))
	}
	if err := c.Auth(auth); err != nil {
		return s.fail("authenticate", err)
	}

	if err := c.Mail(msg.From); err != nil {
		return s.fail("send", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return s.fail("send", err)
	}
	w, err := c.Data()
	if err != nil {
		return s.fail("send", err)
	}
	if _, err := m.WriteTo(w); err != nil {
		w.Close()
		return s.fail("send", err)
	}
	if err := w.Close(); err != nil {
		return s.fail("send", err)
	}

	// The relay already accepted the message; a failed QUIT does not undo it.
	if err := c.Quit(); err != nil {
		log.Printf("WARN: closing SMTP session with %s: %v", s.cfg.Host, err)
	}
	return nil
}

func (s *SMTPSender) fail(op string, err error) error {
	return &DeliveryError{Transport: config.TransportSMTP, Op: op, Err: err}
}

// credentials picks PLAIN, then LOGIN, from the mechanisms the relay
// advertises. Both send the password as is, so callers only reach them
// after STARTTLS when TLS is required.
func credentials(advertised, user, password string) smtp.Auth {
	mechs := strings.Fields(strings.ToUpper(advertised))
	switch {
	case slices.Contains(mechs, "PLAIN"):
		return &plainAuth{user: user, password: password}
	case slices.Contains(mechs, "LOGIN"):
		return &loginAuth{user: user, password: password}
	}
	return nil
}

// plainAuth is RFC 4616 PLAIN without net/smtp's localhost-only rule for
// unencrypted connections.
type plainAuth struct {
	user, password string
}

func (a *plainAuth) Start(*smtp.ServerInfo) (string, []byte, error) {
	return "PLAIN", []byte("\x00" + a.user + "\x00" + a.password), nil
}

func (a *plainAuth) Next(_ []byte, more bool) ([]byte, error) {
	if more {
		return nil, errors.New("unexpected server challenge")
	}
	return nil, nil
}

type loginAuth struct {
	user, password string
}

func (a *loginAuth) Start(*smtp.ServerInfo) (string, []byte, error) {
	return "LOGIN", nil, nil
}

func (a *loginAuth) Next(challenge []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSpace(string(challenge))) {
	case "username:":
		return []byte(a.user), nil
	case "password:":
		return []byte(a.password), nil
	}
	return nil, fmt.Errorf("unexpected LOGIN challenge %q", challenge)
}
