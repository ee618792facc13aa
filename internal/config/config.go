package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nats-io/nats.go"
)

const (
	DefaultSubjectPrefix = "[Artimon Bike] Plan SEO hebdomadaire"
	DefaultSMTPPort      = 587
	DefaultAppTag        = "seo-weekly"
)

// Transport selects how the digest leaves the process.
type Transport string

const (
	TransportSMTP   Transport = "smtp"
	TransportResend Transport = "resend"
	TransportNATS   Transport = "nats"
	TransportGraph  Transport = "graph"
)

// ConfigurationError names the first required variable that is missing or
// unusable. It is always returned before any network I/O.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s environment variable is not set", e.Key)
	}
	return fmt.Sprintf("invalid %s: %s", e.Key, e.Reason)
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	TLS      bool
}

type ResendConfig struct {
	APIKey string
}

type NATSConfig struct {
	URL    string
	AppTag string
}

type GraphConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

// Config is the resolved mail configuration. Only the section matching
// Transport is populated.
type Config struct {
	Transport Transport
	From      string
	To        string

	SMTP   SMTPConfig
	Resend ResendConfig
	NATS   NATSConfig
	Graph  GraphConfig
}

// SubjectPrefix returns the configured subject prefix. It needs no
// validation, so dry runs can use it without a complete mail setup.
func SubjectPrefix(env Env) string {
	if v, ok := env.Lookup("SEO_MAIL_SUBJECT_PREFIX"); ok {
		return v
	}
	return DefaultSubjectPrefix
}

// Load resolves the mail configuration from env. Required keys are checked
// one at a time in a fixed order and the first missing one is reported.
func Load(env Env) (*Config, error) {
	cfg := &Config{
		Transport: Transport(strings.ToLower(env.Get("SEO_MAIL_TRANSPORT", string(TransportSMTP)))),
	}

	var err error
	switch cfg.Transport {
	case TransportSMTP:
		err = cfg.loadSMTP(env)
	case TransportResend:
		err = cfg.loadResend(env)
	case TransportNATS:
		err = cfg.loadNATS(env)
	case TransportGraph:
		err = cfg.loadGraph(env)
	default:
		err = &ConfigurationError{Key: "SEO_MAIL_TRANSPORT", Reason: fmt.Sprintf("unknown transport %q", cfg.Transport)}
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadSMTP(env Env) error {
	var err error
	if c.SMTP.Host, err = required(env, "SEO_SMTP_HOST"); err != nil {
		return err
	}
	if c.SMTP.User, err = required(env, "SEO_SMTP_USER"); err != nil {
		return err
	}
	if c.SMTP.Password, err = required(env, "SEO_SMTP_PASSWORD"); err != nil {
		return err
	}
	if c.To, err = required(env, "SEO_MAIL_TO"); err != nil {
		return err
	}

	portStr := env.Get("SEO_SMTP_PORT", strconv.Itoa(DefaultSMTPPort))
	port, perr := strconv.Atoi(portStr)
	if perr != nil || port < 1 || port > 65535 {
		return &ConfigurationError{Key: "SEO_SMTP_PORT", Reason: fmt.Sprintf("%q is not a valid port", portStr)}
	}
	c.SMTP.Port = port
	c.SMTP.TLS = truthy(env.Get("SEO_SMTP_USE_TLS", "true"))
	c.From = env.Get("SEO_MAIL_FROM", c.SMTP.User)
	return nil
}

func (c *Config) loadResend(env Env) error {
	var err error
	if c.Resend.APIKey, err = required(env, "SEO_RESEND_API_KEY"); err != nil {
		return err
	}
	if c.From, err = sender(env); err != nil {
		return err
	}
	c.To, err = required(env, "SEO_MAIL_TO")
	return err
}

func (c *Config) loadNATS(env Env) error {
	var err error
	if c.To, err = required(env, "SEO_MAIL_TO"); err != nil {
		return err
	}
	c.NATS.URL = env.Get("SEO_NATS_URL", nats.DefaultURL)
	c.NATS.AppTag = env.Get("SEO_MAIL_APP_TAG", DefaultAppTag)
	// The mail service decides the real sender from the app tag.
	c.From = env.Get("SEO_MAIL_FROM", "")
	return nil
}

func (c *Config) loadGraph(env Env) error {
	var err error
	if c.Graph.TenantID, err = required(env, "SEO_GRAPH_TENANT_ID"); err != nil {
		return err
	}
	if c.Graph.ClientID, err = required(env, "SEO_GRAPH_CLIENT_ID"); err != nil {
		return err
	}
	if c.Graph.ClientSecret, err = required(env, "SEO_GRAPH_CLIENT_SECRET"); err != nil {
		return err
	}
	if c.From, err = sender(env); err != nil {
		return err
	}
	c.To, err = required(env, "SEO_MAIL_TO")
	return err
}

func required(env Env, key string) (string, error) {
	v := env.Get(key, "")
	if v == "" {
		return "", &ConfigurationError{Key: key}
	}
	return v, nil
}

// sender falls back to SEO_SMTP_USER like the SMTP transport does.
func sender(env Env) (string, error) {
	if v := env.Get("SEO_MAIL_FROM", env.Get("SEO_SMTP_USER", "")); v != "" {
		return v, nil
	}
	return "", &ConfigurationError{Key: "SEO_MAIL_FROM"}
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}
