package config

import (
	"strconv"

	"github.com/joho/godotenv"
)

const masked = "********"

// Dump renders cfg in dotenv syntax, suitable for a .env.seo-mail file.
// Secrets are masked.
func Dump(cfg *Config, subjectPrefix string) (string, error) {
	vars := map[string]string{
		"SEO_MAIL_TRANSPORT":      string(cfg.Transport),
		"SEO_MAIL_TO":             cfg.To,
		"SEO_MAIL_SUBJECT_PREFIX": subjectPrefix,
	}
	if cfg.From != "" {
		vars["SEO_MAIL_FROM"] = cfg.From
	}

	switch cfg.Transport {
	case TransportSMTP:
		vars["SEO_SMTP_HOST"] = cfg.SMTP.Host
		vars["SEO_SMTP_PORT"] = strconv.Itoa(cfg.SMTP.Port)
		vars["SEO_SMTP_USER"] = cfg.SMTP.User
		vars["SEO_SMTP_PASSWORD"] = masked
		vars["SEO_SMTP_USE_TLS"] = strconv.FormatBool(cfg.SMTP.TLS)
	case TransportResend:
		vars["SEO_RESEND_API_KEY"] = masked
	case TransportNATS:
		vars["SEO_NATS_URL"] = cfg.NATS.URL
		vars["SEO_MAIL_APP_TAG"] = cfg.NATS.AppTag
	case TransportGraph:
		vars["SEO_GRAPH_TENANT_ID"] = cfg.Graph.TenantID
		vars["SEO_GRAPH_CLIENT_ID"] = cfg.Graph.ClientID
		vars["SEO_GRAPH_CLIENT_SECRET"] = masked
	}

	return godotenv.Marshal(vars)
}
