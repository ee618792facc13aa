package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"seo-weekly-mail/internal/config"
	"seo-weekly-mail/internal/models"
)

const (
	defaultLoginURL = "https://login.microsoftonline.com"
	defaultGraphURL = "https://graph.microsoft.com/v1.0"
)

// GraphSender sends through Microsoft Graph sendMail with an app-only
// token (client credentials flow). The mailbox of msg.From is used.
type GraphSender struct {
	cfg      config.GraphConfig
	client   *http.Client
	loginURL string
	graphURL string
}

// oAuthTokenResponse wird verwendet, um die Antwort des Token-Endpunkts zu parsen.
type oAuthTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type graphMessage struct {
	Message struct {
		Subject      string      `json:"subject"`
		Body         graphBody   `json:"body"`
		ToRecipients []recipient `json:"toRecipients"`
	} `json:"message"`
	SaveToSentItems bool `json:"saveToSentItems"`
}

type graphBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

type emailAddress struct {
	Address string `json:"address"`
}

func NewGraphSender(cfg config.GraphConfig) *GraphSender {
	return &GraphSender{
		cfg:      cfg,
		client:   &http.Client{Timeout: Timeout},
		loginURL: defaultLoginURL,
		graphURL: defaultGraphURL,
	}
}

func (g *GraphSender) Send(ctx context.Context, msg models.Message) error {
	accessToken, err := g.getAccessToken(ctx)
	if err != nil {
		return &DeliveryError{Transport: config.TransportGraph, Op: "authenticate", Err: err}
	}

	var payload graphMessage
	payload.Message.Subject = msg.Subject
	payload.Message.Body = graphBody{ContentType: "Text", Content: msg.Body}
	payload.Message.ToRecipients = []recipient{{EmailAddress: emailAddress{Address: msg.To}}}
	payload.SaveToSentItems = true

	emailBytes, err := json.Marshal(payload)
	if err != nil {
		return &DeliveryError{Transport: config.TransportGraph, Op: "encode", Err: err}
	}

	endpoint := fmt.Sprintf("%s/users/%s/sendMail", g.graphURL, url.PathEscape(msg.From))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(emailBytes))
	if err != nil {
		return &DeliveryError{Transport: config.TransportGraph, Op: "send", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return &DeliveryError{Transport: config.TransportGraph, Op: "send", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &DeliveryError{
			Transport: config.TransportGraph,
			Op:        "send",
			Err:       fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(bodyBytes)),
		}
	}
	return nil
}

// getAccessToken ruft ein OAuth2-Zugriffstoken von Microsoft Identity Platform ab.
func (g *GraphSender) getAccessToken(ctx context.Context) (string, error) {
	tokenURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", g.loginURL, url.PathEscape(g.cfg.TenantID))
	form := url.Values{
		"client_id":     {g.cfg.ClientID},
		"client_secret": {g.cfg.ClientSecret},
		"scope":         {"https://graph.microsoft.com/.default"},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("failed to get token, status: %d, response: %s", resp.StatusCode, string(bodyBytes))
	}

	var tokenResponse oAuthTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResponse.AccessToken == "" {
		return "", fmt.Errorf("token response carried no access_token")
	}
	return tokenResponse.AccessToken, nil
}
