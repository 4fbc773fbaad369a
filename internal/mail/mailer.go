package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Mailer delivers notifications to users. The auth flow only hands it a
// reset link; delivery mechanics live entirely behind this interface.
type Mailer interface {
	SendPasswordReset(ctx context.Context, toEmail, resetLink string) error
}

// Config holds mail delivery settings.
type Config struct {
	APIKey    string
	BaseURL   string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// New returns a Mailer. Without an API key it falls back to logging the
// reset link, which is what local development runs with.
func New(cfg Config) Mailer {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return &logMailer{}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// client sends mail through the SendGrid v3 API.
type client struct {
	cfg        Config
	httpClient *http.Client
}

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendRequest struct {
	Personalizations []struct {
		To []emailAddress `json:"to"`
	} `json:"personalizations"`
	From    emailAddress `json:"from"`
	Subject string       `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func (c *client) SendPasswordReset(ctx context.Context, toEmail, resetLink string) error {
	body := sendRequest{
		From:    emailAddress{Email: c.cfg.FromEmail, Name: c.cfg.FromName},
		Subject: "Reset your IPQuest password",
	}
	body.Personalizations = append(body.Personalizations, struct {
		To []emailAddress `json:"to"`
	}{To: []emailAddress{{Email: toEmail}}})
	body.Content = append(body.Content, struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{
		Type: "text/plain",
		Value: fmt.Sprintf(
			"A password reset was requested for your account.\n\n"+
				"Open the link below within 15 minutes to choose a new password:\n\n%s\n\n"+
				"If you did not request this, you can ignore this email.", resetLink),
	})

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+"/v3/mail/send", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mail provider returned %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}

// logMailer writes the reset link to the application log instead of
// delivering it.
type logMailer struct{}

func (m *logMailer) SendPasswordReset(_ context.Context, toEmail, resetLink string) error {
	log.Info().Str("email", toEmail).Str("link", resetLink).Msg("Mail delivery disabled, logging reset link")
	return nil
}
