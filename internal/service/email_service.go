package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"time"
)

// EmailService sends mail through an HTTP mail API (Resend compatible).
type EmailService struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
}

func NewEmailService(apiKey, from, endpoint string) *EmailService {
	return &EmailService{
		apiKey:   apiKey,
		from:     from,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// SendPasswordReset mails the reset key. Without an API key the mail is
// only logged.
func (s *EmailService) SendPasswordReset(ctx context.Context, to, login, key string) error {
	if s.apiKey == "" {
		log.Printf("[reset-password] mail disabled, reset requested for %s", login)
		return nil
	}

	payload := map[string]interface{}{
		"from":    s.from,
		"to":      []string{to},
		"subject": "21-Points password reset",
		"html":    buildResetEmail(login, key),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail api error %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

func buildResetEmail(login, key string) string {
	return `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family:Arial,sans-serif;padding:20px;">
  <h2>21-Points password reset</h2>
  <p>Hello ` + html.EscapeString(login) + `,</p>
  <p>Use this key to choose a new password. It is valid for 24 hours.</p>
  <p style="font-size:28px;font-weight:bold;letter-spacing:6px;">` + html.EscapeString(key) + `</p>
  <p>If you did not ask for a reset, ignore this email.</p>
</body>
</html>`
}
