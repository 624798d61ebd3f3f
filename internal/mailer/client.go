package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const brevoAPIURL = "https://api.brevo.com/v3/smtp/email"

// Sender delivers transactional email. Delivery is best-effort; callers log
// and swallow failures rather than failing the primary operation.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
	SendVerificationEmail(ctx context.Context, to, code string) error
}

// Client talks to the Brevo transactional email API. When credentials are
// absent it degrades to a no-op that reports the skip as an error so the
// caller can log it.
type Client struct {
	apiKey     string
	fromEmail  string
	fromName   string
	httpClient *http.Client
	configured bool
}

func NewClient(apiKey, fromEmail, fromName string) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if apiKey != "" && fromEmail != "" && fromName != "" {
		c.apiKey = apiKey
		c.fromEmail = fromEmail
		c.fromName = fromName
		c.configured = true
	}
	return c
}

func (c *Client) IsConfigured() bool { return c.configured }

type sendEmailReq struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HtmlContent string              `json:"htmlContent"`
}

func (c *Client) Send(ctx context.Context, to, subject, html string) error {
	if !c.configured {
		return fmt.Errorf("mailer not configured, email to %s skipped", to)
	}
	if to == "" || subject == "" || html == "" {
		return errors.New("to, subject and html cannot be empty")
	}

	reqBody := sendEmailReq{
		Sender:      map[string]string{"email": c.fromEmail, "name": c.fromName},
		To:          []map[string]string{{"email": to}},
		Subject:     subject,
		HtmlContent: html,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal email request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPIURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	httpReq.Header.Set("api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var body map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("brevo API error: status %d, body: %v", resp.StatusCode, body)
	}
	return nil
}

// SendVerificationEmail sends the OTP email used during signup.
func (c *Client) SendVerificationEmail(ctx context.Context, to, code string) error {
	html := fmt.Sprintf(`
    <div style="font-family: Arial, sans-serif;">
      <h2>InstaChat - Email Verification</h2>
      <p>Your verification code is:</p>
      <div style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">%s</div>
      <p>This code expires in 10 minutes.</p>
    </div>`, code)
	return c.Send(ctx, to, "InstaChat - Verify your email", html)
}
