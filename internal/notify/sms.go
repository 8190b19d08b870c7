// Package notify delivers SMS to clients: appointment reminders and
// order pickup notices.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SMSClient talks to a Twilio-compatible Messages endpoint. An
// unconfigured client (empty account SID) logs the message instead of
// sending, which keeps development and tests offline.
type SMSClient struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
}

func NewSMSClient(accountSID, authToken, from, baseURL string) *SMSClient {
	return &SMSClient{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled reports whether real delivery is configured.
func (c *SMSClient) Enabled() bool {
	return c.accountSID != ""
}

type smsResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// Send delivers one message. Success or failure only; there is no
// delivery tracking beyond the provider's immediate response.
func (c *SMSClient) Send(ctx context.Context, to, body string) error {
	if !c.Enabled() {
		slog.Info("==========================================")
		slog.Info("📱 SMS (not configured, logging only)")
		slog.Info("To: " + to)
		slog.Info("Body: " + body)
		slog.Info("==========================================")
		return nil
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	var smsResp smsResponse
	if err := json.NewDecoder(resp.Body).Decode(&smsResp); err != nil {
		return fmt.Errorf("failed to decode SMS response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if smsResp.ErrorMessage != "" {
			return fmt.Errorf("SMS provider returned status %d: %s", resp.StatusCode, smsResp.ErrorMessage)
		}
		return fmt.Errorf("SMS provider returned status %d", resp.StatusCode)
	}

	slog.Info("SMS sent", "to", to, "sid", smsResp.SID, "status", smsResp.Status)
	return nil
}
