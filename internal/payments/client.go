// Package payments provisions hosted payment accounts for tenants. The
// app persists only the external account id; the account lifecycle
// itself lives with the provider.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewClient(secretKey, baseURL string) *Client {
	return &Client{
		secretKey: secretKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled reports whether a secret key is configured.
func (c *Client) Enabled() bool {
	return c.secretKey != ""
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to payments provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("payments provider returned status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("payments provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode payments response: %w", err)
	}
	return nil
}

// CreateAccount provisions an express-style connected account and
// returns its id.
func (c *Client) CreateAccount(ctx context.Context, email string) (string, error) {
	form := url.Values{}
	form.Set("type", "express")
	form.Set("email", email)

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, "/v1/accounts", form, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("payments provider returned no account id")
	}
	return resp.ID, nil
}

// CreateOnboardingLink mints a single-use onboarding session URL for an
// account. The user is redirected there to finish setup.
func (c *Client) CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	form := url.Values{}
	form.Set("account", accountID)
	form.Set("refresh_url", refreshURL)
	form.Set("return_url", returnURL)
	form.Set("type", "account_onboarding")

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.postForm(ctx, "/v1/account_links", form, &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", fmt.Errorf("payments provider returned no onboarding url")
	}
	return resp.URL, nil
}
