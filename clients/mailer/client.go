package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gadminbot/clients"
	"gadminbot/core"
)

const defaultBaseURL = "https://gmail.googleapis.com/gmail/v1"

// Client implements clients.MailClient against the Gmail send REST API. Mail
// is sent as the delegated admin ("me" in API terms).
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     clients.TokenSource
}

func NewClient(tokens clients.TokenSource) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		tokens:     tokens,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a test server.
func NewClientWithBaseURL(tokens clients.TokenSource, baseURL string) *Client {
	c := NewClient(tokens)
	c.baseURL = baseURL
	return c
}

func (c *Client) Send(ctx context.Context, to, from, subject, body string) error {
	raw := buildRawMessage(to, from, subject, body)
	reqBody, err := json.Marshal(map[string]string{
		"raw": base64.RawURLEncoding.EncodeToString([]byte(raw)),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + "/users/me/messages/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call mail API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return core.NewAPIError(resp.StatusCode, string(respBody))
	}
	return nil
}

// buildRawMessage assembles an RFC822 message with a UTF-8 encoded subject so
// emoji survive the transport.
func buildRawMessage(to, from, subject, body string) string {
	encodedSubject := fmt.Sprintf("=?UTF-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(subject)))
	return strings.Join([]string{
		"To: " + to,
		"Subject: " + encodedSubject,
		"From: " + from,
		`Content-Type: text/plain; charset="UTF-8"`,
		"MIME-Version: 1.0",
		"",
		body,
	}, "\n")
}
