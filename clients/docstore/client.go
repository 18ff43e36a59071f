package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/samber/mo"

	"gadminbot/clients"
	"gadminbot/core"
)

const defaultBaseURL = "https://firestore.googleapis.com/v1"

// Client implements clients.DocumentStoreClient against the Firestore REST
// API. Only the two startup documents are ever read; there is no live-update
// contract.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     clients.TokenSource
	projectID  string
	databaseID string

	promptCollection string
	promptField      string
	faqCollection    string
	faqField         string
}

func NewClient(tokens clients.TokenSource, projectID, databaseID string) *Client {
	return &Client{
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		baseURL:          defaultBaseURL,
		tokens:           tokens,
		projectID:        projectID,
		databaseID:       databaseID,
		promptCollection: "bot-config",
		promptField:      "group_management_prompt",
		faqCollection:    "faq",
		faqField:         "faq_documentation",
	}
}

// NewClientWithBaseURL is used by tests to point the client at a test server.
func NewClientWithBaseURL(tokens clients.TokenSource, projectID, databaseID, baseURL string) *Client {
	c := NewClient(tokens, projectID, databaseID)
	c.baseURL = baseURL
	return c
}

func (c *Client) GetPromptTemplate(ctx context.Context) (mo.Option[string], error) {
	return c.firstDocumentField(ctx, c.promptCollection, c.promptField)
}

func (c *Client) GetFaqDocument(ctx context.Context) (mo.Option[string], error) {
	return c.firstDocumentField(ctx, c.faqCollection, c.faqField)
}

type firestoreValue struct {
	StringValue string `json:"stringValue"`
}

type firestoreDocument struct {
	Fields map[string]firestoreValue `json:"fields"`
}

type listDocumentsResponse struct {
	Documents []firestoreDocument `json:"documents"`
}

// firstDocumentField reads the named string field from the first document of
// a collection. An empty collection or absent field is None, not an error.
func (c *Client) firstDocumentField(ctx context.Context, collection, field string) (mo.Option[string], error) {
	none := mo.None[string]()

	endpoint := fmt.Sprintf("%s/projects/%s/databases/%s/documents/%s?pageSize=1",
		c.baseURL, url.PathEscape(c.projectID), url.PathEscape(c.databaseID), url.PathEscape(collection))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return none, fmt.Errorf("failed to create request: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return none, fmt.Errorf("failed to acquire token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return none, fmt.Errorf("failed to call document store: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return none, nil
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return none, core.NewAPIError(resp.StatusCode, string(respBody))
	}

	var result listDocumentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return none, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Documents) == 0 {
		return none, nil
	}
	value, ok := result.Documents[0].Fields[field]
	if !ok || value.StringValue == "" {
		return none, nil
	}
	return mo.Some(value.StringValue), nil
}
