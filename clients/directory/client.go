package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gadminbot/clients"
	"gadminbot/core"
	"gadminbot/models"
)

const defaultBaseURL = "https://admin.googleapis.com/admin/directory/v1"

// Client implements clients.DirectoryClient against the Admin SDK Directory
// REST API.
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

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call directory API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return core.NewAPIError(resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) GetUser(ctx context.Context, userKey string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userKey), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListUsers(ctx context.Context, domain, query string, maxResults int) ([]models.User, error) {
	params := url.Values{}
	params.Set("domain", domain)
	if query != "" {
		params.Set("query", query)
	}
	if maxResults > 0 {
		params.Set("maxResults", strconv.Itoa(maxResults))
	}

	var result struct {
		Users []models.User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/users", params, nil, &result); err != nil {
		return nil, err
	}
	return result.Users, nil
}

func (c *Client) GetGroup(ctx context.Context, groupKey string) (*models.Group, error) {
	var group models.Group
	if err := c.do(ctx, http.MethodGet, "/groups/"+url.PathEscape(groupKey), nil, nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (c *Client) ListGroupsForUser(ctx context.Context, userKey string) ([]models.Group, error) {
	params := url.Values{}
	params.Set("userKey", userKey)

	var result struct {
		Groups []models.Group `json:"groups"`
	}
	if err := c.do(ctx, http.MethodGet, "/groups", params, nil, &result); err != nil {
		return nil, err
	}
	return result.Groups, nil
}

func (c *Client) GetMembership(ctx context.Context, groupKey, memberKey string) (*models.Member, error) {
	path := "/groups/" + url.PathEscape(groupKey) + "/members/" + url.PathEscape(memberKey)
	var member models.Member
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *Client) ListMembers(ctx context.Context, groupKey string) ([]models.Member, error) {
	var result struct {
		Members []models.Member `json:"members"`
	}
	if err := c.do(ctx, http.MethodGet, "/groups/"+url.PathEscape(groupKey)+"/members", nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Members, nil
}

func (c *Client) InsertMember(ctx context.Context, groupKey string, member models.Member) error {
	return c.do(ctx, http.MethodPost, "/groups/"+url.PathEscape(groupKey)+"/members", nil, member, nil)
}

func (c *Client) DeleteMember(ctx context.Context, groupKey, memberKey string) error {
	path := "/groups/" + url.PathEscape(groupKey) + "/members/" + url.PathEscape(memberKey)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) UpdateMemberRole(ctx context.Context, groupKey, memberKey string, role models.MemberRole) error {
	path := "/groups/" + url.PathEscape(groupKey) + "/members/" + url.PathEscape(memberKey)
	body := map[string]models.MemberRole{"role": role}
	return c.do(ctx, http.MethodPatch, path, nil, body, nil)
}
