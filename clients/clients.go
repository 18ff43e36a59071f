package clients

import (
	"context"

	"github.com/samber/mo"

	"gadminbot/models"
)

// DirectoryClient is the directory backend surface used by the bot. Failed
// calls return *core.APIError carrying the backend status code so callers can
// distinguish 400/403/404/409.
type DirectoryClient interface {
	GetUser(ctx context.Context, userKey string) (*models.User, error)
	ListUsers(ctx context.Context, domain, query string, maxResults int) ([]models.User, error)
	GetGroup(ctx context.Context, groupKey string) (*models.Group, error)
	ListGroupsForUser(ctx context.Context, userKey string) ([]models.Group, error)
	GetMembership(ctx context.Context, groupKey, memberKey string) (*models.Member, error)
	ListMembers(ctx context.Context, groupKey string) ([]models.Member, error)
	InsertMember(ctx context.Context, groupKey string, member models.Member) error
	DeleteMember(ctx context.Context, groupKey, memberKey string) error
	UpdateMemberRole(ctx context.Context, groupKey, memberKey string, role models.MemberRole) error
}

// CompleteOptions constrains a generative completion request.
type CompleteOptions struct {
	// ResponseMIMEType asks the backend for machine-readable structured
	// output, e.g. "application/json".
	ResponseMIMEType string
}

// GenerativeClient is the opaque text-completion backend used by the intent
// classifier and the tier-2 FAQ fallback.
type GenerativeClient interface {
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error)
}

// DocumentStoreClient reads the startup configuration documents. A missing
// document or field is None, not an error.
type DocumentStoreClient interface {
	GetPromptTemplate(ctx context.Context) (mo.Option[string], error)
	GetFaqDocument(ctx context.Context) (mo.Option[string], error)
}

// MailClient sends notification emails.
type MailClient interface {
	Send(ctx context.Context, to, from, subject, body string) error
}

// TokenSource yields a bearer token for outbound API calls. Credential
// acquisition and refresh live outside the bot core.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type staticTokenSource struct {
	token string
}

func (s staticTokenSource) Token(_ context.Context) (string, error) {
	return s.token, nil
}

// StaticTokenSource returns a TokenSource that always yields the given token.
func StaticTokenSource(token string) TokenSource {
	return staticTokenSource{token: token}
}
