package resolver

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gadminbot/clients"
	"gadminbot/core"
)

// ResolverService expands abbreviated emails and fuzzy display names into
// canonical directory addresses.
type ResolverService struct {
	directoryClient clients.DirectoryClient
	domain          string
}

func NewResolverService(directoryClient clients.DirectoryClient, domain string) *ResolverService {
	return &ResolverService{directoryClient: directoryClient, domain: domain}
}

// CompleteEmail appends the configured domain to addresses that end at "@" or
// have no dot after "@". Fully qualified addresses pass through unchanged, so
// the function is idempotent.
func (s *ResolverService) CompleteEmail(email string) string {
	if email == "" {
		return email
	}
	if strings.HasSuffix(email, "@") {
		return email + s.domain
	}
	if at := strings.Index(email, "@"); at >= 0 && !strings.Contains(email[at:], ".") {
		return email + s.domain
	}
	return email
}

// ResolveUserEmail resolves a raw token into a canonical user email. The
// chain degrades gracefully: every lookup miss falls through to the next
// strategy and the final fallback is the original input.
func (s *ResolverService) ResolveUserEmail(ctx context.Context, token string) string {
	input := strings.TrimSpace(token)
	if input == "" {
		return input
	}

	if strings.Contains(input, "@") {
		fullEmail := s.CompleteEmail(input)
		if user, err := s.directoryClient.GetUser(ctx, fullEmail); err == nil {
			return user.PrimaryEmail
		}
		// Best-effort: the completed address is still useful downstream even
		// if the lookup missed.
		return fullEmail
	}

	if user, err := s.directoryClient.GetUser(ctx, strings.ToLower(input)); err == nil {
		return user.PrimaryEmail
	}

	if email, ok := s.searchByDisplayName(ctx, input); ok {
		return email
	}
	if firstWord := strings.Fields(input); len(firstWord) > 1 {
		if email, ok := s.searchByDisplayName(ctx, firstWord[0]); ok {
			return email
		}
	}

	log.Printf("⚠️ Could not resolve %q to a directory user, keeping input as-is", input)
	return input
}

// searchByDisplayName runs a prefix query against the configured domain and
// returns the first match.
func (s *ResolverService) searchByDisplayName(ctx context.Context, name string) (string, bool) {
	query := fmt.Sprintf("name:'%s*'", strings.Join(strings.Fields(name), "+"))
	users, err := s.directoryClient.ListUsers(ctx, s.domain, query, 1)
	if err != nil || len(users) == 0 {
		return "", false
	}
	return users[0].PrimaryEmail, true
}

// UserDisplayName returns the user's full name, falling back to the email on
// any lookup failure. It never errors.
func (s *ResolverService) UserDisplayName(ctx context.Context, userEmail string) string {
	user, err := s.directoryClient.GetUser(ctx, userEmail)
	if err != nil || user.Name.FullName == "" {
		return userEmail
	}
	return user.Name.FullName
}

// GroupName returns the group's display name. A 404 from the directory is
// mapped to core.ErrGroupNotFound; other errors propagate unmodified.
func (s *ResolverService) GroupName(ctx context.Context, groupEmail string) (string, error) {
	group, err := s.directoryClient.GetGroup(ctx, groupEmail)
	if err != nil {
		if core.IsNotFound(err) {
			return "", core.ErrGroupNotFound
		}
		return "", err
	}
	if group.Name == "" {
		return groupEmail, nil
	}
	return group.Name, nil
}
