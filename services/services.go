package services

import (
	"context"

	"github.com/samber/mo"

	"gadminbot/models"
)

// ResolverService resolves loosely specified user/group identifiers into
// canonical addresses. Every method is best-effort: lookup misses fall back
// to the input so downstream mutations surface a clear "not found" instead of
// the resolver failing the request.
type ResolverService interface {
	CompleteEmail(email string) string
	ResolveUserEmail(ctx context.Context, token string) string
	UserDisplayName(ctx context.Context, userEmail string) string
	// GroupName returns the group's display name, or the email itself when
	// the record has no name. A missing group is core.ErrGroupNotFound.
	GroupName(ctx context.Context, groupEmail string) (string, error)
}

// IntentService classifies free-form text into an operation intent. Failures
// are folded into the returned intent (operation NONE, optional apology in
// ReplyText) - classification never errors out of the dispatch path.
type IntentService interface {
	ClassifyIntent(ctx context.Context, text string) *models.OperationIntent
}

// FaqService answers free-text questions. None means no tier found an answer.
type FaqService interface {
	Answer(ctx context.Context, question string) mo.Option[string]
}

// AuthorizationService decides whether a user may mutate a group.
type AuthorizationService interface {
	CanMutate(ctx context.Context, groupKey, actingUser string) (bool, error)
}

// RuntimeProvider exposes the startup configuration snapshot. The second
// return is false until loading has concluded (success or degraded fallback).
type RuntimeProvider interface {
	Current() (*models.BotRuntime, bool)
}
