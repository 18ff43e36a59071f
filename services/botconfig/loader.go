package botconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"gadminbot/clients"
	"gadminbot/models"
)

const (
	maxLoadAttempts = 3
	retryInterval   = 5 * time.Second
)

// fallbackPromptTemplate is the built-in classification prompt installed when
// the document store has no template or loading is exhausted.
const fallbackPromptTemplate = `You are an intent classifier for a Google Workspace group management bot.
Classify the user's message into a JSON object with the fields "operation", "users", "group" and "reply_text".
"operation" must be one of ADD_USER, REMOVE_USER, LIST_MEMBERS, LEAVE_GROUP, MY_GROUPS, SOLICITAR_MANAGER, CHANGE_ROLE_MANAGER, VER_TODOS_LOS_MIEMBROS, HELP_MENU, FAQ_QUERY or NONE.
"users" lists the user emails or names mentioned, "group" is the group email or name, "reply_text" is a short acknowledgement.
Respond with JSON only.
--- User: "{{user_input}}" JSON Response:`

// promptTrailer is the substitution trailer expected at the end of the stored
// template. Stored templates sometimes run it into the preceding line, so the
// loader re-breaks it onto its own line.
const promptTrailer = `--- User: "{{user_input}}" JSON Response:`

// Loader populates the process-wide configuration snapshot during startup.
// The snapshot is written exactly once and read-only afterwards, so it is
// held in an atomic pointer with no further locking.
type Loader struct {
	docstoreClient clients.DocumentStoreClient
	retryInterval  time.Duration
	current        atomic.Pointer[models.BotRuntime]
}

func NewLoader(docstoreClient clients.DocumentStoreClient) *Loader {
	return &Loader{docstoreClient: docstoreClient, retryInterval: retryInterval}
}

// Current implements services.RuntimeProvider. The snapshot is nil until Load
// has concluded.
func (l *Loader) Current() (*models.BotRuntime, bool) {
	rt := l.current.Load()
	return rt, rt != nil
}

// Load fetches the prompt template and FAQ table, retrying up to three times
// with a fixed delay. On exhaustion it installs degraded built-in defaults so
// the process still serves requests.
func (l *Loader) Load(ctx context.Context) {
	attempt := 0
	operation := func() error {
		attempt++
		rt, err := l.loadOnce(ctx)
		if err != nil {
			log.Printf("⚠️ Failed to load bot configuration (attempt %d/%d): %v", attempt, maxLoadAttempts, err)
			return err
		}
		l.current.Store(rt)
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(l.retryInterval), maxLoadAttempts-1),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		log.Printf("❌ Bot configuration loading exhausted, falling back to built-in defaults")
		l.current.Store(&models.BotRuntime{
			PromptTemplate: fallbackPromptTemplate,
			Degraded:       true,
		})
		return
	}
	log.Printf("✅ Bot configuration loaded")
}

func (l *Loader) loadOnce(ctx context.Context) (*models.BotRuntime, error) {
	promptOpt, err := l.docstoreClient.GetPromptTemplate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt template: %w", err)
	}
	faqOpt, err := l.docstoreClient.GetFaqDocument(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read FAQ document: %w", err)
	}

	prompt := fallbackPromptTemplate
	if stored, ok := promptOpt.Get(); ok {
		prompt = strings.Replace(stored, promptTrailer, "\n"+promptTrailer, 1)
	}

	var entries []models.FaqEntry
	if raw, ok := faqOpt.Get(); ok && len(raw) > 10 {
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			return nil, fmt.Errorf("failed to parse FAQ document: %w", err)
		}
	}

	return &models.BotRuntime{
		PromptTemplate:    prompt,
		FaqEntries:        entries,
		KnowledgeBaseText: renderKnowledgeBase(entries),
	}, nil
}

// renderKnowledgeBase flattens the FAQ table into the text blob the tier-2
// FAQ prompt is scoped to.
func renderKnowledgeBase(entries []models.FaqEntry) string {
	blocks := make([]string, 0, len(entries))
	for _, entry := range entries {
		answer := entry.Answer()
		if answer == "" {
			answer = "Not available"
		}
		blocks = append(blocks, fmt.Sprintf(
			`Category: %s. Question: "%s". Standard Answer: "%s". Detailed Steps: * %s`,
			entry.Category,
			strings.Join(entry.Questions, ", "),
			answer,
			strings.Join(entry.DetailedSteps, " * "),
		))
	}
	return strings.Join(blocks, "\n\n---\n\n")
}
