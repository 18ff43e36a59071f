package faq

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/samber/mo"

	"gadminbot/clients"
	"gadminbot/models"
	"gadminbot/services"
)

const (
	// notFoundToken is the wire token the generative fallback must return
	// when the knowledge base does not contain the answer.
	notFoundToken = "NO_ENCONTRADO"

	// knowledgeBaseLimit bounds the prompt cost of the generative fallback.
	knowledgeBaseLimit = 5000

	// significantWordLength filters out short filler words before matching.
	significantWordLength = 4
)

// FaqService answers free-text questions in two tiers: a deterministic scan
// of the FAQ table, then a generative lookup scoped to the knowledge base.
type FaqService struct {
	generativeClient clients.GenerativeClient
	runtime          services.RuntimeProvider
	supportEmail     string
}

func NewFaqService(
	generativeClient clients.GenerativeClient,
	runtime services.RuntimeProvider,
	supportEmail string,
) *FaqService {
	return &FaqService{
		generativeClient: generativeClient,
		runtime:          runtime,
		supportEmail:     supportEmail,
	}
}

// Answer resolves a question or returns None when neither tier finds one.
// Tier-2 transport or parse failures are treated as not-found, never as
// errors.
func (s *FaqService) Answer(ctx context.Context, question string) mo.Option[string] {
	rt, loaded := s.runtime.Current()
	if loaded {
		if answer, ok := s.deterministicAnswer(rt.FaqEntries, question); ok {
			return mo.Some(answer)
		}
	}

	if !loaded || rt.KnowledgeBaseText == "" || len(rt.KnowledgeBaseText) > knowledgeBaseLimit {
		return mo.None[string]()
	}
	return s.generativeAnswer(ctx, rt.KnowledgeBaseText, question)
}

// deterministicAnswer scans the FAQ table in stored order; the first matching
// entry wins. An entry matches when the full question is a substring of (or
// contains) any of its searchable fields, or when any significant word of the
// question appears in one of them.
func (s *FaqService) deterministicAnswer(entries []models.FaqEntry, question string) (string, bool) {
	if len(entries) == 0 {
		return "", false
	}

	query := strings.ToLower(strings.TrimSpace(question))
	var significantWords []string
	for _, word := range strings.Fields(query) {
		if len(word) >= significantWordLength {
			significantWords = append(significantWords, word)
		}
	}

	for _, entry := range entries {
		pool := searchPool(entry)

		matched := false
		for _, text := range pool {
			if strings.Contains(text, query) || strings.Contains(query, text) {
				matched = true
				break
			}
		}
		if !matched {
		words:
			for _, word := range significantWords {
				for _, text := range pool {
					if strings.Contains(text, word) {
						matched = true
						break words
					}
				}
			}
		}

		if matched {
			return s.composeAnswer(entry), true
		}
	}
	return "", false
}

// searchPool collects the entry's matchable fields, lower-cased. Empty fields
// are skipped so they cannot substring-match everything.
func searchPool(entry models.FaqEntry) []string {
	texts := make([]string, 0, 2+len(entry.Questions)+len(entry.Keywords))
	if entry.Category != "" {
		texts = append(texts, strings.ToLower(entry.Category))
	}
	if answer := entry.Answer(); answer != "" {
		texts = append(texts, strings.ToLower(answer))
	}
	for _, q := range entry.Questions {
		if q != "" {
			texts = append(texts, strings.ToLower(q))
		}
	}
	for _, k := range entry.Keywords {
		if k != "" {
			texts = append(texts, strings.ToLower(k))
		}
	}
	return texts
}

func (s *FaqService) composeAnswer(entry models.FaqEntry) string {
	answer := entry.Answer()
	if answer == "" {
		answer = "Not available"
	}
	response := answer + ".\n\n"
	if steps := strings.Join(entry.DetailedSteps, "\n* "); strings.TrimSpace(steps) != "" {
		response += "Detailed Steps:\n* " + steps
	}
	return response + "\n\n" + s.supportSuffix()
}

func (s *FaqService) supportSuffix() string {
	return fmt.Sprintf(
		"If the problem persists or you need further assistance, please contact %s",
		s.supportEmail,
	)
}

// generativeAnswer asks the backend to answer strictly from the knowledge
// base; any failure or a NO_ENCONTRADO reply is None.
func (s *FaqService) generativeAnswer(ctx context.Context, knowledgeBase, question string) mo.Option[string] {
	prompt := fmt.Sprintf(
		`You are an expert technical support assistant. Your only task is to answer the user's question using the provided KNOWLEDGE BASE exclusively. If the answer is there, respond clearly and concisely, formatting titles with bold (*Detailed Steps:*, *Alternative Solutions:*). If it is not there, respond *exactly* with "%s". At the end of EVERY response (except if it is %s), always add the phrase: "If the problem persists or you need further assistance, please contact %s."

--- KNOWLEDGE BASE ---
%s
---
User: "%s"
Answer:`,
		notFoundToken, notFoundToken, s.supportEmail, knowledgeBase, question,
	)

	answer, err := s.generativeClient.Complete(ctx, prompt, clients.CompleteOptions{})
	if err != nil {
		log.Printf("⚠️ FAQ fallback call failed, treating as not found: %v", err)
		return mo.None[string]()
	}

	answer = strings.TrimSpace(answer)
	if answer == "" || answer == notFoundToken {
		return mo.None[string]()
	}
	if !strings.Contains(answer, s.supportEmail) {
		answer += "\n\n" + s.supportSuffix() + "."
	}
	return mo.Some(answer)
}
