package intent

import (
	"context"
	"encoding/json"
	"log"
	"regexp"
	"strings"

	"gadminbot/clients"
	"gadminbot/models"
	"gadminbot/services"
)

const (
	apologyText          = "There was a problem contacting the AI to interpret the intent."
	notReadyText         = "AI configuration not ready."
	userInputPlaceholder = "{{user_input}}"
)

// IntentService routes free-form messages to structured operation intents via
// a constrained generative classification call.
type IntentService struct {
	generativeClient clients.GenerativeClient
	runtime          services.RuntimeProvider
}

func NewIntentService(generativeClient clients.GenerativeClient, runtime services.RuntimeProvider) *IntentService {
	return &IntentService{generativeClient: generativeClient, runtime: runtime}
}

// classifierPayload is the structured output of the generative backend. The
// operation label uses the external vocabulary, canonicalized below.
type classifierPayload struct {
	Operation string   `json:"operation"`
	Users     []string `json:"users"`
	Group     string   `json:"group"`
	ReplyText string   `json:"reply_text"`
}

// ClassifyIntent never fails out of the dispatch path: backend or parse
// failures yield operation NONE with an apology, an empty completion yields a
// silent NONE.
func (s *IntentService) ClassifyIntent(ctx context.Context, text string) *models.OperationIntent {
	rt, loaded := s.runtime.Current()
	if !loaded || rt.PromptTemplate == "" {
		return &models.OperationIntent{Operation: models.OperationNone, ReplyText: notReadyText}
	}

	prompt := strings.ReplaceAll(rt.PromptTemplate, userInputPlaceholder, text)
	raw, err := s.generativeClient.Complete(ctx, prompt, clients.CompleteOptions{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		log.Printf("❌ Intent classification call failed: %v", err)
		return &models.OperationIntent{Operation: models.OperationNone, ReplyText: apologyText}
	}
	if strings.TrimSpace(raw) == "" {
		return &models.OperationIntent{Operation: models.OperationNone}
	}

	var payload classifierPayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		log.Printf("❌ Intent classification returned unparseable payload: %v", err)
		return &models.OperationIntent{Operation: models.OperationNone, ReplyText: apologyText}
	}

	return &models.OperationIntent{
		Operation: canonicalOperation(payload.Operation),
		RawUsers:  payload.Users,
		RawGroup:  payload.Group,
	}
}

var codeFenceRegex = regexp.MustCompile("^```(?:json)?\\s*|\\s*```$")

// stripCodeFence removes markdown code-fence markers some backends wrap
// around structured output.
func stripCodeFence(raw string) string {
	return strings.TrimSpace(codeFenceRegex.ReplaceAllString(strings.TrimSpace(raw), ""))
}

// canonicalOperation maps the classifier's external label vocabulary onto the
// internal operation enum. The verb-like prefix before the first underscore
// is the unit of meaning, so compound labels such as ADD_USER and ADD_MEMBERS
// intentionally collapse onto one operation. Unmapped labels are NONE.
func canonicalOperation(label string) models.Operation {
	switch label {
	case "":
		return models.OperationNone
	case "VER_TODOS_LOS_MIEMBROS":
		return models.OperationListAllMembers
	case "HELP_MENU":
		return models.OperationHelpMenu
	case "FAQ_QUERY":
		return models.OperationFaqQuery
	case "NONE":
		return models.OperationNone
	}

	prefix := strings.ToLower(strings.SplitN(label, "_", 2)[0])
	switch prefix {
	case "add":
		return models.OperationAdd
	case "remove":
		return models.OperationRemove
	case "list":
		return models.OperationListMembers
	case "leave":
		return models.OperationLeave
	case "my":
		return models.OperationListMyGroups
	case "solicitar":
		return models.OperationRequestManager
	case "change":
		return models.OperationChangeRoleManager
	default:
		return models.OperationNone
	}
}
