package testutils

import (
	"encoding/json"

	"gadminbot/models"
)

// StaticRuntime is a services.RuntimeProvider serving a fixed snapshot.
type StaticRuntime struct {
	Runtime *models.BotRuntime
}

func (s StaticRuntime) Current() (*models.BotRuntime, bool) {
	return s.Runtime, s.Runtime != nil
}

// LoadedRuntime builds a runtime snapshot around the given FAQ entries with a
// minimal prompt template containing the substitution placeholder.
func LoadedRuntime(entries []models.FaqEntry) *models.BotRuntime {
	kb := ""
	for i, e := range entries {
		if i > 0 {
			kb += "\n\n---\n\n"
		}
		kb += "Category: " + e.Category + ". Standard Answer: " + e.Answer()
	}
	return &models.BotRuntime{
		PromptTemplate:    `Classify: "{{user_input}}" JSON Response:`,
		FaqEntries:        entries,
		KnowledgeBaseText: kb,
	}
}

// SlashCommandEvent builds a MESSAGE chat event carrying a slash command.
func SlashCommandEvent(sender, command, argumentText string) *models.ChatEvent {
	return &models.ChatEvent{
		Type: models.ChatEventTypeMessage,
		Message: &models.ChatMessage{
			Text:         command + " " + argumentText,
			ArgumentText: argumentText,
			Sender:       &models.ChatUser{Email: sender},
			SlashCommand: &models.SlashCommand{CommandName: command},
		},
	}
}

// TextMessageEvent builds a free-text MESSAGE chat event.
func TextMessageEvent(sender, text string) *models.ChatEvent {
	return &models.ChatEvent{
		Type: models.ChatEventTypeMessage,
		Message: &models.ChatMessage{
			Text:   text,
			Sender: &models.ChatUser{Email: sender},
		},
	}
}

// AppCommandEvent builds a chat event invoked through the app command picker.
func AppCommandEvent(sender, commandID, argumentText string) *models.ChatEvent {
	return &models.ChatEvent{
		Type: models.ChatEventTypeMessage,
		Message: &models.ChatMessage{
			ArgumentText: argumentText,
			Sender:       &models.ChatUser{Email: sender},
		},
		AppCommandMetadata: &models.AppCommandMetadata{AppCommandID: json.Number(commandID)},
	}
}
