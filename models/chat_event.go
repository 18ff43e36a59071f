package models

import "encoding/json"

type ChatEventType string

const (
	ChatEventTypeAddedToSpace ChatEventType = "ADDED_TO_SPACE"
	ChatEventTypeMessage      ChatEventType = "MESSAGE"
)

// ChatEvent is the inbound webhook payload from the chat platform.
// It is read-only to the bot - every derived structure is a new value.
type ChatEvent struct {
	Type               ChatEventType       `json:"type"`
	User               *ChatUser           `json:"user,omitempty"`
	Message            *ChatMessage        `json:"message,omitempty"`
	AppCommandMetadata *AppCommandMetadata `json:"appCommandMetadata,omitempty"`
}

type ChatUser struct {
	Email string `json:"email"`
}

type ChatMessage struct {
	Text         string        `json:"text"`
	ArgumentText string        `json:"argumentText"`
	Sender       *ChatUser     `json:"sender,omitempty"`
	SlashCommand *SlashCommand `json:"slashCommand,omitempty"`
}

type SlashCommand struct {
	CommandName string `json:"commandName"`
}

// AppCommandMetadata identifies a command invoked through the app command
// picker. The platform serializes the ID as a number or a string depending on
// the client, so it is kept as json.Number.
type AppCommandMetadata struct {
	AppCommandID json.Number `json:"appCommandId"`
}

// SenderEmail returns the email of the user who triggered the event, checking
// both the top-level user and the message sender.
func (e *ChatEvent) SenderEmail() string {
	if e.User != nil && e.User.Email != "" {
		return e.User.Email
	}
	if e.Message != nil && e.Message.Sender != nil {
		return e.Message.Sender.Email
	}
	return ""
}

// ChatResponse is the synchronous webhook reply body.
type ChatResponse struct {
	Text string `json:"text"`
}
