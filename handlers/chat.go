package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"gadminbot/models"
	"gadminbot/usecases/dispatch"
)

// ChatWebhooksHandler serves the inbound chat webhook. The response is either
// a {text} body or an empty 200/400 for ignored/malformed events.
type ChatWebhooksHandler struct {
	dispatchUseCase *dispatch.DispatchUseCase
}

func NewChatWebhooksHandler(dispatchUseCase *dispatch.DispatchUseCase) *ChatWebhooksHandler {
	return &ChatWebhooksHandler{dispatchUseCase: dispatchUseCase}
}

func (h *ChatWebhooksHandler) HandleChatEvent(w http.ResponseWriter, r *http.Request) {
	var event models.ChatEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		log.Printf("❌ Failed to decode chat event: %v", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Everything except the welcome event needs an identified sender.
	if event.Type != models.ChatEventTypeAddedToSpace && event.SenderEmail() == "" {
		http.Error(w, "no user email found in the event", http.StatusBadRequest)
		return
	}

	text := h.dispatchUseCase.ProcessEvent(r.Context(), &event)
	if text == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(models.ChatResponse{Text: text}); err != nil {
		log.Printf("❌ Failed to encode chat response: %v", err)
	}
}
