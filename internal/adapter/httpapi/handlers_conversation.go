package httpapi

import (
	"net/http"

	"github.com/smartpotato/smartpotato/internal/domain/chat"
)

func (h *Handlers) listConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.store.ListConversations(r.Context())
	if err != nil {
		writeDomainError(w, err, "failed to list conversations")
		return
	}
	if conversations == nil {
		conversations = []chat.Conversation{}
	}
	writeJSON(w, http.StatusOK, conversations)
}

func (h *Handlers) createConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := h.orch.NewConversation(r.Context())
	if err != nil {
		writeDomainError(w, err, "failed to create conversation")
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

// selectModeResponse pairs the fresh conversation with the chips to offer.
type selectModeResponse struct {
	Conversation *chat.Conversation `json:"conversation"`
	Chips        []string           `json:"chips,omitempty"`
}

func (h *Handlers) selectMode(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[chat.SelectModeRequest](w, r)
	if !ok {
		return
	}

	conv, chips, err := h.orch.SelectMode(r.Context(), req.Mode)
	if err != nil {
		writeDomainError(w, err, "failed to start conversation")
		return
	}
	writeJSON(w, http.StatusCreated, selectModeResponse{Conversation: conv, Chips: chips})
}

func (h *Handlers) getConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := h.store.GetConversation(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *Handlers) deleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteConversation(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "conversation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) renameConversation(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[chat.RenameRequest](w, r)
	if !ok {
		return
	}

	id := urlParam(r, "id")
	if err := h.store.RenameConversation(r.Context(), id, req.Title); err != nil {
		writeDomainError(w, err, "conversation not found")
		return
	}
	conv, err := h.store.GetConversation(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *Handlers) regenerateTitle(w http.ResponseWriter, r *http.Request) {
	title, err := h.orch.RegenerateTitle(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"title": title})
}

func (h *Handlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[chat.SendRequest](w, r)
	if !ok {
		return
	}

	result, err := h.orch.SendUserText(r.Context(), urlParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) pickChip(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[chat.ChipRequest](w, r)
	if !ok {
		return
	}

	result, err := h.orch.PickChoiceChip(r.Context(), urlParam(r, "id"), req.Chip)
	if err != nil {
		writeDomainError(w, err, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
