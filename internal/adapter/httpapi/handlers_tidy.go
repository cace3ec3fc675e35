package httpapi

import (
	"net/http"
)

func (h *Handlers) groupConversations(w http.ResponseWriter, r *http.Request) {
	includeAll := r.URL.Query().Get("all") == "true"

	result, err := h.tidy.Group(r.Context(), includeAll)
	if err != nil {
		writeDomainError(w, err, "failed to group conversations")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type tidyActiveRequest struct {
	Active bool `json:"active"`
}

func (h *Handlers) setTidyActive(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tidyActiveRequest](w, r)
	if !ok {
		return
	}
	h.tidy.SetActive(req.Active)
	w.WriteHeader(http.StatusNoContent)
}

type firstVisitResponse struct {
	Visited bool `json:"visited"`
}

func (h *Handlers) getFirstVisit(w http.ResponseWriter, r *http.Request) {
	visited, err := h.visited.Visited()
	if err != nil {
		writeDomainError(w, err, "failed to read first-visit flag")
		return
	}
	writeJSON(w, http.StatusOK, firstVisitResponse{Visited: visited})
}

func (h *Handlers) markFirstVisit(w http.ResponseWriter, r *http.Request) {
	if err := h.visited.MarkVisited(); err != nil {
		writeDomainError(w, err, "failed to set first-visit flag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) resetFirstVisit(w http.ResponseWriter, r *http.Request) {
	if err := h.visited.Reset(); err != nil {
		writeDomainError(w, err, "failed to reset first-visit flag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
