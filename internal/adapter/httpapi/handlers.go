package httpapi

import (
	"net/http"

	"github.com/smartpotato/smartpotato/internal/adapter/state"
	"github.com/smartpotato/smartpotato/internal/adapter/ws"
	"github.com/smartpotato/smartpotato/internal/port/store"
	"github.com/smartpotato/smartpotato/internal/service"
)

// Handlers bundles the HTTP handlers with their dependencies.
type Handlers struct {
	orch      *service.Orchestrator
	projects  *service.ProjectService
	tidy      *service.TidyService
	reminders *service.ReminderService
	store     store.Store
	visited   *state.VisitedFlag
	hub       *ws.Hub
}

// NewHandlers creates the handler set.
func NewHandlers(
	orch *service.Orchestrator,
	projects *service.ProjectService,
	tidy *service.TidyService,
	reminders *service.ReminderService,
	st store.Store,
	visited *state.VisitedFlag,
	hub *ws.Hub,
) *Handlers {
	return &Handlers{
		orch:      orch,
		projects:  projects,
		tidy:      tidy,
		reminders: reminders,
		store:     st,
		visited:   visited,
		hub:       hub,
	}
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": h.hub.ConnectionCount(),
	})
}
