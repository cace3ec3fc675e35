package httpapi

import (
	"net/http"

	"github.com/smartpotato/smartpotato/internal/domain/reminder"
)

func (h *Handlers) listReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.reminders.List(r.Context())
	if err != nil {
		writeDomainError(w, err, "failed to list reminders")
		return
	}
	if reminders == nil {
		reminders = []reminder.Reminder{}
	}
	writeJSON(w, http.StatusOK, reminders)
}

func (h *Handlers) createReminder(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[reminder.CreateRequest](w, r)
	if !ok {
		return
	}

	rem, err := h.reminders.Create(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, "conversation not found")
		return
	}
	writeJSON(w, http.StatusCreated, rem)
}

func (h *Handlers) getReminder(w http.ResponseWriter, r *http.Request) {
	rem, err := h.reminders.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "reminder not found")
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

func (h *Handlers) updateReminder(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[reminder.UpdateRequest](w, r)
	if !ok {
		return
	}

	rem, err := h.reminders.Update(r.Context(), urlParam(r, "id"), &req)
	if err != nil {
		writeDomainError(w, err, "reminder not found")
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

func (h *Handlers) deleteReminder(w http.ResponseWriter, r *http.Request) {
	if err := h.reminders.Delete(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "reminder not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) dueReminders(w http.ResponseWriter, r *http.Request) {
	due, err := h.reminders.Due(r.Context())
	if err != nil {
		writeDomainError(w, err, "failed to list due reminders")
		return
	}
	if due == nil {
		due = []reminder.Reminder{}
	}
	writeJSON(w, http.StatusOK, due)
}

func (h *Handlers) fireDueReminders(w http.ResponseWriter, r *http.Request) {
	fired, err := h.reminders.FireDue(r.Context())
	if err != nil {
		writeDomainError(w, err, "failed to fire reminders")
		return
	}
	if fired == nil {
		fired = []reminder.Reminder{}
	}
	writeJSON(w, http.StatusOK, fired)
}
