package httpapi

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the router.
func (h *Handlers) MountRoutes(r chi.Router) {
	r.Get("/health", h.health)
	r.Get("/ws", h.hub.HandleWS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", h.listConversations)
			r.Post("/", h.createConversation)
			r.Post("/mode", h.selectMode)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getConversation)
				r.Delete("/", h.deleteConversation)
				r.Put("/title", h.renameConversation)
				r.Post("/title/regenerate", h.regenerateTitle)
				r.Post("/messages", h.sendMessage)
				r.Post("/chip", h.pickChip)
			})
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.listProjects)
			r.Post("/", h.createProject)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getProject)
				r.Put("/", h.updateProject)
				r.Delete("/", h.deleteProject)

				r.Post("/chats/{conversationID}", h.addProjectChat)
				r.Delete("/chats/{conversationID}", h.removeProjectChat)

				r.Post("/memories", h.addProjectMemory)
				r.Put("/memories/{memoryID}", h.updateProjectMemory)
				r.Delete("/memories/{memoryID}", h.deleteProjectMemory)
			})
		})

		r.Route("/reminders", func(r chi.Router) {
			r.Get("/", h.listReminders)
			r.Post("/", h.createReminder)
			r.Get("/due", h.dueReminders)
			r.Post("/fire", h.fireDueReminders)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getReminder)
				r.Put("/", h.updateReminder)
				r.Delete("/", h.deleteReminder)
			})
		})

		r.Route("/tidy", func(r chi.Router) {
			r.Get("/", h.groupConversations)
			r.Post("/active", h.setTidyActive)
		})

		r.Route("/first-visit", func(r chi.Router) {
			r.Get("/", h.getFirstVisit)
			r.Post("/", h.markFirstVisit)
			r.Delete("/", h.resetFirstVisit)
		})
	})
}
