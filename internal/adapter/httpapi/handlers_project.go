package httpapi

import (
	"net/http"

	"github.com/smartpotato/smartpotato/internal/domain/project"
)

func (h *Handlers) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		writeDomainError(w, err, "failed to list projects")
		return
	}
	if projects == nil {
		projects = []project.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *Handlers) createProject(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[project.CreateRequest](w, r)
	if !ok {
		return
	}

	p, err := h.projects.Create(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, "failed to create project")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handlers) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) updateProject(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[project.CreateRequest](w, r)
	if !ok {
		return
	}

	p, err := h.projects.Update(r.Context(), urlParam(r, "id"), &req)
	if err != nil {
		writeDomainError(w, err, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.Delete(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "project not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) addProjectChat(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.AddChat(r.Context(), urlParam(r, "id"), urlParam(r, "conversationID")); err != nil {
		writeDomainError(w, err, "project or conversation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) removeProjectChat(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.RemoveChat(r.Context(), urlParam(r, "id"), urlParam(r, "conversationID")); err != nil {
		writeDomainError(w, err, "project or conversation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) addProjectMemory(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[project.MemoryRequest](w, r)
	if !ok {
		return
	}

	m, err := h.projects.AddMemory(r.Context(), urlParam(r, "id"), &req)
	if err != nil {
		writeDomainError(w, err, "project not found")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handlers) updateProjectMemory(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[project.MemoryRequest](w, r)
	if !ok {
		return
	}

	m, err := h.projects.UpdateMemory(r.Context(), urlParam(r, "id"), urlParam(r, "memoryID"), &req)
	if err != nil {
		writeDomainError(w, err, "project or memory not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handlers) deleteProjectMemory(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.DeleteMemory(r.Context(), urlParam(r, "id"), urlParam(r, "memoryID")); err != nil {
		writeDomainError(w, err, "project or memory not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
