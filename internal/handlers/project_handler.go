package handlers

import (
	"net/http"

	"cloud-ide/backend/internal/models"
	"cloud-ide/backend/internal/service"
)

// ListProjects returns the caller's projects, most recently updated first.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.Projects.List(r.Context(), caller(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlUUID(w, r, "projectId")
	if !ok {
		return
	}
	project, err := h.svc.Projects.Get(r.Context(), caller(r), projectID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// CreateProject creates a project with its root folder.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		Language    *string `json:"language"`
		IsPublic    *bool   `json:"isPublic"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	project, err := h.svc.Projects.Create(r.Context(), caller(r), service.CreateProject{
		Name:        req.Name,
		Description: req.Description,
		Language:    req.Language,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// UpdateProject patches the fields present in the body.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlUUID(w, r, "projectId")
	if !ok {
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Language    *string `json:"language"`
		IsPublic    *bool   `json:"isPublic"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var patch models.UpdateProject
	if req.Name != nil {
		patch.Name = models.Set(*req.Name)
	}
	if req.Description != nil {
		patch.Description = models.Set(req.Description)
	}
	if req.Language != nil {
		patch.Language = models.Set(req.Language)
	}
	if req.IsPublic != nil {
		patch.IsPublic = models.Set(*req.IsPublic)
	}

	project, err := h.svc.Projects.Update(r.Context(), caller(r), projectID, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// DeleteProject removes the project with its files and conversations.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlUUID(w, r, "projectId")
	if !ok {
		return
	}
	if err := h.svc.Projects.Remove(r.Context(), caller(r), projectID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
