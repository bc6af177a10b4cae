package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"cloud-ide/backend/internal/models"
	"cloud-ide/backend/internal/service"
)

// ListFiles returns the project's nodes as a flat list.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlUUID(w, r, "projectId")
	if !ok {
		return
	}
	files, err := h.svc.Files.List(r.Context(), caller(r), projectID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// GetFileTree returns the project's nodes nested into a tree, folders first.
func (h *Handler) GetFileTree(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlUUID(w, r, "projectId")
	if !ok {
		return
	}
	tree, err := h.svc.Files.Tree(r.Context(), caller(r), projectID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (h *Handler) GetFileByPath(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlUUID(w, r, "projectId")
	if !ok {
		return
	}
	p := r.URL.Query().Get("path")
	if p == "" {
		http.Error(w, "path query parameter is required", http.StatusBadRequest)
		return
	}
	file, err := h.svc.Files.GetByPath(r.Context(), caller(r), projectID, p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

func (h *Handler) GetFileNode(w http.ResponseWriter, r *http.Request) {
	fileID, ok := urlUUID(w, r, "fileId")
	if !ok {
		return
	}
	file, err := h.svc.Files.Get(r.Context(), caller(r), fileID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

// CreateFileNode creates a file or folder. The path is derived from the
// parent; a path in the body is only checked against it.
func (h *Handler) CreateFileNode(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlUUID(w, r, "projectId")
	if !ok {
		return
	}
	var req struct {
		ParentID *uuid.UUID      `json:"parentId"` // null for root
		Type     models.FileType `json:"type"`
		Name     string          `json:"name"`
		Path     string          `json:"path"`
		Content  *string         `json:"content"`
		Language *string         `json:"language"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = models.FileTypeFile
	}

	node, err := h.svc.Files.Create(r.Context(), caller(r), service.CreateFile{
		ProjectID: projectID,
		Name:      req.Name,
		Path:      req.Path,
		Type:      req.Type,
		Content:   req.Content,
		Language:  req.Language,
		ParentID:  req.ParentID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

func (h *Handler) SaveFileContent(w http.ResponseWriter, r *http.Request) {
	fileID, ok := urlUUID(w, r, "fileId")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	node, err := h.svc.Files.UpdateContent(r.Context(), caller(r), fileID, req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// RenameFileNode renames a node. Paths below a renamed folder follow it.
func (h *Handler) RenameFileNode(w http.ResponseWriter, r *http.Request) {
	fileID, ok := urlUUID(w, r, "fileId")
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
		Path string `json:"path"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		http.Error(w, "New name is required", http.StatusBadRequest)
		return
	}
	node, err := h.svc.Files.Rename(r.Context(), caller(r), fileID, req.Name, req.Path)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (h *Handler) MoveFileNode(w http.ResponseWriter, r *http.Request) {
	fileID, ok := urlUUID(w, r, "fileId")
	if !ok {
		return
	}
	var req struct {
		ParentID *uuid.UUID `json:"parentId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	node, err := h.svc.Files.Move(r.Context(), caller(r), fileID, req.ParentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// DeleteFileNode deletes a node and, for folders, the nodes below it.
func (h *Handler) DeleteFileNode(w http.ResponseWriter, r *http.Request) {
	fileID, ok := urlUUID(w, r, "fileId")
	if !ok {
		return
	}
	if _, err := h.svc.Files.Remove(r.Context(), caller(r), fileID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
