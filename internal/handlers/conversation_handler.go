package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"cloud-ide/backend/internal/models"
	"cloud-ide/backend/internal/service"
)

// ListConversations lists a project's conversations when ?projectId= is
// given, otherwise all of the caller's.
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	var projectID *uuid.UUID
	if s := r.URL.Query().Get("projectId"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "Invalid projectId format", http.StatusBadRequest)
			return
		}
		projectID = &id
	}
	conversations, err := h.svc.Conversations.List(r.Context(), caller(r), projectID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}

func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "conversationId")
	if !ok {
		return
	}
	conversation, err := h.svc.Conversations.Get(r.Context(), caller(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conversation)
}

func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID *uuid.UUID `json:"projectId"`
		Title     *string    `json:"title"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	conversation, err := h.svc.Conversations.Create(r.Context(), caller(r), req.ProjectID, req.Title)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, conversation)
}

func (h *Handler) UpdateConversationTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "conversationId")
	if !ok {
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	conversation, err := h.svc.Conversations.UpdateTitle(r.Context(), caller(r), id, req.Title)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conversation)
}

func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "conversationId")
	if !ok {
		return
	}
	if err := h.svc.Conversations.Remove(r.Context(), caller(r), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "conversationId")
	if !ok {
		return
	}
	var req struct {
		Role     models.MessageRole      `json:"role"`
		Content  string                  `json:"content"`
		Metadata *models.MessageMetadata `json:"metadata"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	message, err := h.svc.Conversations.AddMessage(r.Context(), caller(r), service.AddMessage{
		ConversationID: id,
		Role:           req.Role,
		Content:        req.Content,
		Metadata:       req.Metadata,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, message)
}
