// Package handlers exposes the services over HTTP and the project change feed
// over websockets.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"cloud-ide/backend/internal/auth"
	"cloud-ide/backend/internal/service"
	"cloud-ide/backend/internal/ws"
)

type Handler struct {
	svc           *service.Service
	hub           *ws.Hub
	webhookSecret string
	logger        *slog.Logger
}

func New(svc *service.Service, hub *ws.Hub, webhookSecret string, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, hub: hub, webhookSecret: webhookSecret, logger: logger}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// maxBodySize bounds request bodies; file contents are the largest payload.
const maxBodySize = 8 << 20

func urlUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		http.Error(w, "Invalid "+param+" format", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func caller(r *http.Request) *auth.Identity {
	return auth.FromContext(r.Context())
}

// writeError renders a service error with its status code. Unexpected errors
// are logged and hidden behind a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		http.Error(w, service.ErrUnauthenticated.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, service.ErrNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
