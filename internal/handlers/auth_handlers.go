package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"cloud-ide/backend/internal/auth"
	"cloud-ide/backend/internal/service"
)

// GetCurrentUser returns the caller's user record, creating it on first use.
// Unauthenticated callers get null.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Users.Current(r.Context(), caller(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// IdentityWebhook applies an account update pushed by the identity provider.
// The body must carry a valid HMAC signature.
func (h *Handler) IdentityWebhook(w http.ResponseWriter, r *http.Request) {
	if h.webhookSecret == "" {
		http.Error(w, "Webhook not configured", http.StatusNotFound)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := auth.VerifySignature([]byte(h.webhookSecret), body, r.Header.Get(auth.SignatureHeader)); err != nil {
		h.logger.Warn("rejected identity webhook", "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var req struct {
		Subject  string  `json:"subject"`
		Email    string  `json:"email"`
		Name     *string `json:"name"`
		ImageURL *string `json:"imageUrl"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	user, err := h.svc.Users.Sync(r.Context(), service.SyncUser{
		Subject:  req.Subject,
		Email:    req.Email,
		Name:     req.Name,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
