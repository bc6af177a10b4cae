package middleware

import (
	"log/slog"
	"net/http"

	"cloud-ide/backend/internal/auth"
)

// Identity resolves the caller through provider and stores it in the request
// context. Requests without credentials pass through with a nil identity;
// requests with invalid credentials are rejected.
func Identity(provider auth.Provider, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := provider.Resolve(r)
			if err != nil {
				logger.Debug("rejected credentials", "path", r.URL.Path, "error", err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}
