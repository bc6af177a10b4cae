package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"cloud-ide/backend/internal/auth"
	"cloud-ide/backend/internal/models"
	"cloud-ide/backend/internal/service"
)

type ProjectGetter interface {
	Get(ctx context.Context, caller *auth.Identity, id uuid.UUID) (*models.Project, error)
}

const projectKey contextKey = "project"

// ProjectOwner loads the project named by the {projectId} URL parameter and
// lets the request through only when the caller owns it. A missing project
// and a foreign one both answer 404.
func ProjectOwner(projects ProjectGetter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := auth.FromContext(r.Context())
			if caller == nil {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
			if err != nil {
				http.Error(w, "Invalid project ID format", http.StatusBadRequest)
				return
			}
			project, err := projects.Get(r.Context(), caller, projectID)
			if errors.Is(err, service.ErrNotFound) {
				http.Error(w, service.ErrNotFound.Error(), http.StatusNotFound)
				return
			}
			if err != nil {
				logger.Error("failed to verify project ownership", "project", projectID, "error", err)
				http.Error(w, "Failed to verify project ownership", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), projectKey, project)))
		})
	}
}

// ProjectFromContext returns the project loaded by ProjectOwner.
func ProjectFromContext(ctx context.Context) *models.Project {
	p, _ := ctx.Value(projectKey).(*models.Project)
	return p
}
