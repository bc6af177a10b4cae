package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"cloud-ide/backend/internal/auth"
	"cloud-ide/backend/internal/middleware"
)

// NewRouter mounts every route of the API on a chi router.
func NewRouter(h *Handler, provider auth.Provider, allowedOrigins []string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Healthz)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(provider, logger))
		r.With(middleware.ProjectOwner(h.svc.Projects, logger)).Get("/ws/{projectId}", h.ServeWs)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Signed by the identity provider, not by a user.
		r.Post("/webhooks/identity", h.IdentityWebhook)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Identity(provider, logger))

			r.Get("/me", h.GetCurrentUser)

			r.Get("/projects", h.ListProjects)
			r.Post("/projects", h.CreateProject)
			r.Route("/projects/{projectId}", func(r chi.Router) {
				r.Get("/", h.GetProject)
				r.Patch("/", h.UpdateProject)
				r.Delete("/", h.DeleteProject)

				r.Get("/files", h.ListFiles)
				r.Post("/files", h.CreateFileNode)
				r.Get("/files/tree", h.GetFileTree)
				r.Get("/files/by-path", h.GetFileByPath)
			})

			r.Route("/files/{fileId}", func(r chi.Router) {
				r.Get("/", h.GetFileNode)
				r.Delete("/", h.DeleteFileNode)
				r.Put("/content", h.SaveFileContent)
				r.Put("/rename", h.RenameFileNode)
				r.Put("/move", h.MoveFileNode)
			})

			r.Get("/conversations", h.ListConversations)
			r.Post("/conversations", h.CreateConversation)
			r.Route("/conversations/{conversationId}", func(r chi.Router) {
				r.Get("/", h.GetConversation)
				r.Delete("/", h.DeleteConversation)
				r.Put("/title", h.UpdateConversationTitle)
				r.Post("/messages", h.AddMessage)
			})
		})
	})

	return r
}
