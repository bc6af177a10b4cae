// Package database defines the document store the services persist through.
// Drivers live in the postgres and sqlite subpackages.
package database

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"cloud-ide/backend/internal/models"
)

// ErrNotFound is returned by Get* methods when no row matches.
var ErrNotFound = errors.New("record not found")

// Store is the document store. Every method runs against the connection pool,
// or against the open transaction when obtained through WithTx.
type Store interface {
	Ping(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	// WithTx runs fn inside a single transaction. Calls on an already
	// transactional store join the outer transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	CreateUser(ctx context.Context, create *models.User) error
	GetUserBySubject(ctx context.Context, subject string) (*models.User, error)
	UpdateUser(ctx context.Context, update *models.UpdateUser) error

	CreateProject(ctx context.Context, create *models.Project) error
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context, find *FindProject) ([]*models.Project, error)
	UpdateProject(ctx context.Context, update *models.UpdateProject) error
	DeleteProject(ctx context.Context, id uuid.UUID) error

	CreateFile(ctx context.Context, create *models.FileNode) error
	GetFile(ctx context.Context, id uuid.UUID) (*models.FileNode, error)
	ListFiles(ctx context.Context, find *FindFile) ([]*models.FileNode, error)
	UpdateFile(ctx context.Context, update *models.UpdateFile) error
	DeleteFile(ctx context.Context, id uuid.UUID) error
	DeleteFilesByProject(ctx context.Context, projectID uuid.UUID) error

	CreateConversation(ctx context.Context, create *models.Conversation) error
	GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ListConversations(ctx context.Context, find *FindConversation) ([]*models.Conversation, error)
	UpdateConversation(ctx context.Context, update *models.UpdateConversation) error
	DeleteConversation(ctx context.Context, id uuid.UUID) error

	CreateMessage(ctx context.Context, create *models.Message) error
	ListMessages(ctx context.Context, find *FindMessage) ([]*models.Message, error)
	DeleteMessages(ctx context.Context, conversationID uuid.UUID) error
}

// FindProject lists an owner's projects, most recently updated first.
type FindProject struct {
	OwnerID string
	Limit   int
}

// FindFile lists a project's nodes in insertion order.
// ParentID and Path narrow the result when set.
type FindFile struct {
	ProjectID uuid.UUID
	ParentID  *uuid.UUID
	Path      *string
	Limit     int
}

// FindConversation lists by project (newest first) when ProjectID is set,
// otherwise by user (most recently updated first).
type FindConversation struct {
	UserID    *string
	ProjectID *uuid.UUID
	Limit     int
}

// FindMessage lists a conversation's messages oldest first.
type FindMessage struct {
	ConversationID uuid.UUID
	Limit          int
}
