// Package service implements the ownership-scoped operations on projects,
// their file trees, conversations and users. Every operation receives the
// caller explicitly; a nil caller is unauthenticated.
package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"cloud-ide/backend/internal/auth"
	"cloud-ide/backend/internal/config"
	"cloud-ide/backend/internal/database"
	"cloud-ide/backend/internal/models"
	"cloud-ide/backend/internal/ws"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	// ErrNotFound covers both a missing resource and one the caller does not own.
	ErrNotFound        = errors.New("not found or access denied")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("a file or folder with that path already exists")
)

const (
	projectListLimit      = 100
	conversationListLimit = 50
)

// Publisher receives change events after a mutation commits.
type Publisher interface {
	Publish(ev ws.Event)
}

type Options struct {
	Cascade   config.CascadeMode
	Logger    *slog.Logger
	Publisher Publisher
	Now       func() time.Time
}

type Service struct {
	Projects      *Projects
	Files         *Files
	Conversations *Conversations
	Users         *Users
}

type base struct {
	store     database.Store
	cascade   config.CascadeMode
	logger    *slog.Logger
	publisher Publisher
	now       func() time.Time
}

func New(store database.Store, opts Options) *Service {
	b := &base{
		store:     store,
		cascade:   opts.Cascade,
		logger:    opts.Logger,
		publisher: opts.Publisher,
		now:       opts.Now,
	}
	if b.cascade == "" {
		b.cascade = config.CascadeDeep
	}
	if b.logger == nil {
		b.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if b.now == nil {
		b.now = func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }
	}
	return &Service{
		Projects:      &Projects{b},
		Files:         &Files{b},
		Conversations: &Conversations{b},
		Users:         &Users{b},
	}
}

func (b *base) publish(projectID uuid.UUID, typ string, payload any) {
	if b.publisher == nil {
		return
	}
	b.publisher.Publish(ws.Event{ProjectID: projectID.String(), Type: typ, Payload: payload})
}

func requireCaller(caller *auth.Identity) error {
	if caller == nil || caller.Subject == "" {
		return ErrUnauthenticated
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

// ownedProject loads a project owned by caller. Missing and foreign projects
// are both ErrNotFound.
func ownedProject(ctx context.Context, s database.Store, caller *auth.Identity, id uuid.UUID) (*models.Project, error) {
	p, err := s.GetProject(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if caller == nil || p.OwnerID != caller.Subject {
		return nil, ErrNotFound
	}
	return p, nil
}

// ownedFile loads a file whose project is owned by caller.
func ownedFile(ctx context.Context, s database.Store, caller *auth.Identity, id uuid.UUID) (*models.FileNode, *models.Project, error) {
	f, err := s.GetFile(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	p, err := ownedProject(ctx, s, caller, f.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return f, p, nil
}

// ownedConversation loads a conversation started by caller.
func ownedConversation(ctx context.Context, s database.Store, caller *auth.Identity, id uuid.UUID) (*models.Conversation, error) {
	c, err := s.GetConversation(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if caller == nil || c.UserID != caller.Subject {
		return nil, ErrNotFound
	}
	return c, nil
}

func touchProject(ctx context.Context, s database.Store, id uuid.UUID, now time.Time) error {
	return s.UpdateProject(ctx, &models.UpdateProject{ID: id, UpdatedAt: models.Set(now)})
}
