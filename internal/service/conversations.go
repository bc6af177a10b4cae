package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"cloud-ide/backend/internal/auth"
	"cloud-ide/backend/internal/database"
	"cloud-ide/backend/internal/models"
)

type Conversations struct {
	*base
}

type AddMessage struct {
	ConversationID uuid.UUID
	Role           models.MessageRole
	Content        string
	Metadata       *models.MessageMetadata
}

// List returns the conversations of a project when projectID is set, otherwise
// every conversation the caller started.
func (s *Conversations) List(ctx context.Context, caller *auth.Identity, projectID *uuid.UUID) ([]*models.Conversation, error) {
	if requireCaller(caller) != nil {
		return []*models.Conversation{}, nil
	}
	find := &database.FindConversation{Limit: conversationListLimit}
	if projectID != nil {
		if _, err := ownedProject(ctx, s.store, caller, *projectID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return []*models.Conversation{}, nil
			}
			return nil, err
		}
		find.ProjectID = projectID
	} else {
		find.UserID = &caller.Subject
	}
	return s.store.ListConversations(ctx, find)
}

// Get returns the conversation with its messages, oldest first.
func (s *Conversations) Get(ctx context.Context, caller *auth.Identity, id uuid.UUID) (*models.ConversationWithMessages, error) {
	if requireCaller(caller) != nil {
		return nil, ErrNotFound
	}
	c, err := ownedConversation(ctx, s.store, caller, id)
	if err != nil {
		return nil, err
	}
	messages, err := s.store.ListMessages(ctx, &database.FindMessage{ConversationID: id})
	if err != nil {
		return nil, err
	}
	return &models.ConversationWithMessages{Conversation: *c, Messages: messages}, nil
}

func (s *Conversations) Create(ctx context.Context, caller *auth.Identity, projectID *uuid.UUID, title *string) (*models.Conversation, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if title == nil || strings.TrimSpace(*title) == "" {
		t := models.DefaultConversationTitle
		title = &t
	}
	now := s.now()
	c := &models.Conversation{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    caller.Subject,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.store.WithTx(ctx, func(tx database.Store) error {
		if projectID != nil {
			if _, err := ownedProject(ctx, tx, caller, *projectID); err != nil {
				return err
			}
		}
		return tx.CreateConversation(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Conversations) UpdateTitle(ctx context.Context, caller *auth.Identity, id uuid.UUID, title string) (*models.Conversation, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalid("title cannot be empty")
	}
	var conversation *models.Conversation
	err := s.store.WithTx(ctx, func(tx database.Store) error {
		c, err := ownedConversation(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		update := &models.UpdateConversation{
			ID:        id,
			Title:     models.Set(&title),
			UpdatedAt: models.Set(s.now()),
		}
		if err := tx.UpdateConversation(ctx, update); err != nil {
			return err
		}
		update.Apply(c)
		conversation = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conversation, nil
}

// Remove deletes the conversation after its messages.
func (s *Conversations) Remove(ctx context.Context, caller *auth.Identity, id uuid.UUID) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	return s.store.WithTx(ctx, func(tx database.Store) error {
		if _, err := ownedConversation(ctx, tx, caller, id); err != nil {
			return err
		}
		if err := tx.DeleteMessages(ctx, id); err != nil {
			return err
		}
		return tx.DeleteConversation(ctx, id)
	})
}

func (s *Conversations) AddMessage(ctx context.Context, caller *auth.Identity, in AddMessage) (*models.Message, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, invalid("unknown message role %q", in.Role)
	}
	now := s.now()
	m := &models.Message{
		ID:             uuid.New(),
		ConversationID: in.ConversationID,
		Role:           in.Role,
		Content:        in.Content,
		Metadata:       in.Metadata,
		CreatedAt:      now,
	}
	err := s.store.WithTx(ctx, func(tx database.Store) error {
		if _, err := ownedConversation(ctx, tx, caller, in.ConversationID); err != nil {
			return err
		}
		if err := tx.CreateMessage(ctx, m); err != nil {
			return err
		}
		return tx.UpdateConversation(ctx, &models.UpdateConversation{ID: in.ConversationID, UpdatedAt: models.Set(now)})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
