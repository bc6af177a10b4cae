package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"cloud-ide/backend/internal/auth"
	"cloud-ide/backend/internal/database"
	"cloud-ide/backend/internal/filetree"
	"cloud-ide/backend/internal/models"
	"cloud-ide/backend/internal/ws"
)

// rootFolderName is the folder every new project starts with.
const rootFolderName = "src"

type Projects struct {
	*base
}

type CreateProject struct {
	Name        string
	Description *string
	Language    *string
	IsPublic    *bool
}

// List returns the caller's projects, most recently updated first.
func (s *Projects) List(ctx context.Context, caller *auth.Identity) ([]*models.Project, error) {
	if requireCaller(caller) != nil {
		return []*models.Project{}, nil
	}
	return s.store.ListProjects(ctx, &database.FindProject{OwnerID: caller.Subject, Limit: projectListLimit})
}

func (s *Projects) Get(ctx context.Context, caller *auth.Identity, id uuid.UUID) (*models.Project, error) {
	if requireCaller(caller) != nil {
		return nil, ErrNotFound
	}
	return ownedProject(ctx, s.store, caller, id)
}

// Create inserts the project together with its root folder.
func (s *Projects) Create(ctx context.Context, caller *auth.Identity, in CreateProject) (*models.Project, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("project name is required")
	}

	now := s.now()
	language := in.Language
	if language == nil || *language == "" {
		l := models.DefaultProjectLanguage
		language = &l
	}
	project := &models.Project{
		ID:          uuid.New(),
		OwnerID:     caller.Subject,
		Name:        name,
		Description: in.Description,
		Language:    language,
		IsPublic:    in.IsPublic != nil && *in.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	root := &models.FileNode{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Type:      models.FileTypeFolder,
		Name:      rootFolderName,
		Path:      filetree.Join("", rootFolderName),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.store.WithTx(ctx, func(tx database.Store) error {
		if err := tx.CreateProject(ctx, project); err != nil {
			return err
		}
		return tx.CreateFile(ctx, root)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("project created", "project", project.ID, "owner", project.OwnerID)
	return project, nil
}

// Update applies the set fields of patch; patch.ID and patch.UpdatedAt are
// filled in here.
func (s *Projects) Update(ctx context.Context, caller *auth.Identity, id uuid.UUID, patch models.UpdateProject) (*models.Project, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if name, ok := patch.Name.Get(); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, invalid("project name cannot be empty")
		}
		patch.Name = models.Set(name)
	}
	patch.ID = id
	patch.UpdatedAt = models.Set(s.now())

	var project *models.Project
	err := s.store.WithTx(ctx, func(tx database.Store) error {
		p, err := ownedProject(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		if err := tx.UpdateProject(ctx, &patch); err != nil {
			return err
		}
		patch.Apply(p)
		project = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(project.ID, ws.EventProjectUpdated, project)
	return project, nil
}

// Remove deletes the project with every file, conversation and message that
// belongs to it.
func (s *Projects) Remove(ctx context.Context, caller *auth.Identity, id uuid.UUID) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	err := s.store.WithTx(ctx, func(tx database.Store) error {
		if _, err := ownedProject(ctx, tx, caller, id); err != nil {
			return err
		}
		if err := tx.DeleteFilesByProject(ctx, id); err != nil {
			return err
		}
		conversations, err := tx.ListConversations(ctx, &database.FindConversation{ProjectID: &id})
		if err != nil {
			return err
		}
		for _, c := range conversations {
			if err := tx.DeleteMessages(ctx, c.ID); err != nil {
				return err
			}
			if err := tx.DeleteConversation(ctx, c.ID); err != nil {
				return err
			}
		}
		return tx.DeleteProject(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Debug("project deleted", "project", id)
	s.publish(id, ws.EventProjectDeleted, map[string]string{"id": id.String()})
	return nil
}
