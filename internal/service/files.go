package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"cloud-ide/backend/internal/auth"
	"cloud-ide/backend/internal/config"
	"cloud-ide/backend/internal/database"
	"cloud-ide/backend/internal/filetree"
	"cloud-ide/backend/internal/models"
	"cloud-ide/backend/internal/ws"
)

// Files is the hierarchical file store of a project.
type Files struct {
	*base
}

type CreateFile struct {
	ProjectID uuid.UUID
	Name      string
	// Path is advisory. The stored path is always derived from the parent.
	Path     string
	Type     models.FileType
	Content  *string
	Language *string
	ParentID *uuid.UUID
}

// List returns every node of the project in insertion order. It is empty when
// the caller cannot see the project.
func (s *Files) List(ctx context.Context, caller *auth.Identity, projectID uuid.UUID) ([]*models.FileNode, error) {
	if requireCaller(caller) != nil {
		return []*models.FileNode{}, nil
	}
	if _, err := ownedProject(ctx, s.store, caller, projectID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []*models.FileNode{}, nil
		}
		return nil, err
	}
	return s.store.ListFiles(ctx, &database.FindFile{ProjectID: projectID})
}

// Tree returns the project's nodes nested under their parents in
// presentation order.
func (s *Files) Tree(ctx context.Context, caller *auth.Identity, projectID uuid.UUID) ([]*filetree.Node, error) {
	files, err := s.List(ctx, caller, projectID)
	if err != nil {
		return nil, err
	}
	return filetree.Build(files), nil
}

func (s *Files) Get(ctx context.Context, caller *auth.Identity, id uuid.UUID) (*models.FileNode, error) {
	if requireCaller(caller) != nil {
		return nil, ErrNotFound
	}
	f, _, err := ownedFile(ctx, s.store, caller, id)
	return f, err
}

// GetByPath returns the first node whose path equals p exactly.
func (s *Files) GetByPath(ctx context.Context, caller *auth.Identity, projectID uuid.UUID, p string) (*models.FileNode, error) {
	if requireCaller(caller) != nil {
		return nil, ErrNotFound
	}
	if _, err := ownedProject(ctx, s.store, caller, projectID); err != nil {
		return nil, err
	}
	files, err := s.store.ListFiles(ctx, &database.FindFile{ProjectID: projectID, Path: &p, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNotFound
	}
	return files[0], nil
}

func (s *Files) Create(ctx context.Context, caller *auth.Identity, in CreateFile) (*models.FileNode, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := filetree.ValidateName(in.Name); err != nil {
		return nil, invalid("%s", err)
	}
	if !in.Type.Valid() {
		return nil, invalid("unknown file type %q", in.Type)
	}

	now := s.now()
	node := &models.FileNode{
		ID:        uuid.New(),
		ProjectID: in.ProjectID,
		ParentID:  in.ParentID,
		Type:      in.Type,
		Name:      in.Name,
		Content:   in.Content,
		Language:  in.Language,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if node.IsFolder() {
		node.Content = nil
		node.Language = nil
	} else if node.Language == nil || *node.Language == "" {
		node.Language = nil
		if lang, ok := filetree.LanguageFor(in.Name); ok {
			node.Language = &lang
		}
	}

	err := s.store.WithTx(ctx, func(tx database.Store) error {
		if _, err := ownedProject(ctx, tx, caller, in.ProjectID); err != nil {
			return err
		}
		parentPath, err := s.parentPath(ctx, tx, in.ProjectID, in.ParentID)
		if err != nil {
			return err
		}
		node.Path = filetree.Join(parentPath, in.Name)
		if in.Path != "" && in.Path != node.Path {
			s.logger.Warn("ignoring file path that does not match its parent",
				"project", in.ProjectID, "given", in.Path, "derived", node.Path)
		}
		if err := s.checkFree(ctx, tx, in.ProjectID, node.Path, uuid.Nil); err != nil {
			return err
		}
		if err := tx.CreateFile(ctx, node); err != nil {
			return err
		}
		return touchProject(ctx, tx, in.ProjectID, now)
	})
	if err != nil {
		return nil, err
	}
	s.publish(node.ProjectID, ws.EventFileCreated, node)
	return node, nil
}

func (s *Files) UpdateContent(ctx context.Context, caller *auth.Identity, id uuid.UUID, content string) (*models.FileNode, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	now := s.now()
	var node *models.FileNode
	err := s.store.WithTx(ctx, func(tx database.Store) error {
		f, _, err := ownedFile(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		if f.IsFolder() {
			return invalid("folders have no content")
		}
		update := &models.UpdateFile{
			ID:        id,
			Content:   models.Set(&content),
			UpdatedAt: models.Set(now),
		}
		if err := tx.UpdateFile(ctx, update); err != nil {
			return err
		}
		update.Apply(f)
		node = f
		return touchProject(ctx, tx, f.ProjectID, now)
	})
	if err != nil {
		return nil, err
	}
	s.publish(node.ProjectID, ws.EventFileUpdated, node)
	return node, nil
}

// Rename changes the node's name and, for folders, rewrites the paths below
// it. newPath is advisory; the stored path is derived from the parent.
func (s *Files) Rename(ctx context.Context, caller *auth.Identity, id uuid.UUID, name, newPath string) (*models.FileNode, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := filetree.ValidateName(name); err != nil {
		return nil, invalid("%s", err)
	}
	now := s.now()
	var node *models.FileNode
	err := s.store.WithTx(ctx, func(tx database.Store) error {
		f, _, err := ownedFile(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		parentPath, err := s.parentPath(ctx, tx, f.ProjectID, f.ParentID)
		if err != nil {
			return err
		}
		derived := filetree.Join(parentPath, name)
		if newPath != "" && newPath != derived {
			s.logger.Warn("ignoring file path that does not match its parent",
				"file", f.ID, "given", newPath, "derived", derived)
		}
		if derived != f.Path {
			if err := s.checkFree(ctx, tx, f.ProjectID, derived, f.ID); err != nil {
				return err
			}
		}
		oldPath := f.Path
		update := &models.UpdateFile{
			ID:        id,
			Name:      models.Set(name),
			Path:      models.Set(derived),
			UpdatedAt: models.Set(now),
		}
		if err := tx.UpdateFile(ctx, update); err != nil {
			return err
		}
		update.Apply(f)
		node = f
		if f.IsFolder() && oldPath != derived {
			if err := s.rewriteDescendants(ctx, tx, f, oldPath, s.cascade == config.CascadeDeep); err != nil {
				return err
			}
		}
		return touchProject(ctx, tx, f.ProjectID, now)
	})
	if err != nil {
		return nil, err
	}
	s.publish(node.ProjectID, ws.EventFileRenamed, node)
	return node, nil
}

// Move re-parents the node inside its project. A nil newParentID moves it to
// the root.
func (s *Files) Move(ctx context.Context, caller *auth.Identity, id uuid.UUID, newParentID *uuid.UUID) (*models.FileNode, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	now := s.now()
	var node *models.FileNode
	err := s.store.WithTx(ctx, func(tx database.Store) error {
		f, _, err := ownedFile(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		if newParentID != nil {
			files, err := tx.ListFiles(ctx, &database.FindFile{ProjectID: f.ProjectID})
			if err != nil {
				return err
			}
			if filetree.IsDescendant(files, f.ID, *newParentID) {
				return invalid("cannot move a node under itself or its descendants")
			}
		}
		parentPath, err := s.parentPath(ctx, tx, f.ProjectID, newParentID)
		if err != nil {
			return err
		}
		derived := filetree.Join(parentPath, f.Name)
		if derived != f.Path {
			if err := s.checkFree(ctx, tx, f.ProjectID, derived, f.ID); err != nil {
				return err
			}
		}
		oldPath := f.Path
		update := &models.UpdateFile{
			ID:        id,
			Path:      models.Set(derived),
			ParentID:  models.Set(newParentID),
			UpdatedAt: models.Set(now),
		}
		if err := tx.UpdateFile(ctx, update); err != nil {
			return err
		}
		update.Apply(f)
		node = f
		// A moved subtree is always rewritten in full; the cascade mode only
		// governs rename and remove.
		if f.IsFolder() && oldPath != derived {
			if err := s.rewriteDescendants(ctx, tx, f, oldPath, true); err != nil {
				return err
			}
		}
		return touchProject(ctx, tx, f.ProjectID, now)
	})
	if err != nil {
		return nil, err
	}
	s.publish(node.ProjectID, ws.EventFileMoved, node)
	return node, nil
}

// Remove deletes the node. For folders it also deletes the direct children
// (shallow cascade) or the whole subtree (deep cascade). It returns the ids
// of every deleted node.
func (s *Files) Remove(ctx context.Context, caller *auth.Identity, id uuid.UUID) ([]uuid.UUID, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	now := s.now()
	var (
		projectID uuid.UUID
		deleted   []uuid.UUID
	)
	err := s.store.WithTx(ctx, func(tx database.Store) error {
		f, _, err := ownedFile(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		projectID = f.ProjectID
		deleted = []uuid.UUID{f.ID}
		if f.IsFolder() {
			files, err := tx.ListFiles(ctx, &database.FindFile{ProjectID: f.ProjectID})
			if err != nil {
				return err
			}
			for _, d := range descendants(files, f.ID, s.cascade == config.CascadeDeep) {
				deleted = append(deleted, d.node.ID)
			}
		}
		for _, fid := range deleted {
			if err := tx.DeleteFile(ctx, fid); err != nil {
				return err
			}
		}
		return touchProject(ctx, tx, f.ProjectID, now)
	})
	if err != nil {
		return nil, err
	}
	s.publish(projectID, ws.EventFileDeleted, map[string]any{"id": id, "deleted": deleted})
	return deleted, nil
}

// parentPath returns the path of parentID, or "" for the root. The parent
// must be a folder of the same project.
func (s *Files) parentPath(ctx context.Context, tx database.Store, projectID uuid.UUID, parentID *uuid.UUID) (string, error) {
	if parentID == nil {
		return "", nil
	}
	parent, err := tx.GetFile(ctx, *parentID)
	if errors.Is(err, database.ErrNotFound) {
		return "", invalid("parent %s does not exist", parentID)
	}
	if err != nil {
		return "", err
	}
	if parent.ProjectID != projectID {
		return "", invalid("parent %s belongs to another project", parentID)
	}
	if !parent.IsFolder() {
		return "", invalid("parent %s is not a folder", parentID)
	}
	return parent.Path, nil
}

// checkFree fails with ErrConflict when a node other than self already
// occupies p.
func (s *Files) checkFree(ctx context.Context, tx database.Store, projectID uuid.UUID, p string, self uuid.UUID) error {
	existing, err := tx.ListFiles(ctx, &database.FindFile{ProjectID: projectID, Path: &p})
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.ID != self {
			return errors.Wrapf(ErrConflict, "%s", p)
		}
	}
	return nil
}

type descendant struct {
	node   *models.FileNode
	parent *models.FileNode
}

// descendants walks the subtree below rootID breadth first over the parent
// relation. Unless deep is set only the direct children are returned.
func descendants(files []*models.FileNode, rootID uuid.UUID, deep bool) []descendant {
	byID := make(map[uuid.UUID]*models.FileNode, len(files))
	byParent := make(map[uuid.UUID][]*models.FileNode)
	for _, f := range files {
		byID[f.ID] = f
		if f.ParentID != nil {
			byParent[*f.ParentID] = append(byParent[*f.ParentID], f)
		}
	}

	var out []descendant
	seen := map[uuid.UUID]bool{rootID: true}
	queue := []uuid.UUID{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range byParent[id] {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			out = append(out, descendant{node: child, parent: byID[id]})
			if deep && child.IsFolder() {
				queue = append(queue, child.ID)
			}
		}
	}
	return out
}

// rewriteDescendants moves the paths below folder from oldPath to its current
// path using the prefix rewrite, for the whole subtree when deep is set and
// for the direct children otherwise. A descendant whose stored path does not
// start with oldPath is re-derived from its parent instead.
func (s *Files) rewriteDescendants(ctx context.Context, tx database.Store, folder *models.FileNode, oldPath string, deep bool) error {
	files, err := tx.ListFiles(ctx, &database.FindFile{ProjectID: folder.ProjectID})
	if err != nil {
		return err
	}
	newPaths := map[uuid.UUID]string{folder.ID: folder.Path}
	for _, d := range descendants(files, folder.ID, deep) {
		p, ok := filetree.RewritePrefix(d.node.Path, oldPath+filetree.Separator, folder.Path+filetree.Separator)
		if !ok {
			p = filetree.Join(newPaths[d.parent.ID], d.node.Name)
			s.logger.Warn("file path does not match its parent, re-deriving",
				"file", d.node.ID, "stored", d.node.Path, "derived", p)
		}
		newPaths[d.node.ID] = p
		if p == d.node.Path {
			continue
		}
		if err := tx.UpdateFile(ctx, &models.UpdateFile{ID: d.node.ID, Path: models.Set(p)}); err != nil {
			return err
		}
	}
	return nil
}
