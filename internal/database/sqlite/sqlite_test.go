package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-ide/backend/internal/database"
	"cloud-ide/backend/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

var epoch = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

func newProject(owner string, updated time.Time) *models.Project {
	return &models.Project{ID: uuid.New(), OwnerID: owner, Name: "p", CreatedAt: epoch, UpdatedAt: updated}
}

func TestProjectRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	desc := "demo"
	p := newProject("u1", epoch)
	p.Description = &desc
	p.IsPublic = true
	require.NoError(t, db.CreateProject(ctx, p))

	got, err := db.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = db.GetProject(ctx, uuid.New())
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestListProjectsOrderAndLimit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	older := newProject("u1", epoch)
	newer := newProject("u1", epoch.Add(time.Hour))
	foreign := newProject("u2", epoch.Add(2*time.Hour))
	for _, p := range []*models.Project{older, newer, foreign} {
		require.NoError(t, db.CreateProject(ctx, p))
	}

	list, err := db.ListProjects(ctx, &database.FindProject{OwnerID: "u1"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	list, err = db.ListProjects(ctx, &database.FindProject{OwnerID: "u1", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, db.UpdateProject(ctx, &models.UpdateProject{ID: older.ID, UpdatedAt: models.Set(epoch.Add(3 * time.Hour))}))
	list, err = db.ListProjects(ctx, &database.FindProject{OwnerID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, older.ID, list[0].ID)
}

func TestFiles(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	p := newProject("u1", epoch)
	require.NoError(t, db.CreateProject(ctx, p))

	root := &models.FileNode{ID: uuid.New(), ProjectID: p.ID, Type: models.FileTypeFolder, Name: "src", Path: "/src", CreatedAt: epoch, UpdatedAt: epoch}
	content := "x"
	child := &models.FileNode{ID: uuid.New(), ProjectID: p.ID, ParentID: &root.ID, Type: models.FileTypeFile, Name: "a.ts", Path: "/src/a.ts", Content: &content, CreatedAt: epoch, UpdatedAt: epoch}
	require.NoError(t, db.CreateFile(ctx, root))
	require.NoError(t, db.CreateFile(ctx, child))

	got, err := db.GetFile(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, child, got)

	byParent, err := db.ListFiles(ctx, &database.FindFile{ProjectID: p.ID, ParentID: &root.ID})
	require.NoError(t, err)
	require.Len(t, byParent, 1)
	assert.Equal(t, child.ID, byParent[0].ID)

	path := "/src"
	byPath, err := db.ListFiles(ctx, &database.FindFile{ProjectID: p.ID, Path: &path})
	require.NoError(t, err)
	require.Len(t, byPath, 1)
	assert.Equal(t, root.ID, byPath[0].ID)

	require.NoError(t, db.UpdateFile(ctx, &models.UpdateFile{ID: child.ID, Path: models.Set("/lib/a.ts"), ParentID: models.Set[*uuid.UUID](nil)}))
	got, err = db.GetFile(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "/lib/a.ts", got.Path)
	assert.Nil(t, got.ParentID)
	assert.Equal(t, "a.ts", got.Name)

	require.NoError(t, db.DeleteFilesByProject(ctx, p.ID))
	all, err := db.ListFiles(ctx, &database.FindFile{ProjectID: p.ID})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestConversationsAndMessages(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	projectID := uuid.New()
	c := &models.Conversation{ID: uuid.New(), ProjectID: &projectID, UserID: "u1", CreatedAt: epoch, UpdatedAt: epoch}
	require.NoError(t, db.CreateConversation(ctx, c))

	model := "gpt"
	for i, role := range []models.MessageRole{models.MessageRoleUser, models.MessageRoleAssistant} {
		m := &models.Message{ID: uuid.New(), ConversationID: c.ID, Role: role, Content: string(role), CreatedAt: epoch.Add(time.Duration(i) * time.Second)}
		if role == models.MessageRoleAssistant {
			m.Metadata = &models.MessageMetadata{Model: &model}
		}
		require.NoError(t, db.CreateMessage(ctx, m))
	}

	messages, err := db.ListMessages(ctx, &database.FindMessage{ConversationID: c.ID})
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, models.MessageRoleUser, messages[0].Role)
	assert.Nil(t, messages[0].Metadata)
	require.NotNil(t, messages[1].Metadata)
	assert.Equal(t, "gpt", *messages[1].Metadata.Model)

	byProject, err := db.ListConversations(ctx, &database.FindConversation{ProjectID: &projectID})
	require.NoError(t, err)
	require.Len(t, byProject, 1)
	require.NotNil(t, byProject[0].ProjectID)
	assert.Equal(t, projectID, *byProject[0].ProjectID)

	require.NoError(t, db.DeleteMessages(ctx, c.ID))
	require.NoError(t, db.DeleteConversation(ctx, c.ID))
	_, err = db.GetConversation(ctx, c.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestUsers(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := &models.User{ID: uuid.New(), Subject: "sub", Email: "a@example.com", CreatedAt: epoch}
	require.NoError(t, db.CreateUser(ctx, u))
	assert.Error(t, db.CreateUser(ctx, &models.User{ID: uuid.New(), Subject: "sub", Email: "b@example.com", CreatedAt: epoch}))

	name := "Ada"
	require.NoError(t, db.UpdateUser(ctx, &models.UpdateUser{ID: u.ID, Name: models.Set(&name)}))
	got, err := db.GetUserBySubject(ctx, "sub")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)
	require.NotNil(t, got.Name)
	assert.Equal(t, "Ada", *got.Name)
}

func TestWithTxRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	p := newProject("u1", epoch)

	boom := errors.New("boom")
	err := db.WithTx(ctx, func(tx database.Store) error {
		require.NoError(t, tx.CreateProject(ctx, p))
		// Nested calls join the outer transaction.
		return tx.WithTx(ctx, func(inner database.Store) error {
			_, err := inner.GetProject(ctx, p.ID)
			require.NoError(t, err)
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	_, err = db.GetProject(ctx, p.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}
