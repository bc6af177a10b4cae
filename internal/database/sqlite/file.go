package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"cloud-ide/backend/internal/database"
	"cloud-ide/backend/internal/models"
)

const fileColumns = `id, project_id, parent_id, type, name, path, content, language, created_at, updated_at`

func (d *DB) CreateFile(ctx context.Context, create *models.FileNode) error {
	query := `INSERT INTO files (` + fileColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := d.q.ExecContext(ctx, query,
		create.ID, create.ProjectID, create.ParentID, string(create.Type), create.Name, create.Path,
		create.Content, create.Language, toMillis(create.CreatedAt), toMillis(create.UpdatedAt),
	)
	return errors.Wrap(err, "failed to insert file")
}

func (d *DB) GetFile(ctx context.Context, id uuid.UUID) (*models.FileNode, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = ?`
	f, err := scanFile(d.q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get file")
	}
	return f, nil
}

func (d *DB) ListFiles(ctx context.Context, find *database.FindFile) ([]*models.FileNode, error) {
	where, args := []string{"project_id = ?"}, []any{find.ProjectID}
	if find.ParentID != nil {
		where, args = append(where, "parent_id = ?"), append(args, *find.ParentID)
	}
	if find.Path != nil {
		where, args = append(where, "path = ?"), append(args, *find.Path)
	}
	query := `SELECT ` + fileColumns + ` FROM files WHERE ` + strings.Join(where, " AND ") + ` ORDER BY rowid ASC` + limitClause(find.Limit)
	rows, err := d.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list files")
	}
	defer rows.Close()

	files := make([]*models.FileNode, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan file")
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (d *DB) UpdateFile(ctx context.Context, update *models.UpdateFile) error {
	var set database.Assignments
	database.AddField(&set, "name", update.Name, nil)
	database.AddField(&set, "path", update.Path, nil)
	database.AddField(&set, "content", update.Content, nil)
	database.AddField(&set, "parent_id", update.ParentID, nil)
	database.AddField(&set, "updated_at", update.UpdatedAt, timeArg)
	if set.Empty() {
		return nil
	}
	query := `UPDATE files SET ` + set.SQL(database.Question) + ` WHERE id = ?`
	_, err := d.q.ExecContext(ctx, query, append(set.Args(), update.ID)...)
	return errors.Wrap(err, "failed to update file")
}

func (d *DB) DeleteFile(ctx context.Context, id uuid.UUID) error {
	_, err := d.q.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	return errors.Wrap(err, "failed to delete file")
}

func (d *DB) DeleteFilesByProject(ctx context.Context, projectID uuid.UUID) error {
	_, err := d.q.ExecContext(ctx, `DELETE FROM files WHERE project_id = ?`, projectID)
	return errors.Wrap(err, "failed to delete project files")
}

func scanFile(row scanner) (*models.FileNode, error) {
	var f models.FileNode
	var fileType string
	var createdAt, updatedAt int64
	if err := row.Scan(&f.ID, &f.ProjectID, &f.ParentID, &fileType, &f.Name, &f.Path, &f.Content, &f.Language, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	f.Type = models.FileType(fileType)
	f.CreatedAt = fromMillis(createdAt)
	f.UpdatedAt = fromMillis(updatedAt)
	return &f, nil
}
