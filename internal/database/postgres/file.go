package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"cloud-ide/backend/internal/database"
	"cloud-ide/backend/internal/models"
)

const fileColumns = `id, project_id, parent_id, type, name, path, content, language, created_at, updated_at`

func (d *DB) CreateFile(ctx context.Context, create *models.FileNode) error {
	query := `INSERT INTO files (` + fileColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := d.q.Exec(ctx, query,
		create.ID, create.ProjectID, create.ParentID, string(create.Type), create.Name, create.Path,
		create.Content, create.Language, create.CreatedAt, create.UpdatedAt,
	)
	return errors.Wrap(err, "failed to insert file")
}

func (d *DB) GetFile(ctx context.Context, id uuid.UUID) (*models.FileNode, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	f, err := scanFile(d.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get file")
	}
	return f, nil
}

func (d *DB) ListFiles(ctx context.Context, find *database.FindFile) ([]*models.FileNode, error) {
	where, args := []string{"project_id = $1"}, []any{find.ProjectID}
	if find.ParentID != nil {
		args = append(args, *find.ParentID)
		where = append(where, "parent_id = "+database.Dollar(len(args)))
	}
	if find.Path != nil {
		args = append(args, *find.Path)
		where = append(where, "path = "+database.Dollar(len(args)))
	}
	query := `SELECT ` + fileColumns + ` FROM files WHERE ` + strings.Join(where, " AND ") + ` ORDER BY seq ASC` + limitClause(find.Limit)
	rows, err := d.q.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to retrieve file structure")
	}
	defer rows.Close()

	files := make([]*models.FileNode, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan file node")
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
	database.AddField(&set, "updated_at", update.UpdatedAt, nil)
	if set.Empty() {
		return nil
	}
	args := append(set.Args(), update.ID)
	query := `UPDATE files SET ` + set.SQL(database.Dollar) + ` WHERE id = ` + database.Dollar(len(args))
	_, err := d.q.Exec(ctx, query, args...)
	return errors.Wrap(err, "failed to update file")
}

func (d *DB) DeleteFile(ctx context.Context, id uuid.UUID) error {
	_, err := d.q.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	return errors.Wrap(err, "failed to delete file")
}

func (d *DB) DeleteFilesByProject(ctx context.Context, projectID uuid.UUID) error {
	_, err := d.q.Exec(ctx, `DELETE FROM files WHERE project_id = $1`, projectID)
	return errors.Wrap(err, "failed to delete project files")
}

func scanFile(row pgx.Row) (*models.FileNode, error) {
	var f models.FileNode
	var fileType string
	if err := row.Scan(&f.ID, &f.ProjectID, &f.ParentID, &fileType, &f.Name, &f.Path, &f.Content, &f.Language, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Type = models.FileType(fileType)
	return &f, nil
}
