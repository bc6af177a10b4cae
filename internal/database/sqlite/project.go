package sqlite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"cloud-ide/backend/internal/database"
	"cloud-ide/backend/internal/models"
)

const projectColumns = `id, owner_id, name, description, language, is_public, created_at, updated_at`

func (d *DB) CreateProject(ctx context.Context, create *models.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := d.q.ExecContext(ctx, query,
		create.ID, create.OwnerID, create.Name, create.Description, create.Language, create.IsPublic,
		toMillis(create.CreatedAt), toMillis(create.UpdatedAt),
	)
	return errors.Wrap(err, "failed to insert project")
}

func (d *DB) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	p, err := scanProject(d.q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get project")
	}
	return p, nil
}

func (d *DB) ListProjects(ctx context.Context, find *database.FindProject) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE owner_id = ? ORDER BY updated_at DESC, rowid DESC` + limitClause(find.Limit)
	rows, err := d.q.QueryContext(ctx, query, find.OwnerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list projects")
	}
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan project")
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (d *DB) UpdateProject(ctx context.Context, update *models.UpdateProject) error {
	var set database.Assignments
	database.AddField(&set, "name", update.Name, nil)
	database.AddField(&set, "description", update.Description, nil)
	database.AddField(&set, "language", update.Language, nil)
	database.AddField(&set, "is_public", update.IsPublic, nil)
	database.AddField(&set, "updated_at", update.UpdatedAt, timeArg)
	if set.Empty() {
		return nil
	}
	query := `UPDATE projects SET ` + set.SQL(database.Question) + ` WHERE id = ?`
	_, err := d.q.ExecContext(ctx, query, append(set.Args(), update.ID)...)
	return errors.Wrap(err, "failed to update project")
}

func (d *DB) DeleteProject(ctx context.Context, id uuid.UUID) error {
	_, err := d.q.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	return errors.Wrap(err, "failed to delete project")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*models.Project, error) {
	var p models.Project
	var createdAt, updatedAt int64
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Language, &p.IsPublic, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return &p, nil
}
