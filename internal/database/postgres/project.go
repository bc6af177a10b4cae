package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"cloud-ide/backend/internal/database"
	"cloud-ide/backend/internal/models"
)

const projectColumns = `id, owner_id, name, description, language, is_public, created_at, updated_at`

func (d *DB) CreateProject(ctx context.Context, create *models.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := d.q.Exec(ctx, query,
		create.ID, create.OwnerID, create.Name, create.Description, create.Language, create.IsPublic,
		create.CreatedAt, create.UpdatedAt,
	)
	return errors.Wrap(err, "failed to insert project")
}

func (d *DB) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	p, err := scanProject(d.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get project")
	}
	return p, nil
}

func (d *DB) ListProjects(ctx context.Context, find *database.FindProject) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE owner_id = $1 ORDER BY updated_at DESC, seq DESC` + limitClause(find.Limit)
	rows, err := d.q.Query(ctx, query, find.OwnerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query projects")
	}
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan project row")
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
	database.AddField(&set, "updated_at", update.UpdatedAt, nil)
	if set.Empty() {
		return nil
	}
	args := append(set.Args(), update.ID)
	query := `UPDATE projects SET ` + set.SQL(database.Dollar) + ` WHERE id = ` + database.Dollar(len(args))
	_, err := d.q.Exec(ctx, query, args...)
	return errors.Wrap(err, "failed to update project")
}

func (d *DB) DeleteProject(ctx context.Context, id uuid.UUID) error {
	_, err := d.q.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return errors.Wrap(err, "failed to delete project")
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Language, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
