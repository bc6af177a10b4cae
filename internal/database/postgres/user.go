package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"cloud-ide/backend/internal/database"
	"cloud-ide/backend/internal/models"
)

func (d *DB) CreateUser(ctx context.Context, create *models.User) error {
	query := `INSERT INTO users (id, subject, email, name, image_url, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := d.q.Exec(ctx, query, create.ID, create.Subject, create.Email, create.Name, create.ImageURL, create.CreatedAt)
	return errors.Wrap(err, "failed to insert user")
}

func (d *DB) GetUserBySubject(ctx context.Context, subject string) (*models.User, error) {
	query := `SELECT id, subject, email, name, image_url, created_at FROM users WHERE subject = $1`
	var u models.User
	err := d.q.QueryRow(ctx, query, subject).Scan(&u.ID, &u.Subject, &u.Email, &u.Name, &u.ImageURL, &u.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	return &u, nil
}

func (d *DB) UpdateUser(ctx context.Context, update *models.UpdateUser) error {
	var set database.Assignments
	database.AddField(&set, "email", update.Email, nil)
	database.AddField(&set, "name", update.Name, nil)
	database.AddField(&set, "image_url", update.ImageURL, nil)
	if set.Empty() {
		return nil
	}
	args := append(set.Args(), update.ID)
	query := `UPDATE users SET ` + set.SQL(database.Dollar) + ` WHERE id = ` + database.Dollar(len(args))
	_, err := d.q.Exec(ctx, query, args...)
	return errors.Wrap(err, "failed to update user")
}
