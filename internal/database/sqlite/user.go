package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"cloud-ide/backend/internal/database"
	"cloud-ide/backend/internal/models"
)

func (d *DB) CreateUser(ctx context.Context, create *models.User) error {
	query := `INSERT INTO users (id, subject, email, name, image_url, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := d.q.ExecContext(ctx, query, create.ID, create.Subject, create.Email, create.Name, create.ImageURL, toMillis(create.CreatedAt))
	return errors.Wrap(err, "failed to insert user")
}

func (d *DB) GetUserBySubject(ctx context.Context, subject string) (*models.User, error) {
	query := `SELECT id, subject, email, name, image_url, created_at FROM users WHERE subject = ?`
	var u models.User
	var createdAt int64
	err := d.q.QueryRowContext(ctx, query, subject).Scan(&u.ID, &u.Subject, &u.Email, &u.Name, &u.ImageURL, &createdAt)
	if err == sql.ErrNoRows {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	u.CreatedAt = fromMillis(createdAt)
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
	query := `UPDATE users SET ` + set.SQL(database.Question) + ` WHERE id = ?`
	_, err := d.q.ExecContext(ctx, query, append(set.Args(), update.ID)...)
	return errors.Wrap(err, "failed to update user")
}
