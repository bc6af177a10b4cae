package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"cloud-ide/backend/internal/database"
	"cloud-ide/backend/internal/models"
)

const conversationColumns = `id, project_id, user_id, title, created_at, updated_at`

func (d *DB) CreateConversation(ctx context.Context, create *models.Conversation) error {
	query := `INSERT INTO conversations (` + conversationColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := d.q.ExecContext(ctx, query,
		create.ID, create.ProjectID, create.UserID, create.Title, toMillis(create.CreatedAt), toMillis(create.UpdatedAt),
	)
	return errors.Wrap(err, "failed to insert conversation")
}

func (d *DB) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = ?`
	c, err := scanConversation(d.q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get conversation")
	}
	return c, nil
}

func (d *DB) ListConversations(ctx context.Context, find *database.FindConversation) ([]*models.Conversation, error) {
	var query string
	var arg any
	switch {
	case find.ProjectID != nil:
		query = `SELECT ` + conversationColumns + ` FROM conversations WHERE project_id = ? ORDER BY rowid DESC`
		arg = *find.ProjectID
	case find.UserID != nil:
		query = `SELECT ` + conversationColumns + ` FROM conversations WHERE user_id = ? ORDER BY updated_at DESC, rowid DESC`
		arg = *find.UserID
	default:
		return nil, errors.New("conversation lookup needs a project or a user")
	}
	rows, err := d.q.QueryContext(ctx, query+limitClause(find.Limit), arg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list conversations")
	}
	defer rows.Close()

	conversations := make([]*models.Conversation, 0)
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan conversation")
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

func (d *DB) UpdateConversation(ctx context.Context, update *models.UpdateConversation) error {
	var set database.Assignments
	database.AddField(&set, "title", update.Title, nil)
	database.AddField(&set, "updated_at", update.UpdatedAt, timeArg)
	if set.Empty() {
		return nil
	}
	query := `UPDATE conversations SET ` + set.SQL(database.Question) + ` WHERE id = ?`
	_, err := d.q.ExecContext(ctx, query, append(set.Args(), update.ID)...)
	return errors.Wrap(err, "failed to update conversation")
}

func (d *DB) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	_, err := d.q.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	return errors.Wrap(err, "failed to delete conversation")
}

func (d *DB) CreateMessage(ctx context.Context, create *models.Message) error {
	var metadata *string
	if create.Metadata != nil {
		raw, err := json.Marshal(create.Metadata)
		if err != nil {
			return errors.Wrap(err, "failed to marshal message metadata")
		}
		s := string(raw)
		metadata = &s
	}
	query := `INSERT INTO messages (id, conversation_id, role, content, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := d.q.ExecContext(ctx, query,
		create.ID, create.ConversationID, string(create.Role), create.Content, metadata, toMillis(create.CreatedAt),
	)
	return errors.Wrap(err, "failed to insert message")
}

func (d *DB) ListMessages(ctx context.Context, find *database.FindMessage) ([]*models.Message, error) {
	query := `SELECT id, conversation_id, role, content, metadata, created_at FROM messages
		WHERE conversation_id = ? ORDER BY created_at ASC, rowid ASC` + limitClause(find.Limit)
	rows, err := d.q.QueryContext(ctx, query, find.ConversationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list messages")
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		var m models.Message
		var role string
		var metadata sql.NullString
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.ConversationID, &role, &m.Content, &metadata, &createdAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan message")
		}
		if metadata.Valid {
			m.Metadata = &models.MessageMetadata{}
			if err := json.Unmarshal([]byte(metadata.String), m.Metadata); err != nil {
				return nil, errors.Wrap(err, "failed to unmarshal message metadata")
			}
		}
		m.Role = models.MessageRole(role)
		m.CreatedAt = fromMillis(createdAt)
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

func (d *DB) DeleteMessages(ctx context.Context, conversationID uuid.UUID) error {
	_, err := d.q.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, conversationID)
	return errors.Wrap(err, "failed to delete messages")
}

func scanConversation(row scanner) (*models.Conversation, error) {
	var c models.Conversation
	var createdAt, updatedAt int64
	if err := row.Scan(&c.ID, &c.ProjectID, &c.UserID, &c.Title, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return &c, nil
}
