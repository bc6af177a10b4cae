package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"cloud-ide/backend/internal/database"
	"cloud-ide/backend/internal/models"
)

const conversationColumns = `id, project_id, user_id, title, created_at, updated_at`

func (d *DB) CreateConversation(ctx context.Context, create *models.Conversation) error {
	query := `INSERT INTO conversations (` + conversationColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := d.q.Exec(ctx, query, create.ID, create.ProjectID, create.UserID, create.Title, create.CreatedAt, create.UpdatedAt)
	return errors.Wrap(err, "failed to insert conversation")
}

func (d *DB) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	c, err := scanConversation(d.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
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
		query = `SELECT ` + conversationColumns + ` FROM conversations WHERE project_id = $1 ORDER BY seq DESC`
		arg = *find.ProjectID
	case find.UserID != nil:
		query = `SELECT ` + conversationColumns + ` FROM conversations WHERE user_id = $1 ORDER BY updated_at DESC, seq DESC`
		arg = *find.UserID
	default:
		return nil, errors.New("conversation lookup needs a project or a user")
	}
	rows, err := d.q.Query(ctx, query+limitClause(find.Limit), arg)
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
	database.AddField(&set, "updated_at", update.UpdatedAt, nil)
	if set.Empty() {
		return nil
	}
	args := append(set.Args(), update.ID)
	query := `UPDATE conversations SET ` + set.SQL(database.Dollar) + ` WHERE id = ` + database.Dollar(len(args))
	_, err := d.q.Exec(ctx, query, args...)
	return errors.Wrap(err, "failed to update conversation")
}

func (d *DB) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	_, err := d.q.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	return errors.Wrap(err, "failed to delete conversation")
}

func (d *DB) CreateMessage(ctx context.Context, create *models.Message) error {
	var metadata []byte
	if create.Metadata != nil {
		raw, err := json.Marshal(create.Metadata)
		if err != nil {
			return errors.Wrap(err, "failed to marshal message metadata")
		}
		metadata = raw
	}
	query := `INSERT INTO messages (id, conversation_id, role, content, metadata, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := d.q.Exec(ctx, query, create.ID, create.ConversationID, string(create.Role), create.Content, metadata, create.CreatedAt)
	return errors.Wrap(err, "failed to insert message")
}

func (d *DB) ListMessages(ctx context.Context, find *database.FindMessage) ([]*models.Message, error) {
	query := `SELECT id, conversation_id, role, content, metadata, created_at FROM messages
		WHERE conversation_id = $1 ORDER BY created_at ASC, seq ASC` + limitClause(find.Limit)
	rows, err := d.q.Query(ctx, query, find.ConversationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list messages")
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		var m models.Message
		var role string
		var metadata []byte
		if err := rows.Scan(&m.ID, &m.ConversationID, &role, &m.Content, &metadata, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan message")
		}
		if metadata != nil {
			m.Metadata = &models.MessageMetadata{}
			if err := json.Unmarshal(metadata, m.Metadata); err != nil {
				return nil, errors.Wrap(err, "failed to unmarshal message metadata")
			}
		}
		m.Role = models.MessageRole(role)
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

func (d *DB) DeleteMessages(ctx context.Context, conversationID uuid.UUID) error {
	_, err := d.q.Exec(ctx, `DELETE FROM messages WHERE conversation_id = $1`, conversationID)
	return errors.Wrap(err, "failed to delete messages")
}

func scanConversation(row pgx.Row) (*models.Conversation, error) {
	var c models.Conversation
	if err := row.Scan(&c.ID, &c.ProjectID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
