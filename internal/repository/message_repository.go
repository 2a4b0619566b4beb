package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smart-edu-api/internal/models"
)

const messageColumns = "id, sender, receiver, subject, message, attachments, priority, category, is_read, pinned, liked, replies, created_at, updated_at"

// MessageRepository manages persistence for messages.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository constructs a MessageRepository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// List returns messages pinned first, then newest first.
func (r *MessageRepository) List(ctx context.Context, filter models.MessageFilter) ([]models.Message, error) {
	var conditions []string
	var args []interface{}

	if filter.Receiver != "" {
		args = append(args, filter.Receiver)
		conditions = append(conditions, fmt.Sprintf("receiver = $%d", len(args)))
	}
	if filter.UnreadOnly {
		conditions = append(conditions, "is_read = FALSE")
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(subject) LIKE $%d OR LOWER(message) LIKE $%d OR LOWER(sender) LIKE $%d)", len(args), len(args), len(args)))
	}

	query := "SELECT " + messageColumns + " FROM messages"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY pinned DESC, created_at DESC"

	messages := []models.Message{}
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// FindByID fetches a message by ID. A missing message yields sql.ErrNoRows.
func (r *MessageRepository) FindByID(ctx context.Context, id string) (*models.Message, error) {
	const query = "SELECT " + messageColumns + " FROM messages WHERE id = $1"
	var message models.Message
	if err := r.db.GetContext(ctx, &message, query, id); err != nil {
		return nil, err
	}
	return &message, nil
}

// Create inserts a message, assigning its ID and timestamps.
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = now
	}
	message.UpdatedAt = now

	const query = `INSERT INTO messages (id, sender, receiver, subject, message, attachments, priority, category, is_read, pinned, liked, replies, created_at, updated_at)
		VALUES (:id, :sender, :receiver, :subject, :message, :attachments, :priority, :category, :is_read, :pinned, :liked, :replies, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, message); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// Update stores the mutable parts of a message: flags and replies.
func (r *MessageRepository) Update(ctx context.Context, message *models.Message) error {
	message.UpdatedAt = time.Now().UTC()
	const query = `UPDATE messages SET is_read = :is_read, pinned = :pinned, liked = :liked, replies = :replies, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, message); err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	return nil
}

// Delete removes a message and reports whether it existed.
func (r *MessageRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete message: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete message: %w", err)
	}
	return affected > 0, nil
}
