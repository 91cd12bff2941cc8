package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/schoolhub/chat-server-go/internal/database"
	"github.com/schoolhub/chat-server-go/internal/model"
)

const messageSelect = `
	SELECT m.*, u.first_name AS sender_first_name, u.email AS sender_email
	FROM messages m
	LEFT JOIN users u ON u.id = m.sender_id
`

type MessageRepository interface {
	Create(ctx context.Context, params model.CreateMessageParams) (*model.Message, error)
	ListByConversationID(ctx context.Context, conversationID int64, limit, offset int) ([]model.StoredMessage, error)
	LastByConversationID(ctx context.Context, conversationID int64) (*model.StoredMessage, error)
	CountByConversationID(ctx context.Context, conversationID int64) (int, error)
	WithTx(tx *sqlx.Tx) MessageRepository
}

type messageRepo struct {
	db database.DBTX
}

func NewMessageRepository(db database.DBTX) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) WithTx(tx *sqlx.Tx) MessageRepository {
	return &messageRepo{db: tx}
}

func (r *messageRepo) Create(ctx context.Context, params model.CreateMessageParams) (*model.Message, error) {
	// lib/pq sends raw []byte as bytea, which a JSONB column rejects.
	var metadata *string
	if len(params.Metadata) > 0 {
		s := string(params.Metadata)
		metadata = &s
	}

	var msg model.Message
	err := r.db.GetContext(ctx, &msg, `
		INSERT INTO messages (conversation_id, sender_id, text, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.ConversationID, params.SenderID, params.Text, metadata)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListByConversationID returns messages in creation order, the durable
// authoritative order for display.
func (r *messageRepo) ListByConversationID(ctx context.Context, conversationID int64, limit, offset int) ([]model.StoredMessage, error) {
	var msgs []model.StoredMessage
	err := r.db.SelectContext(ctx, &msgs, messageSelect+`
		WHERE m.conversation_id = $1
		ORDER BY m.created_at ASC, m.id ASC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	return msgs, err
}

func (r *messageRepo) LastByConversationID(ctx context.Context, conversationID int64) (*model.StoredMessage, error) {
	var msg model.StoredMessage
	err := r.db.GetContext(ctx, &msg, messageSelect+`
		WHERE m.conversation_id = $1
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT 1
	`, conversationID)
	return HandleNotFound(&msg, err)
}

func (r *messageRepo) CountByConversationID(ctx context.Context, conversationID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM messages WHERE conversation_id = $1
	`, conversationID)
	return count, err
}
