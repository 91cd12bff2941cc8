package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/schoolhub/chat-server-go/internal/database"
	apperrors "github.com/schoolhub/chat-server-go/internal/errors"
	"github.com/schoolhub/chat-server-go/internal/model"
	"github.com/schoolhub/chat-server-go/internal/repository"
)

// MaxMessageLength bounds a single chat message body.
const MaxMessageLength = 4000

// TxRunner runs a function inside a database transaction. *database.DB
// satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

var _ TxRunner = (*database.DB)(nil)

// AppendMessageParams carries everything needed to persist one message and
// describe it on the wire without a follow-up read.
type AppendMessageParams struct {
	ConversationID int64
	SenderID       *int64
	SenderName     *string
	Text           string
	Metadata       json.RawMessage
}

type MessageService struct {
	db            TxRunner
	messages      repository.MessageRepository
	conversations repository.ConversationRepository
}

func NewMessageService(
	db TxRunner,
	messages repository.MessageRepository,
	conversations repository.ConversationRepository,
) *MessageService {
	return &MessageService{
		db:            db,
		messages:      messages,
		conversations: conversations,
	}
}

// Append stores a message and bumps the conversation's activity timestamp in
// one transaction; either both land or neither does. The returned wire form
// reflects exactly what was persisted.
func (s *MessageService) Append(ctx context.Context, params AppendMessageParams) (*model.WireMessage, error) {
	text := strings.TrimSpace(params.Text)
	if text == "" {
		return nil, apperrors.MissingRequired("text")
	}
	if len(text) > MaxMessageLength {
		return nil, apperrors.InvalidInput("text", fmt.Sprintf("exceeds %d characters", MaxMessageLength))
	}

	var saved *model.Message
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		saved, err = s.messages.WithTx(tx).Create(ctx, model.CreateMessageParams{
			ConversationID: params.ConversationID,
			SenderID:       params.SenderID,
			Text:           text,
			Metadata:       params.Metadata,
		})
		if err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		if err := s.conversations.WithTx(tx).Touch(ctx, params.ConversationID); err != nil {
			return fmt.Errorf("touch conversation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	wire := &model.WireMessage{
		ID:           saved.ID,
		Conversation: saved.ConversationID,
		SenderID:     saved.SenderID,
		Text:         saved.Text,
		Metadata:     saved.Metadata,
		IsRead:       saved.IsRead,
		CreatedAt:    saved.CreatedAt,
	}
	if saved.SenderID != nil {
		wire.SenderName = params.SenderName
	}
	return wire, nil
}

// History returns a page of a conversation's messages in send order together
// with the total count.
func (s *MessageService) History(ctx context.Context, conversationID int64, limit, offset int) ([]model.WireMessage, int, error) {
	stored, err := s.messages.ListByConversationID(ctx, conversationID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}

	total, err := s.messages.CountByConversationID(ctx, conversationID)
	if err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	wires := make([]model.WireMessage, 0, len(stored))
	for i := range stored {
		wires = append(wires, stored[i].Wire())
	}
	return wires, total, nil
}
