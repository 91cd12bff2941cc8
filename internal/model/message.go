package model

import (
	"encoding/json"
	"time"
)

// Message is an immutable chat message. The sender reference is cleared when
// the sending account is removed; the message itself is retained.
type Message struct {
	ID             int64            `db:"id" json:"id"`
	ConversationID int64            `db:"conversation_id" json:"conversationId"`
	SenderID       *int64           `db:"sender_id" json:"senderId,omitempty"`
	Text           string           `db:"text" json:"text"`
	Metadata       *json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	IsRead         bool             `db:"is_read" json:"isRead"`
	CreatedAt      time.Time        `db:"created_at" json:"createdAt"`
}

type CreateMessageParams struct {
	ConversationID int64
	SenderID       *int64
	Text           string
	Metadata       json.RawMessage
}

// StoredMessage is a message row joined with the sender's display fields.
type StoredMessage struct {
	Message
	SenderFirstName *string `db:"sender_first_name" json:"-"`
	SenderEmail     *string `db:"sender_email" json:"-"`
}

// WireMessage is the canonical serialized form pushed to chat clients.
// Field names are part of the client protocol and stay snake_case.
type WireMessage struct {
	ID           int64            `json:"id"`
	Conversation int64            `json:"conversation"`
	SenderID     *int64           `json:"sender_id"`
	SenderName   *string          `json:"sender_name"`
	Text         string           `json:"text"`
	Metadata     *json.RawMessage `json:"metadata"`
	IsRead       bool             `json:"is_read"`
	CreatedAt    time.Time        `json:"created_at"`
}

// Wire builds the outbound form. A removed sender serializes with null
// sender_id and sender_name.
func (m *StoredMessage) Wire() WireMessage {
	wire := WireMessage{
		ID:           m.ID,
		Conversation: m.ConversationID,
		SenderID:     m.SenderID,
		Text:         m.Text,
		Metadata:     m.Metadata,
		IsRead:       m.IsRead,
		CreatedAt:    m.CreatedAt,
	}
	if m.SenderID != nil {
		wire.SenderName = senderName(m.SenderFirstName, m.SenderEmail)
	}
	return wire
}

func senderName(firstName, email *string) *string {
	if firstName != nil && *firstName != "" {
		return firstName
	}
	if email != nil && *email != "" {
		return email
	}
	return nil
}
