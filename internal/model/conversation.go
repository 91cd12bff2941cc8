package model

import (
	"time"
)

// Conversation is the single messaging thread between one teacher and one
// student. The (teacher_id, student_id) pair is unique; threads are created
// lazily on first contact and never deleted here.
type Conversation struct {
	ID        int64     `db:"id" json:"id"`
	TeacherID int64     `db:"teacher_id" json:"teacherId"`
	StudentID int64     `db:"student_id" json:"studentId"`
	CreatedBy *int64    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ConversationSummary is a conversation with its most recent message, used
// for listings ordered by last activity.
type ConversationSummary struct {
	Conversation
	LastMessage *WireMessage `json:"lastMessage"`
}
