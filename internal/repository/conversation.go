package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/schoolhub/chat-server-go/internal/database"
	"github.com/schoolhub/chat-server-go/internal/model"
)

type ConversationRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Conversation, error)
	FindOrCreate(ctx context.Context, teacherID, studentID int64, createdBy *int64) (*model.Conversation, error)
	ListByTeacherID(ctx context.Context, teacherID int64, limit, offset int) ([]model.Conversation, error)
	ListByStudentID(ctx context.Context, studentID int64, limit, offset int) ([]model.Conversation, error)
	ListAll(ctx context.Context, limit, offset int) ([]model.Conversation, error)
	Touch(ctx context.Context, id int64) error
	WithTx(tx *sqlx.Tx) ConversationRepository
}

type conversationRepo struct {
	db database.DBTX
}

func NewConversationRepository(db database.DBTX) ConversationRepository {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) WithTx(tx *sqlx.Tx) ConversationRepository {
	return &conversationRepo{db: tx}
}

func (r *conversationRepo) FindByID(ctx context.Context, id int64) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT * FROM conversations WHERE id = $1`, id)
	return HandleNotFound(&conv, err)
}

// FindOrCreate returns the existing thread for the pair or inserts a new one.
// The no-op update on conflict makes RETURNING yield the existing row.
func (r *conversationRepo) FindOrCreate(ctx context.Context, teacherID, studentID int64, createdBy *int64) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.GetContext(ctx, &conv, `
		INSERT INTO conversations (teacher_id, student_id, created_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (teacher_id, student_id) DO UPDATE SET
			teacher_id = EXCLUDED.teacher_id
		RETURNING *
	`, teacherID, studentID, createdBy)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepo) ListByTeacherID(ctx context.Context, teacherID int64, limit, offset int) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := r.db.SelectContext(ctx, &convs, `
		SELECT * FROM conversations
		WHERE teacher_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`, teacherID, limit, offset)
	return convs, err
}

func (r *conversationRepo) ListByStudentID(ctx context.Context, studentID int64, limit, offset int) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := r.db.SelectContext(ctx, &convs, `
		SELECT * FROM conversations
		WHERE student_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`, studentID, limit, offset)
	return convs, err
}

func (r *conversationRepo) ListAll(ctx context.Context, limit, offset int) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := r.db.SelectContext(ctx, &convs, `
		SELECT * FROM conversations
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return convs, err
}

// Touch bumps updated_at so the thread sorts to the top of listings.
func (r *conversationRepo) Touch(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE conversations SET updated_at = NOW() WHERE id = $1
	`, id)
	return err
}
