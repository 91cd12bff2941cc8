package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/schoolhub/chat-server-go/internal/database"
	"github.com/schoolhub/chat-server-go/internal/model"
	"github.com/schoolhub/chat-server-go/internal/repository"
)

type stubConversationRepo struct {
	findByID        func(ctx context.Context, id int64) (*model.Conversation, error)
	findOrCreate    func(ctx context.Context, teacherID, studentID int64, createdBy *int64) (*model.Conversation, error)
	listByTeacherID func(ctx context.Context, teacherID int64, limit, offset int) ([]model.Conversation, error)
	listByStudentID func(ctx context.Context, studentID int64, limit, offset int) ([]model.Conversation, error)
	listAll         func(ctx context.Context, limit, offset int) ([]model.Conversation, error)
	touch           func(ctx context.Context, id int64) error
}

func (s *stubConversationRepo) FindByID(ctx context.Context, id int64) (*model.Conversation, error) {
	return s.findByID(ctx, id)
}

func (s *stubConversationRepo) FindOrCreate(ctx context.Context, teacherID, studentID int64, createdBy *int64) (*model.Conversation, error) {
	return s.findOrCreate(ctx, teacherID, studentID, createdBy)
}

func (s *stubConversationRepo) ListByTeacherID(ctx context.Context, teacherID int64, limit, offset int) ([]model.Conversation, error) {
	return s.listByTeacherID(ctx, teacherID, limit, offset)
}

func (s *stubConversationRepo) ListByStudentID(ctx context.Context, studentID int64, limit, offset int) ([]model.Conversation, error) {
	return s.listByStudentID(ctx, studentID, limit, offset)
}

func (s *stubConversationRepo) ListAll(ctx context.Context, limit, offset int) ([]model.Conversation, error) {
	return s.listAll(ctx, limit, offset)
}

func (s *stubConversationRepo) Touch(ctx context.Context, id int64) error {
	return s.touch(ctx, id)
}

func (s *stubConversationRepo) WithTx(tx *sqlx.Tx) repository.ConversationRepository {
	return s
}

type stubMessageRepo struct {
	create               func(ctx context.Context, params model.CreateMessageParams) (*model.Message, error)
	listByConversationID func(ctx context.Context, conversationID int64, limit, offset int) ([]model.StoredMessage, error)
	lastByConversationID func(ctx context.Context, conversationID int64) (*model.StoredMessage, error)
	countByConversation  func(ctx context.Context, conversationID int64) (int, error)
}

func (s *stubMessageRepo) Create(ctx context.Context, params model.CreateMessageParams) (*model.Message, error) {
	return s.create(ctx, params)
}

func (s *stubMessageRepo) ListByConversationID(ctx context.Context, conversationID int64, limit, offset int) ([]model.StoredMessage, error) {
	return s.listByConversationID(ctx, conversationID, limit, offset)
}

func (s *stubMessageRepo) LastByConversationID(ctx context.Context, conversationID int64) (*model.StoredMessage, error) {
	return s.lastByConversationID(ctx, conversationID)
}

func (s *stubMessageRepo) CountByConversationID(ctx context.Context, conversationID int64) (int, error) {
	return s.countByConversation(ctx, conversationID)
}

func (s *stubMessageRepo) WithTx(tx *sqlx.Tx) repository.MessageRepository {
	return s
}

type stubTeacherRepo struct {
	findByID func(ctx context.Context, id int64) (*model.Teacher, error)
}

func (s *stubTeacherRepo) FindByID(ctx context.Context, id int64) (*model.Teacher, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	return nil, nil
}

func (s *stubTeacherRepo) FindByUserID(ctx context.Context, userID int64) (*model.Teacher, error) {
	return nil, nil
}

func (s *stubTeacherRepo) Create(ctx context.Context, params model.CreateTeacherParams) (*model.Teacher, error) {
	return nil, nil
}

type stubStudentRepo struct {
	findByID     func(ctx context.Context, id int64) (*model.Student, error)
	findByUserID func(ctx context.Context, userID int64) (*model.Student, error)
}

func (s *stubStudentRepo) FindByID(ctx context.Context, id int64) (*model.Student, error) {
	return s.findByID(ctx, id)
}

func (s *stubStudentRepo) FindByUserID(ctx context.Context, userID int64) (*model.Student, error) {
	return s.findByUserID(ctx, userID)
}

func (s *stubStudentRepo) Create(ctx context.Context, params model.CreateStudentParams) (*model.Student, error) {
	return nil, nil
}

// stubTxRunner runs the transaction body directly with a nil tx; the stub
// repositories return themselves from WithTx, so the body exercises them.
type stubTxRunner struct {
	err error
}

func (s *stubTxRunner) WithTx(ctx context.Context, fn database.TxFunc) error {
	if s.err != nil {
		return s.err
	}
	return fn(nil)
}
