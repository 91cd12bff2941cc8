package handler

import (
	"context"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/schoolhub/chat-server-go/internal/auth"
	"github.com/schoolhub/chat-server-go/internal/middleware"
	"github.com/schoolhub/chat-server-go/internal/model"
	"github.com/schoolhub/chat-server-go/internal/repository"
)

type mockUserRepo struct {
	findByIDFunc       func(ctx context.Context, id int64) (*model.User, error)
	findByUsernameFunc func(ctx context.Context, username string) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	return nil, nil
}

type mockConversationRepo struct {
	findByIDFunc        func(ctx context.Context, id int64) (*model.Conversation, error)
	findOrCreateFunc    func(ctx context.Context, teacherID, studentID int64, createdBy *int64) (*model.Conversation, error)
	listByTeacherIDFunc func(ctx context.Context, teacherID int64, limit, offset int) ([]model.Conversation, error)
	listByStudentIDFunc func(ctx context.Context, studentID int64, limit, offset int) ([]model.Conversation, error)
	listAllFunc         func(ctx context.Context, limit, offset int) ([]model.Conversation, error)
}

func (m *mockConversationRepo) FindByID(ctx context.Context, id int64) (*model.Conversation, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockConversationRepo) FindOrCreate(ctx context.Context, teacherID, studentID int64, createdBy *int64) (*model.Conversation, error) {
	if m.findOrCreateFunc != nil {
		return m.findOrCreateFunc(ctx, teacherID, studentID, createdBy)
	}
	return nil, nil
}

func (m *mockConversationRepo) ListByTeacherID(ctx context.Context, teacherID int64, limit, offset int) ([]model.Conversation, error) {
	if m.listByTeacherIDFunc != nil {
		return m.listByTeacherIDFunc(ctx, teacherID, limit, offset)
	}
	return nil, nil
}

func (m *mockConversationRepo) ListByStudentID(ctx context.Context, studentID int64, limit, offset int) ([]model.Conversation, error) {
	if m.listByStudentIDFunc != nil {
		return m.listByStudentIDFunc(ctx, studentID, limit, offset)
	}
	return nil, nil
}

func (m *mockConversationRepo) ListAll(ctx context.Context, limit, offset int) ([]model.Conversation, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockConversationRepo) Touch(ctx context.Context, id int64) error {
	return nil
}

func (m *mockConversationRepo) WithTx(tx *sqlx.Tx) repository.ConversationRepository {
	return m
}

type mockMessageRepo struct {
	listByConversationIDFunc func(ctx context.Context, conversationID int64, limit, offset int) ([]model.StoredMessage, error)
	lastByConversationIDFunc func(ctx context.Context, conversationID int64) (*model.StoredMessage, error)
	countFunc                func(ctx context.Context, conversationID int64) (int, error)
}

func (m *mockMessageRepo) Create(ctx context.Context, params model.CreateMessageParams) (*model.Message, error) {
	return nil, nil
}

func (m *mockMessageRepo) ListByConversationID(ctx context.Context, conversationID int64, limit, offset int) ([]model.StoredMessage, error) {
	if m.listByConversationIDFunc != nil {
		return m.listByConversationIDFunc(ctx, conversationID, limit, offset)
	}
	return nil, nil
}

func (m *mockMessageRepo) LastByConversationID(ctx context.Context, conversationID int64) (*model.StoredMessage, error) {
	if m.lastByConversationIDFunc != nil {
		return m.lastByConversationIDFunc(ctx, conversationID)
	}
	return nil, nil
}

func (m *mockMessageRepo) CountByConversationID(ctx context.Context, conversationID int64) (int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, conversationID)
	}
	return 0, nil
}

func (m *mockMessageRepo) WithTx(tx *sqlx.Tx) repository.MessageRepository {
	return m
}

type mockTeacherRepo struct {
	findByIDFunc func(ctx context.Context, id int64) (*model.Teacher, error)
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id int64) (*model.Teacher, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockTeacherRepo) FindByUserID(ctx context.Context, userID int64) (*model.Teacher, error) {
	return nil, nil
}

func (m *mockTeacherRepo) Create(ctx context.Context, params model.CreateTeacherParams) (*model.Teacher, error) {
	return nil, nil
}

type mockStudentRepo struct {
	findByIDFunc func(ctx context.Context, id int64) (*model.Student, error)
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id int64) (*model.Student, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockStudentRepo) FindByUserID(ctx context.Context, userID int64) (*model.Student, error) {
	return nil, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, params model.CreateStudentParams) (*model.Student, error) {
	return nil, nil
}

func withIdentity(r *http.Request, ident *auth.Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.IdentityContextKey, ident))
}
