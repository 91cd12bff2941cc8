package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/schoolhub/chat-server-go/internal/auth"
	apperrors "github.com/schoolhub/chat-server-go/internal/errors"
	"github.com/schoolhub/chat-server-go/internal/model"
	"github.com/schoolhub/chat-server-go/internal/repository"
)

// StartConversationParams names the counterpart of the thread. Callers fill
// in whichever side their own identity does not cover; admins must supply
// both.
type StartConversationParams struct {
	TeacherID int64 `json:"teacherId"`
	StudentID int64 `json:"studentId"`
}

type ConversationService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	teachers      repository.TeacherRepository
	students      repository.StudentRepository
}

func NewConversationService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	teachers repository.TeacherRepository,
	students repository.StudentRepository,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		teachers:      teachers,
		students:      students,
	}
}

func (s *ConversationService) FindByID(ctx context.Context, id int64) (*model.Conversation, error) {
	return s.conversations.FindByID(ctx, id)
}

// Start opens (or returns) the thread between a teacher and a student.
// Students may only reach their assigned teacher; teachers may only reach
// students assigned to them; admins may pair anyone.
func (s *ConversationService) Start(ctx context.Context, ident *auth.Identity, params StartConversationParams) (*model.Conversation, error) {
	teacherID := params.TeacherID
	studentID := params.StudentID

	switch ident.Role {
	case model.RoleStudent:
		if ident.Student == nil {
			return nil, apperrors.Forbidden("No student profile for this account")
		}
		studentID = ident.Student.ID
		if ident.Student.AssignedTeacherID == nil {
			return nil, apperrors.Forbidden("No assigned teacher")
		}
		if teacherID == 0 {
			teacherID = *ident.Student.AssignedTeacherID
		}
		if teacherID != *ident.Student.AssignedTeacherID {
			return nil, apperrors.Forbidden("Students can only message their assigned teacher")
		}

	case model.RoleTeacher:
		if ident.Teacher == nil {
			return nil, apperrors.Forbidden("No teacher profile for this account")
		}
		teacherID = ident.Teacher.ID
		if studentID == 0 {
			return nil, apperrors.MissingRequired("studentId")
		}
		student, err := s.students.FindByID(ctx, studentID)
		if err != nil {
			return nil, fmt.Errorf("find student %d: %w", studentID, err)
		}
		if student == nil {
			return nil, apperrors.NotFound("Student")
		}
		if student.AssignedTeacherID == nil || *student.AssignedTeacherID != teacherID {
			return nil, apperrors.Forbidden("Teachers can only message their own students")
		}

	case model.RoleAdmin:
		if teacherID == 0 {
			return nil, apperrors.MissingRequired("teacherId")
		}
		if studentID == 0 {
			return nil, apperrors.MissingRequired("studentId")
		}
		teacher, err := s.teachers.FindByID(ctx, teacherID)
		if err != nil {
			return nil, fmt.Errorf("find teacher %d: %w", teacherID, err)
		}
		if teacher == nil {
			return nil, apperrors.NotFound("Teacher")
		}
		student, err := s.students.FindByID(ctx, studentID)
		if err != nil {
			return nil, fmt.Errorf("find student %d: %w", studentID, err)
		}
		if student == nil {
			return nil, apperrors.NotFound("Student")
		}

	default:
		return nil, apperrors.Forbidden("Unknown role")
	}

	userID := ident.UserID
	conv, err := s.conversations.FindOrCreate(ctx, teacherID, studentID, &userID)
	if err != nil {
		return nil, fmt.Errorf("find or create conversation: %w", err)
	}

	log.Debug().
		Int64("conversationId", conv.ID).
		Int64("teacherId", teacherID).
		Int64("studentId", studentID).
		Msg("conversation opened")

	return conv, nil
}

// ListForIdentity returns the caller's threads, most recently active first,
// each annotated with its latest message.
func (s *ConversationService) ListForIdentity(ctx context.Context, ident *auth.Identity, limit, offset int) ([]model.ConversationSummary, error) {
	var (
		convs []model.Conversation
		err   error
	)

	switch {
	case ident.Role == model.RoleAdmin:
		convs, err = s.conversations.ListAll(ctx, limit, offset)
	case ident.Teacher != nil:
		convs, err = s.conversations.ListByTeacherID(ctx, ident.Teacher.ID, limit, offset)
	case ident.Student != nil:
		convs, err = s.conversations.ListByStudentID(ctx, ident.Student.ID, limit, offset)
	default:
		return []model.ConversationSummary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	summaries := make([]model.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summary := model.ConversationSummary{Conversation: conv}
		last, err := s.messages.LastByConversationID(ctx, conv.ID)
		if err != nil {
			return nil, fmt.Errorf("last message of conversation %d: %w", conv.ID, err)
		}
		if last != nil {
			wire := last.Wire()
			summary.LastMessage = &wire
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
