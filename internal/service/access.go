package service

import (
	"context"
	"fmt"

	"github.com/schoolhub/chat-server-go/internal/auth"
	"github.com/schoolhub/chat-server-go/internal/model"
	"github.com/schoolhub/chat-server-go/internal/repository"
)

// AccessService decides whether an identity may participate in a
// conversation. It never mutates anything and fails closed: a missing
// conversation is a plain "no", not an error.
type AccessService struct {
	conversations repository.ConversationRepository
}

func NewAccessService(conversations repository.ConversationRepository) *AccessService {
	return &AccessService{conversations: conversations}
}

func (s *AccessService) IsParticipant(ctx context.Context, ident *auth.Identity, conversationID int64) (bool, error) {
	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return false, fmt.Errorf("find conversation %d: %w", conversationID, err)
	}
	if conv == nil {
		return false, nil
	}

	if ident.Role == model.RoleAdmin {
		return true, nil
	}
	if ident.Teacher != nil && ident.Teacher.ID == conv.TeacherID {
		return true, nil
	}
	if ident.Student != nil && ident.Student.ID == conv.StudentID {
		return true, nil
	}
	return false, nil
}
