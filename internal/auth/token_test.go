package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/chat-server-go/internal/model"
)

type stubUserRepo struct {
	findByIDFunc func(ctx context.Context, id int64) (*model.User, error)
}

func (s *stubUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if s.findByIDFunc != nil {
		return s.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (s *stubUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return nil, nil
}

func (s *stubUserRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	return nil, nil
}

type stubTeacherRepo struct {
	findByUserIDFunc func(ctx context.Context, userID int64) (*model.Teacher, error)
}

func (s *stubTeacherRepo) FindByID(ctx context.Context, id int64) (*model.Teacher, error) {
	return nil, nil
}

func (s *stubTeacherRepo) FindByUserID(ctx context.Context, userID int64) (*model.Teacher, error) {
	if s.findByUserIDFunc != nil {
		return s.findByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (s *stubTeacherRepo) Create(ctx context.Context, params model.CreateTeacherParams) (*model.Teacher, error) {
	return nil, nil
}

type stubStudentRepo struct {
	findByUserIDFunc func(ctx context.Context, userID int64) (*model.Student, error)
}

func (s *stubStudentRepo) FindByID(ctx context.Context, id int64) (*model.Student, error) {
	return nil, nil
}

func (s *stubStudentRepo) FindByUserID(ctx context.Context, userID int64) (*model.Student, error) {
	if s.findByUserIDFunc != nil {
		return s.findByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (s *stubStudentRepo) Create(ctx context.Context, params model.CreateStudentParams) (*model.Student, error) {
	return nil, nil
}

const testSecret = "test-secret-for-token-tests"

func newTestAuthenticator(users *stubUserRepo, teachers *stubTeacherRepo, students *stubStudentRepo) *Authenticator {
	if users == nil {
		users = &stubUserRepo{}
	}
	if teachers == nil {
		teachers = &stubTeacherRepo{}
	}
	if students == nil {
		students = &stubStudentRepo{}
	}
	return NewAuthenticator(testSecret, users, teachers, students)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	teacherUser := &model.User{ID: 7, Username: "mwilson", FirstName: "Meredith", Role: model.RoleTeacher}
	teacherProfile := &model.Teacher{ID: 3, UserID: 7, EmployeeID: "EMP-003"}

	t.Run("valid token resolves teacher identity with profile", func(t *testing.T) {
		issuer := NewIssuer(testSecret, time.Hour)
		token, err := issuer.Issue(teacherUser)
		require.NoError(t, err)

		a := newTestAuthenticator(
			&stubUserRepo{findByIDFunc: func(ctx context.Context, id int64) (*model.User, error) {
				assert.Equal(t, int64(7), id)
				return teacherUser, nil
			}},
			&stubTeacherRepo{findByUserIDFunc: func(ctx context.Context, userID int64) (*model.Teacher, error) {
				return teacherProfile, nil
			}},
			nil,
		)

		ident, err := a.Authenticate(ctx, token)
		require.NoError(t, err)
		require.NotNil(t, ident)
		assert.Equal(t, int64(7), ident.UserID)
		assert.Equal(t, "Meredith", ident.Name)
		assert.Equal(t, model.RoleTeacher, ident.Role)
		require.NotNil(t, ident.Teacher)
		assert.Equal(t, int64(3), ident.Teacher.ID)
		assert.Nil(t, ident.Student)
	})

	t.Run("valid token resolves student identity with profile", func(t *testing.T) {
		studentUser := &model.User{ID: 12, Username: "akumar", Email: "akumar@school.test", Role: model.RoleStudent}
		issuer := NewIssuer(testSecret, time.Hour)
		token, err := issuer.Issue(studentUser)
		require.NoError(t, err)

		a := newTestAuthenticator(
			&stubUserRepo{findByIDFunc: func(ctx context.Context, id int64) (*model.User, error) {
				return studentUser, nil
			}},
			nil,
			&stubStudentRepo{findByUserIDFunc: func(ctx context.Context, userID int64) (*model.Student, error) {
				return &model.Student{ID: 9, UserID: 12}, nil
			}},
		)

		ident, err := a.Authenticate(ctx, token)
		require.NoError(t, err)
		require.NotNil(t, ident)
		assert.Equal(t, "akumar@school.test", ident.Name)
		require.NotNil(t, ident.Student)
		assert.Equal(t, int64(9), ident.Student.ID)
		assert.Nil(t, ident.Teacher)
	})

	t.Run("admin identity carries no profile", func(t *testing.T) {
		adminUser := &model.User{ID: 1, Username: "admin", Role: model.RoleAdmin}
		issuer := NewIssuer(testSecret, time.Hour)
		token, err := issuer.Issue(adminUser)
		require.NoError(t, err)

		a := newTestAuthenticator(
			&stubUserRepo{findByIDFunc: func(ctx context.Context, id int64) (*model.User, error) {
				return adminUser, nil
			}},
			nil, nil,
		)

		ident, err := a.Authenticate(ctx, token)
		require.NoError(t, err)
		require.NotNil(t, ident)
		assert.Equal(t, model.RoleAdmin, ident.Role)
		assert.Nil(t, ident.Teacher)
		assert.Nil(t, ident.Student)
	})

	t.Run("empty credential is unauthenticated", func(t *testing.T) {
		a := newTestAuthenticator(nil, nil, nil)
		ident, err := a.Authenticate(ctx, "")
		assert.NoError(t, err)
		assert.Nil(t, ident)
	})

	t.Run("garbage credential is unauthenticated", func(t *testing.T) {
		a := newTestAuthenticator(nil, nil, nil)
		ident, err := a.Authenticate(ctx, "not-a-jwt")
		assert.NoError(t, err)
		assert.Nil(t, ident)
	})

	t.Run("expired token is unauthenticated", func(t *testing.T) {
		issuer := NewIssuer(testSecret, -time.Minute)
		token, err := issuer.Issue(teacherUser)
		require.NoError(t, err)

		a := newTestAuthenticator(nil, nil, nil)
		ident, err := a.Authenticate(ctx, token)
		assert.NoError(t, err)
		assert.Nil(t, ident)
	})

	t.Run("token signed with different secret is unauthenticated", func(t *testing.T) {
		issuer := NewIssuer("some-other-secret", time.Hour)
		token, err := issuer.Issue(teacherUser)
		require.NoError(t, err)

		a := newTestAuthenticator(nil, nil, nil)
		ident, err := a.Authenticate(ctx, token)
		assert.NoError(t, err)
		assert.Nil(t, ident)
	})

	t.Run("token for removed user is unauthenticated", func(t *testing.T) {
		issuer := NewIssuer(testSecret, time.Hour)
		token, err := issuer.Issue(teacherUser)
		require.NoError(t, err)

		a := newTestAuthenticator(
			&stubUserRepo{findByIDFunc: func(ctx context.Context, id int64) (*model.User, error) {
				return nil, nil
			}},
			nil, nil,
		)

		ident, err := a.Authenticate(ctx, token)
		assert.NoError(t, err)
		assert.Nil(t, ident)
	})

	t.Run("storage failure surfaces as error", func(t *testing.T) {
		issuer := NewIssuer(testSecret, time.Hour)
		token, err := issuer.Issue(teacherUser)
		require.NoError(t, err)

		a := newTestAuthenticator(
			&stubUserRepo{findByIDFunc: func(ctx context.Context, id int64) (*model.User, error) {
				return nil, errors.New("connection refused")
			}},
			nil, nil,
		)

		ident, err := a.Authenticate(ctx, token)
		assert.Error(t, err)
		assert.Nil(t, ident)
	})
}
