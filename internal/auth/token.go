package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/schoolhub/chat-server-go/internal/model"
	"github.com/schoolhub/chat-server-go/internal/repository"
)

// Claims carried by an access token. The claim names match what clients
// already decode (user_id, role), so they stay snake_case.
type Claims struct {
	UserID int64      `json:"user_id"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs access tokens for authenticated users.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

func (i *Issuer) Issue(user *model.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Identity is the resolved result of a successful authentication. The role
// variant is fixed here, once: exactly one of Teacher/Student is non-nil for
// those roles, both are nil for admins.
type Identity struct {
	UserID  int64
	Name    string
	Role    model.Role
	Teacher *model.Teacher
	Student *model.Student
}

// Authenticator resolves bearer credentials to identities.
type Authenticator struct {
	secret   []byte
	users    repository.UserRepository
	teachers repository.TeacherRepository
	students repository.StudentRepository
}

func NewAuthenticator(
	secret string,
	users repository.UserRepository,
	teachers repository.TeacherRepository,
	students repository.StudentRepository,
) *Authenticator {
	return &Authenticator{
		secret:   []byte(secret),
		users:    users,
		teachers: teachers,
		students: students,
	}
}

// Authenticate validates a bearer token and loads the identity behind it.
// Any malformed, expired or otherwise unresolvable credential yields
// (nil, nil): unauthenticated is a normal outcome, not an error. A non-nil
// error means the lookup itself failed.
func (a *Authenticator) Authenticate(ctx context.Context, credential string) (*Identity, error) {
	if credential == "" {
		return nil, nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		log.Debug().Err(err).Msg("rejected access token")
		return nil, nil
	}

	user, err := a.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", claims.UserID, err)
	}
	if user == nil {
		return nil, nil
	}

	ident := &Identity{
		UserID: user.ID,
		Name:   user.DisplayName(),
		Role:   user.Role,
	}

	switch user.Role {
	case model.RoleTeacher:
		teacher, err := a.teachers.FindByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("find teacher profile for user %d: %w", user.ID, err)
		}
		ident.Teacher = teacher
	case model.RoleStudent:
		student, err := a.students.FindByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("find student profile for user %d: %w", user.ID, err)
		}
		ident.Student = student
	}

	return ident, nil
}
