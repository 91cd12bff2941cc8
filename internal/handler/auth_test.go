package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/chat-server-go/internal/auth"
	"github.com/schoolhub/chat-server-go/internal/model"
	"github.com/schoolhub/chat-server-go/internal/util"
)

func TestAuthHandler_Token(t *testing.T) {
	hash, err := util.HashPassword("correct-horse")
	require.NoError(t, err)

	knownUser := &model.User{
		ID:           10,
		Username:     "priya",
		Email:        "priya@school.test",
		FirstName:    "Priya",
		PasswordHash: hash,
		Role:         model.RoleTeacher,
	}

	issuer := auth.NewIssuer("test-secret-key", time.Hour)

	post := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/token", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	t.Run("valid credentials return an access token", func(t *testing.T) {
		h := NewAuthHandler(&mockUserRepo{
			findByUsernameFunc: func(ctx context.Context, username string) (*model.User, error) {
				assert.Equal(t, "priya", username)
				return knownUser, nil
			},
		}, issuer)

		rec := httptest.NewRecorder()
		h.Token(rec, post(`{"username":"priya","password":"correct-horse"}`))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp["access"])
	})

	t.Run("wrong password returns 401", func(t *testing.T) {
		h := NewAuthHandler(&mockUserRepo{
			findByUsernameFunc: func(ctx context.Context, username string) (*model.User, error) {
				return knownUser, nil
			},
		}, issuer)

		rec := httptest.NewRecorder()
		h.Token(rec, post(`{"username":"priya","password":"wrong"}`))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid credentials")
	})

	t.Run("unknown user gets the same 401", func(t *testing.T) {
		h := NewAuthHandler(&mockUserRepo{}, issuer)

		rec := httptest.NewRecorder()
		h.Token(rec, post(`{"username":"nobody","password":"whatever"}`))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid credentials")
	})

	t.Run("missing fields return 400", func(t *testing.T) {
		h := NewAuthHandler(&mockUserRepo{}, issuer)

		for _, body := range []string{`{}`, `{"username":"priya"}`, `{"password":"x"}`, `not json`} {
			rec := httptest.NewRecorder()
			h.Token(rec, post(body))
			assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		}
	})

	t.Run("lookup failure returns 500", func(t *testing.T) {
		h := NewAuthHandler(&mockUserRepo{
			findByUsernameFunc: func(ctx context.Context, username string) (*model.User, error) {
				return nil, errors.New("db down")
			},
		}, issuer)

		rec := httptest.NewRecorder()
		h.Token(rec, post(`{"username":"priya","password":"correct-horse"}`))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
