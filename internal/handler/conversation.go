package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/schoolhub/chat-server-go/internal/errors"
	"github.com/schoolhub/chat-server-go/internal/middleware"
	"github.com/schoolhub/chat-server-go/internal/service"
)

type ConversationHandler struct {
	conversations *service.ConversationService
	messages      *service.MessageService
	access        *service.AccessService
}

func NewConversationHandler(
	conversations *service.ConversationService,
	messages *service.MessageService,
	access *service.AccessService,
) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		messages:      messages,
		access:        access,
	}
}

func (h *ConversationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{conversationID}/messages", h.Messages)
	return r
}

// List returns the caller's conversations, most recently active first.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	if ident == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	page := ParsePagination(r)
	summaries, err := h.conversations.ListForIdentity(r.Context(), ident, page.Limit, page.Offset)
	if err != nil {
		log.Error().Err(err).Int64("userId", ident.UserID).Msg("list conversations failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": summaries,
		"count":   len(summaries),
	})
}

// Create opens (or returns) the thread between a teacher and a student.
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	if ident == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	var params service.StartConversationParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	conv, err := h.conversations.Start(r.Context(), ident, params)
	if err != nil {
		if _, ok := apperrors.AsAppError(err); !ok {
			log.Error().Err(err).Int64("userId", ident.UserID).Msg("start conversation failed")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, conv)
}

// Messages returns a page of a conversation's history. Non-participants get
// the same 404 a missing conversation would produce.
func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	if ident == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	conversationID, err := strconv.ParseInt(chi.URLParam(r, "conversationID"), 10, 64)
	if err != nil {
		writeError(w, apperrors.InvalidInput("conversationID", "must be an integer"))
		return
	}

	ok, err := h.access.IsParticipant(r.Context(), ident, conversationID)
	if err != nil {
		log.Error().Err(err).Int64("conversationId", conversationID).Msg("membership check failed")
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, apperrors.NotFound("Conversation"))
		return
	}

	page := ParsePagination(r)
	wires, total, err := h.messages.History(r.Context(), conversationID, page.Limit, page.Offset)
	if err != nil {
		log.Error().Err(err).Int64("conversationId", conversationID).Msg("message history failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": wires,
		"count":   total,
	})
}
