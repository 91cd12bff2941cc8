package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/schoolhub/chat-server-go/internal/audit"
	"github.com/schoolhub/chat-server-go/internal/auth"
	apperrors "github.com/schoolhub/chat-server-go/internal/errors"
	"github.com/schoolhub/chat-server-go/internal/model"
	"github.com/schoolhub/chat-server-go/internal/service"
)

// Authenticator resolves a raw credential to an identity, (nil, nil) when
// the credential does not authenticate.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (*auth.Identity, error)
}

// AccessChecker answers whether an identity may join a conversation.
type AccessChecker interface {
	IsParticipant(ctx context.Context, ident *auth.Identity, conversationID int64) (bool, error)
}

// MessageAppender persists one inbound message.
type MessageAppender interface {
	Append(ctx context.Context, params service.AppendMessageParams) (*model.WireMessage, error)
}

// inboundFrame is what clients send. Anything else on the wire is ignored.
type inboundFrame struct {
	Text     string          `json:"text"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// outboundFrame wraps a message for delivery, matching the frame shape
// clients already parse.
type outboundFrame struct {
	Type    string             `json:"type"`
	Message *model.WireMessage `json:"message"`
}

// Handler upgrades chat connections and runs their read loops.
//
// Persist order defines visible order: each append-and-publish runs under a
// per-conversation lock, so every member observes messages in the order the
// store accepted them.
type Handler struct {
	auth     Authenticator
	access   AccessChecker
	messages MessageAppender
	hub      *Hub

	upgrader websocket.Upgrader

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewHandler(auth Authenticator, access AccessChecker, messages MessageAppender, hub *Hub) *Handler {
	return &Handler{
		auth:     auth,
		access:   access,
		messages: messages,
		hub:      hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		locks: make(map[int64]*sync.Mutex),
	}
}

func (h *Handler) conversationLock(id int64) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()

	l, ok := h.locks[id]
	if !ok {
		l = &sync.Mutex{}
		h.locks[id] = l
	}
	return l
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conversationID, err := strconv.ParseInt(chi.URLParam(r, "conversationID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid conversation id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := NewClient(conn)
	client.Start()

	// Rejections for a bad credential and for a valid credential without
	// membership look identical to the peer.
	ident, err := h.auth.Authenticate(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		log.Error().Err(err).Int64("conversationId", conversationID).Msg("authentication lookup failed")
		client.Close(websocket.ClosePolicyViolation, "")
		return
	}
	if ident == nil {
		audit.LogFromRequest(r, audit.Event{
			Type:    audit.EventChatReject,
			Details: map[string]interface{}{"conversationId": conversationID},
		})
		client.Close(websocket.ClosePolicyViolation, "")
		return
	}

	ok, err := h.access.IsParticipant(r.Context(), ident, conversationID)
	if err != nil {
		log.Error().Err(err).Int64("conversationId", conversationID).Msg("membership check failed")
		client.Close(websocket.ClosePolicyViolation, "")
		return
	}
	if !ok {
		audit.LogFromRequest(r, audit.Event{
			Type:    audit.EventChatReject,
			UserID:  ident.UserID,
			Details: map[string]interface{}{"conversationId": conversationID},
		})
		client.Close(websocket.ClosePolicyViolation, "")
		return
	}

	h.hub.Join(conversationID, client)
	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventChatConnect,
		UserID:  ident.UserID,
		Details: map[string]interface{}{"conversationId": conversationID},
	})
	log.Info().
		Int64("conversationId", conversationID).
		Int64("userId", ident.UserID).
		Str("clientId", client.ID).
		Msg("client joined")

	defer func() {
		h.hub.Leave(conversationID, client)
		client.Close(websocket.CloseNormalClosure, "")
		log.Info().
			Int64("conversationId", conversationID).
			Int64("userId", ident.UserID).
			Str("clientId", client.ID).
			Msg("client left")
	}()

	h.readLoop(r.Context(), client, ident, conversationID)
}

func (h *Handler) readLoop(ctx context.Context, client *Client, ident *auth.Identity, conversationID int64) {
	client.conn.SetReadLimit(maxFrameSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		if strings.TrimSpace(frame.Text) == "" {
			continue
		}

		if err := h.deliver(ctx, ident, conversationID, frame); err != nil {
			if code := apperrors.GetCode(err); code == apperrors.ErrCodeValidation ||
				code == apperrors.ErrCodeInvalidInput || code == apperrors.ErrCodeMissingRequired {
				log.Debug().Err(err).Int64("conversationId", conversationID).Msg("message discarded")
				continue
			}
			log.Error().Err(err).
				Int64("conversationId", conversationID).
				Int64("userId", ident.UserID).
				Msg("message persistence failed")
			client.Close(websocket.CloseInternalServerErr, "")
			return
		}
	}
}

func (h *Handler) deliver(ctx context.Context, ident *auth.Identity, conversationID int64, frame inboundFrame) error {
	lock := h.conversationLock(conversationID)
	lock.Lock()
	defer lock.Unlock()

	senderID := ident.UserID
	var senderName *string
	if ident.Name != "" {
		senderName = &ident.Name
	}
	wire, err := h.messages.Append(ctx, service.AppendMessageParams{
		ConversationID: conversationID,
		SenderID:       &senderID,
		SenderName:     senderName,
		Text:           frame.Text,
		Metadata:       frame.Metadata,
	})
	if err != nil {
		return err
	}

	payload, err := json.Marshal(outboundFrame{Type: "chat.message", Message: wire})
	if err != nil {
		return err
	}

	h.hub.Publish(conversationID, payload)
	return nil
}
