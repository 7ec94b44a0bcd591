package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/pburman754/Project-ChatApp/internal/domain"
	"github.com/pburman754/Project-ChatApp/internal/presence"
	redisstore "github.com/pburman754/Project-ChatApp/internal/redis"
	"github.com/pburman754/Project-ChatApp/internal/repository"
	"github.com/pburman754/Project-ChatApp/internal/router"
	"github.com/pburman754/Project-ChatApp/internal/service"
	"github.com/pburman754/Project-ChatApp/internal/status"
)

const (
	opTimeout   = 5 * time.Second
	presenceTTL = 24 * time.Hour
)

// Envelope is the wire frame for inbound events.
type Envelope struct {
	Type    domain.EventKind `json:"type"`
	Payload json.RawMessage  `json:"payload"`
}

type Config struct {
	PingInterval  time.Duration
	WriteDeadline time.Duration
	MaxMsgSize    int64
}

// Handler owns the read side of every realtime connection: it decodes the
// inbound event catalog and dispatches into the registry, service and
// tracker. Failures surface as an error event to the offending connection
// only; one connection's trouble never stops delivery to others.
type Handler struct {
	reg     *presence.Registry
	rt      *router.Router
	svc     *service.ChatService
	tracker *status.Tracker
	mirror  *redisstore.Store // optional
	cfg     Config
	log     *zap.SugaredLogger
}

func NewHandler(reg *presence.Registry, rt *router.Router, svc *service.ChatService, tracker *status.Tracker, mirror *redisstore.Store, cfg Config, log *zap.SugaredLogger) *Handler {
	return &Handler{reg: reg, rt: rt, svc: svc, tracker: tracker, mirror: mirror, cfg: cfg, log: log}
}

// session is the per-connection dispatch state.
type session struct {
	conn   presence.Conn
	userID string // set once a join event arrives
}

// Handle runs the connection lifecycle; used with websocket.New().
func (h *Handler) Handle(wsConn *websocket.Conn) {
	client := NewClient(wsConn, h.log)
	go client.writePump(h.cfg.PingInterval, h.cfg.WriteDeadline)

	sess := &session{conn: client}
	h.log.Infow("connection opened", "conn", client.ID())

	defer func() {
		h.reg.LeaveAll(client)
		if h.mirror != nil && sess.userID != "" {
			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			_ = h.mirror.RemoveConnection(ctx, sess.userID, client.ID())
			cancel()
		}
		client.Close()
		h.log.Infow("connection closed", "conn", client.ID())
	}()

	wsConn.SetReadLimit(h.cfg.MaxMsgSize)
	for {
		mt, data, err := wsConn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		h.dispatch(ctx, sess, env)
		cancel()
	}
}

func (h *Handler) dispatch(ctx context.Context, sess *session, env Envelope) {
	switch env.Type {
	case domain.EvJoin:
		var userID string
		if json.Unmarshal(env.Payload, &userID) != nil || userID == "" {
			return
		}
		h.reg.Join(sess.conn, domain.ByUserID(userID))
		sess.userID = userID
		if h.mirror != nil {
			_ = h.mirror.AddConnection(ctx, userID, sess.conn.ID(), presenceTTL)
		}

	case domain.EvJoinUsername:
		var username string
		if json.Unmarshal(env.Payload, &username) != nil || username == "" {
			return
		}
		h.reg.Join(sess.conn, domain.ByUsername(username))

	case domain.EvNewMessage:
		var p domain.NewMessagePayload
		if json.Unmarshal(env.Payload, &p) != nil {
			return
		}
		if _, err := h.svc.SendMessage(ctx, p.From, p.To, p.Msg, p.Owner); err != nil {
			h.rt.PublishError(sess.conn, sendErrorText(err))
		}

	case domain.EvTyping, domain.EvStopTyping:
		var p domain.TypingPayload
		if json.Unmarshal(env.Payload, &p) != nil {
			return
		}
		h.svc.RelayTyping(env.Type, p.From, p.To)

	case domain.EvUpdateMessage:
		var p domain.UpdateMessagePayload
		if json.Unmarshal(env.Payload, &p) != nil {
			return
		}
		if _, err := h.svc.UpdateMessage(ctx, p.MessageID, p.NewMsg, p.Owner); err != nil {
			h.rt.PublishError(sess.conn, "Failed to update message")
		}

	case domain.EvMessageDelivered:
		var p domain.StatusPayload
		if json.Unmarshal(env.Payload, &p) != nil {
			return
		}
		if _, err := h.tracker.MarkDelivered(ctx, p.MessageID, p.RecipientID); err != nil {
			h.log.Warnw("mark delivered failed", "message_id", p.MessageID, "err", err)
		}

	case domain.EvMessageRead:
		var p domain.StatusPayload
		if json.Unmarshal(env.Payload, &p) != nil {
			return
		}
		if _, err := h.tracker.MarkRead(ctx, p.MessageID, p.ReaderID); err != nil {
			h.log.Warnw("mark read failed", "message_id", p.MessageID, "err", err)
		}

	case domain.EvDeleteMessage:
		var p domain.DeleteMessagePayload
		if json.Unmarshal(env.Payload, &p) != nil {
			return
		}
		if err := h.svc.DeleteMessage(ctx, p.MessageID, p.Owner); err != nil {
			h.rt.PublishError(sess.conn, "Failed to delete message")
		}

	case domain.EvDeleteConversation:
		var p domain.DeleteConversationPayload
		if json.Unmarshal(env.Payload, &p) != nil {
			return
		}
		if _, err := h.svc.DeleteConversation(ctx, p.Participants); err != nil {
			h.rt.PublishError(sess.conn, "Failed to delete conversation")
		}

	default:
		// ignore unknown kinds
	}
}

func sendErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrSelfMessage):
		return "You cannot send a message to yourself."
	case errors.Is(err, domain.ErrTextTooLong), errors.Is(err, domain.ErrMissingParticipant):
		return err.Error()
	case errors.Is(err, repository.ErrNotFound):
		return "Message not found"
	default:
		return "Failed to send message"
	}
}
