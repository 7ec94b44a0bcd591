package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pburman754/Project-ChatApp/internal/conversation"
	"github.com/pburman754/Project-ChatApp/internal/domain"
	"github.com/pburman754/Project-ChatApp/internal/events"
	"github.com/pburman754/Project-ChatApp/internal/repository"
	"github.com/pburman754/Project-ChatApp/internal/router"
)

// ChatService runs the validate -> persist -> publish sequence for every
// message mutation. Both the realtime channel and the synchronous HTTP
// path go through it, so they share one router and one dedup contract.
type ChatService struct {
	store repository.MessageStore
	ids   repository.IdentityStore
	rt    *router.Router
	agg   *conversation.Aggregator
	feed  *events.Feed // optional
	log   *zap.SugaredLogger
}

func NewChatService(store repository.MessageStore, ids repository.IdentityStore, rt *router.Router, feed *events.Feed, log *zap.SugaredLogger) *ChatService {
	return &ChatService{
		store: store,
		ids:   ids,
		rt:    rt,
		agg:   conversation.NewAggregator(store),
		feed:  feed,
		log:   log,
	}
}

// SendMessage validates, persists and distributes a new message. Targets
// are the owner's user-id room and the recipient's username room; when the
// recipient's user id resolves, their user-id room is added too. A lookup
// miss just narrows the target set. If persistence fails nothing is
// published.
func (s *ChatService) SendMessage(ctx context.Context, from, to, text, owner string) (*domain.Message, error) {
	if err := domain.ValidateNew(from, to, text); err != nil {
		return nil, err
	}

	m := &domain.Message{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Text:      text,
		CreatedAt: time.Now().UTC(),
		Owner:     owner,
		Status:    domain.StatusSent,
	}
	if err := s.store.Create(ctx, m); err != nil {
		return nil, err
	}

	targets := []domain.RoomKey{domain.ByUserID(owner), domain.ByUsername(to)}
	if rid, err := s.ids.LookupUserID(ctx, to); err == nil && rid != "" {
		targets = append(targets, domain.ByUserID(rid))
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Warnw("recipient lookup failed, delivering on remaining targets", "to", to, "err", err)
	}

	s.rt.Publish(domain.Event{Kind: domain.EvMessageReceived, Payload: m}, targets...)
	s.emitFeed(ctx, events.MessageCreated, m)
	return m, nil
}

// UpdateMessage persists a text edit, then publishes the authoritative
// narrow update to the owner room and broadcast refresh hints for open
// conversation views.
func (s *ChatService) UpdateMessage(ctx context.Context, messageID, newText, owner string) (*domain.Message, error) {
	if len([]rune(newText)) > domain.MaxTextLen {
		return nil, domain.ErrTextTooLong
	}
	m, err := s.store.UpdateText(ctx, messageID, newText)
	if err != nil {
		return nil, err
	}

	s.rt.Publish(domain.Event{Kind: domain.EvMessageUpdated, Payload: m}, domain.ByUserID(owner))
	s.rt.PublishGlobal(domain.Event{Kind: domain.EvChatMessageUpdated, Payload: m})
	s.rt.PublishGlobal(domain.Event{Kind: domain.EvConversationUpdate, Payload: m})
	s.emitFeed(ctx, events.MessageUpdated, m)
	return m, nil
}

// DeleteMessage removes one message, then notifies the owner narrowly and
// everyone else with refresh hints carrying only the id.
func (s *ChatService) DeleteMessage(ctx context.Context, messageID, owner string) error {
	if err := s.store.DeleteByID(ctx, messageID); err != nil {
		return err
	}

	s.rt.Publish(
		domain.Event{Kind: domain.EvMessageDeleted, Payload: domain.MessageDeletedPayload{MessageID: messageID}},
		domain.ByUserID(owner),
	)
	s.rt.PublishGlobal(domain.Event{Kind: domain.EvChatMessageDeleted, Payload: domain.MessageDeletedPayload{MessageID: messageID}})
	s.rt.PublishGlobal(domain.Event{Kind: domain.EvConversationDeleted, Payload: domain.ConversationDeletedPayload{MessageID: messageID}})

	if s.feed != nil {
		if err := s.feed.PublishDetail(ctx, events.MessageDeleted, messageID, domain.MessageDeletedPayload{MessageID: messageID}); err != nil {
			s.log.Warnw("lifecycle feed publish failed", "kind", events.MessageDeleted, "err", err)
		}
	}
	return nil
}

// DeleteConversation removes every message between the two participants
// ("A-B" form, order-insensitive) and broadcasts the invalidation.
func (s *ChatService) DeleteConversation(ctx context.Context, participants string) (int64, error) {
	key, err := domain.ParseParticipants(participants)
	if err != nil {
		return 0, err
	}
	n, err := s.store.DeleteConversation(ctx, key)
	if err != nil {
		return 0, err
	}

	s.rt.PublishGlobal(domain.Event{
		Kind:    domain.EvConversationDeleted,
		Payload: domain.ConversationDeletedPayload{Participants: participants},
	})

	if s.feed != nil {
		if err := s.feed.PublishDetail(ctx, events.ConversationDeleted, participants, domain.ConversationDeletedPayload{Participants: participants}); err != nil {
			s.log.Warnw("lifecycle feed publish failed", "kind", events.ConversationDeleted, "err", err)
		}
	}
	return n, nil
}

// RelayTyping forwards a typing or stop-typing signal to the recipient's
// username room. Never persisted, never broadcast.
func (s *ChatService) RelayTyping(kind domain.EventKind, from, to string) {
	if kind != domain.EvTyping && kind != domain.EvStopTyping {
		return
	}
	s.rt.Publish(domain.Event{Kind: kind, Payload: domain.TypingPayload{From: from}}, domain.ByUsername(to))
}

// Conversations returns the per-peer latest-message summary for a user.
func (s *ChatService) Conversations(ctx context.Context, user domain.Identity) ([]conversation.Summary, error) {
	return s.agg.Summarize(ctx, user)
}

// Conversation returns the full thread between two participants, oldest
// first.
func (s *ChatService) Conversation(ctx context.Context, participants string) (domain.ConversationKey, []*domain.Message, error) {
	key, err := domain.ParseParticipants(participants)
	if err != nil {
		return domain.ConversationKey{}, nil, err
	}
	msgs, err := s.store.FindConversation(ctx, key)
	if err != nil {
		return domain.ConversationKey{}, nil, err
	}
	return key, msgs, nil
}

func (s *ChatService) emitFeed(ctx context.Context, kind string, m *domain.Message) {
	if s.feed == nil {
		return
	}
	if err := s.feed.PublishMessage(ctx, kind, m); err != nil {
		s.log.Warnw("lifecycle feed publish failed", "kind", kind, "message_id", m.ID, "err", err)
	}
}
