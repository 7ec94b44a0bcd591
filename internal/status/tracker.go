package status

import (
	"context"

	"go.uber.org/zap"

	"github.com/pburman754/Project-ChatApp/internal/domain"
	"github.com/pburman754/Project-ChatApp/internal/repository"
	"github.com/pburman754/Project-ChatApp/internal/router"
)

// Tracker drives the sent -> delivered -> read state machine. Transitions
// never move backward; a stale or duplicate transition is a successful
// no-op because the caller cannot tell a late duplicate ack from a genuine
// regression. Serialization per message id comes from the store's
// compare-and-swap, so it holds across processes too.
type Tracker struct {
	store repository.MessageStore
	rt    *router.Router
	log   *zap.SugaredLogger
}

func NewTracker(store repository.MessageStore, rt *router.Router, log *zap.SugaredLogger) *Tracker {
	return &Tracker{store: store, rt: rt, log: log}
}

// MarkDelivered moves a message from sent to delivered on behalf of the
// recipient. Already delivered or read is a no-op success.
func (t *Tracker) MarkDelivered(ctx context.Context, messageID, recipientID string) (*domain.Message, error) {
	return t.apply(ctx, messageID, domain.StatusDelivered, recipientID)
}

// MarkRead moves a message from sent or delivered to read on behalf of the
// reader. Already read is a no-op success.
func (t *Tracker) MarkRead(ctx context.Context, messageID, readerID string) (*domain.Message, error) {
	return t.apply(ctx, messageID, domain.StatusRead, readerID)
}

func (t *Tracker) apply(ctx context.Context, messageID string, next domain.Status, actorID string) (*domain.Message, error) {
	m, advanced, err := t.store.AdvanceStatus(ctx, messageID, next)
	if err != nil {
		return nil, err
	}
	if !advanced {
		return m, nil
	}
	t.rt.Publish(
		domain.Event{Kind: domain.EvMessageStatusUpdate, Payload: m},
		domain.ByUserID(m.Owner),
		domain.ByUserID(actorID),
	)
	t.log.Debugw("message status advanced", "message_id", messageID, "status", next)
	return m, nil
}
