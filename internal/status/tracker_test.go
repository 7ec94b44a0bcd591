package status

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pburman754/Project-ChatApp/internal/domain"
	"github.com/pburman754/Project-ChatApp/internal/presence"
	"github.com/pburman754/Project-ChatApp/internal/repository"
	"github.com/pburman754/Project-ChatApp/internal/router"
)

type fakeConn struct {
	id  string
	mu  sync.Mutex
	evs []domain.Event
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(ev domain.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evs = append(c.evs, ev)
	return true
}

func (c *fakeConn) received() []domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Event(nil), c.evs...)
}

func setup(t *testing.T) (*Tracker, *repository.Memory, *presence.Registry) {
	t.Helper()
	store := repository.NewMemory()
	reg := presence.NewRegistry()
	rt := router.New(reg, zap.NewNop().Sugar())
	return NewTracker(store, rt, zap.NewNop().Sugar()), store, reg
}

func seedMessage(t *testing.T, store *repository.Memory) *domain.Message {
	t.Helper()
	m := &domain.Message{
		ID:        "m1",
		From:      "testuser",
		To:        "otheruser",
		Text:      "Hello",
		CreatedAt: time.Now().UTC(),
		Owner:     "u1",
		Status:    domain.StatusSent,
	}
	require.NoError(t, store.Create(context.Background(), m))
	return m
}

func TestMarkDelivered(t *testing.T) {
	tracker, store, reg := setup(t)
	seedMessage(t, store)

	owner := &fakeConn{id: "owner"}
	recipient := &fakeConn{id: "recipient"}
	reg.Join(owner, domain.ByUserID("u1"))
	reg.Join(recipient, domain.ByUserID("u2"))

	m, err := tracker.MarkDelivered(context.Background(), "m1", "u2")
	require.NoError(t, err)
	require.Equal(t, domain.StatusDelivered, m.Status)

	// narrow publish: owner room and acting recipient room, full record
	require.Len(t, owner.received(), 1)
	require.Len(t, recipient.received(), 1)
	require.Equal(t, domain.EvMessageStatusUpdate, owner.received()[0].Kind)
	got := owner.received()[0].Payload.(*domain.Message)
	require.Equal(t, domain.StatusDelivered, got.Status)
}

func TestMarkDeliveredIsIdempotent(t *testing.T) {
	tracker, store, reg := setup(t)
	seedMessage(t, store)

	owner := &fakeConn{id: "owner"}
	reg.Join(owner, domain.ByUserID("u1"))

	_, err := tracker.MarkDelivered(context.Background(), "m1", "u2")
	require.NoError(t, err)
	m, err := tracker.MarkDelivered(context.Background(), "m1", "u2")
	require.NoError(t, err)
	require.Equal(t, domain.StatusDelivered, m.Status)

	// duplicate is a silent no-op: only the first transition published
	require.Len(t, owner.received(), 1)
}

func TestMarkReadFromSent(t *testing.T) {
	tracker, store, _ := setup(t)
	seedMessage(t, store)

	m, err := tracker.MarkRead(context.Background(), "m1", "u2")
	require.NoError(t, err)
	require.Equal(t, domain.StatusRead, m.Status)
}

func TestNoBackwardTransition(t *testing.T) {
	tracker, store, reg := setup(t)
	seedMessage(t, store)

	owner := &fakeConn{id: "owner"}
	reg.Join(owner, domain.ByUserID("u1"))

	_, err := tracker.MarkRead(context.Background(), "m1", "u2")
	require.NoError(t, err)

	// delivered after read never regresses and never errors
	m, err := tracker.MarkDelivered(context.Background(), "m1", "u2")
	require.NoError(t, err)
	require.Equal(t, domain.StatusRead, m.Status)

	stored, err := store.GetByID(context.Background(), "m1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusRead, stored.Status)

	// exactly one status event: the read transition
	require.Len(t, owner.received(), 1)
}

func TestUnknownMessage(t *testing.T) {
	tracker, _, _ := setup(t)
	_, err := tracker.MarkDelivered(context.Background(), "missing", "u2")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConcurrentTransitionsStayMonotonic(t *testing.T) {
	tracker, store, _ := setup(t)
	seedMessage(t, store)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = tracker.MarkDelivered(context.Background(), "m1", "u2")
		}()
		go func() {
			defer wg.Done()
			_, _ = tracker.MarkRead(context.Background(), "m1", "u2")
		}()
	}
	wg.Wait()

	m, err := store.GetByID(context.Background(), "m1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusRead, m.Status)
}
