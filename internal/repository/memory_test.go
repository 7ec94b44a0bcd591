package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pburman754/Project-ChatApp/internal/domain"
)

func newMsg(id, from, to string, at time.Time) *domain.Message {
	return &domain.Message{
		ID:        id,
		From:      from,
		To:        to,
		Text:      "msg " + id,
		CreatedAt: at,
		Owner:     "owner-" + from,
		Status:    domain.StatusSent,
	}
}

func TestMemoryCreateAndGet(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	m := newMsg("m1", "alice", "bob", time.Now())
	if err := s.Create(ctx, m); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := s.GetByID(ctx, "m1")
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.Text != m.Text {
		t.Errorf("GetByID().Text = %q, want %q", got.Text, m.Text)
	}

	if _, err := s.GetByID(ctx, "missing"); err != ErrNotFound {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryUpdateText(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	_ = s.Create(ctx, newMsg("m1", "alice", "bob", time.Now()))

	got, err := s.UpdateText(ctx, "m1", "edited")
	if err != nil {
		t.Fatalf("UpdateText() error: %v", err)
	}
	if got.Text != "edited" {
		t.Errorf("UpdateText().Text = %q, want edited", got.Text)
	}

	if _, err := s.UpdateText(ctx, "missing", "x"); err != ErrNotFound {
		t.Errorf("UpdateText(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryAdvanceStatus(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	_ = s.Create(ctx, newMsg("m1", "alice", "bob", time.Now()))

	m, advanced, err := s.AdvanceStatus(ctx, "m1", domain.StatusDelivered)
	if err != nil || !advanced {
		t.Fatalf("AdvanceStatus() = (%v, %v, %v), want advanced", m, advanced, err)
	}

	// stale duplicate: no-op, current record returned
	m, advanced, err = s.AdvanceStatus(ctx, "m1", domain.StatusDelivered)
	if err != nil {
		t.Fatalf("AdvanceStatus() duplicate error: %v", err)
	}
	if advanced {
		t.Error("AdvanceStatus() duplicate reported advanced")
	}
	if m.Status != domain.StatusDelivered {
		t.Errorf("status = %s, want delivered", m.Status)
	}

	if _, _, err := s.AdvanceStatus(ctx, "missing", domain.StatusRead); err != ErrNotFound {
		t.Errorf("AdvanceStatus(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryDeleteByID(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	_ = s.Create(ctx, newMsg("m1", "alice", "bob", time.Now()))

	if err := s.DeleteByID(ctx, "m1"); err != nil {
		t.Fatalf("DeleteByID() error: %v", err)
	}
	if err := s.DeleteByID(ctx, "m1"); err != ErrNotFound {
		t.Errorf("DeleteByID() twice error = %v, want ErrNotFound", err)
	}
}

func TestMemoryDeleteConversation(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	now := time.Now()
	_ = s.Create(ctx, newMsg("m1", "alice", "bob", now))
	_ = s.Create(ctx, newMsg("m2", "bob", "alice", now))
	_ = s.Create(ctx, newMsg("m3", "alice", "carol", now))

	n, err := s.DeleteConversation(ctx, domain.NewConversationKey("alice", "bob"))
	if err != nil {
		t.Fatalf("DeleteConversation() error: %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteConversation() removed %d, want 2 (both directions)", n)
	}

	left, _ := s.FindByParticipant(ctx, "alice")
	if len(left) != 1 || left[0].ID != "m3" {
		t.Errorf("remaining messages = %v, want only m3", left)
	}
}

func TestMemoryFindConversationOrdered(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	now := time.Now()
	_ = s.Create(ctx, newMsg("m2", "bob", "alice", now))
	_ = s.Create(ctx, newMsg("m1", "alice", "bob", now.Add(-time.Minute)))

	msgs, err := s.FindConversation(ctx, domain.NewConversationKey("alice", "bob"))
	if err != nil {
		t.Fatalf("FindConversation() error: %v", err)
	}
	if len(msgs) != 2 || msgs[0].ID != "m1" || msgs[1].ID != "m2" {
		t.Errorf("FindConversation() order wrong: %v, %v", msgs[0].ID, msgs[1].ID)
	}
}

func TestMemoryLookupUserID(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	s.AddUser("u1", "alice")

	id, err := s.LookupUserID(ctx, "alice")
	if err != nil || id != "u1" {
		t.Errorf("LookupUserID(alice) = (%q, %v), want (u1, nil)", id, err)
	}
	if _, err := s.LookupUserID(ctx, "ghost"); err != ErrNotFound {
		t.Errorf("LookupUserID(ghost) error = %v, want ErrNotFound", err)
	}
}
