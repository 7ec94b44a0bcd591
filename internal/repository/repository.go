package repository

import (
	"context"
	"errors"

	"github.com/pburman754/Project-ChatApp/internal/domain"
)

var ErrNotFound = errors.New("not found")

// MessageStore is the durable CRUD contract for message records. The core
// never assumes cross-record transactions; per-record atomicity is enough.
type MessageStore interface {
	Create(ctx context.Context, m *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	UpdateText(ctx context.Context, id, text string) (*domain.Message, error)

	// AdvanceStatus moves a message's status forward to `next` if and only
	// if its current status allows it, as a single compare-and-swap. It
	// returns the record as it stands afterwards and whether the
	// transition actually applied; a stale or backward transition is
	// (current, false, nil), never an error.
	AdvanceStatus(ctx context.Context, id string, next domain.Status) (*domain.Message, bool, error)

	DeleteByID(ctx context.Context, id string) error
	DeleteConversation(ctx context.Context, key domain.ConversationKey) (int64, error)

	// FindByParticipant returns every message sent or received by the
	// username, ascending by created_at.
	FindByParticipant(ctx context.Context, username string) ([]*domain.Message, error)
	FindConversation(ctx context.Context, key domain.ConversationKey) ([]*domain.Message, error)
}

// IdentityStore resolves usernames to user ids. Resolution failure is
// always best-effort for callers: a miss narrows delivery, nothing more.
type IdentityStore interface {
	LookupUserID(ctx context.Context, username string) (string, error)
}
