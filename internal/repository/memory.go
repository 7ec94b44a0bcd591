package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/pburman754/Project-ChatApp/internal/domain"
)

// Memory is an in-memory MessageStore and IdentityStore. It preserves
// insertion order among equal timestamps, which is the tie-break order the
// conversation aggregation relies on. Used in tests and when no mongo URI
// is configured.
type Memory struct {
	mu    sync.RWMutex
	msgs  []*domain.Message
	byID  map[string]*domain.Message
	users map[string]string // username -> userID
}

func NewMemory() *Memory {
	return &Memory{
		byID:  make(map[string]*domain.Message),
		users: make(map[string]string),
	}
}

// AddUser seeds an identity mapping.
func (s *Memory) AddUser(userID, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = userID
}

func (s *Memory) Create(_ context.Context, m *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.msgs = append(s.msgs, &cp)
	s.byID[cp.ID] = &cp
	return nil
}

func (s *Memory) GetByID(_ context.Context, id string) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *Memory) UpdateText(_ context.Context, id, text string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	m.Text = text
	cp := *m
	return &cp, nil
}

func (s *Memory) AdvanceStatus(_ context.Context, id string, next domain.Status) (*domain.Message, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, false, ErrNotFound
	}
	if !m.Status.CanAdvanceTo(next) {
		cp := *m
		return &cp, false, nil
	}
	m.Status = next
	cp := *m
	return &cp, true, nil
}

func (s *Memory) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	for i, m := range s.msgs {
		if m.ID == id {
			s.msgs = append(s.msgs[:i], s.msgs[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Memory) DeleteConversation(_ context.Context, key domain.ConversationKey) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []*domain.Message
	var removed int64
	for _, m := range s.msgs {
		if domain.NewConversationKey(m.From, m.To) == key {
			delete(s.byID, m.ID)
			removed++
			continue
		}
		kept = append(kept, m)
	}
	s.msgs = kept
	return removed, nil
}

func (s *Memory) FindByParticipant(_ context.Context, username string) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Message
	for _, m := range s.msgs {
		if m.From == username || m.To == username {
			cp := *m
			out = append(out, &cp)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

func (s *Memory) FindConversation(_ context.Context, key domain.ConversationKey) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Message
	for _, m := range s.msgs {
		if domain.NewConversationKey(m.From, m.To) == key {
			cp := *m
			out = append(out, &cp)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

func (s *Memory) LookupUserID(_ context.Context, username string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.users[username]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

func sortByCreatedAt(msgs []*domain.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}
