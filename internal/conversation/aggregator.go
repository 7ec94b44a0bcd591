package conversation

import (
	"context"
	"sort"

	"github.com/pburman754/Project-ChatApp/internal/domain"
	"github.com/pburman754/Project-ChatApp/internal/repository"
)

// Summary is one row of the conversation list: the peer and the latest
// message exchanged with them, in either direction. Derived on every read,
// never stored.
type Summary struct {
	Peer   string          `json:"peer"`
	Latest *domain.Message `json:"latest_message"`
}

type Aggregator struct {
	store repository.MessageStore
}

func NewAggregator(store repository.MessageStore) *Aggregator {
	return &Aggregator{store: store}
}

// Summarize collapses the user's full message history into exactly one
// entry per distinct peer, each holding the message with the maximum
// created_at for that pair. Equal timestamps resolve to the later record
// in store order. Results are ordered newest first. Single O(n) pass.
func (a *Aggregator) Summarize(ctx context.Context, user domain.Identity) ([]Summary, error) {
	msgs, err := a.store.FindByParticipant(ctx, user.Username)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]*domain.Message, len(msgs))
	for _, m := range msgs {
		peer := m.From
		if m.From == user.Username {
			peer = m.To
		}
		cur, ok := latest[peer]
		if !ok || !m.CreatedAt.Before(cur.CreatedAt) {
			latest[peer] = m
		}
	}

	out := make([]Summary, 0, len(latest))
	for peer, m := range latest {
		out = append(out, Summary{Peer: peer, Latest: m})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Latest.CreatedAt.After(out[j].Latest.CreatedAt)
	})
	return out, nil
}
