package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pburman754/Project-ChatApp/internal/domain"
	"github.com/pburman754/Project-ChatApp/internal/repository"
)

func seed(t *testing.T, store *repository.Memory, id, from, to, text string, at time.Time) {
	t.Helper()
	err := store.Create(context.Background(), &domain.Message{
		ID:        id,
		From:      from,
		To:        to,
		Text:      text,
		CreatedAt: at,
		Owner:     "owner-" + from,
		Status:    domain.StatusSent,
	})
	require.NoError(t, err)
}

func TestSummarizeOneRowPerPeer(t *testing.T) {
	store := repository.NewMemory()
	agg := NewAggregator(store)
	now := time.Now().UTC()

	// two-way exchange with otheruser plus one message to anotheruser
	seed(t, store, "m1", "testuser", "otheruser", "Hello", now.Add(-10*time.Second))
	seed(t, store, "m2", "otheruser", "testuser", "Hi there", now.Add(-5*time.Second))
	seed(t, store, "m3", "testuser", "anotheruser", "Hey", now)

	got, err := agg.Summarize(context.Background(), domain.Identity{UserID: "u1", Username: "testuser"})
	require.NoError(t, err)

	require.Len(t, got, 2, "one entry per distinct peer")
	require.Equal(t, "anotheruser", got[0].Peer)
	require.Equal(t, "Hey", got[0].Latest.Text)
	require.Equal(t, "otheruser", got[1].Peer)
	require.Equal(t, "Hi there", got[1].Latest.Text)

	for _, s := range got {
		require.NotEqual(t, "Hello", s.Latest.Text, "older message must not surface")
	}
}

func TestSummarizeBothDirectionsCollapse(t *testing.T) {
	store := repository.NewMemory()
	agg := NewAggregator(store)
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		from, to := "testuser", "otheruser"
		if i%2 == 1 {
			from, to = to, from
		}
		seed(t, store, string(rune('a'+i)), from, to, "msg", now.Add(time.Duration(i)*time.Second))
	}

	got, err := agg.Summarize(context.Background(), domain.Identity{Username: "testuser"})
	require.NoError(t, err)
	require.Len(t, got, 1, "a two-way exchange is a single conversation")
	require.Equal(t, "otheruser", got[0].Peer)
}

func TestSummarizeTieBreakLaterInserted(t *testing.T) {
	store := repository.NewMemory()
	agg := NewAggregator(store)
	at := time.Now().UTC()

	// equal timestamps: the later-inserted record wins
	seed(t, store, "first", "testuser", "otheruser", "earlier insert", at)
	seed(t, store, "second", "otheruser", "testuser", "later insert", at)

	got, err := agg.Summarize(context.Background(), domain.Identity{Username: "testuser"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "second", got[0].Latest.ID)
}

func TestSummarizeOrderedNewestFirst(t *testing.T) {
	store := repository.NewMemory()
	agg := NewAggregator(store)
	now := time.Now().UTC()

	seed(t, store, "m1", "testuser", "p1", "a", now.Add(-3*time.Hour))
	seed(t, store, "m2", "p2", "testuser", "b", now.Add(-2*time.Hour))
	seed(t, store, "m3", "testuser", "p3", "c", now.Add(-1*time.Hour))

	got, err := agg.Summarize(context.Background(), domain.Identity{Username: "testuser"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, []string{"p3", "p2", "p1"}, []string{got[0].Peer, got[1].Peer, got[2].Peer})
}

func TestSummarizeEmptyHistory(t *testing.T) {
	store := repository.NewMemory()
	agg := NewAggregator(store)

	got, err := agg.Summarize(context.Background(), domain.Identity{Username: "loner"})
	require.NoError(t, err)
	require.Empty(t, got)
}
