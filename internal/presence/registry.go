package presence

import (
	"sync"

	"github.com/pburman754/Project-ChatApp/internal/domain"
)

// Conn is an active connection the registry can hand out for delivery.
// Send must never block; it reports whether the event was enqueued.
type Conn interface {
	ID() string
	Send(ev domain.Event) bool
}

// Registry is the in-memory bidirectional index between connections and
// room keys. It is the only concurrently mutated shared structure in the
// process and is guarded by a single lock per instance. Membership is
// ephemeral: nothing here survives a restart.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomKey]map[Conn]struct{}
	conns map[Conn]map[domain.RoomKey]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[domain.RoomKey]map[Conn]struct{}),
		conns: make(map[Conn]map[domain.RoomKey]struct{}),
	}
}

// Join adds the connection to a room. Joining twice is the same as joining
// once.
func (r *Registry) Join(c Conn, key domain.RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[key]; !ok {
		r.rooms[key] = make(map[Conn]struct{})
	}
	r.rooms[key][c] = struct{}{}
	if _, ok := r.conns[c]; !ok {
		r.conns[c] = make(map[domain.RoomKey]struct{})
	}
	r.conns[c][key] = struct{}{}
}

func (r *Registry) Leave(c Conn, key domain.RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(c, key)
}

// LeaveAll removes the connection from every room it joined. Called
// exactly once per connection on disconnect.
func (r *Registry) LeaveAll(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.conns[c] {
		r.leaveLocked(c, key)
	}
	delete(r.conns, c)
}

func (r *Registry) leaveLocked(c Conn, key domain.RoomKey) {
	if set, ok := r.rooms[key]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.rooms, key)
		}
	}
	if set, ok := r.conns[c]; ok {
		delete(set, key)
	}
}

// MembersOf returns the connections joined to a room. An unknown room is
// an empty result, not an error.
func (r *Registry) MembersOf(key domain.RoomKey) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.rooms[key]
	out := make([]Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// Connections returns every distinct registered connection.
func (r *Registry) Connections() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Conn, 0, len(r.conns))
	for c := range r.conns {
		out = append(out, c)
	}
	return out
}

// Rooms returns the rooms a connection is currently joined to.
func (r *Registry) Rooms(c Conn) []domain.RoomKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RoomKey, 0, len(r.conns[c]))
	for key := range r.conns[c] {
		out = append(out, key)
	}
	return out
}
