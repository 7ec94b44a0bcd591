package router

import (
	"go.uber.org/zap"

	"github.com/pburman754/Project-ChatApp/internal/domain"
	"github.com/pburman754/Project-ChatApp/internal/presence"
)

// Router fans events out to connections resolved through the presence
// registry. It is constructed once at startup and injected into every
// handler that publishes; there is no ambient global.
//
// The contract is at-most-once per connection per event: a connection that
// is a member of several target rooms (joined both by user id and by
// username, say) still receives a single copy.
type Router struct {
	reg *presence.Registry
	log *zap.SugaredLogger
}

func New(reg *presence.Registry, log *zap.SugaredLogger) *Router {
	return &Router{reg: reg, log: log}
}

// Publish emits the event once to every distinct connection reachable from
// the target rooms and returns how many connections received it. Unknown
// rooms contribute nothing. The router never touches the store; callers
// persist first.
func (r *Router) Publish(ev domain.Event, targets ...domain.RoomKey) int {
	seen := make(map[presence.Conn]struct{})
	for _, key := range targets {
		for _, c := range r.reg.MembersOf(key) {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			r.send(c, ev)
		}
	}
	return len(seen)
}

// PublishGlobal emits the event once to every registered connection. This
// is the deliberate broadcast surface used for refresh hints; narrow
// delivery goes through Publish.
func (r *Router) PublishGlobal(ev domain.Event) int {
	conns := r.reg.Connections()
	for _, c := range conns {
		r.send(c, ev)
	}
	return len(conns)
}

// PublishError surfaces an error to the single connection that caused it.
func (r *Router) PublishError(c presence.Conn, msg string) {
	r.send(c, domain.Event{Kind: domain.EvError, Payload: msg})
}

func (r *Router) send(c presence.Conn, ev domain.Event) {
	if !c.Send(ev) {
		r.log.Warnw("dropped event for slow connection", "event", ev.Kind, "conn", c.ID())
	}
}
