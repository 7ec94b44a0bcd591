package domain

import (
	"errors"
	"strings"
)

// RoomKind tags which identity namespace a room key lives in, so routing
// code cannot confuse a user id with a username.
type RoomKind uint8

const (
	RoomByUserID RoomKind = iota + 1
	RoomByUsername
)

// RoomKey names a subscription group. Connections joined to a room receive
// events published to it.
type RoomKey struct {
	Kind  RoomKind
	Value string
}

func ByUserID(id string) RoomKey { return RoomKey{Kind: RoomByUserID, Value: id} }

func ByUsername(name string) RoomKey { return RoomKey{Kind: RoomByUsername, Value: name} }

func (k RoomKey) String() string {
	switch k.Kind {
	case RoomByUserID:
		return "user:" + k.Value
	case RoomByUsername:
		return "name:" + k.Value
	default:
		return k.Value
	}
}

// ConversationKey is the normalized unordered pair of usernames, so
// (A,B) and (B,A) collapse to the same conversation.
type ConversationKey struct {
	A, B string
}

func NewConversationKey(p, q string) ConversationKey {
	if p > q {
		p, q = q, p
	}
	return ConversationKey{A: p, B: q}
}

// Peer returns the other participant relative to username.
func (k ConversationKey) Peer(username string) string {
	if k.A == username {
		return k.B
	}
	return k.A
}

var ErrBadParticipants = errors.New("participants must be of the form \"A-B\"")

// ParseParticipants splits the "A-B" route form used by conversation
// endpoints and events.
func ParseParticipants(s string) (ConversationKey, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ConversationKey{}, ErrBadParticipants
	}
	return NewConversationKey(parts[0], parts[1]), nil
}
