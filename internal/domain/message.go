package domain

import (
	"errors"
	"time"
)

// MaxTextLen bounds the message body, matching the persisted schema.
const MaxTextLen = 50

var (
	ErrSelfMessage        = errors.New("you cannot send a message to yourself")
	ErrTextTooLong        = errors.New("message text exceeds 50 characters")
	ErrMissingParticipant = errors.New("both sender and recipient are required")
)

// Status is the delivery state of a message. It only ever moves forward
// along sent -> delivered -> read.
type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

var statusRank = map[Status]int{
	StatusSent:      0,
	StatusDelivered: 1,
	StatusRead:      2,
}

// CanAdvanceTo reports whether moving from s to next is a strictly forward
// transition.
func (s Status) CanAdvanceTo(next Status) bool {
	sr, ok := statusRank[s]
	nr, ok2 := statusRank[next]
	return ok && ok2 && nr > sr
}

// AllowedFrom returns the set of states a message may be in for a
// transition to `next` to apply. Used by stores as a compare-and-swap
// filter so concurrent transitions on one id cannot regress.
func AllowedFrom(next Status) []Status {
	switch next {
	case StatusDelivered:
		return []Status{StatusSent}
	case StatusRead:
		return []Status{StatusSent, StatusDelivered}
	default:
		return nil
	}
}

type Message struct {
	ID        string    `bson:"_id" json:"id"`
	From      string    `bson:"from" json:"from"`
	To        string    `bson:"to" json:"to"`
	Text      string    `bson:"msg" json:"msg"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	Owner     string    `bson:"owner" json:"owner"`
	Status    Status    `bson:"status" json:"status"`
}

// Identity is the pair of keys a user is addressable by.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// ValidateNew checks a message before it is ever persisted. A failure here
// means nothing was written.
func ValidateNew(from, to, text string) error {
	if from == "" || to == "" {
		return ErrMissingParticipant
	}
	if from == to {
		return ErrSelfMessage
	}
	if len([]rune(text)) > MaxTextLen {
		return ErrTextTooLong
	}
	return nil
}
