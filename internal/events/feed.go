package events

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/pburman754/Project-ChatApp/internal/domain"
)

// Kinds published to the lifecycle feed.
const (
	MessageCreated      = "message.created"
	MessageUpdated      = "message.updated"
	MessageDeleted      = "message.deleted"
	MessageStatus       = "message.status"
	ConversationDeleted = "conversation.deleted"
)

// Feed publishes message lifecycle events to a kafka topic for downstream
// consumers (notification fan-out, analytics). Delivery here is
// best-effort: callers log failures and move on.
type Feed struct {
	writer *kafkago.Writer
}

func NewFeed(brokers []string, topic string) *Feed {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
		Async:        false,
	}
	return &Feed{writer: w}
}

type record struct {
	Kind    string          `json:"kind"`
	Message *domain.Message `json:"message,omitempty"`
	Detail  any             `json:"detail,omitempty"`
	At      time.Time       `json:"at"`
}

// PublishMessage emits a lifecycle event keyed by the message id so all
// events for one message land in one partition, in order.
func (f *Feed) PublishMessage(ctx context.Context, kind string, m *domain.Message) error {
	b, err := json.Marshal(record{Kind: kind, Message: m, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	return f.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(m.ID),
		Value: b,
		Time:  time.Now(),
	})
}

// PublishDetail emits an event with an arbitrary payload, keyed by `key`.
func (f *Feed) PublishDetail(ctx context.Context, kind, key string, detail any) error {
	b, err := json.Marshal(record{Kind: kind, Detail: detail, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	return f.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: b,
		Time:  time.Now(),
	})
}

func (f *Feed) Close() error {
	return f.writer.Close()
}
