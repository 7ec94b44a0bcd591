package domain

// EventKind names an event on the realtime channel. Inbound kinds are what
// clients send; outbound kinds are what the router publishes.
type EventKind string

const (
	// inbound
	EvJoin               EventKind = "join"
	EvJoinUsername       EventKind = "joinUsername"
	EvNewMessage         EventKind = "newMessage"
	EvTyping             EventKind = "typing"
	EvStopTyping         EventKind = "stop typing"
	EvUpdateMessage      EventKind = "updateMessage"
	EvMessageDelivered   EventKind = "messageDelivered"
	EvMessageRead        EventKind = "messageRead"
	EvDeleteMessage      EventKind = "deleteMessage"
	EvDeleteConversation EventKind = "deleteConversation"

	// outbound
	EvMessageReceived     EventKind = "messageReceived"
	EvMessageStatusUpdate EventKind = "messageStatusUpdate"
	EvMessageUpdated      EventKind = "messageUpdated"
	EvChatMessageUpdated  EventKind = "chatMessageUpdated"
	EvConversationUpdate  EventKind = "conversationUpdate"
	EvMessageDeleted      EventKind = "messageDeleted"
	EvChatMessageDeleted  EventKind = "chatMessageDeleted"
	EvConversationDeleted EventKind = "conversationDeleted"
	EvError               EventKind = "error"
)

// Event is the envelope written to connections.
type Event struct {
	Kind    EventKind `json:"type"`
	Payload any       `json:"payload"`
}

// Payloads of inbound events, field names matching the wire protocol.

type NewMessagePayload struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Msg   string `json:"msg"`
	Owner string `json:"owner"`
}

type TypingPayload struct {
	From string `json:"from"`
	To   string `json:"to,omitempty"`
}

type UpdateMessagePayload struct {
	MessageID string `json:"messageId"`
	NewMsg    string `json:"newMsg"`
	Owner     string `json:"owner"`
}

type StatusPayload struct {
	MessageID   string `json:"messageId"`
	RecipientID string `json:"recipientId,omitempty"`
	ReaderID    string `json:"readerId,omitempty"`
}

type DeleteMessagePayload struct {
	MessageID string `json:"messageId"`
	Owner     string `json:"owner"`
}

type DeleteConversationPayload struct {
	Participants string `json:"participants"`
}

// Payloads of outbound notifications that do not carry a full Message.

type MessageDeletedPayload struct {
	MessageID string `json:"messageId"`
}

type ConversationDeletedPayload struct {
	Participants string `json:"participants,omitempty"`
	MessageID    string `json:"messageId,omitempty"`
}
