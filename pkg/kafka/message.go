package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message is the event envelope the scheduling service publishes for the
// downstream approval and notification flows.
type Message struct {
	Key       string            // partition key (booking request id)
	Value     []byte            // JSON-encoded payload
	Headers   map[string]string // event metadata
	Timestamp time.Time
}

// Header keys shared with the consuming services.
const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
	HeaderTimestamp = "timestamp"
)

// Event types emitted by the scheduling core.
const (
	EventBookingApproved    = "scheduling.booking.approved"
	EventExtensionEvaluated = "scheduling.extension.evaluated"
)

type MessageBuilder struct {
	msg Message
}

func NewMessage() *MessageBuilder {
	return &MessageBuilder{
		msg: Message{
			Headers:   make(map[string]string),
			Timestamp: time.Now(),
		},
	}
}

func (mb *MessageBuilder) WithKey(key string) *MessageBuilder {
	mb.msg.Key = key
	return mb
}

// WithValue JSON-encodes the payload. A payload that cannot be marshalled
// leaves the value nil; the producer rejects nil-value messages on publish.
func (mb *MessageBuilder) WithValue(value any) *MessageBuilder {
	data, err := json.Marshal(value)
	if err != nil {
		mb.msg.Value = nil
		return mb
	}
	mb.msg.Value = data
	return mb
}

func (mb *MessageBuilder) WithEventType(eventType string) *MessageBuilder {
	mb.msg.Headers[HeaderEventType] = eventType
	return mb
}

func (mb *MessageBuilder) WithSource(source string) *MessageBuilder {
	mb.msg.Headers[HeaderSource] = source
	return mb
}

func (mb *MessageBuilder) Build() Message {
	if mb.msg.Headers[HeaderEventID] == "" {
		mb.msg.Headers[HeaderEventID] = uuid.NewString()
	}
	if mb.msg.Headers[HeaderTimestamp] == "" {
		mb.msg.Headers[HeaderTimestamp] = mb.msg.Timestamp.Format(time.RFC3339)
	}
	return mb.msg
}

func (m *Message) GetEventType() string {
	return m.Headers[HeaderEventType]
}

func (m *Message) DecodeValue(v any) error {
	return json.Unmarshal(m.Value, v)
}
