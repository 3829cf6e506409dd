package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a "category.action" identifier.
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeMessageOverwritten = "mailbox.overwritten"
	TypeMessageRejected    = "mailbox.rejected"
	TypeDecodeFailed       = "message.decode_failed"
	TypeOperationApplied   = "operation.applied"
	TypeLineRendered       = "line.rendered"
)

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Transport Events
// -----------------------------------------------------------------------------

// MessageOverwrittenEvent is published when Write replaces a message the
// consumer had not cleared yet. The replaced message is lost.
type MessageOverwrittenEvent struct {
	baseEvent
	Mailbox   string // region name
	LostBytes int    // length of the replaced payload
}

// NewMessageOverwrittenEvent creates a MessageOverwrittenEvent.
func NewMessageOverwrittenEvent(mailbox string, lostBytes int) MessageOverwrittenEvent {
	return MessageOverwrittenEvent{
		baseEvent: newBaseEvent(TypeMessageOverwritten),
		Mailbox:   mailbox,
		LostBytes: lostBytes,
	}
}

// MessageRejectedEvent is published when a payload does not fit the mailbox.
type MessageRejectedEvent struct {
	baseEvent
	Mailbox string
	Size    int
	Max     int
}

// NewMessageRejectedEvent creates a MessageRejectedEvent.
func NewMessageRejectedEvent(mailbox string, size, max int) MessageRejectedEvent {
	return MessageRejectedEvent{
		baseEvent: newBaseEvent(TypeMessageRejected),
		Mailbox:   mailbox,
		Size:      size,
		Max:       max,
	}
}

// -----------------------------------------------------------------------------
// Engine and Front End Events
// -----------------------------------------------------------------------------

// DecodeFailedEvent is published when inbound bytes are not a valid message.
// The slot has been cleared and nothing was applied.
type DecodeFailedEvent struct {
	baseEvent
	Mailbox string
	Size    int
	Err     error
}

// NewDecodeFailedEvent creates a DecodeFailedEvent.
func NewDecodeFailedEvent(mailbox string, size int, err error) DecodeFailedEvent {
	return DecodeFailedEvent{
		baseEvent: newBaseEvent(TypeDecodeFailed),
		Mailbox:   mailbox,
		Size:      size,
		Err:       err,
	}
}

// OperationAppliedEvent is published after the engine applies an operation.
type OperationAppliedEvent struct {
	baseEvent
	Operation string // operation kind, e.g. "insert_char"
	Cursor    int    // cursor after the operation
}

// NewOperationAppliedEvent creates an OperationAppliedEvent.
func NewOperationAppliedEvent(operation string, cursor int) OperationAppliedEvent {
	return OperationAppliedEvent{
		baseEvent: newBaseEvent(TypeOperationApplied),
		Operation: operation,
		Cursor:    cursor,
	}
}

// LineRenderedEvent is published when a RenderLine command is emitted by
// the engine or applied by the front end.
type LineRenderedEvent struct {
	baseEvent
	Line int
	Text string
}

// NewLineRenderedEvent creates a LineRenderedEvent.
func NewLineRenderedEvent(line int, text string) LineRenderedEvent {
	return LineRenderedEvent{
		baseEvent: newBaseEvent(TypeLineRendered),
		Line:      line,
		Text:      text,
	}
}
