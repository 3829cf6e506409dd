package channel

import (
	"github.com/Iron-Ham/firefly/internal/errors"
	"github.com/Iron-Ham/firefly/internal/mailbox"
)

// Outbox is a FIFO of encoded payloads in front of a mailbox. It is not
// safe for concurrent use.
type Outbox struct {
	mb    *mailbox.Mailbox
	queue [][]byte
}

// NewOutbox returns an empty outbox that posts to mb.
func NewOutbox(mb *mailbox.Mailbox) *Outbox {
	return &Outbox{mb: mb}
}

// Enqueue appends payload and posts it right away if the slot is free.
// Oversized payloads are rejected here, before they are queued.
func (o *Outbox) Enqueue(payload []byte) error {
	if len(payload) == 0 {
		return errors.NewValidationError("payload must not be empty").WithField("payload")
	}
	if len(payload) > o.mb.MaxPayload() {
		return errors.NewPayloadError(len(payload), o.mb.MaxPayload())
	}
	o.queue = append(o.queue, payload)
	_, err := o.Flush()
	return err
}

// Flush posts the oldest queued payload if the mailbox slot is Empty and
// reports whether anything was sent. A full slot is not an error.
func (o *Outbox) Flush() (bool, error) {
	if len(o.queue) == 0 {
		return false, nil
	}
	err := o.mb.Post(o.queue[0])
	if errors.Is(err, errors.ErrSlotFull) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	o.queue[0] = nil
	o.queue = o.queue[1:]
	return true, nil
}

// Len returns the number of payloads not yet posted.
func (o *Outbox) Len() int {
	return len(o.queue)
}
