package mailbox

import (
	"github.com/Iron-Ham/firefly/internal/doorbell"
	"github.com/Iron-Ham/firefly/internal/event"
)

// Option configures a Mailbox.
type Option func(*Mailbox)

// WithBus attaches an event bus to the Mailbox. When set, overwritten and
// rejected messages are published so silent loss becomes observable.
func WithBus(bus *event.Bus) Option {
	return func(m *Mailbox) {
		m.bus = bus
	}
}

// WithRinger rings r after every successful write so a consumer blocked
// on the matching doorbell wakes immediately.
func WithRinger(r doorbell.Ringer) Option {
	return func(m *Mailbox) {
		if r != nil {
			m.ringer = r
		}
	}
}
