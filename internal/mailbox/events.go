package mailbox

import "github.com/Iron-Ham/firefly/internal/event"

func (m *Mailbox) publishOverwritten(lost int) {
	if m.bus != nil {
		m.bus.Publish(event.NewMessageOverwrittenEvent(m.name, lost))
	}
}

func (m *Mailbox) publishRejected(size int) {
	if m.bus != nil {
		m.bus.Publish(event.NewMessageRejectedEvent(m.name, size, m.MaxPayload()))
	}
}
