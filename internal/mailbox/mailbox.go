package mailbox

import (
	"fmt"
	"sync/atomic"

	"github.com/Iron-Ham/firefly/internal/doorbell"
	"github.com/Iron-Ham/firefly/internal/errors"
	"github.com/Iron-Ham/firefly/internal/event"
	"github.com/Iron-Ham/firefly/internal/mailbox/internal/shm"
)

const (
	// DefaultCapacity is the region size used when none is configured.
	DefaultCapacity = 4096

	// MinCapacity is the smallest region that can hold a one-byte payload.
	MinCapacity = headerSize + 1
)

// Mailbox is a one-slot, one-direction message box over a fixed-capacity
// byte region. It owns the region; the raw bytes are never exposed.
type Mailbox struct {
	name   string
	region *shm.Region // nil for in-process mailboxes
	buf    []byte
	hdr    header
	closed atomic.Bool

	bus    *event.Bus
	ringer doorbell.Ringer
}

// Create creates a new shared region named name in dir and wraps it.
// Failures are reported as *errors.ChannelError.
func Create(dir, name string, capacity int, opts ...Option) (*Mailbox, error) {
	if capacity < MinCapacity {
		return nil, errors.NewChannelError(
			fmt.Sprintf("capacity %d below minimum %d", capacity, MinCapacity), nil).WithName(name)
	}
	region, err := shm.Create(dir, name, capacity)
	if err != nil {
		return nil, errors.NewChannelError("create region", err).WithName(name)
	}
	return newMailbox(name, region, region.Bytes(), opts), nil
}

// Open maps an existing shared region created by the peer process.
// Failures are reported as *errors.ChannelError.
func Open(dir, name string, opts ...Option) (*Mailbox, error) {
	region, err := shm.Open(dir, name)
	if err != nil {
		return nil, errors.NewChannelError("open region", err).WithName(name)
	}
	if region.Len() < MinCapacity {
		_ = region.Close()
		return nil, errors.NewChannelError(
			fmt.Sprintf("region of %d bytes below minimum %d", region.Len(), MinCapacity), nil).
			WithName(name).WithPath(region.Path())
	}
	return newMailbox(name, region, region.Bytes(), opts), nil
}

// NewMemory returns a mailbox backed by process-local memory. It behaves
// exactly like a shared one and is used when both ends live in one process.
func NewMemory(name string, capacity int, opts ...Option) (*Mailbox, error) {
	if capacity < MinCapacity {
		return nil, errors.NewChannelError(
			fmt.Sprintf("capacity %d below minimum %d", capacity, MinCapacity), nil).WithName(name)
	}
	// Allocate as words so the header is 4-byte aligned.
	words := make([]uint32, (capacity+headerSize-1)/headerSize)
	buf := unsafeBytes(words)[:capacity:capacity]
	return newMailbox(name, nil, buf, opts), nil
}

// Remove unlinks the shared region named name in dir.
func Remove(dir, name string) error {
	return shm.Remove(dir, name)
}

func newMailbox(name string, region *shm.Region, buf []byte, opts []Option) *Mailbox {
	m := &Mailbox{
		name:   name,
		region: region,
		buf:    buf,
		hdr:    newHeader(buf),
		ringer: doorbell.Silent{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the mailbox identifier.
func (m *Mailbox) Name() string {
	return m.name
}

// Capacity returns the total slot size C, header included.
func (m *Mailbox) Capacity() int {
	return len(m.buf)
}

// MaxPayload returns the largest payload that fits: C - 4.
func (m *Mailbox) MaxPayload() int {
	return len(m.buf) - headerSize
}

// Write stores payload in the slot, overwriting any message that has not
// been consumed yet. A payload larger than MaxPayload is rejected with
// *errors.PayloadError and the slot is left unchanged.
func (m *Mailbox) Write(payload []byte) error {
	if err := m.check(payload); err != nil {
		return err
	}

	// Mark Empty while the payload is rewritten so a concurrent reader
	// never pairs the old length with new bytes.
	prev := m.hdr.load()
	m.hdr.store(0)
	copy(m.buf[headerSize:], payload)
	m.hdr.store(uint32(len(payload)))

	if prev != 0 {
		m.publishOverwritten(int(prev))
	}
	m.ring()
	return nil
}

// Post stores payload only if the slot is Empty. It returns
// errors.ErrSlotFull, leaving the slot untouched, when an unconsumed
// message is present.
func (m *Mailbox) Post(payload []byte) error {
	if err := m.check(payload); err != nil {
		return err
	}
	if m.hdr.load() != 0 {
		return errors.ErrSlotFull
	}

	copy(m.buf[headerSize:], payload)
	m.hdr.store(uint32(len(payload)))
	m.ring()
	return nil
}

// TryRead returns a copy of the pending payload, or ok=false when the slot
// is Empty. The slot is not cleared. A length word larger than the region
// is clamped to MaxPayload; the decoder then rejects the bytes.
func (m *Mailbox) TryRead() (payload []byte, ok bool) {
	if m.closed.Load() {
		return nil, false
	}
	n := int(m.hdr.load())
	if n == 0 {
		return nil, false
	}
	if n > m.MaxPayload() {
		n = m.MaxPayload()
	}
	payload = make([]byte, n)
	copy(payload, m.buf[headerSize:headerSize+n])
	return payload, true
}

// Clear marks the slot Empty. Clear is idempotent.
func (m *Mailbox) Clear() {
	if m.closed.Load() {
		return
	}
	m.hdr.store(0)
}

// Pending reports whether an unconsumed message is present.
func (m *Mailbox) Pending() bool {
	if m.closed.Load() {
		return false
	}
	return m.hdr.load() != 0
}

// Close releases the region mapping. The region itself stays in place
// for the peer until it is removed. Close is idempotent.
func (m *Mailbox) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.region == nil {
		return nil
	}
	return m.region.Close()
}

// check validates a payload against the slot before anything is written.
func (m *Mailbox) check(payload []byte) error {
	if m.closed.Load() {
		return errors.ErrMailboxClosed
	}
	if len(payload) == 0 {
		return errors.NewValidationError("payload must not be empty").WithField("payload")
	}
	if headerSize+len(payload) > len(m.buf) {
		m.publishRejected(len(payload))
		return errors.NewPayloadError(len(payload), m.MaxPayload())
	}
	return nil
}

// ring wakes the consumer. A failed ring only costs the consumer one
// fallback interval, so it is not reported to the writer.
func (m *Mailbox) ring() {
	_ = m.ringer.Ring()
}

// InUse reports whether some process still has the shared region named
// name in dir open.
func InUse(dir, name string) (bool, error) {
	return shm.InUse(dir, name)
}
