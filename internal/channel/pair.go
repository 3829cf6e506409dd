package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/firefly/internal/doorbell"
	"github.com/Iron-Ham/firefly/internal/errors"
	"github.com/Iron-Ham/firefly/internal/event"
	"github.com/Iron-Ham/firefly/internal/mailbox"
)

// NamePrefix starts every generated region name.
const NamePrefix = "firefly-"

// Names identifies the two regions of a pair.
type Names struct {
	UIToEngine string
	EngineToUI string
}

// NewNames returns a fresh, unique pair of region names.
func NewNames() Names {
	id := uuid.NewString()
	return Names{
		UIToEngine: NamePrefix + id + "-ui",
		EngineToUI: NamePrefix + id + "-engine",
	}
}

// Validate checks that both names are present and distinct.
func (n Names) Validate() error {
	if n.UIToEngine == "" || n.EngineToUI == "" {
		return errors.NewValidationError("both channel names are required").WithField("names")
	}
	if n.UIToEngine == n.EngineToUI {
		return errors.NewValidationError("channel names must differ").WithField("names").WithValue(n.UIToEngine)
	}
	return nil
}

// Options configures a Pair.
type Options struct {
	// Capacity is the region size for newly created mailboxes.
	Capacity int

	// Doorbell enables doorbell files next to each region. When false,
	// Wait only sleeps for the fallback interval.
	Doorbell bool

	// Bus receives mailbox events. May be nil.
	Bus *event.Bus
}

// DefaultOptions returns options with the default capacity and doorbells
// enabled.
func DefaultOptions() Options {
	return Options{Capacity: mailbox.DefaultCapacity, Doorbell: true}
}

// Pair is one side's view of the channel pair: the mailbox it reads
// (Inbound), the mailbox it writes (Outbound), and a waiter for the
// inbound doorbell.
type Pair struct {
	names    Names
	dir      string
	creator  bool
	inbound  *mailbox.Mailbox
	outbound *mailbox.Mailbox
	ringer   doorbell.Ringer
	waiter   doorbell.Waiter
}

// Create creates both regions in dir under fresh names. The returned Pair
// is the front end's side: it writes UIToEngine and reads EngineToUI.
// Failures are reported as *errors.ChannelError and leave nothing behind.
func Create(dir string, opts Options) (*Pair, error) {
	names := NewNames()
	p := &Pair{names: names, dir: dir, creator: true}

	ringer, waiter, err := doorbells(dir, names.UIToEngine, names.EngineToUI, opts.Doorbell)
	if err != nil {
		return nil, errors.NewChannelError("create doorbells", err).WithName(names.UIToEngine)
	}
	p.ringer, p.waiter = ringer, waiter

	p.outbound, err = mailbox.Create(dir, names.UIToEngine, opts.Capacity,
		mailbox.WithBus(opts.Bus), mailbox.WithRinger(ringer))
	if err != nil {
		p.cleanup()
		return nil, err
	}
	p.inbound, err = mailbox.Create(dir, names.EngineToUI, opts.Capacity, mailbox.WithBus(opts.Bus))
	if err != nil {
		p.cleanup()
		return nil, err
	}
	return p, nil
}

// Open opens regions created by the peer. The returned Pair is the
// engine's side: it reads UIToEngine and writes EngineToUI. A missing or
// unmappable region is reported as *errors.ChannelError.
func Open(dir string, names Names, opts Options) (*Pair, error) {
	if err := names.Validate(); err != nil {
		return nil, errors.NewChannelError("open pair", err)
	}
	p := &Pair{names: names, dir: dir}

	var err error
	p.inbound, err = mailbox.Open(dir, names.UIToEngine, mailbox.WithBus(opts.Bus))
	if err != nil {
		return nil, err
	}

	ringer, waiter, err := doorbells(dir, names.EngineToUI, names.UIToEngine, opts.Doorbell)
	if err != nil {
		p.cleanup()
		return nil, errors.NewChannelError("open doorbells", err).WithName(names.EngineToUI)
	}
	p.ringer, p.waiter = ringer, waiter

	p.outbound, err = mailbox.Open(dir, names.EngineToUI, mailbox.WithBus(opts.Bus), mailbox.WithRinger(ringer))
	if err != nil {
		p.cleanup()
		return nil, err
	}
	return p, nil
}

// Memory returns both sides of a pair backed by process-local memory.
// Waiting falls back to the interval since no doorbell is involved.
func Memory(capacity int, bus *event.Bus) (front, engine *Pair, err error) {
	names := NewNames()
	toEngine, err := mailbox.NewMemory(names.UIToEngine, capacity, mailbox.WithBus(bus))
	if err != nil {
		return nil, nil, err
	}
	toUI, err := mailbox.NewMemory(names.EngineToUI, capacity, mailbox.WithBus(bus))
	if err != nil {
		return nil, nil, err
	}

	front = &Pair{names: names, inbound: toUI, outbound: toEngine, ringer: doorbell.Silent{}, waiter: doorbell.Sleeper{}}
	engine = &Pair{names: names, inbound: toEngine, outbound: toUI, ringer: doorbell.Silent{}, waiter: doorbell.Sleeper{}}
	return front, engine, nil
}

// doorbells sets up the ringer for the mailbox this side writes and the
// waiter for the one it reads.
func doorbells(dir, write, read string, enabled bool) (doorbell.Ringer, doorbell.Waiter, error) {
	if !enabled {
		return doorbell.Silent{}, doorbell.Sleeper{}, nil
	}
	ringer, err := doorbell.NewRinger(dir, write)
	if err != nil {
		return nil, nil, err
	}
	waiter, err := doorbell.NewWatcher(dir, read)
	if err != nil {
		_ = ringer.Close()
		return nil, nil, err
	}
	return ringer, waiter, nil
}

// Names returns the identifiers of both regions.
func (p *Pair) Names() Names {
	return p.names
}

// Dir returns the directory holding the regions. Empty for memory pairs.
func (p *Pair) Dir() string {
	return p.dir
}

// Inbound returns the mailbox this side reads.
func (p *Pair) Inbound() *mailbox.Mailbox {
	return p.inbound
}

// Outbound returns the mailbox this side writes.
func (p *Pair) Outbound() *mailbox.Mailbox {
	return p.outbound
}

// Wait blocks until the peer rings the inbound doorbell, fallback elapses,
// or ctx is done.
func (p *Pair) Wait(ctx context.Context, fallback time.Duration) error {
	return p.waiter.Wait(ctx, fallback)
}

// Close unmaps both regions and stops the doorbells. The regions stay in
// place until the creator calls Remove. Close is idempotent.
func (p *Pair) Close() error {
	var errs []error
	if p.inbound != nil {
		errs = append(errs, p.inbound.Close())
	}
	if p.outbound != nil {
		errs = append(errs, p.outbound.Close())
	}
	if p.ringer != nil {
		errs = append(errs, p.ringer.Close())
	}
	if p.waiter != nil {
		errs = append(errs, p.waiter.Close())
	}
	return errors.Join(errs...)
}

// Remove unlinks both regions and their doorbells. Only the creator may
// remove a pair.
func (p *Pair) Remove() error {
	if !p.creator {
		return fmt.Errorf("channel: only the creator may remove %s", p.names.UIToEngine)
	}
	var errs []error
	for _, name := range []string{p.names.UIToEngine, p.names.EngineToUI} {
		if err := mailbox.Remove(p.dir, name); err != nil {
			errs = append(errs, err)
		}
		if err := doorbell.Remove(p.dir, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// cleanup releases whatever a failed Create or Open managed to acquire.
func (p *Pair) cleanup() {
	_ = p.Close()
	if p.creator {
		_ = p.Remove()
	}
}
