package frontend

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/Iron-Ham/firefly/internal/channel"
	"github.com/Iron-Ham/firefly/internal/event"
	"github.com/Iron-Ham/firefly/internal/logging"
	"github.com/Iron-Ham/firefly/internal/protocol"
)

// DefaultPollInterval is the fallback wait between empty polls.
const DefaultPollInterval = time.Millisecond

// maxDrain bounds a single PollDrawCommands pass so it always terminates,
// even against an engine that refills the slot as fast as it is cleared.
const maxDrain = 256

// Client owns the front-end side of a channel pair.
type Client struct {
	mu       sync.Mutex
	pair     *channel.Pair
	outbox   *channel.Outbox
	cache    LineCache
	logger   *logging.Logger
	bus      *event.Bus
	interval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBus publishes line.rendered and message.decode_failed events.
func WithBus(bus *event.Bus) Option {
	return func(c *Client) {
		c.bus = bus
	}
}

// WithPollInterval sets the fallback wait used by Run.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.interval = d
		}
	}
}

// New returns a client over the front-end side of pair.
func New(pair *channel.Pair, opts ...Option) *Client {
	c := &Client{
		pair:     pair,
		outbox:   channel.NewOutbox(pair.Outbound()),
		logger:   logging.NopLogger(),
		interval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithChannel(pair.Outbound().Name())
	return c
}

// Submit encodes op and sends it to the engine. Operations are delivered
// in order; while the engine has not consumed the previous one they wait
// in a local queue. An operation that cannot fit the mailbox fails with
// *errors.PayloadError and is not queued.
func (c *Client) Submit(op protocol.Operation) error {
	data, err := protocol.EncodeOperation(op)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.outbox.Enqueue(data); err != nil {
		return err
	}
	c.logger.Debug("operation submitted", "kind", op.Kind(), "queued", c.outbox.Len())
	return nil
}

// Queued returns the number of submitted operations not yet handed to
// the engine.
func (c *Client) Queued() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outbox.Len()
}

// PollDrawCommands yields the draw commands currently available without
// blocking. Each command is removed from the mailbox before it is
// yielded. Undecodable payloads are logged, cleared, and skipped.
// Commands are not applied to the line cache; see Sync.
func (c *Client) PollDrawCommands() iter.Seq[protocol.DrawCommand] {
	return func(yield func(protocol.DrawCommand) bool) {
		for range maxDrain {
			cmd, ok := c.next()
			if !ok {
				return
			}
			if cmd == nil {
				continue
			}
			if !yield(cmd) {
				return
			}
		}
	}
}

// next takes one message from the inbound slot. It returns ok=false when
// the slot is Empty and a nil command for a payload that failed to decode.
func (c *Client) next() (protocol.DrawCommand, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.outbox.Flush(); err != nil {
		c.logger.Error("flush operations", "error", err.Error())
	}

	inbound := c.pair.Inbound()
	payload, ok := inbound.TryRead()
	if !ok {
		return nil, false
	}
	inbound.Clear()

	cmd, err := protocol.DecodeDrawCommand(payload)
	if err != nil {
		c.logger.Warn("decode failed", "size", len(payload), "error", err.Error())
		c.publish(event.NewDecodeFailedEvent(inbound.Name(), len(payload), err))
		return nil, true
	}
	return cmd, true
}

// Sync drains available draw commands into the line cache and returns
// how many were applied.
func (c *Client) Sync() int {
	applied := 0
	for cmd := range c.PollDrawCommands() {
		c.apply(cmd)
		applied++
	}
	return applied
}

func (c *Client) apply(cmd protocol.DrawCommand) {
	switch cmd := cmd.(type) {
	case protocol.RenderLine:
		c.mu.Lock()
		ok := c.cache.Apply(cmd)
		c.mu.Unlock()
		if !ok {
			c.logger.Warn("render line out of range", "line", cmd.Line, "max", MaxLines)
			return
		}
		c.publish(event.NewLineRenderedEvent(cmd.Line, cmd.Text))
	default:
		c.logger.Warn("unhandled draw command", "kind", cmd.Kind())
	}
}

// Lines returns a snapshot of the line cache.
func (c *Client) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Lines()
}

// Run syncs until ctx is done, calling onUpdate after every pass that
// applied at least one command. onUpdate may be nil.
func (c *Client) Run(ctx context.Context, onUpdate func()) error {
	for {
		if n := c.Sync(); n > 0 && onUpdate != nil {
			onUpdate()
		}
		if err := c.pair.Wait(ctx, c.interval); err != nil {
			return nil
		}
	}
}

func (c *Client) publish(ev event.Event) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}
