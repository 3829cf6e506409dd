// Package engine runs the document side of the editor: it reads
// operations from the UI→engine mailbox, applies them to the document,
// and sends the resulting draw commands back.
package engine

import (
	"context"
	"time"

	"github.com/Iron-Ham/firefly/internal/channel"
	"github.com/Iron-Ham/firefly/internal/document"
	"github.com/Iron-Ham/firefly/internal/errors"
	"github.com/Iron-Ham/firefly/internal/event"
	"github.com/Iron-Ham/firefly/internal/logging"
	"github.com/Iron-Ham/firefly/internal/protocol"
)

// DefaultPollInterval is the fallback wait between empty polls.
const DefaultPollInterval = 10 * time.Millisecond

// Engine owns the document and the engine side of a channel pair. It is
// driven by a single goroutine.
type Engine struct {
	pair     *channel.Pair
	doc      *document.Document
	outbox   *channel.Outbox
	logger   *logging.Logger
	bus      *event.Bus
	interval time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithBus publishes operation.applied and message.decode_failed events.
func WithBus(bus *event.Bus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}

// WithPollInterval sets the fallback wait between empty polls.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// New returns an engine with an empty document over the engine side of
// pair.
func New(pair *channel.Pair, opts ...Option) *Engine {
	e := &Engine{
		pair:     pair,
		doc:      document.New(),
		outbox:   channel.NewOutbox(pair.Outbound()),
		logger:   logging.NopLogger(),
		interval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithChannel(pair.Inbound().Name())
	return e
}

// Document returns the engine's document. It must only be read from the
// goroutine driving the engine.
func (e *Engine) Document() *document.Document {
	return e.doc
}

// Pending returns the number of draw commands waiting for the front end
// to free its mailbox.
func (e *Engine) Pending() int {
	return e.outbox.Len()
}

// Run polls until ctx is done. It returns nil on cancellation and an
// error only when the channel itself has failed.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine loop started", "poll_interval", e.interval.String())
	defer e.logger.Info("engine loop stopped", "cursor", e.doc.Cursor(), "lines", e.doc.LineCount())

	for {
		if ctx.Err() != nil {
			return nil
		}
		handled, err := e.Step()
		if err != nil {
			return err
		}
		if handled {
			continue
		}
		if err := e.pair.Wait(ctx, e.interval); err != nil {
			return nil
		}
	}
}

// Step handles at most one inbound message and reports whether one was
// present. Per-message failures are logged and the slot is cleared; the
// returned error is reserved for a closed channel.
func (e *Engine) Step() (bool, error) {
	if _, err := e.outbox.Flush(); err != nil {
		return false, err
	}

	inbound := e.pair.Inbound()
	payload, ok := inbound.TryRead()
	if !ok {
		return false, nil
	}
	defer inbound.Clear()

	op, err := protocol.DecodeOperation(payload)
	if err != nil {
		e.logger.Warn("decode failed", "size", len(payload), "error", err.Error())
		e.publish(event.NewDecodeFailedEvent(inbound.Name(), len(payload), err))
		return true, nil
	}

	cmd, err := e.doc.Apply(op)
	if err != nil {
		e.logger.Warn("operation rejected", "kind", op.Kind(), "error", err.Error())
		return true, nil
	}
	e.publish(event.NewOperationAppliedEvent(op.Kind(), e.doc.Cursor()))

	return true, e.emit(cmd)
}

// emit queues cmd for the front end. A command too large for the mailbox
// is dropped and logged; the front end keeps its previous copy of the line.
func (e *Engine) emit(cmd protocol.DrawCommand) error {
	data, err := protocol.EncodeDrawCommand(cmd)
	if err != nil {
		e.logger.Error("encode draw command", "kind", cmd.Kind(), "error", err.Error())
		return nil
	}
	err = e.outbox.Enqueue(data)
	switch {
	case err == nil:
		if rl, ok := cmd.(protocol.RenderLine); ok {
			e.logger.Debug("line rendered", "line", rl.Line, "bytes", len(data))
		}
		return nil
	case errors.Is(err, errors.ErrPayloadTooLarge):
		e.logger.Error("draw command dropped", "kind", cmd.Kind(), "error", err.Error())
		return nil
	default:
		return err
	}
}

func (e *Engine) publish(ev event.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}
