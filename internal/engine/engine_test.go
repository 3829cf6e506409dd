package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Iron-Ham/firefly/internal/channel"
	"github.com/Iron-Ham/firefly/internal/errors"
	"github.com/Iron-Ham/firefly/internal/event"
	"github.com/Iron-Ham/firefly/internal/logging"
	"github.com/Iron-Ham/firefly/internal/protocol"
)

func newTestEngine(t *testing.T, capacity int, opts ...Option) (*Engine, *channel.Pair) {
	t.Helper()
	front, side, err := channel.Memory(capacity, nil)
	if err != nil {
		t.Fatalf("channel.Memory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = front.Close()
		_ = side.Close()
	})
	opts = append([]Option{WithLogger(logging.NopLogger())}, opts...)
	return New(side, opts...), front
}

// send writes an operation and runs one engine step, then collects the
// draw command it produced.
func send(t *testing.T, e *Engine, front *channel.Pair, r rune) protocol.DrawCommand {
	t.Helper()
	data, err := protocol.EncodeOperation(protocol.InsertChar{Char: r})
	if err != nil {
		t.Fatalf("EncodeOperation() error = %v", err)
	}
	if err := front.Outbound().Post(data); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	handled, err := e.Step()
	if err != nil || !handled {
		t.Fatalf("Step() = %v, %v; want handled", handled, err)
	}
	payload, ok := front.Inbound().TryRead()
	if !ok {
		t.Fatal("engine emitted nothing")
	}
	front.Inbound().Clear()
	cmd, err := protocol.DecodeDrawCommand(payload)
	if err != nil {
		t.Fatalf("DecodeDrawCommand() error = %v", err)
	}
	return cmd
}

func TestStep_InsertSequence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []protocol.DrawCommand
	}{
		{
			name:  "hi",
			input: "hi",
			want:  []protocol.DrawCommand{protocol.RenderLine{Line: 0, Text: "h"}, protocol.RenderLine{Line: 0, Text: "hi"}},
		},
		{
			name:  "a newline b",
			input: "a\nb",
			want: []protocol.DrawCommand{
				protocol.RenderLine{Line: 0, Text: "a"},
				protocol.RenderLine{Line: 1, Text: ""},
				protocol.RenderLine{Line: 1, Text: "b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, front := newTestEngine(t, 4096)
			var got []protocol.DrawCommand
			for _, r := range tt.input {
				got = append(got, send(t, e, front, r))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("draw commands mismatch (-want +got):\n%s", diff)
			}
			if e.Document().String() != tt.input {
				t.Errorf("document = %q, want %q", e.Document().String(), tt.input)
			}
			if front.Outbound().Pending() {
				t.Error("engine should clear the inbound slot")
			}
		})
	}
}

func TestStep_Empty(t *testing.T) {
	e, _ := newTestEngine(t, 64)
	handled, err := e.Step()
	if handled || err != nil {
		t.Errorf("Step() on empty = %v, %v; want false, nil", handled, err)
	}
}

func TestStep_MalformedPayload(t *testing.T) {
	bus := event.NewBus()
	var failures []event.DecodeFailedEvent
	bus.Subscribe(event.TypeDecodeFailed, func(ev event.Event) {
		failures = append(failures, ev.(event.DecodeFailedEvent))
	})

	e, front := newTestEngine(t, 64, WithBus(bus))
	send(t, e, front, 'x')

	if err := front.Outbound().Write([]byte{0xde, 0xad, 0xbe, 0xef}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	handled, err := e.Step()
	if !handled || err != nil {
		t.Fatalf("Step() = %v, %v; want true, nil", handled, err)
	}

	if front.Outbound().Pending() {
		t.Error("malformed payload should be cleared")
	}
	if e.Document().String() != "x" || e.Document().Cursor() != 1 {
		t.Errorf("document changed: %q cursor %d", e.Document().String(), e.Document().Cursor())
	}
	if front.Inbound().Pending() {
		t.Error("nothing should be emitted for a malformed payload")
	}
	if len(failures) != 1 || failures[0].Size != 4 || !errors.Is(failures[0].Err, errors.ErrDecodeFailed) {
		t.Errorf("decode failures = %+v", failures)
	}
}

func TestStep_WrongFamily(t *testing.T) {
	e, front := newTestEngine(t, 64)
	data, _ := protocol.EncodeDrawCommand(protocol.RenderLine{Line: 0, Text: "x"})
	_ = front.Outbound().Write(data)

	if handled, _ := e.Step(); !handled {
		t.Fatal("Step() should consume the payload")
	}
	if e.Document().Len() != 0 {
		t.Error("draw command on the operation channel should not touch the document")
	}
}

func TestStep_QueuesWhileFrontEndBusy(t *testing.T) {
	e, front := newTestEngine(t, 64)

	for _, r := range "abc" {
		data, _ := protocol.EncodeOperation(protocol.InsertChar{Char: r})
		if err := front.Outbound().Post(data); err != nil {
			t.Fatalf("Post() error = %v", err)
		}
		if _, err := e.Step(); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
	}
	if e.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2 queued behind the unread command", e.Pending())
	}

	var texts []string
	for range 5 {
		if payload, ok := front.Inbound().TryRead(); ok {
			cmd, err := protocol.DecodeDrawCommand(payload)
			if err != nil {
				t.Fatal(err)
			}
			texts = append(texts, cmd.(protocol.RenderLine).Text)
			front.Inbound().Clear()
		}
		_, _ = e.Step()
	}
	if diff := cmp.Diff([]string{"a", "ab", "abc"}, texts); diff != "" {
		t.Errorf("no draw command may be lost (-want +got):\n%s", diff)
	}
}

func TestStep_OversizedLineDropped(t *testing.T) {
	// 40-byte region: a RenderLine envelope with a long line will not fit.
	e, front := newTestEngine(t, 40)
	var last protocol.DrawCommand
	for range 30 {
		data, _ := protocol.EncodeOperation(protocol.InsertChar{Char: 'x'})
		_ = front.Outbound().Post(data)
		if _, err := e.Step(); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
		if payload, ok := front.Inbound().TryRead(); ok {
			last, _ = protocol.DecodeDrawCommand(payload)
			front.Inbound().Clear()
		}
	}
	if e.Document().Len() != 30 {
		t.Errorf("document length = %d, want 30", e.Document().Len())
	}
	if rl, ok := last.(protocol.RenderLine); !ok || len(rl.Text) >= 30 {
		t.Errorf("last delivered command = %#v; long lines should be dropped", last)
	}
}

func TestStep_PublishesApplied(t *testing.T) {
	bus := event.NewBus()
	var cursors []int
	bus.Subscribe(event.TypeOperationApplied, func(ev event.Event) {
		cursors = append(cursors, ev.(event.OperationAppliedEvent).Cursor)
	})
	e, front := newTestEngine(t, 64, WithBus(bus))
	send(t, e, front, 'a')
	send(t, e, front, 'b')
	if diff := cmp.Diff([]int{1, 2}, cursors); diff != "" {
		t.Errorf("cursor events mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	e, front := newTestEngine(t, 64, WithPollInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	data, _ := protocol.EncodeOperation(protocol.InsertChar{Char: 'q'})
	_ = front.Outbound().Post(data)

	deadline := time.After(5 * time.Second)
	for !front.Inbound().Pending() {
		select {
		case <-deadline:
			t.Fatal("engine never answered")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
	payload, _ := front.Inbound().TryRead()
	if cmd, _ := protocol.DecodeDrawCommand(payload); cmd != (protocol.RenderLine{Line: 0, Text: "q"}) {
		t.Errorf("draw command = %#v", cmd)
	}
}

func TestRun_ClosedChannel(t *testing.T) {
	e, front := newTestEngine(t, 64, WithPollInterval(time.Millisecond))
	data, _ := protocol.EncodeOperation(protocol.InsertChar{Char: 'q'})
	_ = front.Outbound().Post(data)
	_ = front.Inbound().Close()

	err := e.Run(context.Background())
	if !errors.Is(err, errors.ErrMailboxClosed) {
		t.Errorf("Run() error = %v, want ErrMailboxClosed", err)
	}
	if !strings.Contains(e.Document().String(), "q") {
		t.Error("operation should be applied before the emit fails")
	}
}
