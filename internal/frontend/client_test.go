package frontend

import (
	"context"
	"math"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Iron-Ham/firefly/internal/channel"
	"github.com/Iron-Ham/firefly/internal/engine"
	"github.com/Iron-Ham/firefly/internal/errors"
	"github.com/Iron-Ham/firefly/internal/event"
	"github.com/Iron-Ham/firefly/internal/protocol"
)

func newPairs(t *testing.T, capacity int) (front, side *channel.Pair) {
	t.Helper()
	front, side, err := channel.Memory(capacity, nil)
	if err != nil {
		t.Fatalf("channel.Memory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = front.Close()
		_ = side.Close()
	})
	return front, side
}

func writeDraw(t *testing.T, side *channel.Pair, cmd protocol.RenderLine) {
	t.Helper()
	data, err := protocol.EncodeDrawCommand(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if err := side.Outbound().Write(data); err != nil {
		t.Fatal(err)
	}
}

func TestSubmit_WritesOperation(t *testing.T) {
	front, side := newPairs(t, 64)
	c := New(front)

	if err := c.Submit(protocol.InsertChar{Char: 'h'}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	payload, ok := side.Inbound().TryRead()
	if !ok {
		t.Fatal("operation not written")
	}
	op, err := protocol.DecodeOperation(payload)
	if err != nil || op != (protocol.InsertChar{Char: 'h'}) {
		t.Errorf("DecodeOperation() = %#v, %v", op, err)
	}
}

func TestSubmit_QueuesInOrder(t *testing.T) {
	front, side := newPairs(t, 64)
	c := New(front)

	for _, r := range "abc" {
		if err := c.Submit(protocol.InsertChar{Char: r}); err != nil {
			t.Fatalf("Submit(%q) error = %v", r, err)
		}
	}
	if c.Queued() != 2 {
		t.Fatalf("Queued() = %d, want 2", c.Queued())
	}

	var got []rune
	for range 5 {
		if payload, ok := side.Inbound().TryRead(); ok {
			op, _ := protocol.DecodeOperation(payload)
			got = append(got, op.(protocol.InsertChar).Char)
			side.Inbound().Clear()
		}
		c.Sync() // flushes the next queued operation
	}
	if string(got) != "abc" {
		t.Errorf("engine saw %q, want %q", string(got), "abc")
	}
}

func TestSubmit_PayloadTooLarge(t *testing.T) {
	front, side := newPairs(t, 16)
	c := New(front)

	err := c.Submit(protocol.InsertChar{Char: 'x'})
	if !errors.Is(err, errors.ErrPayloadTooLarge) {
		t.Fatalf("Submit() error = %v, want ErrPayloadTooLarge", err)
	}
	if side.Inbound().Pending() || c.Queued() != 0 {
		t.Error("rejected operation should not reach the mailbox or the queue")
	}
}

func TestPollDrawCommands(t *testing.T) {
	front, side := newPairs(t, 64)
	c := New(front)

	if n := len(slices.Collect(c.PollDrawCommands())); n != 0 {
		t.Fatalf("empty poll yielded %d commands", n)
	}

	writeDraw(t, side, protocol.RenderLine{Line: 2, Text: "x"})
	got := slices.Collect(c.PollDrawCommands())
	if diff := cmp.Diff([]protocol.DrawCommand{protocol.RenderLine{Line: 2, Text: "x"}}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if side.Outbound().Pending() {
		t.Error("poll should clear the slot")
	}
	if len(c.Lines()) != 0 {
		t.Error("PollDrawCommands should not touch the cache")
	}
}

func TestPollDrawCommands_SkipsMalformed(t *testing.T) {
	bus := event.NewBus()
	failures := 0
	bus.Subscribe(event.TypeDecodeFailed, func(event.Event) { failures++ })

	front, side := newPairs(t, 64)
	c := New(front, WithBus(bus))

	_ = side.Outbound().Write([]byte("not cbor at all"))
	if n := len(slices.Collect(c.PollDrawCommands())); n != 0 {
		t.Errorf("malformed payload yielded %d commands", n)
	}
	if failures != 1 {
		t.Errorf("decode failures = %d, want 1", failures)
	}
	if side.Outbound().Pending() {
		t.Error("malformed payload should be cleared")
	}
}

func TestSync_AppliesToCache(t *testing.T) {
	bus := event.NewBus()
	var rendered []int
	bus.Subscribe(event.TypeLineRendered, func(ev event.Event) {
		rendered = append(rendered, ev.(event.LineRenderedEvent).Line)
	})

	front, side := newPairs(t, 64)
	c := New(front, WithBus(bus))

	writeDraw(t, side, protocol.RenderLine{Line: 0, Text: "h"})
	if n := c.Sync(); n != 1 {
		t.Fatalf("Sync() = %d, want 1", n)
	}
	writeDraw(t, side, protocol.RenderLine{Line: 0, Text: "hi"})
	c.Sync()

	if diff := cmp.Diff([]string{"hi"}, c.Lines()); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 0}, rendered); diff != "" {
		t.Errorf("rendered events mismatch (-want +got):\n%s", diff)
	}
}

func TestSync_IgnoresLineBeyondLimit(t *testing.T) {
	bus := event.NewBus()
	rendered := 0
	bus.Subscribe(event.TypeLineRendered, func(event.Event) { rendered++ })

	front, side := newPairs(t, 64)
	c := New(front, WithBus(bus))

	writeDraw(t, side, protocol.RenderLine{Line: math.MaxInt32, Text: "x"})
	c.Sync()

	if lines := c.Lines(); len(lines) != 0 {
		t.Errorf("Lines() has %d entries, want none", len(lines))
	}
	if rendered != 0 {
		t.Errorf("rendered events = %d, want 0", rendered)
	}
}

// typeThrough runs a real engine against the client and waits until the
// cache matches want.
func typeThrough(t *testing.T, input string, want []string) {
	t.Helper()
	front, side := newPairs(t, 4096)
	eng := engine.New(side, engine.WithPollInterval(time.Millisecond))
	c := New(front, WithPollInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Go(func() { _ = eng.Run(ctx) })
	wg.Go(func() { _ = c.Run(ctx, nil) })
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	for _, r := range input {
		if err := c.Submit(protocol.InsertChar{Char: r}); err != nil {
			t.Fatalf("Submit(%q) error = %v", r, err)
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cmp.Equal(want, c.Lines()) && c.Queued() == 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("cache = %q, want %q", c.Lines(), want)
}

func TestEndToEnd_SingleLine(t *testing.T) {
	typeThrough(t, "hi", []string{"hi"})
}

func TestEndToEnd_NewLine(t *testing.T) {
	typeThrough(t, "a\nb", []string{"a", "b"})
}

// Lines are only redrawn while the cursor is on them, so no cached line
// ends up holding its newline.
func TestEndToEnd_ManyKeystrokes(t *testing.T) {
	typeThrough(t, "the quick brown fox\njumps over\n\nthe lazy dog", []string{
		"the quick brown fox", "jumps over", "", "the lazy dog",
	})
}

func TestRun_NotifiesAndStops(t *testing.T) {
	front, side := newPairs(t, 64)
	c := New(front, WithPollInterval(time.Millisecond))

	updates := make(chan struct{}, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx, func() { updates <- struct{}{} })
	}()

	writeDraw(t, side, protocol.RenderLine{Line: 0, Text: "z"})
	select {
	case <-updates:
	case <-time.After(5 * time.Second):
		t.Fatal("onUpdate not called")
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if diff := cmp.Diff([]string{"z"}, c.Lines()); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
}
