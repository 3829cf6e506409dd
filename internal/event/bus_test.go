package event

import (
	"errors"
	"sync"
	"testing"
)

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus()

	called := false
	id := bus.Subscribe(TypeLineRendered, func(e Event) {
		called = true
	})

	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("Expected 1 subscription, got %d", bus.SubscriptionCount())
	}
	if called {
		t.Error("Handler should not be called until an event is published")
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus()

	var received Event
	bus.Subscribe(TypeMessageOverwritten, func(e Event) {
		received = e
	})

	bus.Publish(NewMessageOverwrittenEvent("ff-ui", 12))

	if received == nil {
		t.Fatal("Handler should have received the event")
	}
	lost, ok := received.(MessageOverwrittenEvent)
	if !ok {
		t.Fatalf("received %T, want MessageOverwrittenEvent", received)
	}
	if lost.Mailbox != "ff-ui" || lost.LostBytes != 12 {
		t.Errorf("event = %+v, want mailbox ff-ui and 12 lost bytes", lost)
	}
	if lost.Timestamp().IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestBus_PublishOrder(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.SubscribeAll(func(e Event) { order = append(order, "wildcard") })
	bus.Subscribe(TypeDecodeFailed, func(e Event) { order = append(order, "first") })
	bus.Subscribe(TypeDecodeFailed, func(e Event) { order = append(order, "second") })

	bus.Publish(NewDecodeFailedEvent("ff-ui", 3, errors.New("bad")))

	want := []string{"first", "second", "wildcard"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestBus_PublishNoMatchingHandlers(t *testing.T) {
	bus := NewBus()

	bus.Subscribe(TypeLineRendered, func(e Event) {
		t.Error("Handler should not be called for non-matching event type")
	})

	bus.Publish(NewOperationAppliedEvent("insert_char", 1))
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	calls := 0
	id := bus.Subscribe(TypeLineRendered, func(e Event) { calls++ })
	keep := bus.Subscribe(TypeLineRendered, func(e Event) { calls += 10 })

	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe should find the subscription")
	}
	if bus.Unsubscribe(id) {
		t.Error("second Unsubscribe should report not found")
	}

	bus.Publish(NewLineRenderedEvent(0, "hi"))
	if calls != 10 {
		t.Errorf("calls = %d, want 10 (only the kept handler)", calls)
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", bus.SubscriptionCount())
	}
	_ = keep
}

func TestBus_PanickingHandler(t *testing.T) {
	bus := NewBus()

	reached := false
	bus.Subscribe(TypeLineRendered, func(e Event) { panic("boom") })
	bus.Subscribe(TypeLineRendered, func(e Event) { reached = true })

	bus.Publish(NewLineRenderedEvent(1, "b"))

	if !reached {
		t.Error("handler after a panicking handler should still run")
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.SubscribeAll(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Go(func() {
			bus.Publish(NewOperationAppliedEvent("insert_char", 0))
		})
	}
	wg.Wait()

	if count != 50 {
		t.Errorf("count = %d, want 50", count)
	}
}
