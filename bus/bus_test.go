// bus/bus_test.go
package bus

import (
	"testing"
	"time"
)

func expectOneOf(t *testing.T, s *Subscription, want any) {
	t.Helper()
	select {
	case got := <-s.Channel():
		if got.Payload != want {
			t.Fatalf("expected payload %v, got %v", want, got.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for %v", want)
	}
}

func expectNoMessage(t *testing.T, s *Subscription) {
	t.Helper()
	select {
	case got := <-s.Channel():
		t.Fatalf("unexpected message: %v", got.Payload)
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBasicPubSub(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("meter", "state"))

	conn.Publish(conn.NewMessage(T("meter", "state"), "ready", false))
	expectOneOf(t, sub, "ready")
}

func TestRetainedMessage(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(T("meter", "timebase"), "tb", true))

	// Late subscriber still sees the retained copy.
	sub := conn.Subscribe(T("meter", "timebase"))
	expectOneOf(t, sub, "tb")

	// Publishing nil clears it.
	conn.Publish(conn.NewMessage(T("meter", "timebase"), nil, true))
	sub2 := conn.Subscribe(T("meter", "timebase"))
	expectNoMessage(t, sub2)
}

func TestWildcard_SingleLevel(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	s1 := c.Subscribe(T("meter", "+", "value"))
	sNo := c.Subscribe(T("meter", "+", "info"))

	c.Publish(b.NewMessage(T("meter", "range", "value"), "m1", false))
	expectOneOf(t, s1, "m1")
	expectNoMessage(t, sNo)

	// "+" must not span two levels.
	c.Publish(b.NewMessage(T("meter", "a", "b", "value"), "m2", false))
	expectNoMessage(t, s1)
}

func TestWildcard_MultiLevel(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	sHash := c.Subscribe(T("meter", "#"))

	c.Publish(b.NewMessage(T("meter"), "p1", false))
	expectOneOf(t, sHash, "p1")

	c.Publish(b.NewMessage(T("meter", "range", "value"), "p2", false))
	expectOneOf(t, sHash, "p2")

	c.Publish(b.NewMessage(T("other"), "p3", false))
	expectNoMessage(t, sHash)
}

func TestWildcard_RetainedDelivery(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	c.Publish(b.NewMessage(T("meter", "timebase"), "tb", true))
	c.Publish(b.NewMessage(T("meter", "range"), "rg", true))

	s := c.Subscribe(T("meter", "#"))

	got := map[any]bool{}
	for i := 0; i < 2; i++ {
		select {
		case m := <-s.Channel():
			got[m.Payload] = true
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout collecting retained messages")
		}
	}
	if !got["tb"] || !got["rg"] {
		t.Fatalf("missing retained messages: %v", got)
	}
}

func TestQueueDropOldest(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("test")

	s := c.Subscribe(T("x"))
	for i := 0; i < 4; i++ {
		c.Publish(b.NewMessage(T("x"), i, false))
	}

	// Queue length 2: the two newest survive.
	expectOneOf(t, s, 2)
	expectOneOf(t, s, 3)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("test")

	s := c.Subscribe(T("x"))
	s.Unsubscribe()

	b.Publish(b.NewMessage(T("x"), "late", false))
	if _, ok := <-s.ch; ok {
		t.Fatal("expected closed channel after unsubscribe")
	}
}
