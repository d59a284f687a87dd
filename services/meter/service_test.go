// services/meter/service_test.go
package meter

import (
	"context"
	"testing"
	"time"

	"freqgate-go/bus"
	"freqgate-go/errcode"
	"freqgate-go/internal/platform"
	"freqgate-go/types"
)

func waitState(t *testing.T, sub *bus.Subscription, level string) types.MeterState {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case m := <-sub.Channel():
			if st, ok := m.Payload.(types.MeterState); ok && st.Level == level {
				return st
			}
		case <-deadline:
			t.Fatalf("timeout waiting for state %q", level)
		}
	}
}

func TestService_ReadyAndGateRuns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	board := platform.Default()
	b := bus.NewBus(8)
	svcConn := b.NewConnection("meter")
	obs := b.NewConnection("test")

	stateSub := obs.Subscribe(TopicState())
	tbSub := obs.Subscribe(TopicTimebase())

	svc := New(board, Options{
		Params: Params{ClockHz: 12_000_000, FullScaleHz: 6_400_000, Prescaler: 64},
		Poll:   time.Millisecond,
	})
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx, svcConn) }()

	waitState(t, stateSub, types.LevelReady)

	select {
	case m := <-tbSub.Channel():
		info := m.Payload.(types.TimebaseInfo)
		if info.Ticks != 15 || info.GateNs != 320_000 {
			t.Fatalf("timebase info: %+v", info)
		}
	case <-time.After(time.Second):
		t.Fatal("timebase info not published")
	}

	timer := board.Timer.(*platform.FakeTimer)
	if !timer.Started() {
		t.Fatal("timer not armed after ready")
	}

	// One expiry opens the gate; the next closes it.
	timer.Fire()
	if !board.Gate.Get() {
		t.Fatal("gate not open after first expiry")
	}
	timer.Fire()
	if board.Gate.Get() {
		t.Fatal("gate not closed after second expiry")
	}
	if board.Reset.Get() {
		t.Fatal("reset line must idle low after the first pulse")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestService_RangeSwitchStretchesGate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	board := platform.Default()
	b := bus.NewBus(8)
	svcConn := b.NewConnection("meter")
	obs := b.NewConnection("test")

	stateSub := obs.Subscribe(TopicState())
	rangeSub := obs.Subscribe(TopicRange())

	svc := New(board, Options{
		Params: Params{ClockHz: 12_000_000, FullScaleHz: 6_400_000, Prescaler: 64},
		Poll:   time.Millisecond,
	})
	go func() { _ = svc.Run(ctx, svcConn) }()
	waitState(t, stateSub, types.LevelReady)

	// Initial retained range value: nominal.
	select {
	case m := <-rangeSub.Channel():
		if m.Payload.(types.RangeValue).Extended {
			t.Fatal("initial range must be nominal")
		}
	case <-time.After(time.Second):
		t.Fatal("initial range not published")
	}

	// Hold the button (active low) and wait for the mode change.
	board.RangeBtn.(*platform.FakePin).Drive(false)
	select {
	case m := <-rangeSub.Channel():
		if !m.Payload.(types.RangeValue).Extended {
			t.Fatal("expected extended range after button press")
		}
	case <-time.After(time.Second):
		t.Fatal("range change not published")
	}
	if !board.RangeLED.Get() {
		t.Fatal("status LED must mirror the asserted input")
	}

	// The ISR consumes the stretched preload on its next expiry: the encoded
	// interval becomes exactly ten times the nominal 320 µs half-period.
	timer := board.Timer.(*platform.FakeTimer)
	timer.Fire()
	if got := timer.IntervalNs(); got != 3_200_000 {
		t.Fatalf("extended interval: got %d want 3200000", got)
	}

	// Release: nominal interval and LED off again.
	board.RangeBtn.(*platform.FakePin).Drive(true)
	select {
	case m := <-rangeSub.Channel():
		if m.Payload.(types.RangeValue).Extended {
			t.Fatal("expected nominal range after release")
		}
	case <-time.After(time.Second):
		t.Fatal("range restore not published")
	}
	timer.Fire()
	if got := timer.IntervalNs(); got != 320_000 {
		t.Fatalf("nominal interval: got %d want 320000", got)
	}
	if board.RangeLED.Get() {
		t.Fatal("status LED must clear on release")
	}
}

func TestService_FaultLeavesSafeIdle(t *testing.T) {
	board := platform.Default()
	b := bus.NewBus(8)
	svcConn := b.NewConnection("meter")
	obs := b.NewConnection("test")
	stateSub := obs.Subscribe(TopicState())

	svc := New(board, Options{
		Params: Params{ClockHz: 20_000_000, FullScaleHz: 6_400_000, Prescaler: 3},
	})
	err := svc.Run(context.Background(), svcConn)
	if err == nil {
		t.Fatal("expected configuration fault")
	}
	if errcode.Of(err) != errcode.InvalidPrescaler {
		t.Fatalf("fault code: %v", err)
	}

	st := waitState(t, stateSub, types.LevelFault)
	if st.Status != string(errcode.InvalidPrescaler) {
		t.Fatalf("fault status: %+v", st)
	}

	// The timer must never arm and the counter outputs must never be driven.
	if board.Timer.(*platform.FakeTimer).Started() {
		t.Fatal("timer armed on a faulty configuration")
	}
	if board.Gate.(*platform.FakePin).IsOutput() || board.Reset.(*platform.FakePin).IsOutput() {
		t.Fatal("counter outputs driven on a faulty configuration")
	}
	opens, closes := svc.Counts()
	if opens != 0 || closes != 0 {
		t.Fatal("gate transitions counted on a faulty configuration")
	}
}
