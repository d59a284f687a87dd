// cmd/hostsim/main.go
//go:build !rp2040

package main

import (
	"context"
	"fmt"
	"time"

	"freqgate-go/bus"
	"freqgate-go/internal/platform"
	"freqgate-go/services/meter"
	"freqgate-go/types"
)

// hostsim runs the full meter stack against the host fakes and stands in
// for the timer hardware: it fires expiries at whatever interval the current
// preload encodes, so the printed waveform shows the real gate timing,
// including the 10x stretch while the simulated button is held.

const (
	nominalPhase  = 1 * time.Second
	extendedPhase = 2 * time.Second
)

func waitReady(sub *bus.Subscription, d time.Duration) bool {
	dead := time.Now().Add(d)
	for time.Now().Before(dead) {
		select {
		case m := <-sub.Channel():
			if st, ok := m.Payload.(types.MeterState); ok {
				if st.Level == types.LevelReady {
					return true
				}
				if st.Level == types.LevelFault {
					fmt.Println("[hostsim] meter fault:", st.Status)
					return false
				}
			}
		default:
			time.Sleep(time.Millisecond)
		}
	}
	return false
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	board := platform.Default()
	b := bus.NewBus(8)

	svc := meter.New(board, meter.Options{
		Params: meter.Params{ClockHz: 12_000_000, FullScaleHz: 6_400_000, Prescaler: 64},
		Poll:   time.Millisecond,
	})
	go func() { _ = svc.Run(ctx, b.NewConnection("meter")) }()

	obs := b.NewConnection("sim")
	if !waitReady(obs.Subscribe(meter.TopicState()), 5*time.Second) {
		fmt.Println("[hostsim] meter not ready; giving up")
		return
	}

	// Stand-in timer hardware.
	timer := board.Timer.(*platform.FakeTimer)
	go func() {
		for ctx.Err() == nil {
			iv := timer.IntervalNs()
			if iv == 0 {
				time.Sleep(time.Millisecond)
				continue
			}
			time.Sleep(time.Duration(iv))
			timer.Fire()
		}
	}()

	report := func(tag string) {
		opens, closes := svc.Counts()
		fmt.Printf("[hostsim] %-8s gate=%v led=%v opens=%d closes=%d\n",
			tag, board.Gate.Get(), board.RangeLED.Get(), opens, closes)
	}

	report("start")
	time.Sleep(nominalPhase)
	report("nominal")

	// Hold the 10x button: each half-period stretches from 320 us to 3.2 ms.
	btn := board.RangeBtn.(*platform.FakePin)
	btn.Drive(false)
	time.Sleep(extendedPhase)
	report("extended")

	btn.Drive(true)
	time.Sleep(nominalPhase)
	report("restored")
}
