package main

import (
	"context"
	"fmt"
	"time"

	"freqgate-go/bus"
	"freqgate-go/internal/platform"
	"freqgate-go/services/heartbeat"
	"freqgate-go/services/meter"
	"freqgate-go/services/panel"
)

// Hardware configuration. The three constants fix the gate timebase and must
// satisfy the resolver's legality rules: whole-MHz clock of at least 4 MHz,
// whole-kHz full scale, power-of-two prescaler, and an exact cycle count of
// at most 25 prescaled ticks.
//
// Suggested combinations:
//
//	20 MHz / 6.4 MHz / 64  -> gate 320 us, top 12.8 MHz, res 50 kHz
//	20 MHz / 3.2 MHz / 128 -> gate 640 us, top  6.4 MHz, res 25 kHz
//	16 MHz / 6.4 MHz / 64  -> gate 320 us, top 12.8 MHz, res 50 kHz
//	12 MHz / 6.4 MHz / 64  -> gate 320 us, top 12.8 MHz, res 50 kHz
const (
	clockHz     = 12_000_000 // timebase oscillator, Hz
	fullScaleHz = 6_400_000  // input frequency at which the top LED bit toggles, Hz
	prescaler   = 64         // timer prescaler divisor
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	ctx := context.Background()
	board := platform.Default()
	b := bus.NewBus(8)

	svc := meter.New(board, meter.Options{
		Params: meter.Params{ClockHz: clockHz, FullScaleHz: fullScaleHz, Prescaler: prescaler},
	})

	if tb, err := svc.Timebase(); err == nil {
		fmt.Fprintf(board.Diag, "freqgate: %d ticks @ prescale %d, gate %d us, top %d Hz, res %d Hz\n",
			tb.Ticks, tb.Prescaler, tb.GateNs()/1000, tb.TopHz(), tb.ResolutionHz())
	}

	hb := &heartbeat.Service{Counts: svc.Counts}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))
	_ = panel.New(board.Display).Start(ctx, b.NewConnection("panel"))

	if err := svc.Run(ctx, b.NewConnection("meter")); err != nil {
		// Configuration fault: the timer was never armed and the counter
		// outputs are idle. Say why, then park in that safe state.
		fmt.Fprintf(board.Diag, "freqgate: configuration fault: %v\n", err)
		for {
			time.Sleep(time.Hour)
		}
	}
}
