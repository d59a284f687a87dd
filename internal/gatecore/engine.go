// internal/gatecore/engine.go
package gatecore

import "sync/atomic"

// Engine is the gate-timer state machine. Once armed it runs forever on the
// timer's overflow interrupt, alternately opening and closing the external
// counter's gate and clearing the counter at the start of every open window.
//
// The gate phase is carried entirely by the gate-enable pin level; there is
// no shadow copy. The closed phase is the hold interval: the count
// accumulated in the previous window stays on the display outputs while the
// next window runs, so the display lags by one window.
type Engine struct {
	timer IntervalTimer
	gate  GPIOPin // gate-enable: high lets input pulses reach the counter
	reset GPIOPin // counter reset: active high, pulsed
	hold  Hold    // minimum reset pulse width

	cell ReloadCell

	// ISR transition counters, diagnostics only.
	opens  uint32
	closes uint32
}

func NewEngine(timer IntervalTimer, gate, reset GPIOPin, hold Hold) *Engine {
	return &Engine{timer: timer, gate: gate, reset: reset, hold: hold}
}

// Reload exposes the shared reload cell for the foreground range-select loop.
func (e *Engine) Reload() *ReloadCell { return &e.cell }

// Arm configures the output pins to their idle levels, seeds the reload cell
// with the nominal preload and starts the timer. The reset line is driven
// high here and stays high until the first gate-open pulse completes, which
// keeps the external counter cleared until measurement actually begins.
func (e *Engine) Arm(tb Timebase) error {
	if err := e.gate.ConfigureOutput(false); err != nil {
		return err
	}
	if err := e.reset.ConfigureOutput(true); err != nil {
		return err
	}

	e.cell.Store(tb.Preload)

	cfg := TimerConfig{ClockHz: tb.ClockHz, Prescaler: tb.Prescaler, PrescaleCode: tb.PrescaleCode}
	if err := e.timer.Configure(cfg); err != nil {
		return err
	}
	e.timer.SetHandler(e.onExpiry)
	e.timer.Preload(tb.Preload)
	return e.timer.Start()
}

// Stop disarms the timer. The running system never stops; this exists for
// host-side tests and orderly shutdown of the host simulator.
func (e *Engine) Stop() { e.timer.Stop() }

// onExpiry runs in interrupt context: bounded, allocation-free, never waits
// on anything except the fixed-width reset hold.
func (e *Engine) onExpiry() {
	// Reload first so the next half-period starts from the value in force
	// now; a mode switch later in this period takes effect one period on.
	e.timer.Preload(e.cell.Load())
	e.gate.Toggle()
	if e.gate.Get() {
		// Gate just opened: clear the counter so the window counts from
		// zero. Pulsing here rather than at close keeps the pulse clear of
		// the live window regardless of propagation delay.
		e.reset.Set(true)
		e.hold.Hold()
		e.reset.Set(false)
		atomic.AddUint32(&e.opens, 1)
	} else {
		atomic.AddUint32(&e.closes, 1)
	}
}

// Counts reports gate-open and gate-close transitions seen so far.
func (e *Engine) Counts() (opens, closes uint32) {
	return atomic.LoadUint32(&e.opens), atomic.LoadUint32(&e.closes)
}
