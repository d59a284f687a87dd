// internal/gatecore/types.go
package gatecore

import "sync/atomic"

// ---- GPIO abstractions ----

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

type GPIOPin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
	Toggle()
	Number() int
}

// ---- Interval timer ----

// TimerConfig carries the resolved prescaling for the platform timer.
// PrescaleCode is the hardware selector; ClockHz and Prescaler let platforms
// without a native prescaled 8-bit counter derive the tick period instead
// (one tick = Prescaler * 4 clock periods).
type TimerConfig struct {
	ClockHz      uint32
	Prescaler    uint16
	PrescaleCode uint8
}

// IntervalTimer models an 8-bit up-counting timer with an overflow interrupt:
// after Preload(v) the next expiry fires 256-v prescaled ticks later. The
// handler runs in interrupt context and must stay bounded and allocation-free.
type IntervalTimer interface {
	Configure(cfg TimerConfig) error
	SetHandler(h func())
	Preload(v uint8)
	Start() error
	Stop()
}

// ---- Minimum-width hold ----

// Hold blocks the calling context for at least its configured width. It is a
// correctness primitive, not a pacing convenience: the external counter's
// reset input has a minimum pulse width, so the contract is a lower bound,
// never "about that long".
type Hold interface {
	Hold()
}

// ---- Shared reload cell ----

// ReloadCell is the one piece of mutable state shared across the
// interrupt/foreground boundary: the range-select loop writes it once per
// iteration, the timer ISR reads it once per expiry. Single writer, single
// reader, no lock. A read may be stale by at most one gate half-period,
// which the measurement tolerates. Atomic load/store spell out the
// single-word-atomicity assumption the design rests on; a plain shared byte
// would be a data race under the Go memory model even though it cannot tear.
type ReloadCell struct {
	v uint32
}

func (c *ReloadCell) Store(preload uint8) { atomic.StoreUint32(&c.v, uint32(preload)) }
func (c *ReloadCell) Load() uint8         { return uint8(atomic.LoadUint32(&c.v)) }
