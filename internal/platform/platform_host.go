// internal/platform/platform_host.go
//go:build !rp2040

package platform

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"freqgate-go/internal/gatecore"
	"freqgate-go/x/mathx"
)

// ----------------------------- GPIO (host) -----------------------------------

// FakePin implements gatecore.GPIOPin for host-side tests and the simulator.
type FakePin struct {
	mu      sync.RWMutex
	number  int
	level   bool
	modeOut bool
	pull    gatecore.Pull
}

func NewFakePin(n int) *FakePin { return &FakePin{number: n} }

func (p *FakePin) ConfigureInput(pull gatecore.Pull) error {
	p.mu.Lock()
	p.modeOut = false
	p.pull = pull
	// A pulled-up input reads high until something drives it.
	if pull == gatecore.PullUp {
		p.level = true
	}
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.modeOut = true
	p.level = initial
	p.mu.Unlock()
	return nil
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	p.level = level
	p.mu.Unlock()
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	v := p.level
	p.mu.RUnlock()
	return v
}

func (p *FakePin) Toggle() { p.Set(!p.Get()) }

func (p *FakePin) Number() int { return p.number }

// Drive simulates an external level on an input pin (e.g. the range button).
func (p *FakePin) Drive(level bool) { p.Set(level) }

// IsOutput reports the configured direction, for assertions.
func (p *FakePin) IsOutput() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modeOut
}

// ----------------------------- Timer (host) ----------------------------------

// FakeTimer implements gatecore.IntervalTimer. Tests and the simulator call
// Fire to stand in for the hardware overflow interrupt.
type FakeTimer struct {
	mu      sync.Mutex
	cfg     gatecore.TimerConfig
	handler func()
	preload uint8
	started bool
}

func (t *FakeTimer) Configure(cfg gatecore.TimerConfig) error {
	t.mu.Lock()
	t.cfg = cfg
	t.mu.Unlock()
	return nil
}

func (t *FakeTimer) SetHandler(h func()) {
	t.mu.Lock()
	t.handler = h
	t.mu.Unlock()
}

func (t *FakeTimer) Preload(v uint8) {
	t.mu.Lock()
	t.preload = v
	t.mu.Unlock()
}

func (t *FakeTimer) Start() error {
	t.mu.Lock()
	t.started = true
	t.mu.Unlock()
	return nil
}

func (t *FakeTimer) Stop() {
	t.mu.Lock()
	t.started = false
	t.mu.Unlock()
}

// Fire delivers one expiry, the way the hardware would.
func (t *FakeTimer) Fire() {
	t.mu.Lock()
	h := t.handler
	run := t.started
	t.mu.Unlock()
	if run && h != nil {
		h()
	}
}

// Started reports whether the timer was armed.
func (t *FakeTimer) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}

// IntervalNs returns the interval the current preload encodes, so the
// simulator can pace Fire calls in real time.
func (t *FakeTimer) IntervalNs() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cfg.ClockHz == 0 {
		return 0
	}
	ticks := uint64(256 - uint16(t.preload))
	return mathx.RoundDiv(ticks*uint64(t.cfg.Prescaler)*4*1_000_000_000, uint64(t.cfg.ClockHz))
}

// ----------------------------- Hold (host) -----------------------------------

// HostHold sleeps for the configured width; time.Sleep guarantees at least
// the requested duration, which is all the contract asks for.
type HostHold struct {
	WidthNs uint64
	calls   uint32
}

func (h *HostHold) Hold() {
	atomic.AddUint32(&h.calls, 1)
	time.Sleep(time.Duration(h.WidthNs))
}

func (h *HostHold) Calls() uint32 { return atomic.LoadUint32(&h.calls) }

// ----------------------------- Board -----------------------------------------

// Default wires a fully fake board writing diagnostics to stdout. No display
// is fitted on the host.
func Default() *Board {
	return &Board{
		Gate:     NewFakePin(pinGate),
		Reset:    NewFakePin(pinReset),
		RangeBtn: NewFakePin(pinRangeBtn),
		RangeLED: NewFakePin(pinRangeLED),
		Timer:    &FakeTimer{},
		Hold:     &HostHold{WidthNs: minResetPulseNs},
		Diag:     os.Stdout,
	}
}
