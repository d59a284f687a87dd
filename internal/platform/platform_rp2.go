// internal/platform/platform_rp2.go
//go:build rp2040

package platform

import (
	"device/rp"
	"machine"
	"runtime/interrupt"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/ssd1306"

	"freqgate-go/internal/gatecore"
	"freqgate-go/x/mathx"
)

// -----------------------------------------------------------------------------
// GPIO
// -----------------------------------------------------------------------------

type rp2Pin struct {
	p machine.Pin
	n int
}

func (r *rp2Pin) ConfigureInput(pull gatecore.Pull) error {
	var mode machine.PinMode
	switch pull {
	case gatecore.PullUp:
		mode = machine.PinInputPullup
	case gatecore.PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rp2Pin) Set(level bool) { r.p.Set(level) }
func (r *rp2Pin) Get() bool      { return r.p.Get() }

func (r *rp2Pin) Toggle() {
	if r.p.Get() {
		r.p.Low()
	} else {
		r.p.High()
	}
}

func (r *rp2Pin) Number() int { return r.n }

// -----------------------------------------------------------------------------
// Interval timer on TIMER alarm 1
// -----------------------------------------------------------------------------

// The TinyGo runtime owns alarm 0 for sleeping; alarm 1 is free. The alarm
// comparator is 32-bit microseconds, so each expiry schedules the next one
// from the previous target (not from "now") to keep the gate period free of
// ISR-latency drift.

var gateTimer rp2Timer

type rp2Timer struct {
	h func()

	// One prescaled tick lasts Prescaler*4 clock periods; kept as a
	// rational (num µs-ticks per den Hz) to avoid rounding until the full
	// interval is known.
	clockHz   uint32
	prescaler uint16

	nextTicks uint32 // prescaled ticks until the next expiry (256 - preload)
	target    uint32 // last programmed alarm time, µs
}

func (t *rp2Timer) Configure(cfg gatecore.TimerConfig) error {
	t.clockHz = cfg.ClockHz
	t.prescaler = cfg.Prescaler
	// cfg.PrescaleCode selects a hardware prescaler on parts that have one;
	// here the prescaling folds into the µs conversion below.
	return nil
}

func (t *rp2Timer) SetHandler(h func()) { t.h = h }

func (t *rp2Timer) Preload(v uint8) { t.nextTicks = 256 - uint32(v) }

func (t *rp2Timer) deltaUs() uint32 {
	return uint32(mathx.RoundDiv(
		uint64(t.nextTicks)*uint64(t.prescaler)*4*1_000_000,
		uint64(t.clockHz)))
}

func (t *rp2Timer) Start() error {
	intr := interrupt.New(rp.IRQ_TIMER_IRQ_1, gateAlarmISR)
	rp.TIMER.INTE.SetBits(rp.TIMER_INTE_ALARM_1)
	intr.Enable()

	t.target = rp.TIMER.TIMERAWL.Get() + t.deltaUs()
	rp.TIMER.ALARM1.Set(t.target)
	return nil
}

func (t *rp2Timer) Stop() {
	rp.TIMER.ARMED.Set(rp.TIMER_ARMED_ALARM_1) // writing 1 disarms
	rp.TIMER.INTE.ClearBits(rp.TIMER_INTE_ALARM_1)
}

func gateAlarmISR(interrupt.Interrupt) {
	rp.TIMER.INTR.Set(rp.TIMER_INTR_ALARM_1) // acknowledge

	t := &gateTimer
	if t.h != nil {
		t.h() // reloads nextTicks via Preload
	}
	t.target += t.deltaUs()
	rp.TIMER.ALARM1.Set(t.target)
}

// -----------------------------------------------------------------------------
// Minimum-width hold
// -----------------------------------------------------------------------------

// rp2Hold busy-waits on the raw µs timer. The extra microsecond covers the
// partially elapsed one at the start, so the wait is a true lower bound.
type rp2Hold struct {
	widthNs uint64
}

func (h rp2Hold) Hold() {
	us := uint32(mathx.CeilDiv(h.widthNs, 1000)) + 1
	start := rp.TIMER.TIMERAWL.Get()
	for rp.TIMER.TIMERAWL.Get()-start < us {
	}
}

// -----------------------------------------------------------------------------
// Board
// -----------------------------------------------------------------------------

// Default brings up the Pico wiring: gate/reset outputs and range pins on
// GP2/GP3/GP6/GP7, the diagnostic console on UART0 and, when fitted, an
// SSD1306 status panel on I2C0's default pins.
func Default() *Board {
	uartx.UART0.Configure(uartx.UARTConfig{BaudRate: 115200})

	_ = machine.I2C0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})
	disp := ssd1306.NewI2C(machine.I2C0)
	disp.Configure(ssd1306.Config{Width: 128, Height: 64, Address: 0x3C, VccState: ssd1306.SWITCHCAPVCC})
	disp.ClearDisplay()

	return &Board{
		Gate:     &rp2Pin{p: machine.Pin(pinGate), n: pinGate},
		Reset:    &rp2Pin{p: machine.Pin(pinReset), n: pinReset},
		RangeBtn: &rp2Pin{p: machine.Pin(pinRangeBtn), n: pinRangeBtn},
		RangeLED: &rp2Pin{p: machine.Pin(pinRangeLED), n: pinRangeLED},
		Timer:    &gateTimer,
		Hold:     rp2Hold{widthNs: minResetPulseNs},
		Display:  &disp,
		Diag:     uartx.UART0,
	}
}
