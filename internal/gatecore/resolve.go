// internal/gatecore/resolve.go
package gatecore

import (
	"freqgate-go/errcode"
	"freqgate-go/x/mathx"
)

// Params are the three build-time constants an integrator picks. Legal
// combinations are constrained by Resolve; an illegal combination is a
// configuration fault, never a runtime error.
type Params struct {
	ClockHz     uint32 // oscillator, whole MHz, >= 4 MHz
	FullScaleHz uint32 // input frequency at which the counter's top displayed bit toggles
	Prescaler   uint16 // timer prescaler divisor: 2/4/8/16/32/64/128/256
}

// maxGateTicks is the timer budget per gate half-period. The bound comes
// from the 10x range: the extended preload is -(10*ticks) and must still fit
// the 8-bit timer, so ticks may not exceed 25 (250 prescaled ticks).
const maxGateTicks = 25

// displaySpan is 2^11: the ripple counter's top displayed output sits eleven
// stages above its clock input (stages 4..11 of a 12-stage counter drive the
// LEDs; the bottom three stages are wired through but not shown).
const displaySpan = 2048

// Timebase is the resolved measurement configuration. It is computed once
// and never changes; the live reload value consulted by the ISR starts from
// Preload and is switched between Preload and ExtPreload by the range loop.
type Timebase struct {
	Params

	Ticks        uint8 // prescaled ticks per gate half-period, 1..25
	Preload      uint8 // two's-complement -Ticks: timer counts up to overflow
	ExtPreload   uint8 // two's-complement -(10*Ticks) for the 10x range
	PrescaleCode uint8 // hardware prescaler selector
}

// prescaleCode maps a prescaler divisor to its hardware selector. Fixed
// lookup, applied once when the timer is configured.
func prescaleCode(div uint16) (uint8, bool) {
	switch div {
	case 2:
		return 0, true
	case 4:
		return 1, true
	case 8:
		return 2, true
	case 16:
		return 3, true
	case 32:
		return 4, true
	case 64:
		return 5, true
	case 128:
		return 6, true
	case 256:
		return 7, true
	default:
		return 0, false
	}
}

// Resolve derives the timer reload constants from p, or rejects the
// combination. The gate half-period in instruction cycles is
//
//	cycles = (ClockHz/1e6/4) * (1000*2048) / (FullScaleHz/1000)
//
// where one instruction cycle is four clock periods. Every division must be
// exact, cycles must divide evenly by the prescaler, and the quotient must
// fit the timer budget.
func Resolve(p Params) (Timebase, error) {
	if p.ClockHz < 4_000_000 || p.ClockHz%1_000_000 != 0 {
		return Timebase{}, &errcode.E{C: errcode.InvalidClock, Op: "gatecore.Resolve",
			Msg: "clock must be a whole number of MHz, at least 4 MHz"}
	}
	if p.FullScaleHz == 0 || p.FullScaleHz%1000 != 0 {
		return Timebase{}, &errcode.E{C: errcode.InvalidFullScale, Op: "gatecore.Resolve",
			Msg: "full-scale frequency must be a whole number of kHz"}
	}
	code, ok := prescaleCode(p.Prescaler)
	if !ok {
		return Timebase{}, &errcode.E{C: errcode.InvalidPrescaler, Op: "gatecore.Resolve",
			Msg: "prescaler must be a power of two between 2 and 256"}
	}

	mips, ok := mathx.DivExact(uint64(p.ClockHz/1_000_000), 4)
	if !ok {
		return Timebase{}, &errcode.E{C: errcode.InexactTimebase, Op: "gatecore.Resolve",
			Msg: "clock MHz not divisible by 4"}
	}
	cycles, ok := mathx.DivExact(mips*1000*displaySpan, uint64(p.FullScaleHz/1000))
	if !ok {
		return Timebase{}, &errcode.E{C: errcode.InexactTimebase, Op: "gatecore.Resolve",
			Msg: "gate window is not a whole number of instruction cycles"}
	}
	ticks, ok := mathx.DivExact(cycles, uint64(p.Prescaler))
	if !ok {
		return Timebase{}, &errcode.E{C: errcode.InexactTimebase, Op: "gatecore.Resolve",
			Msg: "cycle count not divisible by the prescaler"}
	}
	if ticks == 0 || ticks > maxGateTicks {
		return Timebase{}, &errcode.E{C: errcode.GateTooLong, Op: "gatecore.Resolve",
			Msg: "prescaled tick count outside 1..25"}
	}

	n := uint8(ticks)
	return Timebase{
		Params:       p,
		Ticks:        n,
		Preload:      -n,      // 256 - ticks, two's complement
		ExtPreload:   -n * 10, // 256 - 10*ticks; fits because ticks <= 25
		PrescaleCode: code,
	}, nil
}

// GateNs is the nominal gate half-period in nanoseconds.
func (tb Timebase) GateNs() uint64 {
	return mathx.RoundDiv(uint64(tb.Ticks)*uint64(tb.Prescaler)*4*1_000_000_000, uint64(tb.ClockHz))
}

// TopHz is the highest displayable input frequency: the bit above the
// full-scale bit would toggle there.
func (tb Timebase) TopHz() uint64 { return 2 * uint64(tb.FullScaleHz) }

// ResolutionHz is the weight of the lowest displayed bit, seven stages below
// the full-scale bit (8 LEDs).
func (tb Timebase) ResolutionHz() uint32 { return tb.FullScaleHz / 128 }
