// internal/platform/platform.go
package platform

import (
	"io"

	"tinygo.org/x/drivers"

	"freqgate-go/internal/gatecore"
)

// Board bundles everything the meter needs from the hardware. Default()
// fills it per target: real pins, the hardware interval timer and the uartx
// console on RP2; fakes and stdout elsewhere so the whole stack runs under
// `go test` and the host simulator.
type Board struct {
	Gate     gatecore.GPIOPin // counter gate-enable
	Reset    gatecore.GPIOPin // counter master reset
	RangeBtn gatecore.GPIOPin // 10x range select, active low
	RangeLED gatecore.GPIOPin // 10x indicator, active high

	Timer gatecore.IntervalTimer
	Hold  gatecore.Hold // minimum reset pulse width

	Display drivers.Displayer // status panel, nil when not fitted
	Diag    io.Writer         // diagnostic console
}

// Pin assignment, RP2 GP numbering. The host fakes reuse the numbers so
// logs and tests read the same on both targets.
const (
	pinGate     = 2 // gate-enable to the counter's clock input gating
	pinReset    = 3 // counter MR
	pinRangeBtn = 6 // 10x button, active low, weak pull-up
	pinRangeLED = 7 // 10x indicator
)

// minResetPulseNs comfortably exceeds the ripple counter's worst-case
// minimum reset width (tens of nanoseconds at 5 V).
const minResetPulseNs = 2_000
