// internal/gatecore/rangesel.go
package gatecore

// RangeSelect is the foreground half of the meter: once per iteration it
// samples the range input as a level (active low, no debounce - the effect
// only matters while sampled and is reapplied every pass) and republishes
// either the nominal or the 10x preload into the shared reload cell, with
// the status LED mirroring the asserted state.
//
// The 10x preload stretches the gate window tenfold, dividing the displayed
// range by ten for low-frequency work at the cost of a 10x slower display
// update. No new resolution pass is needed.
type RangeSelect struct {
	btn  GPIOPin // active low
	led  GPIOPin // active high
	cell *ReloadCell

	nominal  uint8
	extended uint8
}

func NewRangeSelect(btn, led GPIOPin, cell *ReloadCell, tb Timebase) (*RangeSelect, error) {
	if err := btn.ConfigureInput(PullUp); err != nil {
		return nil, err
	}
	if err := led.ConfigureOutput(false); err != nil {
		return nil, err
	}
	return &RangeSelect{
		btn:      btn,
		led:      led,
		cell:     cell,
		nominal:  tb.Preload,
		extended: tb.ExtPreload,
	}, nil
}

// Step performs one foreground iteration and reports whether the extended
// range is selected. The ISR picks the new preload up on its next expiry at
// the latest.
func (r *RangeSelect) Step() bool {
	if !r.btn.Get() {
		r.cell.Store(r.extended)
		r.led.Set(true)
		return true
	}
	r.cell.Store(r.nominal)
	r.led.Set(false)
	return false
}
