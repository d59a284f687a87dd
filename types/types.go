package types

// ------------------------
// Meter state (retained)
// ------------------------

type MeterState struct {
	Level  string `json:"level"`  // "resolving", "ready", "fault"
	Status string `json:"status"` // freeform short code (errcode on fault)
	TS     int64  `json:"ts_ms"`  // publish Unix ms
}

const (
	LevelResolving = "resolving"
	LevelReady     = "ready"
	LevelFault     = "fault"
)

// ------------------------
// Timebase (retained)
// ------------------------

// TimebaseInfo is the resolved measurement configuration, published once the
// gate timer is armed. TopHz/ResolutionHz describe the nominal (1x) range;
// the 10x range divides both by ten.
type TimebaseInfo struct {
	ClockHz      uint32 `json:"clock_hz"`
	FullScaleHz  uint32 `json:"full_scale_hz"`
	Prescaler    uint16 `json:"prescaler"`
	Ticks        uint8  `json:"ticks"`   // prescaled ticks per gate half-period
	GateNs       uint64 `json:"gate_ns"` // nominal gate half-period
	TopHz        uint64 `json:"top_hz"`  // highest displayable frequency
	ResolutionHz uint32 `json:"res_hz"`  // weight of the lowest displayed bit
}

// ------------------------
// Range mode
// ------------------------

// RangeValue mirrors the sampled range-select input (retained).
type RangeValue struct {
	Extended bool `json:"extended"` // true while the 10x range is selected
}
