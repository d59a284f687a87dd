package errcode

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
//
// The firmware has exactly one fault class - an invalid timebase
// configuration, detected once at initialisation. The codes below name its
// causes so the diagnostic console can say which constraint failed.
const (
	OK Code = "ok"

	InvalidClock     Code = "invalid_clock"      // not a whole number of MHz, or below 4 MHz
	InvalidFullScale Code = "invalid_full_scale" // not a whole number of kHz, or zero
	InvalidPrescaler Code = "invalid_prescaler"  // not one of 2/4/8/16/32/64/128/256
	InexactTimebase  Code = "inexact_timebase"   // the cycle count truncates somewhere
	GateTooLong      Code = "gate_too_long"      // prescaled tick count exceeds the timer budget

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
