package mathx

// DivExact returns a/b and whether the division left no remainder.
// The timebase maths must never truncate, so callers treat ok=false as a
// configuration fault rather than rounding.
func DivExact[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](a, b T) (T, bool) {
	if b == 0 {
		return 0, false
	}
	return a / b, a%b == 0
}

// CeilDiv returns ceil(a/b) for positive integers.
// For non-positive inputs, behaviour is implementation-defined - keep to positives for firmware maths.
func CeilDiv[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// RoundDiv returns floor((a + b/2)/b), classic rounding for positives.
func RoundDiv[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b/2) / b
}
