package common

// Gravity is the downward acceleration applied to dynamic bodies.
// Screen-down coordinates: positive Y points down, so "up" is negative Y.
const Gravity = 900.0

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
