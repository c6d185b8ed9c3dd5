package anim

import "time"

// Clamp01 limits v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Lerp interpolates from a to b by t without clamping.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Progress returns elapsed/d clamped to [0,1]. A non-positive duration is
// already complete. Negative elapsed (clock stepped back) reads as 0.
func Progress(elapsed, d time.Duration) float64 {
	if d <= 0 {
		return 1
	}
	return Clamp01(float64(elapsed) / float64(d))
}

// Seconds converts a duration since origin into fractional seconds, used as
// the phase input for breathing and shimmer oscillators.
func Seconds(now, origin time.Time) float64 {
	return now.Sub(origin).Seconds()
}
