package anim

import "time"

// Ramp linearly animates a scalar from one value to another over a duration,
// pushing every intermediate value into onTick. Ramps keep their own start
// time and share nothing, so several can run side by side and finish at their
// own pace.
type Ramp struct {
	start    time.Time
	from, to float64
	duration time.Duration
	onTick   func(float64)
	done     bool
}

// NewRamp starts a ramp at start. onTick may be nil.
func NewRamp(start time.Time, from, to float64, duration time.Duration, onTick func(float64)) *Ramp {
	return &Ramp{
		start:    start,
		from:     from,
		to:       to,
		duration: duration,
		onTick:   onTick,
	}
}

// Step emits the value for now and reports whether the ramp has completed.
// Once complete, further calls do nothing.
func (r *Ramp) Step(now time.Time) bool {
	if r.done {
		return true
	}
	p := Progress(now.Sub(r.start), r.duration)
	if p >= 1 {
		r.finish()
		return true
	}
	r.emit(Lerp(r.from, r.to, p))
	return false
}

// Settle jumps straight to the target value and completes.
func (r *Ramp) Settle() {
	if r.done {
		return
	}
	r.finish()
}

func (r *Ramp) finish() {
	r.done = true
	r.emit(r.to)
}

func (r *Ramp) emit(v float64) {
	if r.onTick != nil {
		r.onTick(v)
	}
}

// Animate is the fire-and-forget form: it starts a ramp on clock and returns
// it for the caller to Step once per redraw.
func Animate(clock Clock, from, to float64, duration time.Duration, onTick func(float64)) *Ramp {
	return NewRamp(clock.Now(), from, to, duration, onTick)
}
