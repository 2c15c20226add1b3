package core

import "time"

// FixedStep helps run scene updates at a steady ticks-per-second rate.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	clock       Clock
}

// NewFixedStep constructs a FixedStep controller targeting the given TPS.
func NewFixedStep(tps int) *FixedStep {
	if tps <= 0 {
		tps = 60
	}
	fs := &FixedStep{clock: SystemClock}
	fs.SetTPS(tps)
	fs.accumulator = fs.step
	return fs
}

// WithClock replaces the time source. It returns f for chaining.
func (f *FixedStep) WithClock(c Clock) *FixedStep {
	if c != nil {
		f.clock = c
	}
	return f
}

// SetTPS changes the tick rate. It is safe to call from the main loop.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	f.step = time.Second / time.Duration(tps)
}

// Step returns the duration of one tick.
func (f *FixedStep) Step() time.Duration { return f.step }

// ShouldStep reports whether the scene should advance by one tick.
func (f *FixedStep) ShouldStep() bool {
	now := f.clock()
	if f.last.IsZero() {
		f.last = now
	}
	delta := now.Sub(f.last)
	f.last = now
	f.accumulator += delta
	if f.accumulator >= f.step {
		f.accumulator -= f.step
		// Drop backlog after a stall so the scene does not fast-forward.
		if f.accumulator > 4*f.step {
			f.accumulator = 0
		}
		return true
	}
	return false
}
