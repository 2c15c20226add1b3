// Package fire simulates the fuel level of the campfire and everything that
// is derived from it: ember pools, light flicker and the hearth meshes.
package fire

import "math"

// Fuel tuning.
const (
	BaseFuel   = 0.25
	UserPulse  = 0.4
	MaxPulse   = 1.25
	MaxFuel    = 3.0
	FlareBoost = 1.2
	EaseRate   = 0.02
	DecayStep  = 0.01
)

// Fuel eases a current level toward a target. The target never rests below
// a baseline that grows with the number of people in the room.
type Fuel struct {
	Current float64
	Target  float64
	users   int
}

// NewFuel returns a cold fire whose target is the empty-room baseline.
func NewFuel() *Fuel {
	f := &Fuel{}
	f.Target = f.Baseline()
	return f
}

// Baseline returns BaseFuel + min(users*UserPulse, MaxPulse).
func (f *Fuel) Baseline() float64 {
	return Baseline(f.users)
}

// Baseline returns the fuel floor for n users.
func Baseline(n int) float64 {
	if n < 0 {
		n = 0
	}
	return BaseFuel + math.Min(float64(n)*UserPulse, MaxPulse)
}

// Users reports the current user count.
func (f *Fuel) Users() int { return f.users }

// SetUserCount resets the target to the baseline for n users.
func (f *Fuel) SetUserCount(n int) {
	if n < 0 {
		n = 0
	}
	f.users = n
	f.Target = f.Baseline()
}

// Flare spikes the target, capped at MaxFuel.
func (f *Fuel) Flare() {
	f.Target = math.Min(f.Target+FlareBoost, MaxFuel)
}

// Tick eases the current level and decays the target toward the baseline.
func (f *Fuel) Tick() {
	f.Current += (f.Target - f.Current) * EaseRate
	base := f.Baseline()
	switch {
	case f.Target > base:
		f.Target = math.Max(base, f.Target-DecayStep)
	case f.Target < base:
		f.Target = base
	}
}
