package core

import "math"

// DefaultSeed is used whenever a build is requested with a zero seed.
const DefaultSeed int64 = 12345

const (
	lcgMul = 9301
	lcgInc = 49297
	lcgMod = 233280
)

// RNG is the linear-congruential generator shared by every client of a room.
// The sequence is a pure function of the seed and the number of draws, so two
// builders fed the same seed produce bit-identical placements.
type RNG struct {
	state int64
	draws int
}

// NewRNG creates a generator positioned at the start of the stream for seed.
func NewRNG(seed int64) *RNG {
	r := &RNG{}
	r.Seed(seed)
	return r
}

// Seed resets the generator. A zero seed selects DefaultSeed.
func (r *RNG) Seed(seed int64) {
	if seed == 0 {
		seed = DefaultSeed
	}
	r.state = seed
	r.draws = 0
}

// Next advances the stream and returns a value in [0, 1).
// Negative seeds keep the sign of the remainder, matching truncated modulo.
func (r *RNG) Next() float64 {
	r.state = (r.state*lcgMul + lcgInc) % lcgMod
	r.draws++
	return float64(r.state) / lcgMod
}

// Range returns lo + Next()*(hi-lo).
func (r *RNG) Range(lo, hi float64) float64 {
	return lo + r.Next()*(hi-lo)
}

// Angle returns a draw scaled to [0, 2π).
func (r *RNG) Angle() float64 {
	return r.Next() * 2 * math.Pi
}

// State exposes the raw generator state.
func (r *RNG) State() int64 { return r.state }

// Draws reports how many values were drawn since the last Seed.
func (r *RNG) Draws() int { return r.draws }
