package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	"campfire/internal/core"
)

// Digest fingerprints every seeded placement in build order. Two clients on
// the same seed must print the same digest. The moon and the firefly drift
// state are excluded because they follow the wall clock.
func (b *Bundle) Digest() string {
	h := sha256.New()
	var buf [8]byte
	f := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	binary.LittleEndian.PutUint64(buf[:], uint64(b.Seed))
	h.Write(buf[:])
	for _, t := range b.Trees {
		vec(f, t.Position)
		f(t.Scale)
		f(t.RotY)
	}
	for _, c := range b.Grass {
		vec(f, c.Position)
		f(c.Scale)
		f(c.RotY)
		for _, bl := range c.Blades {
			vec(f, bl.Offset)
			f(bl.TiltX)
		}
	}
	for _, r := range b.Boulders {
		vec(f, r.Position)
		vec(f, r.Rotation)
		f(r.Radius)
	}
	for _, m := range b.Moss {
		vec(f, m.Position)
		f(m.Scale)
	}
	for _, n := range b.Litter {
		vec(f, n.Position)
		f(n.RotZ)
	}
	writePoints(f, b.Mist)
	writePoints(f, b.Stars)
	for _, ff := range b.Fireflies {
		f(ff.BaseY)
		f(ff.Offset)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func vec(f func(float64), v core.Vec3) {
	f(v.X)
	f(v.Y)
	f(v.Z)
}

func writePoints(f func(float64), pts []core.Vec3) {
	for _, p := range pts {
		vec(f, p)
	}
}
