package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrUnknownMode is returned by ParseMode for unrecognised names.
var ErrUnknownMode = errors.New("unknown mode")

// Mode selects which scene elements are visible and active.
type Mode uint8

const (
	ModeLanding Mode = iota
	ModePublic
	ModePrivate
)

var modeNames = [...]string{"landing", "public", "private"}

// String returns the lowercase mode name.
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", m)
}

// IsChat reports whether the forest ring and participants are shown.
func (m Mode) IsChat() bool { return m == ModePublic || m == ModePrivate }

// ShowsFire reports whether the fire, logs and embers are shown.
func (m Mode) ShowsFire() bool { return m != ModeLanding }

// ParseMode converts a name into a Mode.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Mode(i), nil
		}
	}
	return ModeLanding, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Vec3 is a point or direction in scene space (y up, camera on +z).
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v-o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v*s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}

// Len returns the Euclidean length.
func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// Norm returns v scaled to unit length; the zero vector is returned unchanged.
func (v Vec3) Norm() Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Polar places a point on the ground plane at angle a and distance d.
func Polar(a, d, y float64) Vec3 {
	return Vec3{X: math.Cos(a) * d, Y: y, Z: math.Sin(a) * d}
}

// Size describes viewport dimensions in pixels.
type Size struct {
	W int
	H int
}

// Clock returns the current wall-clock time. Tests inject fixed clocks.
type Clock func() time.Time

// SystemClock is the default Clock.
func SystemClock() time.Time { return time.Now() }

// Millis converts t into Unix milliseconds as float64.
func Millis(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Millisecond)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RGB is a linear colour with components in [0, 1].
type RGB struct {
	R, G, B float64
}

// White is full intensity on every channel.
var White = RGB{1, 1, 1}

// HSL converts hue, saturation and lightness (all in [0, 1]) to RGB.
func HSL(h, s, l float64) RGB {
	if s == 0 {
		return RGB{l, l, l}
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return RGB{
		R: hueToChannel(p, q, h+1.0/3),
		G: hueToChannel(p, q, h),
		B: hueToChannel(p, q, h-1.0/3),
	}
}

func hueToChannel(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*6*(2.0/3-t)
	}
	return p
}
