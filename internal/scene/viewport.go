package scene

import (
	"time"

	"campfire/internal/core"
)

// Camera describes the perspective camera.
type Camera struct {
	Position core.Vec3
	Target   core.Vec3
	FOV      float64
	Aspect   float64
	Near     float64
	Far      float64
}

// Viewport thresholds.
const (
	MobileWidth     = 1024
	HeightTolerance = 300
)

// CameraFor returns the preset camera for a viewport. Portrait viewports pull
// the camera back so the whole participant ring fits.
func CameraFor(size core.Size, immersive bool) Camera {
	c := Camera{FOV: 50, Near: 0.1, Far: 100, Aspect: 1}
	if size.H > 0 {
		c.Aspect = float64(size.W) / float64(size.H)
	}
	if size.W < size.H {
		c.Position = core.Vec3{Y: 5, Z: 12}
		if immersive {
			c.Position = core.Vec3{Y: 5.5, Z: 14}
		}
		c.Target = core.Vec3{Y: 1.2}
		return c
	}
	c.Position = core.Vec3{Y: 4, Z: 10}
	if immersive {
		c.Position.Z = 9
	}
	c.Target = core.Vec3{Y: 1}
	return c
}

// Viewport tracks the applied size and ignores the small height changes a
// virtual keyboard causes on narrow screens.
type Viewport struct {
	requested core.Size
	applied   core.Size
	immersive bool
	Camera    Camera
}

// NewViewport returns a viewport with the default landscape camera.
func NewViewport(immersive bool) *Viewport {
	return &Viewport{immersive: immersive, Camera: CameraFor(core.Size{W: 16, H: 9}, immersive)}
}

// Size returns the applied size.
func (v *Viewport) Size() core.Size { return v.applied }

// Resize applies a new size unless it is a height-only change below the
// tolerance on a narrow screen. It reports whether the size was applied.
func (v *Viewport) Resize(w, h int) bool {
	v.requested = core.Size{W: w, H: h}
	if w <= 0 || h <= 0 {
		return false
	}
	if w < MobileWidth && v.applied.W == w && abs(v.applied.H-h) < HeightTolerance {
		return false
	}
	v.applied = core.Size{W: w, H: h}
	v.Camera = CameraFor(v.applied, v.immersive)
	return true
}

// SetImmersive switches between the normal and immersive camera presets.
func (v *Viewport) SetImmersive(on bool) {
	if v.immersive == on {
		return
	}
	v.immersive = on
	if v.applied.W > 0 {
		v.Camera = CameraFor(v.applied, on)
	}
}

// replay re-runs the last requested resize.
func (v *Viewport) replay() bool {
	return v.Resize(v.requested.W, v.requested.H)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// SettleOffsets are the delays after a mode change at which the last resize
// is replayed while the surrounding layout animates.
var SettleOffsets = []time.Duration{
	50 * time.Millisecond,
	500 * time.Millisecond,
	1000 * time.Millisecond,
	1500 * time.Millisecond,
	2000 * time.Millisecond,
}

// settle is a polled replacement for a burst of one-shot timers.
type settle struct {
	start time.Time
	next  int
}

func (s *settle) begin(now time.Time) {
	s.start = now
	s.next = 0
}

func (s *settle) active() bool { return !s.start.IsZero() && s.next < len(SettleOffsets) }

// due reports how many offsets have elapsed since the last poll.
func (s *settle) due(now time.Time) int {
	n := 0
	for s.active() && now.Sub(s.start) >= SettleOffsets[s.next] {
		s.next++
		n++
	}
	return n
}
