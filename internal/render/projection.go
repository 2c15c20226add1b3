// Package render draws scene state. Projection and sprite helpers are pure and
// build everywhere; the ebiten painter needs the ebiten build tag.
package render

import (
	"math"
	"sort"

	"campfire/internal/core"
	"campfire/internal/scene"
)

// Projector maps world positions onto a screen through a perspective camera.
type Projector struct {
	eye   core.Vec3
	fwd   core.Vec3
	right core.Vec3
	up    core.Vec3
	focal float64
	cx    float64
	cy    float64
	near  float64
	far   float64
}

// NewProjector builds a projector for cam on a w×h surface.
func NewProjector(cam scene.Camera, w, h int) Projector {
	fwd := cam.Target.Sub(cam.Position).Norm()
	right := fwd.Cross(core.Vec3{Y: 1}).Norm()
	fov := cam.FOV
	if fov <= 0 {
		fov = 50
	}
	return Projector{
		eye:   cam.Position,
		fwd:   fwd,
		right: right,
		up:    right.Cross(fwd),
		focal: float64(h) / 2 / math.Tan(fov*math.Pi/360),
		cx:    float64(w) / 2,
		cy:    float64(h) / 2,
		near:  cam.Near,
		far:   cam.Far,
	}
}

// Project returns the screen position and view depth of v. ok is false when
// v lies outside the near and far planes.
func (p Projector) Project(v core.Vec3) (x, y, depth float64, ok bool) {
	d := v.Sub(p.eye)
	depth = d.Dot(p.fwd)
	if depth < p.near || (p.far > 0 && depth > p.far) {
		return 0, 0, depth, false
	}
	x = p.cx + d.Dot(p.right)/depth*p.focal
	y = p.cy - d.Dot(p.up)/depth*p.focal
	return x, y, depth, true
}

// PixelsPerUnit is the screen size of one world unit at depth.
func (p Projector) PixelsPerUnit(depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	return p.focal / depth
}

// Depth returns the view depth of v without projecting it.
func (p Projector) Depth(v core.Vec3) float64 { return v.Sub(p.eye).Dot(p.fwd) }

// drawItem is one deferred draw call and its view depth.
type drawItem struct {
	depth float64
	draw  func()
}

func sortBackToFront(items []drawItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].depth > items[j].depth })
}

// Arc samples n+1 ground points on a circle of radius r from angle a0 to a1,
// using the same polar convention as world placement.
func Arc(r, a0, a1 float64, n int) []core.Vec3 {
	if n < 1 {
		n = 1
	}
	out := make([]core.Vec3, 0, n+1)
	for i := 0; i <= n; i++ {
		a := a0 + (a1-a0)*float64(i)/float64(n)
		out = append(out, core.Polar(a, r, 0.02))
	}
	return out
}
