package render

import (
	"image/color"
	"math"
	"testing"

	"campfire/internal/core"
	"campfire/internal/fire"
	"campfire/internal/gfx"
	"campfire/internal/scene"
)

func TestProjectCentersTarget(t *testing.T) {
	cam := scene.CameraFor(core.Size{W: 1280, H: 720}, false)
	p := NewProjector(cam, 1280, 720)
	x, y, depth, ok := p.Project(cam.Target)
	if !ok {
		t.Fatal("expected the target to be visible")
	}
	if math.Abs(x-640) > 1e-6 || math.Abs(y-360) > 1e-6 {
		t.Fatalf("expected the target at the centre, got %.3f,%.3f", x, y)
	}
	want := cam.Target.Sub(cam.Position).Len()
	if math.Abs(depth-want) > 1e-9 {
		t.Fatalf("expected depth %v, got %v", want, depth)
	}
}

func TestProjectOrientation(t *testing.T) {
	cam := scene.CameraFor(core.Size{W: 800, H: 600}, false)
	p := NewProjector(cam, 800, 600)
	lx, _, _, _ := p.Project(core.Vec3{X: -1, Y: 1})
	rx, _, _, _ := p.Project(core.Vec3{X: 1, Y: 1})
	if lx >= rx {
		t.Fatalf("expected -X left of +X, got %v >= %v", lx, rx)
	}
	_, low, _, _ := p.Project(core.Vec3{Y: 0})
	_, high, _, _ := p.Project(core.Vec3{Y: 3})
	if high >= low {
		t.Fatalf("expected higher points nearer the top, got %v >= %v", high, low)
	}
	_, _, near, _ := p.Project(core.Vec3{Z: 3})
	_, _, far, _ := p.Project(core.Vec3{Z: -3})
	if near >= far {
		t.Fatalf("expected +Z nearer the camera, got %v >= %v", near, far)
	}
	if p.PixelsPerUnit(near) <= p.PixelsPerUnit(far) {
		t.Fatal("expected nearer objects to draw larger")
	}
}

func TestProjectClipsBehindCamera(t *testing.T) {
	cam := scene.CameraFor(core.Size{W: 800, H: 600}, false)
	p := NewProjector(cam, 800, 600)
	if _, _, _, ok := p.Project(cam.Position.Add(core.Vec3{Z: 1})); ok {
		t.Fatal("expected a point behind the camera to be clipped")
	}
	if _, _, _, ok := p.Project(core.Vec3{Z: -500}); ok {
		t.Fatal("expected a point past the far plane to be clipped")
	}
}

func TestSortBackToFront(t *testing.T) {
	var order []int
	items := []drawItem{
		{depth: 2, draw: func() { order = append(order, 2) }},
		{depth: 9, draw: func() { order = append(order, 9) }},
		{depth: 5, draw: func() { order = append(order, 5) }},
	}
	sortBackToFront(items)
	for _, it := range items {
		it.draw()
	}
	if order[0] != 9 || order[1] != 5 || order[2] != 2 {
		t.Fatalf("expected far to near, got %v", order)
	}
}

func TestFillRadialRGBA(t *testing.T) {
	const size = 16
	buf := make([]byte, size*size*4)
	fillRadialRGBA(buf, size, color.RGBA{R: 255, G: 128, A: 255})
	centre := ((size/2)*size + size/2) * 4
	if buf[centre+3] < 200 {
		t.Fatalf("expected a bright centre, got alpha %d", buf[centre+3])
	}
	if buf[3] != 0 {
		t.Fatalf("expected a transparent corner, got alpha %d", buf[3])
	}
	for i := 0; i < len(buf); i += 4 {
		if buf[i] > buf[i+3] || buf[i+1] > buf[i+3] {
			t.Fatalf("pixel %d not premultiplied: %v", i/4, buf[i:i+4])
		}
	}
}

func TestRGBA(t *testing.T) {
	c := rgba(core.RGB{R: 1, G: 0.5, B: 2}, 0.5)
	if c.A != 128 || c.R != 128 || c.G != 64 || c.B != 128 {
		t.Fatalf("unexpected colour %+v", c)
	}
	if z := rgba(core.RGB{R: 1}, -1); z != (color.RGBA{}) {
		t.Fatalf("expected transparent, got %+v", z)
	}
}

func TestShadeBrightensWithGlow(t *testing.T) {
	m := &gfx.Material{
		Color:             color.RGBA{R: 10, G: 5, A: 255},
		Emissive:          color.RGBA{R: 17, G: 8, A: 255},
		EmissiveIntensity: 0.05,
	}
	light := fire.LightFor(1, 0)
	dim := shade(m, light)
	m.EmissiveIntensity = 0.3
	bright := shade(m, light)
	if bright.R <= dim.R || bright.G < dim.G {
		t.Fatalf("expected more glow to brighten, got %+v then %+v", dim, bright)
	}
	if (shade(nil, light) != core.RGB{}) {
		t.Fatal("expected black for a missing material")
	}
}

func TestFogFactor(t *testing.T) {
	if fogFactor(100, false) != 1 {
		t.Fatal("expected no fading without fog")
	}
	if fogFactor(fogNear, true) != 1 || fogFactor(1000, true) != 0.2 {
		t.Fatal("expected fog to fade between its bounds")
	}
	if f := fogFactor((fogNear+fogFar)/2, true); f <= 0.2 || f >= 1 {
		t.Fatalf("expected partial fade mid-range, got %v", f)
	}
}

func TestArcMatchesPolarPlacement(t *testing.T) {
	pts := Arc(3, 0, math.Pi, 4)
	if len(pts) != 5 {
		t.Fatalf("expected 5 points, got %d", len(pts))
	}
	for _, pt := range pts {
		if r := math.Hypot(pt.X, pt.Z); math.Abs(r-3) > 1e-9 {
			t.Fatalf("expected radius 3, got %v", r)
		}
	}
	if first := core.Polar(0, 3, 0.02); pts[0] != first {
		t.Fatalf("expected the arc to start at %+v, got %+v", first, pts[0])
	}
}
