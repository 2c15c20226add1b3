// Package tty draws the clearing top-down on a terminal through tcell. It is
// a scene.Renderer, so it runs on the same frame scheduler as the ebiten
// client.
package tty

import (
	"math"

	"campfire/internal/core"
)

// Extent is the world radius the view fits on screen. The tree ring starts
// just inside it.
const Extent = 10.0

// reserved rows at the bottom for the status and prompt lines.
const reserved = 2

// View maps ground positions onto terminal cells. Cells are about twice as
// tall as they are wide, so X is stretched by two.
type View struct {
	cx, cy float64
	scale  float64
}

// NewView fits a circle of radius Extent into a w×h terminal.
func NewView(w, h int) View {
	rows := float64(h - reserved)
	scale := math.Min(rows/2/Extent, float64(w)/4/Extent)
	return View{cx: float64(w) / 2, cy: rows / 2, scale: math.Max(scale, 0)}
}

// Cell returns the terminal cell under v, ignoring height.
func (v View) Cell(p core.Vec3) (x, y int) {
	return int(math.Floor(v.cx + p.X*v.scale*2)), int(math.Floor(v.cy + p.Z*v.scale))
}

// Span returns how many rows a world distance covers.
func (v View) Span(d float64) int { return int(math.Ceil(d * v.scale)) }
