package tty

// Heat stores a 2D grid of byte-sized fire intensities in row-major order.
// Cells cool a little every frame so embers leave short trails.
type Heat struct {
	W, H int
	data []uint8
}

// NewHeat allocates a grid with the given dimensions.
func NewHeat(w, h int) *Heat {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &Heat{W: w, H: h, data: make([]uint8, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *Heat) Cells() []uint8 { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *Heat) Index(x, y int) int { return y*g.W + x }

// In reports whether (x, y) lies on the grid.
func (g *Heat) In(x, y int) bool { return x >= 0 && y >= 0 && x < g.W && y < g.H }

// At returns the intensity at (x, y), or 0 off the grid.
func (g *Heat) At(x, y int) uint8 {
	if !g.In(x, y) {
		return 0
	}
	return g.data[g.Index(x, y)]
}

// Add raises the cell at (x, y), saturating at 255.
func (g *Heat) Add(x, y int, v int) {
	if !g.In(x, y) || v <= 0 {
		return
	}
	i := g.Index(x, y)
	g.data[i] = uint8(min(255, int(g.data[i])+v))
}

// Cool lowers every cell by step, stopping at zero.
func (g *Heat) Cool(step uint8) {
	for i, v := range g.data {
		if v > step {
			g.data[i] = v - step
		} else {
			g.data[i] = 0
		}
	}
}

// Clear fills the grid with zeros.
func (g *Heat) Clear() {
	for i := range g.data {
		g.data[i] = 0
	}
}
