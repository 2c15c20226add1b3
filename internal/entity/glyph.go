package entity

import (
	"math"

	pcore "campfire/pkg/core"
)

// Glyph is one of the fixed face shapes a participant wears.
type Glyph uint8

const (
	GlyphCircle Glyph = iota
	GlyphSquare
	GlyphTriangle
	GlyphX
	GlyphPlus
	GlyphDiamond
	GlyphHex
	GlyphPent
	GlyphBolt
	GlyphHeart
	GlyphStar
	GlyphMoon
	GlyphDot
	GlyphBar
	GlyphRing

	GlyphCount = 15
)

var glyphNames = [GlyphCount]string{
	"circle", "square", "triangle", "x", "plus", "diamond", "hex", "pent",
	"bolt", "heart", "star", "moon", "dot", "bar", "ring",
}

var glyphRunes = [GlyphCount]rune{
	'●', '■', '▲', '✕', '✚', '◆', '⬢', '⬟', 'ϟ', '♥', '★', '☾', '•', '▬', '○',
}

// String returns the glyph name.
func (g Glyph) String() string {
	if g < GlyphCount {
		return glyphNames[g]
	}
	return "unknown"
}

// Rune returns a single-cell symbol for text renderers.
func (g Glyph) Rune() rune {
	if g < GlyphCount {
		return glyphRunes[g]
	}
	return '?'
}

// GlyphFor returns the explicit glyph index when it is in range, otherwise a
// glyph derived from the participant id.
func GlyphFor(p Participant) Glyph {
	if p.GlyphIndex != nil && *p.GlyphIndex >= 0 && *p.GlyphIndex < GlyphCount {
		return Glyph(*p.GlyphIndex)
	}
	return Glyph(pcore.CodeUnitSum(p.ID) % GlyphCount)
}

// FaceSize is the edge length of a glyph face in scene units.
const FaceSize = 0.22

// Outline returns the closed polygons for g at edge length s, y up. Polygons
// are meant to be filled with the even-odd rule so the ring keeps its hole.
func Outline(g Glyph, s float64) [][][2]float64 {
	switch g {
	case GlyphCircle:
		return [][][2]float64{regular(s/2, 32, 0)}
	case GlyphDot:
		return [][][2]float64{regular(s/6, 32, 0)}
	case GlyphRing:
		return [][][2]float64{regular(s/2, 32, 0), regular(s/4, 32, 0)}
	case GlyphSquare:
		return [][][2]float64{rect(s, s)}
	case GlyphBar:
		return [][][2]float64{rect(s, s/4)}
	case GlyphTriangle:
		return [][][2]float64{regular(s/2, 3, math.Pi/2)}
	case GlyphDiamond:
		return [][][2]float64{regular(s/2, 4, math.Pi/2)}
	case GlyphHex:
		return [][][2]float64{regular(s/2, 6, math.Pi/2)}
	case GlyphPent:
		return [][][2]float64{regular(s/2, 5, math.Pi/2)}
	case GlyphPlus:
		w, t := s/2, s/6
		return [][][2]float64{{
			{-t / 2, w / 2}, {t / 2, w / 2}, {t / 2, t / 2}, {w / 2, t / 2},
			{w / 2, -t / 2}, {t / 2, -t / 2}, {t / 2, -w / 2}, {-t / 2, -w / 2},
			{-t / 2, -t / 2}, {-w / 2, -t / 2}, {-w / 2, t / 2}, {-t / 2, t / 2},
		}}
	case GlyphX:
		w, t := s/2, s/8
		d, td := w*0.707, t*0.707
		return [][][2]float64{{
			{-td, 0}, {-d, d - td}, {-d + td, d}, {0, td},
			{d - td, d}, {d, d - td}, {td, 0}, {d, -d + td},
			{d - td, -d}, {0, -td}, {-d + td, -d}, {-d, -d + td},
		}}
	case GlyphStar:
		outer, inner := s/2, s/4.5
		pts := make([][2]float64, 10)
		for i := range pts {
			r := outer
			if i%2 == 1 {
				r = inner
			}
			a := float64(i)/10*math.Pi*2 + math.Pi/2
			pts[i] = [2]float64{math.Cos(a) * r, math.Sin(a) * r}
		}
		return [][][2]float64{pts}
	case GlyphHeart:
		return [][][2]float64{heart(s / 1.5)}
	case GlyphBolt:
		return [][][2]float64{{
			{0, s / 2}, {s * 0.4, s * 0.3}, {-s * 0.05, s * 0.05}, {s * 0.3, -s * 0.05},
			{-s * 0.25, -s / 2}, {-s * 0.05, -s * 0.05}, {-s * 0.35, s * 0.05},
		}}
	case GlyphMoon:
		return [][][2]float64{crescent(s/2, s/4, s/4)}
	}
	return [][][2]float64{rect(s, s)}
}

func regular(r float64, segments int, start float64) [][2]float64 {
	pts := make([][2]float64, segments)
	for i := range pts {
		a := start + float64(i)/float64(segments)*math.Pi*2
		pts[i] = [2]float64{math.Cos(a) * r, math.Sin(a) * r}
	}
	return pts
}

func rect(w, h float64) [][2]float64 {
	return [][2]float64{{-w / 2, -h / 2}, {w / 2, -h / 2}, {w / 2, h / 2}, {-w / 2, h / 2}}
}

func heart(h float64) [][2]float64 {
	type seg [4][2]float64
	segs := []seg{
		{{0, h / 4}, {0, h / 4}, {-h / 2, h / 2}, {-h / 2, 0}},
		{{-h / 2, 0}, {-h / 2, -h / 2}, {0, -h / 2}, {0, -h / 2}},
		{{0, -h / 2}, {0, -h / 2}, {h / 2, -h / 2}, {h / 2, 0}},
		{{h / 2, 0}, {h / 2, h / 2}, {0, h / 4}, {0, h / 4}},
	}
	const steps = 8
	var pts [][2]float64
	for _, sg := range segs {
		for i := 0; i < steps; i++ {
			t := float64(i) / steps
			u := 1 - t
			a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
			pts = append(pts, [2]float64{
				a*sg[0][0] + b*sg[1][0] + c*sg[2][0] + d*sg[3][0],
				a*sg[0][1] + b*sg[1][1] + c*sg[2][1] + d*sg[3][1],
			})
		}
	}
	return pts
}

// crescent cuts a disc of radius r centred at (cx, cy) out of a disc of the
// same radius at the origin.
func crescent(r, cx, cy float64) [][2]float64 {
	const steps = 64
	bite := math.Atan2(cy, cx)
	var rim, cut [][2]float64
	for i := 0; i <= steps; i++ {
		a := bite + float64(i)/steps*math.Pi*2
		p := [2]float64{math.Cos(a) * r, math.Sin(a) * r}
		if math.Hypot(p[0]-cx, p[1]-cy) >= r {
			rim = append(rim, p)
		}
		q := [2]float64{cx + math.Cos(a)*r, cy + math.Sin(a)*r}
		if math.Hypot(q[0], q[1]) < r {
			cut = append(cut, q)
		}
	}
	if len(rim) == 0 || len(cut) == 0 {
		return rim
	}
	last := rim[len(rim)-1]
	if dist(cut[0], last) > dist(cut[len(cut)-1], last) {
		for i, j := 0, len(cut)-1; i < j; i, j = i+1, j-1 {
			cut[i], cut[j] = cut[j], cut[i]
		}
	}
	return append(rim, cut...)
}

func dist(a, b [2]float64) float64 { return math.Hypot(a[0]-b[0], a[1]-b[1]) }
