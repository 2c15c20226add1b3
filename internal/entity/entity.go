// Package entity manages the shadow figures that stand around the fire, one
// per participant, together with their arrival and speech bubbles.
package entity

import (
	"math"
	"strconv"

	"campfire/internal/core"
	"campfire/internal/gfx"
	pcore "campfire/pkg/core"
)

// Participant is one occupant as reported by the room feed. JoinedAt is in
// Unix milliseconds; zero means unknown.
type Participant struct {
	ID         string `json:"id"`
	JoinedAt   int64  `json:"joinedAt,omitempty"`
	GlyphIndex *int   `json:"glyphIdx,omitempty"`
}

// Message is the active message of one sender. CreatedAt is in Unix
// milliseconds; zero means now.
type Message struct {
	SenderID  string `json:"senderId"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

// Entity geometry, in entity-local units.
const (
	SunkY      = -1.5
	SunkScaleY = 0.5
	BodyHeight = 1.4
	FaceHeight = 1.1
	riseStep   = 0.02
	swayAmp    = 0.06
)

// Placement is where an entity stands. It depends only on the room seed, the
// participant id and the join time.
type Placement struct {
	Angle    float64
	Radius   float64
	ScaleY   float64
	Position core.Vec3
	// Yaw turns the figure's front toward the fire.
	Yaw float64
}

// Place derives the placement for a participant.
func Place(seed int64, id string, joinedAt int64) Placement {
	join := ""
	if joinedAt != 0 {
		join = strconv.FormatInt(joinedAt, 10)
	}
	h := pcore.PlacementHash("S:" + strconv.FormatInt(seed, 10) + "|U:" + id + "|J:" + join)
	r1 := pcore.HashFraction(h)
	r2 := pcore.HashFractionShifted(h)

	angle := r1 * math.Pi * 2
	radius := 2.0 + r2*1.5
	scaleY := 0.9 + r1*0.3
	pos := core.Polar(angle, radius, (scaleY-1)*0.7)
	return Placement{
		Angle:    angle,
		Radius:   radius,
		ScaleY:   scaleY,
		Position: pos,
		Yaw:      math.Atan2(-pos.X, -pos.Z),
	}
}

// Part is one mesh of an entity. Opacity is the value renderers should use.
type Part struct {
	Geometry gfx.Handle
	Material gfx.Handle
	Offset   core.Vec3
	Opacity  float64
}

// Entity is the scene object for one participant.
type Entity struct {
	ID        string
	JoinedAt  int64
	Glyph     Glyph
	SwaySeed  float64
	Progress  float64
	Leaving   bool
	Placement Placement

	// Displayed transform, refreshed every tick.
	Position core.Vec3
	Yaw      float64
	Scale    float64
	ScaleY   float64

	Body     Part
	Base     Part
	Face     Part
	FaceBack Part
	Glow     Part
	Notice   Notice
	Speech   Speech

	arena *gfx.Arena
	group *gfx.Group
}

// Ease returns the eased rise progress p(2-p).
func (e *Entity) Ease() float64 { return e.Progress * (2 - e.Progress) }

func newEntity(arena *gfx.Arena, id string, glyph Glyph, sway float64, pl Placement) *Entity {
	g := gfx.NewGroup(arena)
	e := &Entity{
		ID:        id,
		Glyph:     glyph,
		SwaySeed:  sway,
		Placement: pl,
		Position:  core.Vec3{X: pl.Position.X, Y: SunkY, Z: pl.Position.Z},
		Yaw:       pl.Yaw,
		Scale:     1,
		ScaleY:    SunkScaleY,
		arena:     arena,
		group:     g,
	}
	e.Body = Part{
		Geometry: g.Geometry(gfx.Geometry{Shape: gfx.ShapeBox, Dims: []float64{0.5, BodyHeight, 0.4}}),
		Material: g.Material(gfx.Material{Name: "body", Opacity: 0.8}),
		Offset:   core.Vec3{Y: 0.7},
	}
	e.Base = Part{
		Geometry: g.Geometry(gfx.Geometry{Shape: gfx.ShapeCircle, Dims: []float64{0.5, 32}}),
		Material: g.Material(gfx.Material{Name: "base", Opacity: 0.5}),
	}
	faceMat := gfx.Material{Name: "face", Color: whiteRGBA, Opacity: 0.9, DoubleSided: true}
	e.Face = Part{
		Geometry: e.faceGeometry(),
		Material: g.Material(faceMat),
		Offset:   core.Vec3{Y: FaceHeight, Z: 0.201},
	}
	e.FaceBack = Part{
		Geometry: e.Face.Geometry,
		Material: g.Material(faceMat),
		Offset:   core.Vec3{Y: FaceHeight, Z: -0.201},
	}
	e.Glow = Part{
		Geometry: g.Geometry(gfx.Geometry{Shape: gfx.ShapePlane, Dims: []float64{0.6, 1.5}}),
		Material: g.Material(gfx.Material{Name: "glow", Color: whiteRGBA, Opacity: 0.05, DoubleSided: true}),
		Offset:   core.Vec3{Y: 0.7, Z: -0.01},
	}
	return e
}

// faceGeometry allocates the outline for the current glyph outside the group
// so it can be swapped when the glyph changes.
func (e *Entity) faceGeometry() gfx.Handle {
	return e.arena.NewGeometry(gfx.Geometry{Shape: gfx.ShapeOutline, Contours: Outline(e.Glyph, FaceSize)})
}

func (e *Entity) setGlyph(g Glyph) {
	if g == e.Glyph {
		return
	}
	e.Glyph = g
	e.arena.Dispose(e.Face.Geometry)
	e.Face.Geometry = e.faceGeometry()
	e.FaceBack.Geometry = e.Face.Geometry
}

func (e *Entity) setNoticeGlyph(g Glyph) {
	e.Notice.Glyph = g
	e.arena.Dispose(e.Notice.Texture)
	e.Notice.Texture = e.arena.NewTexture(gfx.Texture{Glyph: int(g), W: 128, H: 128})
}

func (e *Entity) setSpeechText(text string) {
	e.Speech.Text = text
	e.Speech.Preview = Preview(text)
	e.Speech.Lines = Wrap(e.Speech.Preview, lineWidth(e.Speech.Preview))
	e.arena.Dispose(e.Speech.Texture)
	e.Speech.Texture = e.arena.NewTexture(gfx.Texture{Label: e.Speech.Preview, Lines: e.Speech.Lines, W: 1024, H: 512})
}

// dispose releases every resource the entity holds. Safe to repeat.
func (e *Entity) dispose() {
	e.group.Dispose()
	e.arena.Dispose(e.Face.Geometry)
	e.arena.Dispose(e.Notice.Texture)
	e.arena.Dispose(e.Speech.Texture)
}

// animate applies the rise curve to the displayed transform and part opacity.
func (e *Entity) animate() {
	ease := e.Ease()
	e.Position = core.Vec3{X: e.Placement.Position.X, Y: SunkY * (1 - ease), Z: e.Placement.Position.Z}
	e.Body.Opacity = ease
	e.Base.Opacity = 0.5 * ease
	e.Face.Opacity = 0.9 * ease
	e.FaceBack.Opacity = ease
	e.Glow.Opacity = 0.05 * ease
}

// sway applies the fire-driven scale pulse and a small bounded yaw wobble.
func (e *Entity) sway(nowMs, flicker float64) {
	pulse := 1 + flicker*0.05
	e.Scale = pulse
	e.ScaleY = (SunkScaleY + (e.Placement.ScaleY-SunkScaleY)*e.Ease()) * pulse
	e.Yaw = e.Placement.Yaw - swayAmp*math.Cos(nowMs*0.001+e.SwaySeed)
}
