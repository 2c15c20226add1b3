package entity

import (
	"math"
	"math/rand"
	"slices"
	"testing"
	"time"

	"campfire/internal/core"
	"campfire/internal/gfx"
)

var t0 = time.UnixMilli(1_700_000_000_000)

func at(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

func newRegistry() (*Registry, *gfx.Arena) {
	arena := gfx.NewArena()
	return NewRegistry(arena, rand.New(rand.NewSource(1))), arena
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func idx(i int) *int { return &i }

func TestPlaceMatchesBrowserHash(t *testing.T) {
	p := Place(12345, "a", 1000)
	if !near(p.Angle, 0.13*2*math.Pi) || !near(p.Radius, 2+0.95*1.5) || !near(p.ScaleY, 0.9+0.13*0.3) {
		t.Fatalf("unexpected placement %+v", p)
	}
	if p != Place(12345, "a", 1000) {
		t.Fatal("expected placement to be a pure function")
	}
	if Place(12345, "a", 1001) == p {
		t.Fatal("expected join time to affect placement")
	}
	// Yaw turns the +z axis toward the centre.
	dir := core.Vec3{X: math.Sin(p.Yaw), Z: math.Cos(p.Yaw)}
	to := core.Vec3{X: -p.Position.X, Z: -p.Position.Z}.Norm()
	if dir.Dot(to) < 0.9999 {
		t.Fatalf("expected entity to face the fire, yaw=%v", p.Yaw)
	}
}

func TestGlyphFor(t *testing.T) {
	if g := GlyphFor(Participant{ID: "zz", GlyphIndex: idx(3)}); g != GlyphX {
		t.Fatalf("expected explicit glyph x, got %v", g)
	}
	// "abc" sums to 294, which is 9 mod 15.
	if g := GlyphFor(Participant{ID: "abc", GlyphIndex: idx(20)}); g != GlyphHeart {
		t.Fatalf("expected fallback glyph heart, got %v", g)
	}
	if g := GlyphFor(Participant{ID: "abc"}); g != GlyphHeart {
		t.Fatalf("expected fallback glyph heart, got %v", g)
	}
	for g := Glyph(0); g < GlyphCount; g++ {
		if len(Outline(g, FaceSize)) == 0 || len(Outline(g, FaceSize)[0]) < 3 {
			t.Fatalf("glyph %v has no usable outline", g)
		}
	}
}

func TestHeartOutline(t *testing.T) {
	h := FaceSize / 1.5
	pts := Outline(GlyphHeart, FaceSize)[0]
	if len(pts) != 32 {
		t.Fatalf("expected 32 heart points, got %d", len(pts))
	}
	if !near(pts[0][0], 0) || !near(pts[0][1], h/4) {
		t.Fatalf("expected the heart to start at its notch, got %v", pts[0])
	}
	for _, p := range pts {
		if math.Abs(p[0]) > h/2+1e-9 || math.Abs(p[1]) > h/2+1e-9 {
			t.Fatalf("heart point %v outside its box", p)
		}
	}
}

func TestSyncCreatesSunkEntities(t *testing.T) {
	r, _ := newRegistry()
	r.Sync([]Participant{{ID: "a", JoinedAt: 1000}}, 12345, core.ModePublic, t0)

	e, ok := r.Get("a")
	if !ok {
		t.Fatal("expected entity a")
	}
	if e.Position.Y != SunkY || e.ScaleY != SunkScaleY || e.Progress != 0 {
		t.Fatalf("expected a sunk entity, got y=%v scaleY=%v progress=%v", e.Position.Y, e.ScaleY, e.Progress)
	}
	if e.Placement != Place(12345, "a", 1000) {
		t.Fatal("expected entity placement from the hash")
	}
}

func TestRiseRequiresPermission(t *testing.T) {
	r, _ := newRegistry()
	r.Sync([]Participant{{ID: "a", JoinedAt: 1000}}, 1, core.ModePublic, t0)
	e, _ := r.Get("a")

	for i := 0; i < 10; i++ {
		r.Tick(at(i*16), false, core.ModePublic)
	}
	if e.Progress != 0 {
		t.Fatalf("expected no rise while held, got %v", e.Progress)
	}
	r.Tick(at(200), true, core.ModePublic)
	if !near(e.Progress, 0.02) {
		t.Fatalf("expected one rise step, got %v", e.Progress)
	}
	if !near(e.Position.Y, -1.5*(1-0.02*1.98)) {
		t.Fatalf("unexpected height %v", e.Position.Y)
	}
	for i := 0; i < 60; i++ {
		r.Tick(at(300+i*16), true, core.ModePublic)
	}
	if e.Progress != 1 || e.Position.Y != 0 {
		t.Fatalf("expected a standing entity, got progress=%v y=%v", e.Progress, e.Position.Y)
	}
	if !near(e.Face.Opacity, 0.9) || !near(e.Base.Opacity, 0.5) {
		t.Fatalf("unexpected opacities face=%v base=%v", e.Face.Opacity, e.Base.Opacity)
	}
}

func TestLeavingEntitiesSinkAndRelease(t *testing.T) {
	r, arena := newRegistry()
	r.Sync([]Participant{{ID: "a", JoinedAt: 1}, {ID: "b", JoinedAt: 2}}, 1, core.ModePublic, t0)
	for i := 0; i < 10; i++ {
		r.Tick(at(i), true, core.ModePublic)
	}

	r.Sync([]Participant{{ID: "b", JoinedAt: 2}}, 1, core.ModePublic, at(20))
	a, _ := r.Get("a")
	if !a.Leaving {
		t.Fatal("expected a to be leaving")
	}
	for i := 0; i < 15; i++ {
		r.Tick(at(30+i), true, core.ModePublic)
	}
	if _, ok := r.Get("a"); ok {
		t.Fatal("expected a to be removed after sinking")
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 entity, got %d", r.Len())
	}

	r.Dispose()
	r.Dispose()
	if arena.Live(0) != 0 {
		t.Fatalf("expected no live resources, got %d", arena.Live(0))
	}
}

func TestLeavingEntityCanReturn(t *testing.T) {
	r, _ := newRegistry()
	ps := []Participant{{ID: "a", JoinedAt: 1}}
	r.Sync(ps, 1, core.ModePublic, t0)
	for i := 0; i < 20; i++ {
		r.Tick(at(i), true, core.ModePublic)
	}
	r.Sync(nil, 1, core.ModePublic, t0)
	r.Tick(at(30), true, core.ModePublic)
	r.Sync(ps, 1, core.ModePublic, t0)
	e, ok := r.Get("a")
	if !ok || e.Leaving {
		t.Fatal("expected a to be standing again")
	}
}

func TestLandingSinksEveryone(t *testing.T) {
	r, _ := newRegistry()
	r.Sync([]Participant{{ID: "a"}, {ID: "b"}}, 1, core.ModePublic, t0)
	r.Sync([]Participant{{ID: "a"}, {ID: "b"}}, 1, core.ModeLanding, t0)
	for _, e := range r.Entities() {
		if !e.Leaving {
			t.Fatalf("expected %s to be leaving on the landing page", e.ID)
		}
	}
}

func TestArrivalNotifiesVeterans(t *testing.T) {
	r, _ := newRegistry()
	calls := 0
	var newcomer string
	r.OnArrival = func(p Participant) {
		calls++
		newcomer = p.ID
	}

	if r.Sync([]Participant{{ID: "a", JoinedAt: 1000}, {ID: "b", JoinedAt: 1500}}, 1, core.ModePublic, t0) {
		t.Fatal("first sync must only initialise the high-water mark")
	}
	ps := []Participant{
		{ID: "a", JoinedAt: 1000},
		{ID: "b", JoinedAt: 1500},
		{ID: "c", JoinedAt: 2000, GlyphIndex: idx(int(GlyphStar))},
	}
	if !r.Sync(ps, 1, core.ModePublic, at(10)) {
		t.Fatal("expected an arrival")
	}
	if calls != 1 || newcomer != "c" {
		t.Fatalf("expected one arrival callback for c, got %d (%s)", calls, newcomer)
	}
	var notified []string
	for _, e := range r.Entities() {
		if !e.Notice.NotifiedAt.IsZero() {
			notified = append(notified, e.ID)
			if e.Notice.Glyph != GlyphStar {
				t.Fatalf("expected notice to show the newcomer's glyph, got %v", e.Notice.Glyph)
			}
		}
	}
	if !slices.Equal(notified, []string{"a", "b"}) {
		t.Fatalf("expected veterans a and b notified, got %v", notified)
	}

	if r.Sync(ps, 1, core.ModePublic, at(20)) || calls != 1 {
		t.Fatal("expected no arrival without a newer join")
	}
}

func TestNoticeAnimation(t *testing.T) {
	r, _ := newRegistry()
	r.Sync([]Participant{{ID: "a", JoinedAt: 1000}}, 1, core.ModePublic, t0)
	r.Sync([]Participant{{ID: "a", JoinedAt: 1000}, {ID: "b", JoinedAt: 2000}}, 1, core.ModePublic, t0)
	a, _ := r.Get("a")

	r.Tick(at(300), true, core.ModePublic)
	if !a.Notice.Visible || !near(a.Notice.Opacity, 0.5) || !near(a.Notice.Scale, 0.6) {
		t.Fatalf("unexpected intro state %+v", a.Notice)
	}
	r.Tick(at(2000), true, core.ModePublic)
	if a.Notice.Opacity != 1 || a.Notice.Scale != 1 {
		t.Fatalf("expected a fully shown notice, got %+v", a.Notice)
	}
	r.Tick(at(4600), true, core.ModePublic)
	if !near(a.Notice.Opacity, 0.5) {
		t.Fatalf("expected the outro at half opacity, got %v", a.Notice.Opacity)
	}
	r.Tick(at(5000), true, core.ModePublic)
	if a.Notice.Visible {
		t.Fatal("expected the notice to be gone after 5s")
	}
}

func TestSpeechNaturalLifecycle(t *testing.T) {
	r, _ := newRegistry()
	r.Sync([]Participant{{ID: "a", JoinedAt: 1}}, 1, core.ModePublic, t0)
	msgs := []Message{{SenderID: "a", Text: "hello world this is long", CreatedAt: t0.UnixMilli()}}
	r.ApplyMessages(msgs, t0)
	a, _ := r.Get("a")

	if a.Speech.Preview != "hello world..." {
		t.Fatalf("unexpected preview %q", a.Speech.Preview)
	}
	r.Tick(at(400), true, core.ModePublic)
	if a.Speech.State != SpeechFadingIn || !near(a.Speech.Opacity, 0.5) || !near(a.Speech.ScaleX, 1.8) {
		t.Fatalf("unexpected fade-in state %v opacity=%v scale=%v", a.Speech.State, a.Speech.Opacity, a.Speech.ScaleX)
	}
	// The bubble holds its raised height while fading in, then drops.
	for _, ms := range []int{100, 400, 799} {
		r.Tick(at(ms), true, core.ModePublic)
		if !near(a.Speech.Y, 2.15) {
			t.Fatalf("expected a raised bubble at %dms, got y=%v", ms, a.Speech.Y)
		}
	}
	r.Tick(at(10_000), true, core.ModePublic)
	if a.Speech.State != SpeechSteady || a.Speech.Y != 1.85 || a.Speech.Tint != core.White {
		t.Fatalf("unexpected steady state %v y=%v", a.Speech.State, a.Speech.Y)
	}
	r.Tick(at(59_500), true, core.ModePublic)
	if a.Speech.State != SpeechEvaporating || !near(a.Speech.Opacity, 0.5) || !near(a.Speech.Y, 2.25) {
		t.Fatalf("unexpected evaporation state %v opacity=%v y=%v", a.Speech.State, a.Speech.Opacity, a.Speech.Y)
	}
	r.Tick(at(62_000), true, core.ModePublic)
	if a.Speech.Shown() {
		t.Fatal("expected the bubble to be gone after its TTL")
	}

	r.ApplyMessages(msgs, at(62_100))
	if a.Speech.Shown() {
		t.Fatal("expected unchanged text to be a no-op")
	}
}

func TestSpeechPrivateTTL(t *testing.T) {
	r, _ := newRegistry()
	r.Sync([]Participant{{ID: "a", JoinedAt: 1}}, 1, core.ModePrivate, t0)
	r.ApplyMessages([]Message{{SenderID: "a", Text: "psst"}}, t0)
	a, _ := r.Get("a")

	r.Tick(at(28_000), true, core.ModePrivate)
	if a.Speech.State != SpeechEvaporating {
		t.Fatalf("expected evaporation 5s before the private TTL, got %v", a.Speech.State)
	}
	r.Tick(at(32_000), true, core.ModePrivate)
	if a.Speech.Shown() {
		t.Fatal("expected the private bubble to expire after 32s")
	}
}

func TestSpeechForcedEvaporation(t *testing.T) {
	r, _ := newRegistry()
	r.Sync([]Participant{{ID: "a", JoinedAt: 1}, {ID: "b", JoinedAt: 2}}, 1, core.ModePublic, t0)
	r.ApplyMessages([]Message{{SenderID: "a", Text: "one"}, {SenderID: "b", Text: "two"}}, t0)
	r.Tick(at(1000), true, core.ModePublic)

	r.ApplyMessages([]Message{{SenderID: "b", Text: "two"}}, at(1000))
	a, _ := r.Get("a")
	b, _ := r.Get("b")
	if !a.Speech.Burning() || b.Speech.Burning() {
		t.Fatal("expected only the orphaned bubble to burn")
	}
	r.Tick(at(3000), true, core.ModePublic)
	if !near(a.Speech.Opacity, 0.5) || !near(a.Speech.Y, 1.85+0.75) {
		t.Fatalf("unexpected burn state opacity=%v y=%v", a.Speech.Opacity, a.Speech.Y)
	}
	if a.Speech.Tint.R != 1 || a.Speech.Tint.G > 0.6 {
		t.Fatalf("expected a red-shifted tint, got %+v", a.Speech.Tint)
	}

	// An empty list hides b at once but lets a finish burning.
	r.ApplyMessages(nil, at(3000))
	if b.Speech.Shown() || !a.Speech.Burning() {
		t.Fatal("expected b hidden and a still burning")
	}
	r.Tick(at(5000), true, core.ModePublic)
	if a.Speech.Shown() {
		t.Fatal("expected forced evaporation to finish within 4s")
	}
}

func TestGlyphChangeSwapsFace(t *testing.T) {
	r, arena := newRegistry()
	r.Sync([]Participant{{ID: "a", GlyphIndex: idx(0)}}, 1, core.ModePublic, t0)
	a, _ := r.Get("a")
	old := a.Face.Geometry
	live := arena.Live(0)

	r.Sync([]Participant{{ID: "a", GlyphIndex: idx(5)}}, 1, core.ModePublic, t0)
	if a.Glyph != GlyphDiamond || a.Face.Geometry == old || a.FaceBack.Geometry != a.Face.Geometry {
		t.Fatalf("expected diamond face geometry, got %v", a.Glyph)
	}
	if arena.Alive(old) || arena.Live(0) != live {
		t.Fatal("expected the old face geometry to be released")
	}
}

func TestSwayIsBounded(t *testing.T) {
	r, _ := newRegistry()
	r.Sync([]Participant{{ID: "a", JoinedAt: 1}}, 1, core.ModePublic, t0)
	a, _ := r.Get("a")
	for i := 0; i < 10_000; i++ {
		r.Sway(at(i*16), 0.2)
	}
	if math.Abs(a.Yaw-a.Placement.Yaw) > swayAmp+1e-9 {
		t.Fatalf("sway drifted to %v", a.Yaw-a.Placement.Yaw)
	}
	if !near(a.Scale, 1.01) {
		t.Fatalf("expected flicker scale 1.01, got %v", a.Scale)
	}
}

func TestPreviewAndWrap(t *testing.T) {
	if got := Preview("short"); got != "short" {
		t.Fatalf("expected short text unchanged, got %q", got)
	}
	if got := Preview("exactly 14 chr"); got != "exactly 14 chr" {
		t.Fatalf("expected 14 characters unchanged, got %q", got)
	}
	if got := Preview("ünïcödé-ünïcödé"); got != "ünïcödé-ünï..." {
		t.Fatalf("expected rune-aware truncation, got %q", got)
	}
	lines := Wrap("a bb ccc dddd eeeee ffffff", 6)
	if !slices.Equal(lines, []string{"a bb", "ccc", "dddd"}) {
		t.Fatalf("unexpected wrap %q", lines)
	}
	if got := Wrap("abcdefghij", 4); !slices.Equal(got, []string{"abcd", "efgh", "ij"}) {
		t.Fatalf("unexpected split %q", got)
	}
}

func TestSyncIsIdempotentAndOrderFree(t *testing.T) {
	list := []Participant{
		{ID: "a", JoinedAt: 1000},
		{ID: "b", JoinedAt: 2000},
		{ID: "c", JoinedAt: 3000},
		{ID: "d", JoinedAt: 4000},
	}
	r, _ := newRegistry()
	r.Sync(list, 12345, core.ModePublic, t0)
	type spot struct {
		Placement Placement
		Position  core.Vec3
	}
	before := map[string]spot{}
	for _, p := range list {
		e, _ := r.Get(p.ID)
		before[p.ID] = spot{e.Placement, e.Position}
	}
	r.Sync(list, 12345, core.ModePublic, at(16))
	for _, p := range list {
		e, _ := r.Get(p.ID)
		if e.Placement != before[p.ID].Placement || e.Position != before[p.ID].Position {
			t.Fatalf("expected a repeated sync to leave %s in place", p.ID)
		}
	}

	reversed := slices.Clone(list)
	slices.Reverse(reversed)
	fresh, _ := newRegistry()
	fresh.Sync(reversed, 12345, core.ModePublic, t0)
	for _, p := range list {
		e, _ := fresh.Get(p.ID)
		if e.Placement != before[p.ID].Placement || e.Position != before[p.ID].Position {
			t.Fatalf("expected %s placed independently of list order", p.ID)
		}
	}
}
