package world

import (
	"math"
	"testing"
	"time"

	"campfire/internal/core"
	"campfire/internal/gfx"
)

var epoch = time.UnixMilli(1_700_000_000_000)

func newBuilder() (*Builder, *gfx.Arena) {
	arena := gfx.NewArena()
	return NewBuilder(DefaultConfig(), arena, nil), arena
}

func TestBuildIsDeterministic(t *testing.T) {
	a, _ := newBuilder()
	b, _ := newBuilder()

	first := a.Build(777, core.ModePublic, epoch)
	second := b.Build(777, core.ModePrivate, epoch.Add(time.Hour))
	if first.Digest() != second.Digest() {
		t.Fatal("expected identical digests for the same seed")
	}
	other := a.Build(778, core.ModePublic, epoch)
	if other.Digest() == first.Digest() {
		t.Fatal("expected different digests for different seeds")
	}
	again := a.Build(777, core.ModePublic, epoch)
	if again.Digest() != first.Digest() {
		t.Fatal("expected a rebuild to restart the stream")
	}
}

func TestZeroSeedMatchesDefault(t *testing.T) {
	b, _ := newBuilder()
	if b.Build(0, core.ModePublic, epoch).Digest() != b.Build(12345, core.ModePublic, epoch).Digest() {
		t.Fatal("expected seed 0 to build the default forest")
	}
	if s := b.Build(0, core.ModePublic, epoch).Seed; s != 12345 {
		t.Fatalf("expected the bundle to record the effective seed, got %d", s)
	}
}

func TestTreeRingLayout(t *testing.T) {
	b, _ := newBuilder()
	bundle := b.Build(12345, core.ModePublic, epoch)

	if len(bundle.Trees) != 16 {
		t.Fatalf("expected 16 trees outside the gap, got %d", len(bundle.Trees))
	}
	first := bundle.Trees[0]
	if math.Abs(first.Position.X-12.30528120713306) > 1e-9 || math.Abs(first.Position.Z) > 1e-9 {
		t.Fatalf("unexpected first tree position %+v", first.Position)
	}
	if math.Abs(first.Scale-1.6277692043895748) > 1e-9 {
		t.Fatalf("unexpected first tree scale %v", first.Scale)
	}
	for _, tree := range bundle.Trees {
		angle := math.Atan2(tree.Position.Z, tree.Position.X)
		if angle < 0 {
			angle += 2 * math.Pi
		}
		if angle > 0.8 && angle < 2.3 {
			t.Fatalf("tree placed inside the path gap at angle %v", angle)
		}
	}

	trunkClumps := 0
	for _, c := range bundle.Grass {
		if c.AtTree {
			trunkClumps++
		}
	}
	if trunkClumps != 16 || len(bundle.Grass)-trunkClumps != 282 {
		t.Fatalf("unexpected grass split: %d at trees, %d scattered", trunkClumps, len(bundle.Grass)-trunkClumps)
	}
}

func TestCountsAndRanges(t *testing.T) {
	b, _ := newBuilder()
	bundle := b.Build(4242, core.ModePublic, epoch)

	if len(bundle.Boulders) != 6 || len(bundle.Moss) != 60 || len(bundle.Litter) != 300 {
		t.Fatalf("unexpected counts: boulders=%d moss=%d litter=%d", len(bundle.Boulders), len(bundle.Moss), len(bundle.Litter))
	}
	if len(bundle.Mist) != 50 || len(bundle.Stars) != 400 || len(bundle.Fireflies) != 30 {
		t.Fatalf("unexpected counts: mist=%d stars=%d fireflies=%d", len(bundle.Mist), len(bundle.Stars), len(bundle.Fireflies))
	}
	for _, s := range bundle.Stars {
		if s.Y < 5 {
			t.Fatalf("star below the horizon: %+v", s)
		}
	}
	for _, r := range bundle.Boulders {
		d := math.Hypot(r.Position.X, r.Position.Z)
		if d < 3.5 || d > 5.5 || r.Radius < 0.3 || r.Radius > 0.7 {
			t.Fatalf("boulder out of range: dist=%v radius=%v", d, r.Radius)
		}
	}
}

func TestRebuildDoesNotLeak(t *testing.T) {
	b, arena := newBuilder()
	bundle := b.Build(1, core.ModePublic, epoch)
	baseline := arena.Live(0)

	for seed := int64(2); seed < 10; seed++ {
		bundle.Dispose()
		bundle = b.Build(seed, core.ModePublic, epoch)
	}
	if arena.Live(0) != baseline {
		t.Fatalf("expected %d live resources after rebuilds, got %d", baseline, arena.Live(0))
	}

	foliage := b.Materials().Foliage
	bundle.Dispose()
	bundle.Dispose()
	if !arena.Alive(foliage) {
		t.Fatal("shared foliage material must survive bundle disposal")
	}
	if arena.Live(0) != 2 {
		t.Fatalf("expected only the shared materials to remain, got %d", arena.Live(0))
	}
	b.Materials().Dispose()
	if arena.Live(0) != 0 {
		t.Fatalf("expected a clean arena, got %d", arena.Live(0))
	}
}

func TestSharedMaterialsReused(t *testing.T) {
	b, _ := newBuilder()
	one := b.Build(1, core.ModePublic, epoch)
	one.Dispose()
	two := b.Build(2, core.ModePublic, epoch)
	if one.Resources.Foliage != two.Resources.Foliage || one.Resources.Trunk != two.Resources.Trunk {
		t.Fatal("expected foliage and trunk materials to be created once")
	}
}

func TestMoonArc(t *testing.T) {
	// cos(0) = 1 puts the moon low on the eastern horizon.
	m := MoonPosition(time.UnixMilli(0))
	if m.X != 50 || m.Y != 3 || m.Z != -50 {
		t.Fatalf("unexpected moon position %+v", m)
	}
	// A quarter turn later it is overhead.
	quarter := math.Pi / 2 / 0.000005
	m = MoonPosition(time.UnixMilli(int64(quarter)))
	if math.Abs(m.X) > 1e-3 || math.Abs(m.Y-11) > 1e-3 {
		t.Fatalf("expected the moon at its zenith, got %+v", m)
	}
}

func TestFirefliesWrap(t *testing.T) {
	b, _ := newBuilder()
	bundle := b.Build(9, core.ModePublic, epoch)
	bundle.Fireflies[0].Position = core.Vec3{X: 30, Y: 1, Z: 0}
	bundle.Drift(epoch)

	p := bundle.Fireflies[0].Position
	if p.X > -20 || p.X < -28 {
		t.Fatalf("expected firefly mirrored across the clearing, got %+v", p)
	}
	if bundle.FireflyOpacity < 0.4 || bundle.FireflyOpacity > 1 {
		t.Fatalf("firefly opacity out of range: %v", bundle.FireflyOpacity)
	}
}

func TestVisibilityFollowsMode(t *testing.T) {
	b, _ := newBuilder()
	bundle := b.Build(3, core.ModeLanding, epoch)
	if bundle.Visible {
		t.Fatal("forest must be hidden on the landing page")
	}
	bundle.SetVisible(core.ModePrivate)
	if !bundle.Visible {
		t.Fatal("forest must be visible in private mode")
	}
}
