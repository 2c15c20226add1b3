package gfx

import "testing"

func TestDisposeIsIdempotent(t *testing.T) {
	a := NewArena()
	geo := a.NewGeometry(Geometry{Shape: ShapeBox, Dims: []float64{0.5, 1.4, 0.4}})
	mat := a.NewMaterial(Material{Name: "body", Opacity: 0.8})

	if a.Live(0) != 2 {
		t.Fatalf("expected 2 live resources, got %d", a.Live(0))
	}
	a.Dispose(geo)
	a.Dispose(geo)
	a.Dispose(Handle(999))

	if a.Live(KindGeometry) != 0 || a.Live(KindMaterial) != 1 {
		t.Fatalf("unexpected live counts: geo=%d mat=%d", a.Live(KindGeometry), a.Live(KindMaterial))
	}
	if a.Disposed() != 1 {
		t.Fatalf("expected 1 disposal, got %d", a.Disposed())
	}
	if a.Geometry(geo) != nil {
		t.Fatal("disposed geometry must not resolve")
	}
	if a.Material(mat) == nil {
		t.Fatal("live material must resolve")
	}
	if a.Geometry(mat) != nil {
		t.Fatal("material handle must not resolve as geometry")
	}
}

func TestGroupDisposeReleasesEverything(t *testing.T) {
	a := NewArena()
	keep := a.NewMaterial(Material{Name: "shared"})
	g := NewGroup(a)
	for i := 0; i < 5; i++ {
		g.Geometry(Geometry{Shape: ShapeCone})
	}
	g.Texture(Texture{Label: "hi"})
	if g.Len() != 6 {
		t.Fatalf("expected 6 tracked handles, got %d", g.Len())
	}
	g.Dispose()
	g.Dispose()

	var nilGroup *Group
	nilGroup.Dispose()

	if a.Live(0) != 1 || !a.Alive(keep) {
		t.Fatalf("expected only the shared material to survive, live=%d", a.Live(0))
	}
	if hs := a.Handles(); len(hs) != 1 || hs[0] != keep {
		t.Fatalf("unexpected handles %v", hs)
	}
}
