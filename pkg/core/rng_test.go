package core

import (
	"math"
	"testing"
)

func TestRNGKnownSequence(t *testing.T) {
	r := NewRNG(12345)
	want := []int64{96382, 3239, 82116}
	for i, w := range want {
		got := r.Next()
		if expected := float64(w) / 233280; got != expected {
			t.Fatalf("draw %d: expected %v, got %v", i, expected, got)
		}
	}
	if r.Draws() != len(want) {
		t.Fatalf("expected %d draws, got %d", len(want), r.Draws())
	}
}

func TestRNGReseedRepeats(t *testing.T) {
	r := NewRNG(777)
	first := make([]float64, 64)
	for i := range first {
		first[i] = r.Next()
	}
	r.Seed(777)
	for i := range first {
		if got := r.Next(); got != first[i] {
			t.Fatalf("draw %d diverged after reseed: %v vs %v", i, got, first[i])
		}
	}
}

func TestRNGZeroSeedUsesDefault(t *testing.T) {
	a := NewRNG(0)
	b := NewRNG(DefaultSeed)
	for i := 0; i < 10; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("zero seed should behave like DefaultSeed (draw %d)", i)
		}
	}
}

func TestRNGStaysInUnitInterval(t *testing.T) {
	for _, seed := range []int64{1, 42, 999999, 233279, 5_000_000_000} {
		r := NewRNG(seed)
		for i := 0; i < 1000; i++ {
			v := r.Next()
			if v < 0 || v >= 1 || math.IsNaN(v) {
				t.Fatalf("seed %d draw %d out of range: %v", seed, i, v)
			}
		}
	}
}

func TestPlacementHashMatchesBrowserValues(t *testing.T) {
	cases := []struct {
		in     string
		hash   int64
		r1, r2 float64
	}{
		{"S:12345|U:a|J:1000", -3939336513, 0.13, 0.95},
		{"S:0|U:abc|J:", -8617502302, 0.02, 0.28},
		{"S:12345|U:b|J:2000", -2196496387, 0.87, 0.27},
	}
	for _, tc := range cases {
		h := PlacementHash(tc.in)
		if h != tc.hash {
			t.Fatalf("%q: expected hash %d, got %d", tc.in, tc.hash, h)
		}
		if got := HashFraction(h); math.Abs(got-tc.r1) > 1e-12 {
			t.Fatalf("%q: expected r1 %v, got %v", tc.in, tc.r1, got)
		}
		if got := HashFractionShifted(h); math.Abs(got-tc.r2) > 1e-12 {
			t.Fatalf("%q: expected r2 %v, got %v", tc.in, tc.r2, got)
		}
	}
}

func TestCodeUnitSum(t *testing.T) {
	if got := CodeUnitSum("ab"); got != 97+98 {
		t.Fatalf("expected 195, got %d", got)
	}
	// U+1F525 is a surrogate pair: 0xD83D + 0xDD25.
	if got := CodeUnitSum("\U0001F525"); got != 0xD83D+0xDD25 {
		t.Fatalf("expected surrogate sum, got %d", got)
	}
}
