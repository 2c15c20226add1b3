package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseMode(t *testing.T) {
	for _, name := range []string{"landing", "Public", " private "} {
		if _, err := ParseMode(name); err != nil {
			t.Fatalf("expected %q to parse, got %v", name, err)
		}
	}
	if _, err := ParseMode("lobby"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
	if ModeLanding.IsChat() || ModeLanding.ShowsFire() {
		t.Fatal("landing mode shows neither forest nor fire")
	}
	if !ModePrivate.IsChat() || !ModePublic.ShowsFire() {
		t.Fatal("chat modes show forest and fire")
	}
}

func TestFixedStepWithClock(t *testing.T) {
	now := time.Unix(100, 0)
	fs := NewFixedStep(10).WithClock(func() time.Time { return now })

	// The first call consumes the pre-filled accumulator.
	if !fs.ShouldStep() {
		t.Fatal("expected first call to step")
	}
	if fs.ShouldStep() {
		t.Fatal("expected no step without elapsed time")
	}
	now = now.Add(100 * time.Millisecond)
	if !fs.ShouldStep() {
		t.Fatal("expected a step after one period")
	}
	now = now.Add(10 * time.Second)
	if !fs.ShouldStep() {
		t.Fatal("expected a step after a stall")
	}
	if fs.ShouldStep() {
		t.Fatal("expected backlog to be dropped after a stall")
	}
}

func TestParameterControlClamp(t *testing.T) {
	c := ParameterControl{Min: 0, Max: 3, HasMin: true, HasMax: true}
	if got := c.Clamp(5); got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
	if got := c.Clamp(-1); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	snap := ParameterSnapshot{Groups: []ParameterGroup{{Name: "Fire", Params: []Parameter{FloatParam("fuel", "Fuel", 1.5)}}}}
	p, ok := snap.Lookup("fuel")
	if !ok || p.Value != "1.500" {
		t.Fatalf("expected fuel reading 1.500, got %+v", p)
	}
}
