package main

import (
	"bytes"
	"strings"
	"testing"

	"campfire/internal/world"
)

func TestDigestIsStablePerSeed(t *testing.T) {
	cfg := world.FromMap(map[string]string{"grass": "8", "stars": "8", "litter": "8"})
	var a, b bytes.Buffer
	if err := digest(&a, cfg, []string{"7", "8"}, false); err != nil {
		t.Fatalf("digest: %v", err)
	}
	if err := digest(&b, cfg, []string{"7", "8"}, false); err != nil {
		t.Fatalf("digest: %v", err)
	}
	if a.String() != b.String() {
		t.Fatalf("expected repeat runs to agree:\n%s\n%s", a.String(), b.String())
	}
	lines := strings.Split(strings.TrimSpace(a.String()), "\n")
	if len(lines) != 2 || lines[0][2:] == lines[1][2:] {
		t.Fatalf("expected distinct digests per seed, got %q", lines)
	}
}

func TestDigestVerboseCounts(t *testing.T) {
	cfg := world.FromMap(map[string]string{"trees": "4", "grass": "3"})
	var out bytes.Buffer
	if err := digest(&out, cfg, []string{"1"}, true); err != nil {
		t.Fatalf("digest: %v", err)
	}
	if !strings.Contains(out.String(), "grass=") {
		t.Fatalf("expected counts, got %q", out.String())
	}
}

func TestDigestRejectsBadSeed(t *testing.T) {
	var out bytes.Buffer
	if err := digest(&out, world.DefaultConfig(), []string{"oak"}, false); err == nil {
		t.Fatal("expected an error for a non-numeric seed")
	}
}

func TestDigestZeroSeedIsDefault(t *testing.T) {
	cfg := world.FromMap(map[string]string{"grass": "4"})
	var out bytes.Buffer
	if err := digest(&out, cfg, []string{"0", "12345"}, false); err != nil {
		t.Fatalf("digest: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || lines[0] != lines[1] {
		t.Fatalf("expected seed 0 to report the default forest, got %q", lines)
	}
}
