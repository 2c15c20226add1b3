package feed

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"campfire/internal/core"
)

var t0 = time.UnixMilli(1_700_000_000_000)

func newRoom(mode core.Mode) *Room {
	return NewRoom("test", mode, rand.New(rand.NewSource(1)))
}

func TestSeedHeldWhileOccupied(t *testing.T) {
	r := newRoom(core.ModePublic)
	if r.Seed() != 0 {
		t.Fatalf("expected no seed before anyone joins, got %d", r.Seed())
	}
	if err := r.Join("a", 0, t0); err != nil {
		t.Fatal(err)
	}
	seed := r.Seed()
	if seed <= 0 || seed >= SeedRange {
		t.Fatalf("expected a seed in range, got %d", seed)
	}
	if err := r.Join("b", 0, t0.Add(time.Second)); err != nil {
		t.Fatal(err)
	}
	r.Leave("a")
	if r.Seed() != seed {
		t.Fatalf("expected seed kept while occupied, got %d", r.Seed())
	}
	r.Leave("b")
	if r.Seed() != 0 {
		t.Fatalf("expected the last one out to reset the seed, got %d", r.Seed())
	}
	if err := r.Join("c", 0, t0.Add(2*time.Second)); err != nil {
		t.Fatal(err)
	}
	if r.Seed() == 0 {
		t.Fatal("expected a fresh seed")
	}
}

func TestRejoinKeepsSeatAndSeed(t *testing.T) {
	r := newRoom(core.ModePrivate)
	if err := r.Join("a", 1000, t0); err != nil {
		t.Fatal(err)
	}
	if err := r.Say("a", "hi", t0); err != nil {
		t.Fatal(err)
	}
	seed := r.Seed()
	glyph := *r.Snapshot(t0).Participants[0].GlyphIndex
	if err := r.Join("a", 5000, t0.Add(time.Second)); err != nil {
		t.Fatal(err)
	}
	st := r.Snapshot(t0.Add(time.Second))
	if r.Seed() != seed || len(st.Messages) != 1 {
		t.Fatalf("expected rejoin to keep seed and messages, got seed %d and %d messages", r.Seed(), len(st.Messages))
	}
	p := st.Participants[0]
	if p.JoinedAt != 1000 || *p.GlyphIndex != glyph {
		t.Fatalf("expected the original seat, got %+v", p)
	}
}

func TestPresenceExpires(t *testing.T) {
	r := newRoom(core.ModePublic)
	_ = r.Join("a", 0, t0)
	_ = r.Join("b", 0, t0)
	if err := r.Heartbeat("b", t0.Add(45*time.Second)); err != nil {
		t.Fatal(err)
	}
	r.Tick(t0.Add(PresenceTimeout))
	if r.Users() != 1 {
		t.Fatalf("expected a to time out, got %d users", r.Users())
	}
	r.Tick(t0.Add(45*time.Second + PresenceTimeout))
	if !r.Empty() || r.Seed() != 0 {
		t.Fatalf("expected an empty room with no seed, got %d users seed %d", r.Users(), r.Seed())
	}
	if err := r.Heartbeat("a", t0); !errors.Is(err, ErrNotPresent) {
		t.Fatalf("expected ErrNotPresent, got %v", err)
	}
}

func TestPrivateSlotsHaveDistinctGlyphs(t *testing.T) {
	r := newRoom(core.ModePrivate)
	for i := 0; i < PrivateSlots; i++ {
		if err := r.Join(fmt.Sprintf("u%d", i), 0, t0); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}
	if err := r.Join("late", 0, t0); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	seen := map[int]bool{}
	for _, p := range r.Snapshot(t0).Participants {
		if p.GlyphIndex == nil {
			t.Fatalf("expected %s to have a glyph", p.ID)
		}
		if seen[*p.GlyphIndex] {
			t.Fatalf("glyph %d assigned twice", *p.GlyphIndex)
		}
		seen[*p.GlyphIndex] = true
	}
	r.Leave("u2")
	if err := r.Join("late", 0, t0); err != nil {
		t.Fatalf("expected the freed slot to be reused, got %v", err)
	}
	if n := len(r.Snapshot(t0).Participants); n != PrivateSlots {
		t.Fatalf("expected %d participants, got %d", PrivateSlots, n)
	}
}

func TestSayRules(t *testing.T) {
	r := newRoom(core.ModePublic)
	if err := r.Say("ghost", "boo", t0); !errors.Is(err, ErrNotPresent) {
		t.Fatalf("expected ErrNotPresent, got %v", err)
	}
	_ = r.Join("a", 0, t0)
	if err := r.Say("a", "   ", t0); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if err := r.Say("a", "hello", t0); err != nil {
		t.Fatal(err)
	}
	if err := r.Say("a", "again", t0); !errors.Is(err, ErrActiveMessage) {
		t.Fatalf("expected ErrActiveMessage, got %v", err)
	}
	if !r.Burn("a") || r.Burn("a") {
		t.Fatal("expected exactly one burn")
	}
	if err := r.Say("a", "again", t0); err != nil {
		t.Fatalf("expected a public sender to speak again after burning, got %v", err)
	}
}

func TestPrivateQuota(t *testing.T) {
	r := newRoom(core.ModePrivate)
	_ = r.Join("a", 0, t0)
	for i := 0; i < PrivateQuota; i++ {
		if err := r.Say("a", "hi", t0); err != nil {
			t.Fatalf("say %d: %v", i, err)
		}
		r.Burn("a")
	}
	if err := r.Say("a", "one more", t0); !errors.Is(err, ErrQuota) {
		t.Fatalf("expected ErrQuota, got %v", err)
	}
}

func TestMessageCapBurnsOldest(t *testing.T) {
	r := newRoom(core.ModePublic)
	for i := 0; i <= MessageCap; i++ {
		id := fmt.Sprintf("u%d", i)
		_ = r.Join(id, 0, t0)
		if err := r.Say(id, "hi", t0.Add(time.Duration(i)*time.Millisecond)); err != nil {
			t.Fatal(err)
		}
	}
	st := r.Snapshot(t0)
	if len(st.Messages) != MessageCap {
		t.Fatalf("expected %d messages, got %d", MessageCap, len(st.Messages))
	}
	if st.Messages[0].SenderID != "u1" {
		t.Fatalf("expected the oldest dropped, first is %s", st.Messages[0].SenderID)
	}
	burned := r.DrainBurned()
	if len(burned) != 1 || burned[0].SenderID != "u0" || burned[0].Expired {
		t.Fatalf("unexpected burns %+v", burned)
	}
	if len(r.DrainBurned()) != 0 {
		t.Fatal("expected burns cleared after drain")
	}
}

func TestMessagesExpire(t *testing.T) {
	cases := []struct {
		mode core.Mode
		ttl  time.Duration
	}{
		{core.ModePublic, 60 * time.Second},
		{core.ModePrivate, 30 * time.Second},
	}
	for _, tc := range cases {
		r := newRoom(tc.mode)
		_ = r.Join("a", 0, t0)
		_ = r.Say("a", "fading", t0)
		_ = r.Heartbeat("a", t0.Add(tc.ttl-5*time.Second))
		r.Tick(t0.Add(tc.ttl))
		if len(r.Snapshot(t0).Messages) != 1 {
			t.Fatalf("%s: expected the message alive at exactly its ttl", tc.mode)
		}
		r.Tick(t0.Add(tc.ttl + time.Second))
		burned := r.DrainBurned()
		if len(burned) != 1 || !burned[0].Expired {
			t.Fatalf("%s: expected an expiry burn, got %+v", tc.mode, burned)
		}
	}
}

func TestPhaseFor(t *testing.T) {
	cases := []struct {
		age  time.Duration
		mode core.Mode
		want Phase
	}{
		{10 * time.Second, core.ModePublic, PhaseNormal},
		{26 * time.Second, core.ModePublic, PhaseYellow},
		{41 * time.Second, core.ModePublic, PhaseRed},
		{56 * time.Second, core.ModePublic, PhaseCritical},
		{10 * time.Second, core.ModePrivate, PhaseNormal},
		{13 * time.Second, core.ModePrivate, PhaseYellow},
		{21 * time.Second, core.ModePrivate, PhaseRed},
		{28 * time.Second, core.ModePrivate, PhaseCritical},
	}
	for _, tc := range cases {
		if got := PhaseFor(tc.age, tc.mode); got != tc.want {
			t.Fatalf("%s at %v: expected %s, got %s", tc.mode, tc.age, tc.want, got)
		}
	}
}

func TestPublicParticipantsAreSenders(t *testing.T) {
	r := newRoom(core.ModePublic)
	_ = r.Join("quiet", 100, t0)
	_ = r.Join("loud", 200, t0)
	_ = r.Say("loud", "hey", t0)
	st := r.Snapshot(t0.Add(30 * time.Second))
	if st.Users != 2 {
		t.Fatalf("expected 2 users, got %d", st.Users)
	}
	if len(st.Participants) != 1 || st.Participants[0].ID != "loud" || st.Participants[0].JoinedAt != 200 {
		t.Fatalf("expected only the sender seated, got %+v", st.Participants)
	}
	if st.Participants[0].GlyphIndex != nil {
		t.Fatal("expected public participants without glyphs")
	}
	if st.Messages[0].Phase != PhaseYellow {
		t.Fatalf("expected yellow at 30s, got %s", st.Messages[0].Phase)
	}
	if ents := st.Entities(); len(ents) != 1 || ents[0].Text != "hey" {
		t.Fatalf("unexpected entity messages %+v", ents)
	}
}
