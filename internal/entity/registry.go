package entity

import (
	"image/color"
	"math/rand"
	"time"

	"campfire/internal/core"
	"campfire/internal/gfx"
)

var whiteRGBA = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Registry owns the entity set. It is driven from the scene tick only.
type Registry struct {
	arena    *gfx.Arena
	rnd      *rand.Rand
	entities []*Entity
	byID     map[string]*Entity

	// newest is the latest join time seen so far; zero until the first sync
	// that carries a join time.
	newest int64

	// OnArrival is invoked at most once per Sync when a strictly newer
	// participant appears.
	OnArrival func(newest Participant)
}

// NewRegistry creates an empty registry. rnd seeds each entity's sway.
func NewRegistry(arena *gfx.Arena, rnd *rand.Rand) *Registry {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Registry{arena: arena, rnd: rnd, byID: make(map[string]*Entity)}
}

// Len reports the number of entities, including those still sinking.
func (r *Registry) Len() int { return len(r.entities) }

// Get returns the entity for id.
func (r *Registry) Get(id string) (*Entity, bool) {
	e, ok := r.byID[id]
	return e, ok
}

// Entities returns the entities in creation order.
func (r *Registry) Entities() []*Entity {
	out := make([]*Entity, len(r.entities))
	copy(out, r.entities)
	return out
}

// Sync reconciles the entity set with the participant list. It reports
// whether a new arrival was detected, in which case every older participant
// gets a notification bubble showing the newcomer's glyph.
func (r *Registry) Sync(participants []Participant, seed int64, mode core.Mode, now time.Time) bool {
	if !mode.IsChat() || len(participants) == 0 {
		for _, e := range r.entities {
			e.Leaving = true
		}
		return false
	}

	var current int64
	var newest Participant
	for _, p := range participants {
		if p.JoinedAt > current {
			current = p.JoinedAt
			newest = p
		}
	}
	arrival := r.newest > 0 && current > r.newest
	if arrival || (r.newest == 0 && current > 0) {
		r.newest = current
	}
	newestGlyph := GlyphFor(newest)

	present := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		present[p.ID] = struct{}{}
	}
	for _, e := range r.entities {
		if _, ok := present[e.ID]; !ok {
			e.Leaving = true
		}
	}

	notified := false
	for _, p := range participants {
		pl := Place(seed, p.ID, p.JoinedAt)
		glyph := GlyphFor(p)
		e, ok := r.byID[p.ID]
		if ok {
			e.Leaving = false
			e.Placement = pl
			e.JoinedAt = p.JoinedAt
			e.setGlyph(glyph)
			e.animate()
		} else {
			e = newEntity(r.arena, p.ID, glyph, r.rnd.Float64()*10, pl)
			e.JoinedAt = p.JoinedAt
			r.entities = append(r.entities, e)
			r.byID[p.ID] = e
		}
		if arrival && p.JoinedAt < current {
			e.Notice.NotifiedAt = now
			e.setNoticeGlyph(newestGlyph)
			notified = true
		}
	}

	if notified && r.OnArrival != nil {
		r.OnArrival(newest)
	}
	return notified
}

// Tick advances rise and sink transitions and the bubble lifecycles. Entities
// that finish sinking are removed and their resources released.
func (r *Registry) Tick(now time.Time, allowRising bool, mode core.Mode) {
	kept := r.entities[:0]
	for _, e := range r.entities {
		if e.Leaving {
			e.Progress -= riseStep
			if e.Progress <= 0 {
				delete(r.byID, e.ID)
				e.dispose()
				continue
			}
		} else if e.Progress < 1 && allowRising {
			e.Progress = min(1, e.Progress+riseStep)
		}
		e.animate()
		e.Notice.tick(now)
		e.Speech.tick(now, mode)
		kept = append(kept, e)
	}
	for i := len(kept); i < len(r.entities); i++ {
		r.entities[i] = nil
	}
	r.entities = kept
}

// Sway applies the per-frame flicker scale and yaw wobble.
func (r *Registry) Sway(now time.Time, flicker float64) {
	ms := core.Millis(now)
	for _, e := range r.entities {
		e.sway(ms, flicker)
	}
}

// ApplyMessages reconciles speech bubbles with the active message list. An
// empty list hides every bubble that is not already burning. A bubble whose
// sender no longer has a message starts burning.
func (r *Registry) ApplyMessages(msgs []Message, now time.Time) {
	if len(msgs) == 0 {
		for _, e := range r.entities {
			if !e.Speech.Burning() {
				e.Speech.hide()
			}
		}
		return
	}

	active := make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		active[m.SenderID] = struct{}{}
	}
	for _, e := range r.entities {
		if e.Speech.Shown() && !e.Speech.Burning() {
			if _, ok := active[e.ID]; !ok {
				e.Speech.burn(now)
			}
		}
	}

	for _, m := range msgs {
		e, ok := r.byID[m.SenderID]
		if !ok || m.Text == e.Speech.Text {
			continue
		}
		e.setSpeechText(m.Text)
		created := now
		if m.CreatedAt != 0 {
			created = time.UnixMilli(m.CreatedAt)
		}
		e.Speech.CreatedAt = created
		e.Speech.State = SpeechFadingIn
		e.Speech.Opacity = 0
	}
}

// Dispose removes every entity and releases its resources. Safe to repeat.
func (r *Registry) Dispose() {
	for _, e := range r.entities {
		e.dispose()
	}
	r.entities = nil
	r.byID = make(map[string]*Entity)
}
