package feed

import (
	"errors"
	"math/rand"
	"slices"
	"strings"
	"time"

	"campfire/internal/core"
	"campfire/internal/entity"
)

// Room limits and timings.
const (
	PresenceTimeout   = 60 * time.Second
	HeartbeatInterval = 15 * time.Second
	PrivateSlots      = 5
	MessageCap        = 12
	PrivateQuota      = 2
	MaxTextLen        = 280
	SeedRange         = 1_000_000
)

var (
	ErrRoomFull      = errors.New("room is full")
	ErrNotPresent    = errors.New("not present in room")
	ErrActiveMessage = errors.New("sender already has an active message")
	ErrQuota         = errors.New("message quota exhausted")
	ErrEmptyText     = errors.New("empty message")
)

// Phase grades a message by age so clients can tint it as it burns down.
type Phase string

const (
	PhaseNormal   Phase = "normal"
	PhaseYellow   Phase = "yellow"
	PhaseRed      Phase = "red"
	PhaseCritical Phase = "critical"
)

// MessageTTL is how long a message lives before it burns automatically.
func MessageTTL(mode core.Mode) time.Duration {
	if mode == core.ModePrivate {
		return 30 * time.Second
	}
	return 60 * time.Second
}

// PhaseFor grades a message of the given age.
func PhaseFor(age time.Duration, mode core.Mode) Phase {
	yellow, red, critical := 25*time.Second, 40*time.Second, 55*time.Second
	if mode == core.ModePrivate {
		yellow, red, critical = 12*time.Second, 20*time.Second, 27*time.Second
	}
	switch {
	case age > critical:
		return PhaseCritical
	case age > red:
		return PhaseRed
	case age > yellow:
		return PhaseYellow
	}
	return PhaseNormal
}

type presence struct {
	joinedAt int64
	lastSeen time.Time
}

type slot struct {
	id       string
	glyph    int
	joinedAt int64
}

type message struct {
	senderID  string
	text      string
	createdAt time.Time
	glyph     *int
}

// Room is the authoritative state of one campfire. Public rooms show the
// senders of active messages around the fire; private rooms seat up to five
// occupants with distinct glyphs. Room is not safe for concurrent use.
type Room struct {
	Code string
	Mode core.Mode

	rnd      *rand.Rand
	seed     int64
	presence map[string]presence
	slots    []*slot
	messages []message
	sent     map[string]int
	burned   []Burned
	version  uint64
}

// NewRoom creates an empty room. Seeds are drawn from rnd.
func NewRoom(code string, mode core.Mode, rnd *rand.Rand) *Room {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Room{
		Code:     code,
		Mode:     mode,
		rnd:      rnd,
		presence: make(map[string]presence),
		sent:     make(map[string]int),
	}
}

// Seed returns the current room seed; zero until someone joins.
func (r *Room) Seed() int64 { return r.seed }

// Version increases on every observable change.
func (r *Room) Version() uint64 { return r.version }

// Users counts present participants.
func (r *Room) Users() int { return len(r.presence) }

// Empty reports whether nobody is present.
func (r *Room) Empty() bool { return len(r.presence) == 0 }

func (r *Room) occupied() int {
	n := 0
	for _, s := range r.slots {
		if s != nil {
			n++
		}
	}
	return n
}

func (r *Room) slotOf(id string) *slot {
	for _, s := range r.slots {
		if s != nil && s.id == id {
			return s
		}
	}
	return nil
}

// Join registers id as present. A room nobody else is in gets a fresh seed
// and loses its old messages. Private rooms also allocate a slot with an
// unused glyph.
func (r *Room) Join(id string, joinedAt int64, now time.Time) error {
	if joinedAt == 0 {
		joinedAt = now.UnixMilli()
	}
	r.expire(now)
	_, present := r.presence[id]
	othersActive := len(r.presence) > 0 && !(present && len(r.presence) == 1)
	mine := r.slotOf(id)

	if r.Mode == core.ModePrivate && mine == nil && r.occupied() >= PrivateSlots {
		return ErrRoomFull
	}
	if r.seed == 0 || (!othersActive && mine == nil && !present) {
		r.reset()
	}
	if p, ok := r.presence[id]; ok {
		joinedAt = p.joinedAt
	}
	r.presence[id] = presence{joinedAt: joinedAt, lastSeen: now}

	if r.Mode == core.ModePrivate && mine == nil {
		r.seat(id, joinedAt)
	}
	r.version++
	return nil
}

func (r *Room) reset() {
	r.seed = 1 + r.rnd.Int63n(SeedRange-1)
	r.messages = nil
	r.sent = make(map[string]int)
}

func (r *Room) seat(id string, joinedAt int64) {
	taken := make([]bool, entity.GlyphCount)
	for _, s := range r.slots {
		if s != nil {
			taken[s.glyph] = true
		}
	}
	var free []int
	for g, t := range taken {
		if !t {
			free = append(free, g)
		}
	}
	if len(free) == 0 {
		return
	}
	s := &slot{id: id, glyph: free[r.rnd.Intn(len(free))], joinedAt: joinedAt}
	if i := slices.Index(r.slots, nil); i >= 0 {
		r.slots[i] = s
		return
	}
	r.slots = append(r.slots, s)
}

// Heartbeat refreshes id's presence.
func (r *Room) Heartbeat(id string, now time.Time) error {
	p, ok := r.presence[id]
	if !ok {
		return ErrNotPresent
	}
	p.lastSeen = now
	r.presence[id] = p
	return nil
}

// Leave removes id. When the last occupant leaves the room forgets its seed
// and messages.
func (r *Room) Leave(id string) {
	if _, ok := r.presence[id]; !ok && r.slotOf(id) == nil {
		return
	}
	delete(r.presence, id)
	for i, s := range r.slots {
		if s != nil && s.id == id {
			r.slots[i] = nil
		}
	}
	if r.Empty() {
		r.seed = 0
		r.slots = nil
		r.messages = nil
		r.sent = make(map[string]int)
	}
	r.version++
}

// Say posts id's message. A sender holds at most one active message, and in
// private rooms at most two over the room's lifetime. Past the cap the
// oldest message burns.
func (r *Room) Say(id, text string, now time.Time) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	if _, ok := r.presence[id]; !ok {
		return ErrNotPresent
	}
	for _, m := range r.messages {
		if m.senderID == id {
			return ErrActiveMessage
		}
	}
	if r.Mode == core.ModePrivate && r.sent[id] >= PrivateQuota {
		return ErrQuota
	}
	if runes := []rune(text); len(runes) > MaxTextLen {
		text = string(runes[:MaxTextLen])
	}
	m := message{senderID: id, text: text, createdAt: now}
	if s := r.slotOf(id); s != nil {
		g := s.glyph
		m.glyph = &g
	}
	r.messages = append(r.messages, m)
	r.sent[id]++
	if len(r.messages) > MessageCap {
		r.burn(0, false)
	}
	r.presence[id] = presence{joinedAt: r.presence[id].joinedAt, lastSeen: now}
	r.version++
	return nil
}

// Burn removes id's active message.
func (r *Room) Burn(id string) bool {
	for i, m := range r.messages {
		if m.senderID == id {
			r.burn(i, false)
			r.version++
			return true
		}
	}
	return false
}

func (r *Room) burn(i int, expired bool) {
	r.burned = append(r.burned, Burned{SenderID: r.messages[i].senderID, Expired: expired})
	r.messages = slices.Delete(r.messages, i, i+1)
}

// Tick expires stale presence and burns messages past their TTL.
func (r *Room) Tick(now time.Time) {
	r.expire(now)
	ttl := MessageTTL(r.Mode)
	for i := 0; i < len(r.messages); {
		if now.Sub(r.messages[i].createdAt) > ttl {
			r.burn(i, true)
			r.version++
			continue
		}
		i++
	}
}

func (r *Room) expire(now time.Time) {
	for id, p := range r.presence {
		if now.Sub(p.lastSeen) >= PresenceTimeout {
			r.Leave(id)
		}
	}
}

// DrainBurned returns and clears the burns since the last call.
func (r *Room) DrainBurned() []Burned {
	out := r.burned
	r.burned = nil
	return out
}

// Snapshot builds the wire state as of now.
func (r *Room) Snapshot(now time.Time) RoomState {
	st := RoomState{
		Room:         r.Code,
		Mode:         r.Mode,
		Seed:         r.seed,
		Users:        len(r.presence),
		Participants: []entity.Participant{},
		Messages:     make([]Message, 0, len(r.messages)),
	}
	for _, m := range r.messages {
		st.Messages = append(st.Messages, Message{
			SenderID:   m.senderID,
			Text:       m.text,
			CreatedAt:  m.createdAt.UnixMilli(),
			GlyphIndex: m.glyph,
			Phase:      PhaseFor(now.Sub(m.createdAt), r.Mode),
		})
	}

	if r.Mode == core.ModePrivate {
		for _, s := range r.slots {
			if s == nil {
				continue
			}
			if _, ok := r.presence[s.id]; !ok {
				continue
			}
			g := s.glyph
			st.Participants = append(st.Participants, entity.Participant{ID: s.id, JoinedAt: s.joinedAt, GlyphIndex: &g})
		}
		return st
	}
	// Public rooms seat whoever currently has something to say.
	for _, m := range r.messages {
		joined := m.createdAt.UnixMilli()
		if p, ok := r.presence[m.senderID]; ok {
			joined = p.joinedAt
		}
		st.Participants = append(st.Participants, entity.Participant{ID: m.senderID, JoinedAt: joined})
	}
	return st
}
