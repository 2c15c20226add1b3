package entity

import (
	"math"
	"time"

	"campfire/internal/core"
	"campfire/internal/gfx"
)

// Notification bubble timing, in milliseconds.
const (
	NoticeDuration = 5000
	noticeIntro    = 600
	noticeOutro    = 800
)

// Speech bubble timing, in milliseconds.
const (
	SpeechPublicTTL  = 62000
	SpeechPrivateTTL = 32000
	speechFadeIn     = 800
	speechTail       = 5000
	SpeechBurnTime   = 4000
)

// Notice is the arrival bubble shown over veterans when someone new joins.
type Notice struct {
	NotifiedAt time.Time
	Glyph      Glyph
	Texture    gfx.Handle
	Visible    bool
	Opacity    float64
	Scale      float64
}

func (n *Notice) tick(now time.Time) {
	if n.NotifiedAt.IsZero() {
		n.Visible = false
		return
	}
	age := sinceMillis(now, n.NotifiedAt)
	if age >= NoticeDuration || age < 0 {
		n.Visible = false
		return
	}
	intro := math.Min(1, age/noticeIntro)
	outro := math.Min(1, (NoticeDuration-age)/noticeOutro)
	alpha := math.Min(intro, outro)
	n.Visible = true
	n.Opacity = alpha
	if alpha > 0.8 {
		n.Scale = 1
	} else {
		n.Scale = alpha * 1.2
	}
}

// SpeechState is the lifecycle phase of a speech bubble.
type SpeechState uint8

const (
	SpeechHidden SpeechState = iota
	SpeechFadingIn
	SpeechSteady
	SpeechEvaporating
	SpeechBurning
)

func (s SpeechState) String() string {
	switch s {
	case SpeechFadingIn:
		return "fading-in"
	case SpeechSteady:
		return "steady"
	case SpeechEvaporating:
		return "evaporating"
	case SpeechBurning:
		return "burning"
	}
	return "hidden"
}

// Speech is the message bubble above an entity.
type Speech struct {
	State     SpeechState
	Text      string
	Preview   string
	Lines     []string
	CreatedAt time.Time
	BurnAt    time.Time
	Texture   gfx.Handle

	Opacity float64
	Tint    core.RGB
	ScaleX  float64
	ScaleY  float64
	// Y is the height of the bubble base above the entity origin.
	Y float64
}

// Shown reports whether the bubble is in the world.
func (s *Speech) Shown() bool { return s.State != SpeechHidden }

// Burning reports whether the bubble is in forced evaporation.
func (s *Speech) Burning() bool { return s.State == SpeechBurning }

// hide removes the bubble immediately and forgets its text.
func (s *Speech) hide() {
	s.finish()
	s.Text = ""
}

func (s *Speech) burn(now time.Time) {
	s.State = SpeechBurning
	s.BurnAt = now
}

// TTL returns the natural bubble lifetime for mode.
func TTL(mode core.Mode) float64 {
	if mode == core.ModePrivate {
		return SpeechPrivateTTL
	}
	return SpeechPublicTTL
}

func (s *Speech) tick(now time.Time, mode core.Mode) {
	if s.State == SpeechHidden {
		return
	}
	nowMs := core.Millis(now)
	alpha := 1.0
	floatY := 1.9
	tint := core.White

	if s.State == SpeechBurning {
		ev := math.Min(1, sinceMillis(now, s.BurnAt)/SpeechBurnTime)
		if ev >= 1 {
			s.finish()
			return
		}
		alpha = math.Max(0, 1-ev)
		floatY = 1.9 + ev*1.5
		pulse := math.Abs(math.Sin(nowMs*0.015))*0.6 + 0.4
		tint = core.RGB{R: 1, G: 1 - pulse, B: 1 - pulse}
	} else {
		age := sinceMillis(now, s.CreatedAt)
		duration := TTL(mode)
		evStart := duration - speechTail
		switch {
		case age >= duration:
			s.finish()
			return
		case age < speechFadeIn:
			s.State = SpeechFadingIn
			f := math.Max(0, age/speechFadeIn)
			alpha = f
			floatY = 2.2
		case age > evStart:
			s.State = SpeechEvaporating
			ev := (age - evStart) / speechTail
			alpha = math.Max(0, 1-ev)
			floatY = 1.9 + ev*0.8
			pulse := math.Abs(math.Sin(nowMs*0.01))*0.4 + 0.6
			tint = core.RGB{R: 1, G: 1 - ev*pulse, B: 1 - ev*pulse}
		default:
			s.State = SpeechSteady
		}
	}

	sc := math.Min(1, alpha*2)
	s.Opacity = alpha
	s.Tint = tint
	s.ScaleX = 1.8 * sc
	s.ScaleY = 0.9 * sc
	s.Y = 1.85 + (floatY - 1.9)
}

// finish ends the lifecycle. The text is kept so an unchanged resend stays a no-op.
func (s *Speech) finish() {
	s.State = SpeechHidden
	s.Opacity = 0
}

func sinceMillis(now, then time.Time) float64 {
	return float64(now.Sub(then)) / float64(time.Millisecond)
}
