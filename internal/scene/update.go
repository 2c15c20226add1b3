package scene

import (
	"campfire/internal/core"
	"campfire/internal/entity"
)

// Updates accepted by Push. Each replaces the previous value wholesale and is
// applied at the start of the next tick.

// SetParticipants carries the occupant list and the room seed.
type SetParticipants struct {
	Participants []entity.Participant
	Seed         int64
}

// SetUserCount drives the fuel baseline.
type SetUserCount struct {
	N int
}

// SetMessages carries the active message of each sender.
type SetMessages struct {
	Messages []entity.Message
}

// SetMode switches between landing, public and private.
type SetMode struct {
	Mode core.Mode
}

// SetMuted mutes or unmutes all audio.
type SetMuted struct {
	Muted bool
}

// SetAllowRising holds new entities below ground until allowed.
type SetAllowRising struct {
	Allow bool
}

// SetImmersive toggles the immersive camera presets.
type SetImmersive struct {
	On bool
}

// Flare spikes the fire.
type Flare struct{}
