package scene

import (
	"math"
	"strconv"

	"campfire/internal/core"
	"campfire/internal/fire"
)

// Parameters captures the live scene readings for the HUD.
func (s *Scene) Parameters() core.ParameterSnapshot {
	st := &s.state
	snap := core.ParameterSnapshot{}

	sceneGroup := core.ParameterGroup{Name: "Scene"}
	sceneGroup.Params = append(sceneGroup.Params,
		core.TextParam("mode", "Mode", s.mode.String()),
		core.TextParam("seed", "Seed", strconv.FormatInt(s.seed, 10)),
		core.IntParam("participants", "Participants", s.registry.Len()),
		core.IntParam("tick", "Tick", st.Tick),
		core.IntParam("live", "Resources", s.arena.Live(0)),
	)
	snap.Groups = append(snap.Groups, sceneGroup)

	fireGroup := core.ParameterGroup{Name: "Fire"}
	fireGroup.Params = append(fireGroup.Params,
		core.IntParam("users", "Users", s.fuel.Users()),
		core.FloatParam("fuel", "Fuel", s.fuel.Current),
		core.FloatParam("target", "Target", s.fuel.Target),
		core.FloatParam("intensity", "Light", st.Light.Intensity),
		core.IntParam("embers", "Embers", s.embers.Alive()),
		core.IntParam("body_embers", "Body embers", s.bodyEmbers.Alive()),
	)
	snap.Groups = append(snap.Groups, fireGroup)

	if b := s.bundle; b != nil {
		worldGroup := core.ParameterGroup{Name: "World"}
		worldGroup.Params = append(worldGroup.Params,
			core.IntParam("trees", "Trees", len(b.Trees)),
			core.IntParam("grass", "Grass", len(b.Grass)),
			core.IntParam("boulders", "Boulders", len(b.Boulders)),
			core.IntParam("fireflies", "Fireflies", len(b.Fireflies)),
		)
		snap.Groups = append(snap.Groups, worldGroup)
	}
	return snap
}

// ParameterControls lists the HUD-adjustable tunables.
func (s *Scene) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "users", Label: "Users", Step: 1, Min: 0, Max: 50, HasMin: true, HasMax: true},
		{Key: "target", Label: "Target", Step: 0.1, Min: 0, Max: fire.MaxFuel, HasMin: true, HasMax: true},
	}
}

// SetFloatParameter applies a HUD adjustment. It must be called from the
// goroutine that drives Tick.
func (s *Scene) SetFloatParameter(key string, value float64) bool {
	for _, c := range s.ParameterControls() {
		if c.Key != key {
			continue
		}
		value = c.Clamp(value)
		switch key {
		case "users":
			s.fuel.SetUserCount(int(math.Round(value)))
		case "target":
			s.fuel.Target = value
		}
		return true
	}
	return false
}
