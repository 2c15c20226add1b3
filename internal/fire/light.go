package fire

import (
	"math"
	"time"

	"campfire/internal/core"
)

// LightDistance is the reach of the fire's point light.
const LightDistance = 25

// Flicker returns the shared light wobble for now, in [-0.2, 0.2].
func Flicker(now time.Time) float64 {
	return math.Sin(core.Millis(now)*0.008) * 0.2
}

// Light holds every fuel-driven visual parameter for one frame.
type Light struct {
	Flicker   float64
	Intensity float64
	Distance  float64
	Color     core.RGB

	CoreScale   float64
	CoreOpacity float64
	GlowScale   float64
	GlowOpacity float64

	FoliageGlow float64
	TrunkGlow   float64
}

// LightFor derives the frame's light from the fuel level and flicker.
func LightFor(fuel, flicker float64) Light {
	return Light{
		Flicker:     flicker,
		Intensity:   2 + fuel*0.6 + flicker,
		Distance:    LightDistance,
		Color:       core.HSL(0.08+fuel*0.02, 1, 0.5),
		CoreScale:   1 + fuel*0.2 + flicker*0.1,
		CoreOpacity: 0.6 + fuel*0.2 + flicker*0.1,
		GlowScale:   1 + fuel*0.1 + flicker*0.02,
		GlowOpacity: 0.1 + fuel*0.3 + flicker*0.05,
		FoliageGlow: 0.05 + fuel*0.15 + flicker*0.05,
		TrunkGlow:   0.05 + fuel*0.12 + flicker*0.05,
	}
}
