package world

import "strconv"

// Params holds the counts and ranges for procedural placement. Every client in
// a room must use the same values, so they are only changed for local tools.
type Params struct {
	TreeSlots    int
	TreeGapMin   float64
	TreeGapMax   float64
	TreeDistMin  float64
	TreeDistSpan float64

	Boulders int

	GrassClumps int
	GrassGapMin float64
	GrassGapMax float64

	MossPatches int
	Litter      int
	MistPoints  int
	Stars       int
	Fireflies   int
}

// Config controls the World Builder.
type Config struct {
	Params Params
}

// DefaultConfig returns the standard forest composition.
func DefaultConfig() Config {
	return Config{
		Params: Params{
			TreeSlots:    22,
			TreeGapMin:   0.8,
			TreeGapMax:   2.3,
			TreeDistMin:  9,
			TreeDistSpan: 8,
			Boulders:     6,
			GrassClumps:  320,
			GrassGapMin:  1.2,
			GrassGapMax:  1.9,
			MossPatches:  60,
			Litter:       300,
			MistPoints:   50,
			Stars:        400,
			Fireflies:    30,
		},
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	counts := map[string]*int{
		"trees":     &c.Params.TreeSlots,
		"boulders":  &c.Params.Boulders,
		"grass":     &c.Params.GrassClumps,
		"moss":      &c.Params.MossPatches,
		"litter":    &c.Params.Litter,
		"mist":      &c.Params.MistPoints,
		"stars":     &c.Params.Stars,
		"fireflies": &c.Params.Fireflies,
	}
	for key, dst := range counts {
		if v, ok := cfg[key]; ok {
			if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
				*dst = parsed
			}
		}
	}
	if v, ok := cfg["tree_gap_min"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Params.TreeGapMin = parsed
		}
	}
	if v, ok := cfg["tree_gap_max"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Params.TreeGapMax = parsed
		}
	}
	if c.Params.TreeGapMax < c.Params.TreeGapMin {
		c.Params.TreeGapMax = c.Params.TreeGapMin
	}
	return c
}
