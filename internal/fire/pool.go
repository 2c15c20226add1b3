package fire

import (
	"image/color"
	"math"
	"math/rand"
	"time"

	"campfire/internal/core"
)

// Dead marks a free slot in a pool.
const Dead = -500.0

// PoolConfig describes one particle system. Fuel-dependent values are
// computed as Base + PerFuel*fuel.
type PoolConfig struct {
	Name     string
	Capacity int
	// InitialActive is the active count before the first tick.
	InitialActive int
	// ActiveBase and ActivePerFuel give the active target, floored and capped
	// at Capacity. ActiveStep bounds how far the active count moves per tick.
	ActiveBase    float64
	ActivePerFuel float64
	ActiveStep    int

	LimitBase      float64
	LimitPerFuel   float64
	RiseBase       float64
	RisePerFuel    float64
	DriftAmp       float64
	DriftFreq      float64
	DriftCos       bool
	OpacityBase    float64
	OpacityPerFuel float64

	Size  float64
	Color color.RGBA
}

// EmberConfig is the ambient ember column above the fire.
func EmberConfig() PoolConfig {
	return PoolConfig{
		Name:          "embers",
		Capacity:      800,
		InitialActive: 150,
		ActiveBase:    80,
		ActivePerFuel: 60,
		ActiveStep:    5,
		LimitBase:     8,
		LimitPerFuel:  2,
		RiseBase:      0.02,
		RisePerFuel:   0.012,
		DriftAmp:      0.003,
		DriftFreq:     0.001,
		OpacityBase:   0.8,
		Size:          0.25,
		Color:         color.RGBA{R: 0xff, G: 0x66, B: 0x00, A: 0xff},
	}
}

// BodyEmberConfig is the slower cloud of large embers around the fire.
func BodyEmberConfig() PoolConfig {
	return PoolConfig{
		Name:           "body-embers",
		Capacity:       100,
		InitialActive:  20,
		ActiveBase:     20,
		ActivePerFuel:  40,
		ActiveStep:     5,
		LimitBase:      3.5,
		LimitPerFuel:   1.5,
		RiseBase:       0.005,
		RisePerFuel:    0.002,
		DriftAmp:       0.005,
		DriftFreq:      0.0005,
		DriftCos:       true,
		OpacityBase:    0.15,
		OpacityPerFuel: 0.05,
		Size:           0.8,
		Color:          color.RGBA{R: 0xff, G: 0x44, B: 0x00, A: 0xff},
	}
}

// Pool is a fixed-capacity particle buffer. Dead slots hold Y == Dead.
type Pool struct {
	cfg     PoolConfig
	rnd     *rand.Rand
	Points  []core.Vec3
	Active  int
	Opacity float64
}

// NewPool returns a pool with every slot dead.
func NewPool(cfg PoolConfig, rnd *rand.Rand) *Pool {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.ActiveStep <= 0 {
		cfg.ActiveStep = 1
	}
	p := &Pool{cfg: cfg, rnd: rnd, Points: make([]core.Vec3, cfg.Capacity), Active: cfg.InitialActive}
	for i := range p.Points {
		p.Points[i].Y = Dead
	}
	p.Opacity = cfg.OpacityBase
	return p
}

// Config returns the pool configuration.
func (p *Pool) Config() PoolConfig { return p.cfg }

// Target returns the active count the pool is moving toward at fuel.
func (p *Pool) Target(fuel float64) int {
	t := int(p.cfg.ActiveBase + math.Floor(fuel*p.cfg.ActivePerFuel))
	return max(0, min(t, p.cfg.Capacity))
}

// Alive counts the live slots.
func (p *Pool) Alive() int {
	n := 0
	for _, pt := range p.Points {
		if pt.Y != Dead {
			n++
		}
	}
	return n
}

// Tick moves the active count one bounded step toward its target, advances
// live particles and respawns dead slots below the active count.
func (p *Pool) Tick(fuel float64, now time.Time) {
	target := p.Target(fuel)
	switch {
	case p.Active < target:
		p.Active = min(target, p.Active+p.cfg.ActiveStep)
	case p.Active > target:
		p.Active = max(target, p.Active-p.cfg.ActiveStep)
	}

	limit := p.cfg.LimitBase + fuel*p.cfg.LimitPerFuel
	rise := p.cfg.RiseBase + fuel*p.cfg.RisePerFuel
	t := core.Millis(now) * p.cfg.DriftFreq
	for i := range p.Points {
		pt := &p.Points[i]
		if pt.Y != Dead {
			pt.Y += rise
			phase := t + float64(i)
			if p.cfg.DriftCos {
				pt.X += math.Cos(phase) * p.cfg.DriftAmp
			} else {
				pt.X += math.Sin(phase) * p.cfg.DriftAmp
			}
			if pt.Y > limit {
				pt.Y = Dead
			}
		} else if i < p.Active {
			p.spawn(pt, fuel)
		}
	}
	p.Opacity = p.cfg.OpacityBase + fuel*p.cfg.OpacityPerFuel
}

func (p *Pool) spawn(pt *core.Vec3, fuel float64) {
	spread := 1 + math.Min(fuel*0.2, 2)
	pt.X = (p.rnd.Float64() - 0.5) * spread
	pt.Y = p.rnd.Float64() * 4
	pt.Z = (p.rnd.Float64() - 0.5) * spread
}

// Reset kills every particle.
func (p *Pool) Reset() {
	for i := range p.Points {
		p.Points[i] = core.Vec3{Y: Dead}
	}
	p.Active = p.cfg.InitialActive
}
