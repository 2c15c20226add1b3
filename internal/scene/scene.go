// Package scene is the frame scheduler. It owns the world, the participant
// entities, the fire and the camera, applies queued updates at tick
// boundaries and hands the resulting state to a renderer.
package scene

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"campfire/internal/core"
	"campfire/internal/entity"
	"campfire/internal/fire"
	"campfire/internal/gfx"
	"campfire/internal/world"
	pcore "campfire/pkg/core"
	"campfire/pkg/logger"

	"github.com/sirupsen/logrus"
)

// ErrClosed is returned by Push after Close.
var ErrClosed = errors.New("scene closed")

// Life sound interval bounds.
const (
	lifeMin  = 15 * time.Second
	lifeSpan = 30 * time.Second
)

// Config holds the initial scene inputs.
type Config struct {
	Mode        core.Mode
	Seed        int64
	UserCount   int
	Muted       bool
	Immersive   bool
	AllowRising bool
	World       world.Config
	InboxSize   int
}

// DefaultConfig returns a public room with the default forest.
func DefaultConfig() Config {
	return Config{
		Mode:        core.ModePublic,
		Seed:        pcore.DefaultSeed,
		AllowRising: true,
		World:       world.DefaultConfig(),
		InboxSize:   64,
	}
}

// Deps are the collaborators a scene drives. Nil fields get silent defaults.
type Deps struct {
	Renderer Renderer
	Audio    Audio
	Clock    core.Clock
	Rand     *rand.Rand
	Log      *logrus.Entry
}

// Renderer receives the scene state once per tick.
type Renderer interface {
	Render(st *State)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(st *State)

// Render calls f.
func (f RendererFunc) Render(st *State) { f(st) }

// State is the scene tree handed to renderers. It is only valid during the
// Render call.
type State struct {
	Now       time.Time
	Tick      int
	Mode      core.Mode
	Arena     *gfx.Arena
	World     *world.Bundle
	Materials *world.Materials
	Entities  []*entity.Entity

	Fuel       float64
	Hearth     *fire.Hearth
	Embers     *fire.Pool
	BodyEmbers *fire.Pool
	Light      fire.Light

	ShowForest bool
	ShowFire   bool
	Fog        bool

	Viewport core.Size
	Camera   Camera
	Muted    bool
}

// Scene is driven by a single goroutine calling Tick. Push may be called
// from any goroutine.
type Scene struct {
	cfg      Config
	inbox    chan any
	done     chan struct{}
	closed   bool
	renderer Renderer
	audio    Audio
	clock    core.Clock
	rnd      *rand.Rand
	log      *logrus.Entry

	arena      *gfx.Arena
	builder    *world.Builder
	bundle     *world.Bundle
	registry   *entity.Registry
	fuel       *fire.Fuel
	hearth     *fire.Hearth
	embers     *fire.Pool
	bodyEmbers *fire.Pool
	viewport   *Viewport
	settle     settle
	nextLife   time.Time

	mode         core.Mode
	seed         int64
	muted        bool
	allowRising  bool
	participants []entity.Participant
	messages     []entity.Message

	state State
}

// New builds the initial world and returns a scene ready to tick.
func New(cfg Config, deps Deps) *Scene {
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = 64
	}
	if deps.Renderer == nil {
		deps.Renderer = RendererFunc(func(*State) {})
	}
	if deps.Audio == nil {
		deps.Audio = newSilentAudio()
	}
	if deps.Clock == nil {
		deps.Clock = core.SystemClock
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if deps.Log == nil {
		deps.Log = logger.Log.WithField("component", "scene")
	}

	arena := gfx.NewArena()
	s := &Scene{
		cfg:         cfg,
		inbox:       make(chan any, cfg.InboxSize),
		done:        make(chan struct{}),
		renderer:    deps.Renderer,
		audio:       deps.Audio,
		clock:       deps.Clock,
		rnd:         deps.Rand,
		log:         deps.Log,
		arena:       arena,
		builder:     world.NewBuilder(cfg.World, arena, nil),
		registry:    entity.NewRegistry(arena, deps.Rand),
		fuel:        fire.NewFuel(),
		viewport:    NewViewport(cfg.Immersive),
		mode:        cfg.Mode,
		seed:        cfg.Seed,
		muted:       cfg.Muted,
		allowRising: cfg.AllowRising,
	}
	embers, body := fire.EmberConfig(), fire.BodyEmberConfig()
	s.hearth = fire.NewHearth(arena, embers, body)
	s.embers = fire.NewPool(embers, deps.Rand)
	s.bodyEmbers = fire.NewPool(body, deps.Rand)
	s.fuel.SetUserCount(cfg.UserCount)
	s.registry.OnArrival = func(p entity.Participant) {
		s.log.WithField("participant", p.ID).Info("arrival")
		s.audio.PlayArrival()
	}
	s.audio.SetMuted(cfg.Muted)

	now := s.clock()
	s.rebuild(now)
	s.nextLife = now.Add(s.lifeDelay())
	return s
}

// Push queues an update for the next tick. It blocks while the inbox is full.
func (s *Scene) Push(update any) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.inbox <- update:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

// Ready is closed once audio assets have settled.
func (s *Scene) Ready() <-chan struct{} { return s.audio.Ready() }

// Audio returns the audio handle.
func (s *Scene) Audio() Audio { return s.audio }

// Mode returns the current mode.
func (s *Scene) Mode() core.Mode { return s.mode }

// Muted reports whether audio is muted.
func (s *Scene) Muted() bool { return s.muted }

// Arena exposes the resource arena, mainly for leak checks.
func (s *Scene) Arena() *gfx.Arena { return s.arena }

// Viewport returns the viewport controller.
func (s *Scene) Viewport() *Viewport { return s.viewport }

// Flare spikes the fire and plays the burn sound.
func (s *Scene) Flare() {
	if s.closed {
		return
	}
	s.fuel.Flare()
	s.audio.PlayBurn()
}

// Resize forwards a new surface size to the viewport.
func (s *Scene) Resize(w, h int) bool {
	if s.closed {
		return false
	}
	return s.viewport.Resize(w, h)
}

// Tick advances the scene by one frame and renders it.
func (s *Scene) Tick(now time.Time) {
	if s.closed {
		return
	}
	s.drain(now)

	s.fuel.Tick()
	s.registry.Tick(now, s.allowRising, s.mode)

	fuel := s.fuel.Current
	s.embers.Tick(fuel, now)
	s.audio.SetFuel(fuel)
	s.bodyEmbers.Tick(fuel, now)

	light := fire.LightFor(fuel, fire.Flicker(now))
	s.updateHearth(light)
	s.builder.Materials().SetGlow(light.FoliageGlow, light.TrunkGlow)
	s.bundle.Tick(now)
	s.registry.Sway(now, light.Flicker)

	for n := s.settle.due(now); n > 0; n-- {
		s.viewport.replay()
	}
	if !now.Before(s.nextLife) {
		s.audio.PlayLife()
		s.nextLife = now.Add(s.lifeDelay())
	}

	s.state = State{
		Now:        now,
		Tick:       s.state.Tick + 1,
		Mode:       s.mode,
		Arena:      s.arena,
		World:      s.bundle,
		Materials:  s.builder.Materials(),
		Entities:   s.registry.Entities(),
		Fuel:       fuel,
		Hearth:     s.hearth,
		Embers:     s.embers,
		BodyEmbers: s.bodyEmbers,
		Light:      light,
		ShowForest: s.mode.IsChat(),
		ShowFire:   s.mode.ShowsFire(),
		Fog:        s.mode.IsChat(),
		Viewport:   s.viewport.Size(),
		Camera:     s.viewport.Camera,
		Muted:      s.muted,
	}
	s.renderer.Render(&s.state)
}

// State returns the state of the last tick.
func (s *Scene) State() *State { return &s.state }

// Close stops the scene and releases every resource. Safe to repeat.
func (s *Scene) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	s.bundle.Dispose()
	s.builder.Materials().Dispose()
	s.registry.Dispose()
	s.hearth.Dispose()
	s.embers.Reset()
	s.bodyEmbers.Reset()
	if err := s.audio.Close(); err != nil {
		return err
	}
	s.log.WithField("live", s.arena.Live(0)).Debug("scene closed")
	return nil
}

func (s *Scene) drain(now time.Time) {
	for {
		select {
		case u := <-s.inbox:
			s.apply(u, now)
		default:
			return
		}
	}
}

func (s *Scene) apply(update any, now time.Time) {
	switch u := update.(type) {
	case SetParticipants:
		s.participants = u.Participants
		if u.Seed != 0 && u.Seed != s.seed {
			s.seed = u.Seed
			s.rebuild(now)
		}
		s.sync(now)
	case SetUserCount:
		s.fuel.SetUserCount(u.N)
	case SetMessages:
		s.messages = u.Messages
		s.registry.ApplyMessages(u.Messages, now)
	case SetMode:
		if u.Mode == s.mode {
			return
		}
		s.mode = u.Mode
		s.bundle.SetVisible(u.Mode)
		s.sync(now)
		s.settle.begin(now)
		s.log.WithField("mode", u.Mode).Debug("mode changed")
	case SetMuted:
		s.muted = u.Muted
		s.audio.SetMuted(u.Muted)
	case SetAllowRising:
		s.allowRising = u.Allow
	case SetImmersive:
		s.viewport.SetImmersive(u.On)
	case Flare:
		s.Flare()
	default:
		s.log.WithField("type", fmt.Sprintf("%T", update)).Warn("ignoring unknown update")
	}
}

// sync reconciles entities and re-applies the current messages so bubbles
// appear for senders whose entity was only just created.
func (s *Scene) sync(now time.Time) {
	s.registry.Sync(s.participants, s.seed, s.mode, now)
	if len(s.messages) > 0 {
		s.registry.ApplyMessages(s.messages, now)
	}
}

func (s *Scene) rebuild(now time.Time) {
	s.bundle.Dispose()
	s.bundle = s.builder.Build(s.seed, s.mode, now)
	s.log.WithFields(logrus.Fields{
		"seed":  s.seed,
		"trees": len(s.bundle.Trees),
		"live":  s.arena.Live(0),
	}).Debug("world rebuilt")
}

func (s *Scene) updateHearth(l fire.Light) {
	if m := s.arena.Material(s.hearth.CoreMat); m != nil {
		m.Opacity = l.CoreOpacity
	}
	if m := s.arena.Material(s.hearth.GlowMat); m != nil {
		m.Opacity = l.GlowOpacity
	}
	if m := s.arena.Material(s.hearth.BodyEmberMat); m != nil {
		m.Opacity = s.bodyEmbers.Opacity
	}
}

func (s *Scene) lifeDelay() time.Duration {
	return lifeMin + time.Duration(s.rnd.Float64()*float64(lifeSpan))
}
