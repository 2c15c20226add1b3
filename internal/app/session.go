// Package app wires the scene to its audio, feed and front end. The ebiten
// Game adapter needs the ebiten build tag; Session builds everywhere and is
// shared with the terminal client.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"campfire/internal/audio"
	"campfire/internal/config"
	"campfire/internal/core"
	"campfire/internal/feed"
	"campfire/internal/scene"
	"campfire/internal/world"
	pcore "campfire/pkg/core"
	"campfire/pkg/logger"

	"github.com/sirupsen/logrus"
)

// ErrReadOnly is returned by Say when the feed cannot post messages.
var ErrReadOnly = errors.New("feed does not accept messages")

// Session is one client run: a scene, the audio driving it and the feed
// filling it.
type Session struct {
	Scene *scene.Scene
	Audio *audio.Controller

	source feed.Source
	clock  core.Clock
	log    *logrus.Entry
	cancel context.CancelFunc
	wg     sync.WaitGroup
	rise   *time.Timer
	once   sync.Once
}

// Options adjust Start for tests and alternate front ends.
type Options struct {
	Renderer scene.Renderer
	Sink     audio.Sink
	Clock    core.Clock
	World    *world.Config
}

// Start builds the scene for cfg and starts the feed in the background. The
// caller drives Scene.Tick and must call Close.
func Start(ctx context.Context, cfg *config.Config, opts Options) (*Session, error) {
	mode, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = core.SystemClock
	}
	if opts.Sink == nil {
		opts.Sink = audio.NewNullSink()
	}
	log := logger.Log.WithField("component", "session")

	ac := audio.New(audio.Config{Assets: assets(cfg.Assets), Muted: cfg.Muted}, opts.Sink)

	sc := scene.DefaultConfig()
	sc.Mode = mode
	sc.Seed = cfg.Seed
	if sc.Seed == 0 {
		sc.Seed = pcore.DefaultSeed
	}
	sc.Muted = cfg.Muted
	sc.Immersive = cfg.Immersive
	sc.AllowRising = cfg.RiseDelay <= 0
	if opts.World != nil {
		sc.World = *opts.World
	}

	s := &Session{
		Audio: ac,
		clock: opts.Clock,
		log:   log,
	}
	s.Scene = scene.New(sc, scene.Deps{
		Renderer: opts.Renderer,
		Audio:    ac,
		Clock:    opts.Clock,
		Log:      logger.Log.WithField("component", "scene"),
	})

	if !sc.AllowRising {
		s.rise = time.AfterFunc(cfg.RiseDelay, func() {
			if err := s.Scene.Push(scene.SetAllowRising{Allow: true}); err != nil && !errors.Is(err, scene.ErrClosed) {
				log.WithError(err).Warn("allow rising")
			}
		})
	}

	ctx, s.cancel = context.WithCancel(ctx)
	if !mode.IsChat() {
		return s, nil
	}
	src, err := feed.Open(cfg.Feed, feed.Options{
		URL:   cfg.FeedURL,
		Room:  cfg.Room,
		Mode:  mode,
		Bots:  cfg.Bots,
		Clock: opts.Clock,
		Log:   logger.Log.WithField("component", "feed"),
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open feed: %w", err)
	}
	s.source = src

	events := make(chan feed.Event, 16)
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := src.Run(ctx, events); err != nil {
			log.WithError(err).Error("feed stopped")
		}
	}()
	go func() {
		defer s.wg.Done()
		if err := feed.Forward(ctx, events, s.Scene); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, scene.ErrClosed) {
			log.WithError(err).Warn("forward stopped")
		}
	}()
	log.WithFields(logrus.Fields{"feed": cfg.Feed, "room": cfg.Room, "mode": mode}).Info("session started")
	return s, nil
}

// Say posts text as the viewer.
func (s *Session) Say(text string) error {
	sayer, ok := s.source.(feed.Sayer)
	if !ok {
		return ErrReadOnly
	}
	return sayer.Say(text)
}

// Tick advances the scene to the session clock.
func (s *Session) Tick() { s.Scene.Tick(s.clock()) }

// Close stops the feed and closes the scene and its audio. Safe to repeat.
func (s *Session) Close() {
	s.once.Do(func() {
		if s.rise != nil {
			s.rise.Stop()
		}
		s.cancel()
		if err := s.Scene.Close(); err != nil {
			s.log.WithError(err).Warn("close scene")
		}
		s.wg.Wait()
	})
}

// assets returns the sound directory, or nil to synthesize every sound.
func assets(dir string) fs.FS {
	if dir == "" {
		return nil
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil
	}
	return os.DirFS(dir)
}
