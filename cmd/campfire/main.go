//go:build ebiten

package main

import (
	"context"
	"errors"
	"flag"

	"campfire/internal/app"
	"campfire/internal/audio"
	"campfire/internal/config"
	"campfire/internal/core"
	"campfire/pkg/logger"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	logger.Init()

	cfg := config.NewConfig()
	if err := cfg.LoadEnv(); err != nil {
		logger.Log.WithError(err).Fatal("load environment")
	}
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	if err := run(cfg); err != nil {
		logger.Log.WithError(err).Fatal("campfire")
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sink audio.Sink = audio.NewNullSink()
	if sp, err := audio.NewSpeakerSink(); err != nil {
		logger.Log.WithError(err).Warn("no audio device, running silent")
	} else {
		sink = sp
	}

	session, err := app.Start(ctx, cfg, app.Options{Sink: sink})
	if err != nil {
		return err
	}
	defer session.Close()

	game := app.New(session.Scene, core.SystemClock, cfg.HUD)

	ebiten.SetWindowTitle("campfire")
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
