package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"campfire/internal/app"
	"campfire/internal/config"
	"campfire/internal/core"
	"campfire/internal/feed"
	"campfire/internal/scene"
	"campfire/internal/tty"
	"campfire/pkg/logger"

	"github.com/gdamore/tcell/v2"
)

func main() {
	logger.Init()

	cfg := config.NewConfig()
	if err := cfg.LoadEnv(); err != nil {
		logger.Log.WithError(err).Fatal("load environment")
	}
	cfg.Bind(flag.CommandLine)
	logPath := flag.String("log", "", "write logs to this file instead of discarding them")
	flag.Parse()

	// The screen owns the terminal, so logs go to a file or nowhere.
	var logFile *os.File
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.Log.WithError(err).Fatal("open log file")
		}
		logFile = f
		logger.Log.SetOutput(f)
	} else {
		logger.Log.SetOutput(io.Discard)
	}

	err := run(cfg)
	if logFile != nil {
		logFile.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "campfire-tty:", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	renderer := tty.NewRenderer(screen)
	session, err := app.Start(ctx, cfg, app.Options{Renderer: renderer})
	if err != nil {
		return err
	}
	defer session.Close()

	var prompt *tty.Prompt
	if session.Scene.Mode().IsChat() {
		prompt = tty.NewPrompt(feed.MaxTextLen)
		renderer.SetPrompt(prompt)
	}

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	step := core.NewFixedStep(cfg.TPS)
	ticker := time.NewTicker(step.Step())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if quit := handle(ev, screen, session, prompt, renderer); quit {
				return nil
			}
		case <-ticker.C:
			if step.ShouldStep() {
				session.Tick()
			}
		}
	}
}

// handle applies one terminal event and reports whether to quit.
func handle(ev tcell.Event, screen tcell.Screen, session *app.Session, prompt *tty.Prompt, r *tty.Renderer) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		screen.Sync()
		w, h := ev.Size()
		session.Scene.Resize(w, h)
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyCtrlF:
			session.Scene.Flare()
			return false
		case tcell.KeyTab:
			next := core.Mode((int(session.Scene.Mode()) + 1) % 3)
			if err := session.Scene.Push(scene.SetMode{Mode: next}); err != nil {
				r.SetStatus(err.Error())
			}
			return false
		}
		if prompt == nil {
			return ev.Key() == tcell.KeyRune && ev.Rune() == 'q'
		}
		if line, ok := prompt.Key(ev); ok {
			switch err := session.Say(line); {
			case err == nil:
				r.SetStatus("")
			case errors.Is(err, app.ErrReadOnly):
				r.SetStatus("this feed is read-only")
			default:
				r.SetStatus(err.Error())
			}
		}
	}
	return false
}
