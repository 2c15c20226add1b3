package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campfire/internal/config"
	"campfire/internal/feed"
	"campfire/pkg/logger"

	"github.com/sirupsen/logrus"
)

func init() {
	logger.Init()
}

func main() {
	cfg := config.NewConfig()
	if err := cfg.LoadEnv(); err != nil {
		logger.Log.WithError(err).Fatal("load environment")
	}
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	mode, err := cfg.Validate()
	if err != nil {
		logger.Log.WithError(err).Fatal("invalid configuration")
	}
	if !mode.IsChat() {
		logger.Log.WithField("mode", mode).Fatal("the feed server needs a public or private mode")
	}

	hub := feed.NewHub(mode)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           routes(hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.WithFields(logrus.Fields{"addr": cfg.Listen, "mode": mode}).Info("feed server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("server start error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Warn("shutdown")
	}
	hub.Close()
}

func routes(hub *feed.Hub) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/rooms", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(hub.ListRooms()); err != nil {
			logger.Log.WithError(err).Warn("encode rooms")
		}
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
