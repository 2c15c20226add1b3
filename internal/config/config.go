// Package config collects the settings shared by the campfire binaries.
// Values come from defaults, then a .env file and CAMPFIRE_* variables, then
// command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"campfire/internal/core"

	"github.com/joho/godotenv"
)

// Feed names.
const (
	FeedDemo = "demo"
	FeedWS   = "ws"
)

var (
	// ErrUnknownMode reports a mode name that is not landing, public or private.
	ErrUnknownMode = core.ErrUnknownMode
	// ErrUnknownFeed reports a feed name without a registered source.
	ErrUnknownFeed = errors.New("unknown feed")
	// ErrInvalid reports an out-of-range numeric setting.
	ErrInvalid = errors.New("invalid setting")
)

// Config represents the settings for the campfire clients and server.
type Config struct {
	Mode      string
	Seed      int64
	Feed      string
	FeedURL   string
	Room      string
	Listen    string
	TPS       int
	Width     int
	Height    int
	Muted     bool
	Immersive bool
	Assets    string
	RiseDelay time.Duration
	Bots      int
	HUD       bool
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Mode:      "public",
		Feed:      FeedDemo,
		FeedURL:   "ws://localhost:8080/ws",
		Room:      "lobby",
		Listen:    ":8080",
		TPS:       60,
		Width:     1280,
		Height:    720,
		Assets:    "assets/sounds",
		RiseDelay: 500 * time.Millisecond,
		Bots:      3,
	}
}

// LoadEnv reads .env files (missing files are ignored) and applies CAMPFIRE_*
// variables on top of the current values.
func (c *Config) LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return c.FromEnv(os.LookupEnv)
}

// FromEnv applies CAMPFIRE_* variables from lookup.
func (c *Config) FromEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup("CAMPFIRE_" + key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		v, ok := lookup("CAMPFIRE_" + key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("CAMPFIRE_%s: %w", key, err))
			return
		}
		*dst = n
	}
	boolean := func(key string, dst *bool) {
		v, ok := lookup("CAMPFIRE_" + key)
		if !ok || v == "" {
			return
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("CAMPFIRE_%s: %w", key, err))
			return
		}
		*dst = b
	}

	str("MODE", &c.Mode)
	str("FEED", &c.Feed)
	str("FEED_URL", &c.FeedURL)
	str("ROOM", &c.Room)
	str("LISTEN", &c.Listen)
	str("ASSETS", &c.Assets)
	num("TPS", &c.TPS)
	num("WIDTH", &c.Width)
	num("HEIGHT", &c.Height)
	num("BOTS", &c.Bots)
	boolean("MUTED", &c.Muted)
	boolean("IMMERSIVE", &c.Immersive)
	boolean("HUD", &c.HUD)

	if v, ok := lookup("CAMPFIRE_SEED"); ok && v != "" {
		seed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("CAMPFIRE_SEED: %w", err))
		} else {
			c.Seed = seed
		}
	}
	if v, ok := lookup("CAMPFIRE_RISE_DELAY"); ok && v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("CAMPFIRE_RISE_DELAY: %w", err))
		} else {
			c.RiseDelay = d
		}
	}
	return errors.Join(errs...)
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Mode, "mode", c.Mode, "scene mode: landing, public or private")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "forest seed (0 selects the default)")
	fs.StringVar(&c.Feed, "feed", c.Feed, "room feed: demo or ws")
	fs.StringVar(&c.FeedURL, "feed-url", c.FeedURL, "websocket URL for the ws feed")
	fs.StringVar(&c.Room, "room", c.Room, "room code")
	fs.StringVar(&c.Listen, "listen", c.Listen, "listen address for the feed server")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.IntVar(&c.Width, "width", c.Width, "window width")
	fs.IntVar(&c.Height, "height", c.Height, "window height")
	fs.BoolVar(&c.Muted, "muted", c.Muted, "start muted")
	fs.BoolVar(&c.Immersive, "immersive", c.Immersive, "use the immersive camera")
	fs.StringVar(&c.Assets, "assets", c.Assets, "directory holding sound assets")
	fs.DurationVar(&c.RiseDelay, "rise-delay", c.RiseDelay, "delay before participants may rise")
	fs.IntVar(&c.Bots, "bots", c.Bots, "simulated occupants in the demo room")
	fs.BoolVar(&c.HUD, "hud", c.HUD, "show the parameter panel")
}

// Validate checks the settings and returns the parsed mode.
func (c *Config) Validate() (core.Mode, error) {
	mode, err := core.ParseMode(c.Mode)
	if err != nil {
		return mode, err
	}
	switch c.Feed {
	case FeedDemo, FeedWS:
	default:
		return mode, fmt.Errorf("%w: %q", ErrUnknownFeed, c.Feed)
	}
	if c.TPS <= 0 {
		return mode, fmt.Errorf("%w: tps must be positive, got %d", ErrInvalid, c.TPS)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return mode, fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.Bots < 0 {
		return mode, fmt.Errorf("%w: bots must not be negative", ErrInvalid)
	}
	return mode, nil
}
