// Package audio plays the campfire soundscape: two looping beds whose gain
// follows the fire and one-shot cues for flares, arrivals and wildlife.
package audio

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"path"
	"sync"
	"time"

	"campfire/pkg/logger"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
	"github.com/sirupsen/logrus"
)

// SampleRate is the rate every asset is resampled to.
const SampleRate = beep.SampleRate(44100)

// Sound names an asset.
type Sound string

const (
	Bonfire  Sound = "bonfire"
	Ambience Sound = "night_ambience"
	Burn     Sound = "fire_burns"
	Owl      Sound = "owl"
	Cricket  Sound = "cricket"
	Notif    Sound = "notif"
)

// Sounds lists every asset in load order.
var Sounds = []Sound{Bonfire, Ambience, Burn, Owl, Cricket, Notif}

// Mix levels.
const (
	BurnVolume     = 0.8
	LifeVolume     = 0.4
	NotifVolume    = 0.5
	AmbienceVolume = 0.5
)

// ErrNotFound is returned when neither an mp3 nor a wav exists for a sound.
var ErrNotFound = errors.New("audio asset not found")

// BonfireGain maps the fuel level to the bonfire bed gain.
func BonfireGain(fuel float64) float64 {
	g := 0.4 + fuel*0.5
	if g < 0.4 {
		return 0.4
	}
	if g > 1 {
		return 1
	}
	return g
}

// Config selects where assets come from. A nil Assets synthesizes every
// sound.
type Config struct {
	Assets fs.FS
	Muted  bool
	Rand   *rand.Rand
}

// Controller mixes the beds and cues into a sink. Methods are safe to call
// from any goroutine; calls made before Ready are remembered or dropped.
type Controller struct {
	mu     sync.Mutex
	sink   Sink
	mixer  *beep.Mixer
	rnd    *rand.Rand
	log    *logrus.Entry
	closed bool

	buffers  map[Sound]*beep.Buffer
	bonfire  *effects.Volume
	ambience *effects.Volume
	muted    bool
	fuel     float64

	ready     chan struct{}
	readyOnce sync.Once
	fallbacks []Sound
}

// New starts loading assets in the background and returns immediately.
func New(cfg Config, sink Sink) *Controller {
	if sink == nil {
		sink = NewNullSink()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	c := &Controller{
		sink:  sink,
		mixer: &beep.Mixer{},
		rnd:   cfg.Rand,
		log:   logger.Log.WithField("component", "audio"),
		muted: cfg.Muted,
		ready: make(chan struct{}),
	}
	sink.Play(c.mixer)
	go c.load(cfg.Assets)
	return c
}

// Ready is closed once every asset has loaded or fallen back.
func (c *Controller) Ready() <-chan struct{} { return c.ready }

// Fallbacks lists the sounds that were synthesized because their asset
// could not be loaded. Valid after Ready.
func (c *Controller) Fallbacks() []Sound {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sound(nil), c.fallbacks...)
}

func (c *Controller) load(assets fs.FS) {
	buffers := make(map[Sound]*beep.Buffer, len(Sounds))
	var fallbacks []Sound
	for _, name := range Sounds {
		buf, err := loadSound(assets, name)
		if err != nil {
			c.log.WithError(err).WithField("sound", name).Warn("using synthesized sound")
			buf = beep.NewBuffer(format())
			buf.Append(synthesize(name, SampleRate))
			fallbacks = append(fallbacks, name)
		}
		buffers[name] = buf
	}

	c.mu.Lock()
	if !c.closed {
		c.buffers = buffers
		c.fallbacks = fallbacks
		c.startBeds()
	}
	c.mu.Unlock()
	c.readyOnce.Do(func() { close(c.ready) })
}

func format() beep.Format {
	return beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}
}

// loadSound decodes name.mp3 or name.wav from assets into a buffer at
// SampleRate.
func loadSound(assets fs.FS, name Sound) (*beep.Buffer, error) {
	if assets == nil {
		return nil, ErrNotFound
	}
	for _, ext := range []string{".mp3", ".wav"} {
		file := path.Clean(string(name) + ext)
		f, err := assets.Open(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", file, err)
		}
		buf, err := decode(f, ext)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", file, err)
		}
		return buf, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func decode(f fs.File, ext string) (*beep.Buffer, error) {
	var (
		s    beep.StreamSeekCloser
		form beep.Format
		err  error
	)
	if ext == ".mp3" {
		s, form, err = mp3.Decode(f)
	} else {
		s, form, err = wav.Decode(f)
	}
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var src beep.Streamer = s
	if form.SampleRate != SampleRate {
		src = beep.Resample(4, form.SampleRate, SampleRate, s)
	}
	buf := beep.NewBuffer(format())
	buf.Append(src)
	if err := s.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, errors.New("empty stream")
	}
	return buf, nil
}

// startBeds loops the bonfire and ambience buffers. Called with c.mu held.
func (c *Controller) startBeds() {
	bonfire := c.buffers[Bonfire]
	ambience := c.buffers[Ambience]
	c.sink.Lock()
	defer c.sink.Unlock()
	c.bonfire = gain(beep.Loop(-1, bonfire.Streamer(0, bonfire.Len())), 0)
	c.ambience = gain(beep.Loop(-1, ambience.Streamer(0, ambience.Len())), 0)
	c.applyGains()
	c.mixer.Add(c.bonfire, c.ambience)
}

// applyGains pushes the mute state and fuel level into the beds. Called with
// c.mu and the sink lock held.
func (c *Controller) applyGains() {
	if c.bonfire == nil {
		return
	}
	if c.muted {
		setGain(c.bonfire, 0)
		setGain(c.ambience, 0)
		return
	}
	setGain(c.bonfire, BonfireGain(c.fuel))
	setGain(c.ambience, AmbienceVolume)
}

// SetMuted silences every bed and suppresses cues.
func (c *Controller) SetMuted(muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = muted
	c.sink.Lock()
	c.applyGains()
	c.sink.Unlock()
}

// SetFuel follows the fire level with the bonfire bed.
func (c *Controller) SetFuel(fuel float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fuel = fuel
	c.sink.Lock()
	c.applyGains()
	c.sink.Unlock()
}

// Muted reports the mute state.
func (c *Controller) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// PlayBurn plays the flare crackle.
func (c *Controller) PlayBurn() { c.play(Burn, BurnVolume) }

// PlayArrival plays the notification chime.
func (c *Controller) PlayArrival() { c.play(Notif, NotifVolume) }

// PlayLife plays an owl or a cricket.
func (c *Controller) PlayLife() {
	c.mu.Lock()
	name := Owl
	if c.rnd.Intn(2) == 1 {
		name = Cricket
	}
	c.mu.Unlock()
	c.play(name, LifeVolume)
}

func (c *Controller) play(name Sound, volume float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.muted {
		return
	}
	buf, ok := c.buffers[name]
	if !ok {
		return
	}
	c.sink.Lock()
	c.mixer.Add(gain(buf.Streamer(0, buf.Len()), volume))
	c.sink.Unlock()
}

// Playing reports how many streamers are mixed, beds included.
func (c *Controller) Playing() int {
	c.sink.Lock()
	defer c.sink.Unlock()
	return c.mixer.Len()
}

// Close stops playback and closes the sink. Safe to repeat.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.sink.Lock()
	c.mixer.Clear()
	c.sink.Unlock()
	c.mu.Unlock()
	return c.sink.Close()
}
