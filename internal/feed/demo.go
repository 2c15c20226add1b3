package feed

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// LocalID is the identity of the viewer in a demo room.
const LocalID = "you"

var demoLines = []string{
	"anyone else hear that owl?",
	"the fire is warm tonight",
	"just passing through",
	"stars are out",
	"long day. glad to sit down",
	"who brought marshmallows",
	"the wind picked up",
	"this place is quiet",
	"hello, fire",
	"i'll stay a minute",
	"crickets are loud",
	"don't let it burn out",
}

// Per-second bot odds.
const (
	botJoinChance  = 0.15
	botLeaveChance = 0.02
	botSayChance   = 0.12
)

type bot struct {
	id      string
	present bool
}

// Demo simulates a room in-process: the viewer plus a handful of bots that
// come and go and chat.
type Demo struct {
	opts     Options
	interval time.Duration

	mu      sync.Mutex
	room    *Room
	bots    []*bot
	started bool
	version uint64
}

func init() {
	Register("demo", func(o Options) (Source, error) { return NewDemo(o), nil })
}

// NewDemo creates a demo room. Nothing happens until the first Step.
func NewDemo(opts Options) *Demo {
	opts = opts.withDefaults()
	d := &Demo{
		opts:     opts,
		interval: time.Second,
		room:     NewRoom(opts.Room, opts.Mode, opts.Rand),
	}
	for i := 0; i < opts.Bots; i++ {
		d.bots = append(d.bots, &bot{id: fmt.Sprintf("bot-%d", i+1)})
	}
	return d
}

// Room exposes the simulated room.
func (d *Demo) Room() *Room { return d.room }

// Run steps the room once per second until ctx is done.
func (d *Demo) Run(ctx context.Context, out chan<- Event) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		for _, ev := range d.Step(d.opts.Clock()) {
			if err := send(ctx, out, ev); err != nil {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Say posts a message as the viewer.
func (d *Demo) Say(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.room.Say(LocalID, text, d.opts.Clock())
}

// Step advances the simulation to now and returns the resulting events.
func (d *Demo) Step(now time.Time) []Event {
	d.mu.Lock()
	defer d.mu.Unlock()

	var events []Event
	rnd := d.opts.Rand
	if !d.started {
		d.started = true
		if err := d.room.Join(LocalID, 0, now); err != nil {
			d.opts.Log.WithError(err).Warn("viewer could not join")
		}
		events = append(events, Event{Welcome: &Welcome{ID: LocalID, JoinedAt: now.UnixMilli(), Mode: d.room.Mode}})
		for _, b := range d.bots {
			d.join(b, now)
		}
	} else {
		for _, b := range d.bots {
			switch {
			case !b.present && rnd.Float64() < botJoinChance:
				d.join(b, now)
			case b.present && rnd.Float64() < botLeaveChance:
				d.room.Leave(b.id)
				b.present = false
			case b.present && rnd.Float64() < botSayChance:
				// Refusals are expected: bots just try again later.
				_ = d.room.Say(b.id, demoLines[rnd.Intn(len(demoLines))], now)
			}
		}
	}

	_ = d.room.Heartbeat(LocalID, now)
	for _, b := range d.bots {
		if b.present {
			_ = d.room.Heartbeat(b.id, now)
		}
	}
	d.room.Tick(now)

	for _, b := range d.room.DrainBurned() {
		events = append(events, Event{Burned: &b})
	}
	if v := d.room.Version(); v != d.version || len(events) > 0 {
		d.version = v
		st := d.room.Snapshot(now)
		events = append(events, Event{State: &st})
	}
	return events
}

func (d *Demo) join(b *bot, now time.Time) {
	if err := d.room.Join(b.id, 0, now); err != nil {
		d.opts.Log.WithError(err).WithField("bot", b.id).Debug("bot stays out")
		return
	}
	b.present = true
}
