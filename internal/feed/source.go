// Package feed supplies the scene with room state. A Source produces events
// (snapshots and burns) either from an in-process demo room or from a remote
// hub over websocket; Forward turns them into scene updates.
package feed

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"campfire/internal/core"
	"campfire/internal/scene"
	"campfire/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Event is one item produced by a Source. Exactly one field is set.
type Event struct {
	Welcome *Welcome
	State   *RoomState
	Burned  *Burned
}

// Source produces room events until ctx is cancelled.
type Source interface {
	Run(ctx context.Context, out chan<- Event) error
}

// Sayer is implemented by sources that can post the viewer's messages.
type Sayer interface {
	Say(text string) error
}

// Options configure a Source.
type Options struct {
	URL   string
	Room  string
	Mode  core.Mode
	Bots  int
	Clock core.Clock
	Rand  *rand.Rand
	Log   *logrus.Entry
}

func (o Options) withDefaults() Options {
	if o.Room == "" {
		o.Room = "lobby"
	}
	if o.Clock == nil {
		o.Clock = core.SystemClock
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.Log == nil {
		o.Log = logger.Log.WithField("component", "feed")
	}
	return o
}

// Factory constructs a Source.
type Factory func(Options) (Source, error)

var sources = map[string]Factory{}

// Register adds a source factory to the registry.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	sources[name] = f
}

// Sources lists the registered source names in order.
func Sources() []string {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open constructs the named source.
func Open(name string, opts Options) (Source, error) {
	f, ok := sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown feed %q", name)
	}
	return f(opts.withDefaults())
}

// Pusher accepts scene updates. *scene.Scene implements it.
type Pusher interface {
	Push(update any) error
}

// Forward converts events into scene updates until events is closed, ctx is
// done or the pusher refuses an update.
func Forward(ctx context.Context, events <-chan Event, p Pusher) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			for _, u := range Updates(ev) {
				if err := p.Push(u); err != nil {
					return err
				}
			}
		}
	}
}

// Updates maps one event to the scene updates it implies.
func Updates(ev Event) []any {
	switch {
	case ev.State != nil:
		st := ev.State
		return []any{
			scene.SetParticipants{Participants: st.Participants, Seed: st.Seed},
			scene.SetUserCount{N: st.Users},
			scene.SetMessages{Messages: st.Entities()},
		}
	case ev.Burned != nil:
		return []any{scene.Flare{}}
	}
	return nil
}

func send(ctx context.Context, out chan<- Event, ev Event) error {
	select {
	case out <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
