package feed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Reconnect backoff bounds.
const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 10 * time.Second
)

// ErrNotConnected is returned by Remote.Say while no connection is up.
var ErrNotConnected = errors.New("feed not connected")

// Remote is a Source backed by a hub over websocket. It reconnects with
// exponential backoff and keeps the identity the hub first assigned so the
// viewer keeps its seat.
type Remote struct {
	opts   Options
	dialer *websocket.Dialer

	mu       sync.Mutex
	conn     *websocket.Conn
	id       string
	joinedAt int64
}

func init() {
	Register("ws", func(o Options) (Source, error) { return NewRemote(o) })
}

// NewRemote validates the hub URL and returns an idle source.
func NewRemote(opts Options) (*Remote, error) {
	opts = opts.withDefaults()
	if _, err := roomURL(opts.URL, opts.Room); err != nil {
		return nil, err
	}
	return &Remote{opts: opts, dialer: websocket.DefaultDialer}, nil
}

func roomURL(base, room string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("feed url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("feed url: unsupported scheme %q", u.Scheme)
	}
	q := u.Query()
	q.Set("room", room)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Run connects and relays events until ctx is done.
func (r *Remote) Run(ctx context.Context, out chan<- Event) error {
	target, err := roomURL(r.opts.URL, r.opts.Room)
	if err != nil {
		return err
	}
	backoff := minBackoff
	for {
		started := time.Now()
		err := r.session(ctx, target, out)
		if ctx.Err() != nil {
			return nil
		}
		if time.Since(started) > maxBackoff {
			backoff = minBackoff
		}
		r.opts.Log.WithError(err).WithField("retry", backoff).Warn("feed disconnected")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(2*backoff, maxBackoff)
	}
}

func (r *Remote) session(ctx context.Context, target string, out chan<- Event) error {
	conn, _, err := r.dialer.DialContext(ctx, target, nil)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.conn = conn
	hello := Hello{ID: r.id, JoinedAt: r.joinedAt}
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.conn = nil
		r.mu.Unlock()
		conn.Close()
	}()

	if err := r.write(MsgHello, hello); err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				if err := r.write(MsgPing, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		env, err := DecodeEnvelope(msg)
		if err != nil {
			r.opts.Log.WithError(err).Debug("dropping frame")
			continue
		}
		ev, err := r.event(env)
		if err != nil {
			r.opts.Log.WithError(err).Warn("bad frame")
			continue
		}
		if ev == nil {
			continue
		}
		if err := send(ctx, out, *ev); err != nil {
			return err
		}
	}
}

func (r *Remote) event(env Envelope) (*Event, error) {
	switch env.Type {
	case MsgWelcome:
		w, err := DecodePayload[Welcome](env)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.id, r.joinedAt = w.ID, w.JoinedAt
		r.mu.Unlock()
		return &Event{Welcome: &w}, nil
	case MsgState:
		st, err := DecodePayload[RoomState](env)
		if err != nil {
			return nil, err
		}
		return &Event{State: &st}, nil
	case MsgBurned:
		b, err := DecodePayload[Burned](env)
		if err != nil {
			return nil, err
		}
		return &Event{Burned: &b}, nil
	case MsgError:
		e, err := DecodePayload[Error](env)
		if err != nil {
			return nil, err
		}
		r.opts.Log.WithField("code", e.Code).Warn(e.Message)
	}
	return nil, nil
}

// ID returns the identity the hub assigned, or "" before the first welcome.
func (r *Remote) ID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id
}

// Say posts the viewer's message.
func (r *Remote) Say(text string) error {
	return r.write(MsgSay, Say{Text: text})
}

// Burn removes the viewer's active message.
func (r *Remote) Burn() error {
	return r.write(MsgBurn, nil)
}

// write serializes frames; gorilla connections allow one concurrent writer.
func (r *Remote) write(t string, payload any) error {
	b, err := Encode(t, r.opts.Room, payload)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return ErrNotConnected
	}
	_ = r.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return r.conn.WriteMessage(websocket.TextMessage, b)
}
