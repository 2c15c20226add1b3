package audio

import (
	"sync"

	"github.com/gopxl/beep"
)

// Sink pulls the mixed stream. Lock and Unlock guard streamer mutation
// against the pulling goroutine.
type Sink interface {
	Play(s beep.Streamer)
	Lock()
	Unlock()
	Close() error
}

// NullSink discards output. Pull lets tests and headless clients advance
// the stream by hand.
type NullSink struct {
	mu     sync.Mutex
	stream beep.Streamer
	closed bool
}

// NewNullSink returns a sink that plays nothing until pulled.
func NewNullSink() *NullSink { return &NullSink{} }

// Play sets the root streamer.
func (s *NullSink) Play(st beep.Streamer) {
	s.mu.Lock()
	s.stream = st
	s.mu.Unlock()
}

// Lock blocks Pull.
func (s *NullSink) Lock() { s.mu.Lock() }

// Unlock releases Lock.
func (s *NullSink) Unlock() { s.mu.Unlock() }

// Pull streams n samples and returns them. Silence is returned once closed.
func (s *NullSink) Pull(n int) [][2]float64 {
	buf := make([][2]float64, n)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil || s.closed {
		return buf
	}
	for filled := 0; filled < n; {
		m, ok := s.stream.Stream(buf[filled:])
		filled += m
		if !ok || m == 0 {
			break
		}
	}
	return buf
}

// Close drops the root streamer.
func (s *NullSink) Close() error {
	s.mu.Lock()
	s.closed = true
	s.stream = nil
	s.mu.Unlock()
	return nil
}
