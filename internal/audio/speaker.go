//go:build ebiten

package audio

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// SpeakerSink plays through the system audio device.
type SpeakerSink struct{}

// NewSpeakerSink initialises the speaker with a 100ms buffer.
func NewSpeakerSink() (*SpeakerSink, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	return &SpeakerSink{}, nil
}

// Play starts streaming s.
func (*SpeakerSink) Play(s beep.Streamer) { speaker.Play(s) }

// Lock pauses the speaker callback.
func (*SpeakerSink) Lock() { speaker.Lock() }

// Unlock resumes the speaker callback.
func (*SpeakerSink) Unlock() { speaker.Unlock() }

// Close stops playback and releases the device.
func (*SpeakerSink) Close() error {
	speaker.Clear()
	speaker.Close()
	return nil
}
