//go:build !ebiten

package audio

import "errors"

// ErrNoSpeaker is returned when the binary was built without audio output.
var ErrNoSpeaker = errors.New("built without speaker support; rebuild with -tags ebiten")

// SpeakerSink is unavailable without the ebiten build tag.
type SpeakerSink struct{ NullSink }

// NewSpeakerSink always fails in headless builds.
func NewSpeakerSink() (*SpeakerSink, error) { return nil, ErrNoSpeaker }
