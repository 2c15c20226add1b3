package scene

// Audio is the sound output the scene drives.
type Audio interface {
	SetMuted(muted bool)
	SetFuel(fuel float64)
	PlayBurn()
	PlayArrival()
	PlayLife()
	// Ready is closed once every asset has loaded or failed.
	Ready() <-chan struct{}
	Close() error
}

type silentAudio struct{ ready chan struct{} }

func newSilentAudio() *silentAudio {
	a := &silentAudio{ready: make(chan struct{})}
	close(a.ready)
	return a
}

func (*silentAudio) SetMuted(bool) {}
func (*silentAudio) SetFuel(float64) {}
func (*silentAudio) PlayBurn() {}
func (*silentAudio) PlayArrival() {}
func (*silentAudio) PlayLife() {}
func (a *silentAudio) Ready() <-chan struct{} { return a.ready }
func (*silentAudio) Close() error { return nil }
