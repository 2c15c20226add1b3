package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// noise is a deterministic white noise source.
type noise struct {
	seed int64
}

func (g *noise) next() float64 {
	g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
	return float64(g.seed)/float64(0x7fffffff)*2 - 1
}

// crackleGenerator produces filtered noise with sparse pops, the bonfire bed.
type crackleGenerator struct {
	sr    beep.SampleRate
	n     noise
	low   float64
	pop   float64
	rate  float64
	level float64
}

func newCrackleGenerator(sr beep.SampleRate, seed int64, popsPerSecond, level float64) *crackleGenerator {
	return &crackleGenerator{sr: sr, n: noise{seed: seed}, rate: popsPerSecond, level: level}
}

func (g *crackleGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	chance := g.rate / float64(g.sr)
	for i := range samples {
		// One-pole low-pass keeps the hiss soft.
		g.low += (g.n.next() - g.low) * 0.08
		if (g.n.next()+1)/2 < chance {
			g.pop = 1
		}
		g.pop *= 0.996
		v := g.level * (0.6*g.low + 0.4*g.pop*g.n.next())
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (g *crackleGenerator) Err() error { return nil }

// windGenerator is slowly modulated low-passed noise, the night bed.
type windGenerator struct {
	sr  beep.SampleRate
	n   noise
	low float64
	pos int
}

func (g *windGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		g.low += (g.n.next() - g.low) * 0.01
		v := g.low * (0.5 + 0.3*math.Sin(t*0.7))
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *windGenerator) Err() error { return nil }

// decay multiplies a stream by exp(-t*rate).
type decay struct {
	s    beep.Streamer
	sr   beep.SampleRate
	rate float64
	pos  int
}

func (d *decay) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = d.s.Stream(samples)
	for i := 0; i < n; i++ {
		env := math.Exp(-float64(d.pos) / float64(d.sr) * d.rate)
		samples[i][0] *= env
		samples[i][1] *= env
		d.pos++
	}
	return n, ok
}

func (d *decay) Err() error { return d.s.Err() }

// gated silences a stream outside repeating on-windows, used for chirps and
// hoots.
type gated struct {
	s      beep.Streamer
	sr     beep.SampleRate
	period time.Duration
	on     time.Duration
	count  int
	pos    int
}

func (g *gated) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = g.s.Stream(samples)
	period := g.sr.N(g.period)
	on := g.sr.N(g.on)
	for i := 0; i < n; i++ {
		k := g.pos / period
		if k >= g.count || g.pos%period >= on {
			samples[i][0] = 0
			samples[i][1] = 0
		}
		g.pos++
	}
	return n, ok
}

func (g *gated) Err() error { return g.s.Err() }

func tone(sr beep.SampleRate, freq float64) beep.Streamer {
	s, err := generators.SineTone(sr, freq)
	if err != nil {
		return beep.Silence(-1)
	}
	return s
}

// gain scales a stream linearly. A non-positive gain silences it.
func gain(s beep.Streamer, v float64) *effects.Volume {
	vol := &effects.Volume{Streamer: s, Base: 2}
	setGain(vol, v)
	return vol
}

func setGain(vol *effects.Volume, v float64) {
	if v <= 0 {
		vol.Volume = 0
		vol.Silent = true
		return
	}
	vol.Volume = math.Log2(v)
	vol.Silent = false
}

// synthesize renders the stand-in for a missing asset.
func synthesize(name Sound, sr beep.SampleRate) beep.Streamer {
	switch name {
	case Bonfire:
		return beep.Take(sr.N(4*time.Second), newCrackleGenerator(sr, 7, 6, 0.5))
	case Ambience:
		return beep.Take(sr.N(6*time.Second), &windGenerator{sr: sr, n: noise{seed: 11}})
	case Burn:
		s := newCrackleGenerator(sr, 13, 40, 0.9)
		return beep.Take(sr.N(1500*time.Millisecond), &decay{s: s, sr: sr, rate: 2})
	case Owl:
		hoot := &gated{s: tone(sr, 380), sr: sr, period: 450 * time.Millisecond, on: 300 * time.Millisecond, count: 2}
		return beep.Take(sr.N(1200*time.Millisecond), gain(hoot, 0.4))
	case Cricket:
		chirp := &gated{s: tone(sr, 4500), sr: sr, period: 60 * time.Millisecond, on: 25 * time.Millisecond, count: 12}
		return beep.Take(sr.N(time.Second), gain(chirp, 0.15))
	case Notif:
		bell := beep.Mix(gain(tone(sr, 880), 0.3), gain(tone(sr, 1320), 0.15))
		return beep.Take(sr.N(600*time.Millisecond), &decay{s: bell, sr: sr, rate: 6})
	}
	return beep.Take(sr.N(100*time.Millisecond), beep.Silence(-1))
}
