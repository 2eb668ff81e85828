package garden

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// knockGenerator synthesizes the hollow bamboo knock of a shishi-odoshi: a short noise
// transient over two exponentially decaying partials.
type knockGenerator struct {
	sr       beep.SampleRate
	pos      int
	duration int
	rng      *rand.Rand
}

func newKnock(sr beep.SampleRate, duration time.Duration, seed int64) *knockGenerator {
	return &knockGenerator{
		sr:       sr,
		duration: sr.N(duration),
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (g *knockGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if g.pos >= g.duration {
			return i, i > 0
		}
		t := float64(g.pos) / float64(g.sr)
		body := math.Sin(2*math.Pi*330*t)*math.Exp(-t*38) + 0.5*math.Sin(2*math.Pi*910*t)*math.Exp(-t*60)
		click := (g.rng.Float64()*2 - 1) * math.Exp(-t*400)
		v := 0.6*body + 0.4*click
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *knockGenerator) Err() error { return nil }

// Audio plays scene sound effects through the default output device.
type Audio struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
	Knocks      int
}

func NewAudio(volume float64) *Audio {
	return &Audio{
		mixer:  &beep.Mixer{},
		volume: volume,
	}
}

// Initialize opens the speaker. Without it Knock only counts.
func (a *Audio) Initialize() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(a.mixer)
	a.initialized = true
	return nil
}

func (a *Audio) Knock() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Knocks++
	if !a.initialized {
		return
	}
	s := newVolume(newKnock(sampleRate, 400*time.Millisecond, int64(a.Knocks)), a.volume)
	speaker.Lock()
	a.mixer.Add(s)
	speaker.Unlock()
}

func (a *Audio) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	a.initialized = false
}

// newVolume maps a linear 0..1 volume onto beep's logarithmic volume effect.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(math.Min(vol, 1))}
}

type AudioModule struct {
	Config AudioConfig
}

func (m AudioModule) Install(app *App, cmd *Commands) {
	a := NewAudio(m.Config.Volume)
	if m.Config.Enabled {
		if err := a.Initialize(); err != nil {
			app.Logger().With("audio").Warnf("disabled: %v", err)
		}
	}
	if g, ok := Resource[GardenScene](app); ok {
		g.OnKnock(a.Knock)
	}
	cmd.AddResources(a)
}
