package garden

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Param is a live-editable value. Set stores the value and runs every subscriber
// synchronously, in subscription order. Params are owned by the loop thread; other
// goroutines go through App.Post.
type Param[T any] struct {
	Name     string
	value    T
	clamp    func(T) T
	appliers []func(T)
}

func NewParam[T any](name string, initial T) *Param[T] {
	return &Param[T]{Name: name, value: initial}
}

func (p *Param[T]) Get() T { return p.value }

func (p *Param[T]) Set(v T) {
	if p.clamp != nil {
		v = p.clamp(v)
	}
	p.value = v
	for _, apply := range p.appliers {
		apply(v)
	}
}

// OnChange subscribes fn and returns the param for chaining.
func (p *Param[T]) OnChange(fn func(T)) *Param[T] {
	p.appliers = append(p.appliers, fn)
	return p
}

// Bind subscribes fn and applies the current value immediately.
func (p *Param[T]) Bind(fn func(T)) *Param[T] {
	p.OnChange(fn)
	fn(p.value)
	return p
}

// NewRangeParam clamps writes to [min,max] and rounds to step when step > 0.
func NewRangeParam(name string, initial, min, max, step float64) *Param[float64] {
	p := NewParam(name, initial)
	p.clamp = func(v float64) float64 {
		if step > 0 {
			v = math.Round(v/step) * step
		}
		return math.Max(min, math.Min(max, v))
	}
	p.value = p.clamp(initial)
	return p
}

// Tunables are the parameters exposed to the debug panel.
type Tunables struct {
	WaterColor1 *Param[colorful.Color]
	WaterColor2 *Param[colorful.Color]
	FireflySize *Param[float64]
	ClearColor  *Param[colorful.Color]
	ShowPath    *Param[bool]
}

// SetHex parses s and writes it to p. Malformed colors leave p untouched.
func SetHex(p *Param[colorful.Color], s string) error {
	c, err := colorful.Hex(s)
	if err != nil {
		return err
	}
	p.Set(c)
	return nil
}

type TunablesModule struct {
	Config Config
}

func (m TunablesModule) Install(app *App, cmd *Commands) {
	cfg := m.Config
	t := &Tunables{
		WaterColor1: NewParam("waterColor1", cfg.Water.color1()),
		WaterColor2: NewParam("waterColor2", cfg.Water.color2()),
		FireflySize: NewRangeParam("firefliesSize", cfg.Fireflies.Size, 0, 500, 1),
		ClearColor:  NewParam("clearColor", cfg.clearColor()),
		ShowPath:    NewParam("showPath", cfg.Koi.ShowPath),
	}
	cmd.AddResources(t)
}
