package garden

import (
	"math"
	"strings"

	"github.com/gekko3d/garden/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// RepeatForever repeats a loop tween until the process exits.
const RepeatForever = -1

// FloatProperty is a tweenable scalar on some scene object.
type FloatProperty struct {
	Get func() float32
	Set func(float32)
}

// RotationXProperty exposes an extra rotation about the node's local X axis, applied on top
// of the rotation the node had when the property was created. It starts at 0.
func RotationXProperty(node *core.Node) FloatProperty {
	base := node.Local.Rotation
	var angle float32
	return FloatProperty{
		Get: func() float32 { return angle },
		Set: func(v float32) {
			angle = v
			node.Local.Rotation = base.Mul(mgl32.QuatRotate(v, mgl32.Vec3{1, 0, 0})).Normalize()
		},
	}
}

type TweenOptions struct {
	Duration    float32 // seconds per cycle
	RepeatDelay float32 // seconds held between cycles
	Repeat      int     // extra cycles after the first; RepeatForever for no end
	Yoyo        bool    // odd cycles play backwards
	Ease        ease.TweenFunc
	OnCycle     func(cycle int) // after each completed cycle
}

// LoopTween oscillates a property between its starting value and a target. Each cycle eases
// From -> To over Duration; with Yoyo every other cycle plays in reverse. The playhead only
// moves when Advance is called, so the tween never blocks the loop.
type LoopTween struct {
	Name   string
	From   float32
	To     float32
	opts   TweenOptions
	target FloatProperty
	tween  *gween.Tween

	// elapsed is folded back by whole yoyo pairs when repeating forever; wrapped counts the
	// cycles folded out of it.
	elapsed  float64
	wrapped  int
	cycle    int
	finished bool
}

func newLoopTween(name string, target FloatProperty, to float32, opts TweenOptions) *LoopTween {
	if opts.Ease == nil {
		opts.Ease = ease.Linear
	}
	if opts.Duration <= 0 {
		opts.Duration = 1e-6
	}
	if opts.RepeatDelay < 0 {
		opts.RepeatDelay = 0
	}
	from := target.Get()
	return &LoopTween{
		Name:   name,
		From:   from,
		To:     to,
		opts:   opts,
		target: target,
		tween:  gween.New(from, to, opts.Duration, opts.Ease),
	}
}

func (lt *LoopTween) period() float64 {
	return float64(lt.opts.Duration) + float64(lt.opts.RepeatDelay)
}

// Sample returns the value at t seconds after start, the cycle index and whether a finite
// repeat count has run out. A finite tween completes at the end of its last cycle, without
// waiting out a trailing delay. Sample does not move the playhead.
func (lt *LoopTween) Sample(t float64) (value float32, cycle int, finished bool) {
	if t < 0 {
		t = 0
	}
	period := lt.period()
	duration := float64(lt.opts.Duration)

	var local float64
	if lt.opts.Repeat != RepeatForever && t >= float64(lt.opts.Repeat)*period+duration {
		cycle, local, finished = lt.opts.Repeat, duration, true
	} else {
		cycle = int(math.Floor(t / period))
		local = min(t-float64(cycle)*period, duration)
	}

	if lt.opts.Yoyo && cycle%2 == 1 {
		local = duration - local
	}
	value, _ = lt.tween.Set(float32(local))
	return value, cycle, finished
}

// Advance moves the playhead by dt seconds and writes the eased value to the target.
func (lt *LoopTween) Advance(dt float64) {
	if lt.finished {
		return
	}
	lt.elapsed += dt
	if lt.opts.Repeat == RepeatForever {
		if span := 2 * lt.period(); lt.elapsed >= span {
			pairs := math.Floor(lt.elapsed / span)
			lt.elapsed -= pairs * span
			lt.wrapped += 2 * int(pairs)
		}
	}
	value, cycle, finished := lt.Sample(lt.elapsed)
	cycle += lt.wrapped
	lt.target.Set(value)

	for lt.cycle < cycle {
		if lt.opts.OnCycle != nil {
			lt.opts.OnCycle(lt.cycle)
		}
		lt.cycle++
	}
	if finished {
		lt.finished = true
		if lt.opts.OnCycle != nil {
			lt.opts.OnCycle(lt.cycle)
		}
	}
}

// Elapsed returns the total time advanced since Start.
func (lt *LoopTween) Elapsed() float64 {
	return float64(lt.wrapped)*lt.period() + lt.elapsed
}

func (lt *LoopTween) Cycle() int       { return lt.cycle }
func (lt *LoopTween) Finished() bool   { return lt.finished }

// Tweens owns every running loop tween.
type Tweens struct {
	active []*LoopTween
}

// Start captures the property's current value as the origin and begins oscillating toward to.
func (t *Tweens) Start(name string, target FloatProperty, to float32, opts TweenOptions) *LoopTween {
	lt := newLoopTween(name, target, to, opts)
	t.active = append(t.active, lt)
	return lt
}

func (t *Tweens) Len() int { return len(t.active) }

type TweenModule struct{}

func (TweenModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Tweens{})
	app.UseSystem(
		System(tweenSystem).
			InStage(Update),
	)
}

func tweenSystem(tweens *Tweens, clock *Time) {
	dt := clock.DtSeconds()
	for _, lt := range tweens.active {
		lt.Advance(dt)
	}
}

var easings = map[string]ease.TweenFunc{
	"none":         ease.Linear,
	"linear":       ease.Linear,
	"power1.in":    ease.InQuad,
	"power1.out":   ease.OutQuad,
	"power1.inout": ease.InOutQuad,
	"power2.in":    ease.InCubic,
	"power2.out":   ease.OutCubic,
	"power2.inout": ease.InOutCubic,
	"power3.in":    ease.InQuart,
	"power3.out":   ease.OutQuart,
	"power3.inout": ease.InOutQuart,
	"power4.in":    ease.InQuint,
	"power4.out":   ease.OutQuint,
	"power4.inout": ease.InOutQuint,
	"sine.in":      ease.InSine,
	"sine.out":     ease.OutSine,
	"sine.inout":   ease.InOutSine,
	"bounce.out":   ease.OutBounce,
}

// easeByName resolves gsap-style names such as "power3.out". Empty means linear.
func easeByName(name string) (ease.TweenFunc, bool) {
	if name == "" {
		return ease.Linear, true
	}
	fn, ok := easings[strings.ToLower(name)]
	return fn, ok
}
