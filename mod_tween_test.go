package garden

import (
	"math"
	"testing"
	"time"

	"github.com/gekko3d/garden/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"
)

func floatProp(v *float32) FloatProperty {
	return FloatProperty{
		Get: func() float32 { return *v },
		Set: func(x float32) { *v = x },
	}
}

func TestLoopTween_YoyoRoundTrip(t *testing.T) {
	var v float32
	tw := (&Tweens{}).Start("rock", floatProp(&v), 1, TweenOptions{
		Duration: 2,
		Repeat:   RepeatForever,
		Yoyo:     true,
		Ease:     ease.Linear,
	})

	cases := []struct {
		at    float64
		value float32
		cycle int
	}{
		{0, 0, 0},
		{1, 0.5, 0},
		{2, 1, 1},
		{3, 0.5, 1},
		{4, 0, 2},
	}
	for _, c := range cases {
		value, cycle, finished := tw.Sample(c.at)
		assert.InDelta(t, c.value, value, 1e-6, "t=%v", c.at)
		assert.Equal(t, c.cycle, cycle, "t=%v", c.at)
		assert.False(t, finished)
	}
}

func TestLoopTween_RepeatDelayHolds(t *testing.T) {
	var v float32
	tw := (&Tweens{}).Start("rock", floatProp(&v), 1, TweenOptions{
		Duration:    2,
		RepeatDelay: 2,
		Repeat:      RepeatForever,
		Yoyo:        true,
	})

	value, cycle, _ := tw.Sample(3)
	assert.InDelta(t, 1, value, 1e-6, "held at the target during the delay")
	assert.Equal(t, 0, cycle)

	value, cycle, _ = tw.Sample(5)
	assert.InDelta(t, 0.5, value, 1e-6)
	assert.Equal(t, 1, cycle)
}

func TestLoopTween_FiniteRepeatFinishes(t *testing.T) {
	var v float32
	var cycles []int
	tw := (&Tweens{}).Start("once", floatProp(&v), 4, TweenOptions{
		Duration: 1,
		Repeat:   1,
		Yoyo:     true,
		OnCycle:  func(c int) { cycles = append(cycles, c) },
	})

	_, cycle, finished := tw.Sample(100)
	assert.True(t, finished)
	assert.Equal(t, 1, cycle)

	tw.Advance(100)
	assert.True(t, tw.Finished())
	assert.InDelta(t, 0, v, 1e-6, "a yoyo ends where it started")
	assert.Equal(t, []int{0, 1}, cycles)

	tw.Advance(1)
	assert.Equal(t, []int{0, 1}, cycles, "finished tweens stay put")
}

func TestLoopTween_FiniteRepeatSkipsTrailingDelay(t *testing.T) {
	var v float32
	tw := (&Tweens{}).Start("knock", floatProp(&v), 1, TweenOptions{
		Duration:    1,
		RepeatDelay: 3,
		Repeat:      1,
		Yoyo:        true,
	})

	_, _, finished := tw.Sample(4.5)
	assert.False(t, finished, "second cycle is still playing")
	value, cycle, finished := tw.Sample(5)
	assert.True(t, finished, "done at the end of the last cycle")
	assert.Equal(t, 1, cycle)
	assert.InDelta(t, 0, value, 1e-6)
}

func TestLoopTween_LongRunKeepsMoving(t *testing.T) {
	var v float32
	var cycles int
	tw := (&Tweens{}).Start("shishi", floatProp(&v), 1, TweenOptions{
		Duration:    1,
		RepeatDelay: 1,
		Repeat:      RepeatForever,
		Yoyo:        true,
		OnCycle:     func(int) { cycles++ },
	})

	// a week of play
	tw.Advance(7 * 24 * 3600)
	assert.InDelta(t, 7*24*3600, tw.Elapsed(), 1e-6)
	assert.Equal(t, 7*24*3600/2, cycles)
	assert.InDelta(t, 0, v, 1e-6)

	tw.Advance(0.016)
	assert.InDelta(t, 0.016, v, 1e-4, "small frame steps still move the value")
	tw.Advance(0.016)
	assert.InDelta(t, 0.032, v, 1e-4)
}

func TestLoopTween_AdvanceReportsEveryCycle(t *testing.T) {
	var v float32
	var cycles []int
	tw := (&Tweens{}).Start("tick", floatProp(&v), 1, TweenOptions{
		Duration: 1,
		Repeat:   RepeatForever,
		OnCycle:  func(c int) { cycles = append(cycles, c) },
	})

	for i := 0; i < 5; i++ {
		tw.Advance(0.5)
	}
	assert.Equal(t, []int{0, 1}, cycles)
	assert.Equal(t, 2, tw.Cycle())
	assert.InDelta(t, 2.5, tw.Elapsed(), 1e-6)
	assert.InDelta(t, 0.5, v, 1e-6)
}

func TestLoopTween_StartsFromCurrentValue(t *testing.T) {
	v := float32(3)
	tw := (&Tweens{}).Start("offset", floatProp(&v), 5, TweenOptions{Duration: 2})
	assert.Equal(t, float32(3), tw.From)

	value, _, _ := tw.Sample(1)
	assert.InDelta(t, 4, value, 1e-6)
}

func TestRotationXProperty(t *testing.T) {
	node := core.NewNode("shishi")
	prop := RotationXProperty(node)
	assert.Equal(t, float32(0), prop.Get())

	prop.Set(math.Pi / 2)
	assert.Equal(t, float32(math.Pi/2), prop.Get())
	up := node.Local.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
	assert.True(t, up.ApproxEqualThreshold(mgl32.Vec3{0, 0, 1}, 1e-5), "got %v", up)

	prop.Set(0)
	assert.True(t, node.Local.Rotation.ApproxEqualThreshold(mgl32.QuatIdent(), 1e-6))
}

func TestEaseByName(t *testing.T) {
	fn, ok := easeByName("power3.out")
	require.True(t, ok)
	assert.InDelta(t, ease.OutQuart(0.5, 0, 1, 1), fn(0.5, 0, 1, 1), 1e-6)

	_, ok = easeByName("Power3.Out")
	assert.True(t, ok)

	fn, ok = easeByName("")
	require.True(t, ok)
	assert.InDelta(t, 0.25, fn(0.25, 0, 1, 1), 1e-6)

	_, ok = easeByName("elastic.wobble")
	assert.False(t, ok)
}

func TestTweenSystem_UsesFrameTime(t *testing.T) {
	clock := newStepClock(250 * time.Millisecond)
	app := NewApp().UseModules(TimeModule{Now: clock.Now}, TweenModule{})
	tweens, ok := Resource[Tweens](app)
	require.True(t, ok)

	var v float32
	tweens.Start("lin", floatProp(&v), 1, TweenOptions{Duration: 1, Repeat: RepeatForever})
	assert.Equal(t, 1, tweens.Len())

	app.Step() // first tick has dt 0
	assert.InDelta(t, 0, v, 1e-6)
	app.Step()
	app.Step()
	assert.InDelta(t, 0.5, v, 1e-6)
}
