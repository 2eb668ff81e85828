package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPondFollower(t *testing.T) *Follower {
	t.Helper()
	s, err := NewSpline(pondLoop, true)
	require.NoError(t, err)
	return NewFollower(s)
}

func TestFollower_StartsAtCurveStart(t *testing.T) {
	f := newPondFollower(t)

	assert.Equal(t, 0.0, f.Progress())
	p := f.Spline().PointAt(0)
	want := mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])}
	assert.True(t, want.ApproxEqualThreshold(f.Transform().Position, 1e-6))
}

func TestFollower_ProgressStaysInUnitRange(t *testing.T) {
	f := newPondFollower(t)

	for _, step := range []float64{0.3, 0.9, 1.7, -0.45, 2, -3.2} {
		f.Advance(step)
		p := f.Progress()
		if p < 0 || p >= 1 {
			t.Fatalf("progress %v outside [0,1) after step %v", p, step)
		}
	}
}

func TestFollower_ProgressIncreasesModuloOne(t *testing.T) {
	f := newPondFollower(t)
	const step = 0.013

	prev := f.Progress()
	for i := 0; i < 500; i++ {
		f.Advance(step)
		delta := math.Mod(f.Progress()-prev+1, 1)
		assert.InDelta(t, step, delta, 1e-9, "tick %d", i)
		prev = f.Progress()
	}
	assert.Equal(t, 6, f.Laps())
}

func TestFollower_ThousandSmallStepsCloseTheLoop(t *testing.T) {
	f := newPondFollower(t)
	for i := 0; i < 1000; i++ {
		f.Advance(0.001)
	}

	p := f.Progress()
	dist := math.Min(p, 1-p)
	assert.Less(t, dist, 1e-9)
}

func TestFollower_FacesAlongTangent(t *testing.T) {
	f := newPondFollower(t)
	f.Advance(0.37)

	tan := f.Spline().TangentAt(f.Progress())
	forward := f.Transform().Rotation.Rotate(mgl32.Vec3{0, 0, 1})
	want := mgl32.Vec3{float32(tan[0]), float32(tan[1]), float32(tan[2])}
	assert.True(t, want.ApproxEqualThreshold(forward, 1e-4), "forward %v, tangent %v", forward, want)
}
