package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// WorldUp is the scene's up axis.
var WorldUp = mgl32.Vec3{0, 1, 0}

// Follower carries a pose along a spline. Progress is kept in [0,1) and wraps on each lap.
type Follower struct {
	spline    *Spline
	t         float64
	laps      int
	transform Transform
}

func NewFollower(spline *Spline) *Follower {
	f := &Follower{
		spline:    spline,
		transform: NewTransform(),
	}
	f.recompute()
	return f
}

// Advance moves progress by step (mod 1) and recomputes position and orientation.
func (f *Follower) Advance(step float64) {
	next := f.t + step
	f.laps += int(math.Floor(next))
	next = math.Mod(next, 1)
	if next < 0 {
		next += 1
	}
	if next >= 1 {
		next = 0
	}
	f.t = next
	f.recompute()
}

func (f *Follower) recompute() {
	p := f.spline.PointAt(f.t)
	tan := f.spline.TangentAt(f.t)

	f.transform.Position = mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])}
	f.transform.Rotation = LookRotation(mgl32.Vec3{float32(tan[0]), float32(tan[1]), float32(tan[2])}, WorldUp)
}

// Progress returns the curve parameter in [0,1).
func (f *Follower) Progress() float64 { return f.t }

// Laps counts completed wraps (negative when stepping backwards).
func (f *Follower) Laps() int { return f.laps }

func (f *Follower) Transform() Transform { return f.transform }

func (f *Follower) Spline() *Spline { return f.spline }
