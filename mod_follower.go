package garden

import (
	"fmt"

	"github.com/gekko3d/garden/rt/core"
	"github.com/go-gl/mathgl/mgl64"
)

// FollowMode selects how the per-tick curve step is interpreted.
type FollowMode int

const (
	// StepPerFrame advances by Step every tick, so speed follows the frame rate.
	StepPerFrame FollowMode = iota
	// StepPerSecond treats Step as curve parameter per second and scales it by frame time.
	StepPerSecond
)

func (m FollowMode) String() string {
	if m == StepPerSecond {
		return "time"
	}
	return "frame"
}

func ParseFollowMode(s string) (FollowMode, error) {
	switch s {
	case "", "frame":
		return StepPerFrame, nil
	case "time":
		return StepPerSecond, nil
	}
	return StepPerFrame, fmt.Errorf("unknown follow mode %q (want \"frame\" or \"time\")", s)
}

// CurveFollower moves an attached scene node around a closed path. Until a node is attached
// ticks are no-ops.
type CurveFollower struct {
	*core.Follower
	Step float64
	Mode FollowMode

	target   *core.Node
	advanced uint64
}

func NewCurveFollower(path [][3]float64, step float64, mode FollowMode) (*CurveFollower, error) {
	points := make([]mgl64.Vec3, len(path))
	for i, p := range path {
		points[i] = mgl64.Vec3{p[0], p[1], p[2]}
	}
	spline, err := core.NewSpline(points, true)
	if err != nil {
		return nil, err
	}
	return &CurveFollower{
		Follower: core.NewFollower(spline),
		Step:     step,
		Mode:     mode,
	}, nil
}

// Attach makes node the carried object. The node's local transform is overwritten every tick.
func (cf *CurveFollower) Attach(node *core.Node) {
	cf.target = node
	cf.apply()
}

func (cf *CurveFollower) Target() *core.Node { return cf.target }

// Advanced counts ticks that actually moved the target.
func (cf *CurveFollower) Advanced() uint64 { return cf.advanced }

// Tick advances once for a frame that took dt seconds. It reports whether anything moved.
func (cf *CurveFollower) Tick(dt float64) bool {
	if cf.target == nil {
		return false
	}
	step := cf.Step
	if cf.Mode == StepPerSecond {
		step *= dt
	}
	cf.Advance(step)
	cf.apply()
	cf.advanced++
	return true
}

func (cf *CurveFollower) apply() {
	if cf.target == nil {
		return
	}
	tr := cf.Transform()
	cf.target.Local.Position = tr.Position
	cf.target.Local.Rotation = tr.Rotation
}

type FollowerModule struct {
	Path [][3]float64
	Step float64
	Mode FollowMode
}

func (m FollowerModule) Install(app *App, cmd *Commands) {
	path := m.Path
	if path == nil {
		path = GardenPath
	}
	cf, err := NewCurveFollower(path, m.Step, m.Mode)
	if err != nil {
		app.Logger().With("koi").Errorf("path: %v", err)
		panic(err)
	}
	cmd.AddResources(cf)
	app.UseSystem(
		System(followerSystem).
			InStage(Update),
	)
}

func followerSystem(cf *CurveFollower, clock *Time) {
	cf.Tick(clock.DtSeconds())
}
