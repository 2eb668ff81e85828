package garden

import (
	"math"

	"github.com/gekko3d/garden/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// OrbitControls rotates the camera around its target with the left mouse button and
// dollies with the scroll wheel. Movement is damped: each frame applies a fraction of the
// pending delta and decays the rest.
type OrbitControls struct {
	RotateSpeed float32 // radians per pixel
	ZoomSpeed   float32
	Damping     float32 // 0 disables damping
	MinDistance float32
	MaxDistance float32

	deltaTheta float32
	deltaPhi   float32
	scale      float32

	home    mgl32.Vec3
	homeSet bool
}

func NewOrbitControls() *OrbitControls {
	return &OrbitControls{
		RotateSpeed: 0.005,
		ZoomSpeed:   0.95,
		Damping:     0.05,
		MinDistance: 1,
		MaxDistance: 20,
		scale:       1,
	}
}

// Update applies one frame of input to camera and reports whether the camera moved.
func (oc *OrbitControls) Update(camera *core.PerspectiveCamera, input *Input) bool {
	if !oc.homeSet {
		oc.home, oc.homeSet = camera.Position, true
	}
	if input.Pressed[MouseButtonLeft] {
		oc.deltaTheta -= float32(input.MouseDeltaX) * oc.RotateSpeed
		oc.deltaPhi -= float32(input.MouseDeltaY) * oc.RotateSpeed
	}
	if input.ScrollY > 0 {
		oc.scale *= oc.ZoomSpeed
	} else if input.ScrollY < 0 {
		oc.scale /= oc.ZoomSpeed
	}

	if oc.deltaTheta == 0 && oc.deltaPhi == 0 && oc.scale == 1 {
		return false
	}

	offset := camera.Position.Sub(camera.Target)
	radius := offset.Len()
	if radius == 0 {
		return false
	}
	theta := float32(math.Atan2(float64(offset.X()), float64(offset.Z())))
	phi := float32(math.Acos(float64(mgl32.Clamp(offset.Y()/radius, -1, 1))))

	factor := float32(1)
	if oc.Damping > 0 {
		factor = oc.Damping
	}
	theta += oc.deltaTheta * factor
	phi += oc.deltaPhi * factor
	phi = mgl32.Clamp(phi, 1e-3, math.Pi-1e-3)
	radius = mgl32.Clamp(radius*oc.scale, oc.MinDistance, oc.MaxDistance)

	sinPhi := float32(math.Sin(float64(phi)))
	camera.Position = camera.Target.Add(mgl32.Vec3{
		radius * sinPhi * float32(math.Sin(float64(theta))),
		radius * float32(math.Cos(float64(phi))),
		radius * sinPhi * float32(math.Cos(float64(theta))),
	})

	if oc.Damping > 0 {
		oc.deltaTheta *= 1 - oc.Damping
		oc.deltaPhi *= 1 - oc.Damping
		if abs32(oc.deltaTheta) < 1e-5 {
			oc.deltaTheta = 0
		}
		if abs32(oc.deltaPhi) < 1e-5 {
			oc.deltaPhi = 0
		}
	} else {
		oc.deltaTheta, oc.deltaPhi = 0, 0
	}
	oc.scale = 1
	return true
}

// Reset moves the camera back to where it was on the first Update and drops any pending
// motion.
func (oc *OrbitControls) Reset(camera *core.PerspectiveCamera) {
	if oc.homeSet {
		camera.Position = oc.home
	}
	oc.deltaTheta, oc.deltaPhi, oc.scale = 0, 0, 1
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

type OrbitControlsModule struct{}

func (m OrbitControlsModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewOrbitControls())
	app.UseSystem(
		System(orbitControlsSystem).
			InStage(Update),
	)
}

func orbitControlsSystem(oc *OrbitControls, camera *core.PerspectiveCamera, input *Input) {
	if input.JustPressed[KeyR] {
		oc.Reset(camera)
		return
	}
	oc.Update(camera, input)
}
