package garden

import (
	"testing"

	"github.com/gekko3d/garden/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func orbitCamera() *core.PerspectiveCamera {
	cam := core.NewPerspectiveCamera(35, 1, 0.1, 100)
	cam.Position = mgl32.Vec3{0, 0, 5}
	return cam
}

func TestOrbitControls_IdleDoesNothing(t *testing.T) {
	oc := NewOrbitControls()
	cam := orbitCamera()

	assert.False(t, oc.Update(cam, &Input{}))
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, cam.Position)
}

func TestOrbitControls_DragKeepsDistance(t *testing.T) {
	oc := NewOrbitControls()
	cam := orbitCamera()
	input := &Input{}
	input.Press(MouseButtonLeft)
	input.MouseDeltaX = 40
	input.MouseDeltaY = -25

	assert.True(t, oc.Update(cam, input))
	assert.NotEqual(t, mgl32.Vec3{0, 0, 5}, cam.Position)
	assert.InDelta(t, 5, cam.Position.Len(), 1e-4)

	// damping keeps the camera drifting after the drag ends
	input.endFrame()
	moved := cam.Position
	assert.True(t, oc.Update(cam, input))
	assert.NotEqual(t, moved, cam.Position)
}

func TestOrbitControls_MoveWithoutButtonIgnored(t *testing.T) {
	oc := NewOrbitControls()
	cam := orbitCamera()

	assert.False(t, oc.Update(cam, &Input{MouseDeltaX: 40}))
}

func TestOrbitControls_ZoomClamped(t *testing.T) {
	oc := NewOrbitControls()
	cam := orbitCamera()

	assert.True(t, oc.Update(cam, &Input{ScrollY: 1}))
	assert.True(t, cam.Position.ApproxEqualThreshold(mgl32.Vec3{0, 0, 4.75}, 1e-4), "got %v", cam.Position)

	for i := 0; i < 200; i++ {
		oc.Update(cam, &Input{ScrollY: 1})
	}
	assert.InDelta(t, oc.MinDistance, cam.Position.Len(), 1e-4)

	for i := 0; i < 200; i++ {
		oc.Update(cam, &Input{ScrollY: -1})
	}
	assert.InDelta(t, oc.MaxDistance, cam.Position.Len(), 1e-3)
}

func TestOrbitControls_ResetReturnsHome(t *testing.T) {
	oc := NewOrbitControls()
	cam := orbitCamera()
	input := &Input{}
	input.Press(MouseButtonLeft)
	input.MouseDeltaX = 120
	oc.Update(cam, input)
	oc.Update(cam, &Input{ScrollY: 1})
	assert.NotEqual(t, mgl32.Vec3{0, 0, 5}, cam.Position)

	oc.Reset(cam)
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, cam.Position)
	assert.False(t, oc.Update(cam, &Input{}), "pending motion is dropped")
}

func TestOrbitControlsModule_KeyR(t *testing.T) {
	app := NewApp().UseModules(
		CameraModule{Width: 800, Height: 600, PixelRatio: 1, Camera: DefaultConfig().Camera},
		InputModule{},
		TunablesModule{Config: DefaultConfig()},
		OrbitControlsModule{},
	)
	cam, _ := Resource[core.PerspectiveCamera](app)
	input, _ := Resource[Input](app)
	home := cam.Position

	input.Press(MouseButtonLeft)
	input.MoveMouse(0, 0)
	input.MoveMouse(200, 50)
	app.Step()
	input.Release(MouseButtonLeft)
	app.Step()
	assert.NotEqual(t, home, cam.Position)

	input.Press(KeyR)
	app.Step()
	assert.Equal(t, home, cam.Position)
}
