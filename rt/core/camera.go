package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// PerspectiveCamera is a Y-up camera aimed at a fixed target.
type PerspectiveCamera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	FovY     float32 // degrees
	Aspect   float32
	Near     float32
	Far      float32
}

func NewPerspectiveCamera(fovY, aspect, near, far float32) *PerspectiveCamera {
	return &PerspectiveCamera{
		Position: mgl32.Vec3{0, 0, 5},
		Target:   mgl32.Vec3{0, 0, 0},
		FovY:     fovY,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
	}
}

// SetViewport recomputes the aspect ratio. Zero-height viewports (minimized windows) are ignored.
func (c *PerspectiveCamera) SetViewport(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	c.Aspect = float32(width) / float32(height)
	return true
}

func (c *PerspectiveCamera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, WorldUp)
}

// GetProjectionMatrix returns a projection with clip depth in [0,1] as WebGPU expects.
func (c *PerspectiveCamera) GetProjectionMatrix() mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(c.FovY), c.Aspect, c.Near, c.Far)
	// remap OpenGL-style -1..1 depth to 0..1
	depthFix := mgl32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 0.5, 0,
		0, 0, 0.5, 1,
	}
	return depthFix.Mul4(proj)
}

func (c *PerspectiveCamera) ViewProjection() mgl32.Mat4 {
	return c.GetProjectionMatrix().Mul4(c.GetViewMatrix())
}
