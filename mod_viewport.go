package garden

import (
	"github.com/gekko3d/garden/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxPixelRatio caps the device pixel ratio used for rendering.
const MaxPixelRatio = 2.0

// Viewport tracks the drawable size and the host's device pixel ratio. Resize runs on the
// loop thread and notifies listeners synchronously.
type Viewport struct {
	Width            int
	Height           int
	DevicePixelRatio float64
	listeners        []func(v *Viewport)
}

// PixelRatio is the device pixel ratio clamped to MaxPixelRatio.
func (v *Viewport) PixelRatio() float64 {
	if v.DevicePixelRatio <= 0 {
		return 1
	}
	return min(v.DevicePixelRatio, MaxPixelRatio)
}

// DrawableSize is the render target size in pixels.
func (v *Viewport) DrawableSize() (int, int) {
	r := v.PixelRatio()
	return int(float64(v.Width)*r + 0.5), int(float64(v.Height)*r + 0.5)
}

func (v *Viewport) Aspect() float32 {
	if v.Height <= 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

func (v *Viewport) OnResize(fn func(v *Viewport)) {
	v.listeners = append(v.listeners, fn)
}

func (v *Viewport) Resize(width, height int, devicePixelRatio float64) {
	v.Width = width
	v.Height = height
	if devicePixelRatio > 0 {
		v.DevicePixelRatio = devicePixelRatio
	}
	for _, fn := range v.listeners {
		fn(v)
	}
}

type CameraModule struct {
	Width      int
	Height     int
	PixelRatio float64
	Camera     CameraConfig
}

func (m CameraModule) Install(app *App, cmd *Commands) {
	width, height := m.Width, m.Height
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	dpr := m.PixelRatio
	if dpr <= 0 {
		dpr = 1
	}
	cc := m.Camera
	if cc.Fov <= 0 {
		cc = DefaultConfig().Camera
	}

	viewport := &Viewport{Width: width, Height: height, DevicePixelRatio: dpr}
	camera := core.NewPerspectiveCamera(cc.Fov, viewport.Aspect(), cc.Near, cc.Far)
	camera.Position = mgl32.Vec3(cc.Position)
	camera.Target = mgl32.Vec3(cc.Target)

	viewport.OnResize(func(v *Viewport) {
		if camera.SetViewport(v.Width, v.Height) {
			app.Logger().Debugf("Viewport %dx%d @%.2f, aspect %.3f", v.Width, v.Height, v.DevicePixelRatio, camera.Aspect)
		}
	})

	cmd.AddResources(viewport, camera)
}
