package garden

import (
	"fmt"
	"reflect"

	"github.com/gekko3d/garden/rt/asset"
	"github.com/gekko3d/garden/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// FogUniforms matches the WGSL uniform block shared by the mesh and water shaders.
type FogUniforms struct {
	Color [4]float32
	Near  float32
	Far   float32
	_     [2]float32
}

// TextureSource resolves material texture refs to decoded images.
type TextureSource interface {
	Image(ref core.TextureRef) (*asset.Image, bool)
}

func (server *AssetServer) Image(ref core.TextureRef) (*asset.Image, bool) {
	t, ok := server.Texture(ref)
	if !ok {
		return nil, false
	}
	return t.Image, true
}

// FrameSnapshot is everything a renderer needs for one frame. It is rebuilt every tick in
// PreRender after all animation systems have run, so one frame never mixes old and new state.
type FrameSnapshot struct {
	Frame      uint64
	Width      int
	Height     int
	PixelRatio float64

	View           mgl32.Mat4
	Projection     mgl32.Mat4
	CameraPosition mgl32.Vec3
	ClearColor     [4]float64
	Fog            FogUniforms

	Fireflies        FireflyUniforms
	FireflyInstances []core.FireflyInstance

	Water      WaterUniforms
	WaterMesh  *core.MeshData
	WaterModel mgl32.Mat4

	Items []core.DrawItem
	// Path is nil when the overlay is hidden.
	Path []mgl32.Vec3

	Textures TextureSource
}

// Renderer draws snapshots to some surface.
type Renderer interface {
	Name() string
	// Resize is called with the drawable size in pixels.
	Resize(width, height int)
	Render(frame *FrameSnapshot) error
	Release()
}

// RendererTag marks that a renderer has been installed into the App.
type RendererTag struct {
	Name string
}

// ensureSingleRenderer panics if a different renderer is already installed.
func ensureSingleRenderer(app *App, name string) {
	t := reflect.TypeOf((*RendererTag)(nil)).Elem()
	if res, ok := app.resources[t]; ok {
		if tag := res.(*RendererTag); tag.Name != name {
			app.Logger().Errorf("Multiple renderers installed: %s and %s", tag.Name, name)
			panic(fmt.Sprintf("Multiple renderers installed: %s and %s", tag.Name, name))
		}
		return
	}
	app.addResources(&RendererTag{Name: name})
}

// RenderState carries the renderer and its per-frame bookkeeping.
type RenderState struct {
	Renderer Renderer
	Snapshot FrameSnapshot
	Fog      FogUniforms
	Frames   uint64
	Failures uint64
}

type RenderModule struct {
	Renderer Renderer
	Fog      FogConfig
}

func (m RenderModule) Install(app *App, cmd *Commands) {
	if m.Renderer == nil {
		m.Renderer = &HeadlessRenderer{}
	}
	ensureSingleRenderer(app, m.Renderer.Name())

	state := &RenderState{
		Renderer: m.Renderer,
		Fog: FogUniforms{
			Color: core.ColorRGBA(hexOr(m.Fog.Color, "#ffffff"), 1),
			Near:  m.Fog.Near,
			Far:   m.Fog.Far,
		},
	}
	if state.Fog.Far <= state.Fog.Near {
		state.Fog.Far = state.Fog.Near + 17
	}

	if viewport, ok := Resource[Viewport](app); ok {
		resize := func(v *Viewport) {
			w, h := v.DrawableSize()
			if w > 0 && h > 0 {
				m.Renderer.Resize(w, h)
			}
		}
		resize(viewport)
		viewport.OnResize(resize)
	}

	app.Logger().Infof("Renderer selected: %s", m.Renderer.Name())
	cmd.AddResources(state)
	app.UseSystem(
		System(snapshotSystem).
			InStage(PreRender),
	)
	app.UseSystem(
		System(renderSystem).
			InStage(Render),
	)
}

// snapshotSystem gathers optional resources by hand so a partial app still renders.
func snapshotSystem(state *RenderState, cmd *Commands) {
	app := cmd.app
	s := &state.Snapshot
	s.Frame = app.frame
	s.Fog = state.Fog

	if v, ok := Resource[Viewport](app); ok {
		s.Width, s.Height = v.DrawableSize()
		s.PixelRatio = v.PixelRatio()
	}
	if cam, ok := Resource[core.PerspectiveCamera](app); ok {
		s.View = cam.GetViewMatrix()
		s.Projection = cam.GetProjectionMatrix()
		s.CameraPosition = cam.Position
	}
	if t, ok := Resource[Tunables](app); ok {
		r, g, b := t.ClearColor.Get().LinearRgb()
		s.ClearColor = [4]float64{r, g, b, 1}
	}
	if ff, ok := Resource[Fireflies](app); ok {
		s.Fireflies = ff.Uniforms
		if s.FireflyInstances == nil {
			s.FireflyInstances = ff.Set.Instances()
		}
	}
	if w, ok := Resource[Water](app); ok {
		s.Water = w.Uniforms
		s.WaterMesh = w.Node.Mesh
		s.WaterModel = w.Node.Local.ObjectToWorld()
	}

	s.Items = s.Items[:0]
	s.Path = nil
	if g, ok := Resource[GardenScene](app); ok {
		s.Items = append(s.Items, g.Scene.Visible()...)
		if g.Path.Visible {
			s.Path = g.Path.Points
		}
	}
	if server, ok := Resource[AssetServer](app); ok {
		s.Textures = server
		app.profiler.SetCount("pending assets", server.Pending())
	}
	app.profiler.SetCount("draw items", len(s.Items))
}

func renderSystem(state *RenderState, cmd *Commands) {
	if err := state.Renderer.Render(&state.Snapshot); err != nil {
		state.Failures++
		// a lost frame is not fatal; log the first and then every 600th
		if state.Failures == 1 || state.Failures%600 == 0 {
			cmd.Logger().With("render").Warnf("frame %d: %v (%d failures)", state.Snapshot.Frame, err, state.Failures)
		}
		return
	}
	state.Frames++
}

// HeadlessRenderer renders nothing. It records what it was given, for tests and for
// running the animation without a GPU.
type HeadlessRenderer struct {
	Frames  int
	Resizes int
	Width   int
	Height  int
	Last    FrameSnapshot
}

func (r *HeadlessRenderer) Name() string { return "headless" }

func (r *HeadlessRenderer) Resize(width, height int) {
	r.Resizes++
	r.Width, r.Height = width, height
}

func (r *HeadlessRenderer) Render(frame *FrameSnapshot) error {
	r.Frames++
	r.Last = *frame
	return nil
}

func (r *HeadlessRenderer) Release() {}
