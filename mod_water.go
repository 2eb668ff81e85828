package garden

import (
	"math"

	"github.com/gekko3d/garden/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

// WaterUniforms matches the WGSL uniform block in water.wgsl
// struct Water { color1: vec4<f32>, color2: vec4<f32>, time: f32, _pad: vec3<f32> }
type WaterUniforms struct {
	Color1 [4]float32
	Color2 [4]float32
	Time   float32
	_      [3]float32
}

// Water is the procedural pond surface. The grid never changes; waves are computed in the
// vertex stage from Uniforms.Time.
type Water struct {
	Node     *core.Node
	Uniforms WaterUniforms
}

func NewWater(size float32, segments int, position mgl32.Vec3) *Water {
	node := core.NewNode("water")
	node.Mesh = core.PlaneGrid(size, size, segments, segments)
	node.Local.Position = position
	node.Local.Rotation = core.EulerXYZ(-math.Pi*0.5, 0, 0)
	node.Material = &core.Material{Kind: core.MaterialBasic, BaseColor: [4]float32{1, 1, 1, 1}, Transparent: true, Opacity: 1}
	return &Water{Node: node}
}

// Tick stores the elapsed time. Colors are only changed through SetColor1/SetColor2.
func (w *Water) Tick(elapsed float64) {
	w.Uniforms.Time = float32(elapsed)
}

func (w *Water) SetColor1(c colorful.Color) { w.Uniforms.Color1 = core.ColorRGBA(c, 1) }
func (w *Water) SetColor2(c colorful.Color) { w.Uniforms.Color2 = core.ColorRGBA(c, 1) }

type WaterModule struct {
	Config WaterConfig
}

func (m WaterModule) Install(app *App, cmd *Commands) {
	wc := m.Config
	if wc.Segments <= 0 {
		wc.Segments = 150
	}
	if wc.Size <= 0 {
		wc.Size = 2.5
	}
	water := NewWater(wc.Size, wc.Segments, mgl32.Vec3(wc.Position))
	water.SetColor1(wc.color1())
	water.SetColor2(wc.color2())

	if tunables, ok := Resource[Tunables](app); ok {
		tunables.WaterColor1.Bind(water.SetColor1)
		tunables.WaterColor2.Bind(water.SetColor2)
	}

	cmd.AddResources(water)
	app.UseSystem(
		System(waterSystem).
			InStage(Update),
	)
}

func waterSystem(water *Water, clock *Time) {
	water.Tick(clock.Elapsed())
}
