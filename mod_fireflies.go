package garden

import (
	"math/rand"
	"time"

	"github.com/gekko3d/garden/rt/core"
)

// FireflyUniforms matches the WGSL uniform block in fireflies.wgsl
// struct Fireflies { time: f32, pixelRatio: f32, size: f32, _pad: f32 }
type FireflyUniforms struct {
	Time       float32
	PixelRatio float32
	Size       float32
	_          float32
}

// Fireflies is the firefly point cloud plus the uniforms that animate it. The set is fixed at
// creation; Tick only writes the clock.
type Fireflies struct {
	Set      *core.ParticleSet
	Uniforms FireflyUniforms
}

func NewFireflies(count int, rng *rand.Rand) *Fireflies {
	return &Fireflies{
		Set: core.NewParticleSet(count, core.GardenParticleBounds, rng),
		Uniforms: FireflyUniforms{
			PixelRatio: 1,
			Size:       200,
		},
	}
}

// Tick stores the elapsed time for the shading stage.
func (f *Fireflies) Tick(elapsed float64) {
	f.Uniforms.Time = float32(elapsed)
}

// SetPixelRatio clamps dpr to MaxPixelRatio.
func (f *Fireflies) SetPixelRatio(dpr float64) {
	if dpr <= 0 {
		dpr = 1
	}
	f.Uniforms.PixelRatio = float32(min(dpr, MaxPixelRatio))
}

func (f *Fireflies) SetSize(size float64) {
	f.Uniforms.Size = float32(size)
}

type FirefliesModule struct {
	Count int
	Seed  int64
}

func (m FirefliesModule) Install(app *App, cmd *Commands) {
	seed := m.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ff := NewFireflies(m.Count, rand.New(rand.NewSource(seed)))

	if viewport, ok := Resource[Viewport](app); ok {
		ff.SetPixelRatio(viewport.DevicePixelRatio)
		viewport.OnResize(func(v *Viewport) {
			ff.SetPixelRatio(v.DevicePixelRatio)
		})
	}
	if tunables, ok := Resource[Tunables](app); ok {
		tunables.FireflySize.Bind(ff.SetSize)
	}

	app.Logger().Debugf("Fireflies: %d particles (seed %d)", ff.Set.Len(), seed)
	cmd.AddResources(ff)
	app.UseSystem(
		System(firefliesSystem).
			InStage(Update),
	)
}

func firefliesSystem(ff *Fireflies, clock *Time) {
	ff.Tick(clock.Elapsed())
}
