package core

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// FireflyInstance matches the WGSL instance layout in fireflies.wgsl
// struct Instance { pos: vec3<f32>, scale: f32 }
type FireflyInstance struct {
	Pos   [3]float32
	Scale float32
}

// ParticleBounds is the volume particles are scattered in.
type ParticleBounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// GardenParticleBounds covers the pond: x in [-2,2), y in [0.3,1.8), z in [-1.5,2.5).
var GardenParticleBounds = ParticleBounds{
	Min: mgl32.Vec3{-2, 0.3, -1.5},
	Max: mgl32.Vec3{2, 1.8, 2.5},
}

// ParticleSet is a fixed-size point cloud. Positions and scales are drawn once at creation
// and never change; motion happens in the shader from the shared time uniform.
type ParticleSet struct {
	pos   []mgl32.Vec3
	scale []float32
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// NewParticleSet draws count particles uniformly inside bounds with scale in [0,1).
func NewParticleSet(count int, bounds ParticleBounds, rng *rand.Rand) *ParticleSet {
	if count < 0 {
		count = 0
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	ps := &ParticleSet{
		pos:   make([]mgl32.Vec3, count),
		scale: make([]float32, count),
	}
	for i := 0; i < count; i++ {
		ps.pos[i] = mgl32.Vec3{
			lerp(bounds.Min.X(), bounds.Max.X(), rng.Float32()),
			lerp(bounds.Min.Y(), bounds.Max.Y(), rng.Float32()),
			lerp(bounds.Min.Z(), bounds.Max.Z(), rng.Float32()),
		}
		ps.scale[i] = rng.Float32()
	}
	return ps
}

func (ps *ParticleSet) Len() int { return len(ps.pos) }

func (ps *ParticleSet) Position(i int) mgl32.Vec3 { return ps.pos[i] }

func (ps *ParticleSet) Scale(i int) float32 { return ps.scale[i] }

// Instances packs the set for upload into an instance buffer.
func (ps *ParticleSet) Instances() []FireflyInstance {
	out := make([]FireflyInstance, len(ps.pos))
	for i, p := range ps.pos {
		out[i] = FireflyInstance{
			Pos:   [3]float32{p.X(), p.Y(), p.Z()},
			Scale: ps.scale[i],
		}
	}
	return out
}
