package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MeshData is CPU-side indexed triangle geometry.
type MeshData struct {
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Indices   []uint32
}

func (m *MeshData) VertexCount() int { return len(m.Positions) }

// PlaneGrid builds a width x height plane in the XY plane facing +Z, subdivided into
// wSeg x hSeg quads. UVs run 0..1 left to right and bottom to top.
func PlaneGrid(width, height float32, wSeg, hSeg int) *MeshData {
	if wSeg < 1 {
		wSeg = 1
	}
	if hSeg < 1 {
		hSeg = 1
	}
	cols, rows := wSeg+1, hSeg+1
	m := &MeshData{
		Positions: make([][3]float32, 0, cols*rows),
		Normals:   make([][3]float32, 0, cols*rows),
		UVs:       make([][2]float32, 0, cols*rows),
		Indices:   make([]uint32, 0, wSeg*hSeg*6),
	}

	segW := width / float32(wSeg)
	segH := height / float32(hSeg)
	for iy := 0; iy < rows; iy++ {
		y := float32(iy)*segH - height/2
		for ix := 0; ix < cols; ix++ {
			x := float32(ix)*segW - width/2
			m.Positions = append(m.Positions, [3]float32{x, -y, 0})
			m.Normals = append(m.Normals, [3]float32{0, 0, 1})
			m.UVs = append(m.UVs, [2]float32{float32(ix) / float32(wSeg), 1 - float32(iy)/float32(hSeg)})
		}
	}

	for iy := 0; iy < hSeg; iy++ {
		for ix := 0; ix < wSeg; ix++ {
			a := uint32(ix + cols*iy)
			b := uint32(ix + cols*(iy+1))
			c := uint32(ix + 1 + cols*(iy+1))
			d := uint32(ix + 1 + cols*iy)
			m.Indices = append(m.Indices, a, b, d, b, c, d)
		}
	}
	return m
}

// LineLoop converts sampled curve points into a closed polyline for line-list drawing.
func LineLoop(points []mgl32.Vec3) [][3]float32 {
	if len(points) < 2 {
		return nil
	}
	out := make([][3]float32, 0, len(points)*2)
	for i := range points {
		a := points[i]
		b := points[(i+1)%len(points)]
		out = append(out, [3]float32{a.X(), a.Y(), a.Z()}, [3]float32{b.X(), b.Y(), b.Z()})
	}
	return out
}
