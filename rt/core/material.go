package core

import (
	"github.com/lucasb-eyer/go-colorful"
)

type MaterialKind int

const (
	MaterialBasic MaterialKind = iota
	MaterialMatcap
)

// TextureRef names a decoded texture held by the asset server.
type TextureRef string

type Material struct {
	Kind        MaterialKind
	BaseColor   [4]float32 // linear RGBA
	Texture     TextureRef
	Transparent bool
	Opacity     float32
}

// ColorRGBA converts an sRGB color into linear RGBA with the given alpha.
func ColorRGBA(c colorful.Color, alpha float32) [4]float32 {
	r, g, b := c.LinearRgb()
	return [4]float32{float32(r), float32(g), float32(b), alpha}
}

// MustHex parses a #rrggbb literal. It panics on malformed input and is meant for constants.
func MustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func NewBasicMaterial(c colorful.Color) Material {
	return Material{
		Kind:      MaterialBasic,
		BaseColor: ColorRGBA(c, 1),
		Opacity:   1,
	}
}

func NewTexturedMaterial(tex TextureRef) Material {
	return Material{
		Kind:      MaterialBasic,
		BaseColor: [4]float32{1, 1, 1, 1},
		Texture:   tex,
		Opacity:   1,
	}
}

func NewMatcapMaterial(matcap TextureRef) Material {
	return Material{
		Kind:      MaterialMatcap,
		BaseColor: [4]float32{1, 1, 1, 1},
		Texture:   matcap,
		Opacity:   1,
	}
}

// Helper for default white
func DefaultMaterial() Material {
	return Material{
		Kind:      MaterialBasic,
		BaseColor: [4]float32{1, 1, 1, 1},
		Opacity:   1,
	}
}
