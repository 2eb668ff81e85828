package shaders

import (
	_ "embed"
)

// FrameWGSL declares the per-frame uniform block at group 0 and the fog helper. It is
// prepended to every pass shader.
//
//go:embed frame.wgsl
var FrameWGSL string

//go:embed mesh.wgsl
var MeshWGSL string

//go:embed water.wgsl
var WaterWGSL string

//go:embed fireflies.wgsl
var FirefliesWGSL string

//go:embed line.wgsl
var LineWGSL string

// WithFrame prefixes a pass shader with the shared frame declarations.
func WithFrame(pass string) string {
	return FrameWGSL + "\n" + pass
}
