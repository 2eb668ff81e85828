package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/garden/rt/core"
	"github.com/gekko3d/garden/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

// WaterObject matches the WGSL Object block in water.wgsl
type WaterObject struct {
	Model  mgl32.Mat4
	Color1 [4]float32
	Color2 [4]float32
	Time   float32
	_      [3]float32
}

// FireflyParams matches the WGSL Fireflies block in fireflies.wgsl
type FireflyParams struct {
	Time       float32
	PixelRatio float32
	Size       float32
	_          float32
}

func newPassPipeline(s *State, label, code string, bgls []*wgpu.BindGroupLayout, buffers []wgpu.VertexBufferLayout,
	topology wgpu.PrimitiveTopology, blend *wgpu.BlendState, depthWrite bool) (*wgpu.RenderPipeline, error) {
	module, err := s.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label + "Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.WithFrame(code)},
	})
	if err != nil {
		return nil, err
	}
	defer module.Release()

	layout, err := s.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label + "PipelineLayout",
		BindGroupLayouts: bgls,
	})
	if err != nil {
		return nil, err
	}
	defer layout.Release()

	return s.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label + "Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    s.Config.Format,
					Blend:     blend,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: depthState(depthWrite),
		Multisample:  multisample,
	})
}

// uniformPass is a pipeline with a single uniform buffer at group 1.
type uniformPass struct {
	Pipeline  *wgpu.RenderPipeline
	BGL       *wgpu.BindGroupLayout
	BindGroup *wgpu.BindGroup
	Uniforms  *wgpu.Buffer
}

func newUniformPass(s *State, label string, size uint64, visibility wgpu.ShaderStage) (*uniformPass, error) {
	bgl, err := uniformLayout(s.Device, label+"BGL", visibility, size)
	if err != nil {
		return nil, err
	}
	buf, err := s.createUniform(label+"Uniforms", size)
	if err != nil {
		return nil, err
	}
	bg, err := s.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label + "BG",
		Layout:  bgl,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: buf, Size: wgpu.WholeSize}},
	})
	if err != nil {
		return nil, err
	}
	return &uniformPass{BGL: bgl, BindGroup: bg, Uniforms: buf}, nil
}

func (p *uniformPass) release() {
	if p.Pipeline != nil {
		p.Pipeline.Release()
	}
	p.BindGroup.Release()
	p.Uniforms.Release()
	p.BGL.Release()
}

// WaterPass draws the wave grid. The grid is uploaded once; only the uniforms change.
type WaterPass struct {
	*uniformPass
	state *State
	mesh  *gpuMesh
	src   *core.MeshData
}

func NewWaterPass(s *State, frameBGL *wgpu.BindGroupLayout) (*WaterPass, error) {
	up, err := newUniformPass(s, "Water", uint64(sizeOf[WaterObject]()), wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)
	if err != nil {
		return nil, err
	}
	up.Pipeline, err = newPassPipeline(s, "Water", shaders.WaterWGSL,
		[]*wgpu.BindGroupLayout{frameBGL, up.BGL},
		[]wgpu.VertexBufferLayout{{
			ArrayStride: 12,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  []wgpu.VertexAttribute{{Format: wgpu.VertexFormatFloat32x3, ShaderLocation: 0}},
		}},
		wgpu.PrimitiveTopologyTriangleList, alphaBlend, true)
	if err != nil {
		return nil, err
	}
	return &WaterPass{uniformPass: up, state: s}, nil
}

func (p *WaterPass) Draw(pass *wgpu.RenderPassEncoder, frameBG *wgpu.BindGroup, md *core.MeshData, obj WaterObject) error {
	if md == nil || len(md.Indices) == 0 {
		return nil
	}
	if p.src != md {
		if p.mesh != nil {
			p.mesh.release()
		}
		m, err := uploadMesh(p.state, "Water", md)
		if err != nil {
			return err
		}
		p.mesh, p.src = m, md
	}
	p.state.Queue.WriteBuffer(p.Uniforms, 0, asBytes(&obj))

	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, frameBG, nil)
	pass.SetBindGroup(1, p.BindGroup, nil)
	pass.SetVertexBuffer(0, p.mesh.positions, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(p.mesh.indices, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(p.mesh.count, 1, 0, 0, 0)
	return nil
}

func (p *WaterPass) Release() {
	if p.mesh != nil {
		p.mesh.release()
	}
	p.release()
}

// FirefliesPass draws one camera-facing quad per firefly, blended additively without
// writing depth.
type FirefliesPass struct {
	*uniformPass
	state     *State
	instances *wgpu.Buffer
	count     uint32
	uploaded  []core.FireflyInstance
}

func NewFirefliesPass(s *State, frameBGL *wgpu.BindGroupLayout) (*FirefliesPass, error) {
	up, err := newUniformPass(s, "Fireflies", uint64(sizeOf[FireflyParams]()), wgpu.ShaderStageVertex)
	if err != nil {
		return nil, err
	}
	up.Pipeline, err = newPassPipeline(s, "Fireflies", shaders.FirefliesWGSL,
		[]*wgpu.BindGroupLayout{frameBGL, up.BGL},
		[]wgpu.VertexBufferLayout{{
			ArrayStride: uint64(sizeOf[core.FireflyInstance]()),
			StepMode:    wgpu.VertexStepModeInstance,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				{Format: wgpu.VertexFormatFloat32, Offset: 12, ShaderLocation: 1},
			},
		}},
		wgpu.PrimitiveTopologyTriangleList, additiveBlend, false)
	if err != nil {
		return nil, err
	}
	return &FirefliesPass{uniformPass: up, state: s}, nil
}

func (p *FirefliesPass) Draw(pass *wgpu.RenderPassEncoder, frameBG *wgpu.BindGroup, instances []core.FireflyInstance, params FireflyParams) error {
	if len(instances) == 0 {
		return nil
	}
	// the particle set never changes, so the buffer is written once
	if p.instances == nil || len(p.uploaded) == 0 || &p.uploaded[0] != &instances[0] {
		if p.instances != nil {
			p.instances.Release()
		}
		buf, err := p.state.createBuffer("FireflyInstances", sliceBytes(instances), wgpu.BufferUsageVertex)
		if err != nil {
			return err
		}
		p.instances, p.count, p.uploaded = buf, uint32(len(instances)), instances
	}
	p.state.Queue.WriteBuffer(p.Uniforms, 0, asBytes(&params))

	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, frameBG, nil)
	pass.SetBindGroup(1, p.BindGroup, nil)
	pass.SetVertexBuffer(0, p.instances, 0, wgpu.WholeSize)
	pass.Draw(6, p.count, 0, 0)
	return nil
}

func (p *FirefliesPass) Release() {
	if p.instances != nil {
		p.instances.Release()
	}
	p.release()
}

// LinePass draws the koi path as a line list, adapted from the gizmo line renderer.
type LinePass struct {
	*uniformPass
	state    *State
	vertices *wgpu.Buffer
	capacity int
	count    uint32
	Color    [4]float32
}

func NewLinePass(s *State, frameBGL *wgpu.BindGroupLayout) (*LinePass, error) {
	up, err := newUniformPass(s, "Line", 16, wgpu.ShaderStageFragment)
	if err != nil {
		return nil, err
	}
	up.Pipeline, err = newPassPipeline(s, "Line", shaders.LineWGSL,
		[]*wgpu.BindGroupLayout{frameBGL, up.BGL},
		[]wgpu.VertexBufferLayout{{
			ArrayStride: 12,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  []wgpu.VertexAttribute{{Format: wgpu.VertexFormatFloat32x3, ShaderLocation: 0}},
		}},
		wgpu.PrimitiveTopologyLineList, alphaBlend, false)
	if err != nil {
		return nil, err
	}
	return &LinePass{uniformPass: up, state: s, Color: [4]float32{1, 1, 1, 1}}, nil
}

func (p *LinePass) Draw(pass *wgpu.RenderPassEncoder, frameBG *wgpu.BindGroup, path []mgl32.Vec3) error {
	if len(path) < 2 {
		return nil
	}
	verts := core.LineLoop(path)
	if p.vertices == nil || p.capacity < len(verts) {
		if p.vertices != nil {
			p.vertices.Release()
		}
		p.capacity = len(verts) + 64
		buf, err := p.state.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "LineVertexBuffer",
			Size:  uint64(p.capacity * 12),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		p.vertices = buf
	}
	p.count = uint32(len(verts))
	p.state.Queue.WriteBuffer(p.vertices, 0, sliceBytes(verts))
	p.state.Queue.WriteBuffer(p.Uniforms, 0, asBytes(&p.Color))

	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, frameBG, nil)
	pass.SetBindGroup(1, p.BindGroup, nil)
	pass.SetVertexBuffer(0, p.vertices, 0, wgpu.WholeSize)
	pass.Draw(p.count, 1, 0, 0)
	return nil
}

func (p *LinePass) Release() {
	if p.vertices != nil {
		p.vertices.Release()
	}
	p.release()
}
