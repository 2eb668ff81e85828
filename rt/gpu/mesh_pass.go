package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/garden/rt/asset"
	"github.com/gekko3d/garden/rt/core"
	"github.com/gekko3d/garden/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

// ObjectUniforms matches the WGSL Object block in mesh.wgsl
type ObjectUniforms struct {
	Model  mgl32.Mat4
	Color  [4]float32
	Params [4]float32 // matcap, textured, opacity
}

// gpuMesh holds one MeshData uploaded as separate attribute streams.
type gpuMesh struct {
	positions *wgpu.Buffer
	normals   *wgpu.Buffer
	uvs       *wgpu.Buffer
	indices   *wgpu.Buffer
	count     uint32
}

func (m *gpuMesh) release() {
	m.positions.Release()
	m.normals.Release()
	m.uvs.Release()
	m.indices.Release()
}

func uploadMesh(s *State, label string, md *core.MeshData) (*gpuMesh, error) {
	n := len(md.Positions)
	normals := md.Normals
	if len(normals) != n {
		normals = make([][3]float32, n)
		for i := range normals {
			normals[i] = [3]float32{0, 0, 1}
		}
	}
	uvs := md.UVs
	if len(uvs) != n {
		uvs = make([][2]float32, n)
	}

	m := &gpuMesh{count: uint32(len(md.Indices))}
	var err error
	if m.positions, err = s.createBuffer(label+" Positions", sliceBytes(md.Positions), wgpu.BufferUsageVertex); err != nil {
		return nil, err
	}
	if m.normals, err = s.createBuffer(label+" Normals", sliceBytes(normals), wgpu.BufferUsageVertex); err != nil {
		return nil, err
	}
	if m.uvs, err = s.createBuffer(label+" UVs", sliceBytes(uvs), wgpu.BufferUsageVertex); err != nil {
		return nil, err
	}
	if m.indices, err = s.createBuffer(label+" Indices", sliceBytes(md.Indices), wgpu.BufferUsageIndex); err != nil {
		return nil, err
	}
	return m, nil
}

type gpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func uploadTexture(s *State, label string, img *asset.Image) (*gpuTexture, error) {
	extent := wgpu.Extent3D{Width: img.Width, Height: img.Height, DepthOrArrayLayers: 1}
	tex, err := s.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormat(img.Format),
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	err = s.Queue.WriteTexture(tex.AsImageCopy(), img.Texels, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  img.Width * 4,
		RowsPerImage: img.Height,
	}, &extent)
	if err != nil {
		return nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		return nil, err
	}
	return &gpuTexture{texture: tex, view: view}, nil
}

// meshObject is the per-node uniform buffer and the bind group that pairs it with a texture.
type meshObject struct {
	uniforms  *wgpu.Buffer
	bindGroup *wgpu.BindGroup
	texture   core.TextureRef
}

// MeshPass draws the scene graph's meshes with basic, textured and matcap materials.
type MeshPass struct {
	Pipeline    *wgpu.RenderPipeline
	ObjectBGL   *wgpu.BindGroupLayout
	Sampler     *wgpu.Sampler
	state       *State
	white       *gpuTexture
	meshes      map[*core.MeshData]*gpuMesh
	textures    map[core.TextureRef]*gpuTexture
	objects     map[*core.Node]*meshObject
	transparent []core.DrawItem
}

func NewMeshPass(s *State, frameBGL *wgpu.BindGroupLayout) (*MeshPass, error) {
	module, err := s.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "MeshShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.WithFrame(shaders.MeshWGSL)},
	})
	if err != nil {
		return nil, err
	}
	defer module.Release()

	objectBGL, err := s.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "MeshObjectBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(sizeOf[ObjectUniforms]()),
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	layout, err := s.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "MeshPipelineLayout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{frameBGL, objectBGL},
	})
	if err != nil {
		return nil, err
	}
	defer layout.Release()

	pipeline, err := s.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "MeshPipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: 12,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes:  []wgpu.VertexAttribute{{Format: wgpu.VertexFormatFloat32x3, ShaderLocation: 0}},
				},
				{
					ArrayStride: 12,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes:  []wgpu.VertexAttribute{{Format: wgpu.VertexFormatFloat32x3, ShaderLocation: 1}},
				},
				{
					ArrayStride: 8,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes:  []wgpu.VertexAttribute{{Format: wgpu.VertexFormatFloat32x2, ShaderLocation: 2}},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    s.Config.Format,
					Blend:     alphaBlend,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			// imported models and the floor are single sided but seen from both faces
			CullMode: wgpu.CullModeNone,
		},
		DepthStencil: depthState(true),
		Multisample:  multisample,
	})
	if err != nil {
		return nil, err
	}

	sampler, err := s.Device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, err
	}

	white, err := uploadTexture(s, "White", &asset.Image{
		Width: 1, Height: 1, Format: asset.TextureFormatRGBA8Unorm, Texels: []uint8{255, 255, 255, 255},
	})
	if err != nil {
		return nil, err
	}

	return &MeshPass{
		Pipeline:  pipeline,
		ObjectBGL: objectBGL,
		Sampler:   sampler,
		state:     s,
		white:     white,
		meshes:    make(map[*core.MeshData]*gpuMesh),
		textures:  make(map[core.TextureRef]*gpuTexture),
		objects:   make(map[*core.Node]*meshObject),
	}, nil
}

func (p *MeshPass) mesh(node *core.Node) (*gpuMesh, error) {
	if m, ok := p.meshes[node.Mesh]; ok {
		return m, nil
	}
	m, err := uploadMesh(p.state, node.Name, node.Mesh)
	if err != nil {
		return nil, fmt.Errorf("upload mesh %q: %w", node.Name, err)
	}
	p.meshes[node.Mesh] = m
	return m, nil
}

// texture uploads ref on first use. Refs that are not decoded yet sample white.
func (p *MeshPass) texture(ref core.TextureRef, src TextureSource) *gpuTexture {
	if ref == "" || src == nil {
		return p.white
	}
	if t, ok := p.textures[ref]; ok {
		return t
	}
	img, ok := src.Image(ref)
	if !ok {
		return p.white
	}
	t, err := uploadTexture(p.state, string(ref), img)
	if err != nil {
		return p.white
	}
	p.textures[ref] = t
	return t
}

func (p *MeshPass) object(node *core.Node, mat core.Material, src TextureSource) (*meshObject, error) {
	obj, ok := p.objects[node]
	if !ok {
		buf, err := p.state.createUniform(node.Name+" Object", uint64(sizeOf[ObjectUniforms]()))
		if err != nil {
			return nil, err
		}
		obj = &meshObject{uniforms: buf}
		p.objects[node] = obj
	}

	tex := p.texture(mat.Texture, src)
	ref := mat.Texture
	if tex == p.white {
		ref = ""
	}
	if obj.bindGroup == nil || obj.texture != ref {
		if obj.bindGroup != nil {
			obj.bindGroup.Release()
		}
		bg, err := p.state.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  node.Name + " ObjectBG",
			Layout: p.ObjectBGL,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: obj.uniforms, Size: wgpu.WholeSize},
				{Binding: 1, TextureView: tex.view},
				{Binding: 2, Sampler: p.Sampler},
			},
		})
		if err != nil {
			return nil, err
		}
		obj.bindGroup = bg
		obj.texture = ref
	}
	return obj, nil
}

func objectUniforms(item core.DrawItem, mat core.Material, textured bool) ObjectUniforms {
	u := ObjectUniforms{
		Model: item.Model,
		Color: mat.BaseColor,
	}
	if mat.Kind == core.MaterialMatcap {
		u.Params[0] = 1
	}
	if textured {
		u.Params[1] = 1
	}
	u.Params[2] = mat.Opacity
	if u.Params[2] == 0 && !mat.Transparent {
		u.Params[2] = 1
	}
	return u
}

// Draw issues opaque items first and transparent items after them.
func (p *MeshPass) Draw(pass *wgpu.RenderPassEncoder, frameBG *wgpu.BindGroup, items []core.DrawItem, src TextureSource) error {
	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, frameBG, nil)

	p.transparent = p.transparent[:0]
	for _, item := range items {
		mat := core.DefaultMaterial()
		if item.Node.Material != nil {
			mat = *item.Node.Material
		}
		if mat.Transparent {
			p.transparent = append(p.transparent, item)
			continue
		}
		if err := p.drawItem(pass, item, mat, src); err != nil {
			return err
		}
	}
	for _, item := range p.transparent {
		if err := p.drawItem(pass, item, *item.Node.Material, src); err != nil {
			return err
		}
	}
	return nil
}

func (p *MeshPass) drawItem(pass *wgpu.RenderPassEncoder, item core.DrawItem, mat core.Material, src TextureSource) error {
	if len(item.Node.Mesh.Indices) == 0 {
		return nil
	}
	m, err := p.mesh(item.Node)
	if err != nil {
		return err
	}
	obj, err := p.object(item.Node, mat, src)
	if err != nil {
		return err
	}
	u := objectUniforms(item, mat, obj.texture != "")
	p.state.Queue.WriteBuffer(obj.uniforms, 0, asBytes(&u))

	pass.SetBindGroup(1, obj.bindGroup, nil)
	pass.SetVertexBuffer(0, m.positions, 0, wgpu.WholeSize)
	pass.SetVertexBuffer(1, m.normals, 0, wgpu.WholeSize)
	pass.SetVertexBuffer(2, m.uvs, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(m.indices, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(m.count, 1, 0, 0, 0)
	return nil
}

func (p *MeshPass) Release() {
	for _, m := range p.meshes {
		m.release()
	}
	for _, t := range p.textures {
		t.view.Release()
		t.texture.Release()
	}
	for _, o := range p.objects {
		if o.bindGroup != nil {
			o.bindGroup.Release()
		}
		o.uniforms.Release()
	}
	p.white.view.Release()
	p.white.texture.Release()
	p.Sampler.Release()
	p.Pipeline.Release()
	p.ObjectBGL.Release()
}
