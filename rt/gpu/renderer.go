package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	garden "github.com/gekko3d/garden"
	"github.com/gekko3d/garden/rt/asset"
	"github.com/gekko3d/garden/rt/core"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

type TextureSource interface {
	Image(ref core.TextureRef) (*asset.Image, bool)
}

// FrameUniforms matches the WGSL Frame block in frame.wgsl
type FrameUniforms struct {
	ViewProj  mgl32.Mat4
	View      mgl32.Mat4
	CameraPos [4]float32
	FogColor  [4]float32
	Params    [4]float32 // fog near, fog far, viewport width, viewport height
}

// Renderer draws FrameSnapshots into a GLFW window: clear, meshes, water, fireflies, path.
type Renderer struct {
	State *State

	frameBGL *wgpu.BindGroupLayout
	frameBuf *wgpu.Buffer
	frameBG  *wgpu.BindGroup

	meshes    *MeshPass
	water     *WaterPass
	fireflies *FirefliesPass
	lines     *LinePass

	resizeErr error
}

func NewRenderer(window *glfw.Window) (*Renderer, error) {
	s, err := NewState(window)
	if err != nil {
		return nil, err
	}
	r := &Renderer{State: s}

	frameSize := uint64(sizeOf[FrameUniforms]())
	if r.frameBGL, err = uniformLayout(s.Device, "FrameBGL", wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, frameSize); err != nil {
		return nil, err
	}
	if r.frameBuf, err = s.createUniform("FrameUniforms", frameSize); err != nil {
		return nil, err
	}
	r.frameBG, err = s.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "FrameBG",
		Layout:  r.frameBGL,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: r.frameBuf, Size: wgpu.WholeSize}},
	})
	if err != nil {
		return nil, err
	}

	if r.meshes, err = NewMeshPass(s, r.frameBGL); err != nil {
		return nil, fmt.Errorf("mesh pass: %w", err)
	}
	if r.water, err = NewWaterPass(s, r.frameBGL); err != nil {
		return nil, fmt.Errorf("water pass: %w", err)
	}
	if r.fireflies, err = NewFirefliesPass(s, r.frameBGL); err != nil {
		return nil, fmt.Errorf("fireflies pass: %w", err)
	}
	if r.lines, err = NewLinePass(s, r.frameBGL); err != nil {
		return nil, fmt.Errorf("line pass: %w", err)
	}
	return r, nil
}

func (r *Renderer) Name() string { return "wgpu" }

func (r *Renderer) Resize(width, height int) {
	// reported by the next Render
	r.resizeErr = r.State.Resize(width, height)
}

func (r *Renderer) Render(frame *garden.FrameSnapshot) error {
	if r.resizeErr != nil {
		return fmt.Errorf("resize: %w", r.resizeErr)
	}
	s := r.State
	next, err := s.Surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquire surface texture: %w", err)
	}
	defer next.Release()

	view, err := next.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create view: %w", err)
	}
	defer view.Release()

	fu := FrameUniforms{
		ViewProj:  frame.Projection.Mul4(frame.View),
		View:      frame.View,
		CameraPos: [4]float32{frame.CameraPosition.X(), frame.CameraPosition.Y(), frame.CameraPosition.Z(), 1},
		FogColor:  frame.Fog.Color,
		Params:    [4]float32{frame.Fog.Near, frame.Fog.Far, float32(s.Config.Width), float32(s.Config.Height)},
	}
	s.Queue.WriteBuffer(r.frameBuf, 0, asBytes(&fu))

	encoder, err := s.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}

	cc := frame.ClearColor
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            s.DepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		},
	})

	var src TextureSource
	if frame.Textures != nil {
		src = frame.Textures
	}
	drawErr := r.meshes.Draw(pass, r.frameBG, frame.Items, src)
	if drawErr == nil {
		drawErr = r.water.Draw(pass, r.frameBG, frame.WaterMesh, WaterObject{
			Model:  frame.WaterModel,
			Color1: frame.Water.Color1,
			Color2: frame.Water.Color2,
			Time:   frame.Water.Time,
		})
	}
	if drawErr == nil {
		drawErr = r.fireflies.Draw(pass, r.frameBG, frame.FireflyInstances, FireflyParams{
			Time:       frame.Fireflies.Time,
			PixelRatio: frame.Fireflies.PixelRatio,
			Size:       frame.Fireflies.Size,
		})
	}
	if drawErr == nil && frame.Path != nil {
		drawErr = r.lines.Draw(pass, r.frameBG, frame.Path)
	}

	if err := pass.End(); err != nil {
		return fmt.Errorf("end render pass: %w", err)
	}
	if drawErr != nil {
		return drawErr
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}
	s.Queue.Submit(cmd)
	s.Surface.Present()
	return nil
}

func (r *Renderer) Release() {
	r.lines.Release()
	r.fireflies.Release()
	r.water.Release()
	r.meshes.Release()
	r.frameBG.Release()
	r.frameBuf.Release()
	r.frameBGL.Release()
	r.State.Release()
}

var _ garden.Renderer = (*Renderer)(nil)
