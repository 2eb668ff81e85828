// Package gpu draws garden frames with WebGPU.
package gpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const DepthFormat = wgpu.TextureFormatDepth24Plus

// State is the device, queue and swapchain surface of one window.
type State struct {
	Instance *wgpu.Instance
	Surface  *wgpu.Surface
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Config   *wgpu.SurfaceConfiguration

	DepthTexture *wgpu.Texture
	DepthView    *wgpu.TextureView
}

// NewState wraps the GLFW window in a surface and configures it at the framebuffer size.
func NewState(window *glfw.Window) (*State, error) {
	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Garden Device",
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}

	width, height := window.GetFramebufferSize()
	caps := surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return nil, fmt.Errorf("surface has no supported formats")
	}

	s := &State{
		Instance: instance,
		Surface:  surface,
		Adapter:  adapter,
		Device:   device,
		Queue:    device.GetQueue(),
		Config: &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      preferredFormat(caps.Formats),
			Width:       uint32(max(width, 1)),
			Height:      uint32(max(height, 1)),
			PresentMode: wgpu.PresentModeFifo, // vsync
			AlphaMode:   caps.AlphaModes[0],
		},
	}
	surface.Configure(adapter, device, s.Config)
	if err := s.createDepth(); err != nil {
		return nil, err
	}
	return s, nil
}

// preferredFormat picks an sRGB swapchain format when the surface offers one.
func preferredFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8UnormSrgb || f == wgpu.TextureFormatRGBA8UnormSrgb {
			return f
		}
	}
	return formats[0]
}

func (s *State) createDepth() error {
	if s.DepthView != nil {
		s.DepthView.Release()
	}
	if s.DepthTexture != nil {
		s.DepthTexture.Release()
	}
	var err error
	s.DepthTexture, err = s.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth",
		Size:          wgpu.Extent3D{Width: s.Config.Width, Height: s.Config.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("depth texture: %w", err)
	}
	s.DepthView, err = s.DepthTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("depth view: %w", err)
	}
	return nil
}

// Resize reconfigures the swapchain. Zero sizes (minimized windows) are ignored.
func (s *State) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if s.Config.Width == uint32(width) && s.Config.Height == uint32(height) {
		return nil
	}
	s.Config.Width = uint32(width)
	s.Config.Height = uint32(height)
	s.Surface.Configure(s.Adapter, s.Device, s.Config)
	return s.createDepth()
}

func (s *State) Release() {
	if s.DepthView != nil {
		s.DepthView.Release()
	}
	if s.DepthTexture != nil {
		s.DepthTexture.Release()
	}
	s.Queue.Release()
	s.Device.Release()
	s.Adapter.Release()
	s.Surface.Release()
	s.Instance.Release()
}

func (s *State) createBuffer(label string, contents []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	return s.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: contents,
		Usage:    usage,
	})
}

func (s *State) createUniform(label string, size uint64) (*wgpu.Buffer, error) {
	return s.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
}

// asBytes reinterprets a fixed-size value as bytes for queue writes.
func asBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

func sliceBytes[T any](v []T) []byte {
	if len(v) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*int(unsafe.Sizeof(zero)))
}

func uniformLayout(device *wgpu.Device, label string, visibility wgpu.ShaderStage, minSize uint64) (*wgpu.BindGroupLayout, error) {
	return device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: visibility,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: minSize,
				},
			},
		},
	})
}

func depthState(write bool) *wgpu.DepthStencilState {
	return &wgpu.DepthStencilState{
		Format:            DepthFormat,
		DepthWriteEnabled: write,
		DepthCompare:      wgpu.CompareFunctionLess,
		StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		StencilReadMask:   0xFFFFFFFF,
		StencilWriteMask:  0xFFFFFFFF,
	}
}

var alphaBlend = &wgpu.BlendState{
	Color: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
	},
	Alpha: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
	},
}

var additiveBlend = &wgpu.BlendState{
	Color: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOne,
	},
	Alpha: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOne,
	},
}

var multisample = wgpu.MultisampleState{
	Count: 1,
	Mask:  0xFFFFFFFF,
}

func sizeOf[T any]() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}
