package pulse

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/oliverbestmann/postfx/render"
	"github.com/oliverbestmann/webgpu/wgpu"
)

// BlendStateAdditive adds the source onto the destination.
var BlendStateAdditive = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOne,
	},
	Alpha: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOne,
	},
}

// BlendState maps a render.Blending to its wgpu blend state.
func BlendState(blending render.Blending) wgpu.BlendState {
	switch blending {
	case render.BlendPremultiplied:
		return wgpu.BlendStatePremultipliedAlphaBlending
	case render.BlendAdditive:
		return BlendStateAdditive
	default:
		return wgpu.BlendStateReplace
	}
}

// CullMode maps the visible side of a material to the faces to cull.
func CullMode(side render.Side) wgpu.CullMode {
	switch side {
	case render.SideBack:
		return wgpu.CullModeFront
	case render.SideDouble:
		return wgpu.CullModeNone
	default:
		return wgpu.CullModeBack
	}
}

// targetLayout describes the attachments of a render pass. Pipelines must
// match the layout of the pass they are used in.
type targetLayout struct {
	ColorFormat wgpu.TextureFormat
	DepthFormat wgpu.TextureFormat
	SampleCount uint32
}

func (l targetLayout) depthStencil(depthWrite bool, compare wgpu.CompareFunction) *wgpu.DepthStencilState {
	if l.DepthFormat == wgpu.TextureFormatUndefined {
		return nil
	}

	writeEnabled := wgpu.OptionalBoolFalse
	if depthWrite {
		writeEnabled = wgpu.OptionalBoolTrue
	}

	return &wgpu.DepthStencilState{
		Format:            l.DepthFormat,
		DepthWriteEnabled: writeEnabled,
		DepthCompare:      compare,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
}

func (l targetLayout) fragment(shader *wgpu.ShaderModule, blending render.Blending, writeColor bool) *wgpu.FragmentState {
	state := &wgpu.FragmentState{
		Module:     shader,
		EntryPoint: "fs_main",
	}

	if l.ColorFormat == wgpu.TextureFormatUndefined {
		return state
	}

	writeMask := wgpu.ColorWriteMaskAll
	if !writeColor {
		writeMask = wgpu.ColorWriteMaskNone
	}

	blend := BlendState(blending)

	state.Targets = []wgpu.ColorTargetState{
		{
			Format:    l.ColorFormat,
			Blend:     &blend,
			WriteMask: writeMask,
		},
	}

	return state
}

// textureLayout marks bindings of a program that sample depth or a
// multisample texture, one bit per texture.
type textureLayout struct {
	Depth        uint32
	Multisampled uint32
}

func (l textureLayout) entry(binding uint32, idx int) wgpu.BindGroupLayoutEntry {
	sampleType := wgpu.TextureSampleTypeFloat
	if l.Depth&(1<<idx) != 0 {
		sampleType = wgpu.TextureSampleTypeDepth
	}

	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
		Texture: wgpu.TextureBindingLayout{
			SampleType:    sampleType,
			ViewDimension: wgpu.TextureViewDimension2D,
			Multisampled:  l.Multisampled&(1<<idx) != 0,
		},
	}
}

func createShader(dev *wgpu.Device, program *render.Program) (*wgpu.ShaderModule, error) {
	shader, err := dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:      program.Name,
		WGSLSource: &wgpu.ShaderSourceWGSL{Code: program.Source},
	})

	if err != nil {
		return nil, fmt.Errorf("compile shader %q: %w", program.Name, err)
	}

	return shader, nil
}

// createLayout creates a pipeline layout with a single bind group.
func createLayout(dev *wgpu.Device, label string, entries []wgpu.BindGroupLayoutEntry) (*wgpu.PipelineLayout, error) {
	bindGroupLayout, err := dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   label,
		Entries: entries,
	})

	if err != nil {
		return nil, fmt.Errorf("create bind group layout: %w", err)
	}

	defer bindGroupLayout.Release()

	layout, err := dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: []*wgpu.BindGroupLayout{bindGroupLayout},
	})

	if err != nil {
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}

	return layout, nil
}

// fullscreenPipelineConfig specializes a render.ProgramFullscreen program.
//
// Bindings: 0 sampler, 1 params (array<vec4f, 16>), 2+i Program.Textures[i]
type fullscreenPipelineConfig struct {
	Program    *render.Program
	Target     targetLayout
	Textures   textureLayout
	Blending   render.Blending
	DepthWrite bool
}

func (conf fullscreenPipelineConfig) Specialize(dev *wgpu.Device) (*wgpu.RenderPipeline, error) {
	slog.Info(
		"Create RenderPipeline for full screen pass",
		slog.String("program", conf.Program.Name),
		slog.Any("format", conf.Target.ColorFormat),
		slog.Any("sampleCount", conf.Target.SampleCount),
	)

	shader, err := createShader(dev, conf.Program)
	if err != nil {
		return nil, err
	}

	defer shader.Release()

	entries := []wgpu.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: wgpu.ShaderStageFragment,
			Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
		},
		{
			Binding:    1,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
		},
	}

	for idx := range conf.Program.Textures {
		entries = append(entries, conf.Textures.entry(uint32(2+idx), idx))
	}

	layout, err := createLayout(dev, conf.Program.Name, entries)
	if err != nil {
		return nil, err
	}

	defer layout.Release()

	return dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("Fullscreen.%s", conf.Program.Name),
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: conf.Target.fragment(shader, conf.Blending, !conf.DepthWrite),
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: conf.Target.depthStencil(conf.DepthWrite, wgpu.CompareFunctionAlways),
		Multisample: wgpu.MultisampleState{
			Count: conf.Target.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
}

// meshPipelineConfig specializes a render.ProgramMesh program.
//
// Bindings: 0 camera, 1 object, 2 sampler, 3+i Program.Textures[i]
type meshPipelineConfig struct {
	Program    *render.Program
	Target     targetLayout
	Textures   textureLayout
	Blending   render.Blending
	Side       render.Side
	DepthTest  bool
	DepthWrite bool
}

func (conf meshPipelineConfig) Specialize(dev *wgpu.Device) (*wgpu.RenderPipeline, error) {
	slog.Info(
		"Create RenderPipeline for meshes",
		slog.String("program", conf.Program.Name),
		slog.Any("format", conf.Target.ColorFormat),
		slog.Any("sampleCount", conf.Target.SampleCount),
	)

	shader, err := createShader(dev, conf.Program)
	if err != nil {
		return nil, err
	}

	defer shader.Release()

	entries := []wgpu.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
		},
		{
			Binding:    1,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
		},
		{
			Binding:    2,
			Visibility: wgpu.ShaderStageFragment,
			Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
		},
	}

	for idx := range conf.Program.Textures {
		entries = append(entries, conf.Textures.entry(uint32(3+idx), idx))
	}

	layout, err := createLayout(dev, conf.Program.Name, entries)
	if err != nil {
		return nil, err
	}

	defer layout.Release()

	compare := wgpu.CompareFunctionAlways
	if conf.DepthTest {
		compare = wgpu.CompareFunctionLessEqual
	}

	return dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("Mesh.%s", conf.Program.Name),
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					StepMode:    wgpu.VertexStepModeVertex,
					ArrayStride: uint64(unsafe.Sizeof(Vertex{})),
					Attributes: []wgpu.VertexAttribute{
						{
							Format:         wgpu.VertexFormatFloat32x3,
							Offset:         uint64(unsafe.Offsetof(Vertex{}.Position)),
							ShaderLocation: 0,
						},
						{
							Format:         wgpu.VertexFormatFloat32x3,
							Offset:         uint64(unsafe.Offsetof(Vertex{}.Normal)),
							ShaderLocation: 1,
						},
					},
				},
			},
		},
		Fragment: conf.Target.fragment(shader, conf.Blending, true),
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  CullMode(conf.Side),
		},
		DepthStencil: conf.Target.depthStencil(conf.DepthWrite, compare),
		Multisample: wgpu.MultisampleState{
			Count: conf.Target.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
}
