package wgpu_engine

import (
	"fmt"

	"honnef.co/go/prism/engine/wgpu_engine/shaders"
	"honnef.co/go/prism/renderer"
	"honnef.co/go/wgpu"
)

type effectPipeline struct {
	Layouts  []*wgpu.BindGroupLayout
	Pipeline *wgpu.RenderPipeline
	Sampler  *wgpu.Sampler
}

func (p *effectPipeline) Release() {
	p.Pipeline.Release()
	p.Sampler.Release()
	for _, l := range p.Layouts {
		l.Release()
	}
}

func bindGroupLayoutEntry(binding uint32, typ shaders.BindType) wgpu.BindGroupLayoutEntry {
	switch typ {
	case shaders.Uniform:
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: &wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: renderer.UniformSize,
			},
		}
	case shaders.Image:
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageFragment,
			Texture: &wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
				Multisampled:  false,
			},
		}
	case shaders.Sampler:
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageFragment,
			Sampler: &wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeFiltering,
			},
		}
	default:
		panic(fmt.Sprintf("unhandled bind type %d", typ))
	}
}

func newEffectPipeline(dev *wgpu.Device, sh shaders.RenderShader, format wgpu.TextureFormat) *effectPipeline {
	if len(sh.WGSL) == 0 {
		panic(fmt.Sprintf("shader %q has no code", sh.Name))
	}
	module := dev.CreateShaderModule(wgpu.ShaderModuleDescriptor{
		Label:  sh.Name,
		Source: wgpu.ShaderSourceWGSL(sh.WGSL),
	})
	defer module.Release()

	layouts := make([]*wgpu.BindGroupLayout, len(sh.BindGroups))
	for i, group := range sh.BindGroups {
		entries := make([]wgpu.BindGroupLayoutEntry, len(group))
		for j, typ := range group {
			entries[j] = bindGroupLayoutEntry(uint32(j), typ)
		}
		layouts[i] = dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s group %d", sh.Name, i),
			Entries: entries,
		})
	}

	pipelineLayout := dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            sh.Name + " pipeline layout",
		BindGroupLayouts: layouts,
	})
	defer pipelineLayout.Release()

	pipeline := dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  sh.Name + " pipeline",
		Layout: pipelineLayout,
		Vertex: &wgpu.VertexState{
			Module:     module,
			EntryPoint: sh.VertexEntry,
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: renderer.VertexStride,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: sh.FragmentEntry,
			Targets: []wgpu.ColorTargetState{
				{
					Format: format,
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							SrcFactor: wgpu.BlendFactorSrcAlpha,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
							Operation: wgpu.BlendOperationAdd,
						},
						Alpha: wgpu.BlendComponent{
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
							Operation: wgpu.BlendOperationAdd,
						},
					},
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: &wgpu.PrimitiveState{
			Topology:         wgpu.PrimitiveTopologyTriangleList,
			StripIndexFormat: ^wgpu.IndexFormat(0),
			FrontFace:        wgpu.FrontFaceCCW,
			CullMode:         wgpu.CullModeBack,
		},
		Multisample: &wgpu.MultisampleState{
			Count:                  1,
			Mask:                   ^uint32(0),
			AlphaToCoverageEnabled: false,
		},
	})

	sampler := dev.CreateSampler(samplerDescriptor(sh.Name + " sampler"))

	return &effectPipeline{
		Layouts:  layouts,
		Pipeline: pipeline,
		Sampler:  sampler,
	}
}

// samplerDescriptor describes the mirror-repeat sampler used for the image.
func samplerDescriptor(label string) *wgpu.SamplerDescriptor {
	return &wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  wgpu.AddressModeMirrorRepeat,
		AddressModeV:  wgpu.AddressModeMirrorRepeat,
		AddressModeW:  wgpu.AddressModeMirrorRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LODMinClamp:   0,
		LODMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

func imageFormatToWGPU(f renderer.ImageFormat) wgpu.TextureFormat {
	switch f {
	case renderer.Rgba8:
		return wgpu.TextureFormatRGBA8Unorm
	case renderer.Rgba8Srgb:
		return wgpu.TextureFormatRGBA8UnormSrgb
	case renderer.Bgra8:
		return wgpu.TextureFormatBGRA8Unorm
	default:
		panic(fmt.Sprintf("unhandled value %d", f))
	}
}
