package webgpu

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

var textureFormatMap = map[backend.TextureFormat]wgpu.TextureFormat{
	backend.TextureFormatRGBA8Unorm:     wgpu.TextureFormatRGBA8Unorm,
	backend.TextureFormatRGBA8UnormSrgb: wgpu.TextureFormatRGBA8UnormSrgb,
	backend.TextureFormatBGRA8Unorm:     wgpu.TextureFormatBGRA8Unorm,
	backend.TextureFormatBGRA8UnormSrgb: wgpu.TextureFormatBGRA8UnormSrgb,
	backend.TextureFormatDepth32Float:   wgpu.TextureFormatDepth32Float,
}

var presentModeMap = map[backend.PresentMode]wgpu.PresentMode{
	backend.PresentModeFifo:      wgpu.PresentModeFifo,
	backend.PresentModeImmediate: wgpu.PresentModeImmediate,
	backend.PresentModeMailbox:   wgpu.PresentModeMailbox,
}

func toTextureFormat(f backend.TextureFormat) wgpu.TextureFormat {
	if v, ok := textureFormatMap[f]; ok {
		return v
	}
	return wgpu.TextureFormatUndefined
}

func fromTextureFormat(f wgpu.TextureFormat) (backend.TextureFormat, bool) {
	for k, v := range textureFormatMap {
		if v == f {
			return k, true
		}
	}
	return backend.TextureFormatUndefined, false
}

func fromPresentMode(m wgpu.PresentMode) (backend.PresentMode, bool) {
	for k, v := range presentModeMap {
		if v == m {
			return k, true
		}
	}
	return backend.PresentModeFifo, false
}

func toBufferUsage(u backend.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&backend.BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	if u&backend.BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	if u&backend.BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if u&backend.BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	return out
}

func toTextureUsage(u backend.TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u&backend.TextureUsageCopyDst != 0 {
		out |= wgpu.TextureUsageCopyDst
	}
	if u&backend.TextureUsageTextureBinding != 0 {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u&backend.TextureUsageRenderAttachment != 0 {
		out |= wgpu.TextureUsageRenderAttachment
	}
	return out
}

func toShaderStage(s backend.ShaderStage) wgpu.ShaderStage {
	var out wgpu.ShaderStage
	if s&backend.ShaderStageVertex != 0 {
		out |= wgpu.ShaderStageVertex
	}
	if s&backend.ShaderStageFragment != 0 {
		out |= wgpu.ShaderStageFragment
	}
	return out
}

func toFilterMode(f backend.FilterMode) wgpu.FilterMode {
	if f == backend.FilterModeLinear {
		return wgpu.FilterModeLinear
	}
	return wgpu.FilterModeNearest
}

func toMipmapFilterMode(f backend.FilterMode) wgpu.MipmapFilterMode {
	if f == backend.FilterModeLinear {
		return wgpu.MipmapFilterModeLinear
	}
	return wgpu.MipmapFilterModeNearest
}

func toAddressMode(a backend.AddressMode) wgpu.AddressMode {
	switch a {
	case backend.AddressModeRepeat:
		return wgpu.AddressModeRepeat
	case backend.AddressModeMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	}
	return wgpu.AddressModeClampToEdge
}

func toVertexFormat(f backend.VertexFormat) wgpu.VertexFormat {
	switch f {
	case backend.VertexFormatFloat32:
		return wgpu.VertexFormatFloat32
	case backend.VertexFormatFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case backend.VertexFormatFloat32x4:
		return wgpu.VertexFormatFloat32x4
	}
	return wgpu.VertexFormatFloat32x3
}

func toIndexFormat(f backend.IndexFormat) wgpu.IndexFormat {
	if f == backend.IndexFormatUint16 {
		return wgpu.IndexFormatUint16
	}
	return wgpu.IndexFormatUint32
}

func toTopology(t backend.PrimitiveTopology) wgpu.PrimitiveTopology {
	switch t {
	case backend.PrimitiveTopologyTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	case backend.PrimitiveTopologyLineList:
		return wgpu.PrimitiveTopologyLineList
	}
	return wgpu.PrimitiveTopologyTriangleList
}

func toCullMode(c backend.CullMode) wgpu.CullMode {
	switch c {
	case backend.CullModeFront:
		return wgpu.CullModeFront
	case backend.CullModeBack:
		return wgpu.CullModeBack
	}
	return wgpu.CullModeNone
}

func toFrontFace(f backend.FrontFace) wgpu.FrontFace {
	if f == backend.FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func toCompareFunction(c backend.CompareFunction) wgpu.CompareFunction {
	switch c {
	case backend.CompareFunctionLessEqual:
		return wgpu.CompareFunctionLessEqual
	case backend.CompareFunctionAlways:
		return wgpu.CompareFunctionAlways
	}
	return wgpu.CompareFunctionLess
}

// toLayoutEntry converts a backend layout entry into the wgpu form, filling in the
// sub-layout that matches the entry's binding kind.
func toLayoutEntry(e backend.BindGroupLayoutEntry) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    e.Binding,
		Visibility: toShaderStage(e.Visibility),
	}
	switch e.Kind {
	case backend.BindingKindUniform:
		entry.Buffer = wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeUniform,
			MinBindingSize: e.MinBindingSize,
		}
	case backend.BindingKindTexture:
		entry.Texture = wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeFloat,
			ViewDimension: wgpu.TextureViewDimension2D,
		}
	case backend.BindingKindSampler:
		entry.Sampler = wgpu.SamplerBindingLayout{
			Type: wgpu.SamplerBindingTypeFiltering,
		}
	}
	return entry
}
