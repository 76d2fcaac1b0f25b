package backend

// TextureFormat identifies the texel format of a texture or surface.
type TextureFormat int

const (
	TextureFormatUndefined TextureFormat = iota
	TextureFormatRGBA8Unorm
	TextureFormatRGBA8UnormSrgb
	TextureFormatBGRA8Unorm
	TextureFormatBGRA8UnormSrgb
	TextureFormatDepth32Float
)

var textureFormatNames = map[TextureFormat]string{
	TextureFormatUndefined:      "undefined",
	TextureFormatRGBA8Unorm:     "rgba8unorm",
	TextureFormatRGBA8UnormSrgb: "rgba8unorm-srgb",
	TextureFormatBGRA8Unorm:     "bgra8unorm",
	TextureFormatBGRA8UnormSrgb: "bgra8unorm-srgb",
	TextureFormatDepth32Float:   "depth32float",
}

func (f TextureFormat) String() string {
	if n, ok := textureFormatNames[f]; ok {
		return n
	}
	return "unknown"
}

// IsSrgb reports whether the format applies sRGB encoding on write.
func (f TextureFormat) IsSrgb() bool {
	return f == TextureFormatRGBA8UnormSrgb || f == TextureFormatBGRA8UnormSrgb
}

// IsDepth reports whether the format is a depth format.
func (f TextureFormat) IsDepth() bool {
	return f == TextureFormatDepth32Float
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeFifo waits for the next vertical blank before presenting. Always supported.
	PresentModeFifo PresentMode = iota

	// PresentModeImmediate presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeImmediate

	// PresentModeMailbox replaces the queued frame with the newest one without tearing.
	PresentModeMailbox
)

// BufferUsage is a bit set describing how a buffer is used.
type BufferUsage uint32

const (
	BufferUsageCopyDst BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageVertex
	BufferUsageUniform
)

// TextureUsage is a bit set describing how a texture is used.
type TextureUsage uint32

const (
	TextureUsageCopyDst TextureUsage = 1 << iota
	TextureUsageTextureBinding
	TextureUsageRenderAttachment
)

// ShaderStage is a bit set of programmable pipeline stages.
type ShaderStage uint32

const (
	ShaderStageVertex ShaderStage = 1 << iota
	ShaderStageFragment
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageFragment:
		return "fragment"
	case ShaderStageVertex | ShaderStageFragment:
		return "vertex|fragment"
	}
	return "none"
}

// BindingKind identifies the resource category held by a bind group entry.
type BindingKind int

const (
	BindingKindUniform BindingKind = iota
	BindingKindTexture
	BindingKindSampler
)

func (k BindingKind) String() string {
	switch k {
	case BindingKindUniform:
		return "uniform"
	case BindingKindTexture:
		return "texture"
	case BindingKindSampler:
		return "sampler"
	}
	return "unknown"
}

// FilterMode selects texel filtering for magnification, minification and mipmap selection.
type FilterMode int

const (
	FilterModeNearest FilterMode = iota
	FilterModeLinear
)

// AddressMode selects how texture coordinates outside [0, 1] are resolved.
type AddressMode int

const (
	AddressModeClampToEdge AddressMode = iota
	AddressModeRepeat
	AddressModeMirrorRepeat
)

// VertexFormat identifies the type of a single vertex attribute.
type VertexFormat int

const (
	VertexFormatFloat32 VertexFormat = iota
	VertexFormatFloat32x2
	VertexFormatFloat32x3
	VertexFormatFloat32x4
)

// Size returns the attribute size in bytes.
func (f VertexFormat) Size() uint64 {
	switch f {
	case VertexFormatFloat32:
		return 4
	case VertexFormatFloat32x2:
		return 8
	case VertexFormatFloat32x3:
		return 12
	case VertexFormatFloat32x4:
		return 16
	}
	return 0
}

// IndexFormat identifies the element type of an index buffer.
type IndexFormat int

const (
	IndexFormatUint32 IndexFormat = iota
	IndexFormatUint16
)

// PrimitiveTopology selects how vertices are assembled into primitives.
type PrimitiveTopology int

const (
	PrimitiveTopologyTriangleList PrimitiveTopology = iota
	PrimitiveTopologyTriangleStrip
	PrimitiveTopologyLineList
)

// CullMode selects which faces are discarded by the rasterizer.
type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// FrontFace selects the winding order of front-facing triangles.
type FrontFace int

const (
	FrontFaceCCW FrontFace = iota
	FrontFaceCW
)

// CompareFunction is the depth comparison applied to incoming fragments.
type CompareFunction int

const (
	CompareFunctionLess CompareFunction = iota
	CompareFunctionLessEqual
	CompareFunctionAlways
)

// Color is a linear RGBA clear color.
type Color struct {
	R, G, B, A float64
}

// SurfaceCapabilities lists what the presentable surface supports on the selected adapter.
type SurfaceCapabilities struct {
	Formats      []TextureFormat
	PresentModes []PresentMode
}

// SurfaceConfiguration is the size, format and presentation mode the surface is configured with.
type SurfaceConfiguration struct {
	Format      TextureFormat
	Width       uint32
	Height      uint32
	PresentMode PresentMode
}

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

// TextureDescriptor describes a single-mip 2D texture to create.
type TextureDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
	Format TextureFormat
	Usage  TextureUsage
}

// SamplerDescriptor describes a sampler to create.
type SamplerDescriptor struct {
	Label                                    string
	AddressModeU, AddressModeV, AddressModeW AddressMode
	MagFilter, MinFilter, MipmapFilter       FilterMode
	LodMinClamp, LodMaxClamp                 float32
	MaxAnisotropy                            uint16
}

// ShaderModuleDescriptor describes a WGSL shader module to compile.
type ShaderModuleDescriptor struct {
	Label string
	Code  string
}

// BindGroupLayoutEntry describes one binding within a bind group layout.
type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility ShaderStage
	Kind       BindingKind

	// MinBindingSize is the minimum buffer size for uniform bindings, 0 otherwise.
	MinBindingSize uint64
}

// BindGroupLayoutDescriptor describes a bind group layout to create.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupEntry binds one resource to a binding index. Exactly one of Buffer, TextureView
// or Sampler is set.
type BindGroupEntry struct {
	Binding     uint32
	Buffer      Buffer
	TextureView TextureView
	Sampler     Sampler
}

// BindGroupDescriptor describes a bind group to create.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// VertexAttribute describes one attribute within a vertex buffer record.
type VertexAttribute struct {
	Format         VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

// VertexBufferLayout describes the record layout of one vertex buffer slot.
type VertexBufferLayout struct {
	ArrayStride uint64
	Attributes  []VertexAttribute
}

// RenderPipelineDescriptor describes a render pipeline with one color target and a depth attachment.
type RenderPipelineDescriptor struct {
	Label            string
	BindGroupLayouts []BindGroupLayout

	Module             ShaderModule
	VertexEntryPoint   string
	FragmentEntryPoint string
	VertexBuffers      []VertexBufferLayout

	Topology  PrimitiveTopology
	FrontFace FrontFace
	CullMode  CullMode

	ColorFormat       TextureFormat
	DepthFormat       TextureFormat
	DepthWriteEnabled bool
	DepthCompare      CompareFunction
}

// RenderPassDescriptor describes a render pass over the acquired frame and a depth attachment.
// The color attachment is always the acquired surface texture, cleared to ClearColor.
type RenderPassDescriptor struct {
	Label           string
	ClearColor      Color
	DepthView       TextureView
	DepthClearValue float32
}
