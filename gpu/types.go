// Package gpu holds the backend-neutral vocabulary the engine records against:
// opaque handles, Vulkan-valued enums and the create-info structs passed to a Device.
//
// Enum values are the numeric values of the matching Vulkan enums so a backend
// converts them with a plain cast.
package gpu

// Opaque handles. The zero value is the null handle.
type (
	Surface             uint64
	Swapchain           uint64
	Image               uint64
	ImageView           uint64
	Buffer              uint64
	Memory              uint64
	Semaphore           uint64
	Fence               uint64
	CommandPool         uint64
	CommandBuffer       uint64
	DescriptorSetLayout uint64
	DescriptorPool      uint64
	DescriptorSet       uint64
	PipelineLayout      uint64
	Shader              uint64
)

// MaxTimeout waits forever.
const MaxTimeout = ^uint64(0)

// UndefinedExtent is the currentExtent sentinel meaning the surface size is
// decided by the swapchain.
const UndefinedExtent = ^uint32(0)

type Format uint32

const (
	FormatUndefined          Format = 0
	FormatR8G8B8A8Unorm      Format = 37
	FormatB8G8R8A8Unorm      Format = 44
	FormatB8G8R8A8Srgb       Format = 50
	FormatR32G32Sfloat       Format = 103
	FormatR32G32B32Sfloat    Format = 106
	FormatR32G32B32A32Sfloat Format = 109
	FormatD16Unorm           Format = 124
	FormatD32Sfloat          Format = 126
	FormatD24UnormS8Uint     Format = 129
	FormatD32SfloatS8Uint    Format = 130
)

// HasStencil reports whether a depth format carries a stencil aspect.
func (f Format) HasStencil() bool {
	return f == FormatD24UnormS8Uint || f == FormatD32SfloatS8Uint
}

type ColorSpace uint32

const ColorSpaceSrgbNonlinear ColorSpace = 0

type PresentMode uint32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFifo        PresentMode = 2
	PresentModeFifoRelaxed PresentMode = 3
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeImmediate:
		return "immediate"
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeFifo:
		return "fifo"
	case PresentModeFifoRelaxed:
		return "fifo-relaxed"
	}
	return "unknown"
}

type SurfaceTransform uint32

const (
	SurfaceTransformIdentity SurfaceTransform = 0x1
	SurfaceTransformRotate90 SurfaceTransform = 0x2
)

type CompositeAlpha uint32

const CompositeAlphaOpaque CompositeAlpha = 0x1

type ImageLayout uint32

const (
	ImageLayoutUndefined              ImageLayout = 0
	ImageLayoutGeneral                ImageLayout = 1
	ImageLayoutColorAttachmentOptimal ImageLayout = 2
	ImageLayoutTransferDstOptimal     ImageLayout = 7
	ImageLayoutDepthAttachmentOptimal ImageLayout = 1000241000
	ImageLayoutPresentSrc             ImageLayout = 1000001002
)

func (l ImageLayout) String() string {
	switch l {
	case ImageLayoutUndefined:
		return "undefined"
	case ImageLayoutGeneral:
		return "general"
	case ImageLayoutColorAttachmentOptimal:
		return "color-attachment-optimal"
	case ImageLayoutTransferDstOptimal:
		return "transfer-dst-optimal"
	case ImageLayoutDepthAttachmentOptimal:
		return "depth-attachment-optimal"
	case ImageLayoutPresentSrc:
		return "present-src"
	}
	return "unknown"
}

type ImageUsage uint32

const (
	ImageUsageTransferSrc            ImageUsage = 0x1
	ImageUsageTransferDst            ImageUsage = 0x2
	ImageUsageSampled                ImageUsage = 0x4
	ImageUsageColorAttachment        ImageUsage = 0x10
	ImageUsageDepthStencilAttachment ImageUsage = 0x20
)

type ImageAspect uint32

const (
	ImageAspectColor   ImageAspect = 0x1
	ImageAspectDepth   ImageAspect = 0x2
	ImageAspectStencil ImageAspect = 0x4
)

type BufferUsage uint32

const (
	BufferUsageTransferSrc   BufferUsage = 0x1
	BufferUsageTransferDst   BufferUsage = 0x2
	BufferUsageUniformBuffer BufferUsage = 0x10
	BufferUsageStorageBuffer BufferUsage = 0x20
	BufferUsageIndexBuffer   BufferUsage = 0x40
	BufferUsageVertexBuffer  BufferUsage = 0x80
)

type MemoryProperty uint32

const (
	MemoryPropertyDeviceLocal  MemoryProperty = 0x1
	MemoryPropertyHostVisible  MemoryProperty = 0x2
	MemoryPropertyHostCoherent MemoryProperty = 0x4
	MemoryPropertyHostCached   MemoryProperty = 0x8
)

type QueueFlags uint32

const (
	QueueGraphics      QueueFlags = 0x1
	QueueCompute       QueueFlags = 0x2
	QueueTransfer      QueueFlags = 0x4
	QueueSparseBinding QueueFlags = 0x8
)

// PipelineStage is a synchronization2 stage mask.
type PipelineStage uint64

const (
	PipelineStageNone                  PipelineStage = 0
	PipelineStageTopOfPipe             PipelineStage = 0x1
	PipelineStageVertexInput           PipelineStage = 0x4
	PipelineStageVertexShader          PipelineStage = 0x8
	PipelineStageEarlyFragmentTests    PipelineStage = 0x100
	PipelineStageLateFragmentTests     PipelineStage = 0x200
	PipelineStageColorAttachmentOutput PipelineStage = 0x400
	PipelineStageTransfer              PipelineStage = 0x1000
	PipelineStageBottomOfPipe          PipelineStage = 0x2000
	PipelineStageAllCommands           PipelineStage = 0x10000
)

// Access is a synchronization2 access mask.
type Access uint64

const (
	AccessNone                        Access = 0
	AccessIndexRead                   Access = 0x2
	AccessVertexAttributeRead         Access = 0x4
	AccessUniformRead                 Access = 0x8
	AccessColorAttachmentWrite        Access = 0x100
	AccessDepthStencilAttachmentRead  Access = 0x200
	AccessDepthStencilAttachmentWrite Access = 0x400
	AccessTransferRead                Access = 0x800
	AccessTransferWrite               Access = 0x1000
)

type ShaderStageFlags uint32

const (
	StageVertex                 ShaderStageFlags = 0x1
	StageTessellationControl    ShaderStageFlags = 0x2
	StageTessellationEvaluation ShaderStageFlags = 0x4
	StageGeometry               ShaderStageFlags = 0x8
	StageFragment               ShaderStageFlags = 0x10
	StageCompute                ShaderStageFlags = 0x20
	StageTask                   ShaderStageFlags = 0x40
	StageMesh                   ShaderStageFlags = 0x80
	StageRaygen                 ShaderStageFlags = 0x100
	StageAllGraphics            ShaderStageFlags = 0x1f
)

type DescriptorType uint32

const (
	DescriptorTypeSampler              DescriptorType = 0
	DescriptorTypeCombinedImageSampler DescriptorType = 1
	DescriptorTypeSampledImage         DescriptorType = 2
	DescriptorTypeStorageImage         DescriptorType = 3
	DescriptorTypeUniformBuffer        DescriptorType = 6
	DescriptorTypeStorageBuffer        DescriptorType = 7
)

type AttachmentLoadOp uint32

const (
	LoadOpLoad     AttachmentLoadOp = 0
	LoadOpClear    AttachmentLoadOp = 1
	LoadOpDontCare AttachmentLoadOp = 2
)

type AttachmentStoreOp uint32

const (
	StoreOpStore    AttachmentStoreOp = 0
	StoreOpDontCare AttachmentStoreOp = 1
)

type PrimitiveTopology uint32

const (
	TopologyPointList     PrimitiveTopology = 0
	TopologyLineList      PrimitiveTopology = 1
	TopologyTriangleList  PrimitiveTopology = 3
	TopologyTriangleStrip PrimitiveTopology = 4
)

type PolygonMode uint32

const (
	PolygonModeFill  PolygonMode = 0
	PolygonModeLine  PolygonMode = 1
	PolygonModePoint PolygonMode = 2
)

type CullMode uint32

const (
	CullModeNone  CullMode = 0
	CullModeFront CullMode = 0x1
	CullModeBack  CullMode = 0x2
)

type FrontFace uint32

const (
	FrontFaceCounterClockwise FrontFace = 0
	FrontFaceClockwise        FrontFace = 1
)

type CompareOp uint32

const (
	CompareOpNever          CompareOp = 0
	CompareOpLess           CompareOp = 1
	CompareOpEqual          CompareOp = 2
	CompareOpLessOrEqual    CompareOp = 3
	CompareOpGreater        CompareOp = 4
	CompareOpNotEqual       CompareOp = 5
	CompareOpGreaterOrEqual CompareOp = 6
	CompareOpAlways         CompareOp = 7
)

type SampleCount uint32

const SampleCount1 SampleCount = 0x1

type ColorComponent uint32

const (
	ColorComponentR    ColorComponent = 0x1
	ColorComponentG    ColorComponent = 0x2
	ColorComponentB    ColorComponent = 0x4
	ColorComponentA    ColorComponent = 0x8
	ColorComponentRGBA ColorComponent = 0xf
)

type BlendFactor uint32

const (
	BlendFactorZero             BlendFactor = 0
	BlendFactorOne              BlendFactor = 1
	BlendFactorSrcAlpha         BlendFactor = 6
	BlendFactorOneMinusSrcAlpha BlendFactor = 7
)

type BlendOp uint32

const BlendOpAdd BlendOp = 0

type IndexType uint32

const (
	IndexTypeUint16 IndexType = 0
	IndexTypeUint32 IndexType = 1
)

type VertexInputRate uint32

const (
	VertexInputRateVertex   VertexInputRate = 0
	VertexInputRateInstance VertexInputRate = 1
)

type DeviceType uint32

const (
	DeviceTypeOther         DeviceType = 0
	DeviceTypeIntegratedGPU DeviceType = 1
	DeviceTypeDiscreteGPU   DeviceType = 2
	DeviceTypeVirtualGPU    DeviceType = 3
	DeviceTypeCPU           DeviceType = 4
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeIntegratedGPU:
		return "integrated"
	case DeviceTypeDiscreteGPU:
		return "discrete"
	case DeviceTypeVirtualGPU:
		return "virtual"
	case DeviceTypeCPU:
		return "cpu"
	}
	return "other"
}

type Offset2D struct {
	X, Y int32
}

type Extent2D struct {
	Width, Height uint32
}

type Rect2D struct {
	Offset Offset2D
	Extent Extent2D
}

type Viewport struct {
	X, Y, Width, Height, MinDepth, MaxDepth float32
}

type DeviceProperties struct {
	Name          string
	Type          DeviceType
	APIVersion    uint32
	DriverVersion uint32
	VendorID      uint32
	DeviceID      uint32
}

type SurfaceCapabilities struct {
	MinImageCount       uint32
	MaxImageCount       uint32
	CurrentExtent       Extent2D
	MinImageExtent      Extent2D
	MaxImageExtent      Extent2D
	SupportedTransforms SurfaceTransform
	CurrentTransform    SurfaceTransform
	SupportedAlpha      CompositeAlpha
}

type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

type SwapchainInfo struct {
	Surface        Surface
	MinImageCount  uint32
	Format         Format
	ColorSpace     ColorSpace
	Extent         Extent2D
	Usage          ImageUsage
	PreTransform   SurfaceTransform
	CompositeAlpha CompositeAlpha
	PresentMode    PresentMode
	Clipped        bool
	OldSwapchain   Swapchain
}

type ImageInfo struct {
	Format Format
	Extent Extent2D
	Usage  ImageUsage
}

type ImageViewInfo struct {
	Image  Image
	Format Format
	Aspect ImageAspect
}

type MemoryRequirements struct {
	Size           uint64
	Alignment      uint64
	MemoryTypeBits uint32
}

type MemoryType struct {
	Flags     MemoryProperty
	HeapIndex uint32
}

type MemoryProperties struct {
	Types []MemoryType
	Heaps []uint64
}

type QueueFamily struct {
	Flags QueueFlags
	Count uint32
}

// SubmitInfo describes a single command buffer submission on the graphics queue.
// Zero handles are omitted from the submission.
type SubmitInfo struct {
	CommandBuffer CommandBuffer
	Wait          Semaphore
	WaitStage     PipelineStage
	Signal        Semaphore
	Fence         Fence
}

type ImageBarrier struct {
	Image     Image
	Aspect    ImageAspect
	OldLayout ImageLayout
	NewLayout ImageLayout
	SrcStage  PipelineStage
	DstStage  PipelineStage
	SrcAccess Access
	DstAccess Access
}

// BufferBarrier covers the whole buffer.
type BufferBarrier struct {
	Buffer    Buffer
	SrcStage  PipelineStage
	DstStage  PipelineStage
	SrcAccess Access
	DstAccess Access
}

type ClearValue struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32
}

type RenderingAttachment struct {
	View    ImageView
	Layout  ImageLayout
	LoadOp  AttachmentLoadOp
	StoreOp AttachmentStoreOp
	Clear   ClearValue
}

type RenderingInfo struct {
	Area  Rect2D
	Color []RenderingAttachment
	Depth *RenderingAttachment
}

type DescriptorBinding struct {
	Binding uint32
	Type    DescriptorType
	Count   uint32
	Stages  ShaderStageFlags
}

type DescriptorPoolSize struct {
	Type  DescriptorType
	Count uint32
}

type ShaderInfo struct {
	Stage      ShaderStageFlags
	NextStage  ShaderStageFlags
	Code       []byte
	EntryPoint string
	SetLayouts []DescriptorSetLayout
}

type VertexBinding struct {
	Binding   uint32
	Stride    uint32
	InputRate VertexInputRate
}

type VertexAttribute struct {
	Location uint32
	Binding  uint32
	Format   Format
	Offset   uint32
}

type ColorBlendEquation struct {
	SrcColor BlendFactor
	DstColor BlendFactor
	ColorOp  BlendOp
	SrcAlpha BlendFactor
	DstAlpha BlendFactor
	AlphaOp  BlendOp
}
