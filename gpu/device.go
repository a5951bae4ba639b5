package gpu

import (
	"unsafe"

	"github.com/pkg/errors"
)

var (
	// ErrOutOfDate is returned by AcquireNextImage and Present when the swapchain
	// no longer matches its surface and must be recreated.
	ErrOutOfDate = errors.New("swapchain out of date")
	// ErrSuboptimal is returned alongside a valid image index when the swapchain
	// still works but no longer matches the surface exactly.
	ErrSuboptimal = errors.New("swapchain suboptimal")
	// ErrDeviceLost reports an unrecoverable device failure.
	ErrDeviceLost = errors.New("device lost")
)

// Window is anything a presentable surface can be created from. *glfw.Window
// satisfies it.
type Window interface {
	CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (uintptr, error)
}

// ObjectKind names a class of device objects counted by LiveObjects.
type ObjectKind string

const (
	KindSurface             ObjectKind = "surface"
	KindSwapchain           ObjectKind = "swapchain"
	KindImage               ObjectKind = "image"
	KindImageView           ObjectKind = "image_view"
	KindBuffer              ObjectKind = "buffer"
	KindMemory              ObjectKind = "memory"
	KindSemaphore           ObjectKind = "semaphore"
	KindFence               ObjectKind = "fence"
	KindCommandPool         ObjectKind = "command_pool"
	KindDescriptorSetLayout ObjectKind = "descriptor_set_layout"
	KindDescriptorPool      ObjectKind = "descriptor_pool"
	KindPipelineLayout      ObjectKind = "pipeline_layout"
	KindShader              ObjectKind = "shader"
)

// Device is the device context the engine drives: one logical device, its
// graphics queue and the loaders for surface, swapchain and shader objects.
// Implementations are not safe for concurrent use.
type Device interface {
	Properties() DeviceProperties
	QueueFamilies() QueueFamilyIndices
	MemoryProperties() MemoryProperties
	// SupportsDepthFormat reports whether f can back an optimal-tiling depth attachment.
	SupportsDepthFormat(f Format) bool

	CreateSurface(w Window) (Surface, error)
	DestroySurface(s Surface)
	// SurfaceSupport reports whether queue family can present to s.
	SurfaceSupport(s Surface, family uint32) (bool, error)
	SurfaceCapabilities(s Surface) (SurfaceCapabilities, error)
	SurfaceFormats(s Surface) ([]SurfaceFormat, error)
	SurfacePresentModes(s Surface) ([]PresentMode, error)

	CreateSwapchain(info SwapchainInfo) (Swapchain, error)
	DestroySwapchain(sc Swapchain)
	SwapchainImages(sc Swapchain) ([]Image, error)
	// AcquireNextImage returns ErrSuboptimal together with a usable index, and
	// ErrOutOfDate when no image could be acquired.
	AcquireNextImage(sc Swapchain, signal Semaphore) (uint32, error)
	Present(sc Swapchain, imageIndex uint32, wait Semaphore) error

	CreateImage(info ImageInfo) (Image, error)
	DestroyImage(img Image)
	ImageMemoryRequirements(img Image) MemoryRequirements
	BindImageMemory(img Image, mem Memory) error
	CreateImageView(info ImageViewInfo) (ImageView, error)
	DestroyImageView(v ImageView)

	CreateBuffer(size uint64, usage BufferUsage) (Buffer, error)
	DestroyBuffer(b Buffer)
	BufferMemoryRequirements(b Buffer) MemoryRequirements
	BindBufferMemory(b Buffer, mem Memory) error
	AllocateMemory(size uint64, memoryType uint32) (Memory, error)
	FreeMemory(mem Memory)
	// WriteMemory maps host-visible memory, copies data at offset and unmaps it.
	WriteMemory(mem Memory, offset uint64, data []byte) error

	CreateSemaphore() (Semaphore, error)
	DestroySemaphore(s Semaphore)
	CreateFence(signaled bool) (Fence, error)
	DestroyFence(f Fence)
	WaitFence(f Fence, timeout uint64) error
	ResetFence(f Fence) error
	WaitIdle() error
	QueueWaitIdle() error

	// CreateCommandPool creates a pool whose buffers can be reset individually.
	CreateCommandPool(queueFamily uint32) (CommandPool, error)
	DestroyCommandPool(p CommandPool)
	AllocateCommandBuffers(p CommandPool, count int) ([]CommandBuffer, error)
	BeginCommandBuffer(cmd CommandBuffer, oneTime bool) error
	EndCommandBuffer(cmd CommandBuffer) error
	ResetCommandBuffer(cmd CommandBuffer) error
	Submit(info SubmitInfo) error

	CreateDescriptorSetLayout(bindings []DescriptorBinding) (DescriptorSetLayout, error)
	DestroyDescriptorSetLayout(l DescriptorSetLayout)
	CreateDescriptorPool(maxSets uint32, sizes []DescriptorPoolSize) (DescriptorPool, error)
	DestroyDescriptorPool(p DescriptorPool)
	AllocateDescriptorSet(p DescriptorPool, l DescriptorSetLayout) (DescriptorSet, error)
	WriteBufferDescriptor(set DescriptorSet, binding uint32, typ DescriptorType, buf Buffer, offset, size uint64)
	CreatePipelineLayout(layouts []DescriptorSetLayout) (PipelineLayout, error)
	DestroyPipelineLayout(l PipelineLayout)

	CreateShader(info ShaderInfo) (Shader, error)
	DestroyShader(s Shader)

	Recorder

	// LiveObjects counts objects created through this device and not yet destroyed.
	LiveObjects() map[ObjectKind]int
	Destroy()
}

// Recorder records commands into a command buffer between BeginCommandBuffer
// and EndCommandBuffer. State setters apply to shader-object draws.
type Recorder interface {
	CmdPipelineBarrier(cmd CommandBuffer, barriers ...ImageBarrier)
	CmdBufferBarrier(cmd CommandBuffer, barriers ...BufferBarrier)
	CmdBeginRendering(cmd CommandBuffer, info RenderingInfo)
	CmdEndRendering(cmd CommandBuffer)
	CmdCopyBuffer(cmd CommandBuffer, src, dst Buffer, size uint64)

	CmdBindVertexBuffer(cmd CommandBuffer, binding uint32, buf Buffer, offset uint64)
	CmdBindIndexBuffer(cmd CommandBuffer, buf Buffer, offset uint64, typ IndexType)
	CmdBindDescriptorSets(cmd CommandBuffer, layout PipelineLayout, firstSet uint32, sets ...DescriptorSet)
	CmdBindShaders(cmd CommandBuffer, stages []ShaderStageFlags, shaders []Shader)

	CmdSetViewport(cmd CommandBuffer, viewports ...Viewport)
	CmdSetScissor(cmd CommandBuffer, scissors ...Rect2D)
	CmdSetRasterizerDiscardEnable(cmd CommandBuffer, enable bool)
	CmdSetVertexInput(cmd CommandBuffer, bindings []VertexBinding, attributes []VertexAttribute)
	CmdSetPrimitiveTopology(cmd CommandBuffer, topology PrimitiveTopology)
	CmdSetPrimitiveRestartEnable(cmd CommandBuffer, enable bool)
	CmdSetRasterizationSamples(cmd CommandBuffer, samples SampleCount)
	CmdSetSampleMask(cmd CommandBuffer, samples SampleCount, mask uint32)
	CmdSetAlphaToCoverageEnable(cmd CommandBuffer, enable bool)
	CmdSetPolygonMode(cmd CommandBuffer, mode PolygonMode)
	CmdSetLineWidth(cmd CommandBuffer, width float32)
	CmdSetCullMode(cmd CommandBuffer, mode CullMode)
	CmdSetFrontFace(cmd CommandBuffer, face FrontFace)
	CmdSetDepthTestEnable(cmd CommandBuffer, enable bool)
	CmdSetDepthWriteEnable(cmd CommandBuffer, enable bool)
	CmdSetDepthCompareOp(cmd CommandBuffer, op CompareOp)
	CmdSetDepthBoundsTestEnable(cmd CommandBuffer, enable bool)
	CmdSetDepthBiasEnable(cmd CommandBuffer, enable bool)
	CmdSetStencilTestEnable(cmd CommandBuffer, enable bool)
	CmdSetColorBlendEnable(cmd CommandBuffer, firstAttachment uint32, enables []bool)
	CmdSetColorBlendEquation(cmd CommandBuffer, firstAttachment uint32, equations []ColorBlendEquation)
	CmdSetColorWriteMask(cmd CommandBuffer, firstAttachment uint32, masks []ColorComponent)

	CmdDraw(cmd CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32)
	CmdDrawIndexed(cmd CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32)
}
