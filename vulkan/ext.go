package vulkan

import (
	"unsafe"

	"github.com/andewx/varre/gpu"
	"github.com/ebitengine/purego"
	"github.com/pkg/errors"
)

// Structure types for the 1.1-1.3 and EXT structs that vulkan-go does not model.
const (
	sTypePhysicalDeviceFeatures2          = 1000059000
	sTypeVulkan11Features                 = 49
	sTypeVulkan13Features                 = 53
	sTypeShaderObjectFeatures             = 1000482000
	sTypeShaderCreateInfo                 = 1000482002
	sTypeRenderingInfo                    = 1000044000
	sTypeRenderingAttachmentInfo          = 1000044001
	sTypeBufferMemoryBarrier2             = 1000314001
	sTypeImageMemoryBarrier2              = 1000314002
	sTypeDependencyInfo                   = 1000314003
	sTypeVertexInputBindingDescription2   = 1000352001
	sTypeVertexInputAttributeDescription2 = 1000352002
	sTypeUnifiedImageLayoutsFeatures      = 1000527000
)

const (
	shaderCodeTypeSPIRV = 1
	queueFamilyIgnored  = ^uint32(0)
	remainingLevels     = ^uint32(0)
	wholeSize           = ^uint64(0)
)

// Go mirrors of the C structs passed through the extension table. Field order
// and widths follow the 64-bit C layout.

type physicalDeviceFeatures2 struct {
	sType    uint32
	pNext    unsafe.Pointer
	features [55]uint32
}

type vulkan11Features struct {
	sType  uint32
	pNext  unsafe.Pointer
	fields [12]uint32
}

const vulkan11ShaderDrawParameters = 11

type vulkan13Features struct {
	sType  uint32
	pNext  unsafe.Pointer
	fields [15]uint32
}

const (
	vulkan13Synchronization2 = 9
	vulkan13DynamicRendering = 12
)

type shaderObjectFeatures struct {
	sType        uint32
	pNext        unsafe.Pointer
	shaderObject uint32
}

type unifiedImageLayoutsFeatures struct {
	sType                    uint32
	pNext                    unsafe.Pointer
	unifiedImageLayouts      uint32
	unifiedImageLayoutsVideo uint32
}

type shaderCreateInfo struct {
	sType                  uint32
	pNext                  unsafe.Pointer
	flags                  uint32
	stage                  uint32
	nextStage              uint32
	codeType               uint32
	codeSize               uintptr
	pCode                  unsafe.Pointer
	pName                  *byte
	setLayoutCount         uint32
	pSetLayouts            *uint64
	pushConstantRangeCount uint32
	pPushConstantRanges    unsafe.Pointer
	pSpecializationInfo    unsafe.Pointer
}

type renderingAttachmentInfo struct {
	sType              uint32
	pNext              unsafe.Pointer
	imageView          uint64
	imageLayout        uint32
	resolveMode        uint32
	resolveImageView   uint64
	resolveImageLayout uint32
	loadOp             uint32
	storeOp            uint32
	clearValue         [4]uint32
}

type renderingInfo struct {
	sType                uint32
	pNext                unsafe.Pointer
	flags                uint32
	renderArea           gpu.Rect2D
	layerCount           uint32
	viewMask             uint32
	colorAttachmentCount uint32
	pColorAttachments    *renderingAttachmentInfo
	pDepthAttachment     *renderingAttachmentInfo
	pStencilAttachment   *renderingAttachmentInfo
}

type imageSubresourceRange struct {
	aspectMask     uint32
	baseMipLevel   uint32
	levelCount     uint32
	baseArrayLayer uint32
	layerCount     uint32
}

type imageMemoryBarrier2 struct {
	sType               uint32
	pNext               unsafe.Pointer
	srcStageMask        uint64
	srcAccessMask       uint64
	dstStageMask        uint64
	dstAccessMask       uint64
	oldLayout           uint32
	newLayout           uint32
	srcQueueFamilyIndex uint32
	dstQueueFamilyIndex uint32
	image               uint64
	subresourceRange    imageSubresourceRange
}

type bufferMemoryBarrier2 struct {
	sType               uint32
	pNext               unsafe.Pointer
	srcStageMask        uint64
	srcAccessMask       uint64
	dstStageMask        uint64
	dstAccessMask       uint64
	srcQueueFamilyIndex uint32
	dstQueueFamilyIndex uint32
	buffer              uint64
	offset              uint64
	size                uint64
}

type dependencyInfo struct {
	sType                    uint32
	pNext                    unsafe.Pointer
	dependencyFlags          uint32
	memoryBarrierCount       uint32
	pMemoryBarriers          unsafe.Pointer
	bufferMemoryBarrierCount uint32
	pBufferMemoryBarriers    unsafe.Pointer
	imageMemoryBarrierCount  uint32
	pImageMemoryBarriers     *imageMemoryBarrier2
}

type vertexInputBindingDescription2 struct {
	sType     uint32
	pNext     unsafe.Pointer
	binding   uint32
	stride    uint32
	inputRate uint32
	divisor   uint32
}

type vertexInputAttributeDescription2 struct {
	sType    uint32
	pNext    unsafe.Pointer
	location uint32
	binding  uint32
	format   uint32
	offset   uint32
}

// instanceTable holds instance-level entry points missing from vulkan-go.
type instanceTable struct {
	getPhysicalDeviceFeatures2 func(physicalDevice uintptr, features *physicalDeviceFeatures2)
}

// deviceTable holds the dynamic rendering, synchronization2, shader object
// and extended dynamic state entry points resolved through vkGetDeviceProcAddr.
type deviceTable struct {
	cmdBeginRendering   func(cmd uintptr, info *renderingInfo)
	cmdEndRendering     func(cmd uintptr)
	cmdPipelineBarrier2 func(cmd uintptr, dep *dependencyInfo)

	createShaders  func(device uintptr, count uint32, infos *shaderCreateInfo, allocator uintptr, shaders *uint64) int32
	destroyShader  func(device uintptr, shader uint64, allocator uintptr)
	cmdBindShaders func(cmd uintptr, count uint32, stages *uint32, shaders *uint64)

	cmdSetViewportWithCount       func(cmd uintptr, count uint32, viewports *gpu.Viewport)
	cmdSetScissorWithCount        func(cmd uintptr, count uint32, scissors *gpu.Rect2D)
	cmdSetRasterizerDiscardEnable func(cmd uintptr, enable uint32)
	cmdSetVertexInput             func(cmd uintptr, bindingCount uint32, bindings *vertexInputBindingDescription2, attributeCount uint32, attributes *vertexInputAttributeDescription2)
	cmdSetPrimitiveTopology       func(cmd uintptr, topology uint32)
	cmdSetPrimitiveRestartEnable  func(cmd uintptr, enable uint32)
	cmdSetRasterizationSamples    func(cmd uintptr, samples uint32)
	cmdSetSampleMask              func(cmd uintptr, samples uint32, mask *uint32)
	cmdSetAlphaToCoverageEnable   func(cmd uintptr, enable uint32)
	cmdSetPolygonMode             func(cmd uintptr, mode uint32)
	cmdSetCullMode                func(cmd uintptr, mode uint32)
	cmdSetFrontFace               func(cmd uintptr, face uint32)
	cmdSetDepthTestEnable         func(cmd uintptr, enable uint32)
	cmdSetDepthWriteEnable        func(cmd uintptr, enable uint32)
	cmdSetDepthCompareOp          func(cmd uintptr, op uint32)
	cmdSetDepthBoundsTestEnable   func(cmd uintptr, enable uint32)
	cmdSetDepthBiasEnable         func(cmd uintptr, enable uint32)
	cmdSetStencilTestEnable       func(cmd uintptr, enable uint32)
	cmdSetColorBlendEnable        func(cmd uintptr, first, count uint32, enables *uint32)
	cmdSetColorBlendEquation      func(cmd uintptr, first, count uint32, equations *gpu.ColorBlendEquation)
	cmdSetColorWriteMask          func(cmd uintptr, first, count uint32, masks *uint32)
}

type procLookup func(name string) uintptr

type entryPoint struct {
	fptr any
	name string
}

func bindAll(lookup procLookup, entries []entryPoint) error {
	for _, b := range entries {
		addr := lookup(b.name)
		if addr == 0 {
			return errors.Errorf("vulkan: entry point %s not found", b.name)
		}
		purego.RegisterFunc(b.fptr, addr)
	}
	return nil
}

func (t *instanceTable) load(lookup procLookup) error {
	return bindAll(lookup, []entryPoint{
		{&t.getPhysicalDeviceFeatures2, "vkGetPhysicalDeviceFeatures2"},
	})
}

func (t *deviceTable) load(lookup procLookup) error {
	return bindAll(lookup, []entryPoint{
		{&t.cmdBeginRendering, "vkCmdBeginRendering"},
		{&t.cmdEndRendering, "vkCmdEndRendering"},
		{&t.cmdPipelineBarrier2, "vkCmdPipelineBarrier2"},
		{&t.createShaders, "vkCreateShadersEXT"},
		{&t.destroyShader, "vkDestroyShaderEXT"},
		{&t.cmdBindShaders, "vkCmdBindShadersEXT"},
		{&t.cmdSetViewportWithCount, "vkCmdSetViewportWithCount"},
		{&t.cmdSetScissorWithCount, "vkCmdSetScissorWithCount"},
		{&t.cmdSetRasterizerDiscardEnable, "vkCmdSetRasterizerDiscardEnable"},
		{&t.cmdSetVertexInput, "vkCmdSetVertexInputEXT"},
		{&t.cmdSetPrimitiveTopology, "vkCmdSetPrimitiveTopology"},
		{&t.cmdSetPrimitiveRestartEnable, "vkCmdSetPrimitiveRestartEnable"},
		{&t.cmdSetRasterizationSamples, "vkCmdSetRasterizationSamplesEXT"},
		{&t.cmdSetSampleMask, "vkCmdSetSampleMaskEXT"},
		{&t.cmdSetAlphaToCoverageEnable, "vkCmdSetAlphaToCoverageEnableEXT"},
		{&t.cmdSetPolygonMode, "vkCmdSetPolygonModeEXT"},
		{&t.cmdSetCullMode, "vkCmdSetCullMode"},
		{&t.cmdSetFrontFace, "vkCmdSetFrontFace"},
		{&t.cmdSetDepthTestEnable, "vkCmdSetDepthTestEnable"},
		{&t.cmdSetDepthWriteEnable, "vkCmdSetDepthWriteEnable"},
		{&t.cmdSetDepthCompareOp, "vkCmdSetDepthCompareOp"},
		{&t.cmdSetDepthBoundsTestEnable, "vkCmdSetDepthBoundsTestEnable"},
		{&t.cmdSetDepthBiasEnable, "vkCmdSetDepthBiasEnable"},
		{&t.cmdSetStencilTestEnable, "vkCmdSetStencilTestEnable"},
		{&t.cmdSetColorBlendEnable, "vkCmdSetColorBlendEnableEXT"},
		{&t.cmdSetColorBlendEquation, "vkCmdSetColorBlendEquationEXT"},
		{&t.cmdSetColorWriteMask, "vkCmdSetColorWriteMaskEXT"},
	})
}
