package vulkan

import (
	"math"
	"runtime"
	"unsafe"

	"github.com/andewx/varre/gpu"
	vk "github.com/vulkan-go/vulkan"
)

// Recording an unknown handle is a programming error; the recorder methods
// have no error return, so they panic.
func (c *Context) rec(h gpu.CommandBuffer) uintptr {
	cmd, err := c.commandBuffer(h)
	orPanic(err)
	return rawCommandBuffer(cmd)
}

func (c *Context) recVK(h gpu.CommandBuffer) vk.CommandBuffer {
	cmd, err := c.commandBuffer(h)
	orPanic(err)
	return cmd
}

// layout maps attachment layouts onto GENERAL when unified image layouts are
// enabled. Present and undefined layouts are kept.
func (c *Context) layout(l gpu.ImageLayout) uint32 {
	if c.report.UnifiedLayouts {
		switch l {
		case gpu.ImageLayoutColorAttachmentOptimal, gpu.ImageLayoutDepthAttachmentOptimal,
			gpu.ImageLayoutTransferDstOptimal:
			return uint32(gpu.ImageLayoutGeneral)
		}
	}
	return uint32(l)
}

func (c *Context) CmdPipelineBarrier(h gpu.CommandBuffer, barriers ...gpu.ImageBarrier) {
	cmd := c.rec(h)
	if len(barriers) == 0 {
		return
	}
	list := make([]imageMemoryBarrier2, len(barriers))
	for i, b := range barriers {
		img, ok := c.images.get(b.Image)
		if !ok {
			panic("vulkan: barrier on unknown image")
		}
		list[i] = imageMemoryBarrier2{
			sType:               sTypeImageMemoryBarrier2,
			srcStageMask:        uint64(b.SrcStage),
			srcAccessMask:       uint64(b.SrcAccess),
			dstStageMask:        uint64(b.DstStage),
			dstAccessMask:       uint64(b.DstAccess),
			oldLayout:           c.layout(b.OldLayout),
			newLayout:           c.layout(b.NewLayout),
			srcQueueFamilyIndex: queueFamilyIgnored,
			dstQueueFamilyIndex: queueFamilyIgnored,
			image:               rawImage(img.image),
			subresourceRange: imageSubresourceRange{
				aspectMask: uint32(b.Aspect),
				levelCount: remainingLevels,
				layerCount: remainingLevels,
			},
		}
	}
	var pinner runtime.Pinner
	pinner.Pin(&list[0])
	defer pinner.Unpin()
	c.table.cmdPipelineBarrier2(cmd, &dependencyInfo{
		sType:                   sTypeDependencyInfo,
		imageMemoryBarrierCount: uint32(len(list)),
		pImageMemoryBarriers:    &list[0],
	})
}

func (c *Context) CmdBufferBarrier(h gpu.CommandBuffer, barriers ...gpu.BufferBarrier) {
	cmd := c.rec(h)
	if len(barriers) == 0 {
		return
	}
	list := make([]bufferMemoryBarrier2, len(barriers))
	for i, b := range barriers {
		buf, ok := c.buffers.get(b.Buffer)
		if !ok {
			panic("vulkan: barrier on unknown buffer")
		}
		list[i] = bufferMemoryBarrier2{
			sType:               sTypeBufferMemoryBarrier2,
			srcStageMask:        uint64(b.SrcStage),
			srcAccessMask:       uint64(b.SrcAccess),
			dstStageMask:        uint64(b.DstStage),
			dstAccessMask:       uint64(b.DstAccess),
			srcQueueFamilyIndex: queueFamilyIgnored,
			dstQueueFamilyIndex: queueFamilyIgnored,
			buffer:              rawBuffer(buf),
			size:                wholeSize,
		}
	}
	var pinner runtime.Pinner
	pinner.Pin(&list[0])
	defer pinner.Unpin()
	c.table.cmdPipelineBarrier2(cmd, &dependencyInfo{
		sType:                    sTypeDependencyInfo,
		bufferMemoryBarrierCount: uint32(len(list)),
		pBufferMemoryBarriers:    unsafe.Pointer(&list[0]),
	})
}

func (c *Context) attachment(a gpu.RenderingAttachment, depth bool) renderingAttachmentInfo {
	view, ok := c.views.get(a.View)
	if !ok {
		panic("vulkan: rendering attachment with unknown view")
	}
	info := renderingAttachmentInfo{
		sType:       sTypeRenderingAttachmentInfo,
		imageView:   rawImageView(view),
		imageLayout: c.layout(a.Layout),
		loadOp:      uint32(a.LoadOp),
		storeOp:     uint32(a.StoreOp),
	}
	if depth {
		info.clearValue[0] = math.Float32bits(a.Clear.Depth)
		info.clearValue[1] = a.Clear.Stencil
	} else {
		for i, v := range a.Clear.Color {
			info.clearValue[i] = math.Float32bits(v)
		}
	}
	return info
}

func (c *Context) CmdBeginRendering(h gpu.CommandBuffer, info gpu.RenderingInfo) {
	cmd := c.rec(h)
	var pinner runtime.Pinner
	defer pinner.Unpin()

	ri := renderingInfo{
		sType:                sTypeRenderingInfo,
		renderArea:           info.Area,
		layerCount:           1,
		colorAttachmentCount: uint32(len(info.Color)),
	}
	if len(info.Color) > 0 {
		colors := make([]renderingAttachmentInfo, len(info.Color))
		for i, a := range info.Color {
			colors[i] = c.attachment(a, false)
		}
		pinner.Pin(&colors[0])
		ri.pColorAttachments = &colors[0]
	}
	if info.Depth != nil {
		depth := c.attachment(*info.Depth, true)
		pinner.Pin(&depth)
		ri.pDepthAttachment = &depth
	}
	c.table.cmdBeginRendering(cmd, &ri)
}

func (c *Context) CmdEndRendering(h gpu.CommandBuffer) {
	c.table.cmdEndRendering(c.rec(h))
}

func (c *Context) CmdCopyBuffer(h gpu.CommandBuffer, src, dst gpu.Buffer, size uint64) {
	s, ok1 := c.buffers.get(src)
	d, ok2 := c.buffers.get(dst)
	if !ok1 || !ok2 {
		panic("vulkan: copy with unknown buffer")
	}
	vk.CmdCopyBuffer(c.recVK(h), s, d, 1, []vk.BufferCopy{{Size: vk.DeviceSize(size)}})
}

func (c *Context) CmdBindVertexBuffer(h gpu.CommandBuffer, binding uint32, buf gpu.Buffer, offset uint64) {
	b, ok := c.buffers.get(buf)
	if !ok {
		panic("vulkan: bind unknown vertex buffer")
	}
	vk.CmdBindVertexBuffers(c.recVK(h), binding, 1, []vk.Buffer{b}, []vk.DeviceSize{vk.DeviceSize(offset)})
}

func (c *Context) CmdBindIndexBuffer(h gpu.CommandBuffer, buf gpu.Buffer, offset uint64, typ gpu.IndexType) {
	b, ok := c.buffers.get(buf)
	if !ok {
		panic("vulkan: bind unknown index buffer")
	}
	vk.CmdBindIndexBuffer(c.recVK(h), b, vk.DeviceSize(offset), vk.IndexType(typ))
}

func (c *Context) CmdBindDescriptorSets(h gpu.CommandBuffer, layout gpu.PipelineLayout, firstSet uint32, sets ...gpu.DescriptorSet) {
	pl, ok := c.pipelineLayout.get(layout)
	if !ok {
		panic("vulkan: bind with unknown pipeline layout")
	}
	if len(sets) == 0 {
		return
	}
	raw := make([]vk.DescriptorSet, len(sets))
	for i, s := range sets {
		set, ok := c.sets.get(s)
		if !ok {
			panic("vulkan: bind unknown descriptor set")
		}
		raw[i] = set
	}
	vk.CmdBindDescriptorSets(c.recVK(h), vk.PipelineBindPointGraphics, pl, firstSet, uint32(len(raw)), raw, 0, nil)
}

// CmdBindShaders binds shaders[i] to stages[i]. A zero shader unbinds the stage.
func (c *Context) CmdBindShaders(h gpu.CommandBuffer, stages []gpu.ShaderStageFlags, shaders []gpu.Shader) {
	cmd := c.rec(h)
	if len(stages) == 0 || len(stages) != len(shaders) {
		panic("vulkan: shader and stage counts differ")
	}
	rawStages := make([]uint32, len(stages))
	rawShaders := make([]uint64, len(shaders))
	for i := range stages {
		rawStages[i] = uint32(stages[i])
		if shaders[i] == 0 {
			continue
		}
		s, ok := c.shaders.get(shaders[i])
		if !ok {
			panic("vulkan: bind unknown shader")
		}
		rawShaders[i] = s
	}
	c.table.cmdBindShaders(cmd, uint32(len(stages)), &rawStages[0], &rawShaders[0])
}

func (c *Context) CmdSetViewport(h gpu.CommandBuffer, viewports ...gpu.Viewport) {
	if len(viewports) == 0 {
		return
	}
	c.table.cmdSetViewportWithCount(c.rec(h), uint32(len(viewports)), &viewports[0])
}

func (c *Context) CmdSetScissor(h gpu.CommandBuffer, scissors ...gpu.Rect2D) {
	if len(scissors) == 0 {
		return
	}
	c.table.cmdSetScissorWithCount(c.rec(h), uint32(len(scissors)), &scissors[0])
}

func (c *Context) CmdSetRasterizerDiscardEnable(h gpu.CommandBuffer, enable bool) {
	c.table.cmdSetRasterizerDiscardEnable(c.rec(h), bool32(enable))
}

func (c *Context) CmdSetVertexInput(h gpu.CommandBuffer, bindings []gpu.VertexBinding, attributes []gpu.VertexAttribute) {
	cmd := c.rec(h)
	var pinner runtime.Pinner
	defer pinner.Unpin()

	var pb *vertexInputBindingDescription2
	if len(bindings) > 0 {
		list := make([]vertexInputBindingDescription2, len(bindings))
		for i, b := range bindings {
			list[i] = vertexInputBindingDescription2{
				sType:     sTypeVertexInputBindingDescription2,
				binding:   b.Binding,
				stride:    b.Stride,
				inputRate: uint32(b.InputRate),
				divisor:   1,
			}
		}
		pinner.Pin(&list[0])
		pb = &list[0]
	}
	var pa *vertexInputAttributeDescription2
	if len(attributes) > 0 {
		list := make([]vertexInputAttributeDescription2, len(attributes))
		for i, a := range attributes {
			list[i] = vertexInputAttributeDescription2{
				sType:    sTypeVertexInputAttributeDescription2,
				location: a.Location,
				binding:  a.Binding,
				format:   uint32(a.Format),
				offset:   a.Offset,
			}
		}
		pinner.Pin(&list[0])
		pa = &list[0]
	}
	c.table.cmdSetVertexInput(cmd, uint32(len(bindings)), pb, uint32(len(attributes)), pa)
}

func (c *Context) CmdSetPrimitiveTopology(h gpu.CommandBuffer, topology gpu.PrimitiveTopology) {
	c.table.cmdSetPrimitiveTopology(c.rec(h), uint32(topology))
}

func (c *Context) CmdSetPrimitiveRestartEnable(h gpu.CommandBuffer, enable bool) {
	c.table.cmdSetPrimitiveRestartEnable(c.rec(h), bool32(enable))
}

func (c *Context) CmdSetRasterizationSamples(h gpu.CommandBuffer, samples gpu.SampleCount) {
	c.table.cmdSetRasterizationSamples(c.rec(h), uint32(samples))
}

func (c *Context) CmdSetSampleMask(h gpu.CommandBuffer, samples gpu.SampleCount, mask uint32) {
	masks := []uint32{mask}
	c.table.cmdSetSampleMask(c.rec(h), uint32(samples), &masks[0])
}

func (c *Context) CmdSetAlphaToCoverageEnable(h gpu.CommandBuffer, enable bool) {
	c.table.cmdSetAlphaToCoverageEnable(c.rec(h), bool32(enable))
}

func (c *Context) CmdSetPolygonMode(h gpu.CommandBuffer, mode gpu.PolygonMode) {
	c.table.cmdSetPolygonMode(c.rec(h), uint32(mode))
}

func (c *Context) CmdSetLineWidth(h gpu.CommandBuffer, width float32) {
	vk.CmdSetLineWidth(c.recVK(h), width)
}

func (c *Context) CmdSetCullMode(h gpu.CommandBuffer, mode gpu.CullMode) {
	c.table.cmdSetCullMode(c.rec(h), uint32(mode))
}

func (c *Context) CmdSetFrontFace(h gpu.CommandBuffer, face gpu.FrontFace) {
	c.table.cmdSetFrontFace(c.rec(h), uint32(face))
}

func (c *Context) CmdSetDepthTestEnable(h gpu.CommandBuffer, enable bool) {
	c.table.cmdSetDepthTestEnable(c.rec(h), bool32(enable))
}

func (c *Context) CmdSetDepthWriteEnable(h gpu.CommandBuffer, enable bool) {
	c.table.cmdSetDepthWriteEnable(c.rec(h), bool32(enable))
}

func (c *Context) CmdSetDepthCompareOp(h gpu.CommandBuffer, op gpu.CompareOp) {
	c.table.cmdSetDepthCompareOp(c.rec(h), uint32(op))
}

func (c *Context) CmdSetDepthBoundsTestEnable(h gpu.CommandBuffer, enable bool) {
	c.table.cmdSetDepthBoundsTestEnable(c.rec(h), bool32(enable))
}

func (c *Context) CmdSetDepthBiasEnable(h gpu.CommandBuffer, enable bool) {
	c.table.cmdSetDepthBiasEnable(c.rec(h), bool32(enable))
}

func (c *Context) CmdSetStencilTestEnable(h gpu.CommandBuffer, enable bool) {
	c.table.cmdSetStencilTestEnable(c.rec(h), bool32(enable))
}

func (c *Context) CmdSetColorBlendEnable(h gpu.CommandBuffer, first uint32, enables []bool) {
	if len(enables) == 0 {
		return
	}
	raw := make([]uint32, len(enables))
	for i, e := range enables {
		raw[i] = bool32(e)
	}
	c.table.cmdSetColorBlendEnable(c.rec(h), first, uint32(len(raw)), &raw[0])
}

func (c *Context) CmdSetColorBlendEquation(h gpu.CommandBuffer, first uint32, equations []gpu.ColorBlendEquation) {
	if len(equations) == 0 {
		return
	}
	c.table.cmdSetColorBlendEquation(c.rec(h), first, uint32(len(equations)), &equations[0])
}

func (c *Context) CmdSetColorWriteMask(h gpu.CommandBuffer, first uint32, masks []gpu.ColorComponent) {
	if len(masks) == 0 {
		return
	}
	raw := make([]uint32, len(masks))
	for i, m := range masks {
		raw[i] = uint32(m)
	}
	c.table.cmdSetColorWriteMask(c.rec(h), first, uint32(len(raw)), &raw[0])
}

func (c *Context) CmdDraw(h gpu.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vk.CmdDraw(c.recVK(h), vertexCount, instanceCount, firstVertex, firstInstance)
}

func (c *Context) CmdDrawIndexed(h gpu.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	vk.CmdDrawIndexed(c.recVK(h), indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}
