package vulkan

import (
	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

type poolEntry struct {
	pool vk.CommandPool
	cmds []gpu.CommandBuffer
}

func (c *Context) CreateCommandPool(queueFamily uint32) (gpu.CommandPool, error) {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(c.device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: queueFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	if err := NewError(ret); err != nil {
		return 0, errors.Wrap(err, "create command pool")
	}
	return c.pools.add(poolEntry{pool: pool}), nil
}

// DestroyCommandPool frees the pool together with every buffer allocated from it.
func (c *Context) DestroyCommandPool(h gpu.CommandPool) {
	e, ok := c.pools.remove(h)
	if !ok {
		return
	}
	for _, cmd := range e.cmds {
		c.cmds.remove(cmd)
	}
	vk.DestroyCommandPool(c.device, e.pool, nil)
}

func (c *Context) AllocateCommandBuffers(h gpu.CommandPool, count int) ([]gpu.CommandBuffer, error) {
	e, ok := c.pools.get(h)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownHandle, "command pool %d", h)
	}
	if count <= 0 {
		return nil, errors.Errorf("allocate command buffers: invalid count %d", count)
	}
	buffers := make([]vk.CommandBuffer, count)
	ret := vk.AllocateCommandBuffers(c.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        e.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}, buffers)
	if err := NewError(ret); err != nil {
		return nil, errors.Wrap(err, "allocate command buffers")
	}
	out := make([]gpu.CommandBuffer, 0, count)
	for _, b := range buffers {
		out = append(out, c.cmds.add(b))
	}
	e.cmds = append(e.cmds, out...)
	c.pools.items[h] = e
	return out, nil
}

func (c *Context) commandBuffer(h gpu.CommandBuffer) (vk.CommandBuffer, error) {
	cmd, ok := c.cmds.get(h)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownHandle, "command buffer %d", h)
	}
	return cmd, nil
}

func (c *Context) BeginCommandBuffer(h gpu.CommandBuffer, oneTime bool) error {
	cmd, err := c.commandBuffer(h)
	if err != nil {
		return err
	}
	info := vk.CommandBufferBeginInfo{SType: vk.StructureTypeCommandBufferBeginInfo}
	if oneTime {
		info.Flags = vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	return errors.Wrap(NewError(vk.BeginCommandBuffer(cmd, &info)), "begin command buffer")
}

func (c *Context) EndCommandBuffer(h gpu.CommandBuffer) error {
	cmd, err := c.commandBuffer(h)
	if err != nil {
		return err
	}
	return errors.Wrap(NewError(vk.EndCommandBuffer(cmd)), "end command buffer")
}

func (c *Context) ResetCommandBuffer(h gpu.CommandBuffer) error {
	cmd, err := c.commandBuffer(h)
	if err != nil {
		return err
	}
	return errors.Wrap(NewError(vk.ResetCommandBuffer(cmd, 0)), "reset command buffer")
}

// Submit queues one command buffer on the graphics queue. The legacy submit
// path takes 32-bit stage masks, which the low synchronization2 bits match.
func (c *Context) Submit(info gpu.SubmitInfo) error {
	cmd, err := c.commandBuffer(info.CommandBuffer)
	if err != nil {
		return err
	}
	submit := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmd},
	}
	if info.Wait != 0 {
		sem, ok := c.semaphores.get(info.Wait)
		if !ok {
			return errors.Wrapf(ErrUnknownHandle, "semaphore %d", info.Wait)
		}
		submit.WaitSemaphoreCount = 1
		submit.PWaitSemaphores = []vk.Semaphore{sem}
		submit.PWaitDstStageMask = []vk.PipelineStageFlags{vk.PipelineStageFlags(uint32(info.WaitStage))}
	}
	if info.Signal != 0 {
		sem, ok := c.semaphores.get(info.Signal)
		if !ok {
			return errors.Wrapf(ErrUnknownHandle, "semaphore %d", info.Signal)
		}
		submit.SignalSemaphoreCount = 1
		submit.PSignalSemaphores = []vk.Semaphore{sem}
	}
	fence := vk.Fence(vk.NullHandle)
	if info.Fence != 0 {
		f, ok := c.fences.get(info.Fence)
		if !ok {
			return errors.Wrapf(ErrUnknownHandle, "fence %d", info.Fence)
		}
		fence = f
	}
	ret := vk.QueueSubmit(c.queue, 1, []vk.SubmitInfo{submit}, fence)
	return errors.Wrap(NewError(ret), "queue submit")
}
