package vulkan

import (
	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

func (c *Context) CreateSemaphore() (gpu.Semaphore, error) {
	var sem vk.Semaphore
	ret := vk.CreateSemaphore(c.device, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &sem)
	if err := NewError(ret); err != nil {
		return 0, errors.Wrap(err, "create semaphore")
	}
	return c.semaphores.add(sem), nil
}

func (c *Context) DestroySemaphore(h gpu.Semaphore) {
	if sem, ok := c.semaphores.remove(h); ok {
		vk.DestroySemaphore(c.device, sem, nil)
	}
}

func (c *Context) CreateFence(signaled bool) (gpu.Fence, error) {
	info := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	if err := NewError(vk.CreateFence(c.device, &info, nil, &fence)); err != nil {
		return 0, errors.Wrap(err, "create fence")
	}
	return c.fences.add(fence), nil
}

func (c *Context) DestroyFence(h gpu.Fence) {
	if fence, ok := c.fences.remove(h); ok {
		vk.DestroyFence(c.device, fence, nil)
	}
}

func (c *Context) WaitFence(h gpu.Fence, timeout uint64) error {
	fence, ok := c.fences.get(h)
	if !ok {
		return errors.Wrapf(ErrUnknownHandle, "fence %d", h)
	}
	ret := vk.WaitForFences(c.device, 1, []vk.Fence{fence}, vk.True, timeout)
	return errors.Wrap(NewError(ret), "wait fence")
}

func (c *Context) ResetFence(h gpu.Fence) error {
	fence, ok := c.fences.get(h)
	if !ok {
		return errors.Wrapf(ErrUnknownHandle, "fence %d", h)
	}
	return errors.Wrap(NewError(vk.ResetFences(c.device, 1, []vk.Fence{fence})), "reset fence")
}
