package vulkan

import (
	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

type swapchainEntry struct {
	swapchain vk.Swapchain
	images    []gpu.Image
}

type imageEntry struct {
	image vk.Image
	owned bool
}

func (c *Context) CreateSurface(w gpu.Window) (gpu.Surface, error) {
	addr, err := w.CreateWindowSurface(c.instance, nil)
	if err != nil {
		return 0, errors.Wrap(err, "create window surface")
	}
	surface := vk.SurfaceFromPointer(addr)
	if surface == vk.NullSurface {
		return 0, errors.New("create window surface: null surface")
	}
	return c.surfaces.add(surface), nil
}

func (c *Context) DestroySurface(s gpu.Surface) {
	if surface, ok := c.surfaces.remove(s); ok {
		vk.DestroySurface(c.instance, surface, nil)
	}
}

func (c *Context) surface(s gpu.Surface) (vk.Surface, error) {
	surface, ok := c.surfaces.get(s)
	if !ok {
		return vk.NullSurface, errors.Wrapf(ErrUnknownHandle, "surface %d", s)
	}
	return surface, nil
}

func (c *Context) SurfaceSupport(s gpu.Surface, family uint32) (bool, error) {
	surface, err := c.surface(s)
	if err != nil {
		return false, err
	}
	var supported vk.Bool32
	ret := vk.GetPhysicalDeviceSurfaceSupport(c.physical, family, surface, &supported)
	if err := NewError(ret); err != nil {
		return false, errors.Wrap(err, "surface support")
	}
	return supported.B(), nil
}

func toExtent(e vk.Extent2D) gpu.Extent2D {
	e.Deref()
	return gpu.Extent2D{Width: e.Width, Height: e.Height}
}

func (c *Context) SurfaceCapabilities(s gpu.Surface) (gpu.SurfaceCapabilities, error) {
	surface, err := c.surface(s)
	if err != nil {
		return gpu.SurfaceCapabilities{}, err
	}
	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(c.physical, surface, &caps)
	if err := NewError(ret); err != nil {
		return gpu.SurfaceCapabilities{}, errors.Wrap(err, "surface capabilities")
	}
	caps.Deref()
	return gpu.SurfaceCapabilities{
		MinImageCount:       caps.MinImageCount,
		MaxImageCount:       caps.MaxImageCount,
		CurrentExtent:       toExtent(caps.CurrentExtent),
		MinImageExtent:      toExtent(caps.MinImageExtent),
		MaxImageExtent:      toExtent(caps.MaxImageExtent),
		SupportedTransforms: gpu.SurfaceTransform(caps.SupportedTransforms),
		CurrentTransform:    gpu.SurfaceTransform(caps.CurrentTransform),
		SupportedAlpha:      gpu.CompositeAlpha(caps.SupportedCompositeAlpha),
	}, nil
}

func (c *Context) SurfaceFormats(s gpu.Surface) ([]gpu.SurfaceFormat, error) {
	surface, err := c.surface(s)
	if err != nil {
		return nil, err
	}
	var count uint32
	if err := NewError(vk.GetPhysicalDeviceSurfaceFormats(c.physical, surface, &count, nil)); err != nil {
		return nil, errors.Wrap(err, "surface formats")
	}
	formats := make([]vk.SurfaceFormat, count)
	if err := NewError(vk.GetPhysicalDeviceSurfaceFormats(c.physical, surface, &count, formats)); err != nil {
		return nil, errors.Wrap(err, "surface formats")
	}
	out := make([]gpu.SurfaceFormat, 0, count)
	for _, f := range formats[:count] {
		f.Deref()
		out = append(out, gpu.SurfaceFormat{Format: gpu.Format(f.Format), ColorSpace: gpu.ColorSpace(f.ColorSpace)})
	}
	return out, nil
}

func (c *Context) SurfacePresentModes(s gpu.Surface) ([]gpu.PresentMode, error) {
	surface, err := c.surface(s)
	if err != nil {
		return nil, err
	}
	var count uint32
	if err := NewError(vk.GetPhysicalDeviceSurfacePresentModes(c.physical, surface, &count, nil)); err != nil {
		return nil, errors.Wrap(err, "present modes")
	}
	modes := make([]vk.PresentMode, count)
	if err := NewError(vk.GetPhysicalDeviceSurfacePresentModes(c.physical, surface, &count, modes)); err != nil {
		return nil, errors.Wrap(err, "present modes")
	}
	out := make([]gpu.PresentMode, 0, count)
	for _, m := range modes[:count] {
		out = append(out, gpu.PresentMode(m))
	}
	return out, nil
}

func (c *Context) CreateSwapchain(info gpu.SwapchainInfo) (gpu.Swapchain, error) {
	surface, err := c.surface(info.Surface)
	if err != nil {
		return 0, err
	}
	old := vk.NullSwapchain
	if info.OldSwapchain != 0 {
		if e, ok := c.swapchains.get(info.OldSwapchain); ok {
			old = e.swapchain
		}
	}
	var swapchain vk.Swapchain
	ret := vk.CreateSwapchain(c.device, &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    info.MinImageCount,
		ImageFormat:      vk.Format(info.Format),
		ImageColorSpace:  vk.ColorSpace(info.ColorSpace),
		ImageExtent:      vk.Extent2D{Width: info.Extent.Width, Height: info.Extent.Height},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(info.Usage),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     vk.SurfaceTransformFlagBits(info.PreTransform),
		CompositeAlpha:   vk.CompositeAlphaFlagBits(info.CompositeAlpha),
		PresentMode:      vk.PresentMode(info.PresentMode),
		Clipped:          vkBool(info.Clipped),
		OldSwapchain:     old,
	}, nil, &swapchain)
	if err := NewError(ret); err != nil {
		return 0, errors.Wrap(err, "create swapchain")
	}
	return c.swapchains.add(swapchainEntry{swapchain: swapchain}), nil
}

func (c *Context) DestroySwapchain(sc gpu.Swapchain) {
	e, ok := c.swapchains.remove(sc)
	if !ok {
		return
	}
	for _, img := range e.images {
		c.images.remove(img)
	}
	vk.DestroySwapchain(c.device, e.swapchain, nil)
}

// SwapchainImages returns the presentable images. Repeated calls return the
// same handles.
func (c *Context) SwapchainImages(sc gpu.Swapchain) ([]gpu.Image, error) {
	e, ok := c.swapchains.get(sc)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownHandle, "swapchain %d", sc)
	}
	if e.images != nil {
		return append([]gpu.Image(nil), e.images...), nil
	}
	var count uint32
	if err := NewError(vk.GetSwapchainImages(c.device, e.swapchain, &count, nil)); err != nil {
		return nil, errors.Wrap(err, "swapchain images")
	}
	images := make([]vk.Image, count)
	if err := NewError(vk.GetSwapchainImages(c.device, e.swapchain, &count, images)); err != nil {
		return nil, errors.Wrap(err, "swapchain images")
	}
	for _, img := range images[:count] {
		e.images = append(e.images, c.images.add(imageEntry{image: img}))
	}
	c.swapchains.items[sc] = e
	return append([]gpu.Image(nil), e.images...), nil
}

func (c *Context) AcquireNextImage(sc gpu.Swapchain, signal gpu.Semaphore) (uint32, error) {
	e, ok := c.swapchains.get(sc)
	if !ok {
		return 0, errors.Wrapf(ErrUnknownHandle, "swapchain %d", sc)
	}
	sem, ok := c.semaphores.get(signal)
	if !ok {
		return 0, errors.Wrapf(ErrUnknownHandle, "semaphore %d", signal)
	}
	var index uint32
	ret := vk.AcquireNextImage(c.device, e.swapchain, vk.MaxUint64, sem, vk.Fence(vk.NullHandle), &index)
	switch ret {
	case vk.Success:
		return index, nil
	case vk.Suboptimal:
		return index, gpu.ErrSuboptimal
	}
	return 0, errors.Wrap(NewError(ret), "acquire next image")
}

func (c *Context) Present(sc gpu.Swapchain, imageIndex uint32, wait gpu.Semaphore) error {
	e, ok := c.swapchains.get(sc)
	if !ok {
		return errors.Wrapf(ErrUnknownHandle, "swapchain %d", sc)
	}
	info := vk.PresentInfo{
		SType:          vk.StructureTypePresentInfo,
		SwapchainCount: 1,
		PSwapchains:    []vk.Swapchain{e.swapchain},
		PImageIndices:  []uint32{imageIndex},
	}
	if wait != 0 {
		sem, ok := c.semaphores.get(wait)
		if !ok {
			return errors.Wrapf(ErrUnknownHandle, "semaphore %d", wait)
		}
		info.WaitSemaphoreCount = 1
		info.PWaitSemaphores = []vk.Semaphore{sem}
	}
	ret := vk.QueuePresent(c.queue, &info)
	switch ret {
	case vk.Success:
		return nil
	case vk.Suboptimal:
		return gpu.ErrSuboptimal
	}
	return errors.Wrap(NewError(ret), "present")
}
