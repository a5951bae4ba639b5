package vulkan

import (
	"unsafe"

	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

func (c *Context) CreateImage(info gpu.ImageInfo) (gpu.Image, error) {
	var img vk.Image
	ret := vk.CreateImage(c.device, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        vk.Format(info.Format),
		Extent:        vk.Extent3D{Width: info.Extent.Width, Height: info.Extent.Height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(info.Usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &img)
	if err := NewError(ret); err != nil {
		return 0, errors.Wrap(err, "create image")
	}
	return c.images.add(imageEntry{image: img, owned: true}), nil
}

func (c *Context) DestroyImage(h gpu.Image) {
	e, ok := c.images.get(h)
	if !ok || !e.owned {
		return
	}
	c.images.remove(h)
	vk.DestroyImage(c.device, e.image, nil)
}

func (c *Context) ImageMemoryRequirements(h gpu.Image) gpu.MemoryRequirements {
	e, ok := c.images.get(h)
	if !ok {
		return gpu.MemoryRequirements{}
	}
	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(c.device, e.image, &req)
	req.Deref()
	return gpu.MemoryRequirements{Size: uint64(req.Size), Alignment: uint64(req.Alignment), MemoryTypeBits: req.MemoryTypeBits}
}

func (c *Context) BindImageMemory(h gpu.Image, mem gpu.Memory) error {
	e, ok := c.images.get(h)
	if !ok {
		return errors.Wrapf(ErrUnknownHandle, "image %d", h)
	}
	m, ok := c.memory.get(mem)
	if !ok {
		return errors.Wrapf(ErrUnknownHandle, "memory %d", mem)
	}
	return errors.Wrap(NewError(vk.BindImageMemory(c.device, e.image, m, 0)), "bind image memory")
}

func (c *Context) CreateImageView(info gpu.ImageViewInfo) (gpu.ImageView, error) {
	e, ok := c.images.get(info.Image)
	if !ok {
		return 0, errors.Wrapf(ErrUnknownHandle, "image %d", info.Image)
	}
	var view vk.ImageView
	ret := vk.CreateImageView(c.device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    e.image,
		ViewType: vk.ImageViewType2d,
		Format:   vk.Format(info.Format),
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(info.Aspect),
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	if err := NewError(ret); err != nil {
		return 0, errors.Wrap(err, "create image view")
	}
	return c.views.add(view), nil
}

func (c *Context) DestroyImageView(h gpu.ImageView) {
	if view, ok := c.views.remove(h); ok {
		vk.DestroyImageView(c.device, view, nil)
	}
}

func (c *Context) CreateBuffer(size uint64, usage gpu.BufferUsage) (gpu.Buffer, error) {
	if size == 0 {
		return 0, errors.New("create buffer: zero size")
	}
	var buf vk.Buffer
	ret := vk.CreateBuffer(c.device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buf)
	if err := NewError(ret); err != nil {
		return 0, errors.Wrap(err, "create buffer")
	}
	return c.buffers.add(buf), nil
}

func (c *Context) DestroyBuffer(h gpu.Buffer) {
	if buf, ok := c.buffers.remove(h); ok {
		vk.DestroyBuffer(c.device, buf, nil)
	}
}

func (c *Context) BufferMemoryRequirements(h gpu.Buffer) gpu.MemoryRequirements {
	buf, ok := c.buffers.get(h)
	if !ok {
		return gpu.MemoryRequirements{}
	}
	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(c.device, buf, &req)
	req.Deref()
	return gpu.MemoryRequirements{Size: uint64(req.Size), Alignment: uint64(req.Alignment), MemoryTypeBits: req.MemoryTypeBits}
}

func (c *Context) BindBufferMemory(h gpu.Buffer, mem gpu.Memory) error {
	buf, ok := c.buffers.get(h)
	if !ok {
		return errors.Wrapf(ErrUnknownHandle, "buffer %d", h)
	}
	m, ok := c.memory.get(mem)
	if !ok {
		return errors.Wrapf(ErrUnknownHandle, "memory %d", mem)
	}
	return errors.Wrap(NewError(vk.BindBufferMemory(c.device, buf, m, 0)), "bind buffer memory")
}

func (c *Context) AllocateMemory(size uint64, memoryType uint32) (gpu.Memory, error) {
	var mem vk.DeviceMemory
	ret := vk.AllocateMemory(c.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(size),
		MemoryTypeIndex: memoryType,
	}, nil, &mem)
	if err := NewError(ret); err != nil {
		return 0, errors.Wrapf(err, "allocate %d bytes of memory type %d", size, memoryType)
	}
	return c.memory.add(mem), nil
}

func (c *Context) FreeMemory(h gpu.Memory) {
	if mem, ok := c.memory.remove(h); ok {
		vk.FreeMemory(c.device, mem, nil)
	}
}

func (c *Context) WriteMemory(h gpu.Memory, offset uint64, data []byte) error {
	mem, ok := c.memory.get(h)
	if !ok {
		return errors.Wrapf(ErrUnknownHandle, "memory %d", h)
	}
	if len(data) == 0 {
		return nil
	}
	var ptr unsafe.Pointer
	ret := vk.MapMemory(c.device, mem, vk.DeviceSize(offset), vk.DeviceSize(len(data)), 0, &ptr)
	if err := NewError(ret); err != nil {
		return errors.Wrap(err, "map memory")
	}
	n := vk.Memcopy(ptr, data)
	vk.UnmapMemory(c.device, mem)
	if n != len(data) {
		return errors.Errorf("write memory: copied %d of %d bytes", n, len(data))
	}
	return nil
}
