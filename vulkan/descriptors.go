package vulkan

import (
	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

type descPoolEntry struct {
	pool vk.DescriptorPool
	sets []gpu.DescriptorSet
}

func (c *Context) CreateDescriptorSetLayout(bindings []gpu.DescriptorBinding) (gpu.DescriptorSetLayout, error) {
	list := make([]vk.DescriptorSetLayoutBinding, 0, len(bindings))
	for _, b := range bindings {
		count := b.Count
		if count == 0 {
			count = 1
		}
		list = append(list, vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  vk.DescriptorType(b.Type),
			DescriptorCount: count,
			StageFlags:      vk.ShaderStageFlags(b.Stages),
		})
	}
	var layout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(c.device, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(list)),
		PBindings:    list,
	}, nil, &layout)
	if err := NewError(ret); err != nil {
		return 0, errors.Wrap(err, "create descriptor set layout")
	}
	return c.setLayouts.add(layout), nil
}

func (c *Context) DestroyDescriptorSetLayout(h gpu.DescriptorSetLayout) {
	if layout, ok := c.setLayouts.remove(h); ok {
		vk.DestroyDescriptorSetLayout(c.device, layout, nil)
	}
}

func (c *Context) CreateDescriptorPool(maxSets uint32, sizes []gpu.DescriptorPoolSize) (gpu.DescriptorPool, error) {
	if len(sizes) == 0 {
		return 0, errors.New("create descriptor pool: no pool sizes")
	}
	list := make([]vk.DescriptorPoolSize, 0, len(sizes))
	for _, s := range sizes {
		list = append(list, vk.DescriptorPoolSize{
			Type:            vk.DescriptorType(s.Type),
			DescriptorCount: s.Count,
		})
	}
	var pool vk.DescriptorPool
	ret := vk.CreateDescriptorPool(c.device, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       maxSets,
		PoolSizeCount: uint32(len(list)),
		PPoolSizes:    list,
	}, nil, &pool)
	if err := NewError(ret); err != nil {
		return 0, errors.Wrap(err, "create descriptor pool")
	}
	return c.descPools.add(descPoolEntry{pool: pool}), nil
}

// DestroyDescriptorPool releases the pool and every set allocated from it.
func (c *Context) DestroyDescriptorPool(h gpu.DescriptorPool) {
	e, ok := c.descPools.remove(h)
	if !ok {
		return
	}
	for _, s := range e.sets {
		c.sets.remove(s)
	}
	vk.DestroyDescriptorPool(c.device, e.pool, nil)
}

func (c *Context) AllocateDescriptorSet(p gpu.DescriptorPool, l gpu.DescriptorSetLayout) (gpu.DescriptorSet, error) {
	e, ok := c.descPools.get(p)
	if !ok {
		return 0, errors.Wrapf(ErrUnknownHandle, "descriptor pool %d", p)
	}
	layout, ok := c.setLayouts.get(l)
	if !ok {
		return 0, errors.Wrapf(ErrUnknownHandle, "descriptor set layout %d", l)
	}
	var set vk.DescriptorSet
	ret := vk.AllocateDescriptorSets(c.device, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     e.pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}, &set)
	if err := NewError(ret); err != nil {
		return 0, errors.Wrap(err, "allocate descriptor set")
	}
	h := c.sets.add(set)
	e.sets = append(e.sets, h)
	c.descPools.items[p] = e
	return h, nil
}

func (c *Context) WriteBufferDescriptor(h gpu.DescriptorSet, binding uint32, typ gpu.DescriptorType, buf gpu.Buffer, offset, size uint64) {
	set, ok := c.sets.get(h)
	if !ok {
		c.log.Warn("vulkan: write to unknown descriptor set")
		return
	}
	b, ok := c.buffers.get(buf)
	if !ok {
		c.log.Warn("vulkan: descriptor write with unknown buffer")
		return
	}
	vk.UpdateDescriptorSets(c.device, 1, []vk.WriteDescriptorSet{{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      binding,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorType(typ),
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: b,
			Offset: vk.DeviceSize(offset),
			Range:  vk.DeviceSize(size),
		}},
	}}, 0, nil)
}

func (c *Context) CreatePipelineLayout(layouts []gpu.DescriptorSetLayout) (gpu.PipelineLayout, error) {
	list := make([]vk.DescriptorSetLayout, 0, len(layouts))
	for _, l := range layouts {
		layout, ok := c.setLayouts.get(l)
		if !ok {
			return 0, errors.Wrapf(ErrUnknownHandle, "descriptor set layout %d", l)
		}
		list = append(list, layout)
	}
	var pl vk.PipelineLayout
	ret := vk.CreatePipelineLayout(c.device, &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(list)),
		PSetLayouts:    list,
	}, nil, &pl)
	if err := NewError(ret); err != nil {
		return 0, errors.Wrap(err, "create pipeline layout")
	}
	return c.pipelineLayout.add(pl), nil
}

func (c *Context) DestroyPipelineLayout(h gpu.PipelineLayout) {
	if pl, ok := c.pipelineLayout.remove(h); ok {
		vk.DestroyPipelineLayout(c.device, pl, nil)
	}
}
