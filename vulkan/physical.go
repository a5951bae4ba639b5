package vulkan

import (
	"runtime"
	"unsafe"

	"github.com/andewx/varre/gpu"
	vk "github.com/vulkan-go/vulkan"
)

// featureChain is the pNext chain queried from and passed to the device.
// The links point into the same allocation, so pinning the chain pins every
// struct C walks through.
type featureChain struct {
	features2 physicalDeviceFeatures2
	v11       vulkan11Features
	v13       vulkan13Features
	shaderObj shaderObjectFeatures
	unified   unifiedImageLayoutsFeatures
}

func newFeatureChain(withUnified bool) *featureChain {
	c := &featureChain{}
	c.features2.sType = sTypePhysicalDeviceFeatures2
	c.v11.sType = sTypeVulkan11Features
	c.v13.sType = sTypeVulkan13Features
	c.shaderObj.sType = sTypeShaderObjectFeatures
	c.unified.sType = sTypeUnifiedImageLayoutsFeatures

	c.features2.pNext = unsafe.Pointer(&c.v11)
	c.v11.pNext = unsafe.Pointer(&c.v13)
	c.v13.pNext = unsafe.Pointer(&c.shaderObj)
	if withUnified {
		c.shaderObj.pNext = unsafe.Pointer(&c.unified)
	}
	return c
}

func (c *featureChain) supported() bool {
	return c.v13.fields[vulkan13DynamicRendering] == 1 &&
		c.v13.fields[vulkan13Synchronization2] == 1 &&
		c.v11.fields[vulkan11ShaderDrawParameters] == 1 &&
		c.shaderObj.shaderObject == 1
}

// request clears every queried feature and enables only the ones the engine
// relies on.
func (c *featureChain) request(unified bool) {
	c.features2.features = [55]uint32{}
	c.v11.fields = [12]uint32{}
	c.v13.fields = [15]uint32{}
	c.v11.fields[vulkan11ShaderDrawParameters] = 1
	c.v13.fields[vulkan13DynamicRendering] = 1
	c.v13.fields[vulkan13Synchronization2] = 1
	c.shaderObj.shaderObject = 1
	c.unified.unifiedImageLayouts = bool32(unified)
	c.unified.unifiedImageLayoutsVideo = 0
}

func queryFeatures(t *instanceTable, pd vk.PhysicalDevice, withUnified bool) *featureChain {
	c := newFeatureChain(withUnified)
	var pinner runtime.Pinner
	pinner.Pin(c)
	defer pinner.Unpin()
	t.getPhysicalDeviceFeatures2(rawPhysicalDevice(pd), &c.features2)
	return c
}

// DeviceReport summarizes one physical device and whether it can run the engine.
type DeviceReport struct {
	Index          int
	Properties     gpu.DeviceProperties
	Families       []gpu.QueueFamily
	Memory         gpu.MemoryProperties
	Suitable       bool
	Missing        []string
	UnifiedLayouts bool

	pd         vk.PhysicalDevice
	extensions []string
}

func physicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var count uint32
	if err := NewError(vk.EnumeratePhysicalDevices(instance, &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	list := make([]vk.PhysicalDevice, count)
	if err := NewError(vk.EnumeratePhysicalDevices(instance, &count, list)); err != nil {
		return nil, err
	}
	return list[:count], nil
}

func deviceProperties(pd vk.PhysicalDevice) gpu.DeviceProperties {
	var p vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(pd, &p)
	p.Deref()
	return gpu.DeviceProperties{
		Name:          vk.ToString(p.DeviceName[:]),
		Type:          gpu.DeviceType(p.DeviceType),
		APIVersion:    p.ApiVersion,
		DriverVersion: p.DriverVersion,
		VendorID:      p.VendorID,
		DeviceID:      p.DeviceID,
	}
}

func queueFamilies(pd vk.PhysicalDevice) []gpu.QueueFamily {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	list := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, list)
	out := make([]gpu.QueueFamily, 0, count)
	for _, f := range list[:count] {
		f.Deref()
		out = append(out, gpu.QueueFamily{Flags: gpu.QueueFlags(f.QueueFlags), Count: f.QueueCount})
	}
	return out
}

func memoryProperties(pd vk.PhysicalDevice) gpu.MemoryProperties {
	var mp vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(pd, &mp)
	mp.Deref()
	var out gpu.MemoryProperties
	for i := uint32(0); i < mp.MemoryTypeCount; i++ {
		t := mp.MemoryTypes[i]
		t.Deref()
		out.Types = append(out.Types, gpu.MemoryType{Flags: gpu.MemoryProperty(t.PropertyFlags), HeapIndex: t.HeapIndex})
	}
	for i := uint32(0); i < mp.MemoryHeapCount; i++ {
		h := mp.MemoryHeaps[i]
		h.Deref()
		out.Heaps = append(out.Heaps, uint64(h.Size))
	}
	return out
}

// probeDevice checks API version, device extensions, the feature chain and
// the presence of a graphics+compute queue family.
func probeDevice(t *instanceTable, index int, pd vk.PhysicalDevice, exts ExtensionSet) DeviceReport {
	r := DeviceReport{
		Index:      index,
		Properties: deviceProperties(pd),
		Families:   queueFamilies(pd),
		Memory:     memoryProperties(pd),
		pd:         pd,
	}
	if r.Properties.APIVersion < vk.MakeVersion(1, 3, 0) {
		r.Missing = append(r.Missing, "vulkan 1.3")
	}
	available, err := DeviceExtensions(pd)
	if err != nil {
		r.Missing = append(r.Missing, "extension list")
		return r
	}
	r.Missing = append(r.Missing, exts.Missing(available)...)
	r.extensions = exts.Enable(available)
	r.UnifiedLayouts = Has(r.extensions, extUnifiedImageLayouts)

	chain := queryFeatures(t, pd, r.UnifiedLayouts)
	if !chain.supported() {
		r.Missing = append(r.Missing, "shader object feature chain")
	}
	r.UnifiedLayouts = r.UnifiedLayouts && chain.unified.unifiedImageLayouts == 1
	if !gpu.FindQueueFamilies(r.Families).HasGraphics {
		r.Missing = append(r.Missing, "graphics+compute queue")
	}
	r.Suitable = len(r.Missing) == 0
	return r
}

func deviceExtensionSet(present bool) ExtensionSet {
	set := ExtensionSet{
		Required: []string{extShaderObject},
		Wanted:   []string{extUnifiedImageLayouts},
	}
	if present {
		set.Required = append(set.Required, extSwapchain)
	}
	return set
}
