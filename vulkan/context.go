// Package vulkan implements gpu.Device on top of vulkan-go. Entry points that
// vulkan-go does not expose (dynamic rendering, synchronization2, shader
// objects and the extended dynamic state setters) are resolved at runtime
// through the system loader with purego.
package vulkan

import (
	"context"
	"os"
	"runtime"
	"unsafe"

	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// Display supplies the instance extensions a window system needs.
// *glfw.Window satisfies it.
type Display interface {
	GetRequiredInstanceExtensions() []string
}

// Options configures NewContext.
type Options struct {
	AppName string
	// Validation enables the Khronos validation layer and a debug report
	// callback when they are available.
	Validation bool
	// Display is nil for a headless context with no swapchain support.
	Display Display
	// ProcAddr is vkGetInstanceProcAddr as exposed by the windowing library.
	// When nil the system loader is used.
	ProcAddr unsafe.Pointer
	Logger   *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// Context owns the instance, the chosen physical device, the logical device
// and its graphics queue. It implements gpu.Device.
type Context struct {
	log *slog.Logger

	loader    *loader
	instTable instanceTable
	table     deviceTable

	instance      vk.Instance
	debugCallback vk.DebugReportCallback
	hasDebug      bool
	physical      vk.PhysicalDevice
	device        vk.Device
	queue         vk.Queue

	report   DeviceReport
	families gpu.QueueFamilyIndices

	surfaces       registry[gpu.Surface, vk.Surface]
	swapchains     registry[gpu.Swapchain, swapchainEntry]
	images         registry[gpu.Image, imageEntry]
	views          registry[gpu.ImageView, vk.ImageView]
	buffers        registry[gpu.Buffer, vk.Buffer]
	memory         registry[gpu.Memory, vk.DeviceMemory]
	semaphores     registry[gpu.Semaphore, vk.Semaphore]
	fences         registry[gpu.Fence, vk.Fence]
	pools          registry[gpu.CommandPool, poolEntry]
	cmds           registry[gpu.CommandBuffer, vk.CommandBuffer]
	setLayouts     registry[gpu.DescriptorSetLayout, vk.DescriptorSetLayout]
	descPools      registry[gpu.DescriptorPool, descPoolEntry]
	sets           registry[gpu.DescriptorSet, vk.DescriptorSet]
	pipelineLayout registry[gpu.PipelineLayout, vk.PipelineLayout]
	shaders        registry[gpu.Shader, uint64]
}

var _ gpu.Device = (*Context)(nil)

// NewContext creates the instance, selects the first physical device that
// supports the shader object feature chain and creates the logical device.
func NewContext(opts Options) (*Context, error) {
	c := &Context{log: opts.logger()}
	if err := c.init(opts); err != nil {
		c.Destroy()
		return nil, err
	}
	return c, nil
}

func (c *Context) init(opts Options) error {
	if err := c.initInstance(opts); err != nil {
		return err
	}
	if err := c.selectDevice(opts.Display != nil); err != nil {
		return err
	}
	if err := c.createDevice(); err != nil {
		return err
	}
	return c.table.load(c.loader.deviceLookup(rawDevice(c.device)))
}

func (c *Context) initInstance(opts Options) (err error) {
	if c.loader, err = openLoader(); err != nil {
		return err
	}
	procAddr := opts.ProcAddr
	if procAddr == nil {
		procAddr = c.loader.procAddr()
	}
	vk.SetGetInstanceProcAddr(procAddr)
	if err = vk.Init(); err != nil {
		return errors.Wrap(err, "vulkan: init")
	}

	enabledExt, err := c.createInstance(opts)
	if err != nil {
		return err
	}
	if err = c.instTable.load(c.loader.instanceLookup(rawInstance(c.instance))); err != nil {
		return err
	}
	if opts.Validation && Has(enabledExt, extDebugReport) {
		return c.installDebugCallback()
	}
	return nil
}

func (c *Context) createInstance(opts Options) ([]string, error) {
	set := ExtensionSet{}
	if opts.Display != nil {
		set.Required = append(set.Required, opts.Display.GetRequiredInstanceExtensions()...)
	}
	if opts.Validation {
		set.Wanted = append(set.Wanted, extDebugReport)
	}
	var flags vk.InstanceCreateFlags
	if runtime.GOOS == "darwin" {
		set.Wanted = append(set.Wanted, extPortabilityEnumerate)
	}

	available, err := InstanceExtensions()
	if err != nil {
		return nil, err
	}
	if missing := set.Missing(available); len(missing) > 0 {
		c.log.Warn("vulkan: missing required instance extensions", slog.Any("missing", missing))
	}
	if missing := set.MissingWanted(available); len(missing) > 0 {
		c.log.Info("vulkan: optional instance extensions unavailable", slog.Any("missing", missing))
	}
	extensions, _ := checkExisting(available, set.Enable(available))
	if Has(extensions, extPortabilityEnumerate) {
		flags |= instanceCreatePortability
	}

	var layers []string
	if opts.Validation {
		actual, err := ValidationLayers()
		if err != nil {
			return nil, err
		}
		var missing int
		layers, missing = checkExisting(actual, []string{layerKhronosValidation})
		if missing > 0 {
			c.log.Warn("vulkan: validation layer unavailable", slog.String("layer", layerKhronosValidation))
		}
	}
	c.log.Info("vulkan: creating instance",
		slog.Int("extensions", len(extensions)), slog.Int("layers", len(layers)))

	appName := opts.AppName
	if appName == "" {
		appName = "varre"
	}
	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		Flags: flags,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         vk.MakeVersion(1, 3, 0),
			ApplicationVersion: vk.MakeVersion(1, 0, 0),
			PApplicationName:   safeString(appName),
			PEngineName:        "varre\x00",
			EngineVersion:      vk.MakeVersion(0, 1, 0),
		},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}, nil, &instance)
	if err := NewError(ret); err != nil {
		return nil, errors.Wrap(err, "create instance")
	}
	c.instance = instance
	if err := vk.InitInstance(instance); err != nil {
		return nil, errors.Wrap(err, "vulkan: init instance")
	}
	return extensions, nil
}

func (c *Context) installDebugCallback() error {
	ret := vk.CreateDebugReportCallback(c.instance, &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
			vk.DebugReportPerformanceWarningBit),
		PfnCallback: c.debugReport,
	}, nil, &c.debugCallback)
	if err := NewError(ret); err != nil {
		return errors.Wrap(err, "create debug report callback")
	}
	c.hasDebug = true
	c.log.Debug("vulkan: debug report callback installed")
	return nil
}

// debugReport forwards validation messages to the logger. It never affects
// control flow.
func (c *Context) debugReport(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	level := slog.LevelInfo
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		level = slog.LevelError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		level = slog.LevelWarn
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		level = slog.LevelDebug
	}
	c.log.Log(context.Background(), level, "vulkan: validation",
		slog.String("layer", pLayerPrefix),
		slog.Int("code", int(messageCode)),
		slog.Int("object_type", int(objectType)),
		slog.String("message", pMessage))
	return vk.Bool32(vk.False)
}

func (c *Context) selectDevice(present bool) error {
	devices, err := physicalDevices(c.instance)
	if err != nil {
		return err
	}
	exts := deviceExtensionSet(present)
	for i, pd := range devices {
		r := probeDevice(&c.instTable, i, pd, exts)
		if !r.Suitable {
			c.log.Info("vulkan: skipping device",
				slog.String("name", r.Properties.Name), slog.Any("missing", r.Missing))
			continue
		}
		c.report = r
		c.physical = pd
		c.families = gpu.FindQueueFamilies(r.Families)
		c.log.Info("vulkan: selected device",
			slog.String("name", r.Properties.Name),
			slog.String("type", r.Properties.Type.String()),
			slog.Bool("unified_layouts", r.UnifiedLayouts))
		return nil
	}
	return errors.Wrapf(ErrNoSuitableDevice, "%d devices checked", len(devices))
}

func (c *Context) createDevice() error {
	chain := newFeatureChain(c.report.UnifiedLayouts)
	chain.request(c.report.UnifiedLayouts)
	var pinner runtime.Pinner
	pinner.Pin(chain)
	defer pinner.Unpin()

	extensions := c.report.extensions
	if !c.report.UnifiedLayouts {
		extensions = withoutName(extensions, extUnifiedImageLayouts)
	}
	c.log.Info("vulkan: enabling device extensions", slog.Any("extensions", extensions))

	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: c.families.GraphicsCompute,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}
	var device vk.Device
	ret := vk.CreateDevice(c.physical, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		PNext:                   unsafe.Pointer(&chain.features2),
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}, nil, &device)
	if err := NewError(ret); err != nil {
		return errors.Wrap(err, "create device")
	}
	c.device = device

	var queue vk.Queue
	vk.GetDeviceQueue(device, c.families.GraphicsCompute, 0, &queue)
	c.queue = queue
	return nil
}

func withoutName(list []string, name string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if trimString(s) != name {
			out = append(out, s)
		}
	}
	return out
}

func (c *Context) Properties() gpu.DeviceProperties {
	return c.report.Properties
}

func (c *Context) QueueFamilies() gpu.QueueFamilyIndices {
	return c.families
}

func (c *Context) MemoryProperties() gpu.MemoryProperties {
	return c.report.Memory
}

// UnifiedImageLayouts reports whether VK_KHR_unified_image_layouts was enabled.
func (c *Context) UnifiedImageLayouts() bool {
	return c.report.UnifiedLayouts
}

func (c *Context) SupportsDepthFormat(f gpu.Format) bool {
	var props vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(c.physical, vk.Format(f), &props)
	props.Deref()
	want := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	return props.OptimalTilingFeatures&want == want
}

func (c *Context) WaitIdle() error {
	return NewError(vk.DeviceWaitIdle(c.device))
}

func (c *Context) QueueWaitIdle() error {
	return NewError(vk.QueueWaitIdle(c.queue))
}

// LiveObjects counts objects created through this context and not yet
// destroyed. Swapchain images are owned by their swapchain and not counted.
func (c *Context) LiveObjects() map[gpu.ObjectKind]int {
	owned := 0
	c.images.each(func(_ gpu.Image, e imageEntry) {
		if e.owned {
			owned++
		}
	})
	return map[gpu.ObjectKind]int{
		gpu.KindSurface:             c.surfaces.len(),
		gpu.KindSwapchain:           c.swapchains.len(),
		gpu.KindImage:               owned,
		gpu.KindImageView:           c.views.len(),
		gpu.KindBuffer:              c.buffers.len(),
		gpu.KindMemory:              c.memory.len(),
		gpu.KindSemaphore:           c.semaphores.len(),
		gpu.KindFence:               c.fences.len(),
		gpu.KindCommandPool:         c.pools.len(),
		gpu.KindDescriptorSetLayout: c.setLayouts.len(),
		gpu.KindDescriptorPool:      c.descPools.len(),
		gpu.KindPipelineLayout:      c.pipelineLayout.len(),
		gpu.KindShader:              c.shaders.len(),
	}
}

// Destroy tears down the device, the debug callback and the instance. Objects
// still alive at this point are reported and leaked.
func (c *Context) Destroy() {
	if c.device != nil {
		vk.DeviceWaitIdle(c.device)
		for kind, n := range c.LiveObjects() {
			if n > 0 {
				c.log.Warn("vulkan: object leaked at teardown", slog.String("kind", string(kind)), slog.Int("count", n))
			}
		}
		vk.DestroyDevice(c.device, nil)
		c.device = nil
	}
	if c.hasDebug {
		vk.DestroyDebugReportCallback(c.instance, c.debugCallback, nil)
		c.hasDebug = false
	}
	if c.instance != nil {
		vk.DestroyInstance(c.instance, nil)
		c.instance = nil
	}
	if c.loader != nil {
		c.loader.close()
		c.loader = nil
	}
}
