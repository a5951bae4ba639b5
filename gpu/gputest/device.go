// Package gputest provides a recording in-memory gpu.Device for engine tests.
//
// The fake executes submissions instantly: a submitted fence is signaled as soon
// as Submit returns. Waiting on a fence that nothing will signal is reported as
// an error instead of hanging. Binary semaphores are tracked the same way:
// signaling one that already holds a pending signal, or waiting on one that
// holds none, is an error.
package gputest

import (
	"fmt"
	"sort"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/andewx/varre/gpu"
)

// Acquire records one AcquireNextImage call.
type Acquire struct {
	Swapchain gpu.Swapchain
	Signal    gpu.Semaphore
	Index     uint32
	Err       error
}

// Present records one Present call.
type Present struct {
	Swapchain gpu.Swapchain
	Index     uint32
	Wait      gpu.Semaphore
}

// Barrier records one image barrier with the command buffer it was recorded into.
type Barrier struct {
	Cmd gpu.CommandBuffer
	gpu.ImageBarrier
}

// Device is a fake gpu.Device. Exported fields configure the fake before use
// and hold the recorded history afterwards.
type Device struct {
	Props        gpu.DeviceProperties
	Families     gpu.QueueFamilyIndices
	Memory       gpu.MemoryProperties
	Caps         gpu.SurfaceCapabilities
	Formats      []gpu.SurfaceFormat
	PresentModes []gpu.PresentMode
	// DepthFormats limits supported depth formats. Nil supports every format.
	DepthFormats map[gpu.Format]bool
	// SwapchainImageCount overrides the number of images a swapchain gets.
	// Zero uses the requested MinImageCount.
	SwapchainImageCount int
	// AcquireOrder scripts the image indices returned by AcquireNextImage,
	// cycling when exhausted. Empty rotates through the swapchain images.
	AcquireOrder []uint32
	// AcquireErrs and PresentErrs inject errors by zero-based call number.
	AcquireErrs map[int]error
	PresentErrs map[int]error
	// Fail makes the named method return an error.
	Fail map[string]error
	// NoPresent makes SurfaceSupport report that no queue family can present.
	NoPresent bool

	Acquires   []Acquire
	Presents   []Present
	Submits    []gpu.SubmitInfo
	FenceWaits []gpu.Fence
	Barriers   []Barrier
	Swapchains []gpu.SwapchainInfo
	Shaders    []gpu.ShaderInfo
	Layouts    [][]gpu.DescriptorBinding
	Writes     map[gpu.Memory][]byte
	// Commands holds the commands recorded into each command buffer since it
	// was last begun.
	Commands  map[gpu.CommandBuffer][]string
	IdleWaits int
	Destroyed bool

	next       uint64
	live       map[gpu.ObjectKind]map[uint64]struct{}
	images     map[gpu.Swapchain][]gpu.Image
	signaled   map[gpu.Fence]bool
	pending    map[gpu.Semaphore]bool
	memory     map[gpu.Memory]uint64
	recording  map[gpu.CommandBuffer]bool
	boundSets  map[gpu.DescriptorSet]map[uint32]gpu.Buffer
	acquireNum int
	presentNum int
}

var _ gpu.Device = (*Device)(nil)

// NewDevice returns a fake with one universal queue family, a device-local and
// a host-visible memory type, and an 800x600 surface.
func NewDevice() *Device {
	return &Device{
		Props: gpu.DeviceProperties{Name: "fake", Type: gpu.DeviceTypeOther, APIVersion: 1<<22 | 3<<12},
		Families: gpu.FindQueueFamilies([]gpu.QueueFamily{
			{Flags: gpu.QueueGraphics | gpu.QueueCompute | gpu.QueueTransfer, Count: 1},
		}),
		Memory: gpu.MemoryProperties{
			Types: []gpu.MemoryType{
				{Flags: gpu.MemoryPropertyDeviceLocal},
				{Flags: gpu.MemoryPropertyHostVisible | gpu.MemoryPropertyHostCoherent},
			},
			Heaps: []uint64{1 << 30, 1 << 28},
		},
		Caps: gpu.SurfaceCapabilities{
			MinImageCount:       2,
			MaxImageCount:       8,
			CurrentExtent:       gpu.Extent2D{Width: 800, Height: 600},
			MinImageExtent:      gpu.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:      gpu.Extent2D{Width: 4096, Height: 4096},
			SupportedTransforms: gpu.SurfaceTransformIdentity,
			CurrentTransform:    gpu.SurfaceTransformIdentity,
			SupportedAlpha:      gpu.CompositeAlphaOpaque,
		},
		Formats:      []gpu.SurfaceFormat{{Format: gpu.FormatB8G8R8A8Srgb, ColorSpace: gpu.ColorSpaceSrgbNonlinear}},
		PresentModes: []gpu.PresentMode{gpu.PresentModeFifo, gpu.PresentModeMailbox},
		Writes:       map[gpu.Memory][]byte{},
		Commands:     map[gpu.CommandBuffer][]string{},
		live:         map[gpu.ObjectKind]map[uint64]struct{}{},
		images:       map[gpu.Swapchain][]gpu.Image{},
		signaled:     map[gpu.Fence]bool{},
		pending:      map[gpu.Semaphore]bool{},
		memory:       map[gpu.Memory]uint64{},
		recording:    map[gpu.CommandBuffer]bool{},
		boundSets:    map[gpu.DescriptorSet]map[uint32]gpu.Buffer{},
	}
}

func (d *Device) create(kind gpu.ObjectKind) uint64 {
	d.next++
	set, ok := d.live[kind]
	if !ok {
		set = map[uint64]struct{}{}
		d.live[kind] = set
	}
	set[d.next] = struct{}{}
	return d.next
}

func (d *Device) destroy(kind gpu.ObjectKind, h uint64) {
	if h == 0 {
		return
	}
	delete(d.live[kind], h)
}

func (d *Device) failure(method string) error {
	if err, ok := d.Fail[method]; ok {
		return err
	}
	return nil
}

// Live reports whether h of the given kind exists.
func (d *Device) Live(kind gpu.ObjectKind, h uint64) bool {
	_, ok := d.live[kind][h]
	return ok
}

func (d *Device) LiveObjects() map[gpu.ObjectKind]int {
	out := map[gpu.ObjectKind]int{}
	for kind, set := range d.live {
		if len(set) > 0 {
			out[kind] = len(set)
		}
	}
	return out
}

// Signaled reports the current state of a fence.
func (d *Device) Signaled(f gpu.Fence) bool {
	return d.signaled[f]
}

// Pending reports whether s holds a signal no wait has consumed yet.
func (d *Device) Pending(s gpu.Semaphore) bool {
	return d.pending[s]
}

// Count returns how many times name was recorded into cmd.
func (d *Device) Count(cmd gpu.CommandBuffer, name string) int {
	n := 0
	for _, c := range d.Commands[cmd] {
		if c == name {
			n++
		}
	}
	return n
}

func (d *Device) Properties() gpu.DeviceProperties { return d.Props }

func (d *Device) QueueFamilies() gpu.QueueFamilyIndices { return d.Families }

func (d *Device) MemoryProperties() gpu.MemoryProperties { return d.Memory }

func (d *Device) SupportsDepthFormat(f gpu.Format) bool {
	if d.DepthFormats == nil {
		return true
	}
	return d.DepthFormats[f]
}

func (d *Device) CreateSurface(w gpu.Window) (gpu.Surface, error) {
	if err := d.failure("CreateSurface"); err != nil {
		return 0, err
	}
	if w != nil {
		if _, err := w.CreateWindowSurface(nil, nil); err != nil {
			return 0, err
		}
	}
	return gpu.Surface(d.create(gpu.KindSurface)), nil
}

func (d *Device) DestroySurface(s gpu.Surface) { d.destroy(gpu.KindSurface, uint64(s)) }

func (d *Device) SurfaceSupport(s gpu.Surface, family uint32) (bool, error) {
	return !d.NoPresent, d.failure("SurfaceSupport")
}

func (d *Device) SurfaceCapabilities(s gpu.Surface) (gpu.SurfaceCapabilities, error) {
	return d.Caps, d.failure("SurfaceCapabilities")
}

func (d *Device) SurfaceFormats(s gpu.Surface) ([]gpu.SurfaceFormat, error) {
	return d.Formats, d.failure("SurfaceFormats")
}

func (d *Device) SurfacePresentModes(s gpu.Surface) ([]gpu.PresentMode, error) {
	return d.PresentModes, d.failure("SurfacePresentModes")
}

func (d *Device) CreateSwapchain(info gpu.SwapchainInfo) (gpu.Swapchain, error) {
	if err := d.failure("CreateSwapchain"); err != nil {
		return 0, err
	}
	d.Swapchains = append(d.Swapchains, info)
	sc := gpu.Swapchain(d.create(gpu.KindSwapchain))
	n := int(info.MinImageCount)
	if d.SwapchainImageCount > 0 {
		n = d.SwapchainImageCount
	}
	imgs := make([]gpu.Image, n)
	for i := range imgs {
		d.next++
		imgs[i] = gpu.Image(d.next)
	}
	d.images[sc] = imgs
	return sc, nil
}

func (d *Device) DestroySwapchain(sc gpu.Swapchain) {
	delete(d.images, sc)
	d.destroy(gpu.KindSwapchain, uint64(sc))
}

func (d *Device) SwapchainImages(sc gpu.Swapchain) ([]gpu.Image, error) {
	imgs, ok := d.images[sc]
	if !ok {
		return nil, errors.Errorf("unknown swapchain %d", sc)
	}
	return append([]gpu.Image(nil), imgs...), nil
}

func (d *Device) AcquireNextImage(sc gpu.Swapchain, signal gpu.Semaphore) (uint32, error) {
	if d.pending[signal] {
		return 0, errors.Errorf("acquire signals semaphore %d that already holds a pending signal", signal)
	}
	n := d.acquireNum
	d.acquireNum++

	var idx uint32
	if len(d.AcquireOrder) > 0 {
		idx = d.AcquireOrder[n%len(d.AcquireOrder)]
	} else if imgs := d.images[sc]; len(imgs) > 0 {
		idx = uint32(n % len(imgs))
	}
	err := d.AcquireErrs[n]
	if errors.Is(err, gpu.ErrOutOfDate) {
		idx = 0
	}
	d.Acquires = append(d.Acquires, Acquire{Swapchain: sc, Signal: signal, Index: idx, Err: err})
	if err == nil || errors.Is(err, gpu.ErrSuboptimal) {
		d.pending[signal] = true
	}
	return idx, err
}

func (d *Device) Present(sc gpu.Swapchain, imageIndex uint32, wait gpu.Semaphore) error {
	n := d.presentNum
	d.presentNum++
	if wait != 0 {
		if !d.pending[wait] {
			return errors.Errorf("present waits on semaphore %d that holds no signal", wait)
		}
		delete(d.pending, wait)
	}
	d.Presents = append(d.Presents, Present{Swapchain: sc, Index: imageIndex, Wait: wait})
	return d.PresentErrs[n]
}

func (d *Device) CreateImage(info gpu.ImageInfo) (gpu.Image, error) {
	if err := d.failure("CreateImage"); err != nil {
		return 0, err
	}
	return gpu.Image(d.create(gpu.KindImage)), nil
}

func (d *Device) DestroyImage(img gpu.Image) { d.destroy(gpu.KindImage, uint64(img)) }

func (d *Device) ImageMemoryRequirements(img gpu.Image) gpu.MemoryRequirements {
	return gpu.MemoryRequirements{Size: 4096, Alignment: 256, MemoryTypeBits: 0x1}
}

func (d *Device) BindImageMemory(img gpu.Image, mem gpu.Memory) error { return nil }

func (d *Device) CreateImageView(info gpu.ImageViewInfo) (gpu.ImageView, error) {
	if err := d.failure("CreateImageView"); err != nil {
		return 0, err
	}
	return gpu.ImageView(d.create(gpu.KindImageView)), nil
}

func (d *Device) DestroyImageView(v gpu.ImageView) { d.destroy(gpu.KindImageView, uint64(v)) }

func (d *Device) CreateBuffer(size uint64, usage gpu.BufferUsage) (gpu.Buffer, error) {
	if err := d.failure("CreateBuffer"); err != nil {
		return 0, err
	}
	if size == 0 {
		return 0, errors.New("buffer size must be non-zero")
	}
	return gpu.Buffer(d.create(gpu.KindBuffer)), nil
}

func (d *Device) DestroyBuffer(b gpu.Buffer) { d.destroy(gpu.KindBuffer, uint64(b)) }

func (d *Device) BufferMemoryRequirements(b gpu.Buffer) gpu.MemoryRequirements {
	return gpu.MemoryRequirements{Size: 256, Alignment: 16, MemoryTypeBits: 0x3}
}

func (d *Device) BindBufferMemory(b gpu.Buffer, mem gpu.Memory) error { return nil }

func (d *Device) AllocateMemory(size uint64, memoryType uint32) (gpu.Memory, error) {
	if err := d.failure("AllocateMemory"); err != nil {
		return 0, err
	}
	if int(memoryType) >= len(d.Memory.Types) {
		return 0, errors.Errorf("memory type %d out of range", memoryType)
	}
	m := gpu.Memory(d.create(gpu.KindMemory))
	d.memory[m] = size
	return m, nil
}

func (d *Device) FreeMemory(mem gpu.Memory) {
	delete(d.memory, mem)
	delete(d.Writes, mem)
	d.destroy(gpu.KindMemory, uint64(mem))
}

func (d *Device) WriteMemory(mem gpu.Memory, offset uint64, data []byte) error {
	size, ok := d.memory[mem]
	if !ok {
		return errors.Errorf("unknown memory %d", mem)
	}
	if offset+uint64(len(data)) > size {
		return errors.Errorf("write of %d bytes at %d exceeds allocation of %d", len(data), offset, size)
	}
	buf := d.Writes[mem]
	if uint64(len(buf)) < offset+uint64(len(data)) {
		grown := make([]byte, offset+uint64(len(data)))
		copy(grown, buf)
		buf = grown
	}
	copy(buf[offset:], data)
	d.Writes[mem] = buf
	return nil
}

func (d *Device) CreateSemaphore() (gpu.Semaphore, error) {
	if err := d.failure("CreateSemaphore"); err != nil {
		return 0, err
	}
	return gpu.Semaphore(d.create(gpu.KindSemaphore)), nil
}

func (d *Device) DestroySemaphore(s gpu.Semaphore) {
	delete(d.pending, s)
	d.destroy(gpu.KindSemaphore, uint64(s))
}

func (d *Device) CreateFence(signaled bool) (gpu.Fence, error) {
	if err := d.failure("CreateFence"); err != nil {
		return 0, err
	}
	f := gpu.Fence(d.create(gpu.KindFence))
	d.signaled[f] = signaled
	return f, nil
}

func (d *Device) DestroyFence(f gpu.Fence) {
	delete(d.signaled, f)
	d.destroy(gpu.KindFence, uint64(f))
}

func (d *Device) WaitFence(f gpu.Fence, timeout uint64) error {
	d.FenceWaits = append(d.FenceWaits, f)
	if !d.signaled[f] {
		return errors.Errorf("wait on fence %d that is never signaled", f)
	}
	return nil
}

func (d *Device) ResetFence(f gpu.Fence) error {
	d.signaled[f] = false
	return d.failure("ResetFence")
}

func (d *Device) WaitIdle() error {
	d.IdleWaits++
	return d.failure("WaitIdle")
}

func (d *Device) QueueWaitIdle() error { return d.failure("QueueWaitIdle") }

func (d *Device) CreateCommandPool(queueFamily uint32) (gpu.CommandPool, error) {
	if err := d.failure("CreateCommandPool"); err != nil {
		return 0, err
	}
	return gpu.CommandPool(d.create(gpu.KindCommandPool)), nil
}

func (d *Device) DestroyCommandPool(p gpu.CommandPool) { d.destroy(gpu.KindCommandPool, uint64(p)) }

func (d *Device) AllocateCommandBuffers(p gpu.CommandPool, count int) ([]gpu.CommandBuffer, error) {
	out := make([]gpu.CommandBuffer, count)
	for i := range out {
		d.next++
		out[i] = gpu.CommandBuffer(d.next)
	}
	return out, nil
}

func (d *Device) BeginCommandBuffer(cmd gpu.CommandBuffer, oneTime bool) error {
	if d.recording[cmd] {
		return errors.Errorf("command buffer %d already recording", cmd)
	}
	d.recording[cmd] = true
	d.Commands[cmd] = nil
	return nil
}

func (d *Device) EndCommandBuffer(cmd gpu.CommandBuffer) error {
	if !d.recording[cmd] {
		return errors.Errorf("command buffer %d not recording", cmd)
	}
	d.recording[cmd] = false
	return nil
}

func (d *Device) ResetCommandBuffer(cmd gpu.CommandBuffer) error {
	d.recording[cmd] = false
	return nil
}

func (d *Device) Submit(info gpu.SubmitInfo) error {
	if err := d.failure("Submit"); err != nil {
		return err
	}
	if d.recording[info.CommandBuffer] {
		return errors.Errorf("submit of command buffer %d still recording", info.CommandBuffer)
	}
	if info.Wait != 0 && !d.pending[info.Wait] {
		return errors.Errorf("submit waits on semaphore %d that holds no signal", info.Wait)
	}
	if info.Signal != 0 && d.pending[info.Signal] {
		return errors.Errorf("submit signals semaphore %d that already holds a pending signal", info.Signal)
	}
	delete(d.pending, info.Wait)
	if info.Signal != 0 {
		d.pending[info.Signal] = true
	}
	d.Submits = append(d.Submits, info)
	if info.Fence != 0 {
		d.signaled[info.Fence] = true
	}
	return nil
}

func (d *Device) CreateDescriptorSetLayout(bindings []gpu.DescriptorBinding) (gpu.DescriptorSetLayout, error) {
	d.Layouts = append(d.Layouts, append([]gpu.DescriptorBinding(nil), bindings...))
	return gpu.DescriptorSetLayout(d.create(gpu.KindDescriptorSetLayout)), nil
}

func (d *Device) DestroyDescriptorSetLayout(l gpu.DescriptorSetLayout) {
	d.destroy(gpu.KindDescriptorSetLayout, uint64(l))
}

func (d *Device) CreateDescriptorPool(maxSets uint32, sizes []gpu.DescriptorPoolSize) (gpu.DescriptorPool, error) {
	return gpu.DescriptorPool(d.create(gpu.KindDescriptorPool)), nil
}

func (d *Device) DestroyDescriptorPool(p gpu.DescriptorPool) {
	d.destroy(gpu.KindDescriptorPool, uint64(p))
}

func (d *Device) AllocateDescriptorSet(p gpu.DescriptorPool, l gpu.DescriptorSetLayout) (gpu.DescriptorSet, error) {
	if !d.Live(gpu.KindDescriptorPool, uint64(p)) {
		return 0, errors.Errorf("unknown descriptor pool %d", p)
	}
	d.next++
	return gpu.DescriptorSet(d.next), nil
}

func (d *Device) WriteBufferDescriptor(set gpu.DescriptorSet, binding uint32, typ gpu.DescriptorType, buf gpu.Buffer, offset, size uint64) {
	if d.boundSets[set] == nil {
		d.boundSets[set] = map[uint32]gpu.Buffer{}
	}
	d.boundSets[set][binding] = buf
}

// DescriptorBuffer returns the buffer written to a descriptor binding.
func (d *Device) DescriptorBuffer(set gpu.DescriptorSet, binding uint32) gpu.Buffer {
	return d.boundSets[set][binding]
}

func (d *Device) CreatePipelineLayout(layouts []gpu.DescriptorSetLayout) (gpu.PipelineLayout, error) {
	return gpu.PipelineLayout(d.create(gpu.KindPipelineLayout)), nil
}

func (d *Device) DestroyPipelineLayout(l gpu.PipelineLayout) {
	d.destroy(gpu.KindPipelineLayout, uint64(l))
}

func (d *Device) CreateShader(info gpu.ShaderInfo) (gpu.Shader, error) {
	if err := d.failure("CreateShader"); err != nil {
		return 0, err
	}
	d.Shaders = append(d.Shaders, info)
	return gpu.Shader(d.create(gpu.KindShader)), nil
}

func (d *Device) DestroyShader(s gpu.Shader) { d.destroy(gpu.KindShader, uint64(s)) }

func (d *Device) Destroy() { d.Destroyed = true }

// Leaks lists the live objects left behind, for test failure messages.
func (d *Device) Leaks() string {
	counts := d.LiveObjects()
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	s := ""
	for _, k := range kinds {
		s += fmt.Sprintf("%s=%d ", k, counts[gpu.ObjectKind(k)])
	}
	return s
}

func (d *Device) record(cmd gpu.CommandBuffer, name string) {
	d.Commands[cmd] = append(d.Commands[cmd], name)
}

func (d *Device) CmdPipelineBarrier(cmd gpu.CommandBuffer, barriers ...gpu.ImageBarrier) {
	for _, b := range barriers {
		d.Barriers = append(d.Barriers, Barrier{Cmd: cmd, ImageBarrier: b})
	}
	d.record(cmd, "PipelineBarrier")
}

func (d *Device) CmdBufferBarrier(cmd gpu.CommandBuffer, barriers ...gpu.BufferBarrier) {
	d.record(cmd, "BufferBarrier")
}

func (d *Device) CmdBeginRendering(cmd gpu.CommandBuffer, info gpu.RenderingInfo) {
	d.record(cmd, "BeginRendering")
}

func (d *Device) CmdEndRendering(cmd gpu.CommandBuffer) { d.record(cmd, "EndRendering") }

func (d *Device) CmdCopyBuffer(cmd gpu.CommandBuffer, src, dst gpu.Buffer, size uint64) {
	d.record(cmd, "CopyBuffer")
}

func (d *Device) CmdBindVertexBuffer(cmd gpu.CommandBuffer, binding uint32, buf gpu.Buffer, offset uint64) {
	d.record(cmd, "BindVertexBuffer")
}

func (d *Device) CmdBindIndexBuffer(cmd gpu.CommandBuffer, buf gpu.Buffer, offset uint64, typ gpu.IndexType) {
	d.record(cmd, "BindIndexBuffer")
}

func (d *Device) CmdBindDescriptorSets(cmd gpu.CommandBuffer, layout gpu.PipelineLayout, firstSet uint32, sets ...gpu.DescriptorSet) {
	d.record(cmd, "BindDescriptorSets")
}

func (d *Device) CmdBindShaders(cmd gpu.CommandBuffer, stages []gpu.ShaderStageFlags, shaders []gpu.Shader) {
	d.record(cmd, "BindShaders")
}

func (d *Device) CmdSetViewport(cmd gpu.CommandBuffer, viewports ...gpu.Viewport) {
	d.record(cmd, "SetViewport")
}

func (d *Device) CmdSetScissor(cmd gpu.CommandBuffer, scissors ...gpu.Rect2D) {
	d.record(cmd, "SetScissor")
}

func (d *Device) CmdSetRasterizerDiscardEnable(cmd gpu.CommandBuffer, enable bool) {
	d.record(cmd, "SetRasterizerDiscardEnable")
}

func (d *Device) CmdSetVertexInput(cmd gpu.CommandBuffer, bindings []gpu.VertexBinding, attributes []gpu.VertexAttribute) {
	d.record(cmd, "SetVertexInput")
}

func (d *Device) CmdSetPrimitiveTopology(cmd gpu.CommandBuffer, topology gpu.PrimitiveTopology) {
	d.record(cmd, "SetPrimitiveTopology")
}

func (d *Device) CmdSetPrimitiveRestartEnable(cmd gpu.CommandBuffer, enable bool) {
	d.record(cmd, "SetPrimitiveRestartEnable")
}

func (d *Device) CmdSetRasterizationSamples(cmd gpu.CommandBuffer, samples gpu.SampleCount) {
	d.record(cmd, "SetRasterizationSamples")
}

func (d *Device) CmdSetSampleMask(cmd gpu.CommandBuffer, samples gpu.SampleCount, mask uint32) {
	d.record(cmd, "SetSampleMask")
}

func (d *Device) CmdSetAlphaToCoverageEnable(cmd gpu.CommandBuffer, enable bool) {
	d.record(cmd, "SetAlphaToCoverageEnable")
}

func (d *Device) CmdSetPolygonMode(cmd gpu.CommandBuffer, mode gpu.PolygonMode) {
	d.record(cmd, "SetPolygonMode")
}

func (d *Device) CmdSetLineWidth(cmd gpu.CommandBuffer, width float32) {
	d.record(cmd, "SetLineWidth")
}

func (d *Device) CmdSetCullMode(cmd gpu.CommandBuffer, mode gpu.CullMode) {
	d.record(cmd, "SetCullMode")
}

func (d *Device) CmdSetFrontFace(cmd gpu.CommandBuffer, face gpu.FrontFace) {
	d.record(cmd, "SetFrontFace")
}

func (d *Device) CmdSetDepthTestEnable(cmd gpu.CommandBuffer, enable bool) {
	d.record(cmd, "SetDepthTestEnable")
}

func (d *Device) CmdSetDepthWriteEnable(cmd gpu.CommandBuffer, enable bool) {
	d.record(cmd, "SetDepthWriteEnable")
}

func (d *Device) CmdSetDepthCompareOp(cmd gpu.CommandBuffer, op gpu.CompareOp) {
	d.record(cmd, fmt.Sprintf("SetDepthCompareOp(%d)", op))
}

func (d *Device) CmdSetDepthBoundsTestEnable(cmd gpu.CommandBuffer, enable bool) {
	d.record(cmd, "SetDepthBoundsTestEnable")
}

func (d *Device) CmdSetDepthBiasEnable(cmd gpu.CommandBuffer, enable bool) {
	d.record(cmd, "SetDepthBiasEnable")
}

func (d *Device) CmdSetStencilTestEnable(cmd gpu.CommandBuffer, enable bool) {
	d.record(cmd, "SetStencilTestEnable")
}

func (d *Device) CmdSetColorBlendEnable(cmd gpu.CommandBuffer, firstAttachment uint32, enables []bool) {
	d.record(cmd, "SetColorBlendEnable")
}

func (d *Device) CmdSetColorBlendEquation(cmd gpu.CommandBuffer, firstAttachment uint32, equations []gpu.ColorBlendEquation) {
	d.record(cmd, "SetColorBlendEquation")
}

func (d *Device) CmdSetColorWriteMask(cmd gpu.CommandBuffer, firstAttachment uint32, masks []gpu.ColorComponent) {
	d.record(cmd, "SetColorWriteMask")
}

func (d *Device) CmdDraw(cmd gpu.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	d.record(cmd, fmt.Sprintf("Draw(%d)", vertexCount))
}

func (d *Device) CmdDrawIndexed(cmd gpu.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	d.record(cmd, fmt.Sprintf("DrawIndexed(%d)", indexCount))
}

// Window is a fake gpu.Window.
type Window struct {
	Err error
}

func (w Window) CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (uintptr, error) {
	if w.Err != nil {
		return 0, w.Err
	}
	return 1, nil
}
