package varre

import (
	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

// depthFormats is the depth format preference order, highest precision first.
var depthFormats = []gpu.Format{
	gpu.FormatD32Sfloat,
	gpu.FormatD32SfloatS8Uint,
	gpu.FormatD24UnormS8Uint,
	gpu.FormatD16Unorm,
}

type depthTarget struct {
	image  gpu.Image
	memory gpu.Memory
	view   gpu.ImageView
	format gpu.Format
	layout gpu.ImageLayout
}

// Window is the presentable surface of an attached window together with the
// swapchain built on it, one view per swapchain image, the depth target and
// the rendering-complete semaphores indexed by swapchain image.
type Window struct {
	dev           gpu.Device
	log           *slog.Logger
	preferMailbox bool

	surface   gpu.Surface
	swapchain gpu.Swapchain
	// images belong to the swapchain; views are ours.
	images            []gpu.Image
	views             []gpu.ImageView
	renderingComplete []gpu.Semaphore
	depth             depthTarget

	extent      gpu.Extent2D
	format      gpu.SurfaceFormat
	presentMode gpu.PresentMode
}

// newWindow creates the surface of w and builds the swapchain on it. The
// queue family presents, so it must support the surface.
func newWindow(dev gpu.Device, log *slog.Logger, w gpu.Window, width, height uint32, preferMailbox bool, family uint32) (*Window, error) {
	surface, err := dev.CreateSurface(w)
	if err != nil {
		return nil, errors.Wrap(err, "create surface")
	}
	win := &Window{
		dev:           dev,
		log:           log,
		preferMailbox: preferMailbox,
		surface:       surface,
	}
	supported, err := dev.SurfaceSupport(surface, family)
	if err != nil || !supported {
		win.destroy()
		if err != nil {
			return nil, errors.Wrap(err, "surface support")
		}
		return nil, errors.Wrapf(ErrNoPresentSupport, "queue family %d", family)
	}
	if err := win.build(width, height); err != nil {
		win.destroy()
		return nil, err
	}
	return win, nil
}

// build creates the swapchain and everything sized by it against the current
// surface. On error the partial set is torn down.
func (w *Window) build(width, height uint32) (err error) {
	defer func() {
		if err != nil {
			w.teardown()
		}
	}()
	caps, err := w.dev.SurfaceCapabilities(w.surface)
	if err != nil {
		return errors.Wrap(err, "surface capabilities")
	}
	formats, err := w.dev.SurfaceFormats(w.surface)
	if err != nil {
		return errors.Wrap(err, "surface formats")
	}
	modes, err := w.dev.SurfacePresentModes(w.surface)
	if err != nil {
		return errors.Wrap(err, "surface present modes")
	}
	if w.format, err = chooseSurfaceFormat(formats); err != nil {
		return err
	}
	w.presentMode = choosePresentMode(modes, w.preferMailbox)
	w.extent = chooseExtent(caps, width, height)

	w.swapchain, err = w.dev.CreateSwapchain(gpu.SwapchainInfo{
		Surface:        w.surface,
		MinImageCount:  chooseImageCount(caps),
		Format:         w.format.Format,
		ColorSpace:     w.format.ColorSpace,
		Extent:         w.extent,
		Usage:          gpu.ImageUsageColorAttachment,
		PreTransform:   chooseTransform(caps),
		CompositeAlpha: gpu.CompositeAlphaOpaque,
		PresentMode:    w.presentMode,
		Clipped:        true,
	})
	if err != nil {
		return errors.Wrap(err, "create swapchain")
	}
	if w.images, err = w.dev.SwapchainImages(w.swapchain); err != nil {
		return errors.Wrap(err, "swapchain images")
	}
	w.views = make([]gpu.ImageView, 0, len(w.images))
	w.renderingComplete = make([]gpu.Semaphore, 0, len(w.images))
	for i, img := range w.images {
		view, err := w.dev.CreateImageView(gpu.ImageViewInfo{
			Image:  img,
			Format: w.format.Format,
			Aspect: gpu.ImageAspectColor,
		})
		if err != nil {
			return errors.Wrapf(err, "swapchain image view %d", i)
		}
		w.views = append(w.views, view)
		sem, err := w.dev.CreateSemaphore()
		if err != nil {
			return errors.Wrapf(err, "rendering complete semaphore %d", i)
		}
		w.renderingComplete = append(w.renderingComplete, sem)
	}
	if err := w.buildDepth(); err != nil {
		return err
	}
	w.log.Info("swapchain built",
		slog.Int("width", int(w.extent.Width)),
		slog.Int("height", int(w.extent.Height)),
		slog.Int("images", len(w.images)),
		slog.String("present_mode", w.presentMode.String()),
		slog.Int("depth_format", int(w.depth.format)))
	return nil
}

func (w *Window) buildDepth() (err error) {
	d := &w.depth
	if d.format, err = chooseDepthFormat(w.dev); err != nil {
		return err
	}
	d.layout = gpu.ImageLayoutUndefined
	if d.image, err = w.dev.CreateImage(gpu.ImageInfo{
		Format: d.format,
		Extent: w.extent,
		Usage:  gpu.ImageUsageDepthStencilAttachment,
	}); err != nil {
		return errors.Wrap(err, "create depth image")
	}
	req := w.dev.ImageMemoryRequirements(d.image)
	if d.memory, err = allocate(w.dev, req, req.Size, gpu.MemoryPropertyDeviceLocal); err != nil {
		return errors.Wrap(err, "depth memory")
	}
	if err = w.dev.BindImageMemory(d.image, d.memory); err != nil {
		return errors.Wrap(err, "bind depth memory")
	}
	if d.view, err = w.dev.CreateImageView(gpu.ImageViewInfo{
		Image:  d.image,
		Format: d.format,
		Aspect: depthAspect(d.format),
	}); err != nil {
		return errors.Wrap(err, "create depth view")
	}
	return nil
}

// teardown destroys everything build created and keeps the surface.
func (w *Window) teardown() {
	d := &w.depth
	if d.view != 0 {
		w.dev.DestroyImageView(d.view)
	}
	if d.image != 0 {
		w.dev.DestroyImage(d.image)
	}
	if d.memory != 0 {
		w.dev.FreeMemory(d.memory)
	}
	w.depth = depthTarget{}
	for _, v := range w.views {
		w.dev.DestroyImageView(v)
	}
	for _, s := range w.renderingComplete {
		w.dev.DestroySemaphore(s)
	}
	w.views, w.renderingComplete, w.images = nil, nil, nil
	if w.swapchain != 0 {
		w.dev.DestroySwapchain(w.swapchain)
		w.swapchain = 0
	}
}

func (w *Window) destroy() {
	w.teardown()
	if w.surface != 0 {
		w.dev.DestroySurface(w.surface)
		w.surface = 0
	}
}

func (w *Window) Extent() gpu.Extent2D { return w.extent }

func (w *Window) ColorFormat() gpu.Format { return w.format.Format }

func (w *Window) DepthFormat() gpu.Format { return w.depth.format }

func (w *Window) DepthLayout() gpu.ImageLayout { return w.depth.layout }

func (w *Window) ImageCount() int { return len(w.images) }

func (w *Window) PresentMode() gpu.PresentMode { return w.presentMode }

func (w *Window) area() gpu.Rect2D { return gpu.Rect2D{Extent: w.extent} }

// depthBarrier moves the depth image from its tracked layout to
// DEPTH_ATTACHMENT_OPTIMAL. The bool is false when it is already there; the
// barrier then only orders this frame's depth clear after the depth writes of
// the frame before it, since every frame in flight shares the one image.
func (w *Window) depthBarrier() (gpu.ImageBarrier, bool) {
	tests := gpu.PipelineStageEarlyFragmentTests | gpu.PipelineStageLateFragmentTests
	access := gpu.AccessDepthStencilAttachmentRead | gpu.AccessDepthStencilAttachmentWrite
	if w.depth.layout == gpu.ImageLayoutDepthAttachmentOptimal {
		return gpu.ImageBarrier{
			Image:     w.depth.image,
			Aspect:    depthAspect(w.depth.format),
			OldLayout: gpu.ImageLayoutDepthAttachmentOptimal,
			NewLayout: gpu.ImageLayoutDepthAttachmentOptimal,
			SrcStage:  gpu.PipelineStageLateFragmentTests,
			SrcAccess: gpu.AccessDepthStencilAttachmentWrite,
			DstStage:  tests,
			DstAccess: access,
		}, false
	}
	return gpu.ImageBarrier{
		Image:     w.depth.image,
		Aspect:    depthAspect(w.depth.format),
		OldLayout: w.depth.layout,
		NewLayout: gpu.ImageLayoutDepthAttachmentOptimal,
		SrcStage:  tests,
		DstStage:  tests,
		SrcAccess: access,
		DstAccess: access,
	}, true
}

func depthAspect(f gpu.Format) gpu.ImageAspect {
	if f.HasStencil() {
		return gpu.ImageAspectDepth | gpu.ImageAspectStencil
	}
	return gpu.ImageAspectDepth
}

// choosePresentMode picks MAILBOX when preferred and available. FIFO is
// always supported.
func choosePresentMode(modes []gpu.PresentMode, preferMailbox bool) gpu.PresentMode {
	if preferMailbox {
		for _, m := range modes {
			if m == gpu.PresentModeMailbox {
				return m
			}
		}
	}
	return gpu.PresentModeFifo
}

func chooseImageCount(caps gpu.SurfaceCapabilities) uint32 {
	n := caps.MinImageCount + 1
	if caps.MaxImageCount != 0 && n > caps.MaxImageCount {
		n = caps.MaxImageCount
	}
	return n
}

// chooseExtent uses the surface's current extent unless the surface leaves
// the size to the swapchain.
func chooseExtent(caps gpu.SurfaceCapabilities, width, height uint32) gpu.Extent2D {
	if caps.CurrentExtent.Width != gpu.UndefinedExtent {
		return caps.CurrentExtent
	}
	return gpu.Extent2D{
		Width:  clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func chooseTransform(caps gpu.SurfaceCapabilities) gpu.SurfaceTransform {
	if caps.SupportedTransforms&gpu.SurfaceTransformIdentity != 0 {
		return gpu.SurfaceTransformIdentity
	}
	return caps.CurrentTransform
}

// chooseSurfaceFormat takes the first reported format. A lone UNDEFINED entry
// means any format is accepted.
func chooseSurfaceFormat(formats []gpu.SurfaceFormat) (gpu.SurfaceFormat, error) {
	if len(formats) == 0 {
		return gpu.SurfaceFormat{}, ErrNoSurfaceFormat
	}
	f := formats[0].Format
	if f == gpu.FormatUndefined {
		f = gpu.FormatB8G8R8A8Unorm
	}
	return gpu.SurfaceFormat{Format: f, ColorSpace: gpu.ColorSpaceSrgbNonlinear}, nil
}

func chooseDepthFormat(dev gpu.Device) (gpu.Format, error) {
	for _, f := range depthFormats {
		if dev.SupportsDepthFormat(f) {
			return f, nil
		}
	}
	return gpu.FormatUndefined, ErrNoDepthFormat
}
