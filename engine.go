package varre

import (
	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

// Engine drives one device, one window and one active render context through
// the acquire, record, submit and present cycle. It owns the device and
// destroys it last.
//
// An Engine must be used from a single goroutine.
type Engine struct {
	dev gpu.Device
	cfg Config
	log *slog.Logger

	pool   *commandPool
	frames *frameSync
	window *Window
	ctx    RenderContext

	frameIndex int
	frameCount uint64
	// abandoned is set when a frame fails between acquire and submit. The
	// acquired image and the slot semaphore stay claimed until Resize.
	abandoned bool
	destroyed bool
}

// Stats is a snapshot of the frame counters and the live device objects.
type Stats struct {
	Frames     uint64
	FrameIndex int
	Live       map[gpu.ObjectKind]int
}

// NewEngine takes ownership of dev and creates the command pool and the
// per-frame synchronization ring. On error dev is left to the caller.
func NewEngine(dev gpu.Device, cfg Config, log *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	families := dev.QueueFamilies()
	if !families.HasGraphics {
		return nil, errors.New("new engine: device has no graphics queue family")
	}
	pool, err := newCommandPool(dev, families.GraphicsCompute)
	if err != nil {
		return nil, err
	}
	frames, err := newFrameSync(dev, pool.draw)
	if err != nil {
		pool.destroy(dev)
		return nil, err
	}
	props := dev.Properties()
	log.Info("engine ready",
		slog.String("device", props.Name),
		slog.String("type", props.Type.String()),
		slog.Int("frames_in_flight", FramesInFlight))
	return &Engine{
		dev:    dev,
		cfg:    cfg,
		log:    log,
		pool:   pool,
		frames: frames,
	}, nil
}

func (e *Engine) Device() gpu.Device { return e.dev }

// Window returns the attached window, or nil before Attach.
func (e *Engine) Window() *Window { return e.window }

// FrameIndex is the frame-in-flight slot the next Draw uses.
func (e *Engine) FrameIndex() int { return e.frameIndex }

func (e *Engine) Stats() Stats {
	return Stats{
		Frames:     e.frameCount,
		FrameIndex: e.frameIndex,
		Live:       e.dev.LiveObjects(),
	}
}

// Attach creates the surface of w and the swapchain, views and depth target
// on it. width and height are used only when the surface leaves the size to
// the swapchain. On error nothing stays attached.
func (e *Engine) Attach(w gpu.Window, width, height uint32) (err error) {
	if e.window != nil {
		return ErrAlreadyAttached
	}
	win, err := newWindow(e.dev, e.log, w, width, height, e.cfg.PreferMailbox, e.dev.QueueFamilies().GraphicsCompute)
	if err != nil {
		return errors.Wrap(err, "attach")
	}
	e.window = win
	defer func() {
		if err != nil {
			if idleErr := e.dev.WaitIdle(); idleErr != nil {
				e.log.Error("attach: wait idle", slog.String("error", idleErr.Error()))
			}
			win.destroy()
			e.window = nil
		}
	}()
	if err := e.transitionDepth(); err != nil {
		return errors.Wrap(err, "attach")
	}
	if e.ctx != nil {
		return errors.Wrap(e.ctx.OnSwapchainResized(win.Extent()), "attach")
	}
	return nil
}

// Resize rebuilds the swapchain and everything sized by it against the same
// surface. It always rebuilds, so it also recovers from an out-of-date
// swapchain whose size did not change and from an abandoned frame.
func (e *Engine) Resize(width, height uint32) error {
	if e.window == nil {
		return ErrNotAttached
	}
	if err := e.dev.WaitIdle(); err != nil {
		return errors.Wrap(err, "resize: wait idle")
	}
	e.window.teardown()
	if err := e.frames.rebuild(e.dev); err != nil {
		return errors.Wrap(err, "resize")
	}
	e.abandoned = false
	if err := e.window.build(width, height); err != nil {
		return errors.Wrap(err, "resize")
	}
	if err := e.transitionDepth(); err != nil {
		return err
	}
	if e.ctx != nil {
		return errors.Wrap(e.ctx.OnSwapchainResized(e.window.Extent()), "resize")
	}
	return nil
}

// transitionDepth moves a fresh depth image to DEPTH_ATTACHMENT_OPTIMAL in a
// one-time submission so the frame loop normally skips the barrier.
func (e *Engine) transitionDepth() error {
	b, transition := e.window.depthBarrier()
	if !transition {
		return nil
	}
	err := e.pool.submitOnce(e.dev, func(cmd gpu.CommandBuffer) error {
		e.dev.CmdPipelineBarrier(cmd, b)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "depth transition")
	}
	e.window.depth.layout = b.NewLayout
	return nil
}

// SetRenderContext destroys the active render context, runs the setup of rc
// and makes it active. The engine owns rc from here on and destroys it when
// setup fails. A nil rc only clears the active context.
func (e *Engine) SetRenderContext(rc RenderContext) error {
	if err := e.dev.WaitIdle(); err != nil {
		return errors.Wrap(err, "set render context: wait idle")
	}
	if e.ctx != nil {
		e.ctx.Destroy(e.dev)
		e.ctx = nil
	}
	if rc == nil {
		return nil
	}
	err := e.pool.submitOnce(e.dev, func(cmd gpu.CommandBuffer) error {
		return rc.RecordSetup(e.dev, cmd)
	})
	if err != nil {
		rc.Destroy(e.dev)
		return errors.Wrap(err, "render context setup")
	}
	rc.FinishSetup(e.dev)
	if e.window != nil {
		if err := rc.OnSwapchainResized(e.window.Extent()); err != nil {
			rc.Destroy(e.dev)
			return errors.Wrap(err, "render context setup")
		}
	}
	e.ctx = rc
	return nil
}

// Draw renders and presents one frame. It returns an error wrapping
// ErrSwapchainOutOfDate when the swapchain must be rebuilt with Resize. A
// frame that fails after its image was acquired is abandoned: Draw returns
// that error and every later Draw reports out of date until Resize.
func (e *Engine) Draw() error {
	if e.window == nil {
		return ErrNotAttached
	}
	if e.ctx == nil {
		return ErrNoRenderContext
	}
	if e.abandoned {
		return errors.Wrap(ErrSwapchainOutOfDate, "draw: previous frame abandoned after acquire")
	}
	slot := e.frameIndex
	fence := e.frames.fences[slot]
	if err := e.dev.WaitFence(fence, gpu.MaxTimeout); err != nil {
		return errors.Wrap(err, "draw: wait frame fence")
	}

	win := e.window
	imageIndex, err := e.dev.AcquireNextImage(win.swapchain, e.frames.presentComplete[slot])
	switch {
	case errors.Is(err, gpu.ErrSuboptimal):
		e.log.Warn("acquire: swapchain suboptimal", slog.Int("frame", slot))
	case err != nil:
		return errors.Wrap(err, "draw: acquire")
	}
	if err := e.submitFrame(slot, imageIndex); err != nil {
		e.abandoned = true
		return err
	}

	err = e.dev.Present(win.swapchain, imageIndex, win.renderingComplete[imageIndex])
	e.frameIndex = (slot + 1) % FramesInFlight
	e.frameCount++
	switch {
	case errors.Is(err, gpu.ErrSuboptimal):
		e.log.Warn("present: swapchain suboptimal", slog.Int("image", int(imageIndex)))
	case err != nil:
		return errors.Wrap(err, "draw: present")
	}
	return nil
}

// submitFrame records and submits the frame for an acquired image. The depth
// layout is committed only once the submit is issued.
func (e *Engine) submitFrame(slot int, imageIndex uint32) error {
	win := e.window
	if int(imageIndex) >= len(win.images) {
		return errors.Errorf("draw: acquired image %d of %d", imageIndex, len(win.images))
	}
	cmd := e.frames.cmds[slot]
	depth, transition := win.depthBarrier()
	if err := e.record(cmd, slot, imageIndex, depth); err != nil {
		return err
	}
	// Reset only once the submit that signals it is certain to be issued.
	fence := e.frames.fences[slot]
	if err := e.dev.ResetFence(fence); err != nil {
		return errors.Wrap(err, "draw: reset frame fence")
	}
	err := e.dev.Submit(gpu.SubmitInfo{
		CommandBuffer: cmd,
		Wait:          e.frames.presentComplete[slot],
		WaitStage:     gpu.PipelineStageColorAttachmentOutput,
		Signal:        win.renderingComplete[imageIndex],
		Fence:         fence,
	})
	if err != nil {
		return errors.Wrap(err, "draw: submit")
	}
	if transition {
		win.depth.layout = depth.NewLayout
	}
	return nil
}

func (e *Engine) record(cmd gpu.CommandBuffer, slot int, imageIndex uint32, depth gpu.ImageBarrier) (err error) {
	win := e.window
	if err := e.dev.BeginCommandBuffer(cmd, true); err != nil {
		return errors.Wrap(err, "draw: begin")
	}
	defer func() {
		if endErr := e.dev.EndCommandBuffer(cmd); endErr != nil && err == nil {
			err = errors.Wrap(endErr, "draw: end")
		}
	}()

	color := win.images[imageIndex]
	barriers := []gpu.ImageBarrier{{
		Image:     color,
		Aspect:    gpu.ImageAspectColor,
		OldLayout: gpu.ImageLayoutUndefined,
		NewLayout: gpu.ImageLayoutColorAttachmentOptimal,
		SrcStage:  gpu.PipelineStageColorAttachmentOutput,
		DstStage:  gpu.PipelineStageColorAttachmentOutput,
		DstAccess: gpu.AccessColorAttachmentWrite,
	}, depth}
	e.dev.CmdPipelineBarrier(cmd, barriers...)

	target := FrameTarget{
		FrameIndex:  slot,
		ImageIndex:  imageIndex,
		ColorImage:  color,
		ColorView:   win.views[imageIndex],
		ColorFormat: win.format.Format,
		DepthImage:  win.depth.image,
		DepthView:   win.depth.view,
		DepthFormat: win.depth.format,
		Area:        win.area(),
		ClearColor:  e.cfg.ClearColor,
	}
	if err := e.ctx.RecordDraw(e.dev, cmd, target); err != nil {
		return errors.Wrap(err, "draw: record")
	}

	e.dev.CmdPipelineBarrier(cmd, gpu.ImageBarrier{
		Image:     color,
		Aspect:    gpu.ImageAspectColor,
		OldLayout: gpu.ImageLayoutColorAttachmentOptimal,
		NewLayout: gpu.ImageLayoutPresentSrc,
		SrcStage:  gpu.PipelineStageColorAttachmentOutput,
		SrcAccess: gpu.AccessColorAttachmentWrite,
		DstStage:  gpu.PipelineStageBottomOfPipe,
	})
	return nil
}

// Destroy waits for the device to go idle and releases everything in reverse
// order of creation, the device last. It is safe to call twice.
func (e *Engine) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	if err := e.dev.WaitIdle(); err != nil {
		e.log.Error("destroy: wait idle", slog.String("error", err.Error()))
	}
	closeAll(
		func() {
			if e.ctx != nil {
				e.ctx.Destroy(e.dev)
				e.ctx = nil
			}
		},
		func() {
			if e.window != nil {
				e.window.destroy()
				e.window = nil
			}
		},
		func() { e.frames.destroy(e.dev) },
		func() { e.pool.destroy(e.dev) },
		e.dev.Destroy,
	)
	e.log.Info("engine destroyed", slog.Uint64("frames", e.frameCount))
}
