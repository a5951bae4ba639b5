package varre

import (
	"reflect"
	"testing"

	"github.com/andewx/varre/gpu"
	"github.com/andewx/varre/gpu/gputest"
	"github.com/pkg/errors"
)

type recordingContext struct {
	BaseRenderContext
	resized   []gpu.Extent2D
	setups    int
	finished  int
	draws     []FrameTarget
	destroyed int
	drawErr   error
}

func (c *recordingContext) OnSwapchainResized(extent gpu.Extent2D) error {
	c.resized = append(c.resized, extent)
	return nil
}

func (c *recordingContext) RecordSetup(dev gpu.Device, cmd gpu.CommandBuffer) error {
	c.setups++
	return nil
}

func (c *recordingContext) FinishSetup(dev gpu.Device) { c.finished++ }

func (c *recordingContext) RecordDraw(rec gpu.Recorder, cmd gpu.CommandBuffer, target FrameTarget) error {
	c.draws = append(c.draws, target)
	return c.drawErr
}

func (c *recordingContext) Destroy(dev gpu.Device) { c.destroyed++ }

func TestFrameIndexCycles(t *testing.T) {
	dev := gputest.NewDevice()
	e := newRunningEngine(t, dev)
	defer e.Destroy()

	waitsBefore := len(dev.FenceWaits)
	for k := 0; k < 3*FramesInFlight+1; k++ {
		if got := e.FrameIndex(); got != k%FramesInFlight {
			t.Fatalf("frame %d: FrameIndex = %d, want %d", k, got, k%FramesInFlight)
		}
		if err := e.Draw(); err != nil {
			t.Fatalf("frame %d: Draw: %v", k, err)
		}
		if got, want := dev.FenceWaits[waitsBefore+k], e.frames.fences[k%FramesInFlight]; got != want {
			t.Errorf("frame %d waited on fence %d, want %d", k, got, want)
		}
	}
	if s := e.Stats(); s.Frames != 3*FramesInFlight+1 {
		t.Errorf("Stats().Frames = %d", s.Frames)
	}
}

func TestRenderingCompleteFollowsAcquiredImage(t *testing.T) {
	dev := gputest.NewDevice()
	dev.SwapchainImageCount = 2
	dev.AcquireOrder = []uint32{1, 0, 1, 0}
	e := newRunningEngine(t, dev)
	defer e.Destroy()

	var frameSubmits []gpu.SubmitInfo
	for i := range dev.AcquireOrder {
		if err := e.Draw(); err != nil {
			t.Fatalf("Draw %d: %v", i, err)
		}
		frameSubmits = append(frameSubmits, dev.Submits[len(dev.Submits)-1])
	}
	win := e.Window()
	for i, idx := range dev.AcquireOrder {
		p := dev.Presents[i]
		if p.Index != idx {
			t.Errorf("present %d: index %d, want %d", i, p.Index, idx)
		}
		if p.Wait != win.renderingComplete[idx] {
			t.Errorf("present %d waits on %d, want renderingComplete[%d]=%d", i, p.Wait, idx, win.renderingComplete[idx])
		}
		s := frameSubmits[i]
		if s.Signal != p.Wait {
			t.Errorf("submit %d signals %d, present waits on %d", i, s.Signal, p.Wait)
		}
		if s.Wait != dev.Acquires[i].Signal {
			t.Errorf("submit %d waits on %d, acquire signaled %d", i, s.Wait, dev.Acquires[i].Signal)
		}
		if s.Wait != e.frames.presentComplete[i%FramesInFlight] {
			t.Errorf("submit %d waits on %d, want presentComplete[%d]", i, s.Wait, i%FramesInFlight)
		}
		if s.WaitStage != gpu.PipelineStageColorAttachmentOutput {
			t.Errorf("submit %d wait stage %#x", i, s.WaitStage)
		}
		if s.Fence != e.frames.fences[i%FramesInFlight] {
			t.Errorf("submit %d fence %d, want slot fence", i, s.Fence)
		}
	}
}

func TestFrameRecording(t *testing.T) {
	dev := gputest.NewDevice()
	e := newRunningEngine(t, dev)
	defer e.Destroy()

	barriersBefore := len(dev.Barriers)
	if err := e.Draw(); err != nil {
		t.Fatal(err)
	}
	cmd := e.frames.cmds[0]
	cmds := dev.Commands[cmd]
	if len(cmds) < 3 {
		t.Fatalf("recorded %v", cmds)
	}
	if cmds[0] != "PipelineBarrier" || cmds[len(cmds)-1] != "PipelineBarrier" {
		t.Errorf("frame not bracketed by barriers: %v", cmds)
	}
	if dev.Count(cmd, "Draw(3)") != 1 || dev.Count(cmd, "BeginRendering") != 1 {
		t.Errorf("triangle draw missing: %v", cmds)
	}

	frame := dev.Barriers[barriersBefore:]
	if len(frame) != 3 {
		t.Fatalf("got %d barriers in frame, want color in, depth and color out: %+v", len(frame), frame)
	}
	in, depth, out := frame[0], frame[1], frame[2]
	img := e.Window().images[dev.Presents[0].Index]
	if in.Image != img || in.OldLayout != gpu.ImageLayoutUndefined || in.NewLayout != gpu.ImageLayoutColorAttachmentOptimal {
		t.Errorf("color in barrier = %+v", in.ImageBarrier)
	}
	if in.DstAccess != gpu.AccessColorAttachmentWrite || in.DstStage != gpu.PipelineStageColorAttachmentOutput {
		t.Errorf("color in barrier sync = %+v", in.ImageBarrier)
	}
	if out.Image != img || out.OldLayout != gpu.ImageLayoutColorAttachmentOptimal || out.NewLayout != gpu.ImageLayoutPresentSrc {
		t.Errorf("color out barrier = %+v", out.ImageBarrier)
	}
	if out.DstStage != gpu.PipelineStageBottomOfPipe {
		t.Errorf("color out dst stage = %#x", out.DstStage)
	}

	optimal := gpu.ImageLayoutDepthAttachmentOptimal
	if depth.Image != e.Window().depth.image || depth.OldLayout != optimal || depth.NewLayout != optimal {
		t.Errorf("depth barrier = %+v, want a same-layout barrier", depth.ImageBarrier)
	}
	if depth.SrcStage != gpu.PipelineStageLateFragmentTests || depth.SrcAccess != gpu.AccessDepthStencilAttachmentWrite {
		t.Errorf("depth barrier src = %#x/%#x, want late tests after depth writes", depth.SrcStage, depth.SrcAccess)
	}
	tests := gpu.PipelineStageEarlyFragmentTests | gpu.PipelineStageLateFragmentTests
	if depth.DstStage != tests || depth.DstAccess != gpu.AccessDepthStencilAttachmentRead|gpu.AccessDepthStencilAttachmentWrite {
		t.Errorf("depth barrier dst = %#x/%#x", depth.DstStage, depth.DstAccess)
	}
}

func depthTransitions(dev *gputest.Device) int {
	n := 0
	for _, b := range dev.Barriers {
		if b.NewLayout == gpu.ImageLayoutDepthAttachmentOptimal && b.OldLayout != b.NewLayout {
			n++
		}
	}
	return n
}

func TestDepthTransitionOncePerBuild(t *testing.T) {
	dev := gputest.NewDevice()
	e := newRunningEngine(t, dev)
	defer e.Destroy()

	if e.Window().DepthLayout() != gpu.ImageLayoutDepthAttachmentOptimal {
		t.Fatalf("depth layout after attach = %v", e.Window().DepthLayout())
	}
	for i := 0; i < 5; i++ {
		if err := e.Draw(); err != nil {
			t.Fatal(err)
		}
	}
	if n := depthTransitions(dev); n != 1 {
		t.Errorf("depth transitions after attach and 5 frames = %d, want 1", n)
	}
	if dev.Barriers[0].Cmd != e.pool.oneTime {
		t.Errorf("depth transition recorded into %d, want the one-time buffer", dev.Barriers[0].Cmd)
	}
	if err := e.Resize(800, 600); err != nil {
		t.Fatal(err)
	}
	if err := e.Draw(); err != nil {
		t.Fatal(err)
	}
	if n := depthTransitions(dev); n != 2 {
		t.Errorf("depth transitions after resize = %d, want 2", n)
	}
}

func TestDepthBarrierAspect(t *testing.T) {
	dev := gputest.NewDevice()
	dev.DepthFormats = map[gpu.Format]bool{gpu.FormatD24UnormS8Uint: true}
	e := newRunningEngine(t, dev)
	defer e.Destroy()

	b := dev.Barriers[0]
	if b.Aspect != gpu.ImageAspectDepth|gpu.ImageAspectStencil {
		t.Errorf("aspect = %#x, want depth|stencil", b.Aspect)
	}
	tests := gpu.PipelineStageEarlyFragmentTests | gpu.PipelineStageLateFragmentTests
	if b.SrcStage != tests || b.DstStage != tests {
		t.Errorf("stages = %#x -> %#x", b.SrcStage, b.DstStage)
	}
}

func TestResizeIsIdempotent(t *testing.T) {
	dev := gputest.NewDevice()
	e := newRunningEngine(t, dev)
	defer e.Destroy()

	if err := e.Draw(); err != nil {
		t.Fatal(err)
	}
	before := dev.LiveObjects()
	swapchains := len(dev.Swapchains)
	for i := 0; i < 3; i++ {
		if err := e.Resize(800, 600); err != nil {
			t.Fatalf("Resize %d: %v", i, err)
		}
		if got := dev.LiveObjects(); !reflect.DeepEqual(got, before) {
			t.Fatalf("live objects after resize %d = %v, want %v", i, got, before)
		}
	}
	if got := len(dev.Swapchains) - swapchains; got != 3 {
		t.Errorf("swapchains created by 3 resizes = %d", got)
	}
	if e.Window().Extent() != (gpu.Extent2D{Width: 800, Height: 600}) {
		t.Errorf("extent = %+v", e.Window().Extent())
	}
	if err := e.Draw(); err != nil {
		t.Fatalf("Draw after resize: %v", err)
	}
}

func TestResizeNotifiesContext(t *testing.T) {
	dev := gputest.NewDevice()
	dev.Caps.CurrentExtent = gpu.Extent2D{Width: gpu.UndefinedExtent, Height: gpu.UndefinedExtent}
	e := newEngine(t, dev)
	defer e.Destroy()

	rc := &recordingContext{}
	if err := e.SetRenderContext(rc); err != nil {
		t.Fatal(err)
	}
	if rc.setups != 1 || rc.finished != 1 || len(rc.resized) != 0 {
		t.Fatalf("before attach: setups=%d finished=%d resized=%v", rc.setups, rc.finished, rc.resized)
	}
	if err := e.Attach(gputest.Window{}, 640, 480); err != nil {
		t.Fatal(err)
	}
	if err := e.Resize(1024, 768); err != nil {
		t.Fatal(err)
	}
	want := []gpu.Extent2D{{Width: 640, Height: 480}, {Width: 1024, Height: 768}}
	if !reflect.DeepEqual(rc.resized, want) {
		t.Errorf("resized = %v, want %v", rc.resized, want)
	}
	if err := e.Draw(); err != nil {
		t.Fatal(err)
	}
	target := rc.draws[0]
	if target.Area.Extent != want[1] {
		t.Errorf("draw area = %+v", target.Area)
	}
	if target.ClearColor != DefaultConfig().ClearColor {
		t.Errorf("clear color = %v", target.ClearColor)
	}
	if target.DepthView == 0 || target.ColorView == 0 {
		t.Errorf("target views missing: %+v", target)
	}
}

func TestAcquireOutOfDateThenResize(t *testing.T) {
	dev := gputest.NewDevice()
	dev.AcquireErrs = map[int]error{1: gpu.ErrOutOfDate}
	e := newRunningEngine(t, dev)
	defer e.Destroy()

	if err := e.Draw(); err != nil {
		t.Fatal(err)
	}
	err := e.Draw()
	if !errors.Is(err, ErrSwapchainOutOfDate) {
		t.Fatalf("Draw = %v, want out of date", err)
	}
	if e.FrameIndex() != 1 {
		t.Errorf("FrameIndex after failed acquire = %d, want 1", e.FrameIndex())
	}
	if !dev.Signaled(e.frames.fences[1]) {
		t.Error("failed acquire left the slot fence unsignaled")
	}
	oldSems := e.frames.presentComplete
	if err := e.Resize(800, 600); err != nil {
		t.Fatal(err)
	}
	if e.frames.presentComplete == oldSems {
		t.Error("resize kept the present-complete semaphores")
	}
	for i := 0; i < 4; i++ {
		if err := e.Draw(); err != nil {
			t.Fatalf("Draw %d after resize: %v", i, err)
		}
	}
}

func TestPresentOutOfDate(t *testing.T) {
	dev := gputest.NewDevice()
	dev.PresentErrs = map[int]error{0: gpu.ErrOutOfDate}
	e := newRunningEngine(t, dev)
	defer e.Destroy()

	if err := e.Draw(); !errors.Is(err, ErrSwapchainOutOfDate) {
		t.Fatalf("Draw = %v, want out of date", err)
	}
	if e.FrameIndex() != 1 {
		t.Errorf("FrameIndex = %d, want 1 after a submitted frame", e.FrameIndex())
	}
	if err := e.Resize(800, 600); err != nil {
		t.Fatal(err)
	}
	if err := e.Draw(); err != nil {
		t.Fatal(err)
	}
}

func TestSuboptimalIsNotAnError(t *testing.T) {
	dev := gputest.NewDevice()
	dev.AcquireErrs = map[int]error{0: gpu.ErrSuboptimal}
	dev.PresentErrs = map[int]error{1: gpu.ErrSuboptimal}
	e := newRunningEngine(t, dev)
	defer e.Destroy()

	for i := 0; i < 2; i++ {
		if err := e.Draw(); err != nil {
			t.Fatalf("Draw %d: %v", i, err)
		}
	}
	if len(dev.Presents) != 2 {
		t.Errorf("presents = %d, want 2", len(dev.Presents))
	}
}

func TestFailedFrameRequiresResize(t *testing.T) {
	dev := gputest.NewDevice()
	e := newEngine(t, dev)
	defer e.Destroy()
	if err := e.Attach(gputest.Window{}, 800, 600); err != nil {
		t.Fatal(err)
	}
	rc := &recordingContext{drawErr: errors.New("boom")}
	if err := e.SetRenderContext(rc); err != nil {
		t.Fatal(err)
	}
	if err := e.Draw(); err == nil || errors.Is(err, ErrSwapchainOutOfDate) {
		t.Fatalf("Draw with a failing context = %v", err)
	}
	if !dev.Signaled(e.frames.fences[0]) {
		t.Error("slot fence reset without a submit")
	}
	if !dev.Pending(e.frames.presentComplete[0]) {
		t.Fatal("acquire did not signal the slot semaphore")
	}

	rc.drawErr = nil
	acquires := len(dev.Acquires)
	if err := e.Draw(); !errors.Is(err, ErrSwapchainOutOfDate) {
		t.Fatalf("Draw after an abandoned frame = %v, want out of date", err)
	}
	if len(dev.Acquires) != acquires {
		t.Error("Draw acquired again with a semaphore still holding a signal")
	}
	if err := e.Resize(800, 600); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < FramesInFlight+1; i++ {
		if err := e.Draw(); err != nil {
			t.Fatalf("Draw %d after resize: %v", i, err)
		}
	}
}

func TestSubmitFailureRecoversAfterResize(t *testing.T) {
	dev := gputest.NewDevice()
	e := newRunningEngine(t, dev)
	defer e.Destroy()

	dev.Fail = map[string]error{"Submit": errors.New("device lost")}
	if err := e.Draw(); err == nil {
		t.Fatal("Draw succeeded with a failing submit")
	}
	if dev.Signaled(e.frames.fences[0]) {
		t.Fatal("fake left the reset fence signaled")
	}
	dev.Fail = nil
	if err := e.Draw(); !errors.Is(err, ErrSwapchainOutOfDate) {
		t.Fatalf("Draw after failed submit = %v, want out of date", err)
	}
	if err := e.Resize(800, 600); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < FramesInFlight+1; i++ {
		if err := e.Draw(); err != nil {
			t.Fatalf("Draw %d after resize: %v", i, err)
		}
	}
}

func TestDepthLayoutCommittedAfterSubmit(t *testing.T) {
	dev := gputest.NewDevice()
	e := newEngine(t, dev)
	defer e.Destroy()
	if err := e.Attach(gputest.Window{}, 800, 600); err != nil {
		t.Fatal(err)
	}
	rc := &recordingContext{drawErr: errors.New("boom")}
	if err := e.SetRenderContext(rc); err != nil {
		t.Fatal(err)
	}

	win := e.Window()
	win.depth.layout = gpu.ImageLayoutUndefined
	if err := e.Draw(); err == nil {
		t.Fatal("Draw succeeded with a failing context")
	}
	if win.DepthLayout() != gpu.ImageLayoutUndefined {
		t.Errorf("depth layout after failed frame = %v, want undefined", win.DepthLayout())
	}

	if err := e.Resize(800, 600); err != nil {
		t.Fatal(err)
	}
	rc.drawErr = nil
	win.depth.layout = gpu.ImageLayoutUndefined
	before := depthTransitions(dev)
	if err := e.Draw(); err != nil {
		t.Fatal(err)
	}
	if win.DepthLayout() != gpu.ImageLayoutDepthAttachmentOptimal {
		t.Errorf("depth layout after submitted frame = %v", win.DepthLayout())
	}
	if n := depthTransitions(dev) - before; n != 1 {
		t.Errorf("frame recorded %d depth transitions, want 1", n)
	}
}

func TestPreconditions(t *testing.T) {
	dev := gputest.NewDevice()
	e := newEngine(t, dev)
	defer e.Destroy()

	if err := e.Draw(); !errors.Is(err, ErrNotAttached) {
		t.Errorf("Draw before Attach = %v", err)
	}
	if err := e.Resize(1, 1); !errors.Is(err, ErrNotAttached) {
		t.Errorf("Resize before Attach = %v", err)
	}
	if err := e.Attach(gputest.Window{}, 800, 600); err != nil {
		t.Fatal(err)
	}
	if err := e.Draw(); !errors.Is(err, ErrNoRenderContext) {
		t.Errorf("Draw without context = %v", err)
	}
	if err := e.Attach(gputest.Window{}, 800, 600); !errors.Is(err, ErrAlreadyAttached) {
		t.Errorf("second Attach = %v", err)
	}
}

func TestAttachFailureLeavesNothing(t *testing.T) {
	dev := gputest.NewDevice()
	e := newEngine(t, dev)
	defer e.Destroy()
	base := dev.LiveObjects()

	dev.Fail = map[string]error{"CreateImageView": errors.New("no views")}
	if err := e.Attach(gputest.Window{}, 800, 600); err == nil {
		t.Fatal("Attach succeeded")
	}
	if e.Window() != nil {
		t.Error("window kept after failed attach")
	}
	if got := dev.LiveObjects(); !reflect.DeepEqual(got, base) {
		t.Errorf("live objects = %v, want %v", got, base)
	}
	dev.Fail = nil
	if err := e.Attach(gputest.Window{Err: errors.New("no surface")}, 800, 600); err == nil {
		t.Error("Attach succeeded without a surface")
	}

	dev.Fail = map[string]error{"QueueWaitIdle": errors.New("lost")}
	if err := e.Attach(gputest.Window{}, 800, 600); err == nil {
		t.Fatal("Attach succeeded with a failing depth transition")
	}
	if e.Window() != nil {
		t.Error("window kept after failed depth transition")
	}
	if got := dev.LiveObjects(); !reflect.DeepEqual(got, base) {
		t.Errorf("live objects after failed depth transition = %v, want %v", got, base)
	}
	dev.Fail = nil
	if err := e.Attach(gputest.Window{}, 800, 600); err != nil {
		t.Errorf("Attach retry: %v", err)
	}
}

func TestAttachRequiresPresentSupport(t *testing.T) {
	dev := gputest.NewDevice()
	dev.NoPresent = true
	e := newEngine(t, dev)
	defer e.Destroy()
	base := dev.LiveObjects()

	if err := e.Attach(gputest.Window{}, 800, 600); !errors.Is(err, ErrNoPresentSupport) {
		t.Fatalf("Attach = %v, want ErrNoPresentSupport", err)
	}
	if e.Window() != nil {
		t.Error("window kept without present support")
	}
	if got := dev.LiveObjects(); !reflect.DeepEqual(got, base) {
		t.Errorf("live objects = %v, want %v", got, base)
	}
	if len(dev.Swapchains) != 0 {
		t.Errorf("created %d swapchains on an unpresentable surface", len(dev.Swapchains))
	}
}

func TestSetRenderContextReplaces(t *testing.T) {
	dev := gputest.NewDevice()
	e := newRunningEngine(t, dev)
	defer e.Destroy()

	rc := &recordingContext{}
	if err := e.SetRenderContext(rc); err != nil {
		t.Fatal(err)
	}
	if n := dev.LiveObjects()[gpu.KindShader]; n != 0 {
		t.Errorf("%d triangle shaders alive after replacement", n)
	}
	if len(rc.resized) != 1 || rc.resized[0] != e.Window().Extent() {
		t.Errorf("new context resized with %v", rc.resized)
	}
	if err := e.SetRenderContext(nil); err != nil {
		t.Fatal(err)
	}
	if rc.destroyed != 1 {
		t.Errorf("replaced context destroyed %d times", rc.destroyed)
	}
	if err := e.Draw(); !errors.Is(err, ErrNoRenderContext) {
		t.Errorf("Draw after clearing context = %v", err)
	}
}

func TestDestroyReleasesEverything(t *testing.T) {
	dev := gputest.NewDevice()
	e := newEngine(t, dev)
	if err := e.Attach(gputest.Window{}, 800, 600); err != nil {
		t.Fatal(err)
	}
	rc, err := NewRenderContext(KindMeshSimple, dev, RenderSources{Shaders: shaderFS()})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.SetRenderContext(rc); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if err := e.Draw(); err != nil {
			t.Fatal(err)
		}
	}
	e.Destroy()
	if leaks := dev.Leaks(); leaks != "" {
		t.Errorf("leaked after Destroy: %s", leaks)
	}
	if !dev.Destroyed {
		t.Error("device not destroyed")
	}
	e.Destroy()
}

func TestNewEngineRejectsBadInput(t *testing.T) {
	dev := gputest.NewDevice()
	dev.Families = gpu.QueueFamilyIndices{}
	if _, err := NewEngine(dev, DefaultConfig(), nil); err == nil {
		t.Error("NewEngine accepted a device without a graphics family")
	}
	cfg := DefaultConfig()
	cfg.AppName = ""
	if _, err := NewEngine(gputest.NewDevice(), cfg, nil); err == nil {
		t.Error("NewEngine accepted an invalid config")
	}

	dev = gputest.NewDevice()
	dev.Fail = map[string]error{"CreateFence": errors.New("no fences")}
	if _, err := NewEngine(dev, DefaultConfig(), nil); err == nil {
		t.Fatal("NewEngine succeeded without fences")
	}
	if leaks := dev.Leaks(); leaks != "" {
		t.Errorf("leaked after failed NewEngine: %s", leaks)
	}
}
