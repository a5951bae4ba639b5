package varre

import (
	"testing"

	"github.com/andewx/varre/gpu"
	"github.com/andewx/varre/gpu/gputest"
	"github.com/pkg/errors"
)

func TestChoosePresentMode(t *testing.T) {
	tests := []struct {
		modes  []gpu.PresentMode
		prefer bool
		want   gpu.PresentMode
	}{
		{[]gpu.PresentMode{gpu.PresentModeFifo, gpu.PresentModeMailbox}, true, gpu.PresentModeMailbox},
		{[]gpu.PresentMode{gpu.PresentModeFifo, gpu.PresentModeMailbox}, false, gpu.PresentModeFifo},
		{[]gpu.PresentMode{gpu.PresentModeImmediate, gpu.PresentModeFifo}, true, gpu.PresentModeFifo},
		{nil, true, gpu.PresentModeFifo},
	}
	for _, tt := range tests {
		if got := choosePresentMode(tt.modes, tt.prefer); got != tt.want {
			t.Errorf("choosePresentMode(%v, %v) = %v, want %v", tt.modes, tt.prefer, got, tt.want)
		}
	}
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		min, max, want uint32
	}{
		{2, 8, 3},
		{2, 0, 3},
		{3, 3, 3},
		{1, 2, 2},
	}
	for _, tt := range tests {
		caps := gpu.SurfaceCapabilities{MinImageCount: tt.min, MaxImageCount: tt.max}
		if got := chooseImageCount(caps); got != tt.want {
			t.Errorf("chooseImageCount(min=%d, max=%d) = %d, want %d", tt.min, tt.max, got, tt.want)
		}
	}
}

func TestChooseExtent(t *testing.T) {
	undefined := gpu.Extent2D{Width: gpu.UndefinedExtent, Height: gpu.UndefinedExtent}
	tests := []struct {
		name          string
		current       gpu.Extent2D
		width, height uint32
		want          gpu.Extent2D
	}{
		{"current wins", gpu.Extent2D{Width: 800, Height: 600}, 1920, 1080, gpu.Extent2D{Width: 800, Height: 600}},
		{"caller size", undefined, 1024, 768, gpu.Extent2D{Width: 1024, Height: 768}},
		{"clamped low", undefined, 0, 0, gpu.Extent2D{Width: 16, Height: 16}},
		{"clamped high", undefined, 9000, 100, gpu.Extent2D{Width: 4096, Height: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := gpu.SurfaceCapabilities{
				CurrentExtent:  tt.current,
				MinImageExtent: gpu.Extent2D{Width: 16, Height: 16},
				MaxImageExtent: gpu.Extent2D{Width: 4096, Height: 4096},
			}
			if got := chooseExtent(caps, tt.width, tt.height); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestChooseTransform(t *testing.T) {
	caps := gpu.SurfaceCapabilities{
		SupportedTransforms: gpu.SurfaceTransformIdentity | gpu.SurfaceTransformRotate90,
		CurrentTransform:    gpu.SurfaceTransformRotate90,
	}
	if got := chooseTransform(caps); got != gpu.SurfaceTransformIdentity {
		t.Errorf("with identity supported: %#x", got)
	}
	caps.SupportedTransforms = gpu.SurfaceTransformRotate90
	if got := chooseTransform(caps); got != gpu.SurfaceTransformRotate90 {
		t.Errorf("without identity: %#x", got)
	}
}

func TestChooseSurfaceFormat(t *testing.T) {
	tests := []struct {
		formats []gpu.SurfaceFormat
		want    gpu.Format
		err     error
	}{
		{[]gpu.SurfaceFormat{{Format: gpu.FormatB8G8R8A8Srgb}, {Format: gpu.FormatR8G8B8A8Unorm}}, gpu.FormatB8G8R8A8Srgb, nil},
		{[]gpu.SurfaceFormat{{Format: gpu.FormatUndefined}}, gpu.FormatB8G8R8A8Unorm, nil},
		{nil, gpu.FormatUndefined, ErrNoSurfaceFormat},
	}
	for _, tt := range tests {
		got, err := chooseSurfaceFormat(tt.formats)
		if !errors.Is(err, tt.err) {
			t.Errorf("chooseSurfaceFormat(%v) error = %v, want %v", tt.formats, err, tt.err)
			continue
		}
		if got.Format != tt.want {
			t.Errorf("chooseSurfaceFormat(%v) = %v, want %v", tt.formats, got.Format, tt.want)
		}
		if err == nil && got.ColorSpace != gpu.ColorSpaceSrgbNonlinear {
			t.Errorf("color space = %v", got.ColorSpace)
		}
	}
}

func TestChooseDepthFormat(t *testing.T) {
	tests := []struct {
		name      string
		supported map[gpu.Format]bool
		want      gpu.Format
		err       error
	}{
		{"all", nil, gpu.FormatD32Sfloat, nil},
		{"packed only", map[gpu.Format]bool{gpu.FormatD24UnormS8Uint: true, gpu.FormatD16Unorm: true}, gpu.FormatD24UnormS8Uint, nil},
		{"d16", map[gpu.Format]bool{gpu.FormatD16Unorm: true}, gpu.FormatD16Unorm, nil},
		{"none", map[gpu.Format]bool{}, gpu.FormatUndefined, ErrNoDepthFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gputest.NewDevice()
			dev.DepthFormats = tt.supported
			got, err := chooseDepthFormat(dev)
			if !errors.Is(err, tt.err) || got != tt.want {
				t.Errorf("got %v, %v; want %v, %v", got, err, tt.want, tt.err)
			}
		})
	}
}

func TestNewWindow(t *testing.T) {
	dev := gputest.NewDevice()
	w, err := newWindow(dev, discardLogger(), gputest.Window{}, 800, 600, true, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer w.destroy()

	if w.ImageCount() != 3 {
		t.Errorf("ImageCount = %d, want min+1 = 3", w.ImageCount())
	}
	if len(w.views) != len(w.images) || len(w.renderingComplete) != len(w.images) {
		t.Errorf("views %d, semaphores %d for %d images", len(w.views), len(w.renderingComplete), len(w.images))
	}
	if w.PresentMode() != gpu.PresentModeMailbox {
		t.Errorf("PresentMode = %v", w.PresentMode())
	}
	if w.DepthLayout() != gpu.ImageLayoutUndefined {
		t.Errorf("fresh depth layout = %v", w.DepthLayout())
	}
	info := dev.Swapchains[0]
	if info.CompositeAlpha != gpu.CompositeAlphaOpaque || !info.Clipped || info.Usage != gpu.ImageUsageColorAttachment {
		t.Errorf("swapchain info = %+v", info)
	}
	if info.MinImageCount != 3 || info.PreTransform != gpu.SurfaceTransformIdentity {
		t.Errorf("swapchain info = %+v", info)
	}

	w.destroy()
	if leaks := dev.Leaks(); leaks != "" {
		t.Errorf("leaked: %s", leaks)
	}
}

func TestNewWindowErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*gputest.Device)
		want  error
	}{
		{"no formats", func(d *gputest.Device) { d.Formats = nil }, ErrNoSurfaceFormat},
		{"no depth", func(d *gputest.Device) { d.DepthFormats = map[gpu.Format]bool{} }, ErrNoDepthFormat},
		{"no device memory", func(d *gputest.Device) {
			d.Memory.Types = []gpu.MemoryType{{Flags: gpu.MemoryPropertyHostVisible}}
		}, ErrNoMemoryType},
		{"no present support", func(d *gputest.Device) { d.NoPresent = true }, ErrNoPresentSupport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gputest.NewDevice()
			tt.setup(dev)
			_, err := newWindow(dev, discardLogger(), gputest.Window{}, 800, 600, true, 0)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if leaks := dev.Leaks(); leaks != "" {
				t.Errorf("leaked: %s", leaks)
			}
		})
	}
}
