package varre

import (
	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
)

var (
	// ErrNotAttached is returned by Draw and Resize before Attach.
	ErrNotAttached = errors.New("varre: engine not attached to a window")
	// ErrNoRenderContext is returned by Draw before SetRenderContext.
	ErrNoRenderContext = errors.New("varre: no render context set")
	// ErrAlreadyAttached is returned by a second Attach.
	ErrAlreadyAttached = errors.New("varre: engine already attached")
	// ErrSwapchainOutOfDate is wrapped by Draw when the swapchain must be
	// rebuilt with Resize before the next frame.
	ErrSwapchainOutOfDate = gpu.ErrOutOfDate
	// ErrNoMemoryType is returned when no memory type satisfies a resource.
	ErrNoMemoryType = errors.New("varre: no compatible memory type")
	// ErrNoDepthFormat is returned when the device supports none of the depth formats.
	ErrNoDepthFormat = errors.New("varre: no supported depth format")
	// ErrNoPresentSupport is returned when the graphics queue family cannot
	// present to the window surface.
	ErrNoPresentSupport = errors.New("varre: queue family cannot present to the surface")
	// ErrNoSurfaceFormat is returned when the surface reports no formats.
	ErrNoSurfaceFormat = errors.New("varre: surface reports no formats")
	// ErrEmptyMesh is returned when a mesh without vertices or indices is uploaded.
	ErrEmptyMesh = errors.New("varre: mesh has no vertices or indices")
)

// closeAll runs every release function in order. Used to unwind partially
// built resource sets.
func closeAll(fns ...func()) {
	for _, fn := range fns {
		if fn != nil {
			fn()
		}
	}
}
