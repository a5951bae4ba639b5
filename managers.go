package varre

import (
	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
)

// frameSync is the ring of per-frame-in-flight resources. Slot i owns a draw
// command buffer, a fence created signaled so the first wait returns, and the
// semaphore the acquire of that slot signals.
//
// Not safe for concurrent use.
type frameSync struct {
	cmds            [FramesInFlight]gpu.CommandBuffer
	fences          [FramesInFlight]gpu.Fence
	presentComplete [FramesInFlight]gpu.Semaphore
}

func newFrameSync(dev gpu.Device, cmds []gpu.CommandBuffer) (*frameSync, error) {
	if len(cmds) != FramesInFlight {
		return nil, errors.Errorf("frame sync: %d command buffers for %d frames", len(cmds), FramesInFlight)
	}
	f := &frameSync{}
	copy(f.cmds[:], cmds)
	if err := f.create(dev); err != nil {
		f.destroy(dev)
		return nil, err
	}
	return f, nil
}

func (f *frameSync) create(dev gpu.Device) error {
	for i := range f.fences {
		fence, err := dev.CreateFence(true)
		if err != nil {
			return errors.Wrapf(err, "frame %d fence", i)
		}
		f.fences[i] = fence
	}
	return f.createSemaphores(dev)
}

func (f *frameSync) createSemaphores(dev gpu.Device) error {
	for i := range f.presentComplete {
		sem, err := dev.CreateSemaphore()
		if err != nil {
			return errors.Wrapf(err, "frame %d present semaphore", i)
		}
		f.presentComplete[i] = sem
	}
	return nil
}

func (f *frameSync) destroySemaphores(dev gpu.Device) {
	for i, s := range f.presentComplete {
		if s != 0 {
			dev.DestroySemaphore(s)
			f.presentComplete[i] = 0
		}
	}
}

// rebuild replaces the fences and the present-complete semaphores with fresh
// signaled fences and unsignaled semaphores. The device must be idle. An
// acquire that failed with OUT_OF_DATE can leave its semaphore unusable, and
// an abandoned frame leaves a pending signal on it or an unsignaled fence.
func (f *frameSync) rebuild(dev gpu.Device) error {
	f.destroy(dev)
	return f.create(dev)
}

// destroy releases fences and semaphores. The command buffers go with their pool.
func (f *frameSync) destroy(dev gpu.Device) {
	for i, fence := range f.fences {
		if fence != 0 {
			dev.DestroyFence(fence)
			f.fences[i] = 0
		}
	}
	f.destroySemaphores(dev)
}
