package varre

import (
	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
)

// commandPool is the reset-capable graphics pool with one buffer for
// synchronous one-time work and one draw buffer per frame in flight.
type commandPool struct {
	pool    gpu.CommandPool
	oneTime gpu.CommandBuffer
	draw    []gpu.CommandBuffer
}

func newCommandPool(dev gpu.Device, family uint32) (*commandPool, error) {
	pool, err := dev.CreateCommandPool(family)
	if err != nil {
		return nil, errors.Wrap(err, "create command pool")
	}
	cmds, err := dev.AllocateCommandBuffers(pool, 1+FramesInFlight)
	if err != nil {
		dev.DestroyCommandPool(pool)
		return nil, errors.Wrap(err, "allocate command buffers")
	}
	return &commandPool{pool: pool, oneTime: cmds[0], draw: cmds[1:]}, nil
}

// submitOnce records into the one-time buffer, submits it and waits for the
// queue to drain.
func (p *commandPool) submitOnce(dev gpu.Device, record func(cmd gpu.CommandBuffer) error) error {
	cmd := p.oneTime
	if err := dev.BeginCommandBuffer(cmd, true); err != nil {
		return err
	}
	if err := record(cmd); err != nil {
		// leave the buffer in the executable state so the next Begin succeeds
		_ = dev.EndCommandBuffer(cmd)
		return err
	}
	if err := dev.EndCommandBuffer(cmd); err != nil {
		return err
	}
	if err := dev.Submit(gpu.SubmitInfo{CommandBuffer: cmd}); err != nil {
		return errors.Wrap(err, "one-time submit")
	}
	return errors.Wrap(dev.QueueWaitIdle(), "one-time queue wait")
}

func (p *commandPool) destroy(dev gpu.Device) {
	if p.pool != 0 {
		dev.DestroyCommandPool(p.pool)
		p.pool = 0
	}
}
