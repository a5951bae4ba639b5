package varre

import (
	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
)

// Buffer is a device buffer bound to its own memory allocation.
type Buffer struct {
	dev    gpu.Device
	Handle gpu.Buffer
	Memory gpu.Memory
	Size   uint64
}

// NewBuffer creates a buffer of size bytes and binds it to memory of the first
// type that has every flag in memFlags.
func NewBuffer(dev gpu.Device, size uint64, usage gpu.BufferUsage, memFlags gpu.MemoryProperty) (*Buffer, error) {
	handle, err := dev.CreateBuffer(size, usage)
	if err != nil {
		return nil, errors.Wrap(err, "new buffer")
	}
	req := dev.BufferMemoryRequirements(handle)
	mem, err := allocate(dev, req, size, memFlags)
	if err != nil {
		dev.DestroyBuffer(handle)
		return nil, err
	}
	if err := dev.BindBufferMemory(handle, mem); err != nil {
		dev.DestroyBuffer(handle)
		dev.FreeMemory(mem)
		return nil, errors.Wrap(err, "bind buffer memory")
	}
	return &Buffer{dev: dev, Handle: handle, Memory: mem, Size: size}, nil
}

func allocate(dev gpu.Device, req gpu.MemoryRequirements, minSize uint64, flags gpu.MemoryProperty) (gpu.Memory, error) {
	typ, ok := gpu.FindMemoryType(dev.MemoryProperties(), req.MemoryTypeBits, flags)
	if !ok {
		return 0, errors.Wrapf(ErrNoMemoryType, "type bits %#x, flags %#x", req.MemoryTypeBits, uint32(flags))
	}
	size := req.Size
	if size < minSize {
		size = minSize
	}
	mem, err := dev.AllocateMemory(size, typ)
	if err != nil {
		return 0, errors.Wrap(err, "allocate memory")
	}
	return mem, nil
}

// Upload copies data to the start of a host-visible buffer.
func (b *Buffer) Upload(data []byte) error {
	if b.Handle == 0 {
		return errors.New("upload to destroyed buffer")
	}
	if uint64(len(data)) > b.Size {
		return errors.Errorf("upload of %d bytes into %d byte buffer", len(data), b.Size)
	}
	return errors.Wrap(b.dev.WriteMemory(b.Memory, 0, data), "upload")
}

// Destroy releases the buffer and its memory. It is safe to call twice.
func (b *Buffer) Destroy() {
	if b == nil || b.Handle == 0 {
		return
	}
	b.dev.DestroyBuffer(b.Handle)
	b.dev.FreeMemory(b.Memory)
	b.Handle, b.Memory = 0, 0
}
