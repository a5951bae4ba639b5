package vulkan

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// registry maps the opaque gpu handles handed to the engine onto backend
// objects. Handle zero is never issued.
type registry[H ~uint64, V any] struct {
	next  H
	items map[H]V
}

func (r *registry[H, V]) add(v V) H {
	if r.items == nil {
		r.items = make(map[H]V)
	}
	r.next++
	r.items[r.next] = v
	return r.next
}

func (r *registry[H, V]) get(h H) (V, bool) {
	v, ok := r.items[h]
	return v, ok
}

func (r *registry[H, V]) remove(h H) (V, bool) {
	v, ok := r.items[h]
	if ok {
		delete(r.items, h)
	}
	return v, ok
}

func (r *registry[H, V]) len() int {
	return len(r.items)
}

func (r *registry[H, V]) each(fn func(H, V)) {
	for h, v := range r.items {
		fn(h, v)
	}
}

// vulkan-go handles are C pointers; the extension table takes their
// integer value.

func rawInstance(h vk.Instance) uintptr             { return uintptr(unsafe.Pointer(h)) }
func rawPhysicalDevice(h vk.PhysicalDevice) uintptr { return uintptr(unsafe.Pointer(h)) }
func rawDevice(h vk.Device) uintptr                 { return uintptr(unsafe.Pointer(h)) }
func rawCommandBuffer(h vk.CommandBuffer) uintptr   { return uintptr(unsafe.Pointer(h)) }
func rawImage(h vk.Image) uint64                    { return uint64(uintptr(unsafe.Pointer(h))) }
func rawImageView(h vk.ImageView) uint64            { return uint64(uintptr(unsafe.Pointer(h))) }
func rawBuffer(h vk.Buffer) uint64                  { return uint64(uintptr(unsafe.Pointer(h))) }
func rawSetLayout(h vk.DescriptorSetLayout) uint64  { return uint64(uintptr(unsafe.Pointer(h))) }
