package vulkan

import (
	"testing"

	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
)

func TestRegistry(t *testing.T) {
	var r registry[gpu.Buffer, string]
	if _, ok := r.get(0); ok {
		t.Fatal("zero handle resolved")
	}
	a := r.add("a")
	b := r.add("b")
	if a == 0 || a == b {
		t.Fatalf("handles a=%d b=%d", a, b)
	}
	if v, ok := r.get(b); !ok || v != "b" {
		t.Errorf("get(b) = %q, %v", v, ok)
	}
	if v, ok := r.remove(a); !ok || v != "a" {
		t.Errorf("remove(a) = %q, %v", v, ok)
	}
	if _, ok := r.remove(a); ok {
		t.Error("second remove succeeded")
	}
	c := r.add("c")
	if c == a {
		t.Error("handle reused after remove")
	}
	if r.len() != 2 {
		t.Errorf("len = %d, want 2", r.len())
	}
	seen := 0
	r.each(func(gpu.Buffer, string) { seen++ })
	if seen != 2 {
		t.Errorf("each visited %d", seen)
	}
}

func TestUnknownWaitSemaphore(t *testing.T) {
	c := &Context{}
	sc := c.swapchains.add(swapchainEntry{})
	if err := c.Present(sc, 0, gpu.Semaphore(7)); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Present with unknown semaphore = %v, want ErrUnknownHandle", err)
	}
	cmd := c.cmds.add(nil)
	if err := c.Submit(gpu.SubmitInfo{CommandBuffer: cmd, Wait: 7}); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Submit with unknown semaphore = %v, want ErrUnknownHandle", err)
	}
}
