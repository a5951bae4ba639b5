package varre

import (
	"bytes"
	"testing"

	"github.com/andewx/varre/assets"
	"github.com/andewx/varre/gpu"
	"github.com/andewx/varre/gpu/gputest"
	"github.com/pkg/errors"
)

func TestGPUMeshUpload(t *testing.T) {
	dev := gputest.NewDevice()
	mesh := assets.Cube()
	m, err := NewGPUMesh(dev, mesh)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Destroy()

	if m.IndexCount != uint32(len(mesh.Indices)) {
		t.Errorf("IndexCount = %d", m.IndexCount)
	}
	if !bytes.Equal(dev.Writes[m.vertexStaging.Memory], mesh.VertexBytes()) {
		t.Error("vertex staging does not hold the vertex bytes")
	}
	if !bytes.Equal(dev.Writes[m.indexStaging.Memory], mesh.IndexBytes()) {
		t.Error("index staging does not hold the index bytes")
	}

	const cmd = gpu.CommandBuffer(3)
	if err := m.RecordUpload(dev, cmd); err != nil {
		t.Fatal(err)
	}
	if dev.Count(cmd, "CopyBuffer") != 2 || dev.Count(cmd, "BufferBarrier") != 1 {
		t.Errorf("upload recorded %v", dev.Commands[cmd])
	}

	m.ReleaseStaging()
	if n := dev.LiveObjects()[gpu.KindBuffer]; n != 2 {
		t.Errorf("%d buffers alive after releasing staging, want 2", n)
	}
	if err := m.RecordUpload(dev, cmd); err == nil {
		t.Error("upload recorded without staging")
	}

	m.Destroy()
	if leaks := dev.Leaks(); leaks != "" {
		t.Errorf("leaked: %s", leaks)
	}
}

func TestGPUMeshEmpty(t *testing.T) {
	dev := gputest.NewDevice()
	for name, mesh := range map[string]*assets.Mesh{
		"nil":        nil,
		"empty":      {},
		"no indices": {Positions: [][3]float32{{0, 0, 0}}},
	} {
		if _, err := NewGPUMesh(dev, mesh); !errors.Is(err, ErrEmptyMesh) {
			t.Errorf("%s: err = %v, want ErrEmptyMesh", name, err)
		}
	}
	if leaks := dev.Leaks(); leaks != "" {
		t.Errorf("leaked: %s", leaks)
	}
}

func TestGPUMeshPartialFailure(t *testing.T) {
	dev := gputest.NewDevice()
	dev.Memory.Types = []gpu.MemoryType{{Flags: gpu.MemoryPropertyHostVisible | gpu.MemoryPropertyHostCoherent}}
	if _, err := NewGPUMesh(dev, assets.Cube()); !errors.Is(err, ErrNoMemoryType) {
		t.Fatalf("err = %v, want ErrNoMemoryType", err)
	}
	if leaks := dev.Leaks(); leaks != "" {
		t.Errorf("leaked: %s", leaks)
	}
}
