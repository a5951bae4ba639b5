package varre

import (
	"encoding/binary"
	"io"
	"testing"
	"testing/fstest"

	"github.com/andewx/varre/assets"
	"github.com/andewx/varre/gpu/gputest"
	"golang.org/x/exp/slog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSPIRV is the smallest blob that passes header validation.
func fakeSPIRV() []byte {
	code := make([]byte, 20)
	binary.LittleEndian.PutUint32(code, 0x07230203)
	return code
}

func shaderFS() fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, id := range []assets.ShaderID{
		assets.ShaderTriangleVertex,
		assets.ShaderTriangleFragment,
		assets.ShaderBasicModelVertex,
		assets.ShaderBasicModelFragment,
	} {
		fsys[id.File()] = &fstest.MapFile{Data: fakeSPIRV()}
	}
	return fsys
}

func newEngine(t *testing.T, dev *gputest.Device) *Engine {
	t.Helper()
	e, err := NewEngine(dev, DefaultConfig(), discardLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

// newRunningEngine returns an engine attached to an 800x600 fake window with
// the triangle context active.
func newRunningEngine(t *testing.T, dev *gputest.Device) *Engine {
	t.Helper()
	e := newEngine(t, dev)
	if err := e.Attach(gputest.Window{}, 800, 600); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	tri, err := NewTriangle(dev, shaderFS())
	if err != nil {
		t.Fatalf("NewTriangle: %v", err)
	}
	if err := e.SetRenderContext(tri); err != nil {
		t.Fatalf("SetRenderContext: %v", err)
	}
	return e
}
