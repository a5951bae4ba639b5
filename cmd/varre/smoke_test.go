//go:build vulkan

package main

import (
	"io"
	"testing"

	"github.com/andewx/varre"
	"github.com/andewx/varre/vulkan"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

// TestRenderSmoke needs a display and a Vulkan 1.3 driver with shader objects.
func TestRenderSmoke(t *testing.T) {
	if err := glfw.Init(); err != nil {
		t.Skipf("glfw: %v", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Visible, glfw.False)
	window, err := glfw.CreateWindow(320, 240, "varre smoke", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer window.Destroy()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	dev, err := vulkan.NewContext(vulkan.Options{
		AppName:  "varre-smoke",
		Display:  window,
		ProcAddr: glfw.GetVulkanGetInstanceProcAddress(),
		Logger:   log,
	})
	if errors.Is(err, vulkan.ErrNoSuitableDevice) {
		t.Skip(err)
	}
	if err != nil {
		t.Fatal(err)
	}
	engine, err := varre.NewEngine(dev, varre.DefaultConfig(), log)
	if err != nil {
		dev.Destroy()
		t.Fatal(err)
	}
	defer engine.Destroy()

	w, h := window.GetFramebufferSize()
	if err := engine.Attach(window, uint32(w), uint32(h)); err != nil {
		t.Fatal(err)
	}
	for _, kind := range []varre.RenderContextKind{varre.KindTriangle, varre.KindMeshSimple} {
		rc, err := varre.NewRenderContext(kind, dev, varre.RenderSources{})
		if err != nil {
			t.Fatalf("%v: %v", kind, err)
		}
		if err := engine.SetRenderContext(rc); err != nil {
			t.Fatalf("%v: %v", kind, err)
		}
		for i := 0; i < 2*varre.FramesInFlight; i++ {
			err := engine.Draw()
			if errors.Is(err, varre.ErrSwapchainOutOfDate) {
				w, h = window.GetFramebufferSize()
				err = engine.Resize(uint32(w), uint32(h))
			}
			if err != nil {
				t.Fatalf("%v frame %d: %v", kind, i, err)
			}
			glfw.PollEvents()
		}
	}
	if err := engine.Resize(uint32(w), uint32(h)); err != nil {
		t.Fatal(err)
	}
}
