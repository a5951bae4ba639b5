package varre

import (
	"io/fs"
	"strings"

	"github.com/andewx/varre/assets"
	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
)

// FrameTarget is what a render context draws into for one frame. The color
// image is in COLOR_ATTACHMENT_OPTIMAL and the depth image in
// DEPTH_ATTACHMENT_OPTIMAL when RecordDraw runs.
type FrameTarget struct {
	FrameIndex  int
	ImageIndex  uint32
	ColorImage  gpu.Image
	ColorView   gpu.ImageView
	ColorFormat gpu.Format
	DepthImage  gpu.Image
	DepthView   gpu.ImageView
	DepthFormat gpu.Format
	Area        gpu.Rect2D
	ClearColor  [4]float32
}

// Rendering describes a pass that clears the color target and, with depth
// set, the depth target to 0 for reversed depth.
func (t FrameTarget) Rendering(depth bool) gpu.RenderingInfo {
	info := gpu.RenderingInfo{
		Area: t.Area,
		Color: []gpu.RenderingAttachment{{
			View:    t.ColorView,
			Layout:  gpu.ImageLayoutColorAttachmentOptimal,
			LoadOp:  gpu.LoadOpClear,
			StoreOp: gpu.StoreOpStore,
			Clear:   gpu.ClearValue{Color: t.ClearColor},
		}},
	}
	if depth {
		info.Depth = &gpu.RenderingAttachment{
			View:    t.DepthView,
			Layout:  gpu.ImageLayoutDepthAttachmentOptimal,
			LoadOp:  gpu.LoadOpClear,
			StoreOp: gpu.StoreOpDontCare,
			Clear:   gpu.ClearValue{Depth: 0},
		}
	}
	return info
}

// RenderContext records the draw commands of one kind of scene.
//
// RecordSetup runs once per activation in a one-time command buffer that is
// submitted and waited on; FinishSetup follows once that work has completed.
// RecordDraw runs every frame in the rotating frame command buffer and must
// not block.
type RenderContext interface {
	OnSwapchainResized(extent gpu.Extent2D) error
	RecordSetup(dev gpu.Device, cmd gpu.CommandBuffer) error
	FinishSetup(dev gpu.Device)
	RecordDraw(rec gpu.Recorder, cmd gpu.CommandBuffer, target FrameTarget) error
	Destroy(dev gpu.Device)
}

// BaseRenderContext provides no-op lifecycle hooks for embedding.
type BaseRenderContext struct{}

func (BaseRenderContext) OnSwapchainResized(gpu.Extent2D) error { return nil }

func (BaseRenderContext) RecordSetup(gpu.Device, gpu.CommandBuffer) error { return nil }

func (BaseRenderContext) FinishSetup(gpu.Device) {}

// RenderContextKind enumerates the built-in render contexts.
type RenderContextKind int

const (
	KindTriangle RenderContextKind = iota
	KindMeshSimple
)

func (k RenderContextKind) String() string {
	switch k {
	case KindTriangle:
		return "triangle"
	case KindMeshSimple:
		return "mesh"
	}
	return "unknown"
}

// ParseRenderContextKind accepts the names returned by String.
func ParseRenderContextKind(s string) (RenderContextKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "triangle":
		return KindTriangle, nil
	case "mesh", "mesh_simple", "meshsimple":
		return KindMeshSimple, nil
	}
	return 0, errors.Errorf("unknown render context %q", s)
}

// RenderSources are the inputs the built-in render contexts load from.
type RenderSources struct {
	// Shaders replaces the compiled-in catalog shaders. Nil uses
	// assets.Compiled.
	Shaders fs.FS
	// Mesh drawn by KindMeshSimple. Nil draws assets.Cube.
	Mesh   *assets.Mesh
	Camera Camera
}

// NewRenderContext builds the render context of the given kind.
func NewRenderContext(kind RenderContextKind, dev gpu.Device, src RenderSources) (RenderContext, error) {
	if src.Shaders == nil {
		src.Shaders = assets.Compiled()
	}
	switch kind {
	case KindTriangle:
		return NewTriangle(dev, src.Shaders)
	case KindMeshSimple:
		mesh := src.Mesh
		if mesh == nil {
			mesh = assets.Cube()
		}
		cam := src.Camera
		if cam == (Camera{}) {
			cam = DefaultCamera()
		}
		return NewMeshSimple(dev, src.Shaders, mesh, cam)
	}
	return nil, errors.Errorf("render context: unknown kind %d", int(kind))
}

func loadShaderObject(f *ShaderFactory, shaders fs.FS, id assets.ShaderID) (*ShaderObject, error) {
	rec, err := assets.LoadShader(shaders, id)
	if err != nil {
		return nil, err
	}
	return f.Create(rec)
}

func bindGraphicsShaders(rec gpu.Recorder, cmd gpu.CommandBuffer, vertex, fragment *ShaderObject) {
	rec.CmdBindShaders(cmd,
		[]gpu.ShaderStageFlags{gpu.StageVertex, gpu.StageFragment},
		[]gpu.Shader{vertex.Shader, fragment.Shader})
}
