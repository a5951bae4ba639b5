package varre

import (
	"io/fs"

	"github.com/andewx/varre/assets"
	"github.com/andewx/varre/gpu"
)

// Triangle draws a hardcoded triangle from vertex-shader constants: no
// buffers, no descriptors, no depth.
type Triangle struct {
	BaseRenderContext
	vertex   *ShaderObject
	fragment *ShaderObject
}

func NewTriangle(dev gpu.Device, shaders fs.FS) (*Triangle, error) {
	f := NewShaderFactory(dev)
	vertex, err := loadShaderObject(f, shaders, assets.ShaderTriangleVertex)
	if err != nil {
		return nil, err
	}
	fragment, err := loadShaderObject(f, shaders, assets.ShaderTriangleFragment)
	if err != nil {
		vertex.Destroy(dev)
		return nil, err
	}
	return &Triangle{vertex: vertex, fragment: fragment}, nil
}

func (t *Triangle) RecordDraw(rec gpu.Recorder, cmd gpu.CommandBuffer, target FrameTarget) error {
	rec.CmdBeginRendering(cmd, target.Rendering(false))
	DefaultRenderState(target.Area).Apply(rec, cmd)
	bindGraphicsShaders(rec, cmd, t.vertex, t.fragment)
	rec.CmdDraw(cmd, 3, 1, 0, 0)
	rec.CmdEndRendering(cmd)
	return nil
}

func (t *Triangle) Destroy(dev gpu.Device) {
	t.vertex.Destroy(dev)
	t.fragment.Destroy(dev)
}
