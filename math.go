package varre

import (
	"encoding/binary"
	"math"

	lin "github.com/xlab/linmath"
)

// ReversedDepthClip converts a GL style projection to Vulkan clip space with
// reversed depth: Y is flipped, the near plane maps to depth 1 and the far
// plane to depth 0.
func ReversedDepthClip() lin.Mat4x4 {
	var m lin.Mat4x4
	m[0][0] = 1
	m[1][1] = -1
	m[2][2] = -0.5
	m[3][2] = 0.5
	m[3][3] = 1
	return m
}

// Camera produces the model-view-projection matrix used by the mesh renderer.
type Camera struct {
	FovY        float32
	Near, Far   float32
	Eye, Center lin.Vec3
	Up          lin.Vec3
	// SpinDegrees rotates the model around Y.
	SpinDegrees float32
}

func DefaultCamera() Camera {
	return Camera{
		FovY:        45,
		Near:        0.1,
		Far:         100,
		Eye:         lin.Vec3{0, 2, 5},
		Center:      lin.Vec3{0, 0, 0},
		Up:          lin.Vec3{0, 1, 0},
		SpinDegrees: 30,
	}
}

// MVP returns clip * projection * view * model for a target of the given size.
func (c Camera) MVP(width, height uint32) lin.Mat4x4 {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	var proj, view, model, clip, clipProj, vp, mvp lin.Mat4x4
	proj.Perspective(lin.DegreesToRadians(c.FovY), aspect, c.Near, c.Far)
	eye, center, up := c.Eye, c.Center, c.Up
	view.LookAt(&eye, &center, &up)
	model.Identity()
	model.Rotate(&model, 0, 1, 0, lin.DegreesToRadians(c.SpinDegrees))

	clip = ReversedDepthClip()
	clipProj.Mult(&clip, &proj)
	vp.Mult(&clipProj, &view)
	mvp.Mult(&vp, &model)
	return mvp
}

// matrixBytes packs m column by column as little-endian float32s, the layout
// of a column-major float4x4 uniform.
func matrixBytes(m *lin.Mat4x4) []byte {
	out := make([]byte, 0, 64)
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(m[col][row]))
		}
	}
	return out
}
