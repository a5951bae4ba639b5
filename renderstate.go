package varre

import "github.com/andewx/varre/gpu"

// AttachmentBlend is the blend state of one color attachment.
type AttachmentBlend struct {
	Enable    bool
	Equation  gpu.ColorBlendEquation
	WriteMask gpu.ColorComponent
}

// RenderState is the complete dynamic state a shader-object draw needs.
// Apply records all of it, so no state leaks between render contexts.
type RenderState struct {
	Viewports []gpu.Viewport
	Scissors  []gpu.Rect2D

	RasterizerDiscard bool
	VertexBindings    []gpu.VertexBinding
	VertexAttributes  []gpu.VertexAttribute
	Topology          gpu.PrimitiveTopology
	PrimitiveRestart  bool

	Samples         gpu.SampleCount
	SampleMask      uint32
	AlphaToCoverage bool

	PolygonMode gpu.PolygonMode
	LineWidth   float32
	CullMode    gpu.CullMode
	FrontFace   gpu.FrontFace

	DepthTest    bool
	DepthWrite   bool
	DepthCompare gpu.CompareOp
	DepthBounds  bool
	DepthBias    bool
	StencilTest  bool

	Blend []AttachmentBlend
}

// DefaultRenderState covers area with one viewport and scissor, draws filled
// triangle lists without culling or depth and writes RGBA to one attachment.
func DefaultRenderState(area gpu.Rect2D) RenderState {
	return RenderState{
		Viewports: []gpu.Viewport{{
			X:        float32(area.Offset.X),
			Y:        float32(area.Offset.Y),
			Width:    float32(area.Extent.Width),
			Height:   float32(area.Extent.Height),
			MinDepth: 0,
			MaxDepth: 1,
		}},
		Scissors:     []gpu.Rect2D{area},
		Topology:     gpu.TopologyTriangleList,
		Samples:      gpu.SampleCount1,
		SampleMask:   ^uint32(0),
		PolygonMode:  gpu.PolygonModeFill,
		LineWidth:    1,
		CullMode:     gpu.CullModeNone,
		FrontFace:    gpu.FrontFaceCounterClockwise,
		DepthCompare: gpu.CompareOpAlways,
		Blend:        []AttachmentBlend{{WriteMask: gpu.ColorComponentRGBA}},
	}
}

// WithReversedDepth enables depth test and write with the GREATER compare
// used against a depth buffer cleared to 0.
func (s RenderState) WithReversedDepth() RenderState {
	s.DepthTest = true
	s.DepthWrite = true
	s.DepthCompare = gpu.CompareOpGreater
	return s
}

// Apply records every piece of dynamic state into cmd.
func (s RenderState) Apply(rec gpu.Recorder, cmd gpu.CommandBuffer) {
	rec.CmdSetViewport(cmd, s.Viewports...)
	rec.CmdSetScissor(cmd, s.Scissors...)
	rec.CmdSetRasterizerDiscardEnable(cmd, s.RasterizerDiscard)
	rec.CmdSetVertexInput(cmd, s.VertexBindings, s.VertexAttributes)
	rec.CmdSetPrimitiveTopology(cmd, s.Topology)
	rec.CmdSetPrimitiveRestartEnable(cmd, s.PrimitiveRestart)

	rec.CmdSetRasterizationSamples(cmd, s.Samples)
	rec.CmdSetSampleMask(cmd, s.Samples, s.SampleMask)
	rec.CmdSetAlphaToCoverageEnable(cmd, s.AlphaToCoverage)

	rec.CmdSetPolygonMode(cmd, s.PolygonMode)
	rec.CmdSetLineWidth(cmd, s.LineWidth)
	rec.CmdSetCullMode(cmd, s.CullMode)
	rec.CmdSetFrontFace(cmd, s.FrontFace)

	rec.CmdSetDepthTestEnable(cmd, s.DepthTest)
	rec.CmdSetDepthWriteEnable(cmd, s.DepthWrite)
	rec.CmdSetDepthCompareOp(cmd, s.DepthCompare)
	rec.CmdSetDepthBoundsTestEnable(cmd, s.DepthBounds)
	rec.CmdSetDepthBiasEnable(cmd, s.DepthBias)
	rec.CmdSetStencilTestEnable(cmd, s.StencilTest)

	if len(s.Blend) == 0 {
		return
	}
	enables := make([]bool, len(s.Blend))
	masks := make([]gpu.ColorComponent, len(s.Blend))
	for i, b := range s.Blend {
		enables[i] = b.Enable
		masks[i] = b.WriteMask
	}
	rec.CmdSetColorBlendEnable(cmd, 0, enables)
	for i, b := range s.Blend {
		if b.Enable {
			rec.CmdSetColorBlendEquation(cmd, uint32(i), []gpu.ColorBlendEquation{b.Equation})
		}
	}
	rec.CmdSetColorWriteMask(cmd, 0, masks)
}
