package varre

import (
	"testing"

	"github.com/andewx/varre/gpu"
	"github.com/andewx/varre/gpu/gputest"
)

func TestRenderStateApplySetsEverything(t *testing.T) {
	dev := gputest.NewDevice()
	const cmd = gpu.CommandBuffer(7)
	area := gpu.Rect2D{Extent: gpu.Extent2D{Width: 640, Height: 480}}
	DefaultRenderState(area).WithReversedDepth().Apply(dev, cmd)

	for _, name := range []string{
		"SetViewport", "SetScissor", "SetRasterizerDiscardEnable", "SetVertexInput",
		"SetPrimitiveTopology", "SetPrimitiveRestartEnable", "SetRasterizationSamples",
		"SetSampleMask", "SetAlphaToCoverageEnable", "SetPolygonMode", "SetLineWidth",
		"SetCullMode", "SetFrontFace", "SetDepthTestEnable", "SetDepthWriteEnable",
		"SetDepthCompareOp(4)", "SetDepthBoundsTestEnable", "SetDepthBiasEnable",
		"SetStencilTestEnable", "SetColorBlendEnable", "SetColorWriteMask",
	} {
		if n := dev.Count(cmd, name); n != 1 {
			t.Errorf("%s recorded %d times", name, n)
		}
	}
	if n := dev.Count(cmd, "SetColorBlendEquation"); n != 0 {
		t.Errorf("blend equation set %d times with blending disabled", n)
	}
}

func TestRenderStateBlendEquationPerEnabledTarget(t *testing.T) {
	dev := gputest.NewDevice()
	const cmd = gpu.CommandBuffer(1)
	s := DefaultRenderState(gpu.Rect2D{})
	s.Blend = []AttachmentBlend{
		{Enable: true, WriteMask: gpu.ColorComponentRGBA, Equation: gpu.ColorBlendEquation{
			SrcColor: gpu.BlendFactorSrcAlpha, DstColor: gpu.BlendFactorOneMinusSrcAlpha,
			SrcAlpha: gpu.BlendFactorOne, DstAlpha: gpu.BlendFactorZero,
		}},
		{WriteMask: gpu.ColorComponentR},
		{Enable: true, WriteMask: gpu.ColorComponentRGBA},
	}
	s.Apply(dev, cmd)
	if n := dev.Count(cmd, "SetColorBlendEquation"); n != 2 {
		t.Errorf("blend equation set %d times, want 2", n)
	}
}

func TestDefaultRenderState(t *testing.T) {
	area := gpu.Rect2D{Offset: gpu.Offset2D{X: 10, Y: 20}, Extent: gpu.Extent2D{Width: 300, Height: 200}}
	s := DefaultRenderState(area)
	want := gpu.Viewport{X: 10, Y: 20, Width: 300, Height: 200, MinDepth: 0, MaxDepth: 1}
	if len(s.Viewports) != 1 || s.Viewports[0] != want {
		t.Errorf("viewports = %+v", s.Viewports)
	}
	if len(s.Scissors) != 1 || s.Scissors[0] != area {
		t.Errorf("scissors = %+v", s.Scissors)
	}
	if s.DepthTest || s.DepthWrite {
		t.Error("depth enabled by default")
	}
	r := s.WithReversedDepth()
	if !r.DepthTest || !r.DepthWrite || r.DepthCompare != gpu.CompareOpGreater {
		t.Errorf("reversed depth = test %v write %v compare %v", r.DepthTest, r.DepthWrite, r.DepthCompare)
	}
	if s.DepthTest {
		t.Error("WithReversedDepth modified its receiver")
	}
}
