package varre

import (
	"reflect"
	"testing"

	"github.com/andewx/varre/assets"
	"github.com/andewx/varre/gpu"
	"github.com/andewx/varre/gpu/gputest"
	"github.com/pkg/errors"
)

func TestNextStages(t *testing.T) {
	tests := []struct {
		stage assets.ShaderStage
		want  gpu.ShaderStageFlags
	}{
		{assets.StageVertex, gpu.StageTessellationControl | gpu.StageGeometry | gpu.StageFragment},
		{assets.StageTessellationControl, gpu.StageTessellationEvaluation},
		{assets.StageTessellationEvaluation, gpu.StageGeometry | gpu.StageFragment},
		{assets.StageGeometry, gpu.StageFragment},
		{assets.StageTask, gpu.StageMesh},
		{assets.StageMesh, gpu.StageFragment},
		{assets.StageFragment, 0},
		{assets.StageCompute, 0},
		{assets.StageRayGen, 0},
	}
	for _, tt := range tests {
		if got := NextStages(tt.stage); got != tt.want {
			t.Errorf("NextStages(%v) = %#x, want %#x", tt.stage, got, tt.want)
		}
	}
}

func TestUnknownStagePanics(t *testing.T) {
	for name, fn := range map[string]func(){
		"NextStages": func() { NextStages(assets.ShaderStage(99)) },
		"StageFlags": func() { StageFlags(assets.ShaderStage(-1)) },
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s did not panic", name)
				}
			}()
			fn()
		}()
	}
}

func TestGroupBindings(t *testing.T) {
	bindings := []assets.DescriptorBinding{
		{Set: 1, Binding: 3},
		{Set: 0, Binding: 0},
		{Set: 1, Binding: 1},
	}
	groups := GroupBindings(bindings)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Set != 0 || groups[1].Set != 1 {
		t.Errorf("sets = %d, %d; want 0, 1", groups[0].Set, groups[1].Set)
	}
	want := []assets.DescriptorBinding{{Set: 1, Binding: 3}, {Set: 1, Binding: 1}}
	if !reflect.DeepEqual(groups[1].Bindings, want) {
		t.Errorf("set 1 bindings = %v, want input order %v", groups[1].Bindings, want)
	}
	if GroupBindings(nil) != nil {
		t.Error("GroupBindings(nil) is not empty")
	}
}

func testShader(stage assets.ShaderStage, bindings ...assets.DescriptorBinding) assets.Shader {
	return assets.Shader{
		Name:       "test",
		Stage:      stage,
		SPIRV:      fakeSPIRV(),
		EntryPoint: "main",
		Bindings:   bindings,
	}
}

func TestShaderFactoryCreate(t *testing.T) {
	dev := gputest.NewDevice()
	f := NewShaderFactory(dev)
	obj, err := f.Create(testShader(assets.StageVertex,
		assets.DescriptorBinding{Set: 1, Binding: 0, DescriptorType: 6, DescriptorCount: 1, StageFlags: 1},
		assets.DescriptorBinding{Set: 0, Binding: 0, DescriptorType: 6, DescriptorCount: 1, StageFlags: 1},
		assets.DescriptorBinding{Set: 1, Binding: 1, DescriptorType: 7, DescriptorCount: 2, StageFlags: 1},
	))
	if err != nil {
		t.Fatal(err)
	}
	if len(obj.Layouts) != 2 || len(dev.Layouts) != 2 {
		t.Fatalf("layouts = %d created %d, want 2", len(obj.Layouts), len(dev.Layouts))
	}
	if len(dev.Layouts[0]) != 1 || len(dev.Layouts[1]) != 2 {
		t.Errorf("layout bindings = %v, want set 0 then set 1", dev.Layouts)
	}
	if got := dev.Layouts[1][1]; got.Type != gpu.DescriptorTypeStorageBuffer || got.Count != 2 || got.Stages != gpu.StageVertex {
		t.Errorf("set 1 binding 1 = %+v", got)
	}
	info := dev.Shaders[0]
	if info.Stage != gpu.StageVertex || info.NextStage != NextStages(assets.StageVertex) {
		t.Errorf("shader stages = %#x -> %#x", info.Stage, info.NextStage)
	}
	if !reflect.DeepEqual(info.SetLayouts, obj.Layouts) {
		t.Errorf("shader layouts = %v, object owns %v", info.SetLayouts, obj.Layouts)
	}

	obj.Destroy(dev)
	if leaks := dev.Leaks(); leaks != "" {
		t.Errorf("leaked: %s", leaks)
	}
}

func TestShaderFactoryErrors(t *testing.T) {
	tests := []struct {
		name   string
		shader assets.Shader
		fail   map[string]error
	}{
		{"sparse sets", testShader(assets.StageVertex, assets.DescriptorBinding{Set: 1}), nil},
		{"bad spirv", assets.Shader{Name: "bad", Stage: assets.StageFragment, SPIRV: []byte{1, 2, 3, 4}}, nil},
		{"create fails", testShader(assets.StageVertex, assets.DescriptorBinding{Set: 0}),
			map[string]error{"CreateShader": errors.New("driver")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gputest.NewDevice()
			dev.Fail = tt.fail
			if _, err := NewShaderFactory(dev).Create(tt.shader); err == nil {
				t.Fatal("Create succeeded")
			}
			if leaks := dev.Leaks(); leaks != "" {
				t.Errorf("leaked: %s", leaks)
			}
		})
	}
}
