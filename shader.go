package varre

import (
	"fmt"
	"sort"

	"github.com/andewx/varre/assets"
	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
)

// StageFlags maps a shader record stage to its Vulkan stage bit.
func StageFlags(stage assets.ShaderStage) gpu.ShaderStageFlags {
	switch stage {
	case assets.StageVertex:
		return gpu.StageVertex
	case assets.StageTessellationControl:
		return gpu.StageTessellationControl
	case assets.StageTessellationEvaluation:
		return gpu.StageTessellationEvaluation
	case assets.StageGeometry:
		return gpu.StageGeometry
	case assets.StageFragment:
		return gpu.StageFragment
	case assets.StageCompute:
		return gpu.StageCompute
	case assets.StageTask:
		return gpu.StageTask
	case assets.StageMesh:
		return gpu.StageMesh
	case assets.StageRayGen:
		return gpu.StageRaygen
	}
	panic(fmt.Sprintf("varre: unknown shader stage %d", int(stage)))
}

// NextStages returns the stages that may follow stage in a graphics pipeline.
// It panics for stages outside the known set.
func NextStages(stage assets.ShaderStage) gpu.ShaderStageFlags {
	switch stage {
	case assets.StageVertex:
		return gpu.StageTessellationControl | gpu.StageGeometry | gpu.StageFragment
	case assets.StageTessellationControl:
		return gpu.StageTessellationEvaluation
	case assets.StageTessellationEvaluation:
		return gpu.StageGeometry | gpu.StageFragment
	case assets.StageGeometry:
		return gpu.StageFragment
	case assets.StageTask:
		return gpu.StageMesh
	case assets.StageMesh:
		return gpu.StageFragment
	case assets.StageFragment, assets.StageCompute, assets.StageRayGen:
		return 0
	}
	panic(fmt.Sprintf("varre: unknown shader stage %d", int(stage)))
}

// BindingGroup is the bindings of one descriptor set.
type BindingGroup struct {
	Set      uint32
	Bindings []assets.DescriptorBinding
}

// GroupBindings groups bindings by set, sets ascending, keeping the input
// order within each set.
func GroupBindings(bindings []assets.DescriptorBinding) []BindingGroup {
	index := map[uint32]int{}
	var groups []BindingGroup
	for _, b := range bindings {
		i, ok := index[b.Set]
		if !ok {
			i = len(groups)
			index[b.Set] = i
			groups = append(groups, BindingGroup{Set: b.Set})
		}
		groups[i].Bindings = append(groups[i].Bindings, b)
	}
	sort.SliceStable(groups, func(a, b int) bool { return groups[a].Set < groups[b].Set })
	return groups
}

func layoutBindings(group BindingGroup) []gpu.DescriptorBinding {
	out := make([]gpu.DescriptorBinding, 0, len(group.Bindings))
	for _, b := range group.Bindings {
		out = append(out, gpu.DescriptorBinding{
			Binding: b.Binding,
			Type:    gpu.DescriptorType(b.DescriptorType),
			Count:   b.DescriptorCount,
			Stages:  gpu.ShaderStageFlags(b.StageFlags),
		})
	}
	return out
}

// ShaderObject is a created shader together with the descriptor set layouts
// it was created with. Layouts[i] describes set i.
type ShaderObject struct {
	Name    string
	Stage   gpu.ShaderStageFlags
	Shader  gpu.Shader
	Layouts []gpu.DescriptorSetLayout
}

func (o *ShaderObject) Destroy(dev gpu.Device) {
	if o == nil {
		return
	}
	if o.Shader != 0 {
		dev.DestroyShader(o.Shader)
		o.Shader = 0
	}
	for _, l := range o.Layouts {
		dev.DestroyDescriptorSetLayout(l)
	}
	o.Layouts = nil
}

// ShaderFactory turns shader records into unlinked shader objects.
type ShaderFactory struct {
	dev gpu.Device
}

func NewShaderFactory(dev gpu.Device) *ShaderFactory {
	return &ShaderFactory{dev: dev}
}

// Create builds one descriptor set layout per set used by s and the shader
// object referencing all of them. Sets must be numbered densely from 0.
func (f *ShaderFactory) Create(s assets.Shader) (*ShaderObject, error) {
	if err := assets.ValidateSPIRV(s.SPIRV); err != nil {
		return nil, errors.Wrapf(err, "shader %s", s.Name)
	}
	groups := GroupBindings(s.Bindings)
	obj := &ShaderObject{Name: s.Name, Stage: StageFlags(s.Stage)}
	for i, g := range groups {
		if g.Set != uint32(i) {
			obj.Destroy(f.dev)
			return nil, errors.Errorf("shader %s: descriptor sets are not dense, set %d at position %d", s.Name, g.Set, i)
		}
		layout, err := f.dev.CreateDescriptorSetLayout(layoutBindings(g))
		if err != nil {
			obj.Destroy(f.dev)
			return nil, errors.Wrapf(err, "shader %s: set %d layout", s.Name, g.Set)
		}
		obj.Layouts = append(obj.Layouts, layout)
	}
	shader, err := f.dev.CreateShader(gpu.ShaderInfo{
		Stage:      obj.Stage,
		NextStage:  NextStages(s.Stage),
		Code:       s.SPIRV,
		EntryPoint: s.EntryPoint,
		SetLayouts: obj.Layouts,
	})
	if err != nil {
		obj.Destroy(f.dev)
		return nil, errors.Wrapf(err, "shader %s", s.Name)
	}
	obj.Shader = shader
	return obj, nil
}
