// Package assets holds the compiled-in asset records the engine consumes:
// shader records with their descriptor metadata and binary meshes.
package assets

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// ShaderStage is the pipeline stage a shader record was compiled for.
type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StageTessellationControl
	StageTessellationEvaluation
	StageGeometry
	StageFragment
	StageCompute
	StageTask
	StageMesh
	StageRayGen
)

var stageNames = [...]string{
	StageVertex:                 "vertex",
	StageTessellationControl:    "tessellation_control",
	StageTessellationEvaluation: "tessellation_evaluation",
	StageGeometry:               "geometry",
	StageFragment:               "fragment",
	StageCompute:                "compute",
	StageTask:                   "task",
	StageMesh:                   "mesh",
	StageRayGen:                 "raygen",
}

func (s ShaderStage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("ShaderStage(%d)", int(s))
}

// DescriptorBinding describes one descriptor-set-layout binding with plain
// integers so it can be read without any graphics API types. DescriptorType and
// StageFlags use the Vulkan numeric values.
type DescriptorBinding struct {
	Set             uint32
	Binding         uint32
	DescriptorType  uint32
	DescriptorCount uint32
	StageFlags      uint32
}

// Shader is an immutable compiled shader record.
type Shader struct {
	Name       string
	Stage      ShaderStage
	SPIRV      []byte
	EntryPoint string
	Bindings   []DescriptorBinding
}

const spirvMagic = 0x07230203

// ErrInvalidSPIRV is returned for blobs that are not SPIR-V modules.
var ErrInvalidSPIRV = errors.New("invalid SPIR-V module")

// ValidateSPIRV checks the size and magic number of a SPIR-V blob.
func ValidateSPIRV(code []byte) error {
	if len(code) < 20 || len(code)%4 != 0 {
		return errors.Wrapf(ErrInvalidSPIRV, "size %d", len(code))
	}
	if binary.LittleEndian.Uint32(code) != spirvMagic {
		return errors.Wrapf(ErrInvalidSPIRV, "magic %#x", binary.LittleEndian.Uint32(code))
	}
	return nil
}
