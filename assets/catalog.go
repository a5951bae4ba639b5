package assets

import (
	"embed"
	"io/fs"

	"github.com/pkg/errors"
)

//go:generate slangc shaders/triangle.slang -target spirv -entry vertexMain -stage vertex -o shaders/triangle.vert.spv
//go:generate slangc shaders/triangle.slang -target spirv -entry fragmentMain -stage fragment -o shaders/triangle.frag.spv
//go:generate slangc shaders/basic_model.slang -target spirv -matrix-layout-column-major -entry vertexMain -stage vertex -o shaders/basic_model.vert.spv
//go:generate slangc shaders/basic_model.slang -target spirv -matrix-layout-column-major -entry fragmentMain -stage fragment -o shaders/basic_model.frag.spv

//go:embed shaders/*.spv
var compiled embed.FS

// Compiled returns the catalog binaries built into the package, keyed by
// ShaderID.File.
func Compiled() fs.FS {
	sub, err := fs.Sub(compiled, "shaders")
	if err != nil {
		panic(err)
	}
	return sub
}

// ShaderID names a shader in the catalog.
type ShaderID int

const (
	ShaderTriangleVertex ShaderID = iota
	ShaderTriangleFragment
	ShaderBasicModelVertex
	ShaderBasicModelFragment
)

const (
	descriptorUniformBuffer = 6
	stageFlagVertex         = 0x1
)

type catalogEntry struct {
	name     string
	file     string
	stage    ShaderStage
	entry    string
	bindings []DescriptorBinding
}

// slangc emits "main" as the SPIR-V entry point name regardless of the source
// function name.
var catalog = map[ShaderID]catalogEntry{
	ShaderTriangleVertex: {
		name:  "triangle_vertex",
		file:  "triangle.vert.spv",
		stage: StageVertex,
		entry: "main",
	},
	ShaderTriangleFragment: {
		name:  "triangle_fragment",
		file:  "triangle.frag.spv",
		stage: StageFragment,
		entry: "main",
	},
	ShaderBasicModelVertex: {
		name:  "basic_model_vertex",
		file:  "basic_model.vert.spv",
		stage: StageVertex,
		entry: "main",
		bindings: []DescriptorBinding{
			{Set: 0, Binding: 0, DescriptorType: descriptorUniformBuffer, DescriptorCount: 1, StageFlags: stageFlagVertex},
		},
	},
	ShaderBasicModelFragment: {
		name:  "basic_model_fragment",
		file:  "basic_model.frag.spv",
		stage: StageFragment,
		entry: "main",
	},
}

// ErrUnknownShader is returned for ids missing from the catalog.
var ErrUnknownShader = errors.New("unknown shader id")

// File returns the compiled file name of a catalog shader.
func (id ShaderID) File() string {
	return catalog[id].file
}

// Load returns the complete record of a compiled-in catalog shader.
func Load(id ShaderID) (Shader, error) {
	return LoadShader(Compiled(), id)
}

// LoadShader reads the compiled binary of id from fsys and returns the complete
// shader record. fsys replaces the compiled-in binaries, for shaders rebuilt
// at development time.
func LoadShader(fsys fs.FS, id ShaderID) (Shader, error) {
	e, ok := catalog[id]
	if !ok {
		return Shader{}, errors.Wrapf(ErrUnknownShader, "id %d", int(id))
	}
	code, err := fs.ReadFile(fsys, e.file)
	if err != nil {
		return Shader{}, errors.Wrapf(err, "read shader %s", e.name)
	}
	if err := ValidateSPIRV(code); err != nil {
		return Shader{}, errors.Wrapf(err, "shader %s", e.name)
	}
	return Shader{
		Name:       e.name,
		Stage:      e.stage,
		SPIRV:      code,
		EntryPoint: e.entry,
		Bindings:   append([]DescriptorBinding(nil), e.bindings...),
	}, nil
}
