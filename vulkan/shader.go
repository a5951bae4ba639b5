package vulkan

import (
	"runtime"
	"unsafe"

	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CreateShader creates one unlinked SPIR-V shader object. Code must be a
// whole number of 32-bit words.
func (c *Context) CreateShader(info gpu.ShaderInfo) (gpu.Shader, error) {
	if len(info.Code) == 0 || len(info.Code)%4 != 0 {
		return 0, errors.Errorf("create shader: SPIR-V size %d is not a multiple of 4", len(info.Code))
	}
	entry := info.EntryPoint
	if entry == "" {
		entry = "main"
	}
	name := append([]byte(entry), 0)
	code := info.Code

	var pinner runtime.Pinner
	defer pinner.Unpin()
	pinner.Pin(&code[0])
	pinner.Pin(&name[0])

	ci := shaderCreateInfo{
		sType:     sTypeShaderCreateInfo,
		stage:     uint32(info.Stage),
		nextStage: uint32(info.NextStage),
		codeType:  shaderCodeTypeSPIRV,
		codeSize:  uintptr(len(code)),
		pCode:     unsafe.Pointer(&code[0]),
		pName:     &name[0],
	}
	if len(info.SetLayouts) > 0 {
		layouts := make([]uint64, len(info.SetLayouts))
		for i, l := range info.SetLayouts {
			layout, ok := c.setLayouts.get(l)
			if !ok {
				return 0, errors.Wrapf(ErrUnknownHandle, "descriptor set layout %d", l)
			}
			layouts[i] = rawSetLayout(layout)
		}
		pinner.Pin(&layouts[0])
		ci.setLayoutCount = uint32(len(layouts))
		ci.pSetLayouts = &layouts[0]
	}

	var shader uint64
	ret := c.table.createShaders(rawDevice(c.device), 1, &ci, 0, &shader)
	if err := NewError(vk.Result(ret)); err != nil {
		return 0, errors.Wrapf(err, "create shader %q", entry)
	}
	return c.shaders.add(shader), nil
}

func (c *Context) DestroyShader(h gpu.Shader) {
	if s, ok := c.shaders.remove(h); ok {
		c.table.destroyShader(rawDevice(c.device), s, 0)
	}
}
