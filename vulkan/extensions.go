package vulkan

import vk "github.com/vulkan-go/vulkan"

const (
	extDebugReport          = "VK_EXT_debug_report"
	extSwapchain            = "VK_KHR_swapchain"
	extShaderObject         = "VK_EXT_shader_object"
	extUnifiedImageLayouts  = "VK_KHR_unified_image_layouts"
	extPortabilityEnumerate = "VK_KHR_portability_enumeration"
	layerKhronosValidation  = "VK_LAYER_KHRONOS_validation"
)

const instanceCreatePortability = 0x1

// InstanceExtensions gets a list of instance extensions available on the platform.
func InstanceExtensions() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	orPanic(NewError(ret))
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateInstanceExtensionProperties("", &count, list)
	orPanic(NewError(ret))
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// DeviceExtensions gets a list of extensions available on the provided physical device.
func DeviceExtensions(pd vk.PhysicalDevice) (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateDeviceExtensionProperties(pd, "", &count, nil)
	orPanic(NewError(ret))
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateDeviceExtensionProperties(pd, "", &count, list)
	orPanic(NewError(ret))
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// ValidationLayers gets a list of validation layers available on the platform.
func ValidationLayers() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceLayerProperties(&count, nil)
	orPanic(NewError(ret))
	list := make([]vk.LayerProperties, count)
	ret = vk.EnumerateInstanceLayerProperties(&count, list)
	orPanic(NewError(ret))
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, err
}

// ExtensionSet splits a list of extension or layer names into the ones that
// must exist and the ones enabled only when present.
type ExtensionSet struct {
	Required []string
	Wanted   []string
}

// Missing returns the required names absent from actual.
func (s ExtensionSet) Missing(actual []string) []string {
	return missingFrom(actual, s.Required)
}

// MissingWanted returns the wanted names absent from actual.
func (s ExtensionSet) MissingWanted(actual []string) []string {
	return missingFrom(actual, s.Wanted)
}

// Enable returns the names to pass at creation time: every required name,
// then each wanted name that is present in actual and not already listed.
// Names are NUL terminated.
func (s ExtensionSet) Enable(actual []string) []string {
	have := make(map[string]bool, len(actual))
	for _, name := range actual {
		have[trimString(name)] = true
	}
	seen := make(map[string]bool)
	var out []string
	for _, name := range s.Required {
		name = trimString(name)
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, safeString(name))
	}
	for _, name := range s.Wanted {
		name = trimString(name)
		if seen[name] || !have[name] {
			continue
		}
		seen[name] = true
		out = append(out, safeString(name))
	}
	return out
}

// Has reports whether name is in the list returned by Enable.
func Has(enabled []string, name string) bool {
	for _, e := range enabled {
		if trimString(e) == trimString(name) {
			return true
		}
	}
	return false
}

func missingFrom(actual, names []string) []string {
	have := make(map[string]bool, len(actual))
	for _, name := range actual {
		have[trimString(name)] = true
	}
	var missing []string
	for _, name := range names {
		if !have[trimString(name)] {
			missing = append(missing, trimString(name))
		}
	}
	return missing
}
