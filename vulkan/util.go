package vulkan

import (
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

// safeString returns s terminated by a single NUL as vulkan-go expects for
// C string fields.
func safeString(s string) string {
	return strings.TrimRight(s, "\x00") + "\x00"
}

func trimString(s string) string {
	return strings.TrimRight(s, "\x00")
}

// checkExisting returns the names of required present in actual, NUL
// terminated, and how many were missing.
func checkExisting(actual, required []string) (existing []string, missing int) {
	have := make(map[string]struct{}, len(actual))
	for _, name := range actual {
		have[trimString(name)] = struct{}{}
	}
	for _, name := range required {
		if _, ok := have[trimString(name)]; ok {
			existing = append(existing, safeString(name))
			continue
		}
		missing++
	}
	return existing, missing
}

func vkBool(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

func bool32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
