//go:build darwin || linux

package vulkan

import (
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/pkg/errors"
)

func libraryNames() []string {
	if runtime.GOOS == "darwin" {
		return []string{"libvulkan.1.dylib", "libMoltenVK.dylib"}
	}
	return []string{"libvulkan.so.1", "libvulkan.so"}
}

// loader resolves entry points from the system Vulkan loader without cgo.
type loader struct {
	lib                 uintptr
	getInstanceProcAddr func(instance uintptr, name string) uintptr
	getDeviceProcAddr   func(device uintptr, name string) uintptr
}

func openLoader() (*loader, error) {
	var (
		lib     uintptr
		lastErr error
	)
	for _, name := range libraryNames() {
		h, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			lib = h
			break
		}
		lastErr = err
	}
	if lib == 0 {
		return nil, errors.Wrap(lastErr, "vulkan: open loader library")
	}
	l := &loader{lib: lib}
	err := bindAll(func(name string) uintptr {
		addr, err := purego.Dlsym(lib, name)
		if err != nil {
			return 0
		}
		return addr
	}, []entryPoint{
		{&l.getInstanceProcAddr, "vkGetInstanceProcAddr"},
		{&l.getDeviceProcAddr, "vkGetDeviceProcAddr"},
	})
	if err != nil {
		purego.Dlclose(lib)
		return nil, err
	}
	return l, nil
}

func (l *loader) instanceLookup(instance uintptr) procLookup {
	return func(name string) uintptr {
		return l.getInstanceProcAddr(instance, name)
	}
}

func (l *loader) deviceLookup(device uintptr) procLookup {
	return func(name string) uintptr {
		return l.getDeviceProcAddr(device, name)
	}
}

func (l *loader) close() {
	if l.lib != 0 {
		purego.Dlclose(l.lib)
		l.lib = 0
	}
}

// procAddr returns vkGetInstanceProcAddr for vulkan-go.
func (l *loader) procAddr() unsafe.Pointer {
	addr, err := purego.Dlsym(l.lib, "vkGetInstanceProcAddr")
	if err != nil {
		return nil
	}
	return *(*unsafe.Pointer)(unsafe.Pointer(&addr))
}
