//go:build !darwin && !linux

package vulkan

import (
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
)

type loader struct{}

func openLoader() (*loader, error) {
	return nil, errors.Errorf("vulkan: extension loader unsupported on %s", runtime.GOOS)
}

func (l *loader) instanceLookup(uintptr) procLookup {
	return func(string) uintptr { return 0 }
}

func (l *loader) deviceLookup(uintptr) procLookup {
	return func(string) uintptr { return 0 }
}

func (l *loader) close() {}

func (l *loader) procAddr() unsafe.Pointer { return nil }
