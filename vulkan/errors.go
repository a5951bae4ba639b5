package vulkan

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/andewx/varre/gpu"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var (
	// ErrNoSuitableDevice is returned when no physical device supports the
	// shader object feature chain and the required extensions.
	ErrNoSuitableDevice = errors.New("no suitable vulkan device")
	// ErrUnknownHandle is returned when a handle was never created by this
	// context or was already destroyed.
	ErrUnknownHandle = errors.New("unknown handle")
)

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// NewError converts a failed Vulkan result into an error that names the
// calling function. Results that have a gpu sentinel wrap it, so callers can
// test with errors.Is(err, gpu.ErrOutOfDate).
func NewError(ret vk.Result) error {
	if !isError(ret) {
		return nil
	}
	err := resultError(ret)
	pc, file, line, ok := runtime.Caller(1)
	if !ok {
		return errors.Wrap(err, "vulkan error")
	}
	return errors.Wrapf(err, "vulkan error on %s", newStackFrame(pc, file, line))
}

func resultError(ret vk.Result) error {
	switch ret {
	case vk.ErrorOutOfDate:
		return gpu.ErrOutOfDate
	case vk.Suboptimal:
		return gpu.ErrSuboptimal
	case vk.ErrorDeviceLost:
		return gpu.ErrDeviceLost
	}
	if e := vk.Error(ret); e != nil {
		return errors.Errorf("%s (%d)", e.Error(), int32(ret))
	}
	return errors.Errorf("vulkan result %d", int32(ret))
}

type stackFrame struct {
	function string
	file     string
	line     int
}

func newStackFrame(pc uintptr, file string, line int) stackFrame {
	name := "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		name = fn.Name()
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
	}
	return stackFrame{function: name, file: filepath.Base(file), line: line}
}

func (f stackFrame) String() string {
	return fmt.Sprintf("%s (%s:%d)", f.function, f.file, f.line)
}

func orPanic(err error, finalizers ...func()) {
	if err != nil {
		for _, fn := range finalizers {
			fn()
		}
		panic(err)
	}
}

// checkErr turns a panic raised by orPanic back into a returned error.
func checkErr(err *error) {
	if v := recover(); v != nil {
		if e, ok := v.(error); ok {
			*err = e
			return
		}
		*err = fmt.Errorf("%+v", v)
	}
}
