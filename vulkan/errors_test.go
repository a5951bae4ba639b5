package vulkan

import (
	"errors"
	"strings"
	"testing"

	"github.com/andewx/varre/gpu"
	vk "github.com/vulkan-go/vulkan"
)

func TestNewError(t *testing.T) {
	if err := NewError(vk.Success); err != nil {
		t.Fatalf("NewError(Success) = %v", err)
	}
	tests := []struct {
		ret  vk.Result
		want error
	}{
		{vk.ErrorOutOfDate, gpu.ErrOutOfDate},
		{vk.Suboptimal, gpu.ErrSuboptimal},
		{vk.ErrorDeviceLost, gpu.ErrDeviceLost},
	}
	for _, tt := range tests {
		err := NewError(tt.ret)
		if !errors.Is(err, tt.want) {
			t.Errorf("NewError(%d) = %v, want wrapping %v", tt.ret, err, tt.want)
		}
	}
	err := NewError(vk.ErrorOutOfDeviceMemory)
	if err == nil || !strings.Contains(err.Error(), "TestNewError") {
		t.Errorf("error does not name the caller: %v", err)
	}
}

func TestCheckErr(t *testing.T) {
	fail := func() (err error) {
		defer checkErr(&err)
		orPanic(ErrUnknownHandle)
		return nil
	}
	if err := fail(); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("recovered %v", err)
	}
	finalized := false
	func() {
		defer func() { recover() }()
		orPanic(ErrUnknownHandle, func() { finalized = true })
	}()
	if !finalized {
		t.Error("finalizer not run")
	}
}
