// Completion: 100% - Platform-specific module complete
//go:build windows
// +build windows

package execmem

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

func pageSize() int {
	return 4096
}

func alloc(length int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(length), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("VirtualAlloc failed: %v", err)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), length), nil
}

func protectExec(mem []byte) error {
	var old uint32
	if err := windows.VirtualProtect(address(mem), uintptr(len(mem)), windows.PAGE_EXECUTE_READ, &old); err != nil {
		return fmt.Errorf("VirtualProtect failed: %v", err)
	}
	return nil
}

func free(mem []byte) error {
	if err := windows.VirtualFree(address(mem), 0, windows.MEM_RELEASE); err != nil {
		return fmt.Errorf("VirtualFree failed: %v", err)
	}
	return nil
}
