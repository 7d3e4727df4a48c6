// Completion: 100% - Platform-specific module complete
//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows
// +build !linux,!darwin,!freebsd,!netbsd,!openbsd,!windows

package execmem

import (
	"errors"
	"runtime"
)

var errNoExecMemory = errors.New("executable memory is not supported on " + runtime.GOOS)

func pageSize() int {
	return 4096
}

func alloc(int) ([]byte, error) {
	return nil, errNoExecMemory
}

func protectExec([]byte) error {
	return errNoExecMemory
}

func free([]byte) error {
	return nil
}
