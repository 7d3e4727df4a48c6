// Completion: 100% - Writable/Executable region lifecycle complete
package execmem

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/tliron/commonlog"

	"github.com/xyproto/bfjit/internal/diag"
)

// A region moves through three states, each with its own type:
//
//	Acquire -> *Writable -> Seal -> *Executable -> Release
//
// A Writable hands out its bytes until it is sealed. Sealing flips the pages to
// read+execute and transfers ownership to the returned Executable, after which the
// Writable can no longer be written to. Releasing either one twice is harmless.

var errReleased = errors.New("region already released")

func logger() commonlog.Logger {
	return commonlog.GetLogger("bfjit.execmem")
}

// Writable is a read+write region that machine code is emitted into
type Writable struct {
	mem      []byte
	sealed   bool
	released bool
}

// Executable is a sealed, read+execute region
type Executable struct {
	mem      []byte
	released bool
}

// Acquire maps a fresh read+write region of at least size bytes, rounded up to whole pages
func Acquire(size int) (*Writable, error) {
	if size <= 0 {
		return nil, diag.Wrap(diag.AllocationFailure, nil, "invalid region size %d", size)
	}
	length := roundUp(size, pageSize())
	mem, err := alloc(length)
	if err != nil {
		return nil, diag.Wrap(diag.AllocationFailure, err, "code region of %d bytes", length)
	}
	logger().Debugf("acquired %s", describe(mem))
	return &Writable{mem: mem}, nil
}

// Bytes returns the writable memory. Panics once the region is sealed or released.
func (w *Writable) Bytes() []byte {
	if w.sealed {
		panic("execmem: cannot write to a sealed region")
	}
	if w.released {
		panic("execmem: cannot write to a released region")
	}
	return w.mem
}

// Len returns the size of the region in bytes
func (w *Writable) Len() int {
	return len(w.mem)
}

// Seal makes the region executable and read-only. On failure the region is released.
func (w *Writable) Seal() (*Executable, error) {
	if w.sealed || w.released {
		return nil, diag.Wrap(diag.KindInternal, errReleased, "seal")
	}
	if err := protectExec(w.mem); err != nil {
		w.Release()
		return nil, diag.Wrap(diag.AllocationFailure, err, "cannot make code region executable")
	}
	w.sealed = true
	e := &Executable{mem: w.mem}
	w.mem = nil
	logger().Debugf("sealed %s", describe(e.mem))
	return e, nil
}

// Release unmaps a region that was never sealed. After Seal it does nothing,
// since the Executable owns the memory then.
func (w *Writable) Release() error {
	if w.sealed || w.released {
		return nil
	}
	w.released = true
	mem := w.mem
	w.mem = nil
	return release(mem)
}

// Entry returns the address of the first byte of the region
func (e *Executable) Entry() uintptr {
	if e.released {
		panic("execmem: entry of a released region")
	}
	return address(e.mem)
}

// Len returns the size of the region in bytes
func (e *Executable) Len() int {
	return len(e.mem)
}

// Release unmaps the region. Calling it again does nothing.
func (e *Executable) Release() error {
	if e.released {
		return nil
	}
	e.released = true
	mem := e.mem
	e.mem = nil
	return release(mem)
}

func release(mem []byte) error {
	if err := free(mem); err != nil {
		return diag.Wrap(diag.AllocationFailure, err, "cannot unmap code region")
	}
	logger().Debugf("released %d bytes", len(mem))
	return nil
}

// Scope runs the whole acquire, emit, seal, run, release sequence. emit fills the
// writable bytes and returns how many it used. The region is released on every path.
func Scope(size int, emit func(code []byte) (int, error), run func(code *Executable) error) (err error) {
	w, err := Acquire(size)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := w.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	n, err := emit(w.Bytes())
	if err != nil {
		return err
	}
	if n > w.Len() {
		return diag.Wrap(diag.KindInternal, nil, "emitted %d bytes into a region of %d", n, w.Len())
	}

	e, err := w.Seal()
	if err != nil {
		return err
	}
	defer func() {
		if rerr := e.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return run(e)
}

func roundUp(n, page int) int {
	return (n + page - 1) / page * page
}

func describe(mem []byte) string {
	return fmt.Sprintf("%d bytes at %#x", len(mem), address(mem))
}

func address(mem []byte) uintptr {
	if len(mem) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&mem[0]))
}
