// Completion: 100% - Backend selection complete
package native

import (
	"github.com/xyproto/bfjit/internal/diag"
	"github.com/xyproto/bfjit/internal/engine"
)

// ForPlatform returns the backend for the given platform, or an UnsupportedBackend error
func ForPlatform(p engine.Platform) (Backend, error) {
	switch p.Arch {
	case engine.ArchX86_64:
		switch p.OS {
		case engine.OSWindows:
			return AMD64{ABI: Win64}, nil
		case engine.OSLinux, engine.OSDarwin, engine.OSFreeBSD:
			return AMD64{ABI: SysV}, nil
		}
	case engine.ArchARM64:
		switch p.OS {
		case engine.OSLinux, engine.OSFreeBSD:
			return ARM64{}, nil
		case engine.OSDarwin:
			// Executable pages need MAP_JIT and pthread_jit_write_protect_np there
			return nil, diag.Wrap(diag.UnsupportedBackend, nil, "no native backend for %s", p)
		}
	}
	return nil, diag.Wrap(diag.UnsupportedBackend, nil, "no native backend for %s", p)
}

// ForHost returns the backend for the platform this binary was built for
func ForHost() (Backend, error) {
	return ForPlatform(engine.Host())
}
