// Completion: 100% - Host platform detection complete
package engine

import (
	"fmt"
	"runtime"
	"strings"
)

// Arch is a CPU architecture
type Arch int

const (
	ArchUnknown Arch = iota
	ArchX86_64
	ArchARM64
	ArchRiscv64
)

func (a Arch) String() string {
	switch a {
	case ArchX86_64:
		return "x86_64"
	case ArchARM64:
		return "aarch64"
	case ArchRiscv64:
		return "riscv64"
	default:
		return "unknown"
	}
}

// ParseArch parses an architecture string (like GOARCH values)
func ParseArch(s string) (Arch, error) {
	switch strings.ToLower(s) {
	case "x86_64", "amd64", "x86-64":
		return ArchX86_64, nil
	case "aarch64", "arm64":
		return ArchARM64, nil
	case "riscv64", "riscv", "rv64":
		return ArchRiscv64, nil
	default:
		return ArchUnknown, fmt.Errorf("unknown architecture: %s", s)
	}
}

// OS is an operating system
type OS int

const (
	OSOther OS = iota
	OSLinux
	OSDarwin
	OSFreeBSD
	OSWindows
)

func (o OS) String() string {
	switch o {
	case OSLinux:
		return "linux"
	case OSDarwin:
		return "darwin"
	case OSFreeBSD:
		return "freebsd"
	case OSWindows:
		return "windows"
	default:
		return "other"
	}
}

// ParseOS parses an OS string (like GOOS values)
func ParseOS(s string) (OS, error) {
	switch strings.ToLower(s) {
	case "linux":
		return OSLinux, nil
	case "darwin", "macos":
		return OSDarwin, nil
	case "freebsd":
		return OSFreeBSD, nil
	case "windows", "win":
		return OSWindows, nil
	default:
		return OSOther, fmt.Errorf("unknown OS: %s", s)
	}
}

// Platform represents a platform (architecture + OS)
type Platform struct {
	Arch Arch
	OS   OS
}

// String returns a human-readable platform string
func (p Platform) String() string {
	return fmt.Sprintf("%s-%s", p.Arch, p.OS)
}

// ParsePlatform parses "os/arch", the form used by GOOS/GOARCH pairs
func ParsePlatform(s string) (Platform, error) {
	osName, archName, ok := strings.Cut(s, "/")
	if !ok {
		return Platform{}, fmt.Errorf("platform %q is not of the form os/arch", s)
	}
	o, err := ParseOS(osName)
	if err != nil {
		return Platform{}, err
	}
	a, err := ParseArch(archName)
	if err != nil {
		return Platform{}, err
	}
	return Platform{Arch: a, OS: o}, nil
}

// Host returns the platform this binary was built for. Unknown parts stay zero.
func Host() Platform {
	a, _ := ParseArch(runtime.GOARCH)
	o, _ := ParseOS(runtime.GOOS)
	return Platform{Arch: a, OS: o}
}
