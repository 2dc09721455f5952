package simd

import (
	"os"
	"runtime"
	"strings"
)

// EnvOverride names the environment variable that forces an ISA.
const EnvOverride = "SPARSEVEC_SIMD"

// ISA represents a SIMD instruction set architecture.
type ISA uint8

const (
	// Generic represents pure Go code paths without wide-lane grouping.
	Generic ISA = iota
	// NEON represents ARM64 Advanced SIMD.
	NEON
	// AVX2 represents x86-64 AVX2.
	AVX2
	// AVX512 represents x86-64 AVX-512 Foundation.
	AVX512
)

// String returns the string representation of an ISA.
func (i ISA) String() string {
	switch i {
	case Generic:
		return "generic"
	case NEON:
		return "neon"
	case AVX2:
		return "avx2"
	case AVX512:
		return "avx512"
	default:
		return "unknown"
	}
}

// ParseISA parses a string into an ISA value.
func ParseISA(s string) (ISA, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic":
		return Generic, true
	case "neon":
		return NEON, true
	case "avx2":
		return AVX2, true
	case "avx512":
		return AVX512, true
	default:
		return Generic, false
	}
}

// Set once by the platform init.
var (
	activeISA   ISA
	hasOverride bool

	hasASIMD   bool
	hasAVX2    bool
	hasAVX512F bool
)

// initCapabilities is called from the platform-specific init functions
// after CPU features are detected.
func initCapabilities() {
	activeISA = selectISA(os.Getenv(EnvOverride))
}

func selectISA(override string) ISA {
	hasOverride = false
	if override != "" {
		if isa, ok := ParseISA(override); ok && isISAAvailable(isa) {
			hasOverride = true
			return isa
		}
	}
	return selectBestISA()
}

func isISAAvailable(isa ISA) bool {
	switch isa {
	case Generic:
		return true
	case NEON:
		return hasASIMD
	case AVX2:
		return hasAVX2
	case AVX512:
		return hasAVX512F
	default:
		return false
	}
}

func selectBestISA() ISA {
	switch runtime.GOARCH {
	case "arm64":
		if hasASIMD {
			return NEON
		}
	case "amd64":
		if hasAVX512F {
			return AVX512
		}
		if hasAVX2 {
			return AVX2
		}
	}
	return Generic
}

// ActiveISA returns the currently active ISA.
func ActiveISA() ISA {
	return activeISA
}

// IsOverridden returns true if SPARSEVEC_SIMD selected the active ISA.
func IsOverridden() bool {
	return hasOverride
}

// GroupedProbe reports whether plane lookups may test groups of four plane
// handles at once. False selects per-plane checks.
func GroupedProbe() bool {
	return activeISA != Generic
}
