package aesprf

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// hasAESInstructions reports whether crypto/aes will run on dedicated
// instructions. On every other platform crypto/aes uses lookup tables,
// which is exactly what the software engine exists to avoid.
func hasAESInstructions() bool {
	switch runtime.GOARCH {
	case "amd64":
		return cpu.X86.HasAES && cpu.X86.HasSSE41 && cpu.X86.HasSSSE3
	case "arm64":
		return cpu.ARM64.HasAES
	case "s390x":
		return cpu.S390X.HasAES && cpu.S390X.HasAESCBC && cpu.S390X.HasAESCTR
	case "ppc64le":
		return cpu.PPC64.IsPOWER8
	default:
		return false
	}
}
