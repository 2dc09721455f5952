// Package simd detects the CPU capabilities that gate wide-lane code paths.
//
// Detection runs once at package init using golang.org/x/sys/cpu. The
// SPARSEVEC_SIMD environment variable overrides the selection
// (generic, neon, avx2, avx512); an override naming an ISA the CPU lacks is
// ignored.
package simd
