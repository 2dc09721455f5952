// Package mmap provides read-only memory mapping of snapshot files.
//
// Empty files are opened without a mapping. Mapped data stays valid until
// Close.
package mmap
