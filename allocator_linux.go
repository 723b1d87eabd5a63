//go:build linux

package arena

import "golang.org/x/sys/unix"

// MmapAllocator backs every buffer with its own anonymous private mapping,
// so Free returns the memory to the operating system immediately.
type MmapAllocator struct{}

// Alloc maps n fresh zeroed bytes, panicking with ErrAllocate on failure.
func (MmapAllocator) Alloc(n int) []byte {
	b, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		panic(fatal(ErrAllocate, "mmap", err))
	}
	return b
}

// Free unmaps b, panicking with ErrFree on failure.
func (MmapAllocator) Free(b []byte) {
	if len(b) == 0 {
		return
	}
	if err := unix.Munmap(b); err != nil {
		panic(fatal(ErrFree, "munmap", err))
	}
}
