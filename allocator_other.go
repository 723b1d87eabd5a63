//go:build !linux

package arena

// MmapAllocator falls back to the Go heap where anonymous mappings are not
// wired up.
type MmapAllocator struct {
	GoAllocator
}
