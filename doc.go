// Package arena implements tagged arena allocation for Go.
//
// # Overview
//
// Allocations are stamped with a caller-chosen 64-bit Tag and carved from
// page-sized arenas (2 MiB by default). Everything allocated under a tag,
// together with any cleanup registered for it, is released in one
// operation, regardless of which goroutine allocated it. This suits:
//
//   - Frame- or request-scoped scratch memory
//   - Batch jobs whose intermediate state dies together
//   - Reducing garbage collection pressure for pointer-free data
//
// # Basic Usage
//
//	co := arena.NewCoordinator()
//	c := co.NewCache() // one per worker goroutine
//	defer c.Close()
//
//	const frame arena.Tag = 42
//
//	buf := c.AllocBytes(frame, 1024)
//	v := arena.Alloc[Vec3](c, frame)
//	xs := arena.AllocSlice[float64](c, frame, 128)
//
//	// Tag-scoped lifetime with a destructor.
//	h := arena.New(c, frame, func(h *Handle) { h.fd = open() }, func(h *Handle) { h.close() })
//
//	co.Release(frame) // runs destructors LIFO, then drops every page for frame
//
// Callers without a per-worker Cache can use Coordinator.AllocBytes, which
// borrows an idle Cache, or the package-level functions that operate on
// Default().
//
// # Thread Safety
//
// A Cache is meant to be used by one goroutine at a time but is guarded by
// its own mutex, because Release reaches into every registered Cache. The
// Coordinator is safe for concurrent use. Release is not atomic across
// Caches: an allocation under a tag racing that tag's Release may survive
// it. Stop allocating under a tag before releasing it.
//
// # Memory Layout
//
// Each (Cache, Tag) pair owns an append-only list of pages. A page is sized
// to the next whole multiple of the page size that fits its triggering
// allocation plus a small header. Offsets are 8-byte aligned. Once a page
// fails to fit a request it is never revisited, so allocation stays O(1)
// amortised at the cost of density. Nothing is freed individually.
//
// # Raw Allocators
//
// Pages come from an Allocator: GoAllocator (Go heap), MmapAllocator
// (anonymous mappings, unmapped on release) or any implementation, wrapped
// in a CountingAllocator for statistics. Heap and Unique use the same
// interface for one-shot heaps and single owned values.
//
// # Metrics and Monitoring
//
// CurrentStorage and TagStorage report committed footprint, the sum of page
// capacities, not live bytes:
//
//	m := co.Metrics()
//	fmt.Printf("Utilization: %.2f%%\n", m.Utilization*100)
//	fmt.Printf("Committed: %d bytes in %d pages\n", m.Capacity, m.NumPages)
//
// Each release is traced as a "tagarena.Release" OpenTelemetry span.
package arena
