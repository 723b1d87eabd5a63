package arena

import "sync/atomic"

// Allocator is the raw byte allocator arena pages are carved from.
//
// Alloc returns a buffer of exactly n bytes, uniquely owned until it is
// passed to Free. Exhaustion is not an error value: implementations panic
// with an error matching ErrAllocate. Free must be given the exact slice
// Alloc returned, and at most once.
//
// Implementations must be safe for concurrent use.
type Allocator interface {
	Alloc(n int) []byte
	Free(b []byte)
}

// GoAllocator allocates from the Go heap. Free drops nothing explicitly;
// the buffer is reclaimed by the garbage collector once unreachable.
type GoAllocator struct{}

// Alloc returns a zeroed n byte slice from the Go heap.
func (GoAllocator) Alloc(n int) []byte {
	return make([]byte, n)
}

// Free is a no-op.
func (GoAllocator) Free([]byte) {}

// AllocatorStats is a snapshot of a CountingAllocator.
type AllocatorStats struct {
	Allocs      int64 // Buffers handed out
	Frees       int64 // Buffers returned
	BytesMapped int64 // Bytes handed out
	BytesFreed  int64 // Bytes returned
}

// Live returns the bytes currently held by callers.
func (s AllocatorStats) Live() int64 {
	return s.BytesMapped - s.BytesFreed
}

// CountingAllocator wraps an Allocator with running totals.
type CountingAllocator struct {
	next        Allocator
	allocs      atomic.Int64
	frees       atomic.Int64
	bytesMapped atomic.Int64
	bytesFreed  atomic.Int64
}

// NewCountingAllocator wraps next. A nil next wraps GoAllocator.
func NewCountingAllocator(next Allocator) *CountingAllocator {
	if next == nil {
		next = GoAllocator{}
	}
	return &CountingAllocator{next: next}
}

// Alloc allocates from the wrapped allocator and counts the buffer.
func (c *CountingAllocator) Alloc(n int) []byte {
	b := c.next.Alloc(n)
	c.allocs.Add(1)
	c.bytesMapped.Add(int64(len(b)))
	return b
}

// Free frees through the wrapped allocator and counts the buffer.
func (c *CountingAllocator) Free(b []byte) {
	c.next.Free(b)
	c.frees.Add(1)
	c.bytesFreed.Add(int64(len(b)))
}

// Stats returns the current totals.
func (c *CountingAllocator) Stats() AllocatorStats {
	return AllocatorStats{
		Allocs:      c.allocs.Load(),
		Frees:       c.frees.Load(),
		BytesMapped: c.bytesMapped.Load(),
		BytesFreed:  c.bytesFreed.Load(),
	}
}
