package arena

import "unsafe"

// Typed allocation helpers. Arena memory is not scanned by the garbage
// collector, so T must not hold Go pointers (no pointers, slices, maps,
// strings, interfaces, channels or funcs) that are the only reference to
// their target. Allocations are 8-byte aligned.

// Alloc returns a pointer to a zeroed T allocated under tag.
// The returned pointer is valid until tag is released.
func Alloc[T any](c *Cache, tag Tag) *T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return new(T)
	}
	b := c.AllocBytes(tag, size)
	clear(b)
	return (*T)(unsafe.Pointer(&b[0]))
}

// AllocSlice allocates a slice of n elements of type T under tag.
// The elements are not cleared. Returns nil if n <= 0.
func AllocSlice[T any](c *Cache, tag Tag, n int) []T {
	if n <= 0 {
		return nil
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 {
		return make([]T, n)
	}
	b := c.AllocBytes(tag, elemSize*n)
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}

// AllocSliceZeroed is AllocSlice with the elements explicitly cleared.
func AllocSliceZeroed[T any](c *Cache, tag Tag, n int) []T {
	s := AllocSlice[T](c, tag, n)
	clear(s)
	return s
}

// New allocates a T under tag, runs init on it and, when destroy is not
// nil, registers destroy to run on it when tag is released. Releasing the
// tag runs destroy before the backing page is dropped; destroy must not
// try to free the memory itself.
//
// c must not be closed before tag is released, or destroy runs on memory
// that was already returned to the raw allocator.
func New[T any](c *Cache, tag Tag, init func(*T), destroy func(*T)) *T {
	p := Alloc[T](c, tag)
	if init != nil {
		init(p)
	}
	if destroy != nil {
		RegisterDestructorFor(c.parent, tag, p, destroy)
	}
	return p
}

// NewOn is New on an idle Cache borrowed from co, for callers without a
// Cache of their own. co must not be closed before tag is released.
func NewOn[T any](co *Coordinator, tag Tag, init func(*T), destroy func(*T)) *T {
	c := co.acquire()
	defer co.putIdle(c)
	return New(c, tag, init, destroy)
}

// RegisterDestructorFor registers fn(p) to run when tag is released.
func RegisterDestructorFor[T any](co *Coordinator, tag Tag, p *T, fn func(*T)) {
	co.RegisterDestructor(tag, func() {
		fn(p)
	})
}

// HeapAlloc returns a pointer to a zeroed T allocated from h.
func HeapAlloc[T any](h *Heap) *T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return new(T)
	}
	b := h.AllocBytes(size)
	clear(b)
	return (*T)(unsafe.Pointer(&b[0]))
}

// HeapAllocSlice allocates a zeroed slice of n elements of type T from h.
// Returns nil if n <= 0.
func HeapAllocSlice[T any](h *Heap, n int) []T {
	if n <= 0 {
		return nil
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 {
		return make([]T, n)
	}
	b := h.AllocBytes(elemSize * n)
	clear(b)
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}
