package arena

import "unsafe"

// Unique owns a single T carved from a raw Allocator. The value is freed by
// Destroy, never by the garbage collector, so T must not hold Go pointers.
// A Unique must not be copied once created.
type Unique[T any] struct {
	alloc Allocator
	buf   []byte
	ptr   *T
}

// MakeUnique allocates a zeroed T from a and runs init on it.
// A nil a uses GoAllocator.
func MakeUnique[T any](a Allocator, init func(*T)) *Unique[T] {
	if a == nil {
		a = GoAllocator{}
	}
	u := &Unique[T]{alloc: a}
	u.Create(init)
	return u
}

// Create destroys the current value, if any, and replaces it with a new
// zeroed T initialised by init.
func (u *Unique[T]) Create(init func(*T)) {
	u.Destroy()
	if u.alloc == nil {
		u.alloc = GoAllocator{}
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		u.ptr = new(T)
	} else {
		u.buf = u.alloc.Alloc(size)
		clear(u.buf)
		u.ptr = (*T)(unsafe.Pointer(&u.buf[0]))
	}
	if init != nil {
		init(u.ptr)
	}
}

// Destroy frees the owned value and reports whether there was one.
func (u *Unique[T]) Destroy() bool {
	if u.ptr == nil {
		return false
	}
	if u.buf != nil {
		u.alloc.Free(u.buf)
		u.buf = nil
	}
	u.ptr = nil
	return true
}

// Get returns the owned value, or nil.
func (u *Unique[T]) Get() *T {
	return u.ptr
}

// Valid reports whether u owns a value.
func (u *Unique[T]) Valid() bool {
	return u.ptr != nil
}

// Weak is a non-owning reference. It does not observe the owner: after the
// owner destroys its value a Weak still points at freed memory.
type Weak[T any] struct {
	ptr *T
}

// WeakOf returns a Weak viewing the value owned by u.
func WeakOf[T any](u *Unique[T]) Weak[T] {
	return Weak[T]{ptr: u.Get()}
}

// WeakFrom returns a Weak viewing p.
func WeakFrom[T any](p *T) Weak[T] {
	return Weak[T]{ptr: p}
}

// Set points w at p.
func (w *Weak[T]) Set(p *T) {
	w.ptr = p
}

// Get returns the viewed pointer, nil if w is empty.
func (w Weak[T]) Get() *T {
	return w.ptr
}

// Valid reports whether w points at anything. It cannot tell whether the
// owner has since destroyed the value.
func (w Weak[T]) Valid() bool {
	return w.ptr != nil
}
