package arena

// Heap is a standalone paged bump allocator that is destroyed in one shot.
// Unlike tagged storage it can be rewound with Reset. Not goroutine-safe.
type Heap struct {
	storage   *tagStorage
	destroyed bool
}

// NewHeap creates a Heap with one page already acquired.
func NewHeap(opts ...Option) *Heap {
	cfg := newConfig(opts...)
	h := &Heap{storage: newTagStorage(cfg.Allocator, cfg.PageSize)}
	h.storage.grow(0)
	return h
}

// AllocBytes returns n bytes carved from the heap's pages.
// Returns nil if n <= 0.
func (h *Heap) AllocBytes(n int) []byte {
	h.panicIfDestroyed()
	if n <= 0 {
		return nil
	}
	return h.storage.allocate(n)
}

// Reset rewinds every page so its memory is handed out again. Pages are
// kept. Anything allocated before Reset must no longer be used.
func (h *Heap) Reset() {
	h.panicIfDestroyed()
	h.storage.reset()
}

// Destroy returns every page to the raw allocator and makes the heap
// unusable. Subsequent operations panic with ErrHeapDestroyed; a second
// Destroy is a no-op.
func (h *Heap) Destroy() {
	if h.destroyed {
		return
	}
	h.storage.release()
	h.destroyed = true
}

func (h *Heap) panicIfDestroyed() {
	if h.destroyed {
		panic(fatal(ErrHeapDestroyed, "heap", nil))
	}
}
