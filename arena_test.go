package arena

import (
	"math"
	"sort"
	"testing"
)

func TestPageSizeFor(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		pageSize int
		expected int
	}{
		{"empty", 0, 4096, 4096},
		{"small", 100, 4096, 4096},
		{"just fits with header", 4079, 4096, 4096},
		{"header spills", 4080, 4096, 8192},
		{"multi page", 10000, 4096, 12288},
		{"default page", 512, DefaultPageSize, DefaultPageSize},
		{"default page exact", DefaultPageSize, DefaultPageSize, 2 * DefaultPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pageSizeFor(tt.n, tt.pageSize); got != tt.expected {
				t.Errorf("pageSizeFor(%d, %d) = %d, want %d", tt.n, tt.pageSize, got, tt.expected)
			}
			if got := pageSizeFor(tt.n, tt.pageSize); tt.n >= got {
				t.Errorf("pageSizeFor(%d, %d) = %d does not fit the allocation", tt.n, tt.pageSize, got)
			}
		})
	}
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, 0},
		{1, 8},
		{7, 8},
		{8, 8},
		{9, 16},
		{4097, 4104},
	}

	for _, tt := range tests {
		if got := alignUp(tt.input); got != tt.expected {
			t.Errorf("alignUp(%d) = %d, want %d", tt.input, got, tt.expected)
		}
	}
}

func TestPageAllocate(t *testing.T) {
	p := &page{buf: make([]byte, 64)}

	b1 := p.allocate(10)
	if len(b1) != 10 || cap(b1) != 10 {
		t.Fatalf("allocate(10) len/cap = %d/%d, want 10/10", len(b1), cap(b1))
	}
	if p.offset != 16 {
		t.Errorf("offset after allocate(10) = %d, want 16", p.offset)
	}

	// offset + n must stay strictly below capacity.
	if b := p.allocate(48); b != nil {
		t.Errorf("allocate(48) at offset 16 of 64 = %d bytes, want nil", len(b))
	}
	if p.offset != 16 {
		t.Errorf("failed allocate moved offset to %d", p.offset)
	}

	b2 := p.allocate(47)
	if len(b2) != 47 {
		t.Fatalf("allocate(47) length = %d, want 47", len(b2))
	}
	if addr(b2)-addr(b1) != 16 {
		t.Errorf("second allocation starts %d bytes after first, want 16", addr(b2)-addr(b1))
	}
	if b := p.allocate(1); b != nil {
		t.Error("allocate(1) on a full page should fail")
	}
}

func TestTagStorageGrowth(t *testing.T) {
	counting := NewCountingAllocator(nil)
	s := newTagStorage(counting, 4096)

	if s.totalAllocated() != 0 || s.numPages() != 0 {
		t.Fatal("new storage should own no pages")
	}

	s.allocate(100)
	if s.numPages() != 1 {
		t.Fatalf("pages after first allocation = %d, want 1", s.numPages())
	}

	// Does not fit page 0: the cursor moves on and a larger page is added.
	big := s.allocate(5000)
	if len(big) != 5000 {
		t.Fatalf("allocate(5000) length = %d, want 5000", len(big))
	}
	if s.numPages() != 2 || s.next != 1 {
		t.Fatalf("pages/next = %d/%d, want 2/1", s.numPages(), s.next)
	}
	if got := len(s.pages[1].buf); got != 8192 {
		t.Errorf("grown page capacity = %d, want 8192", got)
	}

	// Page 0 still has room but is never revisited.
	s.allocate(100)
	if s.pages[0].offset != 104 {
		t.Errorf("page 0 offset = %d, want 104 (untouched)", s.pages[0].offset)
	}
	if s.pages[1].offset != 5000+104 {
		t.Errorf("page 1 offset = %d, want %d", s.pages[1].offset, 5000+104)
	}

	if got := s.totalAllocated(); got != 4096+8192 {
		t.Errorf("totalAllocated = %d, want %d", got, 4096+8192)
	}
	if got := s.sizeInUse(); got != 104+5104 {
		t.Errorf("sizeInUse = %d, want %d", got, 104+5104)
	}

	s.release()
	stats := counting.Stats()
	if stats.Allocs != 2 || stats.Frees != 2 || stats.Live() != 0 {
		t.Errorf("allocator stats after release = %+v", stats)
	}
	if s.totalAllocated() != 0 {
		t.Error("released storage should report no capacity")
	}
}

func TestTagStorageNoOverlap(t *testing.T) {
	s := newTagStorage(GoAllocator{}, 1024)
	defer s.release()

	type span struct{ start, end uintptr }
	var spans []span
	for i := 0; i < 2000; i++ {
		n := 1 + (i*37)%700
		b := s.allocate(n)
		if len(b) != n {
			t.Fatalf("allocate(%d) length = %d", n, len(b))
		}
		start := addr(b)
		if start%pageAlign != 0 {
			t.Fatalf("allocation %d at %#x is not %d-byte aligned", i, start, pageAlign)
		}
		spans = append(spans, span{start, start + uintptr(n)})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			t.Fatalf("allocations overlap: [%#x,%#x) and [%#x,%#x)",
				spans[i-1].start, spans[i-1].end, spans[i].start, spans[i].end)
		}
	}
}

func TestTagStorageOversizedAllocation(t *testing.T) {
	counting := NewCountingAllocator(nil)
	s := newTagStorage(counting, 4096)
	for _, n := range []int{math.MaxInt, math.MaxInt - pageHeaderSize, maxAllocSize(4096) + 1} {
		expectPanic(t, IsAllocate, func() {
			s.allocate(n)
		})
	}
	if got := counting.Stats().Allocs; got != 0 {
		t.Errorf("raw allocations = %d, want 0", got)
	}

	// A page with room left must reject, not wrap around.
	p := &page{buf: make([]byte, 64), offset: 8}
	if p.allocate(math.MaxInt) != nil {
		t.Error("page.allocate(MaxInt) should not fit")
	}

	co := NewCoordinator(WithPageSize(4096))
	c := co.NewCache()
	defer c.Close()
	expectPanic(t, IsAllocate, func() {
		c.AllocBytes(1, math.MaxInt)
	})
	if b := c.AllocBytes(1, 10); len(b) != 10 {
		t.Error("cache should stay usable after a rejected allocation")
	}
}

func TestTagStorageShortAllocator(t *testing.T) {
	s := newTagStorage(shortAllocator{}, 4096)
	expectPanic(t, IsAllocate, func() {
		s.allocate(10)
	})
}

type shortAllocator struct{}

func (shortAllocator) Alloc(n int) []byte { return make([]byte, n/2) }
func (shortAllocator) Free([]byte)        {}
