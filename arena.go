// Package arena implements tagged bump allocation: allocations are stamped
// with a caller-chosen Tag, carved from page-sized arenas, and released in
// bulk per tag across every Cache that ever allocated under it.
package arena

import (
	"fmt"
	"math"

	"github.com/pavanmanishd/tagarena/internal/logging"
)

const (
	// pageHeaderSize is the bookkeeping a page reserves ahead of its first
	// allocation when it is sized.
	pageHeaderSize = 16
	// pageAlign is the alignment of every offset handed out by a page.
	pageAlign = 8
)

// page is a single buffer from the raw allocator with a monotonic bump offset.
type page struct {
	buf    []byte // backing memory
	offset int    // next free offset, always pageAlign aligned
}

// allocate returns n bytes at the current offset, or nil if the page
// cannot fit them. The returned slice is capped so appends cannot spill
// into the next allocation.
func (p *page) allocate(n int) []byte {
	if n >= len(p.buf)-p.offset {
		return nil
	}
	start := p.offset
	p.offset += alignUp(n)
	return p.buf[start : start+n : start+n]
}

// pageSizeFor returns the size of a page able to hold an n byte allocation:
// the header plus n rounded up to the next whole pageSize.
func pageSizeFor(n, pageSize int) int {
	return ((pageHeaderSize+n)/pageSize + 1) * pageSize
}

// maxAllocSize is the largest n for which pageSizeFor(n, pageSize) and
// alignUp(n) do not overflow.
func maxAllocSize(pageSize int) int {
	return math.MaxInt - pageHeaderSize - pageSize
}

// tagStorage is the append-only list of pages backing one (cache, tag)
// pair. Pages before next are treated as full and never revisited, which
// keeps allocation O(1) amortised at the cost of density.
type tagStorage struct {
	alloc    Allocator
	pageSize int
	pages    []*page
	next     int
}

func newTagStorage(alloc Allocator, pageSize int) *tagStorage {
	return &tagStorage{alloc: alloc, pageSize: pageSize}
}

// allocate bump-allocates n bytes, growing by one page when the pages from
// next onwards are exhausted. A fresh page always fits n, so the loop runs
// at most len(pages)+1 times.
func (s *tagStorage) allocate(n int) []byte {
	if n > maxAllocSize(s.pageSize) {
		panic(fatal(ErrAllocate, "allocate", fmt.Errorf("%d bytes does not fit any page size", n)))
	}
	for {
		if s.next >= len(s.pages) {
			s.grow(n)
		}
		if b := s.pages[s.next].allocate(n); b != nil {
			return b
		}
		s.next++
	}
}

// grow appends a page large enough for an n byte allocation.
func (s *tagStorage) grow(n int) {
	size := pageSizeFor(n, s.pageSize)
	buf := s.alloc.Alloc(size)
	if len(buf) < size {
		panic(fatal(ErrAllocate, "grow", fmt.Errorf("allocator returned %d bytes, want %d", len(buf), size)))
	}
	s.pages = append(s.pages, &page{buf: buf})
	logging.Track("arena: grew storage to %d pages (+%d bytes)", len(s.pages), size)
}

// reset rewinds every page for reuse. Only single-owner Heaps reset;
// tagged storage is never rewound.
func (s *tagStorage) reset() {
	for _, p := range s.pages {
		p.offset = 0
	}
	s.next = 0
}

// release returns every page to the raw allocator.
func (s *tagStorage) release() {
	for _, p := range s.pages {
		s.alloc.Free(p.buf)
	}
	s.pages = nil
	s.next = 0
}

// totalAllocated is the committed footprint: the sum of page capacities.
func (s *tagStorage) totalAllocated() int {
	sum := 0
	for _, p := range s.pages {
		sum += len(p.buf)
	}
	return sum
}

// sizeInUse is the sum of page offsets, alignment padding included.
func (s *tagStorage) sizeInUse() int {
	sum := 0
	for _, p := range s.pages {
		sum += p.offset
	}
	return sum
}

func (s *tagStorage) numPages() int {
	return len(s.pages)
}

// alignUp rounds n up to the next multiple of pageAlign.
func alignUp(n int) int {
	const mask = pageAlign - 1
	return (n + mask) &^ mask
}
