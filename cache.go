package arena

import (
	"sync"

	"github.com/pavanmanishd/tagarena/internal/logging"
)

// Tag identifies a bulk-releasable scope of allocations and destructors.
// Tags are chosen by the caller and never validated; reusing a value after
// it was released is indistinguishable from a fresh tag.
type Tag uint64

// Cache is a per-worker set of arenas, one per Tag. It plays the role a
// thread-local plays in a threaded runtime: a goroutine (or worker) takes
// one from Coordinator.NewCache, allocates from it without contending with
// other workers, and closes it when done.
//
// The mutex guards the tag map against the Coordinator, which reaches
// into every registered Cache when a tag is released.
type Cache struct {
	mu     sync.Mutex
	tags   map[Tag]*tagStorage
	parent *Coordinator
	closed bool
}

// AllocBytes bump-allocates n bytes under tag. The returned memory is
// valid until tag is released or the Cache is closed.
// Returns nil if n <= 0.
func (c *Cache) AllocBytes(tag Tag, n int) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panicIfClosed()
	if n <= 0 {
		return nil
	}
	return c.storageLocked(tag).allocate(n)
}

// Coordinator returns the Coordinator this Cache is registered with.
func (c *Cache) Coordinator() *Coordinator {
	return c.parent
}

// TotalSize returns the committed footprint of every tag in this Cache.
func (c *Cache) TotalSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	sum := 0
	for _, s := range c.tags {
		sum += s.totalAllocated()
	}
	return sum
}

// TagSize returns the committed footprint of tag in this Cache.
func (c *Cache) TagSize(tag Tag) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.tags[tag]; ok {
		return s.totalAllocated()
	}
	return 0
}

// Close deregisters the Cache and returns all of its pages to the raw
// allocator. Closing a Cache its Coordinator does not know about, including
// a second Close, panics with ErrNotRegistered.
//
// A Cache must outlive the Release of every tag it constructed objects
// under with New: destructors still queued for such a tag would run on
// memory Close already gave back. Close reports those tags, and logs them
// when debug logging is on.
func (c *Cache) Close() []Tag {
	pending := c.parent.deregister(c)
	for _, tag := range pending {
		logging.Track("arena: cache %p closed with destructors pending for tag %d", c, tag)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for tag, s := range c.tags {
		s.release()
		delete(c.tags, tag)
	}
	c.closed = true
	return pending
}

// releaseTag drops the storage for tag. Absent tags are a no-op.
func (c *Cache) releaseTag(tag Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.tags[tag]; ok {
		s.release()
		delete(c.tags, tag)
	}
}

func (c *Cache) storageLocked(tag Tag) *tagStorage {
	s, ok := c.tags[tag]
	if !ok {
		s = newTagStorage(c.parent.cfg.Allocator, c.parent.cfg.PageSize)
		c.tags[tag] = s
		logging.Track("arena: cache %p opened tag %d", c, tag)
	}
	return s
}

func (c *Cache) panicIfClosed() {
	if c.closed {
		panic(fatal(ErrCacheClosed, "alloc", nil))
	}
}
