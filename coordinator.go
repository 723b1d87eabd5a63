package arena

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pavanmanishd/tagarena/internal/logging"
)

// Coordinator is the registry of live Caches and of per-tag destructors.
// It is the only place that can release a tag everywhere.
//
// Lock order is Coordinator then Cache. Caches never call back into the
// Coordinator while holding their own lock.
//
// Release is not atomic across Caches: an allocation under the same tag
// racing a Release may land before or after that Cache is visited, and in
// the latter case survives the Release. Callers that need "no allocation
// after release" must stop allocating before they release.
type Coordinator struct {
	cfg    Config
	tracer trace.Tracer

	mu          sync.Mutex
	caches      []*Cache
	destructors map[Tag][]func()

	// idle holds borrowed-and-returned Caches for AllocBytes. It has its
	// own lock and is never held while taking another.
	idleMu sync.Mutex
	idle   []*Cache
}

// NewCoordinator creates an independent Coordinator.
func NewCoordinator(opts ...Option) *Coordinator {
	cfg := newConfig(opts...)
	return &Coordinator{
		cfg:         cfg,
		tracer:      cfg.Tracer,
		destructors: make(map[Tag][]func()),
	}
}

// Config returns the normalised configuration.
func (co *Coordinator) Config() Config {
	return co.cfg
}

// NewCache creates a Cache registered with co. The caller must Close it.
func (co *Coordinator) NewCache() *Cache {
	c := &Cache{
		tags:   make(map[Tag]*tagStorage),
		parent: co,
	}
	co.mu.Lock()
	co.caches = append(co.caches, c)
	n := len(co.caches)
	co.mu.Unlock()
	logging.Track("arena: registered cache %p (%d live)", c, n)
	return c
}

// deregister removes c from the registry and returns the tags c holds
// storage for that still have destructors queued.
func (co *Coordinator) deregister(c *Cache) []Tag {
	co.mu.Lock()
	defer co.mu.Unlock()
	for i, it := range co.caches {
		if it == c {
			last := len(co.caches) - 1
			co.caches[i] = co.caches[last]
			co.caches[last] = nil
			co.caches = co.caches[:last]
			logging.Track("arena: deregistered cache %p (%d live)", c, last)
			return co.pendingLocked(c)
		}
	}
	panic(fatal(ErrNotRegistered, "deregister", nil))
}

func (co *Coordinator) pendingLocked(c *Cache) []Tag {
	c.mu.Lock()
	defer c.mu.Unlock()
	var pending []Tag
	for tag := range c.tags {
		if len(co.destructors[tag]) > 0 {
			pending = append(pending, tag)
		}
	}
	return pending
}

// AllocBytes bump-allocates n bytes under tag from an idle Cache, creating
// one when every Cache is in use. Returns nil if n <= 0.
func (co *Coordinator) AllocBytes(tag Tag, n int) []byte {
	c := co.acquire()
	defer co.putIdle(c)
	return c.AllocBytes(tag, n)
}

func (co *Coordinator) acquire() *Cache {
	co.idleMu.Lock()
	if last := len(co.idle) - 1; last >= 0 {
		c := co.idle[last]
		co.idle[last] = nil
		co.idle = co.idle[:last]
		co.idleMu.Unlock()
		return c
	}
	co.idleMu.Unlock()
	return co.NewCache()
}

func (co *Coordinator) putIdle(c *Cache) {
	co.idleMu.Lock()
	co.idle = append(co.idle, c)
	co.idleMu.Unlock()
}

// Close closes the Caches held idle for AllocBytes and NewOn. Caches handed
// out by NewCache stay registered until their owners close them. Release
// every tag constructed through NewOn first.
func (co *Coordinator) Close() {
	co.idleMu.Lock()
	idle := co.idle
	co.idle = nil
	co.idleMu.Unlock()
	for _, c := range idle {
		c.Close()
	}
}

// RegisterDestructor queues fn to run when tag is released. Destructors
// of one tag run last-registered first. fn must not call back into co.
func (co *Coordinator) RegisterDestructor(tag Tag, fn func()) {
	if fn == nil {
		return
	}
	co.mu.Lock()
	co.destructors[tag] = append(co.destructors[tag], fn)
	co.mu.Unlock()
}

// Release runs tag's destructors in reverse registration order, then drops
// the storage for tag in every registered Cache. Releasing an unknown or
// already released tag is a no-op.
func (co *Coordinator) Release(tag Tag) {
	co.ReleaseContext(context.Background(), tag)
}

// ReleaseContext is Release with ctx as the parent of the release span.
// Cancellation is ignored: a release always runs to completion.
func (co *Coordinator) ReleaseContext(ctx context.Context, tag Tag) {
	_, span := co.tracer.Start(ctx, "tagarena.Release",
		trace.WithAttributes(attribute.String("tagarena.tag", strconv.FormatUint(uint64(tag), 10))))
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			span.SetStatus(codes.Error, fmt.Sprint(r))
			panic(r)
		}
	}()
	defer logging.TraceStart("arena: release tag " + strconv.FormatUint(uint64(tag), 10))()

	co.mu.Lock()
	defer co.mu.Unlock()

	dtors := co.destructors[tag]
	delete(co.destructors, tag)
	span.SetAttributes(
		attribute.Int("tagarena.destructors", len(dtors)),
		attribute.Int("tagarena.caches", len(co.caches)),
	)

	for i := len(dtors) - 1; i >= 0; i-- {
		dtors[i]()
	}
	for _, c := range co.caches {
		c.releaseTag(tag)
	}
}

// CurrentStorage returns the committed footprint of every tag in every
// registered Cache. It counts page capacity, not live bytes.
func (co *Coordinator) CurrentStorage() int {
	co.mu.Lock()
	defer co.mu.Unlock()
	sum := 0
	for _, c := range co.caches {
		sum += c.TotalSize()
	}
	return sum
}

// TagStorage returns the committed footprint of tag across every
// registered Cache.
func (co *Coordinator) TagStorage(tag Tag) int {
	co.mu.Lock()
	defer co.mu.Unlock()
	sum := 0
	for _, c := range co.caches {
		sum += c.TagSize(tag)
	}
	return sum
}

// NumCaches returns the number of registered Caches.
func (co *Coordinator) NumCaches() int {
	co.mu.Lock()
	defer co.mu.Unlock()
	return len(co.caches)
}

// PendingDestructors returns the number of destructors queued for tag.
func (co *Coordinator) PendingDestructors(tag Tag) int {
	co.mu.Lock()
	defer co.mu.Unlock()
	return len(co.destructors[tag])
}
