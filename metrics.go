package arena

// Metrics contains statistical information about arena storage.
type Metrics struct {
	SizeInUse   int     // Bytes handed out, alignment padding included
	Capacity    int     // Total page capacity in bytes
	NumPages    int     // Number of pages
	NumTags     int     // Number of live (cache, tag) storages
	NumCaches   int     // Number of caches summed over
	PageSize    int     // Page granularity
	Utilization float64 // Ratio of SizeInUse to Capacity (0.0-1.0)
}

func (m *Metrics) add(s *tagStorage) {
	m.SizeInUse += s.sizeInUse()
	m.Capacity += s.totalAllocated()
	m.NumPages += s.numPages()
	m.NumTags++
}

func (m *Metrics) finish() {
	if m.Capacity > 0 {
		m.Utilization = float64(m.SizeInUse) / float64(m.Capacity)
	}
}

// Metrics returns a snapshot of the Cache's storage across all tags.
func (c *Cache) Metrics() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := Metrics{NumCaches: 1, PageSize: c.parent.cfg.PageSize}
	for _, s := range c.tags {
		m.add(s)
	}
	m.finish()
	return m
}

// TagMetrics returns a snapshot of tag's storage in this Cache.
func (c *Cache) TagMetrics(tag Tag) Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := Metrics{NumCaches: 1, PageSize: c.parent.cfg.PageSize}
	if s, ok := c.tags[tag]; ok {
		m.add(s)
	}
	m.finish()
	return m
}

// Metrics returns a snapshot summed over every registered Cache.
func (co *Coordinator) Metrics() Metrics {
	co.mu.Lock()
	defer co.mu.Unlock()
	m := Metrics{NumCaches: len(co.caches), PageSize: co.cfg.PageSize}
	for _, c := range co.caches {
		cm := c.Metrics()
		m.SizeInUse += cm.SizeInUse
		m.Capacity += cm.Capacity
		m.NumPages += cm.NumPages
		m.NumTags += cm.NumTags
	}
	m.finish()
	return m
}

// SizeInUse returns the number of bytes handed out since the last Reset.
// This includes internal fragmentation due to alignment.
func (h *Heap) SizeInUse() int {
	if h.destroyed {
		return 0
	}
	return h.storage.sizeInUse()
}

// NumPages returns the number of pages held by the heap.
func (h *Heap) NumPages() int {
	if h.destroyed {
		return 0
	}
	return h.storage.numPages()
}

// Capacity returns the total capacity (in bytes) of all pages in the heap.
func (h *Heap) Capacity() int {
	if h.destroyed {
		return 0
	}
	return h.storage.totalAllocated()
}

// Utilization returns the ratio of bytes in use to total capacity (0.0 to 1.0).
func (h *Heap) Utilization() float64 {
	capacity := h.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(h.SizeInUse()) / float64(capacity)
}

// PageSize returns the page granularity used by this heap.
func (h *Heap) PageSize() int {
	return h.storage.pageSize
}

// Metrics returns a snapshot of heap statistics.
func (h *Heap) Metrics() Metrics {
	m := Metrics{
		SizeInUse:   h.SizeInUse(),
		Capacity:    h.Capacity(),
		NumPages:    h.NumPages(),
		PageSize:    h.PageSize(),
		Utilization: h.Utilization(),
	}
	if m.NumPages > 0 {
		m.NumTags = 1
	}
	return m
}
