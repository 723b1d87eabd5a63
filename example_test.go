package arena

import (
	"fmt"
	"sync"
)

// Example demonstrates tagged allocation and bulk release
func Example() {
	co := NewCoordinator(WithPageSize(4096))
	c := co.NewCache()
	defer c.Close()

	const frame Tag = 1

	// Allocate raw bytes
	buf := c.AllocBytes(frame, 1024)
	fmt.Printf("Allocated buffer of size: %d\n", len(buf))

	// Allocate a typed value (zeroed)
	ptr := Alloc[int](c, frame)
	*ptr = 42
	fmt.Printf("Allocated int with value: %d\n", *ptr)

	// Allocate a slice
	slice := AllocSlice[int](c, frame, 5)
	for i := range slice {
		slice[i] = i * 2
	}
	fmt.Printf("Allocated slice: %v\n", slice)

	fmt.Printf("Tag storage: %d bytes\n", co.TagStorage(frame))

	// Drop everything allocated under the tag
	co.Release(frame)
	fmt.Printf("After release, tag storage: %d bytes\n", co.TagStorage(frame))

	// Output:
	// Allocated buffer of size: 1024
	// Allocated int with value: 42
	// Allocated slice: [0 2 4 6 8]
	// Tag storage: 4096 bytes
	// After release, tag storage: 0 bytes
}

// ExampleNew demonstrates tag-scoped object lifetime
func ExampleNew() {
	type conn struct {
		id   int
		open bool
	}

	co := NewCoordinator(WithPageSize(4096))
	c := co.NewCache()
	defer c.Close()

	const request Tag = 7
	for i := 1; i <= 3; i++ {
		New(c, request,
			func(cn *conn) { cn.id, cn.open = i, true },
			func(cn *conn) {
				cn.open = false
				fmt.Printf("closed conn %d\n", cn.id)
			})
	}

	co.Release(request)
	co.Release(request) // already released, nothing runs

	// Output:
	// closed conn 3
	// closed conn 2
	// closed conn 1
}

// ExampleCoordinator_Release demonstrates releasing a tag across workers
func ExampleCoordinator_Release() {
	co := NewCoordinator(WithPageSize(4096))

	var wg sync.WaitGroup
	caches := make([]*Cache, 3)
	for i := range caches {
		caches[i] = co.NewCache()
		wg.Add(1)
		go func(c *Cache) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				c.AllocBytes(99, 100)
			}
		}(caches[i])
	}
	wg.Wait()

	fmt.Printf("Before release: %d bytes\n", co.CurrentStorage())
	co.Release(99)
	fmt.Printf("After release: %d bytes\n", co.CurrentStorage())

	for _, c := range caches {
		c.Close()
	}

	// Output:
	// Before release: 12288 bytes
	// After release: 0 bytes
}

// ExampleHeap demonstrates a one-shot heap
func ExampleHeap() {
	h := NewHeap(WithPageSize(1024))
	defer h.Destroy()

	h.AllocBytes(100)
	v := HeapAlloc[int64](h)
	*v = 7
	fmt.Printf("Heap in use: %d bytes\n", h.SizeInUse())
	fmt.Printf("Utilization: %.2f%%\n", h.Utilization()*100)

	h.Reset()
	fmt.Printf("After reset, heap in use: %d bytes\n", h.SizeInUse())

	// Output:
	// Heap in use: 112 bytes
	// Utilization: 10.94%
	// After reset, heap in use: 0 bytes
}
