// Command tagstress soaks a Coordinator: workers allocate tagged records
// with destructors while a paced releaser retires tags, then it checks that
// every destructor ran and every page went back to the raw allocator.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	arena "github.com/pavanmanishd/tagarena"
	"github.com/pavanmanishd/tagarena/internal/logging"
)

const service = "tagstress"

type record struct {
	worker int64
	seq    int64
	live   bool
}

type stats struct {
	constructed atomic.Int64
	destroyed   atomic.Int64
	releases    atomic.Int64
	peak        atomic.Int64
}

func tracerProvider(url string) (*tracesdk.TracerProvider, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(url)))
	if err != nil {
		return nil, err
	}
	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exp),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(service),
			attribute.String("environment", "stress"),
		)),
	)
	return tp, nil
}

func main() {
	var (
		workers   = flag.Int("workers", 4, "allocating goroutines, one Cache each")
		duration  = flag.Duration("duration", 5*time.Second, "how long to run")
		perSec    = flag.Float64("rate", 50, "tag releases per second")
		pageSize  = flag.Int("page", 64<<10, "page size in bytes")
		extra     = flag.Int("extra", 256, "raw bytes allocated alongside each record")
		useMmap   = flag.Bool("mmap", false, "back pages with anonymous mappings")
		jaegerURL = flag.String("jaeger", "", "jaeger collector endpoint for release spans")
		debug     = flag.Bool("debug", false, "log arena bookkeeping")
	)
	flag.Parse()
	logging.Force(*debug)

	var raw arena.Allocator = arena.GoAllocator{}
	if *useMmap {
		raw = arena.MmapAllocator{}
	}
	counting := arena.NewCountingAllocator(raw)
	opts := []arena.Option{arena.WithPageSize(*pageSize), arena.WithAllocator(counting)}

	if *jaegerURL != "" {
		tp, err := tracerProvider(*jaegerURL)
		if err != nil {
			log.Fatal(err)
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Println(err)
			}
		}()
		opts = append(opts, arena.WithTracer(tp.Tracer(service)))
	}
	co := arena.NewCoordinator(opts...)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, stop := context.WithTimeout(ctx, *duration)
	defer stop()

	var (
		st      stats
		current atomic.Uint64
		// barrier keeps a release from overtaking an allocation under the
		// tag being retired.
		barrier sync.RWMutex
	)
	current.Store(1)

	// Caches outlive the workers: the final release below runs destructors
	// on records that still live in their pages.
	caches := make([]*arena.Cache, *workers)
	for w := range caches {
		caches[w] = co.NewCache()
	}

	g, ctx := errgroup.WithContext(ctx)
	for w, c := range caches {
		id := int64(w)
		g.Go(func() error {
			for seq := int64(0); ctx.Err() == nil; seq++ {
				barrier.RLock()
				tag := arena.Tag(current.Load())
				arena.New(c, tag,
					func(r *record) {
						r.worker, r.seq, r.live = id, seq, true
						st.constructed.Add(1)
					},
					func(r *record) {
						r.live = false
						st.destroyed.Add(1)
					})
				c.AllocBytes(tag, *extra)
				barrier.RUnlock()
			}
			return nil
		})
	}

	g.Go(func() error {
		limiter := rate.NewLimiter(rate.Limit(*perSec), 1)
		for limiter.Wait(ctx) == nil {
			old := current.Add(1) - 1
			barrier.Lock()
			barrier.Unlock()
			if n := int64(co.CurrentStorage()); n > st.peak.Load() {
				st.peak.Store(n)
			}
			co.ReleaseContext(ctx, arena.Tag(old))
			st.releases.Add(1)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	co.Release(arena.Tag(current.Load()))
	for _, c := range caches {
		if pending := c.Close(); len(pending) > 0 {
			log.Fatalf("%s: cache closed with destructors pending for tags %v", service, pending)
		}
	}

	as := counting.Stats()
	fmt.Printf("releases:      %d\n", st.releases.Load())
	fmt.Printf("constructed:   %d\n", st.constructed.Load())
	fmt.Printf("destroyed:     %d\n", st.destroyed.Load())
	fmt.Printf("peak storage:  %d bytes\n", st.peak.Load())
	fmt.Printf("pages mapped:  %d (%d bytes)\n", as.Allocs, as.BytesMapped)
	fmt.Printf("pages freed:   %d (%d bytes)\n", as.Frees, as.BytesFreed)

	if st.constructed.Load() != st.destroyed.Load() || as.Live() != 0 || co.CurrentStorage() != 0 {
		log.Fatalf("%s: leak detected (live bytes %d)", service, as.Live())
	}
}
