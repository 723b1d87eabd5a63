package arena

import (
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/brickingsoft/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultPageSize is the page granularity for new arena pages (2 MiB).
const DefaultPageSize = 2 << 20

// instrumentationName names the tracer used when none is configured.
const instrumentationName = "github.com/pavanmanishd/tagarena"

const (
	envPageSize  = "TAGARENA_PAGE_SIZE"
	envAllocator = "TAGARENA_ALLOCATOR"
)

// Config controls how a Coordinator or Heap acquires and sizes pages.
type Config struct {
	// PageSize is the page granularity. Pages are always a whole multiple
	// of it. Values <= 0 select DefaultPageSize.
	PageSize int
	// Allocator supplies page buffers. Nil selects GoAllocator.
	Allocator Allocator
	// Tracer records a span per tag release. Nil selects the global
	// OpenTelemetry tracer provider.
	Tracer trace.Tracer
}

// Option mutates a Config.
type Option func(*Config)

// WithPageSize sets the page granularity.
// If n <= 0, DefaultPageSize is used.
func WithPageSize(n int) Option {
	return func(c *Config) {
		c.PageSize = n
	}
}

// WithAllocator sets the raw allocator pages are carved from.
func WithAllocator(a Allocator) Option {
	return func(c *Config) {
		c.Allocator = a
	}
}

// WithTracer sets the tracer used for release spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Config) {
		c.Tracer = t
	}
}

// WithConfig copies every non-zero field of cfg.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		if cfg.PageSize > 0 {
			c.PageSize = cfg.PageSize
		}
		if cfg.Allocator != nil {
			c.Allocator = cfg.Allocator
		}
		if cfg.Tracer != nil {
			c.Tracer = cfg.Tracer
		}
	}
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		PageSize:  DefaultPageSize,
		Allocator: GoAllocator{},
	}
}

// LoadConfig reads TAGARENA_PAGE_SIZE and TAGARENA_ALLOCATOR from the
// environment, falling back to DefaultConfig for unset variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if raw, ok := os.LookupEnv(envPageSize); ok && strings.TrimSpace(raw) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return cfg, errors.From(
				ErrInvalidPageSize,
				errors.WithMeta("env", envPageSize),
				errors.WithWrap(err),
			)
		}
		if n <= 0 {
			return cfg, errors.From(ErrInvalidPageSize, errors.WithMeta("env", envPageSize))
		}
		cfg.PageSize = n
	}

	if raw, ok := os.LookupEnv(envAllocator); ok {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "", "go":
			cfg.Allocator = GoAllocator{}
		case "mmap":
			cfg.Allocator = MmapAllocator{}
		default:
			return cfg, errors.From(
				ErrUnknownAllocator,
				errors.WithMeta("env", envAllocator),
				errors.WithMeta("value", raw),
			)
		}
	}
	return cfg, nil
}

// newConfig applies opts over DefaultConfig and normalises the result.
func newConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.PageSize <= 0 || cfg.PageSize > math.MaxInt/2 {
		cfg.PageSize = DefaultPageSize
	}
	cfg.PageSize = alignUp(cfg.PageSize)
	if cfg.Allocator == nil {
		cfg.Allocator = GoAllocator{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(instrumentationName)
	}
	return cfg
}
