package arena

import "github.com/brickingsoft/errors"

const (
	errMetaPkgKey = "pkg"
	errMetaPkgVal = "arena"
	errMetaOpKey  = "op"
)

var (
	// ErrAllocate is raised when the raw allocator cannot supply a buffer.
	ErrAllocate = errors.Define("arena: allocate bytes failed")
	// ErrFree is raised when the raw allocator cannot return a buffer.
	ErrFree = errors.Define("arena: free bytes failed")
	// ErrNotRegistered is raised when a Cache is closed but its Coordinator
	// has no record of it.
	ErrNotRegistered = errors.Define("arena: cache is not registered")
	// ErrCacheClosed is raised on use of a closed Cache.
	ErrCacheClosed = errors.Define("arena: use of closed cache")
	// ErrHeapDestroyed is raised on use of a destroyed Heap.
	ErrHeapDestroyed = errors.Define("arena: use after Destroy()")
	// ErrInvalidPageSize is returned by LoadConfig for an unusable page size.
	ErrInvalidPageSize = errors.Define("arena: invalid page size")
	// ErrUnknownAllocator is returned by LoadConfig for an unknown allocator name.
	ErrUnknownAllocator = errors.Define("arena: unknown allocator")
)

// IsAllocate reports whether err is, or wraps, ErrAllocate.
func IsAllocate(err error) bool {
	return errors.Is(err, ErrAllocate)
}

// IsNotRegistered reports whether err is, or wraps, ErrNotRegistered.
func IsNotRegistered(err error) bool {
	return errors.Is(err, ErrNotRegistered)
}

// IsCacheClosed reports whether err is, or wraps, ErrCacheClosed.
func IsCacheClosed(err error) bool {
	return errors.Is(err, ErrCacheClosed)
}

// IsHeapDestroyed reports whether err is, or wraps, ErrHeapDestroyed.
func IsHeapDestroyed(err error) bool {
	return errors.Is(err, ErrHeapDestroyed)
}

// fatal builds the panic value for an unrecoverable condition in op.
func fatal(cause error, op string, wrapped error) error {
	if wrapped != nil {
		return errors.From(
			cause,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaOpKey, op),
			errors.WithWrap(wrapped),
		)
	}
	return errors.From(
		cause,
		errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
		errors.WithMeta(errMetaOpKey, op),
	)
}
