package arena

import (
	"sync"

	"github.com/pavanmanishd/tagarena/internal/logging"
)

var (
	defaultOnce        sync.Once
	defaultCoordinator *Coordinator
)

// Default returns the process-wide Coordinator, configured from the
// environment by LoadConfig on first use.
func Default() *Coordinator {
	defaultOnce.Do(func() {
		cfg, err := LoadConfig()
		if err != nil {
			logging.Track("arena: ignoring environment config: %v", err)
			cfg = DefaultConfig()
		}
		defaultCoordinator = NewCoordinator(WithConfig(cfg))
	})
	return defaultCoordinator
}

// AllocBytes bump-allocates n bytes under tag from the default Coordinator.
func AllocBytes(tag Tag, n int) []byte {
	return Default().AllocBytes(tag, n)
}

// RegisterDestructor queues fn to run when tag is released on the default
// Coordinator.
func RegisterDestructor(tag Tag, fn func()) {
	Default().RegisterDestructor(tag, fn)
}

// Release runs tag's destructors and drops its storage everywhere on the
// default Coordinator.
func Release(tag Tag) {
	Default().Release(tag)
}

// CurrentStorage returns the committed footprint of the default Coordinator.
func CurrentStorage() int {
	return Default().CurrentStorage()
}

// TagStorage returns the committed footprint of tag on the default
// Coordinator.
func TagStorage(tag Tag) int {
	return Default().TagStorage(tag)
}

// Construct is NewOn against the default Coordinator.
func Construct[T any](tag Tag, init func(*T), destroy func(*T)) *T {
	return NewOn(Default(), tag, init, destroy)
}
