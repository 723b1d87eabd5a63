package arena

import (
	"testing"
	"unsafe"
)

// expectPanic runs fn and fails unless it panics with an error accepted by is.
func expectPanic(t *testing.T, is func(error) bool, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("panic value %v (%T) is not an error", r, r)
		}
		if !is(err) {
			t.Fatalf("unexpected panic error: %v", err)
		}
	}()
	fn()
}

func addr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}
