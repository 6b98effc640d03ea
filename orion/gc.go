package orion

import (
	"log/slog"
	"reflect"
	"runtime"
	"sync"
)

type releaser interface{ Release() }

// finalizers run on their own goroutine, gpu resources must be
// released on the render thread.
var collected struct {
	sync.Mutex
	values []releaser
}

// RegisterWithGC releases value on the render thread after it
// was garbage collected.
func RegisterWithGC[T releaser](value T) T {
	runtime.SetFinalizer(value, enqueueRelease[T])
	return value
}

func enqueueRelease[T releaser](value T) {
	collected.Lock()
	defer collected.Unlock()

	collected.values = append(collected.values, value)
}

// releaseCollected releases all values collected since the last call.
func releaseCollected() int {
	collected.Lock()
	values := collected.values
	collected.values = nil
	collected.Unlock()

	for _, value := range values {
		typ := reflect.TypeOf(value).String()
		slog.Debug("Releasing garbage collected instance", slog.String("type", typ))

		value.Release()
	}

	return len(values)
}
