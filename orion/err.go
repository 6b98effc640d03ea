package orion

import (
	"fmt"
	"log/slog"
)

// Handle panics if err is not nil. Use for setup failures the app can not
// recover from.
func Handle(err error, desc string, args ...any) {
	if err != nil {
		text := fmt.Sprintf(desc, args...)
		slog.Error("Unrecoverable error", slog.String("desc", text), slog.String("err", err.Error()))
		panic(fmt.Errorf("%s: %w", text, err))
	}
}
