package prism

import (
	"log/slog"
	"sync/atomic"

	"honnef.co/go/prism/internal/xlog"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(xlog.Nop())
}

// SetLogger sets the logger used by sessions created afterwards. By default
// nothing is logged. Passing nil restores the default.
func SetLogger(l *slog.Logger) {
	loggerPtr.Store(xlog.Or(l))
}

func Logger() *slog.Logger {
	return loggerPtr.Load()
}
