package lib

import (
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
)

// NewID generates a UUID version 4 string (RFC 4122)
func NewID() string {
	return uuid.NewString()
}

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// Logger returns the logger shared by the library packages. It discards
// everything until SetLogger is called.
func Logger() *slog.Logger {
	return logger.Load()
}

// SetLogger replaces the shared library logger. A nil logger restores the
// discarding default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger.Store(l)
}
