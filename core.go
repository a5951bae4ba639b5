package varre

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

// NewLogger builds the engine logger. With cfg.LogFile set, records are
// appended to that file and the returned closer closes it.
func NewLogger(cfg Config) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFile == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open log file")
	}
	return slog.New(slog.NewTextHandler(f, opts)), f, nil
}
