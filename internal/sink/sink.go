// Package sink delivers serialized messages to a TCP peer or a file.
//
// A sink makes one write attempt per message. Transport errors are returned
// to the caller as they are; nothing is retried and short writes are
// reported, not repaired.
package sink

import (
	"context"
	"io"

	"github.com/danmuck/fieldwire/internal/config"
	"github.com/danmuck/fieldwire/internal/observability"
	"github.com/pkg/errors"
)

// Sink accepts serialized messages.
type Sink interface {
	// Send writes b and returns the number of message bytes accepted.
	Send(ctx context.Context, b []byte) (int, error)
	// Name identifies the sink kind in logs and metrics.
	Name() string
	io.Closer
}

// Open creates the sink cfg describes.
func Open(ctx context.Context, cfg config.Sink) (Sink, error) {
	if err := cfg.ValidateTarget(); err != nil {
		return nil, errors.Wrap(err, "sink: invalid config")
	}
	switch cfg.Mode {
	case config.ModeTCP:
		return DialTCP(ctx, cfg.Addr, cfg.Timeout)
	case config.ModeFile:
		return CreateFile(cfg.File, cfg.Compression)
	default:
		return nil, errors.Errorf("sink: unknown mode %q", cfg.Mode)
	}
}

// checkWrite turns a short write into io.ErrShortWrite and records the send.
func checkWrite(name string, n, want int, err error) (int, error) {
	if err == nil && n != want {
		err = errors.WithStack(io.ErrShortWrite)
	}
	observability.RecordSinkSend(name, n, err == nil)
	return n, err
}
