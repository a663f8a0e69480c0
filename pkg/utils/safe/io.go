package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/secmon-lab/auditflow/pkg/utils/logging"
)

// Close closes c and logs the error instead of returning it. nil is a no-op.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("close failed", slog.Any("error", err))
	}
}

// Write writes a response body and logs a failed write. A client that went
// away is not an error worth returning to the handler.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Warn("write failed", slog.Any("error", err), slog.Int("size", len(data)))
	}
}
