package http

import (
	"context"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/secmon-lab/auditflow/pkg/utils/safe"
)

const streamKeepAlive = 30 * time.Second

// NotificationStream delivers realtime notification payloads of one user.
// The returned channel is closed when ctx is done.
type NotificationStream interface {
	Listen(ctx context.Context, tenantID string, userID model.UserID) (<-chan []byte, error)
}

// streamNotifications relays realtime notifications as server-sent events
func (s *Server) streamNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := tokenFrom(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		handleError(ctx, w, goerr.New("streaming is not supported by the response writer"))
		return
	}

	events, err := s.stream.Listen(ctx, token.TenantID, token.Sub)
	if err != nil {
		handleError(ctx, w, goerr.Wrap(err, "failed to subscribe to notifications"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			safe.Write(ctx, w, []byte(": keep-alive\n\n"))
			flusher.Flush()
		case payload, ok := <-events:
			if !ok {
				return
			}
			safe.Write(ctx, w, []byte("event: notification\ndata: "))
			safe.Write(ctx, w, payload)
			safe.Write(ctx, w, []byte("\n\n"))
			flusher.Flush()
		}
	}
}
