package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"thundercipher/internal/common"
)

const sseHeartbeatInterval = 25 * time.Second

// StreamSource is a live message subscription, backed by Redis pub/sub
// in production. The cancel function must be called when the consumer
// is done.
type StreamSource interface {
	Subscribe(ctx context.Context, channel string) (<-chan string, func())
}

// streamSSE relays one pub/sub channel to the client as server-sent
// events until the client disconnects. Heartbeat comments keep
// intermediaries from closing an idle stream.
func streamSSE(w http.ResponseWriter, r *http.Request, source StreamSource, channel string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		common.RespondWithError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	messages, cancel := source.Subscribe(r.Context(), channel)
	defer cancel()

	heartbeat := time.NewTicker(sseHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, open := <-messages:
			if !open {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
