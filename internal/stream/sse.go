// Package stream serializes pipeline events onto long-lived
// Server-Sent-Events channels. Each event becomes one independently
// parsable `data: <json>` frame; emission order is preserved and
// admitted frames are never skipped. A subscriber that cannot keep up
// loses its connection, not individual frames.
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"

	"git.home.luguber.info/inful/deckforge/internal/pipeline"
)

// SSEWriter writes pipeline events to an http.ResponseWriter in SSE
// framing. Call Init once before the first event.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter wraps w. Streaming requires the writer to implement
// http.Flusher; without it frames may be buffered by the server.
func NewSSEWriter(w http.ResponseWriter) *SSEWriter {
	f, _ := w.(http.Flusher)
	return &SSEWriter{w: w, flusher: f}
}

// Init sets the SSE response headers and flushes them.
func (sw *SSEWriter) Init() {
	h := sw.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // disable nginx buffering
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
}

// WriteEvent writes one event as a discrete `data: <json>\n\n` frame
// and flushes it to the client.
func (sw *SSEWriter) WriteEvent(ev pipeline.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("sse: marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(sw.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("sse: write event: %w", err)
	}
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
	return nil
}

// WriteComment writes an SSE comment line. Comments keep idle
// connections alive without appearing in the event vocabulary.
func (sw *SSEWriter) WriteComment(text string) error {
	if _, err := fmt.Fprintf(sw.w, ": %s\n\n", text); err != nil {
		return fmt.Errorf("sse: write comment: %w", err)
	}
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
	return nil
}
