package pipeline

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/n0madic/go-oaiadapter/internal/codec"
)

// relayHeaders are the upstream response headers forwarded to the client.
var relayHeaders = []string{
	"Content-Type",
	"Cache-Control",
	"Openai-Processing-Ms",
	"X-Ratelimit-Limit-Requests",
	"X-Ratelimit-Remaining-Requests",
	"X-Ratelimit-Limit-Tokens",
	"X-Ratelimit-Remaining-Tokens",
}

// Relay copies an upstream response to w and closes its body. Event
// streams are flushed after every read so clients see chunks as they arrive.
func Relay(w http.ResponseWriter, resp *http.Response) {
	defer resp.Body.Close()

	for _, key := range relayHeaders {
		if v := resp.Header.Get(key); v != "" {
			w.Header().Set(key, v)
		}
	}
	if id := codec.UpstreamRequestID(resp.Header); id != "" {
		w.Header().Set("X-Upstream-Request-Id", id)
	}
	w.WriteHeader(resp.StatusCode)

	var dst io.Writer = w
	if isEventStream(resp.Header) {
		if flusher, ok := w.(http.Flusher); ok {
			dst = &flushWriter{w: w, flusher: flusher}
		}
	}
	if _, err := io.Copy(dst, resp.Body); err != nil && !errors.Is(err, io.EOF) {
		slog.Warn("relay.copy.failed", "error", err)
	}
}

func isEventStream(h http.Header) bool {
	return strings.Contains(strings.ToLower(h.Get("Content-Type")), "text/event-stream")
}

type flushWriter struct {
	w       io.Writer
	flusher http.Flusher
}

func (f *flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	f.flusher.Flush()
	return n, err
}
