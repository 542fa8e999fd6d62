// Package limits tracks the rate limit headers returned by the upstream.
package limits

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Window is one rate limit bucket as reported by the upstream.
type Window struct {
	Limit           *int     `json:"limit,omitempty"`
	Remaining       *int     `json:"remaining,omitempty"`
	ResetsInSeconds *float64 `json:"resets_in_seconds,omitempty"`
}

// Snapshot holds the request and token windows of one upstream response.
type Snapshot struct {
	Requests *Window `json:"requests,omitempty"`
	Tokens   *Window `json:"tokens,omitempty"`
}

// StoredSnapshot includes a capture timestamp with the snapshot.
type StoredSnapshot struct {
	CapturedAt time.Time `json:"captured_at"`
	Snapshot
}

// ParseHeaders extracts rate limit information from upstream response headers.
func ParseHeaders(headers http.Header) *Snapshot {
	if headers == nil {
		return nil
	}
	requests := parseWindow(headers, "requests")
	tokens := parseWindow(headers, "tokens")
	if requests == nil && tokens == nil {
		return nil
	}
	return &Snapshot{Requests: requests, Tokens: tokens}
}

func parseWindow(headers http.Header, kind string) *Window {
	w := &Window{
		Limit:     parseInt(headers.Get("x-ratelimit-limit-" + kind)),
		Remaining: parseInt(headers.Get("x-ratelimit-remaining-" + kind)),
	}
	if v := strings.TrimSpace(headers.Get("x-ratelimit-reset-" + kind)); v != "" {
		// Resets are Go-style durations such as "6m0s" or "20ms".
		if d, err := time.ParseDuration(v); err == nil {
			secs := d.Seconds()
			w.ResetsInSeconds = &secs
		}
	}
	if w.Limit == nil && w.Remaining == nil && w.ResetsInSeconds == nil {
		return nil
	}
	return w
}

func parseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &i
}

// Tracker keeps the most recent snapshot seen across upstream responses.
type Tracker struct {
	mu   sync.RWMutex
	last *StoredSnapshot
	now  func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// RecordFromResponse extracts and stores rate limits from upstream response
// headers. Responses without rate limit headers leave the last snapshot intact.
func (t *Tracker) RecordFromResponse(headers http.Header) {
	if t == nil {
		return
	}
	snapshot := ParseHeaders(headers)
	if snapshot == nil {
		return
	}
	t.mu.Lock()
	t.last = &StoredSnapshot{CapturedAt: t.now().UTC(), Snapshot: *snapshot}
	t.mu.Unlock()
}

// Latest returns the most recent snapshot, or nil if none was recorded.
func (t *Tracker) Latest() *StoredSnapshot {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.last == nil {
		return nil
	}
	out := *t.last
	return &out
}

// ComputeResetAt calculates when a rate limit window will reset.
func ComputeResetAt(capturedAt time.Time, w *Window) *time.Time {
	if w == nil || w.ResetsInSeconds == nil {
		return nil
	}
	t := capturedAt.Add(time.Duration(*w.ResetsInSeconds * float64(time.Second)))
	return &t
}
