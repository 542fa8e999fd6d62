// Package upstream sends shaped payloads to the OpenAI API.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/n0madic/go-oaiadapter/internal/codec"
	"github.com/n0madic/go-oaiadapter/internal/config"
	"github.com/n0madic/go-oaiadapter/internal/limits"
	"github.com/n0madic/go-oaiadapter/internal/models"
	"github.com/n0madic/go-oaiadapter/internal/types"
)

// UpstreamError represents a non-2xx reply from the upstream API.
type UpstreamError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *UpstreamError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s (request_id: %s)", e.Message, e.RequestID)
	}
	return e.Message
}

// Options configures a Client.
type Options struct {
	Upstream config.UpstreamConfig

	// HTTPClient carries the credentials; see auth.NewHTTPClient.
	HTTPClient *http.Client

	// Limits records the rate limit headers of every upstream reply.
	Limits *limits.Tracker

	Verbose             bool
	Debug               bool
	DebugChatCompletion bool
	DebugResponses      bool
}

// Client makes requests to the OpenAI API.
type Client struct {
	sdk            openai.Client
	limits         *limits.Tracker
	verbose        bool
	debug          bool
	debugChat      bool
	debugResponses bool

	dumpMu  sync.Mutex
	dumpOut io.Writer
}

// NewClient creates a new upstream client.
func NewClient(opts Options) *Client {
	up := opts.Upstream
	baseURL := up.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}

	reqOpts := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(baseURL, "/") + "/"),
		option.WithMaxRetries(up.MaxRetries),
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	headers := http.Header{}
	config.ApplyUpstreamHeaders(headers, up)
	for name := range headers {
		reqOpts = append(reqOpts, option.WithHeader(name, headers.Get(name)))
	}

	return &Client{
		sdk:            openai.NewClient(reqOpts...),
		limits:         opts.Limits,
		verbose:        opts.Verbose,
		debug:          opts.Debug,
		debugChat:      opts.DebugChatCompletion,
		debugResponses: opts.DebugResponses,
		dumpOut:        os.Stderr,
	}
}

// Chat posts a shaped payload to chat/completions and returns the raw
// upstream response. The caller must close the body.
func (c *Client) Chat(ctx context.Context, body *types.ChatRequest) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat payload: %w", err)
	}
	if c.debugChat {
		c.dumpPayload("CHAT COMPLETION PAYLOAD", data)
	}
	return c.post(ctx, types.EndpointChatCompletions, body.Model, streaming(body.Stream), data)
}

// Responses posts a body to the Responses API and returns the raw upstream
// response. The caller must close the body.
func (c *Client) Responses(ctx context.Context, body *types.ResponsesBody) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal responses payload: %w", err)
	}
	if c.debugResponses {
		c.dumpPayload("RESPONSES PAYLOAD", data)
	}
	return c.post(ctx, types.EndpointResponses, body.Model, streaming(body.Stream), data)
}

// ListModels returns the upstream model list.
func (c *Client) ListModels(ctx context.Context) ([]models.RemoteModel, error) {
	page, err := c.sdk.Models.List(ctx)
	if err != nil {
		return nil, c.toUpstreamError(err)
	}
	out := make([]models.RemoteModel, 0, len(page.Data))
	for _, m := range page.Data {
		out = append(out, models.RemoteModel{ID: m.ID, Created: m.Created, OwnedBy: m.OwnedBy})
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path, model string, stream bool, body []byte) (*http.Response, error) {
	reqOpts := []option.RequestOption{option.WithRequestBody("application/json", body)}
	if id := RequestIDFromContext(ctx); id != "" {
		reqOpts = append(reqOpts, option.WithHeader("X-Request-Id", id))
	}
	if stream {
		reqOpts = append(reqOpts, option.WithHeader("Accept", "text/event-stream"))
	}

	if c.verbose {
		slog.Info("upstream.request", "endpoint", path, "model", model, "stream", stream, "bytes", len(body))
	}

	var resp *http.Response
	if err := c.sdk.Post(ctx, path, nil, &resp, reqOpts...); err != nil {
		return nil, c.toUpstreamError(err)
	}
	c.limits.RecordFromResponse(resp.Header)

	if c.verbose {
		attrs := []any{"endpoint", path, "status", resp.StatusCode}
		if requestID := codec.UpstreamRequestID(resp.Header); requestID != "" {
			attrs = append(attrs, "request_id", requestID)
		}
		slog.Info("upstream.response", attrs...)
	}
	c.dumpUpstreamResponse(resp)
	return resp, nil
}

// toUpstreamError converts SDK API errors into *UpstreamError. Transport
// errors are wrapped and returned as-is.
func (c *Client) toUpstreamError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("upstream request failed: %w", err)
	}

	var raw []byte
	var headers http.Header
	if apiErr.Response != nil {
		headers = apiErr.Response.Header
		c.limits.RecordFromResponse(headers)
		if apiErr.Response.Body != nil {
			raw, _ = io.ReadAll(apiErr.Response.Body)
			apiErr.Response.Body.Close()
		}
	}
	msg := codec.ExtractUpstreamErrorMessage(raw)
	if msg == "" {
		msg = apiErr.Message
	}
	if msg == "" {
		msg = codec.FormatUpstreamError(apiErr.StatusCode, raw)
	}
	return &UpstreamError{
		StatusCode: apiErr.StatusCode,
		Message:    msg,
		RequestID:  codec.UpstreamRequestID(headers),
	}
}

func streaming(stream *bool) bool {
	return stream != nil && *stream
}

type requestIDKey struct{}

// WithRequestID returns a context that forwards id as X-Request-Id upstream.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id set by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
