// Package pipeline runs a chat request through payload shaping and the
// upstream API, and relays the reply to the client.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/n0madic/go-oaiadapter/internal/codec"
	"github.com/n0madic/go-oaiadapter/internal/payload"
	"github.com/n0madic/go-oaiadapter/internal/types"
	"github.com/n0madic/go-oaiadapter/internal/upstream"
)

// Routes accepted by Shape and Execute.
const (
	RouteChat      = "chat"
	RouteResponses = "responses"
)

// Upstream sends shaped payloads.
type Upstream interface {
	Chat(ctx context.Context, body *types.ChatRequest) (*http.Response, error)
	Responses(ctx context.Context, body *types.ResponsesBody) (*http.Response, error)
}

// Pipeline orchestrates request processing through the
// shape → upstream → relay flow.
type Pipeline struct {
	Options  payload.Options
	Upstream Upstream
	Verbose  bool
}

// Shaped is a request ready to be sent upstream. Exactly one of Chat and
// Responses is set.
type Shaped struct {
	Kind      types.PayloadKind
	Chat      *types.ChatRequest
	Responses *types.ResponsesBody
}

// Endpoint returns the upstream path for the shaped request.
func (s Shaped) Endpoint() string {
	if s.Responses != nil {
		return types.EndpointResponses
	}
	return types.EndpointChatCompletions
}

// Body returns the payload that will be posted upstream.
func (s Shaped) Body() any {
	if s.Responses != nil {
		return s.Responses
	}
	return s.Chat
}

// Shape classifies req and builds the upstream body. route is RouteChat or
// RouteResponses; the responses route skips chat classification.
func (p *Pipeline) Shape(req *types.ChatRequest, route string) Shaped {
	var shaped Shaped
	if route == RouteResponses {
		shaped = Shaped{Kind: types.KindResponses, Responses: p.responsesBody(req)}
	} else {
		pr := payload.HandleChatPayload(req, p.Options)
		shaped = Shaped{Kind: pr.Kind}
		if pr.Kind == types.KindResponses {
			shaped.Responses = p.responsesBody(pr.Payload)
		} else {
			shaped.Chat = payload.ChatBody(pr.Payload)
		}
	}

	if p.Verbose {
		slog.Info("payload.classified", "route", route, "model", req.Model, "kind", shaped.Kind, "endpoint", shaped.Endpoint())
	}
	return shaped
}

func (p *Pipeline) responsesBody(req *types.ChatRequest) *types.ResponsesBody {
	return payload.BuildResponsesBody(payload.HandleResponsesPayload(req, p.Options))
}

// Send posts a shaped request upstream. The caller must close the body.
func (p *Pipeline) Send(ctx context.Context, shaped Shaped) (*http.Response, error) {
	if shaped.Responses != nil {
		return p.Upstream.Responses(ctx, shaped.Responses)
	}
	return p.Upstream.Chat(ctx, shaped.Chat)
}

// Preview returns the dry-run view of req without contacting the upstream.
func (p *Pipeline) Preview(req *types.ChatRequest, route string) types.PreviewResponse {
	shaped := p.Shape(req, route)
	return types.PreviewResponse{Kind: shaped.Kind, Endpoint: shaped.Endpoint(), Body: shaped.Body()}
}

// Execute shapes req, sends it upstream and relays the reply to w.
// Upstream errors keep their status code.
func (p *Pipeline) Execute(ctx context.Context, w http.ResponseWriter, req *types.ChatRequest, route string) {
	resp, err := p.Send(ctx, p.Shape(req, route))
	if err != nil {
		var upErr *upstream.UpstreamError
		if errors.As(err, &upErr) {
			codec.WriteOpenAIError(w, upErr.StatusCode, upErr.Error())
			return
		}
		codec.WriteOpenAIError(w, http.StatusBadGateway, err.Error())
		return
	}
	Relay(w, resp)
}
