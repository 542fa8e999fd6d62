package payload

import (
	"github.com/n0madic/go-oaiadapter/internal/types"
)

// PruneReasoningPayload rewrites a request for reasoning models, which reject
// custom sampling parameters and the system role.
//
// Streaming is forced off for models that cannot stream, and stream_options
// is only kept while streaming. Sampling parameters are pinned to the values
// reasoning models accept. System messages become developer messages, or
// user messages for models that predate the developer role.
func PruneReasoningPayload(req *types.ChatRequest, opts Options) *types.ChatRequest {
	out := req.Clone()

	_, noStream := opts.DisableStreamModels[req.Model]
	shouldStream := !noStream
	out.Stream = types.BoolPtr(shouldStream)
	if !shouldStream {
		out.StreamOptions = nil
	}

	out.FrequencyPenalty = types.Float64Ptr(0)
	out.PresencePenalty = types.Float64Ptr(0)
	out.Temperature = types.Float64Ptr(1)
	out.TopP = types.Float64Ptr(1)

	_, systemToUser := opts.SystemToUserModels[req.Model]
	for i := range out.Messages {
		if out.Messages[i].Role != "system" {
			continue
		}
		if systemToUser {
			out.Messages[i].Role = "user"
		} else {
			out.Messages[i].Role = "developer"
		}
	}

	return out
}
