package payload

import (
	"strings"

	"github.com/n0madic/go-oaiadapter/internal/types"
)

// searchModelMarker marks chat models with built-in web search.
const searchModelMarker = "-search-"

// HandleChatPayload classifies req and returns the request shape for the
// chat completions transmission path. The first matching rule wins:
// responses-only models and search requests go to the Responses API, prune
// models get reasoning-compatible pruning, "-search-" models drop sampling
// parameters, and everything else passes through with the stream and flex
// tier defaults applied.
func HandleChatPayload(req *types.ChatRequest, opts Options) types.ProviderRequest {
	model := req.Model

	base := req.Clone()
	if opts.needsReasoningContent(model) {
		base.Messages = ReasoningToContent(base.Messages)
	}

	if opts.isResponsesModel(model) || req.EnabledSearch {
		base.APIMode = types.APIModeResponses
		return types.ProviderRequest{Kind: types.KindResponses, Payload: base}
	}

	base.APIMode = ""
	if opts.isPruneModel(model) {
		return types.ProviderRequest{Kind: types.KindPruned, Payload: PruneReasoningPayload(base, opts)}
	}

	out := base
	out.Stream = streamOrDefault(req.Stream)
	if tier := opts.flexTier(model); tier != "" {
		out.ServiceTier = tier
	}

	if strings.Contains(model, searchModelMarker) {
		out.Temperature = nil
		out.TopP = nil
		out.FrequencyPenalty = nil
		out.PresencePenalty = nil
		if opts.SearchContextSize != "" {
			out.WebSearchOptions = &types.WebSearchOptions{SearchContextSize: opts.SearchContextSize}
		}
		return types.ProviderRequest{Kind: types.KindSearch, Payload: out}
	}

	return types.ProviderRequest{Kind: types.KindStandard, Payload: out}
}

// ReasoningToContent moves each message's reasoning.content into a sibling
// reasoning_content field. A reasoning object without content is dropped.
// Messages without reasoning are copied unchanged.
func ReasoningToContent(messages []types.Message) []types.Message {
	if messages == nil {
		return nil
	}
	out := make([]types.Message, len(messages))
	for i, msg := range messages {
		m := msg.Clone()
		if m.Reasoning != nil {
			if m.Reasoning.Content != "" {
				m.ReasoningContent = m.Reasoning.Content
			}
			m.Reasoning = nil
		}
		out[i] = m
	}
	return out
}

// streamOrDefault keeps an explicit stream flag and defaults to streaming.
func streamOrDefault(stream *bool) *bool {
	if stream != nil {
		return types.BoolPtr(*stream)
	}
	return types.BoolPtr(true)
}
