package payload

import (
	"encoding/json"
	"strings"

	"github.com/n0madic/go-oaiadapter/internal/transform"
	"github.com/n0madic/go-oaiadapter/internal/types"
)

type webSearchTool struct {
	Type              string `json:"type"`
	SearchContextSize string `json:"search_context_size,omitempty"`
}

// HandleResponsesPayload shapes a request for the Responses API transmission
// path. Search requests get the built-in web_search tool appended to their
// tools. Prune models additionally get an automatic reasoning summary, the
// truncation and verbosity options they require, and reasoning pruning.
// The enabledSearch and verbosity inputs are consumed and never emitted.
func HandleResponsesPayload(req *types.ChatRequest, opts Options) *types.ChatRequest {
	model := req.Model

	out := req.Clone()
	out.APIMode = ""
	out.EnabledSearch = false
	out.Verbosity = ""
	if req.EnabledSearch {
		out.Tools = append(out.Tools, newWebSearchTool(opts.SearchContextSize))
	}
	out.Stream = streamOrDefault(req.Stream)
	if tier := opts.flexTier(model); tier != "" {
		out.ServiceTier = tier
	}

	if !opts.isPruneModel(model) {
		return out
	}

	reasoning := req.Reasoning.Clone()
	if reasoning == nil {
		reasoning = &types.ReasoningParam{}
	}
	reasoning.Summary = "auto"
	if strings.HasPrefix(model, "gpt-5-pro") {
		reasoning.Effort = "high"
	}
	out.Reasoning = reasoning

	// computer-use models reject requests without automatic truncation.
	if strings.HasPrefix(model, "computer-use") {
		out.Truncation = "auto"
	}
	if req.Verbosity != "" {
		text := types.TextParam{}
		if out.Text != nil {
			text = *out.Text
		}
		text.Verbosity = req.Verbosity
		out.Text = &text
	}

	return PruneReasoningPayload(out, opts)
}

func newWebSearchTool(contextSize string) json.RawMessage {
	raw, _ := json.Marshal(webSearchTool{Type: "web_search", SearchContextSize: contextSize})
	return raw
}

// chatOnlyKeys are chat completions options the Responses API rejects.
var chatOnlyKeys = []string{
	"max_completion_tokens",
	"n",
	"logit_bias",
	"logprobs",
	"top_logprobs",
	"response_format",
	"reasoning_effort",
}

// BuildResponsesBody converts a shaped chat payload into a /responses body.
// Messages become input items, chat-style function tools are flattened, and
// max_tokens maps to max_output_tokens. Penalties and stream_options have no
// Responses equivalent and are dropped. Passthrough instructions and
// max_output_tokens keys land in their typed fields.
func BuildResponsesBody(in *types.ChatRequest) *types.ResponsesBody {
	req := in.Clone()
	body := &types.ResponsesBody{
		Model:       req.Model,
		Input:       transform.MessagesToResponsesInput(req.Messages),
		Tools:       transform.ToolsToResponses(req.Tools),
		ToolChoice:  transform.ToolChoiceToResponses(req.ToolChoice),
		Reasoning:   req.Reasoning,
		ServiceTier: req.ServiceTier,
		Stream:      req.Stream,
		Truncation:  req.Truncation,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Extra:       req.Extra.Without(chatOnlyKeys...),
	}
	if body.Input == nil {
		body.Input = []types.ResponsesInputItem{}
	}

	body.MaxOutputTokens = req.MaxTokens
	if body.MaxOutputTokens == nil {
		body.MaxOutputTokens = intFromRaw(req.Extra["max_completion_tokens"])
	}
	if body.MaxOutputTokens == nil {
		body.MaxOutputTokens = intFromRaw(req.Extra["max_output_tokens"])
	}
	if raw := req.Extra["instructions"]; len(raw) > 0 {
		var instructions string
		if err := json.Unmarshal(raw, &instructions); err == nil {
			body.Instructions = instructions
		}
	}

	if body.Reasoning == nil && len(req.Extra["reasoning_effort"]) > 0 {
		var effort string
		if err := json.Unmarshal(req.Extra["reasoning_effort"], &effort); err == nil && effort != "" {
			body.Reasoning = &types.ReasoningParam{Effort: effort}
		}
	}

	text := req.Text
	if format := transform.ResponseFormatToText(req.Extra["response_format"]); format != nil {
		merged := types.TextParam{}
		if text != nil {
			merged = *text
		}
		if len(merged.Format) == 0 {
			merged.Format = format
		}
		text = &merged
	}
	body.Text = text

	return body
}

// ChatBody returns the /chat/completions body for a shaped payload with the
// gateway-internal keys removed.
func ChatBody(req *types.ChatRequest) *types.ChatRequest {
	out := req.Clone()
	out.APIMode = ""
	out.EnabledSearch = false
	return out
}

func intFromRaw(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	return &n
}
