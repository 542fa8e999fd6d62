package types

import (
	"encoding/json"
	"reflect"
)

// APIModeResponses marks a chat payload that must be sent to the Responses API.
const APIModeResponses = "responses"

// ChatRequest is the normalized chat request a client sends to the gateway.
// It doubles as the shaped payload: the adapter returns new ChatRequest values
// with provider fields set or cleared. Keys that are not modelled here are
// kept in Extra and written back unchanged.
type ChatRequest struct {
	Model            string            `json:"model"`
	Messages         []Message         `json:"messages"`
	EnabledSearch    bool              `json:"enabledSearch,omitempty"`
	APIMode          string            `json:"apiMode,omitempty"`
	Stream           *bool             `json:"stream,omitempty"`
	StreamOptions    json.RawMessage   `json:"stream_options,omitempty"`
	Temperature      *float64          `json:"temperature,omitempty"`
	TopP             *float64          `json:"top_p,omitempty"`
	FrequencyPenalty *float64          `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64          `json:"presence_penalty,omitempty"`
	MaxTokens        *int              `json:"max_tokens,omitempty"`
	Reasoning        *ReasoningParam   `json:"reasoning,omitempty"`
	Tools            []json.RawMessage `json:"tools,omitempty"`
	ToolChoice       json.RawMessage   `json:"tool_choice,omitempty"`
	Verbosity        string            `json:"verbosity,omitempty"`
	ServiceTier      string            `json:"service_tier,omitempty"`
	Truncation       string            `json:"truncation,omitempty"`
	Text             *TextParam        `json:"text,omitempty"`
	WebSearchOptions *WebSearchOptions `json:"web_search_options,omitempty"`
	Extra            Extra             `json:"-"`
}

type chatRequestAlias ChatRequest

var chatRequestType = reflect.TypeOf(chatRequestAlias{})

// UnmarshalJSON decodes the typed fields and keeps the rest in Extra.
func (r *ChatRequest) UnmarshalJSON(data []byte) error {
	var alias chatRequestAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := splitExtra(data, chatRequestType)
	if err != nil {
		return err
	}
	alias.Extra = extra
	*r = ChatRequest(alias)
	return nil
}

// MarshalJSON encodes the typed fields followed by the passthrough keys.
func (r ChatRequest) MarshalJSON() ([]byte, error) {
	return mergeExtra(chatRequestAlias(r), r.Extra, chatRequestType)
}

// Clone returns a deep copy that shares no mutable state with r.
func (r *ChatRequest) Clone() *ChatRequest {
	if r == nil {
		return nil
	}
	out := *r
	if r.Messages != nil {
		out.Messages = make([]Message, len(r.Messages))
		for i := range r.Messages {
			out.Messages[i] = r.Messages[i].Clone()
		}
	}
	out.Stream = cloneBoolPtr(r.Stream)
	out.StreamOptions = cloneRaw(r.StreamOptions)
	out.Temperature = cloneFloatPtr(r.Temperature)
	out.TopP = cloneFloatPtr(r.TopP)
	out.FrequencyPenalty = cloneFloatPtr(r.FrequencyPenalty)
	out.PresencePenalty = cloneFloatPtr(r.PresencePenalty)
	out.MaxTokens = cloneIntPtr(r.MaxTokens)
	out.Reasoning = r.Reasoning.Clone()
	if r.Tools != nil {
		out.Tools = make([]json.RawMessage, len(r.Tools))
		for i, t := range r.Tools {
			out.Tools[i] = cloneRaw(t)
		}
	}
	out.ToolChoice = cloneRaw(r.ToolChoice)
	if r.Text != nil {
		text := *r.Text
		text.Format = cloneRaw(r.Text.Format)
		out.Text = &text
	}
	if r.WebSearchOptions != nil {
		wso := *r.WebSearchOptions
		out.WebSearchOptions = &wso
	}
	out.Extra = r.Extra.Clone()
	return &out
}

// Message is a single chat message. Content is either a string or an array of
// content parts and is passed through as decoded.
type Message struct {
	Role             string            `json:"role"`
	Content          any               `json:"content,omitempty"`
	Name             string            `json:"name,omitempty"`
	ToolCalls        []ToolCall        `json:"tool_calls,omitempty"`
	ToolCallID       string            `json:"tool_call_id,omitempty"`
	Reasoning        *MessageReasoning `json:"reasoning,omitempty"`
	ReasoningContent string            `json:"reasoning_content,omitempty"`
	Extra            Extra             `json:"-"`
}

type messageAlias Message

var messageType = reflect.TypeOf(messageAlias{})

// UnmarshalJSON decodes the typed fields and keeps the rest in Extra.
func (m *Message) UnmarshalJSON(data []byte) error {
	var alias messageAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := splitExtra(data, messageType)
	if err != nil {
		return err
	}
	alias.Extra = extra
	*m = Message(alias)
	return nil
}

// MarshalJSON encodes the typed fields followed by the passthrough keys.
func (m Message) MarshalJSON() ([]byte, error) {
	return mergeExtra(messageAlias(m), m.Extra, messageType)
}

// Clone returns a copy of m. Content is decoded JSON and is treated as
// read-only, so it is shared.
func (m Message) Clone() Message {
	out := m
	if m.ToolCalls != nil {
		out.ToolCalls = append([]ToolCall(nil), m.ToolCalls...)
	}
	if m.Reasoning != nil {
		r := *m.Reasoning
		r.Duration = cloneIntPtr(m.Reasoning.Duration)
		r.Extra = m.Reasoning.Extra.Clone()
		out.Reasoning = &r
	}
	out.Extra = m.Extra.Clone()
	return out
}

// MessageReasoning is the reasoning trace attached to an assistant message.
type MessageReasoning struct {
	Content   string `json:"content,omitempty"`
	Signature string `json:"signature,omitempty"`
	Duration  *int   `json:"duration,omitempty"`
	Extra     Extra  `json:"-"`
}

type messageReasoningAlias MessageReasoning

var messageReasoningType = reflect.TypeOf(messageReasoningAlias{})

// UnmarshalJSON decodes the typed fields and keeps the rest in Extra.
func (r *MessageReasoning) UnmarshalJSON(data []byte) error {
	var alias messageReasoningAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := splitExtra(data, messageReasoningType)
	if err != nil {
		return err
	}
	alias.Extra = extra
	*r = MessageReasoning(alias)
	return nil
}

// MarshalJSON encodes the typed fields followed by the passthrough keys.
func (r MessageReasoning) MarshalJSON() ([]byte, error) {
	return mergeExtra(messageReasoningAlias(r), r.Extra, messageReasoningType)
}

// ToolCall represents a tool call in a message.
type ToolCall struct {
	Index    int          `json:"index,omitempty"`
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall holds the function name and arguments string.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ReasoningParam is the reasoning option of chat and responses requests.
type ReasoningParam struct {
	Effort  string `json:"effort,omitempty"`
	Summary string `json:"summary,omitempty"`
	Extra   Extra  `json:"-"`
}

type reasoningParamAlias ReasoningParam

var reasoningParamType = reflect.TypeOf(reasoningParamAlias{})

// UnmarshalJSON decodes the typed fields and keeps the rest in Extra.
func (p *ReasoningParam) UnmarshalJSON(data []byte) error {
	var alias reasoningParamAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := splitExtra(data, reasoningParamType)
	if err != nil {
		return err
	}
	alias.Extra = extra
	*p = ReasoningParam(alias)
	return nil
}

// MarshalJSON encodes the typed fields followed by the passthrough keys.
func (p ReasoningParam) MarshalJSON() ([]byte, error) {
	return mergeExtra(reasoningParamAlias(p), p.Extra, reasoningParamType)
}

// Clone returns a deep copy of p.
func (p *ReasoningParam) Clone() *ReasoningParam {
	if p == nil {
		return nil
	}
	out := *p
	out.Extra = p.Extra.Clone()
	return &out
}

// TextParam is the Responses API text configuration.
type TextParam struct {
	Verbosity string          `json:"verbosity,omitempty"`
	Format    json.RawMessage `json:"format,omitempty"`
}

// WebSearchOptions configures the built-in search of "-search-" chat models.
type WebSearchOptions struct {
	SearchContextSize string `json:"search_context_size,omitempty"`
}
