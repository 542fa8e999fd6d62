package types

import (
	"encoding/json"
	"reflect"
)

// ResponsesInputItem represents a single item in the Responses API input array.
// Uses a flat discriminated union pattern: Type determines which fields are relevant.
type ResponsesInputItem struct {
	Type      string             `json:"type"`
	Role      string             `json:"role,omitempty"`
	Content   []ResponsesContent `json:"content,omitempty"`
	Name      string             `json:"name,omitempty"`
	Arguments string             `json:"arguments,omitempty"`
	CallID    string             `json:"call_id,omitempty"`
	Output    string             `json:"output,omitempty"`
}

// ResponsesContent represents a content item in a Responses API input message.
type ResponsesContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// ResponsesBody is the request body sent to the /responses endpoint.
type ResponsesBody struct {
	Model           string               `json:"model"`
	Input           []ResponsesInputItem `json:"input"`
	Instructions    string               `json:"instructions,omitempty"`
	Tools           []json.RawMessage    `json:"tools,omitempty"`
	ToolChoice      json.RawMessage      `json:"tool_choice,omitempty"`
	Reasoning       *ReasoningParam      `json:"reasoning,omitempty"`
	ServiceTier     string               `json:"service_tier,omitempty"`
	Stream          *bool                `json:"stream,omitempty"`
	Truncation      string               `json:"truncation,omitempty"`
	Text            *TextParam           `json:"text,omitempty"`
	Temperature     *float64             `json:"temperature,omitempty"`
	TopP            *float64             `json:"top_p,omitempty"`
	MaxOutputTokens *int                 `json:"max_output_tokens,omitempty"`
	Extra           Extra                `json:"-"`
}

type responsesBodyAlias ResponsesBody

var responsesBodyType = reflect.TypeOf(responsesBodyAlias{})

// UnmarshalJSON decodes the typed fields and keeps the rest in Extra.
func (b *ResponsesBody) UnmarshalJSON(data []byte) error {
	var alias responsesBodyAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := splitExtra(data, responsesBodyType)
	if err != nil {
		return err
	}
	alias.Extra = extra
	*b = ResponsesBody(alias)
	return nil
}

// MarshalJSON encodes the typed fields followed by the passthrough keys.
func (b ResponsesBody) MarshalJSON() ([]byte, error) {
	return mergeExtra(responsesBodyAlias(b), b.Extra, responsesBodyType)
}
