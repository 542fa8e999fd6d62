package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/n0madic/go-oaiadapter/internal/types"
)

func textItem(role, textType, text string) types.ResponsesInputItem {
	return types.ResponsesInputItem{
		Type:    "message",
		Role:    role,
		Content: []types.ResponsesContent{{Type: textType, Text: text}},
	}
}

func TestMessagesToResponsesInput(t *testing.T) {
	tests := []struct {
		name     string
		messages []types.Message
		want     []types.ResponsesInputItem
	}{
		{
			name: "empty messages",
		},
		{
			name:     "system message keeps role",
			messages: []types.Message{{Role: "system", Content: "You are helpful"}},
			want:     []types.ResponsesInputItem{textItem("system", "input_text", "You are helpful")},
		},
		{
			name:     "developer message keeps role",
			messages: []types.Message{{Role: "developer", Content: "Be terse"}},
			want:     []types.ResponsesInputItem{textItem("developer", "input_text", "Be terse")},
		},
		{
			name:     "unknown role becomes user",
			messages: []types.Message{{Role: "function", Content: "x"}},
			want:     []types.ResponsesInputItem{textItem("user", "input_text", "x")},
		},
		{
			name:     "assistant text is output_text",
			messages: []types.Message{{Role: "assistant", Content: "Hi there", ReasoningContent: "thinking"}},
			want:     []types.ResponsesInputItem{textItem("assistant", "output_text", "Hi there")},
		},
		{
			name:     "tool result",
			messages: []types.Message{{Role: "tool", ToolCallID: "call_123", Content: "result"}},
			want:     []types.ResponsesInputItem{{Type: "function_call_output", CallID: "call_123", Output: "result"}},
		},
		{
			name: "tool result with part array and name fallback",
			messages: []types.Message{{Role: "tool", Name: "call_9", Content: []any{
				map[string]any{"type": "text", "text": "a"},
				map[string]any{"type": "text", "content": "b"},
			}}},
			want: []types.ResponsesInputItem{{Type: "function_call_output", CallID: "call_9", Output: "a\nb"}},
		},
		{
			name:     "tool result without call id dropped",
			messages: []types.Message{{Role: "tool", Content: "orphan"}},
		},
		{
			name: "assistant tool calls precede text",
			messages: []types.Message{{
				Role:    "assistant",
				Content: "checking",
				ToolCalls: []types.ToolCall{
					{ID: "call_abc", Type: "function", Function: types.FunctionCall{Name: "get_weather", Arguments: `{"city":"NYC"}`}},
					{ID: "call_x", Type: "custom", Function: types.FunctionCall{Name: "skip"}},
					{Type: "function", Function: types.FunctionCall{Name: "no_id"}},
				},
			}},
			want: []types.ResponsesInputItem{
				{Type: "function_call", Name: "get_weather", Arguments: `{"city":"NYC"}`, CallID: "call_abc"},
				textItem("assistant", "output_text", "checking"),
			},
		},
		{
			name: "multimodal user content",
			messages: []types.Message{{
				Role: "user",
				Content: []any{
					map[string]any{"type": "text", "text": "What is this?"},
					map[string]any{"type": "image_url", "image_url": map[string]any{"url": "https://example.com/img.png"}},
					map[string]any{"type": "input_image", "image_url": "https://example.com/b.png"},
				},
			}},
			want: []types.ResponsesInputItem{{
				Type: "message",
				Role: "user",
				Content: []types.ResponsesContent{
					{Type: "input_text", Text: "What is this?"},
					{Type: "input_image", ImageURL: "https://example.com/img.png"},
					{Type: "input_image", ImageURL: "https://example.com/b.png"},
				},
			}},
		},
		{
			name: "assistant images dropped",
			messages: []types.Message{{
				Role:    "assistant",
				Content: []any{map[string]any{"type": "image_url", "image_url": "https://example.com/c.png"}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MessagesToResponsesInput(tt.messages))
		})
	}
}

func TestNormalizeImageDataURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"remote url untouched", "https://example.com/a.png", "https://example.com/a.png"},
		{"url-safe base64 fixed", "data:image/png;base64,aGk_", "data:image/png;base64,aGk/"},
		{"padding added", "data:image/png;base64,aGk", "data:image/png;base64,aGk="},
		{"escaped payload", "data:image/png;base64,aGk%3D", "data:image/png;base64,aGk="},
		{"not base64 untouched", "data:image/svg+xml,<svg/>", "data:image/svg+xml,<svg/>"},
		{"invalid payload untouched", "data:image/png;base64,!!!", "data:image/png;base64,!!!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeImageDataURL(tt.in))
		})
	}
}
