package transform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolsToResponses(t *testing.T) {
	tools := []json.RawMessage{
		json.RawMessage(`{"type":"function","function":{"name":"get_weather","description":"Weather","parameters":{"type":"object"}}}`),
		json.RawMessage(`{"type":"function","function":{"name":"noop"}}`),
		json.RawMessage(`{"type":"function","function":{"name":""}}`),
		json.RawMessage(`{"type":"web_search","search_context_size":"low"}`),
		json.RawMessage(`{"type":"function","name":"flat","parameters":{}}`),
	}

	out := ToolsToResponses(tools)
	require.Len(t, out, 4)
	assert.JSONEq(t, `{"type":"function","name":"get_weather","description":"Weather","parameters":{"type":"object"},"strict":false}`, string(out[0]))
	assert.JSONEq(t, `{"type":"function","name":"noop","parameters":{"type":"object","properties":{}},"strict":false}`, string(out[1]))
	assert.JSONEq(t, `{"type":"web_search","search_context_size":"low"}`, string(out[2]))
	assert.JSONEq(t, `{"type":"function","name":"flat","parameters":{}}`, string(out[3]))
}

func TestToolsToResponsesNil(t *testing.T) {
	assert.Nil(t, ToolsToResponses(nil))
}

func TestToolChoiceToResponses(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"mode string", `"auto"`, `"auto"`},
		{"named function", `{"type":"function","function":{"name":"f"}}`, `{"type":"function","name":"f"}`},
		{"already flat", `{"type":"function","name":"f"}`, `{"type":"function","name":"f"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, string(ToolChoiceToResponses(json.RawMessage(tt.in))))
		})
	}
	assert.Nil(t, ToolChoiceToResponses(nil))
}

func TestResponseFormatToText(t *testing.T) {
	assert.Nil(t, ResponseFormatToText(nil))
	assert.JSONEq(t, `{"type":"json_object"}`, string(ResponseFormatToText(json.RawMessage(`{"type":"json_object"}`))))

	got := ResponseFormatToText(json.RawMessage(`{"type":"json_schema","json_schema":{"name":"out","schema":{"type":"object"},"strict":true}}`))
	assert.JSONEq(t, `{"type":"json_schema","name":"out","schema":{"type":"object"},"strict":true}`, string(got))
}
