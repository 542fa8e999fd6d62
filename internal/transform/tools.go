package transform

import (
	"encoding/json"
)

type chatTool struct {
	Type     string       `json:"type"`
	Function *functionDef `json:"function,omitempty"`
}

type functionDef struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
	Strict      *bool  `json:"strict,omitempty"`
}

type responsesFunctionTool struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters"`
	Strict      bool   `json:"strict"`
}

// ToolsToResponses converts chat-format function tools to the flat Responses
// API shape. Tools that are already in Responses form (web_search, file_search,
// flat function tools, ...) pass through unchanged.
func ToolsToResponses(tools []json.RawMessage) []json.RawMessage {
	if tools == nil {
		return nil
	}
	out := make([]json.RawMessage, 0, len(tools))
	for _, raw := range tools {
		var t chatTool
		if err := json.Unmarshal(raw, &t); err != nil || t.Type != "function" || t.Function == nil {
			out = append(out, raw)
			continue
		}
		if t.Function.Name == "" {
			continue
		}
		params := t.Function.Parameters
		if params == nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		strict := false
		if t.Function.Strict != nil {
			strict = *t.Function.Strict
		}
		converted, err := json.Marshal(responsesFunctionTool{
			Type:        "function",
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  params,
			Strict:      strict,
		})
		if err != nil {
			continue
		}
		out = append(out, converted)
	}
	return out
}

// ToolChoiceToResponses flattens a chat tool_choice naming a function
// ({"type":"function","function":{"name":...}}) into the Responses form.
// Mode strings and other objects pass through.
func ToolChoiceToResponses(choice json.RawMessage) json.RawMessage {
	if len(choice) == 0 {
		return nil
	}
	var tc chatTool
	if err := json.Unmarshal(choice, &tc); err != nil || tc.Type != "function" || tc.Function == nil || tc.Function.Name == "" {
		return choice
	}
	out, err := json.Marshal(map[string]string{"type": "function", "name": tc.Function.Name})
	if err != nil {
		return choice
	}
	return out
}

type responseFormat struct {
	Type       string `json:"type"`
	JSONSchema *struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Schema      any    `json:"schema,omitempty"`
		Strict      *bool  `json:"strict,omitempty"`
	} `json:"json_schema,omitempty"`
}

type textFormat struct {
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Schema      any    `json:"schema,omitempty"`
	Strict      *bool  `json:"strict,omitempty"`
}

// ResponseFormatToText maps a chat response_format to the Responses
// text.format value. It returns nil when there is nothing to map.
func ResponseFormatToText(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var rf responseFormat
	if err := json.Unmarshal(raw, &rf); err != nil || rf.Type == "" {
		return nil
	}
	tf := textFormat{Type: rf.Type}
	if rf.Type == "json_schema" && rf.JSONSchema != nil {
		tf.Name = rf.JSONSchema.Name
		tf.Description = rf.JSONSchema.Description
		tf.Schema = rf.JSONSchema.Schema
		tf.Strict = rf.JSONSchema.Strict
	}
	out, err := json.Marshal(tf)
	if err != nil {
		return nil
	}
	return out
}
