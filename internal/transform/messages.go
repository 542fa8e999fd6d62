package transform

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/n0madic/go-oaiadapter/internal/types"
)

// messageRoles are the chat roles that map one-to-one onto Responses message
// roles. Any other role is sent as user.
var messageRoles = map[string]bool{
	"user":      true,
	"assistant": true,
	"system":    true,
	"developer": true,
}

// MessagesToResponsesInput converts chat messages to Responses API input items.
//
// Tool results become function_call_output items and need a call id (the
// tool_call_id, or the name as a fallback). Assistant tool calls become
// function_call items ahead of the assistant's own text. Messages left
// without content produce no item.
func MessagesToResponsesInput(messages []types.Message) []types.ResponsesInputItem {
	var items []types.ResponsesInputItem
	for _, msg := range messages {
		if msg.Role == "tool" {
			if item, ok := toolOutputItem(msg); ok {
				items = append(items, item)
			}
			continue
		}
		if msg.Role == "assistant" {
			items = append(items, functionCallItems(msg.ToolCalls)...)
		}
		if item, ok := messageItem(msg); ok {
			items = append(items, item)
		}
	}
	return items
}

func toolOutputItem(msg types.Message) (types.ResponsesInputItem, bool) {
	callID := msg.ToolCallID
	if callID == "" {
		callID = msg.Name
	}
	if callID == "" {
		return types.ResponsesInputItem{}, false
	}
	return types.ResponsesInputItem{
		Type:   "function_call_output",
		CallID: callID,
		Output: toolOutput(msg.Content),
	}, true
}

// toolOutput flattens tool content to a string. Part arrays are joined by
// newlines, whatever the part type.
func toolOutput(content any) string {
	switch c := content.(type) {
	case string:
		return c
	case []any:
		var texts []string
		for _, raw := range c {
			if part, ok := raw.(map[string]any); ok {
				if text := partText(part); text != "" {
					texts = append(texts, text)
				}
			}
		}
		return strings.Join(texts, "\n")
	}
	return ""
}

func functionCallItems(calls []types.ToolCall) []types.ResponsesInputItem {
	var items []types.ResponsesInputItem
	for _, call := range calls {
		if call.Type != "" && call.Type != "function" {
			continue
		}
		if call.ID == "" || call.Function.Name == "" {
			continue
		}
		items = append(items, types.ResponsesInputItem{
			Type:      "function_call",
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
			CallID:    call.ID,
		})
	}
	return items
}

func messageItem(msg types.Message) (types.ResponsesInputItem, bool) {
	content := contentParts(msg.Content, msg.Role == "assistant")
	if len(content) == 0 {
		return types.ResponsesInputItem{}, false
	}
	role := msg.Role
	if !messageRoles[role] {
		role = "user"
	}
	return types.ResponsesInputItem{Type: "message", Role: role, Content: content}, true
}

// contentParts maps chat content to Responses content. Assistant text is
// output_text, everything else input_text. Images are dropped from assistant
// messages.
func contentParts(content any, assistant bool) []types.ResponsesContent {
	textType := "input_text"
	if assistant {
		textType = "output_text"
	}

	switch c := content.(type) {
	case string:
		if c == "" {
			return nil
		}
		return []types.ResponsesContent{{Type: textType, Text: c}}
	case []any:
		var out []types.ResponsesContent
		for _, raw := range c {
			part, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			kind, _ := part["type"].(string)
			switch kind {
			case "text", "input_text", "output_text":
				if text := partText(part); text != "" {
					out = append(out, types.ResponsesContent{Type: textType, Text: text})
				}
			case "image_url", "input_image":
				if src := imageSource(part); src != "" && !assistant {
					out = append(out, types.ResponsesContent{Type: "input_image", ImageURL: normalizeImageDataURL(src)})
				}
			}
		}
		return out
	}
	return nil
}

// partText returns the part's text, falling back to a string content field.
func partText(part map[string]any) string {
	if text, _ := part["text"].(string); text != "" {
		return text
	}
	text, _ := part["content"].(string)
	return text
}

// imageSource accepts both {"image_url":{"url":...}} and {"image_url":"..."}.
func imageSource(part map[string]any) string {
	switch v := part["image_url"].(type) {
	case map[string]any:
		src, _ := v["url"].(string)
		return src
	case string:
		return v
	}
	return ""
}

var base64Cleaner = strings.NewReplacer("\n", "", "\r", "", "-", "+", "_", "/")

// normalizeImageDataURL repairs base64 image data URLs: escaped, url-safe or
// unpadded payloads are rewritten to standard base64. Anything that still
// fails to decode is returned unchanged.
func normalizeImageDataURL(u string) string {
	header, data, ok := strings.Cut(u, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return u
	}
	if unescaped, err := url.PathUnescape(data); err == nil {
		data = unescaped
	}
	data = base64Cleaner.Replace(data)
	if rem := len(data) % 4; rem != 0 {
		data += strings.Repeat("=", 4-rem)
	}
	if _, err := base64.StdEncoding.DecodeString(data); err != nil {
		return u
	}
	return header + "," + data
}
