package payload

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n0madic/go-oaiadapter/internal/config"
	"github.com/n0madic/go-oaiadapter/internal/types"
)

func defaultOptions() Options {
	return NewOptions(config.DefaultAdapterConfig())
}

func flexOptions() Options {
	cfg := config.DefaultAdapterConfig()
	cfg.ServiceTierFlex = true
	return NewOptions(cfg)
}

func userMsg(text string) types.Message {
	return types.Message{Role: "user", Content: text}
}

func TestEnabledSearchAlwaysResponses(t *testing.T) {
	models := []string{"gpt-4o", "gpt-4o-search-preview", "o3", "deepseek-chat", "gpt-5-pro", ""}
	for _, model := range models {
		t.Run(model, func(t *testing.T) {
			req := &types.ChatRequest{Model: model, EnabledSearch: true, Messages: []types.Message{userMsg("hi")}}
			got := HandleChatPayload(req, defaultOptions())
			assert.Equal(t, types.KindResponses, got.Kind)
			assert.Equal(t, types.APIModeResponses, got.Payload.APIMode)
			assert.True(t, got.Payload.EnabledSearch, "enabledSearch is carried through")
			assert.Equal(t, types.EndpointResponses, got.Endpoint())
		})
	}
}

func TestResponsesAllowListWithoutSearch(t *testing.T) {
	for _, model := range config.DefaultAdapterConfig().ResponsesModels {
		t.Run(model, func(t *testing.T) {
			got := HandleChatPayload(&types.ChatRequest{Model: model}, defaultOptions())
			assert.Equal(t, types.KindResponses, got.Kind)
			assert.False(t, got.Payload.EnabledSearch)
		})
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		model string
		want  types.PayloadKind
	}{
		{"o1", types.KindPruned},
		{"o3-mini", types.KindPruned},
		{"o4-mini", types.KindPruned},
		{"gpt-5", types.KindPruned},
		{"gpt-5-pro-x", types.KindPruned},
		{"codex-mini", types.KindPruned},
		{"computer-use-alpha", types.KindPruned},
		{"gpt-4o-search-preview", types.KindSearch},
		{"gpt-4o-mini-search-preview", types.KindSearch},
		{"gpt-4o", types.KindStandard},
		{"gpt-4.1-mini", types.KindStandard},
		{"deepseek-reasoner", types.KindStandard},
		{"", types.KindStandard},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got := HandleChatPayload(&types.ChatRequest{Model: tt.model}, defaultOptions())
			assert.Equal(t, tt.want, got.Kind)
			assert.Equal(t, types.EndpointChatCompletions, got.Endpoint())
			assert.Empty(t, got.Payload.APIMode)
		})
	}
}

func TestReasoningContentRewrite(t *testing.T) {
	req := &types.ChatRequest{
		Model: "deepseek-reasoner",
		Messages: []types.Message{
			userMsg("q"),
			{Role: "assistant", Content: "a", Reasoning: &types.MessageReasoning{Content: "abc"}},
			{Role: "assistant", Content: "b", Reasoning: &types.MessageReasoning{}},
		},
	}

	got := HandleChatPayload(req, defaultOptions())
	require.Equal(t, types.KindStandard, got.Kind)
	msgs := got.Payload.Messages
	require.Len(t, msgs, 3)

	assert.Nil(t, msgs[0].Reasoning)
	assert.Empty(t, msgs[0].ReasoningContent)

	assert.Nil(t, msgs[1].Reasoning)
	assert.Equal(t, "abc", msgs[1].ReasoningContent)

	assert.Nil(t, msgs[2].Reasoning)
	assert.Empty(t, msgs[2].ReasoningContent)

	raw, err := json.Marshal(msgs[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"assistant","content":"a","reasoning_content":"abc"}`, string(raw))

	raw, err = json.Marshal(msgs[2])
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"assistant","content":"b"}`, string(raw))

	// The input is never mutated.
	require.NotNil(t, req.Messages[1].Reasoning)
	assert.Equal(t, "abc", req.Messages[1].Reasoning.Content)
	assert.Empty(t, req.Messages[1].ReasoningContent)
	assert.NotNil(t, req.Messages[2].Reasoning)
}

func TestReasoningContentKeptForOtherModels(t *testing.T) {
	req := &types.ChatRequest{
		Model:    "gpt-4o",
		Messages: []types.Message{{Role: "assistant", Content: "a", Reasoning: &types.MessageReasoning{
			Content: "abc",
			Extra:   types.Extra{"tokens": json.RawMessage(`5`)},
		}}},
	}
	got := HandleChatPayload(req, defaultOptions())
	require.NotNil(t, got.Payload.Messages[0].Reasoning)
	assert.Equal(t, "abc", got.Payload.Messages[0].Reasoning.Content)
	assert.Empty(t, got.Payload.Messages[0].ReasoningContent)

	out, err := json.Marshal(ChatBody(got.Payload))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	reasoning := decoded["messages"].([]any)[0].(map[string]any)["reasoning"]
	assert.Equal(t, map[string]any{"content": "abc", "tokens": float64(5)}, reasoning)
}

func TestReasoningContentAppliesBeforeResponsesMode(t *testing.T) {
	req := &types.ChatRequest{
		Model:         "glm-4.6",
		EnabledSearch: true,
		Messages:      []types.Message{{Role: "assistant", Reasoning: &types.MessageReasoning{Content: "t"}}},
	}
	got := HandleChatPayload(req, defaultOptions())
	require.Equal(t, types.KindResponses, got.Kind)
	assert.Nil(t, got.Payload.Messages[0].Reasoning)
	assert.Equal(t, "t", got.Payload.Messages[0].ReasoningContent)
}

func TestStandardStreamDefault(t *testing.T) {
	got := HandleChatPayload(&types.ChatRequest{Model: "gpt-4o"}, defaultOptions())
	require.NotNil(t, got.Payload.Stream)
	assert.True(t, *got.Payload.Stream)

	got = HandleChatPayload(&types.ChatRequest{Model: "gpt-4o", Stream: types.BoolPtr(false)}, defaultOptions())
	require.NotNil(t, got.Payload.Stream)
	assert.False(t, *got.Payload.Stream)
}

func TestStandardKeepsFields(t *testing.T) {
	req := &types.ChatRequest{
		Model:       "gpt-4o",
		Temperature: types.Float64Ptr(0.2),
		TopP:        types.Float64Ptr(0.9),
		ServiceTier: "priority",
		Extra:       types.Extra{"user": json.RawMessage(`"u1"`)},
	}
	got := HandleChatPayload(req, flexOptions())
	require.Equal(t, types.KindStandard, got.Kind)
	assert.InDelta(t, 0.2, *got.Payload.Temperature, 1e-9)
	assert.InDelta(t, 0.9, *got.Payload.TopP, 1e-9)
	assert.Equal(t, "priority", got.Payload.ServiceTier, "non-flex models keep the caller's tier")
	assert.Equal(t, `"u1"`, string(got.Payload.Extra["user"]))
}

func TestSearchModelStripsSampling(t *testing.T) {
	opts := defaultOptions()
	opts.SearchContextSize = "medium"

	req := &types.ChatRequest{
		Model:            "gpt-4o-search-preview",
		Messages:         []types.Message{userMsg("news")},
		Temperature:      types.Float64Ptr(0.3),
		TopP:             types.Float64Ptr(0.8),
		FrequencyPenalty: types.Float64Ptr(0.1),
		PresencePenalty:  types.Float64Ptr(0.2),
		MaxTokens:        intPtr(100),
	}

	got := HandleChatPayload(req, opts)
	require.Equal(t, types.KindSearch, got.Kind)
	p := got.Payload
	assert.Nil(t, p.Temperature)
	assert.Nil(t, p.TopP)
	assert.Nil(t, p.FrequencyPenalty)
	assert.Nil(t, p.PresencePenalty)
	require.NotNil(t, p.MaxTokens)
	assert.Equal(t, 100, *p.MaxTokens)
	require.NotNil(t, p.Stream)
	assert.True(t, *p.Stream)
	require.NotNil(t, p.WebSearchOptions)
	assert.Equal(t, "medium", p.WebSearchOptions.SearchContextSize)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"temperature", "top_p", "frequency_penalty", "presence_penalty", "enabledSearch", "apiMode"} {
		assert.NotContains(t, decoded, key)
	}

	// Input untouched.
	assert.NotNil(t, req.Temperature)
	assert.Nil(t, req.Stream)
}

func TestSearchModelWithoutContextSize(t *testing.T) {
	got := HandleChatPayload(&types.ChatRequest{Model: "gpt-4o-search-preview"}, defaultOptions())
	assert.Nil(t, got.Payload.WebSearchOptions)
}

func TestFlexTierQualification(t *testing.T) {
	opts := flexOptions()
	tests := []struct {
		model string
		want  bool
	}{
		{"gpt-5", true},
		{"gpt-5-mini", true},
		{"o3", true},
		{"o3-pro", true},
		{"o4-mini", true},
		{"o3-mini", false},
		{"o3-mini-high", false},
		{"o4", false},
		{"gpt-4o", false},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, opts.supportsFlexTier(tt.model))
		})
	}
}

func TestFlexTierOnChatPaths(t *testing.T) {
	cfg := config.DefaultAdapterConfig()
	cfg.ServiceTierFlex = true
	cfg.PrunePrefixes = nil
	opts := NewOptions(cfg)

	got := HandleChatPayload(&types.ChatRequest{Model: "gpt-5-chat"}, opts)
	require.Equal(t, types.KindStandard, got.Kind)
	assert.Equal(t, "flex", got.Payload.ServiceTier)

	got = HandleChatPayload(&types.ChatRequest{Model: "o3-mini-high"}, opts)
	require.Equal(t, types.KindStandard, got.Kind)
	assert.Empty(t, got.Payload.ServiceTier)

	got = HandleChatPayload(&types.ChatRequest{Model: "gpt-5-search-api"}, opts)
	require.Equal(t, types.KindSearch, got.Kind)
	assert.Equal(t, "flex", got.Payload.ServiceTier)

	cfg.ServiceTierFlex = false
	got = HandleChatPayload(&types.ChatRequest{Model: "gpt-5-chat"}, NewOptions(cfg))
	assert.Empty(t, got.Payload.ServiceTier)
}

func TestTransformedPayloadDoesNotResurrectFields(t *testing.T) {
	search := HandleChatPayload(&types.ChatRequest{
		Model:       "gpt-4o-search-preview",
		Temperature: types.Float64Ptr(0.7),
		TopP:        types.Float64Ptr(0.5),
	}, defaultOptions())
	require.Equal(t, types.KindSearch, search.Kind)

	raw, err := json.Marshal(search.Payload)
	require.NoError(t, err)
	var decoded types.ChatRequest
	require.NoError(t, json.Unmarshal(raw, &decoded))

	decoded.Model = "gpt-4.1"
	again := HandleChatPayload(&decoded, defaultOptions())
	require.Equal(t, types.KindStandard, again.Kind)
	assert.Nil(t, again.Payload.Temperature)
	assert.Nil(t, again.Payload.TopP)

	raw, err = json.Marshal(again.Payload)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.NotContains(t, out, "temperature")
	assert.NotContains(t, out, "top_p")
}

func TestHandleChatPayloadIsRepeatable(t *testing.T) {
	req := &types.ChatRequest{
		Model:    "kimi-k2",
		Messages: []types.Message{{Role: "assistant", Reasoning: &types.MessageReasoning{Content: "x"}}},
	}
	first, err := json.Marshal(HandleChatPayload(req, defaultOptions()).Payload)
	require.NoError(t, err)
	second, err := json.Marshal(HandleChatPayload(req, defaultOptions()).Payload)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
}

func intPtr(n int) *int {
	return &n
}
