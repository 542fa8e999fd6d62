package models

import (
	"testing"

	"github.com/n0madic/go-oaiadapter/internal/types"
)

func classifyOne(t *testing.T, id string) types.ModelCard {
	t.Helper()
	cards := Classify([]RemoteModel{{ID: id}}, "openai")
	if len(cards) != 1 {
		t.Fatalf("Classify(%q) returned %d cards", id, len(cards))
	}
	return cards[0]
}

func TestClassifyProvider(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"gpt-4o", "openai"},
		{"o3-mini", "openai"},
		{"claude-sonnet-4-5", "anthropic"},
		{"gemini-2.5-pro", "google"},
		{"deepseek-reasoner", "deepseek"},
		{"qwen3-235b", "qwen"},
		{"kimi-k2", "moonshot"},
		{"glm-4.5", "zhipu"},
		{"MiniMax-M1", "minimax"},
		{"doubao-seed-1.6", "volcengine"},
		{"grok-4", "xai"},
		{"llama-3.3-70b", "meta"},
		{"mistral-large-latest", "mistral"},
		{"some-custom-model", "openai"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := classifyOne(t, tt.id).Provider; got != tt.want {
				t.Errorf("provider for %q = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestClassifyDefaultProvider(t *testing.T) {
	cards := Classify([]RemoteModel{{ID: "my-finetune"}}, "azure")
	if cards[0].Provider != "azure" {
		t.Errorf("expected azure, got %q", cards[0].Provider)
	}
}

func TestClassifyType(t *testing.T) {
	tests := []struct {
		id   string
		want types.ModelType
	}{
		{"gpt-4o", types.ModelTypeChat},
		{"text-embedding-3-small", types.ModelTypeEmbedding},
		{"dall-e-3", types.ModelTypeImage},
		{"gpt-image-1", types.ModelTypeImage},
		{"tts-1-hd", types.ModelTypeTTS},
		{"gpt-4o-mini-tts", types.ModelTypeTTS},
		{"whisper-1", types.ModelTypeSTT},
		{"gpt-4o-transcribe", types.ModelTypeSTT},
		{"gpt-4o-realtime-preview", types.ModelTypeRealtime},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			card := classifyOne(t, tt.id)
			if card.Type != tt.want {
				t.Errorf("type for %q = %q, want %q", tt.id, card.Type, tt.want)
			}
			if card.Enabled != (tt.want == types.ModelTypeChat) {
				t.Errorf("enabled for %q = %v", tt.id, card.Enabled)
			}
		})
	}
}

func TestClassifyAbilities(t *testing.T) {
	tests := []struct {
		id   string
		want types.ModelAbilities
	}{
		{"gpt-4o", types.ModelAbilities{FunctionCall: true, Vision: true}},
		{"gpt-4o-search-preview", types.ModelAbilities{Vision: true, Search: true}},
		{"gpt-3.5-turbo", types.ModelAbilities{FunctionCall: true}},
		{"o1-mini", types.ModelAbilities{Reasoning: true}},
		{"o3-mini", types.ModelAbilities{FunctionCall: true, Reasoning: true}},
		{"o3", types.ModelAbilities{FunctionCall: true, Vision: true, Reasoning: true}},
		{"o3-deep-research", types.ModelAbilities{FunctionCall: true, Vision: true, Reasoning: true, Search: true}},
		{"gpt-5-mini", types.ModelAbilities{FunctionCall: true, Vision: true, Reasoning: true}},
		{"deepseek-reasoner", types.ModelAbilities{FunctionCall: true, Reasoning: true}},
		{"qwen2.5-vl-72b", types.ModelAbilities{FunctionCall: true, Vision: true}},
		{"gpt-4o-audio-preview", types.ModelAbilities{Vision: true}},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := classifyOne(t, tt.id).Abilities; got != tt.want {
				t.Errorf("abilities for %q = %+v, want %+v", tt.id, got, tt.want)
			}
		})
	}
}

func TestClassifyContextWindow(t *testing.T) {
	tests := []struct {
		id   string
		want int
	}{
		{"gpt-4o-mini", 128000},
		{"gpt-4.1-nano", 1047576},
		{"gpt-5-chat-latest", 128000},
		{"gpt-5", 400000},
		{"o1-mini-2024-09-12", 128000},
		{"o1", 200000},
		{"unknown-model", 0},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := classifyOne(t, tt.id).ContextWindowTokens; got != tt.want {
				t.Errorf("context window for %q = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestClassifySortsAndDeduplicates(t *testing.T) {
	cards := Classify([]RemoteModel{
		{ID: "o3"},
		{ID: "gpt-4o", Created: 42},
		{ID: ""},
		{ID: "gpt-4o"},
		{ID: "claude-3-haiku"},
	}, "openai")

	if len(cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(cards))
	}
	want := []string{"claude-3-haiku", "gpt-4o", "o3"}
	for i, id := range want {
		if cards[i].ID != id {
			t.Errorf("cards[%d] = %q, want %q", i, cards[i].ID, id)
		}
	}
	if cards[1].Created != 42 {
		t.Errorf("expected first occurrence to win, got created=%d", cards[1].Created)
	}
}
