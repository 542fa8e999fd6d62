package models

import (
	"sort"
	"strings"

	"github.com/n0madic/go-oaiadapter/internal/types"
)

// RemoteModel is a model entry as returned by the upstream models endpoint.
type RemoteModel struct {
	ID      string
	Created int64
	OwnedBy string
}

type providerRule struct {
	provider string
	prefixes []string
	keywords []string
}

// providerRules are checked in order; the first match wins.
var providerRules = []providerRule{
	{provider: "anthropic", keywords: []string{"claude"}},
	{provider: "google", keywords: []string{"gemini", "gemma", "imagen"}},
	{provider: "deepseek", keywords: []string{"deepseek"}},
	{provider: "qwen", keywords: []string{"qwen", "qwq", "qvq"}},
	{provider: "moonshot", keywords: []string{"kimi", "moonshot"}},
	{provider: "zhipu", keywords: []string{"glm"}},
	{provider: "minimax", keywords: []string{"minimax", "abab"}},
	{provider: "volcengine", keywords: []string{"doubao"}},
	{provider: "xai", keywords: []string{"grok"}},
	{provider: "meta", keywords: []string{"llama"}},
	{provider: "mistral", keywords: []string{"mistral", "mixtral", "codestral", "pixtral", "ministral"}},
	{
		provider: "openai",
		prefixes: []string{"o1", "o3", "o4"},
		keywords: []string{"gpt", "chatgpt", "dall-e", "whisper", "tts", "text-embedding", "codex", "computer-use", "davinci", "babbage", "omni-moderation"},
	},
}

var (
	reasoningPrefixes  = []string{"o1", "o3", "o4", "codex", "computer-use", "gpt-5"}
	reasoningKeywords  = []string{"thinking", "reasoner", "-r1", "qwq"}
	visionKeywords     = []string{"gpt-4o", "gpt-4.1", "gpt-5", "vision", "-vl", "gemini", "claude-3", "claude-sonnet", "claude-opus", "pixtral"}
	visionPrefixes     = []string{"o3", "o4"}
	searchKeywords     = []string{"-search-", "search-preview", "search-api", "deep-research"}
	noToolCallKeywords = []string{"-search-", "search-preview", "search-api", "audio", "chatgpt-4o"}
	noToolCallPrefixes = []string{"o1-mini", "o1-preview"}
)

// contextWindows holds known context windows keyed by model id prefix. The
// longest matching prefix wins.
var contextWindows = map[string]int{
	"gpt-3.5-turbo":        16385,
	"gpt-4":                8192,
	"gpt-4-turbo":          128000,
	"gpt-4o":               128000,
	"gpt-4.1":              1047576,
	"gpt-5":                400000,
	"gpt-5-chat":           128000,
	"o1":                   200000,
	"o1-mini":              128000,
	"o1-preview":           128000,
	"o3":                   200000,
	"o4-mini":              200000,
	"codex-mini":           200000,
	"computer-use-preview": 8192,
	"deepseek-chat":        65536,
	"deepseek-reasoner":    65536,
}

// Classify converts a raw model list into model cards annotated with the
// provider family, the model type and its abilities. Ids that match no known
// provider are attributed to defaultProvider. The result is sorted by id.
func Classify(list []RemoteModel, defaultProvider string) []types.ModelCard {
	cards := make([]types.ModelCard, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, m := range list {
		id := strings.TrimSpace(m.ID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		lower := strings.ToLower(id)
		modelType := detectType(lower)
		card := types.ModelCard{
			ID:                  id,
			DisplayName:         id,
			Provider:            detectProvider(lower, defaultProvider),
			Type:                modelType,
			ContextWindowTokens: contextWindow(lower),
			Created:             m.Created,
			Enabled:             modelType == types.ModelTypeChat,
		}
		if modelType == types.ModelTypeChat {
			card.Abilities = detectAbilities(lower)
		}
		cards = append(cards, card)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return cards
}

func detectProvider(id, fallback string) string {
	for _, rule := range providerRules {
		if hasAnyPrefix(id, rule.prefixes) || containsAny(id, rule.keywords) {
			return rule.provider
		}
	}
	return fallback
}

func detectType(id string) types.ModelType {
	switch {
	case strings.Contains(id, "embedding"):
		return types.ModelTypeEmbedding
	case containsAny(id, []string{"dall-e", "gpt-image", "imagen"}):
		return types.ModelTypeImage
	case containsAny(id, []string{"whisper", "transcribe"}):
		return types.ModelTypeSTT
	case strings.Contains(id, "tts"):
		return types.ModelTypeTTS
	case strings.Contains(id, "realtime"):
		return types.ModelTypeRealtime
	}
	return types.ModelTypeChat
}

func detectAbilities(id string) types.ModelAbilities {
	return types.ModelAbilities{
		FunctionCall: !containsAny(id, noToolCallKeywords) && !hasAnyPrefix(id, noToolCallPrefixes),
		Vision:       containsAny(id, visionKeywords) || (hasAnyPrefix(id, visionPrefixes) && !strings.HasPrefix(id, "o3-mini")),
		Reasoning:    hasAnyPrefix(id, reasoningPrefixes) || containsAny(id, reasoningKeywords),
		Search:       containsAny(id, searchKeywords),
	}
}

func contextWindow(id string) int {
	best, size := "", 0
	for prefix, tokens := range contextWindows {
		if strings.HasPrefix(id, prefix) && len(prefix) > len(best) {
			best, size = prefix, tokens
		}
	}
	return size
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
