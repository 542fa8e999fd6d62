// Package payload shapes normalized chat requests into the request bodies the
// OpenAI API expects for a given model family.
//
// Every function here is pure: inputs are never mutated and the result is a
// fresh value, so concurrent calls need no coordination.
package payload

import (
	"strings"

	"github.com/n0madic/go-oaiadapter/internal/config"
)

// Options is the static configuration of the adapter.
type Options struct {
	ReasoningContentPrefixes []string
	PrunePrefixes            []string
	FlexPrefixes             []string
	ResponsesModels          map[string]struct{}
	DisableStreamModels      map[string]struct{}
	SystemToUserModels       map[string]struct{}
	SearchContextSize        string
	ServiceTierFlex          bool
}

// NewOptions builds adapter options from the loaded configuration.
func NewOptions(cfg config.AdapterConfig) Options {
	return Options{
		ReasoningContentPrefixes: append([]string(nil), cfg.ReasoningContentPrefixes...),
		PrunePrefixes:            append([]string(nil), cfg.PrunePrefixes...),
		FlexPrefixes:             append([]string(nil), cfg.FlexPrefixes...),
		ResponsesModels:          toSet(cfg.ResponsesModels),
		DisableStreamModels:      toSet(cfg.DisableStreamModels),
		SystemToUserModels:       toSet(cfg.SystemToUserModels),
		SearchContextSize:        cfg.SearchContextSize,
		ServiceTierFlex:          cfg.ServiceTierFlex,
	}
}

// needsReasoningContent reports whether the model expects the assistant
// reasoning trace in a flat reasoning_content field.
func (o Options) needsReasoningContent(model string) bool {
	return hasAnyPrefix(model, o.ReasoningContentPrefixes)
}

func (o Options) isPruneModel(model string) bool {
	return hasAnyPrefix(model, o.PrunePrefixes)
}

func (o Options) isResponsesModel(model string) bool {
	_, ok := o.ResponsesModels[model]
	return ok
}

// supportsFlexTier reports whether the model can run on the flex service tier.
// o3-mini never can, even though it matches the o3 prefix.
func (o Options) supportsFlexTier(model string) bool {
	if strings.HasPrefix(model, "o3-mini") {
		return false
	}
	return hasAnyPrefix(model, o.FlexPrefixes)
}

// flexTier returns "flex" when the toggle is on and the model qualifies.
func (o Options) flexTier(model string) string {
	if o.ServiceTierFlex && o.supportsFlexTier(model) {
		return "flex"
	}
	return ""
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
