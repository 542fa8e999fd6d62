package types

// PayloadKind identifies which upstream request shape the adapter produced.
type PayloadKind string

const (
	KindStandard  PayloadKind = "standard"
	KindSearch    PayloadKind = "search"
	KindPruned    PayloadKind = "pruned"
	KindResponses PayloadKind = "responses"
)

// Upstream endpoint paths, relative to the API base URL.
const (
	EndpointChatCompletions = "chat/completions"
	EndpointResponses       = "responses"
)

// ProviderRequest is the outcome of classifying a chat request.
type ProviderRequest struct {
	Kind    PayloadKind
	Payload *ChatRequest
}

// Endpoint returns the upstream path the payload must be posted to.
func (p ProviderRequest) Endpoint() string {
	if p.Kind == KindResponses {
		return EndpointResponses
	}
	return EndpointChatCompletions
}
