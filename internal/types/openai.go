package types

// ModelType is the modality family of an upstream model.
type ModelType string

const (
	ModelTypeChat      ModelType = "chat"
	ModelTypeEmbedding ModelType = "embedding"
	ModelTypeImage     ModelType = "image"
	ModelTypeTTS       ModelType = "tts"
	ModelTypeSTT       ModelType = "stt"
	ModelTypeRealtime  ModelType = "realtime"
)

// ModelAbilities lists the capabilities inferred for a model id.
type ModelAbilities struct {
	FunctionCall bool `json:"functionCall,omitempty"`
	Vision       bool `json:"vision,omitempty"`
	Reasoning    bool `json:"reasoning,omitempty"`
	Search       bool `json:"search,omitempty"`
}

// ModelCard describes one upstream model after provider classification.
type ModelCard struct {
	ID                  string         `json:"id"`
	DisplayName         string         `json:"displayName"`
	Provider            string         `json:"provider"`
	Type                ModelType      `json:"type"`
	Abilities           ModelAbilities `json:"abilities"`
	ContextWindowTokens int            `json:"contextWindowTokens,omitempty"`
	Created             int64          `json:"created,omitempty"`
	Enabled             bool           `json:"enabled"`
}

// ModelList is the response for GET /v1/models.
type ModelList struct {
	Object string      `json:"object"`
	Data   []ModelCard `json:"data"`
}

// PreviewResponse is the dry-run view of a shaped payload.
type PreviewResponse struct {
	Kind     PayloadKind `json:"kind"`
	Endpoint string      `json:"endpoint"`
	Body     any         `json:"body"`
}

// ErrorResponse wraps an API error.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail holds the error message.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
}
