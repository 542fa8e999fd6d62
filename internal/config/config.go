package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultHost       = "127.0.0.1"
	DefaultPort       = 8000
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultMaxRetries = 2
	DefaultTimeout    = 10 * time.Minute
)

// Config is the full gateway configuration. It is loaded once at startup and
// passed down explicitly; nothing reads the environment per request.
type Config struct {
	Server   ServerConfig
	Adapter  AdapterConfig
	Upstream UpstreamConfig
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host        string
	Port        int
	Verbose     bool
	Debug       bool
	AccessToken string
	LogFile     string
}

// AdapterConfig holds the static tables and toggles of the payload adapter.
type AdapterConfig struct {
	SearchContextSize        string
	ServiceTierFlex          bool
	DebugChatCompletion      bool
	DebugResponses           bool
	ReasoningContentPrefixes []string
	PrunePrefixes            []string
	FlexPrefixes             []string
	ResponsesModels          []string
	DisableStreamModels      []string
	SystemToUserModels       []string
}

// UpstreamConfig holds the OpenAI endpoint and credentials.
type UpstreamConfig struct {
	BaseURL           string
	APIKey            string
	Organization      string
	Project           string
	MaxRetries        int
	Timeout           time.Duration
	OAuthTokenURL     string
	OAuthClientID     string
	OAuthClientSecret string
	OAuthScopes       []string
}

var (
	defaultReasoningContentPrefixes = []string{"deepseek", "kimi", "minimax", "doubao", "glm"}
	defaultPrunePrefixes            = []string{"o1", "o3", "o4", "codex", "computer-use", "gpt-5"}
	// Flex tier is only offered for these families.
	defaultFlexPrefixes    = []string{"gpt-5", "o3", "o4-mini"}
	defaultResponsesModels = []string{
		"o1-pro",
		"o1-pro-2025-03-19",
		"o3-deep-research",
		"o3-deep-research-2025-06-26",
		"o3-pro",
		"o3-pro-2025-06-10",
		"o4-mini-deep-research",
		"o4-mini-deep-research-2025-06-26",
		"codex-mini-latest",
		"computer-use-preview",
		"computer-use-preview-2025-03-11",
		"gpt-5-codex",
		"gpt-5-pro",
		"gpt-5-pro-2025-10-06",
	}
	defaultDisableStreamModels = []string{
		"o1",
		"o1-2024-12-17",
		"o1-pro",
		"o1-pro-2025-03-19",
		"o3-pro",
		"o3-pro-2025-06-10",
		"gpt-5-pro",
		"gpt-5-pro-2025-10-06",
	}
	defaultSystemToUserModels = []string{
		"o1-preview",
		"o1-preview-2024-09-12",
		"o1-mini",
		"o1-mini-2024-09-12",
	}
)

// envBindings maps configuration keys to the environment variables that set them.
var envBindings = map[string]string{
	"server.host":         "OAIADAPTER_HOST",
	"server.port":         "OAIADAPTER_PORT",
	"server.verbose":      "OAIADAPTER_VERBOSE",
	"server.debug":        "OAIADAPTER_DEBUG",
	"server.access_token": "OAIADAPTER_ACCESS_TOKEN",
	"server.log_file":     "OAIADAPTER_LOG_FILE",

	"adapter.search_context_size":        "OPENAI_SEARCH_CONTEXT_SIZE",
	"adapter.service_tier_flex":          "OPENAI_SERVICE_TIER_FLEX",
	"adapter.debug_chat_completion":      "DEBUG_OPENAI_CHAT_COMPLETION",
	"adapter.debug_responses":            "DEBUG_OPENAI_RESPONSES",
	"adapter.reasoning_content_prefixes": "OAIADAPTER_REASONING_CONTENT_PREFIXES",
	"adapter.prune_prefixes":             "OAIADAPTER_PRUNE_PREFIXES",
	"adapter.flex_prefixes":              "OAIADAPTER_FLEX_PREFIXES",
	"adapter.responses_models":           "OAIADAPTER_RESPONSES_MODELS",

	"upstream.base_url":            "OPENAI_BASE_URL",
	"upstream.api_key":             "OPENAI_API_KEY",
	"upstream.organization":        "OPENAI_ORGANIZATION",
	"upstream.project":             "OPENAI_PROJECT",
	"upstream.max_retries":         "OAIADAPTER_MAX_RETRIES",
	"upstream.timeout":             "OAIADAPTER_UPSTREAM_TIMEOUT",
	"upstream.oauth_token_url":     "OPENAI_OAUTH_TOKEN_URL",
	"upstream.oauth_client_id":     "OPENAI_OAUTH_CLIENT_ID",
	"upstream.oauth_client_secret": "OPENAI_OAUTH_CLIENT_SECRET",
	"upstream.oauth_scopes":        "OPENAI_OAUTH_SCOPES",
}

// Load reads the configuration from the environment and, when path is not
// empty, from a YAML/JSON/TOML config file. Environment variables win over
// the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        strings.TrimSpace(v.GetString("server.host")),
			Port:        v.GetInt("server.port"),
			Verbose:     truthy(v.GetString("server.verbose")),
			Debug:       truthy(v.GetString("server.debug")),
			AccessToken: strings.TrimSpace(v.GetString("server.access_token")),
			LogFile:     strings.TrimSpace(v.GetString("server.log_file")),
		},
		Adapter: AdapterConfig{
			SearchContextSize:        strings.ToLower(strings.TrimSpace(v.GetString("adapter.search_context_size"))),
			ServiceTierFlex:          truthy(v.GetString("adapter.service_tier_flex")),
			DebugChatCompletion:      truthy(v.GetString("adapter.debug_chat_completion")),
			DebugResponses:           truthy(v.GetString("adapter.debug_responses")),
			ReasoningContentPrefixes: stringList(v, "adapter.reasoning_content_prefixes"),
			PrunePrefixes:            stringList(v, "adapter.prune_prefixes"),
			FlexPrefixes:             stringList(v, "adapter.flex_prefixes"),
			ResponsesModels:          stringList(v, "adapter.responses_models"),
			DisableStreamModels:      stringList(v, "adapter.disable_stream_models"),
			SystemToUserModels:       stringList(v, "adapter.system_to_user_models"),
		},
		Upstream: UpstreamConfig{
			BaseURL:           strings.TrimRight(strings.TrimSpace(v.GetString("upstream.base_url")), "/"),
			APIKey:            strings.TrimSpace(v.GetString("upstream.api_key")),
			Organization:      strings.TrimSpace(v.GetString("upstream.organization")),
			Project:           strings.TrimSpace(v.GetString("upstream.project")),
			MaxRetries:        v.GetInt("upstream.max_retries"),
			Timeout:           v.GetDuration("upstream.timeout"),
			OAuthTokenURL:     strings.TrimSpace(v.GetString("upstream.oauth_token_url")),
			OAuthClientID:     strings.TrimSpace(v.GetString("upstream.oauth_client_id")),
			OAuthClientSecret: strings.TrimSpace(v.GetString("upstream.oauth_client_secret")),
			OAuthScopes:       stringList(v, "upstream.oauth_scopes"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that the adapter cannot fall back from.
func (c *Config) Validate() error {
	switch c.Adapter.SearchContextSize {
	case "", "low", "medium", "high":
	default:
		return fmt.Errorf("invalid search context size %q: want low, medium or high", c.Adapter.SearchContextSize)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Upstream.MaxRetries < 0 {
		return fmt.Errorf("invalid max retries %d", c.Upstream.MaxRetries)
	}
	if c.Upstream.OAuthTokenURL != "" && c.Upstream.OAuthClientID == "" {
		return fmt.Errorf("OPENAI_OAUTH_CLIENT_ID is required when OPENAI_OAUTH_TOKEN_URL is set")
	}
	return nil
}

// UsesOAuth reports whether upstream credentials come from the client
// credentials grant instead of a static API key.
func (c UpstreamConfig) UsesOAuth() bool {
	return c.OAuthTokenURL != ""
}

// DefaultAdapterConfig returns the adapter tables with every toggle off.
func DefaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		ReasoningContentPrefixes: append([]string(nil), defaultReasoningContentPrefixes...),
		PrunePrefixes:            append([]string(nil), defaultPrunePrefixes...),
		FlexPrefixes:             append([]string(nil), defaultFlexPrefixes...),
		ResponsesModels:          append([]string(nil), defaultResponsesModels...),
		DisableStreamModels:      append([]string(nil), defaultDisableStreamModels...),
		SystemToUserModels:       append([]string(nil), defaultSystemToUserModels...),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("adapter.reasoning_content_prefixes", defaultReasoningContentPrefixes)
	v.SetDefault("adapter.prune_prefixes", defaultPrunePrefixes)
	v.SetDefault("adapter.flex_prefixes", defaultFlexPrefixes)
	v.SetDefault("adapter.responses_models", defaultResponsesModels)
	v.SetDefault("adapter.disable_stream_models", defaultDisableStreamModels)
	v.SetDefault("adapter.system_to_user_models", defaultSystemToUserModels)
	v.SetDefault("upstream.base_url", DefaultBaseURL)
	v.SetDefault("upstream.max_retries", DefaultMaxRetries)
	v.SetDefault("upstream.timeout", DefaultTimeout)
}

// stringList reads a list value. Lists come either from a config file as a
// sequence or from the environment as a comma-separated string.
func stringList(v *viper.Viper, key string) []string {
	var raw []string
	switch val := v.Get(key).(type) {
	case string:
		raw = strings.Split(val, ",")
	case []string:
		raw = val
	case []any:
		for _, item := range val {
			raw = append(raw, fmt.Sprint(item))
		}
	default:
		raw = v.GetStringSlice(key)
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func truthy(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
