// Package config loads the advisor configuration from flags, environment and .env files.
// Values are resolved with the precedence: CLI flag > environment > .env file > default.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/viant/afs"
	afsurl "github.com/viant/afs/url"
)

// Supported LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Defaults applied when neither flags, environment nor .env provide a value.
const (
	DefaultProvider            = ProviderOpenAI
	DefaultOpenAIModel         = "gpt-5-mini"
	DefaultAnthropicModel      = "claude-sonnet-4-20250514"
	DefaultGeminiModel         = "gemini-2.5-flash"
	DefaultBaseURL             = "https://api.openai.com/v1"
	DefaultKnowledgePath       = "knowledge"
	DefaultSearchDepth         = "basic"
	DefaultTemperature         = 0.7
	DefaultMaxCompletionTokens = 4096
	DefaultMaxHistoryMessages  = 40
	DefaultMaxToolIterations   = 10
	DefaultKnowledgeCacheSize  = 256
	DefaultSearchCacheSize     = 1024
	DefaultDotEnvFile          = ".env"
)

// Config holds every setting the advisor needs. It is built once by Load and passed
// explicitly to the components that need it.
type Config struct {
	Provider            string
	APIKey              string
	Model               string
	BaseURL             string
	KnowledgePath       string
	TavilyAPIKey        string
	SearchDepth         string
	Temperature         float64
	MaxCompletionTokens int
	MaxHistoryMessages  int
	MaxToolIterations   int
	KnowledgeCacheSize  int
	SearchCacheSize     int
	LogLevel            string
	LogFile             string
}

// LoadOptions controls where Load looks for values.
type LoadOptions struct {
	// DotEnvPath is the .env file to read. Empty means ".env" in the working directory.
	// A missing file is not an error.
	DotEnvPath string
	// Flags are bound by name: provider, model, knowledge, log-level, log-file.
	Flags *pflag.FlagSet
}

type binding struct {
	key  string
	envs []string
	flag string
}

var bindings = []binding{
	{key: "provider", envs: []string{"EU5_PROVIDER"}, flag: "provider"},
	{key: "openai_api_key", envs: []string{"OPENAI_API_KEY"}},
	{key: "anthropic_api_key", envs: []string{"ANTHROPIC_API_KEY"}},
	{key: "google_api_key", envs: []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}},
	{key: "model", envs: []string{"EU5_MODEL", "OPENAI_MODEL"}, flag: "model"},
	{key: "base_url", envs: []string{"OPENAI_BASE_URL"}},
	{key: "knowledge_path", envs: []string{"EU5_KNOWLEDGE_PATH"}, flag: "knowledge"},
	{key: "tavily_api_key", envs: []string{"TAVILY_API_KEY"}},
	{key: "search_depth", envs: []string{"EU5_SEARCH_DEPTH"}},
	{key: "temperature", envs: []string{"OPENAI_TEMPERATURE"}},
	{key: "max_completion_tokens", envs: []string{"OPENAI_MAX_COMPLETION_TOKENS"}},
	{key: "max_history_messages", envs: []string{"EU5_MAX_HISTORY_MESSAGES"}},
	{key: "max_tool_iterations", envs: []string{"EU5_MAX_TOOL_ITERATIONS"}},
	{key: "knowledge_cache_size", envs: []string{"EU5_KNOWLEDGE_CACHE_SIZE"}},
	{key: "search_cache_size", envs: []string{"EU5_SEARCH_CACHE_SIZE"}},
	{key: "log_level", envs: []string{"EU5_LOG_LEVEL"}, flag: "log-level"},
	{key: "log_file", envs: []string{"EU5_LOG_FILE"}, flag: "log-file"},
}

// Load resolves the configuration. It only fails on an unreadable or malformed .env
// file or a flag binding error; missing values are reported by Validate.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	dotEnv, err := readDotEnv(opts.DotEnvPath)
	if err != nil {
		return nil, err
	}

	for _, b := range bindings {
		if err := v.BindEnv(append([]string{b.key}, b.envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", b.key, err)
		}
		for _, env := range b.envs {
			if value, ok := dotEnv[env]; ok {
				v.SetDefault(b.key, value)
				break
			}
		}
		if b.flag != "" && opts.Flags != nil {
			if flag := opts.Flags.Lookup(b.flag); flag != nil {
				if err := v.BindPFlag(b.key, flag); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", b.flag, err)
				}
			}
		}
	}

	provider := strings.ToLower(strings.TrimSpace(v.GetString("provider")))
	if provider == "" {
		provider = DefaultProvider
	}

	cfg := &Config{
		Provider:            provider,
		Model:               strings.TrimSpace(v.GetString("model")),
		BaseURL:             stringOr(v.GetString("base_url"), DefaultBaseURL),
		KnowledgePath:       stringOr(v.GetString("knowledge_path"), DefaultKnowledgePath),
		TavilyAPIKey:        strings.TrimSpace(v.GetString("tavily_api_key")),
		SearchDepth:         stringOr(v.GetString("search_depth"), DefaultSearchDepth),
		Temperature:         parseFloat(v.GetString("temperature"), DefaultTemperature),
		MaxCompletionTokens: parseInt(v.GetString("max_completion_tokens"), DefaultMaxCompletionTokens),
		MaxHistoryMessages:  parseInt(v.GetString("max_history_messages"), DefaultMaxHistoryMessages),
		MaxToolIterations:   parseInt(v.GetString("max_tool_iterations"), DefaultMaxToolIterations),
		KnowledgeCacheSize:  parseInt(v.GetString("knowledge_cache_size"), DefaultKnowledgeCacheSize),
		SearchCacheSize:     parseInt(v.GetString("search_cache_size"), DefaultSearchCacheSize),
		LogLevel:            v.GetString("log_level"),
		LogFile:             v.GetString("log_file"),
	}

	switch provider {
	case ProviderAnthropic:
		cfg.APIKey = v.GetString("anthropic_api_key")
		cfg.Model = stringOr(cfg.Model, DefaultAnthropicModel)
	case ProviderGemini:
		cfg.APIKey = v.GetString("google_api_key")
		cfg.Model = stringOr(cfg.Model, DefaultGeminiModel)
	default:
		cfg.APIKey = v.GetString("openai_api_key")
		cfg.Model = stringOr(cfg.Model, DefaultOpenAIModel)
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)

	return cfg, nil
}

func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		path = DefaultDotEnvFile
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse .env file %s: %w", path, err)
	}
	return values, nil
}

// Validate checks that the configuration can drive a conversation.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("unknown provider %q (expected %s, %s or %s)",
			c.Provider, ProviderOpenAI, ProviderAnthropic, ProviderGemini)
	}

	if c.APIKey == "" {
		env := c.apiKeyEnv()
		return fmt.Errorf("%s not set. Please set it via:\n"+
			"  export %s='your-key-here'\n"+
			"Or create a .env file with:\n"+
			"  %s=your-key-here", env, env, env)
	}

	if c.MaxToolIterations < 1 {
		return fmt.Errorf("max tool iterations must be at least 1, got %d", c.MaxToolIterations)
	}
	if c.MaxHistoryMessages < 2 {
		return fmt.Errorf("max history messages must be at least 2, got %d", c.MaxHistoryMessages)
	}

	exists, err := afs.New().Exists(context.Background(), KnowledgeURL(c.KnowledgePath))
	if err != nil || !exists {
		return fmt.Errorf("knowledge base not found at: %s\n"+
			"Set EU5_KNOWLEDGE_PATH to correct location", c.KnowledgePath)
	}

	return nil
}

func (c *Config) apiKeyEnv() string {
	switch c.Provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderGemini:
		return "GOOGLE_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// KnowledgeURL turns a plain path into a file:// URL; URLs with a scheme are kept.
func KnowledgeURL(location string) string {
	if afsurl.Scheme(location, "") != "" {
		return location
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		abs = filepath.Clean(location)
	}
	return "file://" + filepath.ToSlash(abs)
}

// SupportsTemperature reports whether the model accepts a temperature parameter.
// gpt-5 models only accept the default temperature.
func SupportsTemperature(model string) bool {
	return !strings.Contains(model, "gpt-5")
}

// UsesMaxCompletionTokens reports whether the model expects max_completion_tokens
// instead of max_tokens.
func UsesMaxCompletionTokens(model string) bool {
	return strings.Contains(model, "gpt-5")
}

// String renders the configuration for display with secrets masked.
func (c *Config) String() string {
	tavily := "NOT SET (web search disabled)"
	if c.TavilyAPIKey != "" {
		tavily = "SET"
	}
	var b strings.Builder
	b.WriteString("Config(\n")
	fmt.Fprintf(&b, "  provider=%s\n", c.Provider)
	fmt.Fprintf(&b, "  model=%s\n", c.Model)
	fmt.Fprintf(&b, "  api_key=%s\n", MaskKey(c.APIKey))
	if c.Provider == ProviderOpenAI {
		fmt.Fprintf(&b, "  base_url=%s\n", c.BaseURL)
	}
	fmt.Fprintf(&b, "  knowledge_path=%s\n", c.KnowledgePath)
	fmt.Fprintf(&b, "  tavily_api_key=%s\n", tavily)
	fmt.Fprintf(&b, "  temperature=%g\n", c.Temperature)
	fmt.Fprintf(&b, "  max_completion_tokens=%d\n", c.MaxCompletionTokens)
	fmt.Fprintf(&b, "  max_history_messages=%d\n", c.MaxHistoryMessages)
	fmt.Fprintf(&b, "  max_tool_iterations=%d\n", c.MaxToolIterations)
	b.WriteString(")")
	return b.String()
}

// MaskKey keeps the first 10 and last 4 characters of a key.
func MaskKey(key string) string {
	if key == "" {
		return "NOT SET"
	}
	if len(key) <= 14 {
		return strings.Repeat("*", len(key))
	}
	return key[:10] + "..." + key[len(key)-4:]
}

func stringOr(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func parseFloat(value string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}
