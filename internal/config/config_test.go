package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"EU5_PROVIDER", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY",
	"EU5_MODEL", "OPENAI_MODEL", "OPENAI_BASE_URL", "EU5_KNOWLEDGE_PATH", "TAVILY_API_KEY",
	"EU5_SEARCH_DEPTH", "OPENAI_TEMPERATURE", "OPENAI_MAX_COMPLETION_TOKENS",
	"EU5_MAX_HISTORY_MESSAGES", "EU5_MAX_TOOL_ITERATIONS", "EU5_KNOWLEDGE_CACHE_SIZE",
	"EU5_SEARCH_CACHE_SIZE", "EU5_LOG_LEVEL", "EU5_LOG_FILE",
}

// cleanEnv clears every variable Load reads so host settings cannot leak into tests.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, name := range configEnvVars {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func noDotEnv(t *testing.T) LoadOptions {
	return LoadOptions{DotEnvPath: filepath.Join(t.TempDir(), "missing.env")}
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := Load(noDotEnv(t))
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, DefaultOpenAIModel, cfg.Model)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultKnowledgePath, cfg.KnowledgePath)
	assert.Equal(t, DefaultTemperature, cfg.Temperature)
	assert.Equal(t, DefaultMaxCompletionTokens, cfg.MaxCompletionTokens)
	assert.Equal(t, DefaultMaxHistoryMessages, cfg.MaxHistoryMessages)
	assert.Equal(t, DefaultMaxToolIterations, cfg.MaxToolIterations)
	assert.Equal(t, DefaultKnowledgeCacheSize, cfg.KnowledgeCacheSize)
	assert.Equal(t, DefaultSearchCacheSize, cfg.SearchCacheSize)
	assert.Equal(t, DefaultSearchDepth, cfg.SearchDepth)
	assert.Empty(t, cfg.APIKey)
	assert.Empty(t, cfg.TavilyAPIKey)
}

func TestLoad_Environment(t *testing.T) {
	cleanEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test-1234567890")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("OPENAI_BASE_URL", "https://proxy.example/v1")
	t.Setenv("TAVILY_API_KEY", "tvly-abc")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")
	t.Setenv("OPENAI_MAX_COMPLETION_TOKENS", "2048")
	t.Setenv("EU5_MAX_HISTORY_MESSAGES", "12")

	cfg, err := Load(noDotEnv(t))
	require.NoError(t, err)

	assert.Equal(t, "sk-test-1234567890", cfg.APIKey)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "https://proxy.example/v1", cfg.BaseURL)
	assert.Equal(t, "tvly-abc", cfg.TavilyAPIKey)
	assert.Equal(t, 0.2, cfg.Temperature)
	assert.Equal(t, 2048, cfg.MaxCompletionTokens)
	assert.Equal(t, 12, cfg.MaxHistoryMessages)
}

func TestLoad_InvalidNumbersFallBackToDefaults(t *testing.T) {
	cleanEnv(t)
	t.Setenv("OPENAI_TEMPERATURE", "warm")
	t.Setenv("OPENAI_MAX_COMPLETION_TOKENS", "lots")

	cfg, err := Load(noDotEnv(t))
	require.NoError(t, err)

	assert.Equal(t, DefaultTemperature, cfg.Temperature)
	assert.Equal(t, DefaultMaxCompletionTokens, cfg.MaxCompletionTokens)
}

func TestLoad_DotEnvBelowEnvironment(t *testing.T) {
	cleanEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "OPENAI_API_KEY=sk-from-dotenv-000000\nOPENAI_MODEL=gpt-4.1\nTAVILY_API_KEY=tvly-dotenv\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	t.Setenv("OPENAI_MODEL", "gpt-5")

	cfg, err := Load(LoadOptions{DotEnvPath: path})
	require.NoError(t, err)

	assert.Equal(t, "sk-from-dotenv-000000", cfg.APIKey)
	assert.Equal(t, "gpt-5", cfg.Model, "environment wins over .env")
	assert.Equal(t, "tvly-dotenv", cfg.TavilyAPIKey)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	cleanEnv(t)
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("model", "", "")
	flags.String("provider", "", "")
	require.NoError(t, flags.Parse([]string{"--model", "gpt-4.1-mini"}))

	cfg, err := Load(LoadOptions{DotEnvPath: filepath.Join(t.TempDir(), "none"), Flags: flags})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1-mini", cfg.Model)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
}

func TestLoad_ProviderSelectsKeyAndModel(t *testing.T) {
	tests := []struct {
		provider string
		keyEnv   string
		model    string
	}{
		{provider: "anthropic", keyEnv: "ANTHROPIC_API_KEY", model: DefaultAnthropicModel},
		{provider: "gemini", keyEnv: "GOOGLE_API_KEY", model: DefaultGeminiModel},
		{provider: "openai", keyEnv: "OPENAI_API_KEY", model: DefaultOpenAIModel},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv("EU5_PROVIDER", strings.ToUpper(tt.provider))
			t.Setenv(tt.keyEnv, "key-for-"+tt.provider)

			cfg, err := Load(noDotEnv(t))
			require.NoError(t, err)
			assert.Equal(t, tt.provider, cfg.Provider)
			assert.Equal(t, "key-for-"+tt.provider, cfg.APIKey)
			assert.Equal(t, tt.model, cfg.Model)
		})
	}
}

func TestValidate(t *testing.T) {
	knowledgeDir := t.TempDir()

	valid := func() *Config {
		return &Config{
			Provider:           ProviderOpenAI,
			APIKey:             "sk-test",
			KnowledgePath:      knowledgeDir,
			MaxHistoryMessages: 40,
			MaxToolIterations:  10,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing api key", mutate: func(c *Config) { c.APIKey = "" }, wantErr: "OPENAI_API_KEY not set"},
		{name: "anthropic key hint", mutate: func(c *Config) { c.Provider = ProviderAnthropic; c.APIKey = "" }, wantErr: "ANTHROPIC_API_KEY"},
		{name: "unknown provider", mutate: func(c *Config) { c.Provider = "mistral" }, wantErr: "unknown provider"},
		{name: "missing knowledge", mutate: func(c *Config) { c.KnowledgePath = filepath.Join(knowledgeDir, "nope") }, wantErr: "knowledge base not found"},
		{name: "zero iterations", mutate: func(c *Config) { c.MaxToolIterations = 0 }, wantErr: "max tool iterations"},
		{name: "tiny history", mutate: func(c *Config) { c.MaxHistoryMessages = 1 }, wantErr: "max history messages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestModelParameterRules(t *testing.T) {
	assert.False(t, SupportsTemperature("gpt-5-mini"))
	assert.True(t, UsesMaxCompletionTokens("gpt-5-mini"))
	assert.True(t, SupportsTemperature("gpt-4o"))
	assert.False(t, UsesMaxCompletionTokens("gpt-4o"))
	assert.True(t, SupportsTemperature(""))
	assert.False(t, UsesMaxCompletionTokens(""))
}

func TestString_MasksSecrets(t *testing.T) {
	cfg := &Config{Provider: ProviderOpenAI, APIKey: "sk-proj-abcdefghijklmnop1234", Model: "gpt-5-mini"}
	out := cfg.String()

	assert.Contains(t, out, "sk-proj-ab...1234")
	assert.NotContains(t, out, "abcdefghijklmnop")
	assert.Contains(t, out, "NOT SET (web search disabled)")

	cfg.TavilyAPIKey = "tvly-secret"
	cfg.APIKey = ""
	out = cfg.String()
	assert.Contains(t, out, "api_key=NOT SET")
	assert.Contains(t, out, "tavily_api_key=SET")
	assert.NotContains(t, out, "tvly-secret")
}

func TestKnowledgeURL(t *testing.T) {
	assert.Equal(t, "mem://localhost/kb", KnowledgeURL("mem://localhost/kb"))

	url := KnowledgeURL("relative/kb")
	assert.True(t, strings.HasPrefix(url, "file://"))
	assert.True(t, strings.HasSuffix(url, "relative/kb"))
}
