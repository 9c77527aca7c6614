package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Provider kinds supported by the model registry.
const (
	ProviderOpenAICompat = "openai_compat"
	ProviderAnthropic    = "anthropic"
)

// Config holds all configuration for smartcourt-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys, AWS credentials) must only come from environment variables
// or the secret store.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8501"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	Database    DatabaseConfig    `yaml:"database"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Invocation  InvocationConfig  `yaml:"invocation"`
	Suggestions SuggestionsConfig `yaml:"suggestions"`
	Session     SessionConfig     `yaml:"session"`
	Vault       VaultConfig       `yaml:"vault"`
	Export      ExportConfig      `yaml:"export"`
	MCP         MCPConfig         `yaml:"mcp"`

	// Models is the closed model registry. Order is the default selection order.
	Models []ModelConfig `yaml:"models"`

	// Pricing maps a pricing key to per-million-token prices.
	Pricing map[string]Price `yaml:"pricing"`

	// KnowledgeBases lists the selectable knowledge bases. Order is display order.
	KnowledgeBases []KnowledgeBaseConfig `yaml:"knowledge_bases"`

	// Secrets are resolved from the environment (and optionally Vault), never YAML.
	Secrets SecretsConfig `yaml:"-"`
}

// DatabaseConfig holds SQLite configuration.
type DatabaseConfig struct {
	Path          string `yaml:"path" env:"DB_PATH" env-default:"data/court_ai.db"`
	MaxOpenConns  int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"4"`
	BusyTimeoutMs int    `yaml:"busy_timeout_ms" env:"DB_BUSY_TIMEOUT_MS" env-default:"5000"`
}

// DSN returns the go-sqlite3 data source name with foreign keys enabled.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=%d", c.Path, c.BusyTimeoutMs)
}

// RetrievalConfig configures the managed knowledge-base client.
type RetrievalConfig struct {
	Region string `yaml:"region" env:"AWS_REGION" env-default:"us-east-1"`
	TopK   int32  `yaml:"top_k" env:"RETRIEVAL_TOP_K" env-default:"5"`
}

// InvocationConfig configures answer generation.
type InvocationConfig struct {
	SystemPrompt   string  `yaml:"system_prompt" env:"SYSTEM_PROMPT" env-default:"You are a helpful assistant for Administrative Court procedures. Answer in Thai using only the provided context."`
	TimeoutSeconds int     `yaml:"timeout_seconds" env:"INVOCATION_TIMEOUT_SECONDS" env-default:"60"`
	MaxTokens      int     `yaml:"max_tokens" env:"INVOCATION_MAX_TOKENS" env-default:"2048"`
	PayloadModel   string  `yaml:"payload_model" env:"INVOCATION_PAYLOAD_MODEL" env-default:"/model"`
	CharsPerToken  float64 `yaml:"chars_per_token" env-default:"3.0"`
	CurrencyRate   float64 `yaml:"currency_rate" env:"CURRENCY_RATE" env-default:"36.0"`
	CurrencyCode   string  `yaml:"currency_code" env-default:"THB"`
}

// Timeout returns the per-call answer timeout.
func (c *InvocationConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SuggestionsConfig configures follow-up question generation.
type SuggestionsConfig struct {
	DefaultModel   string  `yaml:"default_model" env:"SUGGESTIONS_DEFAULT_MODEL" env-default:""`
	TimeoutSeconds int     `yaml:"timeout_seconds" env:"SUGGESTIONS_TIMEOUT_SECONDS" env-default:"20"`
	MaxTokens      int     `yaml:"max_tokens" env-default:"200"`
	Temperature    float64 `yaml:"temperature" env-default:"0.7"`
	ContextChars   int     `yaml:"context_chars" env-default:"500"`
}

// Timeout returns the suggestion call timeout.
func (c *SuggestionsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SessionConfig configures display-name sessions.
type SessionConfig struct {
	TimeoutMinutes int    `yaml:"timeout_minutes" env:"SESSION_TIMEOUT_MINUTES" env-default:"15"`
	CookieSecret   string `yaml:"-" env:"SESSION_SECRET" env-default:"smartcourt-dev-secret"` // Secret - not in YAML
	SecureCookie   bool   `yaml:"secure_cookie" env:"SESSION_SECURE_COOKIE" env-default:"false"`
}

// Timeout returns the inactivity timeout.
func (c *SessionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

// VaultConfig holds the optional HashiCorp Vault secret store settings.
type VaultConfig struct {
	Enabled bool   `yaml:"enabled" env:"VAULT_ENABLED" env-default:"false"`
	Address string `yaml:"address" env:"VAULT_ADDR" env-default:""`
	Token   string `yaml:"-" env:"VAULT_TOKEN"` // Secret - not in YAML
	Mount   string `yaml:"mount" env:"VAULT_MOUNT" env-default:"secret"`
	Path    string `yaml:"path" env:"VAULT_SECRETS_PATH" env-default:"smartcourt"`
}

// ExportConfig configures document exports.
type ExportConfig struct {
	// PDFFontPath points at a UTF-8 TTF font (e.g. a Thai font). Empty uses Helvetica.
	PDFFontPath string `yaml:"pdf_font_path" env:"EXPORT_PDF_FONT_PATH" env-default:""`
	Title       string `yaml:"title" env-default:"Smart Court AI - Conversation Export"`
}

// MCPConfig configures the MCP tool surface.
type MCPConfig struct {
	Enabled bool `yaml:"enabled" env:"MCP_ENABLED" env-default:"true"`
}

// ModelConfig is a single entry of the model registry.
type ModelConfig struct {
	Key          string `yaml:"key" json:"key"`
	DisplayName  string `yaml:"display_name" json:"display_name"`
	Provider     string `yaml:"provider" json:"provider"`
	Endpoint     string `yaml:"endpoint" json:"-"`
	PayloadModel string `yaml:"payload_model" json:"-"`
	PricingKey   string `yaml:"pricing_key" json:"-"`
	APIKeyName   string `yaml:"api_key_name" json:"-"`
	Icon         string `yaml:"icon" json:"icon"`
	Color        string `yaml:"color" json:"color"`
}

// EffectivePricingKey returns the pricing key, defaulting to the lowercased
// first word of the model key.
func (m *ModelConfig) EffectivePricingKey() string {
	if m.PricingKey != "" {
		return m.PricingKey
	}
	fields := strings.Fields(strings.ToLower(m.Key))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Price holds per-million-token prices in USD.
type Price struct {
	Input  float64 `yaml:"input" json:"input"`
	Output float64 `yaml:"output" json:"output"`
}

// KnowledgeBaseConfig maps a display label to a managed knowledge-base ID.
type KnowledgeBaseConfig struct {
	Label string `yaml:"label" json:"label"`
	ID    string `yaml:"id" json:"id"`
}

// SecretsConfig holds credentials. Env-only; the secret store fills gaps.
type SecretsConfig struct {
	AWSAccessKey    string `env:"AWS_ACCESS_KEY"`
	AWSSecretKey    string `env:"AWS_SECRET_KEY"`
	ThaiLLMAPIKey   string `env:"THAILLM_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
}

// Get returns a secret by its environment name.
func (s *SecretsConfig) Get(name string) string {
	switch name {
	case "AWS_ACCESS_KEY":
		return s.AWSAccessKey
	case "AWS_SECRET_KEY":
		return s.AWSSecretKey
	case "THAILLM_API_KEY":
		return s.ThaiLLMAPIKey
	case "ANTHROPIC_API_KEY":
		return s.AnthropicAPIKey
	}
	return ""
}

// Set stores a secret by its environment name. Unknown names are ignored.
func (s *SecretsConfig) Set(name, value string) {
	switch name {
	case "AWS_ACCESS_KEY":
		s.AWSAccessKey = value
	case "AWS_SECRET_KEY":
		s.AWSSecretKey = value
	case "THAILLM_API_KEY":
		s.ThaiLLMAPIKey = value
	case "ANTHROPIC_API_KEY":
		s.AnthropicAPIKey = value
	}
}

// SecretNames lists every secret the service knows how to resolve.
var SecretNames = []string{"AWS_ACCESS_KEY", "AWS_SECRET_KEY", "THAILLM_API_KEY", "ANTHROPIC_API_KEY"}

// RequiredSecretNames lists secrets without which the service refuses to start.
var RequiredSecretNames = []string{"AWS_ACCESS_KEY", "AWS_SECRET_KEY"}

// Load reads configuration from config.yaml with environment variable overrides.
// A .env file in the working directory is loaded first when present.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	return LoadFile("config.yaml", version)
}

// LoadFile is Load with an explicit config path.
func LoadFile(path, version string) (*Config, error) {
	// Missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// Validate checks the model registry and knowledge-base list.
// The registry is closed: everything the request path looks up by key
// is checked here, not at call time.
func (c *Config) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("model registry is empty")
	}

	seen := make(map[string]bool, len(c.Models))
	for i := range c.Models {
		m := &c.Models[i]
		if strings.TrimSpace(m.Key) == "" {
			return fmt.Errorf("models[%d]: key is required", i)
		}
		if seen[m.Key] {
			return fmt.Errorf("models[%d]: duplicate key %q", i, m.Key)
		}
		seen[m.Key] = true

		switch m.Provider {
		case "":
			m.Provider = ProviderOpenAICompat
		case ProviderOpenAICompat, ProviderAnthropic:
		default:
			return fmt.Errorf("model %q: unknown provider %q", m.Key, m.Provider)
		}

		if m.Provider == ProviderOpenAICompat && m.Endpoint == "" {
			return fmt.Errorf("model %q: endpoint is required", m.Key)
		}
		if m.DisplayName == "" {
			m.DisplayName = m.Key
		}
		if m.APIKeyName == "" {
			if m.Provider == ProviderAnthropic {
				m.APIKeyName = "ANTHROPIC_API_KEY"
			} else {
				m.APIKeyName = "THAILLM_API_KEY"
			}
		}
	}

	if c.Suggestions.DefaultModel != "" && !seen[c.Suggestions.DefaultModel] {
		return fmt.Errorf("suggestions.default_model %q is not in the model registry", c.Suggestions.DefaultModel)
	}

	labels := make(map[string]bool, len(c.KnowledgeBases))
	for i, kb := range c.KnowledgeBases {
		if kb.Label == "" {
			return fmt.Errorf("knowledge_bases[%d]: label is required", i)
		}
		if labels[kb.Label] {
			return fmt.Errorf("knowledge_bases[%d]: duplicate label %q", i, kb.Label)
		}
		labels[kb.Label] = true
	}

	if c.Invocation.CharsPerToken <= 0 {
		return fmt.Errorf("invocation.chars_per_token must be positive")
	}

	return nil
}

// Model looks up a registry entry by key.
func (c *Config) Model(key string) (ModelConfig, bool) {
	for _, m := range c.Models {
		if m.Key == key {
			return m, true
		}
	}
	return ModelConfig{}, false
}

// ModelKeys returns registry keys in registry order.
func (c *Config) ModelKeys() []string {
	keys := make([]string, len(c.Models))
	for i, m := range c.Models {
		keys[i] = m.Key
	}
	return keys
}

// PriceFor returns the price entry for a model, zero if none is configured.
func (c *Config) PriceFor(m ModelConfig) (Price, bool) {
	p, ok := c.Pricing[m.EffectivePricingKey()]
	return p, ok
}

// KnowledgeBaseID resolves a knowledge-base label to its ID.
// Unknown labels resolve to "", which retrieval treats as "no knowledge base".
func (c *Config) KnowledgeBaseID(label string) string {
	for _, kb := range c.KnowledgeBases {
		if kb.Label == label {
			return kb.ID
		}
	}
	return ""
}

// MissingSecrets returns the required secrets that are still empty.
func (c *Config) MissingSecrets() []string {
	var missing []string
	for _, name := range RequiredSecretNames {
		if c.Secrets.Get(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
