package testhelpers

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/config"
	"github.com/smartcourt/smartcourt-engine/pkg/database"
)

// NewTestDB returns a migrated SQLite database in a per-test temp directory.
// The connection is closed when the test finishes.
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Path:          filepath.Join(t.TempDir(), "court_ai.db"),
		MaxOpenConns:  1,
		BusyTimeoutMs: 5000,
	}

	db, err := database.Open(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Failed to close test database: %v", err)
		}
	})
	return db
}

// TestConfig returns a validated configuration with a small model registry,
// pricing, and knowledge bases for service and handler tests.
func TestConfig(t *testing.T, endpoint string) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Port: "8501",
		Env:  "test",
		Invocation: config.InvocationConfig{
			SystemPrompt:   "SYSTEM",
			TimeoutSeconds: 5,
			MaxTokens:      2048,
			PayloadModel:   "/model",
			CharsPerToken:  3.0,
			CurrencyRate:   36.0,
			CurrencyCode:   "THB",
		},
		Suggestions: config.SuggestionsConfig{
			TimeoutSeconds: 5,
			MaxTokens:      200,
			Temperature:    0.7,
			ContextChars:   500,
		},
		Session:   config.SessionConfig{TimeoutMinutes: 15, CookieSecret: "test-secret"},
		Retrieval: config.RetrievalConfig{Region: "us-east-1", TopK: 5},
		Export:    config.ExportConfig{Title: "Smart Court AI - Conversation Export"},
		MCP:       config.MCPConfig{Enabled: true},
		Models: []config.ModelConfig{
			{Key: "Typhoon", Endpoint: endpoint},
			{Key: "OpenThaiGPT", Endpoint: endpoint},
			{Key: "Pathumma", Endpoint: endpoint},
		},
		Pricing: map[string]config.Price{
			"typhoon":     {Input: 1.0, Output: 2.0},
			"openthaigpt": {Input: 0.5, Output: 0.5},
		},
		KnowledgeBases: []config.KnowledgeBaseConfig{
			{Label: "Court Manual", ID: "KB123"},
			{Label: "None", ID: ""},
		},
	}
	cfg.Secrets.ThaiLLMAPIKey = "test-api-key"
	cfg.Secrets.AWSAccessKey = "ak"
	cfg.Secrets.AWSSecretKey = "sk"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Invalid test config: %v", err)
	}
	return cfg
}
