package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/config"
)

// ClientFactory creates model clients from registry entries.
type ClientFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewClientFactory creates a new factory.
func NewClientFactory(cfg *config.Config, logger *zap.Logger) *ClientFactory {
	return &ClientFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateForModel creates the client for one registry entry. Localhost
// endpoints are rewritten when running inside Docker.
func (f *ClientFactory) CreateForModel(model config.ModelConfig) (ChatClient, error) {
	payloadModel := model.PayloadModel
	if payloadModel == "" {
		payloadModel = f.cfg.Invocation.PayloadModel
	}

	clientCfg := &Config{
		Endpoint: config.ResolveEndpointForDocker(model.Endpoint),
		Model:    payloadModel,
		APIKey:   f.cfg.Secrets.Get(model.APIKeyName),
		ModelKey: model.Key,
	}

	switch model.Provider {
	case config.ProviderOpenAICompat:
		return NewClient(clientCfg, f.logger)
	case config.ProviderAnthropic:
		return NewAnthropicClient(clientCfg, f.logger)
	default:
		return nil, fmt.Errorf("model %q: unknown provider %q", model.Key, model.Provider)
	}
}

// CreateAll creates one client per registry entry, keyed by model key.
func (f *ClientFactory) CreateAll() (map[string]ChatClient, error) {
	clients := make(map[string]ChatClient, len(f.cfg.Models))
	for _, model := range f.cfg.Models {
		client, err := f.CreateForModel(model)
		if err != nil {
			return nil, fmt.Errorf("create client for %s: %w", model.Key, err)
		}
		clients[model.Key] = client
	}
	return clients, nil
}
