// Package secrets resolves credentials from the environment and an optional
// HashiCorp Vault KV store.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/apperrors"
	"github.com/smartcourt/smartcourt-engine/pkg/config"
)

// Provider looks up a secret by name.
// Implementations return apperrors.ErrSecretNotFound when the name is absent.
type Provider interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// EnvProvider reads secrets from environment variables.
type EnvProvider struct{}

// GetSecret implements Provider.
func (EnvProvider) GetSecret(_ context.Context, name string) (string, error) {
	envKey := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
	if value := os.Getenv(envKey); value != "" {
		return value, nil
	}
	return "", apperrors.ErrSecretNotFound
}

// Chain tries each provider in order and returns the first hit.
type Chain []Provider

// GetSecret implements Provider.
func (c Chain) GetSecret(ctx context.Context, name string) (string, error) {
	for _, p := range c {
		value, err := p.GetSecret(ctx, name)
		if err == nil && value != "" {
			return value, nil
		}
		if err != nil && !errors.Is(err, apperrors.ErrSecretNotFound) {
			return "", err
		}
	}
	return "", apperrors.ErrSecretNotFound
}

// NewProvider builds the provider chain for the configuration: environment
// first, then Vault when enabled.
func NewProvider(cfg *config.VaultConfig, logger *zap.Logger) (Provider, error) {
	chain := Chain{EnvProvider{}}
	if !cfg.Enabled {
		return chain, nil
	}

	vault, err := NewVaultProvider(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create vault provider: %w", err)
	}
	return append(chain, vault), nil
}

// Resolve fills any empty secret on cfg from the provider and fails fast when
// a required secret is still missing afterwards.
func Resolve(ctx context.Context, cfg *config.Config, provider Provider, logger *zap.Logger) error {
	for _, name := range config.SecretNames {
		if cfg.Secrets.Get(name) != "" {
			continue
		}
		value, err := provider.GetSecret(ctx, name)
		if err != nil {
			if errors.Is(err, apperrors.ErrSecretNotFound) {
				continue
			}
			return fmt.Errorf("resolve secret %s: %w", name, err)
		}
		cfg.Secrets.Set(name, value)
		logger.Debug("Secret resolved from store", zap.String("name", name))
	}

	if missing := cfg.MissingSecrets(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrMissingSecrets, strings.Join(missing, ", "))
	}
	return nil
}
