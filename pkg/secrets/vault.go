package secrets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/apperrors"
	"github.com/smartcourt/smartcourt-engine/pkg/config"
)

// Common errors
var (
	ErrNoVaultToken   = errors.New("no vault token provided")
	ErrNoVaultAddress = errors.New("no vault address provided")
)

// kvReader is the subset of the Vault KV v2 client used here.
type kvReader interface {
	Get(ctx context.Context, secretPath string) (*vault.KVSecret, error)
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

// VaultProvider reads secrets from a single KV v2 path. Every secret name is a
// key inside that path's data map. Hits are cached for cacheTTL.
type VaultProvider struct {
	kv       kvReader
	path     string
	cacheTTL time.Duration
	logger   *zap.Logger

	mu    sync.RWMutex
	cache map[string]cachedSecret
}

// NewVaultProvider creates a Vault-backed provider.
func NewVaultProvider(cfg *config.VaultConfig, logger *zap.Logger) (*VaultProvider, error) {
	if cfg.Address == "" {
		return nil, ErrNoVaultAddress
	}
	if cfg.Token == "" {
		return nil, ErrNoVaultToken
	}

	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address
	vaultConfig.Timeout = 10 * time.Second

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	return newVaultProvider(client.KVv2(cfg.Mount), cfg.Path, logger), nil
}

func newVaultProvider(kv kvReader, path string, logger *zap.Logger) *VaultProvider {
	return &VaultProvider{
		kv:       kv,
		path:     path,
		cacheTTL: 5 * time.Minute,
		logger:   logger.Named("vault"),
		cache:    make(map[string]cachedSecret),
	}
}

// GetSecret implements Provider.
func (p *VaultProvider) GetSecret(ctx context.Context, name string) (string, error) {
	p.mu.RLock()
	cached, found := p.cache[name]
	p.mu.RUnlock()
	if found && time.Now().Before(cached.expiresAt) {
		return cached.value, nil
	}

	secret, err := p.kv.Get(ctx, p.path)
	if err != nil {
		if errors.Is(err, vault.ErrSecretNotFound) {
			return "", apperrors.ErrSecretNotFound
		}
		p.logger.Error("Failed to read secret from Vault",
			zap.String("path", p.path),
			zap.Error(err))
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return "", apperrors.ErrSecretNotFound
	}

	value, ok := secret.Data[name].(string)
	if !ok || value == "" {
		return "", apperrors.ErrSecretNotFound
	}

	p.mu.Lock()
	p.cache[name] = cachedSecret{value: value, expiresAt: time.Now().Add(p.cacheTTL)}
	p.mu.Unlock()

	return value, nil
}
