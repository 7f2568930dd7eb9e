package secrets

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// SecretSource names where secrets are read from.
type SecretSource string

const (
	// SourceEnvironment reads secrets from environment variables.
	SourceEnvironment SecretSource = "environment"
	// SourceVault reads secrets from Azure Key Vault.
	SourceVault SecretSource = "vault"
	// SourceAuto picks environment for development and vault for everything else.
	SourceAuto SecretSource = "auto"
)

// Provider hands out secrets from the configured source. With the vault
// source an env var of the same purpose still wins via GetSecretOrEnv, so
// local overrides keep working in staging.
type Provider struct {
	source      SecretSource
	vaultClient *VaultClient
	logger      *zap.Logger
	environment string
}

type ProviderConfig struct {
	Source       SecretSource
	VaultName    string
	Environment  string
	CacheEnabled bool
	CacheTTL     time.Duration
}

func NewProvider(cfg *ProviderConfig, logger *zap.Logger) (*Provider, error) {
	source := cfg.Source
	if source == SourceAuto {
		switch cfg.Environment {
		case "development", "local", "":
			source = SourceEnvironment
		default:
			source = SourceVault
		}
		logger.Info("resolved secret source",
			zap.String("source", string(source)),
			zap.String("environment", cfg.Environment),
		)
	}

	p := &Provider{
		source:      source,
		logger:      logger,
		environment: cfg.Environment,
	}

	if source == SourceVault {
		if cfg.VaultName == "" {
			return nil, fmt.Errorf("vault name required when secret source is vault")
		}
		vc, err := NewVaultClient(&VaultConfig{
			VaultName:    cfg.VaultName,
			CacheEnabled: cfg.CacheEnabled,
			CacheTTL:     cfg.CacheTTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vault client: %w", err)
		}
		p.vaultClient = vc
	}

	return p, nil
}

// GetSecret resolves a secret by name. With the environment source the name
// is the environment variable; with vault it is the Key Vault secret name.
func (p *Provider) GetSecret(ctx context.Context, name string) (string, error) {
	switch p.source {
	case SourceEnvironment:
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
		return "", fmt.Errorf("environment variable %q not set", name)
	case SourceVault:
		if p.vaultClient == nil {
			return "", fmt.Errorf("vault client not initialized")
		}
		return p.vaultClient.GetSecret(ctx, name)
	default:
		return "", fmt.Errorf("unknown secret source: %s", p.source)
	}
}

// GetSecretOrEnv resolves a secret but lets an explicitly set environment
// variable override the configured source.
func (p *Provider) GetSecretOrEnv(ctx context.Context, name, envName string) (string, error) {
	if v := os.Getenv(envName); v != "" {
		return v, nil
	}
	return p.GetSecret(ctx, name)
}

// IsVaultEnabled reports whether secrets come from Azure Key Vault.
func (p *Provider) IsVaultEnabled() bool {
	return p.source == SourceVault
}
