package runtime

import (
	"context"
	"fmt"

	"github.com/architeacher/svc-stream-bridge/internal/adapters"
	"github.com/architeacher/svc-stream-bridge/internal/adapters/repos"
	"github.com/architeacher/svc-stream-bridge/internal/config"
	"github.com/architeacher/svc-stream-bridge/internal/infrastructure"
	"github.com/architeacher/svc-stream-bridge/pkg/stream"
	"github.com/hashicorp/vault/api"
)

type (
	DependencyOption func(*Dependencies) error
)

func defaultOptions(ctx context.Context) []DependencyOption {
	return []DependencyOption{
		WithSecretStorage(),
		WithSecretStorageRepo(),
		WithConfigLoader(ctx),
		WithMetrics(ctx),
		WithStreamAdapter(),
	}
}

// WithSecretStorage initializes the Vault client using ENV config.
func WithSecretStorage() DependencyOption {
	return func(d *Dependencies) error {
		cfg := d.cfg.SecretStorage

		vaultConfig := api.DefaultConfig()
		vaultConfig.Address = cfg.Address
		vaultConfig.Timeout = cfg.Timeout

		if cfg.TLSSkipVerify {
			tlsConfig := &api.TLSConfig{
				Insecure: true,
			}
			if err := vaultConfig.ConfigureTLS(tlsConfig); err != nil {
				return fmt.Errorf("failed to configure TLS: %w", err)
			}
		}

		client, err := api.NewClient(vaultConfig)
		if err != nil {
			return fmt.Errorf("failed to create Vault client: %w", err)
		}

		d.Infra.SecretStorageClient = client

		return nil
	}
}

func WithSecretStorageRepo() DependencyOption {
	return func(d *Dependencies) error {
		d.Repos.SecretStorageRepo = repos.NewVaultRepository(d.Infra.SecretStorageClient)

		return nil
	}
}

func WithConfigLoader(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		d.configLoader = config.NewLoader(d.cfg, d.Repos.SecretStorageRepo, d.secretVersion)

		if !d.cfg.SecretStorage.Enabled {
			d.logger.Info().Msg("secret storage is disabled, skipping vault configuration loading")

			return nil
		}

		version, err := d.configLoader.Load(ctx, d.Repos.SecretStorageRepo, d.cfg)
		if err != nil {
			return fmt.Errorf("unable to load service configuration: %w", err)
		}

		d.secretVersion = version

		return nil
	}
}

func WithMetrics(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		metrics, err := infrastructure.NewMetrics(ctx, *d.cfg, d.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize metrics: %w", err)
		}

		d.Infra.Metrics = metrics

		return nil
	}
}

// WithStreamAdapter wires the partition mapper, the codec and the transport
// facade everything else publishes and fetches through.
func WithStreamAdapter() DependencyOption {
	return func(d *Dependencies) error {
		d.Mapper = adapters.NewHashMapper(d.cfg.Queue, d.cfg.Bridge.Partitions)

		codec := adapters.NewInstrumentedCodec(adapters.NewJSONCodec(), d.Infra.Metrics)

		streamConfig := stream.Config{
			Username: d.cfg.Queue.Username,
			Password: d.cfg.Queue.Password,
			Host:     d.cfg.Queue.Host,
			Port:     d.cfg.Queue.Port,
			Vhost:    d.cfg.Queue.VirtualHost,
		}

		d.Adapter = stream.NewAdapter(streamConfig, d.Mapper, codec,
			stream.WithAdapterLogger(infrastructure.StreamLogger(d.logger)),
			stream.WithSendTimeout(d.cfg.Bridge.ConfirmTimeout),
		)

		return nil
	}
}
