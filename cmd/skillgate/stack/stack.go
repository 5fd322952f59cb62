// Package stack assembles the provisioning pipeline and its backends from a
// resolved configuration. It is shared by the serve and create commands.
package stack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/papercomputeco/skillgate/pkg/config"
	"github.com/papercomputeco/skillgate/pkg/dotdir"
	"github.com/papercomputeco/skillgate/pkg/eventstream"
	"github.com/papercomputeco/skillgate/pkg/eventstream/kafka"
	"github.com/papercomputeco/skillgate/pkg/eventstream/nop"
	"github.com/papercomputeco/skillgate/pkg/eventstream/worker"
	"github.com/papercomputeco/skillgate/pkg/policy"
	"github.com/papercomputeco/skillgate/pkg/provision"
	"github.com/papercomputeco/skillgate/pkg/registry"
	registryutils "github.com/papercomputeco/skillgate/pkg/registry/utils"
	"github.com/papercomputeco/skillgate/pkg/validation"
	"github.com/papercomputeco/skillgate/pkg/vault"
	vaultutils "github.com/papercomputeco/skillgate/pkg/vault/utils"
)

const (
	defaultVaultDir   = "vault"
	defaultSQLiteFile = "skills.db"
)

// Stack is a ready provisioning pipeline plus the backends it owns.
type Stack struct {
	Pipeline  *provision.Pipeline
	Gate      *validation.Gate
	Vault     vault.Store
	Registry  registry.Registry
	Publisher eventstream.Publisher
}

// NewGate builds the validation gate from the configured policy file.
func NewGate(cfg *config.Config) (*validation.Gate, error) {
	denylist, err := policy.LoadFile(cfg.Policy.File)
	if err != nil {
		return nil, fmt.Errorf("loading policy: %w", err)
	}
	return validation.NewGate(policy.NewEngine(denylist, nil)), nil
}

// Build creates the gate, vault, registry and event publisher described by
// cfg and wires them into a Pipeline. configDir overrides the .skillgate/
// directory used for local vault and registry files.
func Build(ctx context.Context, cfg *config.Config, configDir string, log *slog.Logger) (*Stack, error) {
	timeout, err := cfg.Pipeline.Timeout()
	if err != nil {
		return nil, err
	}

	gate, err := NewGate(cfg)
	if err != nil {
		return nil, err
	}

	s := &Stack{Gate: gate}

	s.Vault, err = newVault(ctx, cfg, configDir, timeout, log)
	if err != nil {
		return nil, err
	}

	s.Registry, err = newRegistry(ctx, cfg, configDir, timeout, log)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	s.Publisher, err = newPublisher(cfg, log)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	s.Pipeline = provision.New(provision.Config{
		CallTimeout: timeout,
		Publisher:   s.Publisher,
	}, gate, s.Vault, s.Registry, log)

	return s, nil
}

// Reader returns the registry as a registry.Reader when the backend supports
// lookups, or nil.
func (s *Stack) Reader() registry.Reader {
	if r, ok := s.Registry.(registry.Reader); ok {
		return r
	}
	return nil
}

// Close releases every backend.
func (s *Stack) Close() error {
	var errs []error
	if s.Publisher != nil {
		errs = append(errs, s.Publisher.Close())
	}
	if s.Registry != nil {
		errs = append(errs, s.Registry.Close())
	}
	if s.Vault != nil {
		errs = append(errs, s.Vault.Close())
	}
	return errors.Join(errs...)
}

func newVault(ctx context.Context, cfg *config.Config, configDir string, timeout time.Duration, log *slog.Logger) (vault.Store, error) {
	dir := cfg.Vault.Dir
	if cfg.Vault.Backend == vaultutils.BackendFilesystem && dir == "" {
		var err error
		dir, err = dotdir.NewManager().Join(configDir, defaultVaultDir)
		if err != nil {
			return nil, fmt.Errorf("resolving vault dir: %w", err)
		}
	}

	return vaultutils.NewStore(ctx, &vaultutils.NewStoreOpts{
		Backend:    cfg.Vault.Backend,
		Dir:        dir,
		S3Bucket:   cfg.Vault.S3Bucket,
		S3Region:   cfg.Vault.S3Region,
		S3Endpoint: cfg.Vault.S3Endpoint,
		S3Prefix:   cfg.Vault.S3Prefix,
		GCSBucket:  cfg.Vault.GCSBucket,
		GCSPrefix:  cfg.Vault.GCSPrefix,
		DocsURL:    cfg.Vault.DocsURL,
		APIKey:     config.InternalAPIKey(),
		Timeout:    timeout,
		Logger:     log,
	})
}

func newRegistry(ctx context.Context, cfg *config.Config, configDir string, timeout time.Duration, log *slog.Logger) (registry.Registry, error) {
	path := cfg.Registry.SQLitePath
	if cfg.Registry.Backend == registryutils.BackendSQLite && path == "" {
		var err error
		path, err = dotdir.NewManager().Join(configDir, defaultSQLiteFile)
		if err != nil {
			return nil, fmt.Errorf("resolving registry path: %w", err)
		}
	}

	return registryutils.NewRegistry(ctx, &registryutils.NewRegistryOpts{
		Backend:     cfg.Registry.Backend,
		SQLitePath:  path,
		PostgresDSN: cfg.Registry.PostgresDSN,
		BFFURL:      cfg.Registry.BFFURL,
		APIKey:      config.InternalAPIKey(),
		Timeout:     timeout,
		Logger:      log,
	})
}

func newPublisher(cfg *config.Config, log *slog.Logger) (eventstream.Publisher, error) {
	if cfg.Events.KafkaBrokers == "" {
		return nop.NewPublisher(), nil
	}

	pub, err := kafka.NewPublisher(kafka.Config{
		Brokers: cfg.Events.KafkaBrokers,
		Topic:   cfg.Events.KafkaTopic,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}

	pool, err := worker.NewPool(&worker.Config{
		Publisher: pub,
		Logger:    log,
	})
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("creating event worker pool: %w", err)
	}

	log.Info("publishing skill events", "brokers", cfg.Events.KafkaBrokers, "topic", cfg.Events.KafkaTopic)
	return pool, nil
}
