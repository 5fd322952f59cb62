package registryutils

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/papercomputeco/skillgate/pkg/registry"
	"github.com/papercomputeco/skillgate/pkg/registry/bff"
	"github.com/papercomputeco/skillgate/pkg/registry/inmemory"
	"github.com/papercomputeco/skillgate/pkg/registry/sqlstore"
)

// Backend names accepted by NewRegistry.
const (
	BackendInMemory = "inmemory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendBFF      = "bff"
)

type NewRegistryOpts struct {
	Backend string

	SQLitePath  string
	PostgresDSN string

	BFFURL  string
	APIKey  string
	Timeout time.Duration

	Logger *slog.Logger
}

func NewRegistry(ctx context.Context, o *NewRegistryOpts) (registry.Registry, error) {
	var (
		reg registry.Registry
		err error
	)

	switch o.Backend {
	case BackendInMemory:
		reg = inmemory.NewRegistry()

	case BackendSQLite:
		path := o.SQLitePath
		if path == "" {
			path = ":memory:"
		}
		reg, err = sqlstore.NewSQLiteRegistry(ctx, path)

	case BackendPostgres:
		if o.PostgresDSN == "" {
			return nil, fmt.Errorf("creating %s registry: postgres DSN is required", o.Backend)
		}
		reg, err = sqlstore.NewPostgresRegistry(ctx, o.PostgresDSN)

	case BackendBFF:
		reg, err = bff.NewClient(bff.Config{
			URL:     o.BFFURL,
			APIKey:  o.APIKey,
			Timeout: o.Timeout,
		})

	default:
		return nil, fmt.Errorf("unsupported registry backend: %s", o.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s registry: %w", o.Backend, err)
	}

	if o.Logger != nil {
		o.Logger.Debug("registry ready", "backend", o.Backend)
	}
	return reg, nil
}
