package vaultutils

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/papercomputeco/skillgate/pkg/vault"
	"github.com/papercomputeco/skillgate/pkg/vault/docsapi"
	"github.com/papercomputeco/skillgate/pkg/vault/filesystem"
	"github.com/papercomputeco/skillgate/pkg/vault/inmemory"
	s3vault "github.com/papercomputeco/skillgate/pkg/vault/s3"
)

// Backend names accepted by NewStore.
const (
	BackendInMemory   = "inmemory"
	BackendFilesystem = "filesystem"
	BackendS3         = "s3"
	BackendGCS        = "gcs"
	BackendDocsAPI    = "docsapi"
)

type NewStoreOpts struct {
	Backend string

	// Dir is the root of the filesystem vault.
	Dir string

	S3Bucket   string
	S3Region   string
	S3Endpoint string
	S3Prefix   string

	GCSBucket string
	GCSPrefix string

	DocsURL string
	APIKey  string
	Timeout time.Duration

	Logger *slog.Logger
}

func NewStore(ctx context.Context, o *NewStoreOpts) (vault.Store, error) {
	var (
		store vault.Store
		err   error
	)

	switch o.Backend {
	case BackendInMemory:
		store = inmemory.NewStore()

	case BackendFilesystem:
		store, err = filesystem.NewStore(o.Dir)

	case BackendS3:
		store, err = s3vault.NewStore(ctx, s3vault.Config{
			Bucket:   o.S3Bucket,
			Region:   o.S3Region,
			Endpoint: o.S3Endpoint,
			Prefix:   o.S3Prefix,
		})

	case BackendGCS:
		store, err = newGCSStore(ctx, o)

	case BackendDocsAPI:
		store, err = docsapi.NewStore(docsapi.Config{
			URL:     o.DocsURL,
			APIKey:  o.APIKey,
			Timeout: o.Timeout,
		})

	default:
		return nil, fmt.Errorf("unsupported vault backend: %s", o.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s vault: %w", o.Backend, err)
	}

	if o.Logger != nil {
		o.Logger.Debug("vault ready", "backend", o.Backend)
	}
	return store, nil
}
