//go:build gcp

package vaultutils

import (
	"context"

	"github.com/papercomputeco/skillgate/pkg/vault"
	"github.com/papercomputeco/skillgate/pkg/vault/gcs"
)

func newGCSStore(ctx context.Context, o *NewStoreOpts) (vault.Store, error) {
	return gcs.NewStore(ctx, gcs.Config{
		Bucket: o.GCSBucket,
		Prefix: o.GCSPrefix,
	})
}
