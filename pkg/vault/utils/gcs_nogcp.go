//go:build !gcp

package vaultutils

import (
	"context"
	"errors"

	"github.com/papercomputeco/skillgate/pkg/vault"
)

func newGCSStore(context.Context, *NewStoreOpts) (vault.Store, error) {
	return nil, errors.New("GCS storage is not enabled in this build (use -tags gcp)")
}
