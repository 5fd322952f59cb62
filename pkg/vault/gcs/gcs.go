//go:build gcp

package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/papercomputeco/skillgate/pkg/vault"
)

// Config holds configuration for Store.
type Config struct {
	Bucket string
	Prefix string // Optional object prefix
}

// <prefix><tenant>/<user>/<path>, with principal.NoTenant for no tenant.
// <prefix>[<tenant>/]<user>/<path>.
type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewStore creates a new GCS-backed vault using application default
// credentials.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	return &Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Create writes with a DoesNotExist precondition so an existing object
// fails with 412.
func (s *Store) Create(ctx context.Context, ref vault.Ref, content []byte, mimeType string) (string, error) {
	name, err := s.name(ref)
	if err != nil {
		return "", err
	}

	obj := s.client.Bucket(s.bucket).Object(name).If(storage.Conditions{DoesNotExist: true})
	if err := s.write(ctx, obj, content, mimeType); err != nil {
		if status(err) == http.StatusPreconditionFailed {
			return "", fmt.Errorf("%s: %w", ref.Path, vault.ErrConflict)
		}
		return "", fmt.Errorf("gcs write failed for %s: %w", name, err)
	}

	return name, nil
}

// Update overwrites an existing object, pinned to the generation it was
// read at.
func (s *Store) Update(ctx context.Context, ref vault.Ref, content []byte) (string, error) {
	name, err := s.name(ref)
	if err != nil {
		return "", err
	}

	handle := s.client.Bucket(s.bucket).Object(name)
	attrs, err := handle.Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", fmt.Errorf("%s: %w", ref.Path, vault.ErrNotFound)
		}
		return "", fmt.Errorf("gcs attrs failed for %s: %w", name, err)
	}

	obj := handle.If(storage.Conditions{GenerationMatch: attrs.Generation})
	if err := s.write(ctx, obj, content, attrs.ContentType); err != nil {
		return "", fmt.Errorf("gcs write failed for %s: %w", name, err)
	}

	return name, nil
}

func (s *Store) Get(ctx context.Context, ref vault.Ref) ([]byte, error) {
	name, err := s.name(ref)
	if err != nil {
		return nil, err
	}

	r, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%s: %w", ref.Path, vault.ErrNotFound)
		}
		return nil, fmt.Errorf("gcs read failed for %s: %w", name, err)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading gcs object %s: %w", name, err)
	}
	return data, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) write(ctx context.Context, obj *storage.ObjectHandle, content []byte, mimeType string) error {
	w := obj.NewWriter(ctx)
	w.ContentType = mimeType

	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (s *Store) name(ref vault.Ref) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}
	return s.prefix + ref.Principal.Tenant() + "/" + ref.Principal.UserID + "/" + ref.Path, nil
}

func status(err error) int {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	return 0
}
