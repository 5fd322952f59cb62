// Package filesystem provides a vault backed by a local directory tree laid
// out as <dir>/<tenant>/<user>/<path>, with principal.NoTenant for users
// without a tenant.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/papercomputeco/skillgate/pkg/vault"
)

// Store implements vault.Store on the local filesystem.
type Store struct {
	baseDir string

	// mu serializes writers within this process; cross-process safety
	// comes from link(2) and rename(2).
	mu sync.Mutex
}

// NewStore creates a filesystem vault rooted at baseDir.
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		return nil, errors.New("filesystem vault directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating vault directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Create writes to a temp file and hard-links it into place, which fails if
// the target already exists.
func (s *Store) Create(_ context.Context, ref vault.Ref, content []byte, _ string) (string, error) {
	target, err := s.resolve(ref)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := s.writeTemp(target, content)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp)

	if err := os.Link(tmp, target); err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%s: %w", ref.Path, vault.ErrConflict)
		}
		return "", fmt.Errorf("committing artifact: %w", err)
	}

	return s.id(target), nil
}

// Update atomically replaces an existing artifact.
func (s *Store) Update(_ context.Context, ref vault.Ref, content []byte) (string, error) {
	target, err := s.resolve(ref)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", ref.Path, vault.ErrNotFound)
		}
		return "", fmt.Errorf("checking artifact: %w", err)
	}

	tmp, err := s.writeTemp(target, content)
	if err != nil {
		return "", err
	}

	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("committing artifact: %w", err)
	}

	return s.id(target), nil
}

func (s *Store) Get(_ context.Context, ref vault.Ref) ([]byte, error) {
	target, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", ref.Path, vault.ErrNotFound)
		}
		return nil, fmt.Errorf("reading artifact: %w", err)
	}
	return data, nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) resolve(ref vault.Ref) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}

	return filepath.Join(s.baseDir, ref.Principal.Tenant(), ref.Principal.UserID, filepath.FromSlash(ref.Path)), nil
}

func (s *Store) writeTemp(target string, content []byte) (string, error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating artifact directory: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("writing artifact: %w", err)
	}

	return f.Name(), nil
}

// id is the artifact path relative to the vault root.
func (s *Store) id(target string) string {
	rel, err := filepath.Rel(s.baseDir, target)
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}
