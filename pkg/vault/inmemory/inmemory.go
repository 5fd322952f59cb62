// Package inmemory provides an in-memory vault for tests and development.
package inmemory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/papercomputeco/skillgate/pkg/vault"
)

// Object is a stored artifact.
type Object struct {
	ID       string
	Content  []byte
	MimeType string
}

// Store implements vault.Store using an in-memory map keyed by principal
// and path.
type Store struct {
	mu      sync.RWMutex
	objects map[objectKey]*Object
}

type objectKey struct {
	tenant, user, path string
}

func keyOf(ref vault.Ref) objectKey {
	return objectKey{tenant: ref.Principal.TenantID, user: ref.Principal.UserID, path: ref.Path}
}

// NewStore creates a new in-memory vault.
func NewStore() *Store {
	return &Store{
		objects: make(map[objectKey]*Object),
	}
}

func (s *Store) Create(_ context.Context, ref vault.Ref, content []byte, mimeType string) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := keyOf(ref)
	if _, ok := s.objects[key]; ok {
		return "", fmt.Errorf("%s: %w", ref.Path, vault.ErrConflict)
	}

	obj := &Object{
		ID:       uuid.NewString(),
		Content:  slices.Clone(content),
		MimeType: mimeType,
	}
	s.objects[key] = obj
	return obj.ID, nil
}

func (s *Store) Update(_ context.Context, ref vault.Ref, content []byte) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[keyOf(ref)]
	if !ok {
		return "", fmt.Errorf("%s: %w", ref.Path, vault.ErrNotFound)
	}
	obj.Content = slices.Clone(content)
	return obj.ID, nil
}

func (s *Store) Get(_ context.Context, ref vault.Ref) ([]byte, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[keyOf(ref)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ref.Path, vault.ErrNotFound)
	}
	return slices.Clone(obj.Content), nil
}

// Object returns a copy of the stored object at ref, for inspection in tests.
func (s *Store) Object(ref vault.Ref) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[keyOf(ref)]
	if !ok {
		return Object{}, false
	}
	return Object{ID: obj.ID, Content: slices.Clone(obj.Content), MimeType: obj.MimeType}, true
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

func (s *Store) Close() error {
	return nil
}
