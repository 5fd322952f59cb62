// Package vault provides interfaces and implementations for per-user skill
// artifact storage.
package vault

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/papercomputeco/skillgate/pkg/principal"
)

// Ref addresses one artifact in a principal's vault. Path is relative and
// slash-separated, e.g. "skills/weather/scripts/main.py".
type Ref struct {
	Principal principal.Principal
	Path      string
}

// Validate checks the principal and the path.
func (r Ref) Validate() error {
	if err := r.Principal.Validate(); err != nil {
		return err
	}
	return ValidatePath(r.Path)
}

func (r Ref) String() string {
	return r.Principal.String() + ":" + r.Path
}

// Store handles storage and retrieval of skill artifacts.
type Store interface {
	// Create stores a new artifact and returns its backend identifier.
	// It returns ErrConflict if an artifact already exists at ref.
	Create(ctx context.Context, ref Ref, content []byte, mimeType string) (string, error)

	// Update replaces the content of an existing artifact.
	// It returns ErrNotFound if nothing exists at ref.
	Update(ctx context.Context, ref Ref, content []byte) (string, error)

	// Get returns the content stored at ref, or ErrNotFound.
	Get(ctx context.Context, ref Ref) ([]byte, error)

	// Close releases backend resources.
	Close() error
}

// Upsert creates the artifact at ref, updating it in place when it already
// exists. Repeating an Upsert with the same content is idempotent.
func Upsert(ctx context.Context, s Store, ref Ref, content []byte, mimeType string) (string, error) {
	id, err := s.Create(ctx, ref, content, mimeType)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrConflict) {
		return "", err
	}

	id, err = s.Update(ctx, ref, content)
	if err != nil {
		return "", fmt.Errorf("updating existing artifact %s: %w", ref.Path, err)
	}
	return id, nil
}

// ValidatePath checks that p is a clean relative artifact path: not empty,
// not absolute, with no empty, "." or ".." segments.
func ValidatePath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.ContainsRune(p, '\\') {
		return fmt.Errorf("%w: %q contains a backslash", ErrInvalidPath, p)
	}
	if path.IsAbs(p) {
		return fmt.Errorf("%w: %q is absolute", ErrInvalidPath, p)
	}
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "":
			return fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, p)
		case ".", "..":
			return fmt.Errorf("%w: %q has a %q segment", ErrInvalidPath, p, seg)
		}
	}
	return nil
}
