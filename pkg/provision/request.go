package provision

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/papercomputeco/skillgate/pkg/principal"
	"github.com/papercomputeco/skillgate/pkg/registry"
	"github.com/papercomputeco/skillgate/pkg/vault"
)

// ErrInvalidRequest is returned by CreateSkill for requests that are
// malformed before validation starts.
var ErrInvalidRequest = errors.New("invalid skill request")

// SkillsPrefix is the vault directory holding every skill of a user.
const SkillsPrefix = "skills"

// Script is one file shipped with a skill. Path is relative to the skill's
// scripts directory.
type Script struct {
	Path   string `json:"path"`
	Source string `json:"source"`
}

// SkillRequest asks for a skill to be validated, stored and registered.
// Scripts are uploaded in slice order.
type SkillRequest struct {
	Principal   principal.Principal `json:"principal"`
	Name        string              `json:"name"`
	DisplayName string              `json:"display_name"`
	Description string              `json:"description"`
	Manifest    string              `json:"manifest"`
	Scripts     []Script            `json:"scripts"`
}

// Validate checks the request shape. It does not run the safety policy.
func (r SkillRequest) Validate() error {
	if err := r.Principal.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := registry.ValidateName(r.Name); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if strings.TrimSpace(r.Manifest) == "" {
		return fmt.Errorf("%w: manifest must not be empty", ErrInvalidRequest)
	}

	seen := make(map[string]struct{}, len(r.Scripts))
	for _, s := range r.Scripts {
		if err := vault.ValidatePath(s.Path); err != nil {
			return fmt.Errorf("%w: script %q: %w", ErrInvalidRequest, s.Path, err)
		}
		if _, ok := seen[s.Path]; ok {
			return fmt.Errorf("%w: duplicate script path %q", ErrInvalidRequest, s.Path)
		}
		seen[s.Path] = struct{}{}
	}
	return nil
}

func (r SkillRequest) displayName() string {
	if strings.TrimSpace(r.DisplayName) == "" {
		return r.Name
	}
	return r.DisplayName
}

// StoragePath is the vault directory of a skill.
func StoragePath(name string) string {
	return path.Join(SkillsPrefix, name)
}

// ManifestPath is where a skill's manifest is stored.
func ManifestPath(name string) string {
	return path.Join(SkillsPrefix, name, "MANIFEST")
}

// ScriptPath is where a skill script is stored.
func ScriptPath(name, scriptPath string) string {
	return path.Join(SkillsPrefix, name, "scripts", scriptPath)
}
