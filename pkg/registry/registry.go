// Package registry records user skills so the agent platform can discover
// and load them.
package registry

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/papercomputeco/skillgate/pkg/principal"
)

// MaxNameLength is the longest accepted skill name.
const MaxNameLength = 64

var nameRE = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// builtinSkills are platform skill names users may not register.
var builtinSkills = []string{
	"calendar",
	"email",
	"drive",
	"task-management",
	"conversation-history",
	"diario-republica",
	"basegov",
	"user-vault",
	"skill-creator",
}

// Registration is a request to record a skill for a principal.
type Registration struct {
	Principal   principal.Principal
	Name        string
	DisplayName string
	Description string
	StoragePath string
}

// Skill is a registered skill.
type Skill struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	TenantID    string    `json:"tenant_id,omitempty"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Registry records skills. Registering a name the principal already owns
// updates it in place.
type Registry interface {
	Register(ctx context.Context, reg Registration) (*Skill, error)
	Close() error
}

// Reader is implemented by registries that can list what they store.
type Reader interface {
	Get(ctx context.Context, p principal.Principal, name string) (*Skill, error)
	List(ctx context.Context, p principal.Principal) ([]*Skill, error)
}

// ValidateName checks the skill name format.
func ValidateName(name string) error {
	if len(name) > MaxNameLength {
		return fmt.Errorf("skill name must be at most %d characters", MaxNameLength)
	}
	if !nameRE.MatchString(name) {
		return fmt.Errorf("skill name %q must be lowercase letters and digits separated by single hyphens", name)
	}
	return nil
}

// IsBuiltin reports whether name is reserved by a platform skill.
func IsBuiltin(name string) bool {
	return slices.Contains(builtinSkills, name)
}

// BuiltinSkills returns the reserved platform skill names.
func BuiltinSkills() []string {
	return slices.Clone(builtinSkills)
}

// Validate checks a registration the way every backend does before
// persisting it: invalid input is a 400, a built-in name a 409.
func (r Registration) Validate() error {
	if err := r.Principal.Validate(); err != nil {
		return InvalidError(err.Error())
	}
	if err := ValidateName(r.Name); err != nil {
		return InvalidError(err.Error())
	}
	if strings.TrimSpace(r.DisplayName) == "" {
		return InvalidError("display_name is required")
	}
	if strings.TrimSpace(r.StoragePath) == "" {
		return InvalidError("storage_path is required")
	}
	if IsBuiltin(r.Name) {
		return &Error{
			Status:  409,
			Code:    CodeBuiltinCollision,
			Message: fmt.Sprintf("skill name %q is reserved by a platform skill", r.Name),
		}
	}
	return nil
}
