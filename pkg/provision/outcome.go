package provision

import (
	"fmt"

	"github.com/papercomputeco/skillgate/pkg/policy"
	"github.com/papercomputeco/skillgate/pkg/registry"
)

// Stages reported by failed outcomes.
const (
	StageManifest     = "manifest"
	StageScript       = "script"
	StageRegistration = "registration"
)

// Outcome is the result of CreateSkill: exactly one of *Rejected,
// *UploadFailed, *RegistrationFailed or *Registered.
type Outcome interface {
	// Status is "success" for Registered, "rejected" for Rejected and
	// "error" otherwise.
	Status() string

	outcome()
}

// Rejected means a script failed validation. Nothing was uploaded.
type Rejected struct {
	Filename    string
	Diagnostics []policy.Diagnostic
}

// UploadFailed means an artifact could not be stored. Artifacts uploaded
// before it are left in place.
type UploadFailed struct {
	Stage    string
	Filename string
	Path     string
	Cause    error
}

// RegistrationFailed means every artifact was stored but the registry
// refused or could not be reached.
type RegistrationFailed struct {
	Cause error
}

// Registered means the skill is stored and registered.
type Registered struct {
	Skill *registry.Skill
}

func (*Rejected) Status() string           { return "rejected" }
func (*UploadFailed) Status() string       { return "error" }
func (*RegistrationFailed) Status() string { return "error" }
func (*Registered) Status() string         { return "success" }

func (*Rejected) outcome()           {}
func (*UploadFailed) outcome()       {}
func (*RegistrationFailed) outcome() {}
func (*Registered) outcome()         {}

func (r *Rejected) Error() string {
	return fmt.Sprintf("Validation failed for %s", r.Filename)
}

// Errors renders the diagnostics as user-facing strings.
func (r *Rejected) Errors() []string {
	out := make([]string, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		out = append(out, d.String())
	}
	return out
}

func (u *UploadFailed) Error() string {
	return fmt.Sprintf("failed to store %s: %v", u.Path, u.Cause)
}

func (u *UploadFailed) Unwrap() error {
	return u.Cause
}

func (r *RegistrationFailed) Error() string {
	return fmt.Sprintf("failed to register skill: %v", r.Cause)
}

func (r *RegistrationFailed) Unwrap() error {
	return r.Cause
}
