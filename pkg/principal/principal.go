// Package principal identifies the end user a skill belongs to.
package principal

import (
	"errors"
	"strings"
)

// ErrMissingUser is returned when a principal has no user ID.
var ErrMissingUser = errors.New("principal: missing user id")

// NoTenant is the storage segment used in place of an empty tenant ID, so
// untenanted users never share a namespace with a tenant. It is not a
// valid tenant ID itself.
const NoTenant = "_"

// Principal is the owner of a skill. TenantID is optional for single-tenant
// deployments.
type Principal struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id,omitempty"`
}

// Validate checks that the principal can address per-user storage.
func (p Principal) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return ErrMissingUser
	}
	if strings.ContainsAny(p.UserID, "/\\") || p.UserID == "." || p.UserID == ".." {
		return errors.New("principal: user id must not contain path separators")
	}
	if strings.ContainsAny(p.TenantID, "/\\") || p.TenantID == "." || p.TenantID == ".." {
		return errors.New("principal: tenant id must not contain path separators")
	}
	if p.TenantID == NoTenant {
		return errors.New("principal: tenant id \"_\" is reserved")
	}
	return nil
}

// Tenant returns the tenant segment of per-user storage: TenantID, or
// NoTenant when it is empty.
func (p Principal) Tenant() string {
	if p.TenantID == "" {
		return NoTenant
	}
	return p.TenantID
}

func (p Principal) String() string {
	if p.TenantID == "" {
		return p.UserID
	}
	return p.TenantID + "/" + p.UserID
}
