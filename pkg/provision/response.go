package provision

import (
	"github.com/papercomputeco/skillgate/pkg/registry"
)

// Response is the wire shape of an Outcome shared by the HTTP API, the MCP
// tools and the CLI.
type Response struct {
	Status           string          `json:"status"`
	Message          string          `json:"message,omitempty"`
	Skill            *registry.Skill `json:"skill,omitempty"`
	Error            string          `json:"error,omitempty"`
	File             string          `json:"file,omitempty"`
	Stage            string          `json:"stage,omitempty"`
	Path             string          `json:"path,omitempty"`
	RegistryStatus   int             `json:"registry_status,omitempty"`
	ValidationErrors []string        `json:"validation_errors,omitempty"`
}

// NewResponse renders an outcome.
func NewResponse(o Outcome) Response {
	switch o := o.(type) {
	case *Registered:
		return Response{
			Status:  o.Status(),
			Message: "Skill '" + o.Skill.DisplayName + "' created",
			Skill:   o.Skill,
		}
	case *Rejected:
		return Response{
			Status:           o.Status(),
			Error:            o.Error(),
			File:             o.Filename,
			ValidationErrors: o.Errors(),
		}
	case *UploadFailed:
		return Response{
			Status: o.Status(),
			Error:  o.Error(),
			File:   o.Filename,
			Stage:  o.Stage,
			Path:   o.Path,
		}
	case *RegistrationFailed:
		return Response{
			Status:         o.Status(),
			Error:          o.Error(),
			Stage:          StageRegistration,
			RegistryStatus: registry.StatusOf(o),
		}
	default:
		return Response{Status: "error", Error: "unknown outcome"}
	}
}

// ErrorResponse renders an error that happened before provisioning started.
func ErrorResponse(err error) Response {
	return Response{Status: "error", Error: err.Error()}
}
