package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/skillgate/pkg/policy"
	"github.com/papercomputeco/skillgate/pkg/principal"
	"github.com/papercomputeco/skillgate/pkg/provision"
	"github.com/papercomputeco/skillgate/pkg/registry"
	"github.com/papercomputeco/skillgate/pkg/utils"
)

const (
	defaultFilename = "main.py"
	principalKey    = "principal"
)

// ErrorResponse is the body of every non-provisioning error.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// ValidateRequest is the body of POST /v1/validate.
type ValidateRequest struct {
	Code     string `json:"code"`
	Filename string `json:"filename,omitempty"`
}

// ValidateResponse reports whether code passed the safety policy.
type ValidateResponse struct {
	Status string   `json:"status"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// CreateSkillRequest is the body of POST /v1/skills. The principal comes
// from the X-User-ID and X-Tenant-ID headers.
type CreateSkillRequest struct {
	Name         string               `json:"name"`
	DisplayName  string               `json:"display_name"`
	Description  string               `json:"description"`
	ManifestText string               `json:"manifest_text"`
	Scripts      provision.ScriptList `json:"scripts"`
}

// ListSkillsResponse is the body of GET /v1/skills.
type ListSkillsResponse struct {
	Skills []*registry.Skill `json:"skills"`
	Count  int               `json:"count"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleValidate checks a single script without storing anything.
func (s *Server) handleValidate(c *fiber.Ctx) error {
	var req ValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Filename == "" {
		req.Filename = defaultFilename
	}

	result := s.pipeline.Gate().Validate(c.UserContext(), policy.SourceUnit{
		Filename: req.Filename,
		Text:     req.Code,
	})

	return c.JSON(ValidateResponse{
		Status: "success",
		Valid:  result.Valid,
		Errors: result.Errors(),
	})
}

// handleCreateSkill runs the provisioning pipeline.
func (s *Server) handleCreateSkill(c *fiber.Ctx) error {
	var req CreateSkillRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	p := c.Locals(principalKey).(principal.Principal)
	outcome, err := s.pipeline.CreateSkill(c.UserContext(), provision.SkillRequest{
		Principal:   p,
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Description: req.Description,
		Manifest:    req.ManifestText,
		Scripts:     req.Scripts,
	})
	if errors.Is(err, provision.ErrInvalidRequest) {
		return c.Status(fiber.StatusBadRequest).JSON(provision.ErrorResponse(err))
	}
	if err != nil {
		s.logger.Error("create skill failed", "user", p.String(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Status: "error", Error: "internal error"})
	}

	return c.Status(outcomeStatus(outcome)).JSON(provision.NewResponse(outcome))
}

// handleListSkills lists the caller's registered skills.
func (s *Server) handleListSkills(c *fiber.Ctx) error {
	if s.reader == nil {
		return notImplemented(c)
	}

	p := c.Locals(principalKey).(principal.Principal)
	skills, err := s.reader.List(c.UserContext(), p)
	if err != nil {
		s.logger.Error("list skills failed", "user", p.String(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Status: "error", Error: "failed to list skills"})
	}

	return c.JSON(ListSkillsResponse{Skills: skills, Count: len(skills)})
}

// handleGetSkill returns one of the caller's skills by name.
func (s *Server) handleGetSkill(c *fiber.Ctx) error {
	if s.reader == nil {
		return notImplemented(c)
	}

	p := c.Locals(principalKey).(principal.Principal)
	skill, err := s.reader.Get(c.UserContext(), p, c.Params("name"))
	if errors.Is(err, registry.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Status: "error", Error: "skill not found"})
	}
	if err != nil {
		s.logger.Error("get skill failed", "user", p.String(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Status: "error", Error: "failed to get skill"})
	}

	return c.JSON(skill)
}

// requirePrincipal reads the caller from the internal identity headers.
func (s *Server) requirePrincipal(c *fiber.Ctx) error {
	p := principal.Principal{
		UserID:   c.Get(utils.HeaderUserID),
		TenantID: c.Get(utils.HeaderTenantID),
	}
	if err := p.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	c.Locals(principalKey, p)
	return c.Next()
}

// limitCreates applies the per-user creation rate limit.
func (s *Server) limitCreates(c *fiber.Ctx) error {
	p := c.Locals(principalKey).(principal.Principal)
	if !s.limiter.allow(p.String()) {
		s.logger.Warn("create rate limit exceeded", "user", p.String())
		return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{Status: "error", Error: "too many skill creations, try again later"})
	}
	return c.Next()
}

func outcomeStatus(o provision.Outcome) int {
	switch o.(type) {
	case *provision.Registered:
		return fiber.StatusCreated
	case *provision.Rejected:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusBadGateway
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Status: "error", Error: msg})
}

func notImplemented(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotImplemented).JSON(ErrorResponse{Status: "error", Error: "registry does not support reads"})
}
