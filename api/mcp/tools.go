package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/skillgate/pkg/policy"
	"github.com/papercomputeco/skillgate/pkg/principal"
	"github.com/papercomputeco/skillgate/pkg/provision"
)

var (
	validateCodeToolName    = "validate_code"
	validateCodeDescription = "Check Python code against the skill safety policy without storing it. Returns whether the code is valid and one error per blocked import, call or attribute."

	createSkillToolName    = "create_skill"
	createSkillDescription = "Create a skill for a user: validate every Python script, store the manifest and scripts in the user's vault, then register the skill. Stops at the first failure."
)

// ValidateCodeInput represents the input arguments for the validate_code tool.
type ValidateCodeInput struct {
	UserID   string `json:"user_id" jsonschema:"the user the code belongs to"`
	TenantID string `json:"tenant_id,omitempty" jsonschema:"the user's tenant, if any"`
	Code     string `json:"code" jsonschema:"the Python source to check"`
	Filename string `json:"filename,omitempty" jsonschema:"file name used in errors (default: main.py)"`
}

// ValidateCodeOutput represents the output of the validate_code tool.
type ValidateCodeOutput struct {
	Status string   `json:"status"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ScriptInput is one script of a skill in the list form of scripts.
type ScriptInput struct {
	Path   string `json:"path" jsonschema:"path relative to the skill's scripts directory, e.g. main.py"`
	Source string `json:"source" jsonschema:"file contents"`
}

// CreateSkillInput represents the input arguments for the create_skill tool.
// Scripts may be sent as a list of {path, source} objects or as an object
// mapping path to source.
type CreateSkillInput struct {
	UserID       string               `json:"user_id" jsonschema:"the user the skill belongs to"`
	TenantID     string               `json:"tenant_id,omitempty" jsonschema:"the user's tenant, if any"`
	Name         string               `json:"name" jsonschema:"unique skill name: lowercase letters and digits separated by hyphens"`
	DisplayName  string               `json:"display_name" jsonschema:"name shown to the user"`
	Description  string               `json:"description" jsonschema:"short description of the skill"`
	ManifestText string               `json:"manifest_text" jsonschema:"full text of the skill manifest"`
	Scripts      provision.ScriptList `json:"scripts,omitempty" jsonschema:"scripts in upload order, as a list of {path, source} or an object of path to source"`
}

// createSkillSchema infers the create_skill input schema and lets scripts be
// either a list or an object. The typed AddTool would infer an array only.
func createSkillSchema() (*jsonschema.Schema, error) {
	item, err := jsonschema.For[ScriptInput](nil)
	if err != nil {
		return nil, err
	}

	return jsonschema.For[CreateSkillInput](&jsonschema.ForOptions{
		TypeSchemas: map[reflect.Type]*jsonschema.Schema{
			reflect.TypeFor[provision.ScriptList](): {
				OneOf: []*jsonschema.Schema{
					{Type: "array", Items: item},
					{Type: "object", AdditionalProperties: &jsonschema.Schema{Type: "string"}},
				},
			},
		},
	})
}

// handleValidateCode processes a validate_code request.
func (s *Server) handleValidateCode(ctx context.Context, _ *mcp.CallToolRequest, input ValidateCodeInput) (*mcp.CallToolResult, ValidateCodeOutput, error) {
	filename := input.Filename
	if filename == "" {
		filename = "main.py"
	}

	s.config.Logger.Debug("MCP validate_code request",
		"user", input.UserID,
		"filename", filename,
	)

	result := s.config.Pipeline.Gate().Validate(ctx, policy.SourceUnit{
		Filename: filename,
		Text:     input.Code,
	})

	output := ValidateCodeOutput{
		Status: "success",
		Valid:  result.Valid,
		Errors: result.Errors(),
	}
	return textResult(output, false), output, nil
}

// createSkillTool decodes the raw create_skill arguments. The typed AddTool
// round-trips arguments through a map, which would lose the key order of
// the object form of scripts.
func (s *Server) createSkillTool(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.Params.Arguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	var v map[string]any
	if err := json.Unmarshal(args, &v); err != nil {
		return nil, invalidParams("unmarshaling arguments: %v", err)
	}
	if err := s.createSkillResolved.Validate(&v); err != nil {
		return nil, invalidParams("validating \"arguments\": %v", err)
	}

	var input CreateSkillInput
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, invalidParams("%v", err)
	}

	result, _, err := s.handleCreateSkill(ctx, req, input)
	return result, err
}

// handleCreateSkill processes a create_skill request. Failures are reported
// as tool errors carrying the same JSON shape as the HTTP API.
func (s *Server) handleCreateSkill(ctx context.Context, _ *mcp.CallToolRequest, input CreateSkillInput) (*mcp.CallToolResult, any, error) {
	s.config.Logger.Debug("MCP create_skill request",
		"user", input.UserID,
		"skill", input.Name,
		"scripts", len(input.Scripts),
	)

	outcome, err := s.config.Pipeline.CreateSkill(ctx, provision.SkillRequest{
		Principal:   principal.Principal{UserID: input.UserID, TenantID: input.TenantID},
		Name:        input.Name,
		DisplayName: input.DisplayName,
		Description: input.Description,
		Manifest:    input.ManifestText,
		Scripts:     input.Scripts,
	})
	if err != nil {
		return textResult(provision.ErrorResponse(err), true), nil, nil
	}

	resp := provision.NewResponse(outcome)
	return textResult(resp, resp.Status != "success"), nil, nil
}

func invalidParams(format string, args ...any) *jsonrpc.Error {
	return &jsonrpc.Error{
		Code:    jsonrpc.CodeInvalidParams,
		Message: "invalid params: " + fmt.Sprintf(format, args...),
	}
}

// textResult serializes v as JSON into a text content block.
func textResult(v any, isError bool) *mcp.CallToolResult {
	payload, err := json.Marshal(v)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize result: %v", err)},
			},
		}
	}

	return &mcp.CallToolResult{
		IsError: isError,
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(payload)},
		},
	}
}
