// Package bff provides a skill registry client for the platform backend's
// internal skills endpoint.
package bff

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/skillgate/pkg/registry"
	"github.com/papercomputeco/skillgate/pkg/utils"
)

// Config holds configuration for the backend registry client.
type Config struct {
	// URL is the backend base URL (e.g., "http://bff:3000").
	URL string

	// APIKey is sent as the internal API key header.
	APIKey string

	// Timeout bounds each request. Defaults to 30s.
	Timeout time.Duration
}

// Client implements registry.Registry over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new backend registry client.
func NewClient(c Config) (*Client, error) {
	if c.URL == "" {
		return nil, errors.New("backend URL is required")
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(c.URL, "/"),
		apiKey:  c.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type registerRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	StoragePath string `json:"storage_path"`
}

type registerResponse struct {
	Skill *registry.Skill `json:"skill"`
	Data  struct {
		Skill *registry.Skill `json:"skill"`
	} `json:"data"`
}

// Register posts the skill to the backend. Validation runs locally first so
// built-in collisions never leave the process; the backend repeats it.
func (c *Client) Register(ctx context.Context, reg registry.Registration) (*registry.Skill, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(registerRequest{
		Name:        reg.Name,
		DisplayName: reg.DisplayName,
		Description: reg.Description,
		StoragePath: reg.StoragePath,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling registration: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/internal/skills/user", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(utils.HeaderUserID, reg.Principal.UserID)
	if reg.Principal.TenantID != "" {
		req.Header.Set(utils.HeaderTenantID, reg.Principal.TenantID)
	}
	if c.apiKey != "" {
		req.Header.Set(utils.HeaderInternalAPIKey, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registering skill %s: %w", reg.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &registry.Error{
			Status:  resp.StatusCode,
			Code:    errorCode(body),
			Message: utils.ErrorMessage(resp.StatusCode, body),
		}
	}

	skill := decodeSkill(body)
	if skill.UserID == "" {
		skill.UserID = reg.Principal.UserID
		skill.TenantID = reg.Principal.TenantID
	}
	if skill.Name == "" {
		skill.Name = reg.Name
	}
	if skill.DisplayName == "" {
		skill.DisplayName = reg.DisplayName
	}
	if skill.Description == "" {
		skill.Description = reg.Description
	}
	if skill.StoragePath == "" {
		skill.StoragePath = reg.StoragePath
	}
	return skill, nil
}

func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func decodeSkill(body []byte) *registry.Skill {
	var resp registerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return &registry.Skill{}
	}
	if resp.Skill != nil {
		return resp.Skill
	}
	if resp.Data.Skill != nil {
		return resp.Data.Skill
	}
	return &registry.Skill{}
}

// errorCode reads a machine-readable code from "code" or "error.code".
func errorCode(body []byte) string {
	var payload struct {
		Code  string `json:"code"`
		Error any    `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Code != "" {
		return payload.Code
	}
	if e, ok := payload.Error.(map[string]any); ok {
		if code, ok := e["code"].(string); ok {
			return code
		}
	}
	return ""
}
