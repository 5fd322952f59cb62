package api

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

	"github.com/papercomputeco/skillgate/pkg/principal"
	"github.com/papercomputeco/skillgate/pkg/provision"
	"github.com/papercomputeco/skillgate/pkg/utils"
)

// Client calls a remote skillgate API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at target
// (e.g., "http://localhost:8090").
func NewClient(target string, timeout time.Duration) (*Client, error) {
	if target == "" {
		return nil, errors.New("API target is required")
	}
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		baseURL:    strings.TrimRight(target, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// CreateSkill posts a skill for p. Provisioning failures are returned in the
// Response; the error is non-nil only when no Response could be read.
func (c *Client) CreateSkill(ctx context.Context, p principal.Principal, req CreateSkillRequest) (provision.Response, error) {
	var resp provision.Response
	status, body, err := c.post(ctx, "/v1/skills", p, req)
	if err != nil {
		return resp, err
	}

	if err := json.Unmarshal(body, &resp); err != nil || resp.Status == "" {
		return resp, fmt.Errorf("create skill: %s", utils.ErrorMessage(status, body))
	}
	return resp, nil
}

// Validate checks code on the server.
func (c *Client) Validate(ctx context.Context, req ValidateRequest) (ValidateResponse, error) {
	var resp ValidateResponse
	status, body, err := c.post(ctx, "/v1/validate", principal.Principal{}, req)
	if err != nil {
		return resp, err
	}
	if status != http.StatusOK {
		return resp, fmt.Errorf("validate: %s", utils.ErrorMessage(status, body))
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return resp, fmt.Errorf("decoding response: %w", err)
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, path string, p principal.Principal, payload any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.UserID != "" {
		req.Header.Set(utils.HeaderUserID, p.UserID)
	}
	if p.TenantID != "" {
		req.Header.Set(utils.HeaderTenantID, p.TenantID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, body, nil
}
