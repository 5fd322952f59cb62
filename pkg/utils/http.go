package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Internal service headers shared by the platform's HTTP APIs.
const (
	HeaderInternalAPIKey = "x-internal-api-key"
	HeaderUserID         = "x-user-id"
	HeaderTenantID       = "x-tenant-id"
)

// ErrorMessage renders a non-2xx response as "HTTP <status>: <detail>",
// taking the detail from a JSON "error" or "message" field when present and
// from the (truncated) raw body otherwise.
func ErrorMessage(status int, body []byte) string {
	msg := fmt.Sprintf("HTTP %d", status)

	var payload struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch e := payload.Error.(type) {
		case string:
			if e != "" {
				return msg + ": " + e
			}
		case map[string]any:
			if m, ok := e["message"].(string); ok && m != "" {
				return msg + ": " + m
			}
		}
		if payload.Message != "" {
			return msg + ": " + payload.Message
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return msg + ": " + Truncate(text, 200)
	}
	return msg
}
