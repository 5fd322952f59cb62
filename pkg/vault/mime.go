package vault

import (
	"path"
	"strings"
)

// DefaultMimeType is used for unknown extensions.
const DefaultMimeType = "text/plain"

var mimeTypes = map[string]string{
	"md":   "text/markdown",
	"py":   "text/plain",
	"txt":  "text/plain",
	"json": "application/json",
	"csv":  "text/csv",
}

// MimeType guesses the content type of an artifact from its extension.
func MimeType(p string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(p)), ".")
	if m, ok := mimeTypes[ext]; ok {
		return m
	}
	return DefaultMimeType
}
