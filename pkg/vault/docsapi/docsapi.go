// Package docsapi provides a vault backed by the platform's Documents API.
package docsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/papercomputeco/skillgate/pkg/utils"
	"github.com/papercomputeco/skillgate/pkg/vault"
)

// Config holds configuration for the Documents API vault.
type Config struct {
	// URL is the Documents API base URL (e.g., "http://context-management:8000").
	URL string

	// APIKey is sent as the internal API key header.
	APIKey string

	// Timeout bounds each request. Defaults to 30s.
	Timeout time.Duration
}

// HTTPError is a non-2xx response from the Documents API.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return "documents api: " + e.Message
}

// Store implements vault.Store over the Documents API. A ref's directory
// becomes the document path and its base name the document title.
type Store struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewStore creates a new Documents API vault.
func NewStore(c Config) (*Store, error) {
	if c.URL == "" {
		return nil, errors.New("documents API URL is required")
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Store{
		baseURL: strings.TrimRight(c.URL, "/"),
		apiKey:  c.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type documentResponse struct {
	ID   string `json:"id"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Create uploads a new document. The API reports an existing document as a
// 400 or 409 whose body contains "already exists".
func (s *Store) Create(ctx context.Context, ref vault.Ref, content []byte, mimeType string) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}

	dir, file := path.Split(ref.Path)
	body, contentType, err := multipartBody(file, content, mimeType, map[string]string{
		"title": file,
		"path":  strings.TrimSuffix(dir, "/"),
	})
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s/api/documents/%s", s.baseURL, url.PathEscape(ref.Principal.UserID))
	status, respBody, err := s.do(ctx, http.MethodPost, u, ref, body, contentType)
	if err != nil {
		return "", err
	}

	switch {
	case status >= 200 && status < 300:
		return documentID(respBody, ref.Path), nil
	case (status == http.StatusBadRequest || status == http.StatusConflict) &&
		strings.Contains(strings.ToLower(string(respBody)), "already exists"):
		return "", fmt.Errorf("%s: %w", ref.Path, vault.ErrConflict)
	default:
		return "", &HTTPError{Status: status, Message: utils.ErrorMessage(status, respBody)}
	}
}

// Update replaces the file of the document addressed by ref.Path.
func (s *Store) Update(ctx context.Context, ref vault.Ref, content []byte) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}

	_, file := path.Split(ref.Path)
	body, contentType, err := multipartBody(file, content, vault.MimeType(file), nil)
	if err != nil {
		return "", err
	}

	status, respBody, err := s.do(ctx, http.MethodPut, s.fileURL(ref), ref, body, contentType)
	if err != nil {
		return "", err
	}

	switch {
	case status >= 200 && status < 300:
		return documentID(respBody, ref.Path), nil
	case status == http.StatusNotFound:
		return "", fmt.Errorf("%s: %w", ref.Path, vault.ErrNotFound)
	default:
		return "", &HTTPError{Status: status, Message: utils.ErrorMessage(status, respBody)}
	}
}

func (s *Store) Get(ctx context.Context, ref vault.Ref) ([]byte, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	status, respBody, err := s.do(ctx, http.MethodGet, s.fileURL(ref), ref, nil, "")
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusOK:
		return respBody, nil
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", ref.Path, vault.ErrNotFound)
	default:
		return nil, &HTTPError{Status: status, Message: utils.ErrorMessage(status, respBody)}
	}
}

func (s *Store) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

func (s *Store) fileURL(ref vault.Ref) string {
	segments := strings.Split(ref.Path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s/api/documents/%s/%s/file",
		s.baseURL, url.PathEscape(ref.Principal.UserID), strings.Join(segments, "/"))
}

func (s *Store) do(ctx context.Context, method, u string, ref vault.Ref, body io.Reader, contentType string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(utils.HeaderInternalAPIKey, s.apiKey)
	req.Header.Set(utils.HeaderUserID, ref.Principal.UserID)
	if ref.Principal.TenantID != "" {
		req.Header.Set(utils.HeaderTenantID, ref.Principal.TenantID)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("sending %s request: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func multipartBody(filename string, content []byte, mimeType string, fields map[string]string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", mimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("creating file part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", fmt.Errorf("writing file part: %w", err)
	}

	for _, k := range []string{"title", "path"} {
		v, ok := fields[k]
		if !ok {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("writing %s field: %w", k, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func documentID(body []byte, fallback string) string {
	var doc documentResponse
	if err := json.Unmarshal(body, &doc); err == nil {
		if doc.ID != "" {
			return doc.ID
		}
		if doc.Data.ID != "" {
			return doc.Data.ID
		}
	}
	return fallback
}
