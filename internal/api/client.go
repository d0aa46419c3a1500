// Package api is the HTTP client for the remote compliance platform. The
// platform owns classification, scoring and document rendering; this client
// only moves JSON and bytes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"conformly/internal/models"
)

// KeySource supplies the bearer token attached to authenticated requests.
type KeySource interface {
	APIKey() (string, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	keys       KeySource
	log        *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, keys KeySource, log *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		keys:       keys,
		log:        log,
	}
}

// DemoKey requests a demo API key. This is the only unauthenticated call.
func (c *Client) DemoKey(ctx context.Context) (string, error) {
	var resp demoKeyResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/demo-key", nil, &resp, false); err != nil {
		return "", err
	}
	if resp.APIKey == "" {
		return "", fmt.Errorf("demo login returned no api key")
	}
	return resp.APIKey, nil
}

// CreateSystem registers one AI system and returns its server-assigned id.
func (c *Client) CreateSystem(ctx context.Context, req CreateSystemRequest) (*CreateSystemResponse, error) {
	var resp CreateSystemResponse
	if err := c.doJSON(ctx, http.MethodPost, "/systems", req, &resp, true); err != nil {
		return nil, err
	}
	if resp.ID == 0 {
		return nil, fmt.Errorf("create system returned no id")
	}
	return &resp, nil
}

// GenerateDocuments triggers document generation for one system, forwarding
// the onboarding answers as generation context when present.
func (c *Client) GenerateDocuments(ctx context.Context, systemID int64, genCtx *GenerationContext) (*GenerateDocumentsResponse, error) {
	body := map[string]any{}
	if genCtx != nil {
		body["context"] = genCtx
	}
	path := fmt.Sprintf("/systems/%d/generate-documents", systemID)
	var resp GenerateDocumentsResponse
	if err := c.doJSON(ctx, http.MethodPost, path, body, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateDraft asks the platform to render compliance document drafts for the
// requested doc types.
func (c *Client) GenerateDraft(ctx context.Context, req DraftRequest) ([]models.ComplianceDocumentDraft, error) {
	if len(req.Docs) == 0 {
		return nil, fmt.Errorf("at least one doc type is required")
	}
	var resp draftResponse
	if err := c.doJSON(ctx, http.MethodPost, "/reports/draft", req, &resp, true); err != nil {
		return nil, err
	}
	return resp.Docs, nil
}

// ExportDocument downloads one rendered document as a binary blob.
func (c *Client) ExportDocument(ctx context.Context, docType models.DocType, format string) ([]byte, error) {
	q := url.Values{}
	q.Set("doc", string(docType))
	q.Set("format", format)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reports/export?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if err := c.authorize(req); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", docType, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.errorFrom(resp)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any, authed bool) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if err := c.authorize(req); err != nil {
			return err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFrom(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) error {
	key, err := c.keys.APIKey()
	if err != nil {
		return fmt.Errorf("no api key available: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	return nil
}

// errorFrom turns a non-2xx response into an error, preferring the platform's
// {"error": ...} payload over the raw status text.
func (c *Client) errorFrom(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr errorResponse
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error != "" {
		return fmt.Errorf("api error (%d): %s", resp.StatusCode, apiErr.Error)
	}
	c.log.Debug("unstructured api error body", zap.Int("status", resp.StatusCode), zap.ByteString("body", raw))
	return fmt.Errorf("api error (%d): %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
