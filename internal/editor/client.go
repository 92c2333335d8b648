package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/parser"
	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/selectortest"
)

// APIError is a server-reported failure: the envelope came back with
// success=false. Details carries field-level validation messages and is
// logged, never displayed.
type APIError struct {
	Message string
	Details map[string]string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the admin parser API. Every call decodes the common
// response envelope; a success=false body surfaces as *APIError, anything
// else as a transport error.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// apiEnvelope mirrors the server's response shape.
type apiEnvelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func (c *Client) ListSites(ctx context.Context) ([]*parser.SiteConfig, error) {
	var sites []*parser.SiteConfig
	if err := c.call(ctx, http.MethodGet, "/api/admin/parser/sites", nil, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

func (c *Client) GetSite(ctx context.Context, id string) (*parser.SiteConfig, error) {
	var site parser.SiteConfig
	if err := c.call(ctx, http.MethodGet, "/api/admin/parser/sites/"+id, nil, &site); err != nil {
		return nil, err
	}
	return &site, nil
}

// SaveSite creates the site when editingID is empty and updates it
// otherwise.
func (c *Client) SaveSite(ctx context.Context, editingID string, cfg *parser.SiteConfig) (*parser.SiteConfig, error) {
	method := http.MethodPost
	path := "/api/admin/parser/sites"
	if editingID != "" {
		method = http.MethodPut
		path += "/" + editingID
	}
	var saved parser.SiteConfig
	if err := c.call(ctx, method, path, cfg, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) DeleteSite(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/api/admin/parser/sites/"+id, nil, nil)
}

// ToggleSite flips the enabled flag and returns the server's message.
func (c *Client) ToggleSite(ctx context.Context, id string) (string, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/admin/parser/sites/"+id+"/toggle", nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// TestSelectors asks the server to evaluate the selector set against url.
func (c *Client) TestSelectors(ctx context.Context, url, userAgent string, render bool, selectors parser.SelectorSet) (map[string]selectortest.FieldResult, error) {
	body := map[string]interface{}{
		"url":       url,
		"selectors": selectors,
	}
	if userAgent != "" {
		body["userAgent"] = userAgent
	}
	if render {
		body["render"] = true
	}
	var data struct {
		Results map[string]selectortest.FieldResult `json:"results"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/admin/parser/test-selectors", body, &data); err != nil {
		return nil, err
	}
	return data.Results, nil
}

// Export downloads the full configuration document and writes it to w.
func (c *Client) Export(ctx context.Context, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/admin/parser/export", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("export failed with status %d", resp.StatusCode)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// Import uploads a raw configuration document.
func (c *Client) Import(ctx context.Context, config json.RawMessage) error {
	body := map[string]json.RawMessage{"config": config}
	return c.call(ctx, http.MethodPost, "/api/admin/parser/import", body, nil)
}

// call issues a request and unmarshals the envelope's data into out when
// out is non-nil.
func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	env, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*apiEnvelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		message := env.Error
		if message == "" {
			message = "Request failed"
		}
		return nil, &APIError{Message: message, Details: env.Details}
	}
	return &env, nil
}
