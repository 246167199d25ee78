package translate

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

	"github.com/srt-studio/backend/internal/subtitle/transform"
)

// maxErrorBody bounds how much of a failed reply ends up in an error message
const maxErrorBody = 512

// APIError is a non-200 reply from a translation service
type APIError struct {
	Engine string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Engine, e.Status, e.Body)
}

// apiClient holds the HTTP plumbing the engines share
type apiClient struct {
	engine string
	http   *http.Client
}

func newAPIClient(engine string, timeout time.Duration) apiClient {
	return apiClient{engine: engine, http: &http.Client{Timeout: timeout}}
}

func (c apiClient) postJSON(ctx context.Context, endpoint string, header http.Header, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	setHeaders(req, header, "application/json")
	return c.do(req, out)
}

func (c apiClient) postForm(ctx context.Context, endpoint string, header http.Header, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	setHeaders(req, header, "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func setHeaders(req *http.Request, header http.Header, contentType string) {
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", contentType)
}

// do sends req and decodes a 200 reply into out. A rejected key is reported
// as ErrTranslatorUnavailable since every later block would fail the same way.
func (c apiClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s API request: %w", c.engine, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		apiErr := &APIError{Engine: c.engine, Status: resp.StatusCode, Body: string(body)}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%w: %w", transform.ErrTranslatorUnavailable, apiErr)
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse %s response: %w", c.engine, err)
	}
	return nil
}

func keyMissing(engine string) error {
	return fmt.Errorf("%s API key not configured: %w", engine, transform.ErrTranslatorUnavailable)
}
