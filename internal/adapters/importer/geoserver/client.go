// Package geoserver talks to the GeoServer importer REST API.
package geoserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"geo-upload/internal/config"
	"geo-upload/internal/core/domain"
	"geo-upload/internal/core/port"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const maxErrorBody = 4096

// Client is the import service adapter backed by the GeoServer importer
type Client struct {
	baseURL      string
	workspace    string
	username     string
	password     string
	pollInterval time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
}

var _ port.ImportService = (*Client)(nil)

// NewClient creates a Client
func NewClient(cfg config.ImporterConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		workspace:    cfg.Workspace,
		username:     cfg.Username,
		password:     cfg.Password,
		pollInterval: time.Second,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// apiError is a non 2xx answer of the importer
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("importer answered %d: %s", e.Status, e.Message)
}

func (e *apiError) clientSide() bool {
	return e.Status >= 400 && e.Status < 500
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, contentType, reader, out)
}

// send issues an authenticated request and decodes a JSON answer into out
func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create %s %s request: %w", method, path, err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return readAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func readAPIError(resp *http.Response) *apiError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := strings.TrimSpace(string(data))
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return &apiError{Status: resp.StatusCode, Message: message}
}

// configError turns a rejected request into an ImportConfigError; other
// failures are returned unchanged
func configError(op string, err error) error {
	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.clientSide() {
		return &domain.ImportConfigError{Op: op, Message: apiErr.Message}
	}
	return err
}

func importPath(job domain.JobHandle) string {
	return "/imports/" + job.ImportID
}

func taskPath(job domain.JobHandle) string {
	return fmt.Sprintf("/imports/%s/tasks/%d", job.ImportID, job.TaskID)
}
