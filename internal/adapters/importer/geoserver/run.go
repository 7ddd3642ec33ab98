package geoserver

import (
	"context"
	"errors"
	"fmt"
	"geo-upload/internal/core/domain"
	"io"
	"net/http"
	"net/url"
	"time"
)

// RunToCompletion executes the job and waits until the task settles
func (c *Client) RunToCompletion(ctx context.Context, job domain.JobHandle) error {
	if err := c.do(ctx, "POST", importPath(job), nil, nil); err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.clientSide() {
			return &domain.ImportRunError{Message: apiErr.Message}
		}
		return fmt.Errorf("failed to run import %s: %w", job, err)
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.JobState(ctx, job)
		if err != nil {
			return err
		}

		switch status.State {
		case domain.JobStateComplete:
			c.logger.Info("import job complete", "job", job.String())
			return nil
		case domain.JobStateError:
			return &domain.ImportRunError{Message: status.Reason}
		case domain.JobStateIncomplete:
			return &domain.ImportRunError{Message: "import is not ready to run: " + status.Reason}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Finalize publishes the imported layer with its catalog metadata
func (c *Client) Finalize(ctx context.Context, job domain.JobHandle, user string, metadata domain.LayerMetadata) (*domain.LayerRef, error) {
	var current layerBody
	if err := c.do(ctx, "GET", taskPath(job)+"/layer", nil, &current); err != nil {
		return nil, fmt.Errorf("failed to get layer of %s: %w", job, err)
	}

	update := layerInfo{
		Title:    metadata.Title,
		Abstract: metadata.Abstract,
		Metadata: map[string]any{"owner": user},
	}
	if update.Title == "" {
		update.Title = current.Layer.Name
	}
	if metadata.Permissions != "" {
		update.Metadata["permissions"] = metadata.Permissions
	}
	if metadata.StyleURL != "" {
		if err := c.createStyle(ctx, current.Layer.Name, metadata.StyleURL); err != nil {
			return nil, configError("style", err)
		}
		update.Style = &styleRef{Name: current.Layer.Name}
	}

	if err := c.do(ctx, "PUT", taskPath(job)+"/layer", layerBody{Layer: update}, nil); err != nil {
		return nil, fmt.Errorf("failed to update layer of %s: %w", job, err)
	}

	return &domain.LayerRef{
		Name:      current.Layer.Name,
		Workspace: c.workspace,
		URL:       fmt.Sprintf("%s/workspaces/%s/layers/%s", c.baseURL, c.workspace, current.Layer.Name),
	}, nil
}

const maxStyleSize = 1 << 20

// createStyle downloads an SLD document and registers it as a workspace style
func (c *Client) createStyle(ctx context.Context, name, location string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", location, nil)
	if err != nil {
		return fmt.Errorf("failed to create style download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download style: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download style: status %d", resp.StatusCode)
	}

	path := fmt.Sprintf("/workspaces/%s/styles?name=%s", url.PathEscape(c.workspace), url.QueryEscape(name))
	return c.send(ctx, "POST", path, "application/vnd.ogc.sld+xml", io.LimitReader(resp.Body, maxStyleSize), nil)
}
