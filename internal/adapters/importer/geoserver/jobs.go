package geoserver

import (
	"context"
	"errors"
	"fmt"
	"geo-upload/internal/core/domain"
)

// StartJob opens an import of the staged data without executing it
func (c *Client) StartJob(ctx context.Context, user string, layerName string, stagedFilePath string, overwrite bool) (domain.JobHandle, error) {
	var req importBody
	req.Import.TargetWorkspace = &workspaceRef{}
	req.Import.TargetWorkspace.Workspace.Name = c.workspace
	req.Import.Data = &remoteData{Type: "remote", Location: stagedFilePath}

	var resp importBody
	if err := c.do(ctx, "POST", "/imports?exec=false", req, &resp); err != nil {
		return domain.JobHandle{}, startError(err)
	}
	if len(resp.Import.Tasks) == 0 {
		return domain.JobHandle{}, &domain.ImportStartError{Message: "no importable data was found in the upload"}
	}

	job := domain.JobHandle{
		ImportID: fmt.Sprint(resp.Import.ID),
		TaskID:   resp.Import.Tasks[0].ID,
	}

	if overwrite {
		task := taskBody{Task: taskInfo{ID: job.TaskID, UpdateMode: "REPLACE"}}
		if err := c.do(ctx, "PUT", taskPath(job), task, nil); err != nil {
			return domain.JobHandle{}, startError(err)
		}
	}

	if layerName != "" {
		layer := layerBody{Layer: layerInfo{Name: layerName}}
		if err := c.do(ctx, "PUT", taskPath(job)+"/layer", layer, nil); err != nil {
			return domain.JobHandle{}, startError(err)
		}
	}

	c.logger.Info("import job opened", "job", job.String(), "user", user, "layer", layerName)
	return job, nil
}

func startError(err error) error {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return &domain.ImportStartError{Message: apiErr.Message, Err: err}
	}
	return err
}

func (c *Client) task(ctx context.Context, job domain.JobHandle) (taskInfo, error) {
	var resp taskBody
	if err := c.do(ctx, "GET", taskPath(job), nil, &resp); err != nil {
		return taskInfo{}, fmt.Errorf("failed to get task %s: %w", job, err)
	}
	return resp.Task, nil
}

// JobState returns the state of the job task
func (c *Client) JobState(ctx context.Context, job domain.JobHandle) (domain.JobStatus, error) {
	task, err := c.task(ctx, job)
	if err != nil {
		return domain.JobStatus{}, err
	}
	return jobStatus(task), nil
}

// Describe returns the resource the job will produce
func (c *Client) Describe(ctx context.Context, job domain.JobHandle) (*domain.ImportItem, error) {
	task, err := c.task(ctx, job)
	if err != nil {
		return nil, err
	}

	var resp layerBody
	if err := c.do(ctx, "GET", taskPath(job)+"/layer", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get layer of %s: %w", job, err)
	}

	item := &domain.ImportItem{
		LayerName:    resp.Layer.Name,
		ResourceType: resourceType(task),
		NativeCRS:    resp.Layer.SRS,
	}
	for _, attr := range resp.Layer.Attributes {
		item.Attributes = append(item.Attributes, domain.Attribute{
			Name:    attr.Name,
			Binding: binding(attr.Binding),
		})
	}
	return item, nil
}

// Progress returns how far a running job is
func (c *Client) Progress(ctx context.Context, job domain.JobHandle) (domain.Progress, error) {
	var resp progressBody
	if err := c.do(ctx, "GET", taskPath(job)+"/progress", nil, &resp); err != nil {
		return domain.Progress{}, fmt.Errorf("failed to get progress of %s: %w", job, err)
	}

	progress := domain.Progress{State: jobStatus(taskInfo{State: resp.State, ErrorMessage: resp.Message}).State}
	switch {
	case progress.State == domain.JobStateComplete:
		progress.PercentComplete = 100
	case resp.Total > 0:
		progress.PercentComplete = 100 * float64(resp.Progress) / float64(resp.Total)
	}
	return progress, nil
}
