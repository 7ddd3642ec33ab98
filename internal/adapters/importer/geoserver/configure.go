package geoserver

import (
	"context"
	"geo-upload/internal/core/domain"
)

// ApplySRS declares the coordinate reference system of the job layer
func (c *Client) ApplySRS(ctx context.Context, job domain.JobHandle, srsCode string) error {
	layer := layerBody{Layer: layerInfo{SRS: srsCode}}
	if err := c.do(ctx, "PUT", taskPath(job)+"/layer", layer, nil); err != nil {
		return configError("srs", err)
	}
	return nil
}

// ApplyGeometryFromColumns builds point geometries from a latitude and a longitude column
func (c *Client) ApplyGeometryFromColumns(ctx context.Context, job domain.JobHandle, latField string, lngField string) error {
	transform := transformBody{
		Type:     "AttributesToPointGeometryTransform",
		LatField: latField,
		LngField: lngField,
	}
	if err := c.do(ctx, "POST", taskPath(job)+"/transforms", transform, nil); err != nil {
		return configError("csv", err)
	}
	return nil
}

// ApplyTimeConfig converts the time attributes and enables the time dimension
func (c *Client) ApplyTimeConfig(ctx context.Context, job domain.JobHandle, cfg domain.TimeConfig) error {
	attrs := []domain.TimeAttribute{cfg.Start}
	if cfg.End != nil {
		attrs = append(attrs, *cfg.End)
	}

	for _, attr := range attrs {
		if attr.Transform == domain.TimeTransformNone {
			continue
		}
		transform := transformBody{
			Type:  string(attr.Transform),
			Field: attr.Name,
		}
		if attr.Transform == domain.TimeTransformDateFormat {
			transform.Format = attr.Format
		}
		if err := c.do(ctx, "POST", taskPath(job)+"/transforms", transform, nil); err != nil {
			return configError("time", err)
		}
	}

	layer := layerBody{Layer: layerInfo{
		Metadata: map[string]any{"time": dimension(cfg)},
	}}
	if err := c.do(ctx, "PUT", taskPath(job)+"/layer", layer, nil); err != nil {
		return configError("time", err)
	}
	return nil
}
