package geoserver

import (
	"geo-upload/internal/core/domain"
	"strings"
)

type workspaceRef struct {
	Workspace struct {
		Name string `json:"name"`
	} `json:"workspace"`
}

type remoteData struct {
	Type     string `json:"type"`
	Location string `json:"location"`
}

type importBody struct {
	Import struct {
		ID              int           `json:"id,omitempty"`
		TargetWorkspace *workspaceRef `json:"targetWorkspace,omitempty"`
		Data            *remoteData   `json:"data,omitempty"`
		Tasks           []taskInfo    `json:"tasks,omitempty"`
	} `json:"import"`
}

type storeRef struct {
	Name string `json:"name"`
}

type taskInfo struct {
	ID           int    `json:"id"`
	State        string `json:"state,omitempty"`
	UpdateMode   string `json:"updateMode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Target       *struct {
		DataStore     *storeRef `json:"dataStore,omitempty"`
		CoverageStore *storeRef `json:"coverageStore,omitempty"`
	} `json:"target,omitempty"`
}

type taskBody struct {
	Task taskInfo `json:"task"`
}

type attributeInfo struct {
	Name    string `json:"name"`
	Binding string `json:"binding"`
}

type layerInfo struct {
	Name       string          `json:"name,omitempty"`
	Title      string          `json:"title,omitempty"`
	Abstract   string          `json:"abstract,omitempty"`
	SRS        string          `json:"srs,omitempty"`
	Attributes []attributeInfo `json:"attributes,omitempty"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	Style      *styleRef       `json:"style,omitempty"`
}

type styleRef struct {
	Name string `json:"name"`
}

type layerBody struct {
	Layer layerInfo `json:"layer"`
}

type progressBody struct {
	Progress int    `json:"progress"`
	Total    int    `json:"total"`
	State    string `json:"state"`
	Message  string `json:"message,omitempty"`
}

type transformBody struct {
	Type     string `json:"type"`
	LatField string `json:"latField,omitempty"`
	LngField string `json:"lngField,omitempty"`
	Field    string `json:"field,omitempty"`
	Format   string `json:"format,omitempty"`
}

type timeDimension struct {
	Enabled      bool   `json:"enabled"`
	Attribute    string `json:"attribute"`
	EndAttribute string `json:"endAttribute,omitempty"`
	Presentation string `json:"presentation"`
	Resolution   int64  `json:"resolution,omitempty"`
}

// jobStatus maps an importer task state to a job status
func jobStatus(task taskInfo) domain.JobStatus {
	switch task.State {
	case "PENDING", "READY":
		return domain.JobStatus{State: domain.JobStateReady}
	case "NO_CRS":
		return domain.JobStatus{State: domain.JobStateIncomplete, Reason: domain.IncompleteReasonNoCRS}
	case "NO_BOUNDS", "NO_FORMAT", "BAD_FORMAT":
		return domain.JobStatus{State: domain.JobStateIncomplete, Reason: task.State}
	case "RUNNING":
		return domain.JobStatus{State: domain.JobStateRunning}
	case "COMPLETE":
		return domain.JobStatus{State: domain.JobStateComplete}
	default:
		reason := task.ErrorMessage
		if reason == "" {
			reason = task.State
		}
		return domain.JobStatus{State: domain.JobStateError, Reason: reason}
	}
}

func resourceType(task taskInfo) domain.ResourceType {
	switch {
	case task.Target == nil:
		return domain.ResourceTypeUnknown
	case task.Target.CoverageStore != nil:
		return domain.ResourceTypeCoverage
	case task.Target.DataStore != nil:
		return domain.ResourceTypeFeatureType
	}
	return domain.ResourceTypeUnknown
}

// binding maps a java class name to an attribute binding
func binding(class string) domain.AttributeBinding {
	short := class[strings.LastIndex(class, ".")+1:]
	switch {
	case strings.Contains(class, ".geom."):
		if short == "Point" {
			return domain.BindingPoint
		}
		return domain.BindingGeometry
	case short == "Integer" || short == "Short" || short == "Byte":
		return domain.BindingInteger
	case short == "Long" || short == "BigInteger":
		return domain.BindingLong
	case short == "Double" || short == "Float" || short == "BigDecimal":
		return domain.BindingDouble
	case short == "String":
		return domain.BindingString
	case short == "Date" || short == "Timestamp":
		return domain.BindingDate
	}
	return domain.BindingOther
}

var stepMillis = map[string]int64{
	"seconds": 1000,
	"minutes": 60 * 1000,
	"hours":   60 * 60 * 1000,
	"days":    24 * 60 * 60 * 1000,
	"months":  30 * 24 * 60 * 60 * 1000,
	"years":   365 * 24 * 60 * 60 * 1000,
}

func dimension(cfg domain.TimeConfig) timeDimension {
	dim := timeDimension{
		Enabled:      true,
		Attribute:    cfg.Start.Name,
		Presentation: cfg.Presentation,
	}
	if cfg.End != nil {
		dim.EndAttribute = cfg.End.Name
	}
	if cfg.Presentation == "DISCRETE_INTERVAL" && cfg.PrecisionValue > 0 {
		dim.Resolution = int64(cfg.PrecisionValue) * stepMillis[cfg.PrecisionStep]
	}
	return dim
}
