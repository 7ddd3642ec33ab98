package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UploadType represents the kind of data being uploaded
type UploadType string

const (
	UploadTypeShapefile UploadType = "shapefile"
	UploadTypeRaster    UploadType = "raster"
	UploadTypeKML       UploadType = "kml"
	UploadTypeCSV       UploadType = "csv"
)

// Step represents a step of the upload workflow
type Step string

const (
	StepNone  Step = "none"
	StepSave  Step = "save"
	StepSRS   Step = "srs"
	StepCSV   Step = "csv"
	StepTime  Step = "time"
	StepRun   Step = "run"
	StepFinal Step = "final"
)

// Steps is the closed set of steps the workflow dispatches
var Steps = []Step{StepSave, StepSRS, StepCSV, StepTime, StepRun, StepFinal}

// ParseStep converts a path segment into a Step
func ParseStep(name string) (Step, error) {
	for _, step := range Steps {
		if string(step) == name {
			return step, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStep, name)
}

// ResourceType is the kind of catalog resource an import produces
type ResourceType string

const (
	ResourceTypeUnknown     ResourceType = ""
	ResourceTypeFeatureType ResourceType = "featureType"
	ResourceTypeCoverage    ResourceType = "coverage"
)

// UploadOptions holds what the user chose along the workflow
type UploadOptions struct {
	Title       string      `json:"title,omitempty"`
	Abstract    string      `json:"abstract,omitempty"`
	Permissions string      `json:"permissions,omitempty"`
	StyleFile   string      `json:"style_file,omitempty"`
	SRS         string      `json:"srs,omitempty"`
	LatField    string      `json:"lat_field,omitempty"`
	LngField    string      `json:"lng_field,omitempty"`
	Time        *TimeConfig `json:"time,omitempty"`
}

// UploadSession is the live record of one in-progress upload
type UploadSession struct {
	ID                 uuid.UUID     `json:"id"`
	UserID             string        `json:"user_id"`
	UploadType         UploadType    `json:"upload_type"`
	CompletedStep      Step          `json:"completed_step"`
	StagingPrefix      string        `json:"staging_prefix"`
	BaseFileName       string        `json:"base_file_name"`
	LayerName          string        `json:"layer_name"`
	ImportJob          *JobHandle    `json:"import_job,omitempty"`
	ImportRun          bool          `json:"import_run"`
	TargetResourceType ResourceType  `json:"target_resource_type,omitempty"`
	Options            UploadOptions `json:"options"`
	CreatedAt          time.Time     `json:"created_at"`
}

// NewUploadSession creates a session that has not completed any step
func NewUploadSession(id uuid.UUID, userID string, uploadType UploadType, stagingPrefix, baseFileName, layerName string, now time.Time) *UploadSession {
	return &UploadSession{
		ID:            id,
		UserID:        userID,
		UploadType:    uploadType,
		CompletedStep: StepNone,
		StagingPrefix: stagingPrefix,
		BaseFileName:  baseFileName,
		LayerName:     layerName,
		CreatedAt:     now,
	}
}

// SetImportJob attaches the import job, once
func (s *UploadSession) SetImportJob(job JobHandle) error {
	if s.ImportJob != nil {
		return ErrImportJobAlreadySet
	}
	s.ImportJob = &job
	return nil
}

// MarkImportRun records that the run step started
func (s *UploadSession) MarkImportRun() error {
	if s.ImportRun {
		return ErrImportAlreadyRun
	}
	if s.ImportJob == nil {
		return ErrImportNotStarted
	}
	s.ImportRun = true
	return nil
}

// Job returns the import job handle
func (s *UploadSession) Job() (JobHandle, error) {
	if s.ImportJob == nil {
		return JobHandle{}, ErrImportNotStarted
	}
	return *s.ImportJob, nil
}

// StagingPrefixFor returns the staging storage prefix owned by an upload
func StagingPrefixFor(id uuid.UUID) string {
	return "uploads/" + id.String() + "/"
}
