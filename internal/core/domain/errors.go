package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSessionNotFound is an error thrown when no upload session is bound to the client token
var ErrSessionNotFound = errors.New("session not found")

// ErrUploadNotFound is an error thrown when the ledger has no upload for the given identifier
var ErrUploadNotFound = errors.New("upload not found")

// ErrForbidden is an error thrown when the caller does not own the upload
var ErrForbidden = errors.New("forbidden")

// ErrStepNotInSequence is an error thrown when a step is not part of the upload type sequence
var ErrStepNotInSequence = errors.New("step not in sequence")

// ErrUnknownStep is an error thrown when a step name is not recognized
var ErrUnknownStep = errors.New("unknown step")

// ErrImportJobAlreadySet is an error thrown when an import job is attached twice to a session
var ErrImportJobAlreadySet = errors.New("import job already set")

// ErrImportNotStarted is an error thrown when a session has no import job yet
var ErrImportNotStarted = errors.New("import not started")

// ErrImportAlreadyRun is an error thrown when the run step is executed twice
var ErrImportAlreadyRun = errors.New("import already run")

// ErrImportNotRun is an error thrown when finalizing an import that never ran
var ErrImportNotRun = errors.New("import has not been run")

// ValidationError carries user input problems, flattened to messages
type ValidationError struct {
	Messages []string
}

// NewValidationError builds a ValidationError from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// SupportedExtensions lists the base file extensions accepted by the save step
var SupportedExtensions = []string{".shp", ".tif", ".tiff", ".kml", ".csv", ".zip"}

// UnsupportedTypeError is thrown when the uploaded file type has no step sequence
type UnsupportedTypeError struct {
	Extension  string
	UploadType UploadType
}

func (e *UnsupportedTypeError) Error() string {
	if e.UploadType != "" {
		return fmt.Sprintf("unsupported upload type: %s", e.UploadType)
	}
	ext := e.Extension
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("Only Shapefiles, GeoTiffs, KML, CSV and zip files are supported. You uploaded a %s file", ext)
}

// ImportStartError is thrown when the import service cannot open a job for the staged data
type ImportStartError struct {
	Message string
	Err     error
}

func (e *ImportStartError) Error() string {
	return "could not start import: " + e.Message
}

func (e *ImportStartError) Unwrap() error {
	return e.Err
}

// ImportConfigError is thrown when the import service rejects a job configuration
type ImportConfigError struct {
	Op      string
	Message string
}

func (e *ImportConfigError) Error() string {
	return fmt.Sprintf("import configuration rejected (%s): %s", e.Op, e.Message)
}

// ImportRunError is thrown when the import fails while running
type ImportRunError struct {
	Message string
}

func (e *ImportRunError) Error() string {
	return "import failed: " + e.Message
}
