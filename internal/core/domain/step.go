package domain

// StepRequest is one inbound request against the upload workflow
type StepRequest struct {
	SessionToken string
	UserID       string
	// Step is empty when the request enters the workflow without a step name
	Step Step
	// Write is true for form submissions, false for reads
	Write         bool
	Form          map[string]string
	Files         []UploadedFile
	ResumeID      string
	WantsProgress bool
}

// FormValue returns a submitted field, or an empty string
func (r StepRequest) FormValue(name string) string {
	if r.Form == nil {
		return ""
	}
	return r.Form[name]
}

// ResponseKind tells the transport how to answer
type ResponseKind string

const (
	ResponseRedirect ResponseKind = "redirect"
	ResponseForm     ResponseKind = "form"
	ResponseProgress ResponseKind = "progress"
	ResponseComplete ResponseKind = "complete"
	ResponseError    ResponseKind = "error"
	ResponseNoUpload ResponseKind = "no_upload"
)

// FailureKind classifies an error response
type FailureKind string

const (
	FailureValidation  FailureKind = "validation"
	FailureUnsupported FailureKind = "unsupported"
	FailureImport      FailureKind = "import"
	FailureNotFound    FailureKind = "not_found"
	FailureForbidden   FailureKind = "forbidden"
	FailureBadRequest  FailureKind = "bad_request"
	FailureUnexpected  FailureKind = "unexpected"
)

// StepResponse is what the orchestrator decided for a request
type StepResponse struct {
	Kind ResponseKind
	// Step is the redirect target, or the step whose form is rendered
	Step    Step
	Form    *FormView
	Layer   *LayerRef
	Errors  []string
	Failure FailureKind
	// Code is the correlation code of an unexpected error
	Code string
}

// FormView is the data a client needs to render the form of a step
type FormView struct {
	LayerName   string    `json:"layer_name,omitempty"`
	AsyncUpload bool      `json:"async_upload"`
	Errors      []string  `json:"errors,omitempty"`
	Save        *SaveForm `json:"save,omitempty"`
	SRS         *SRSForm  `json:"srs,omitempty"`
	CSV         *CSVForm  `json:"csv,omitempty"`
	Time        *TimeForm `json:"time,omitempty"`
}

// SaveForm is the context of the initial upload form
type SaveForm struct {
	StorageRemainingMB uint64   `json:"storage_remaining_mb"`
	EnoughStorage      bool     `json:"enough_storage"`
	Incomplete         []Upload `json:"incomplete"`
}

// SRSForm prompts for a coordinate reference system
type SRSForm struct {
	NativeCRS string `json:"native_crs"`
	Selected  string `json:"selected,omitempty"`
}

// CSVForm prompts for the latitude and longitude columns
type CSVForm struct {
	PresentChoices  bool     `json:"present_choices"`
	PointCandidates []string `json:"point_candidates"`
	SelectedLat     string   `json:"selected_lat"`
	SelectedLng     string   `json:"selected_lng"`
	GuessedLatOrLng bool     `json:"guessed_lat_or_lng"`
}

// TimeForm offers the attributes usable as a time dimension
type TimeForm struct {
	TimeNames []string `json:"time_names"`
	TextNames []string `json:"text_names"`
	YearNames []string `json:"year_names"`
}
