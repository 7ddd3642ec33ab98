package domain

import "fmt"

// JobHandle references a job in the import service
type JobHandle struct {
	ImportID string `json:"import_id"`
	TaskID   int    `json:"task_id"`
}

func (h JobHandle) String() string {
	return fmt.Sprintf("%s/%d", h.ImportID, h.TaskID)
}

// JobState is the state of an import job
type JobState string

const (
	JobStateReady      JobState = "READY"
	JobStateIncomplete JobState = "INCOMPLETE"
	JobStateRunning    JobState = "RUNNING"
	JobStateComplete   JobState = "COMPLETE"
	JobStateError      JobState = "ERROR"
)

// IncompleteReasonNoCRS is reported when the data has a missing or unknown CRS
const IncompleteReasonNoCRS = "NO_CRS"

// JobStatus is the state of a job with the reason it is incomplete, if any
type JobStatus struct {
	State  JobState
	Reason string
}

// NeedsCRS reports whether the job is blocked on a coordinate reference system
func (s JobStatus) NeedsCRS() bool {
	return s.State == JobStateIncomplete && s.Reason == IncompleteReasonNoCRS
}

// AttributeBinding is the storage type of an attribute
type AttributeBinding string

const (
	BindingPoint    AttributeBinding = "point"
	BindingGeometry AttributeBinding = "geometry"
	BindingInteger  AttributeBinding = "integer"
	BindingLong     AttributeBinding = "long"
	BindingDouble   AttributeBinding = "double"
	BindingString   AttributeBinding = "string"
	BindingDate     AttributeBinding = "date"
	BindingOther    AttributeBinding = "other"
)

// Attribute is a column of the imported schema
type Attribute struct {
	Name    string           `json:"name"`
	Binding AttributeBinding `json:"binding"`
}

// ImportItem describes the resource an import job will produce
type ImportItem struct {
	LayerName    string
	ResourceType ResourceType
	NativeCRS    string
	Attributes   []Attribute
}

// AttributesWithBinding returns attribute names of the given bindings, in schema order
func (i ImportItem) AttributesWithBinding(bindings ...AttributeBinding) []string {
	var names []string
	for _, attr := range i.Attributes {
		for _, binding := range bindings {
			if attr.Binding == binding {
				names = append(names, attr.Name)
				break
			}
		}
	}
	return names
}

// TimeTransform names the transform that turns an attribute into a date
type TimeTransform string

const (
	TimeTransformNone       TimeTransform = ""
	TimeTransformDateFormat TimeTransform = "DateFormatTransform"
	TimeTransformYear       TimeTransform = "IntegerFieldToDateTransform"
)

// TimeAttribute is one end of the time dimension
type TimeAttribute struct {
	Name      string        `json:"name"`
	Transform TimeTransform `json:"transform,omitempty"`
	Format    string        `json:"format,omitempty"`
}

// TimeConfig configures the time dimension of a layer
type TimeConfig struct {
	Start          TimeAttribute  `json:"start"`
	End            *TimeAttribute `json:"end,omitempty"`
	Presentation   string         `json:"presentation"`
	PrecisionValue int            `json:"precision_value,omitempty"`
	PrecisionStep  string         `json:"precision_step,omitempty"`
}

// Progress is the progress of a running import
type Progress struct {
	State           JobState `json:"state"`
	PercentComplete float64  `json:"percent_complete"`
}

// LayerMetadata is what the catalog records with a finalized layer
type LayerMetadata struct {
	Title       string
	Abstract    string
	Permissions string
	// StyleURL is a location the import service can download the SLD style from
	StyleURL string
}

// LayerRef references the layer a finalized import produced
type LayerRef struct {
	Name      string `json:"name"`
	Workspace string `json:"workspace"`
	URL       string `json:"url"`
}

// ImportRunRequest asks a worker to run an import job
type ImportRunRequest struct {
	UploadID  string    `json:"upload_id"`
	ImportJob JobHandle `json:"import_job"`
	UserID    string    `json:"user_id"`
}
