package upload

import (
	"encoding/json"
	"geo-upload/internal/core/domain"
	"net/http"
)

// V1StepResponse is the body of every workflow answer
type V1StepResponse struct {
	Success    bool             `json:"success"`
	RedirectTo string           `json:"redirect_to,omitempty"`
	Progress   string           `json:"progress,omitempty"`
	Step       domain.Step      `json:"step,omitempty"`
	Form       *domain.FormView `json:"form,omitempty"`
	Layer      *domain.LayerRef `json:"layer,omitempty"`
	NoUpload   bool             `json:"no_upload,omitempty"`
	Errors     []string         `json:"errors,omitempty"`
	Code       string           `json:"code,omitempty"`
}

// V1ProgressResponse is the progress of the running import
type V1ProgressResponse struct {
	Success         bool            `json:"success"`
	State           domain.JobState `json:"state"`
	PercentComplete float64         `json:"percent_complete"`
}

func stepURL(step domain.Step) string {
	if step == domain.StepSave {
		return BasePath + "/"
	}
	return BasePath + "/" + string(step)
}

func failureStatus(kind domain.FailureKind) int {
	switch kind {
	case domain.FailureValidation, domain.FailureUnsupported, domain.FailureBadRequest:
		return http.StatusBadRequest
	case domain.FailureNotFound:
		return http.StatusNotFound
	case domain.FailureForbidden:
		return http.StatusForbidden
	case domain.FailureImport:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// toV1StepResponse maps a workflow response to its status and body
func toV1StepResponse(resp domain.StepResponse) (int, V1StepResponse) {
	switch resp.Kind {
	case domain.ResponseRedirect:
		return http.StatusOK, V1StepResponse{Success: true, RedirectTo: stepURL(resp.Step)}
	case domain.ResponseProgress:
		return http.StatusOK, V1StepResponse{
			Success:    true,
			RedirectTo: stepURL(resp.Step),
			Progress:   BasePath + "/progress",
		}
	case domain.ResponseForm:
		return http.StatusOK, V1StepResponse{Success: true, Step: resp.Step, Form: resp.Form}
	case domain.ResponseComplete:
		body := V1StepResponse{Success: true, Layer: resp.Layer}
		if resp.Layer != nil {
			body.RedirectTo = resp.Layer.URL
		}
		return http.StatusOK, body
	case domain.ResponseNoUpload:
		return http.StatusOK, V1StepResponse{Success: true, NoUpload: true}
	default:
		return failureStatus(resp.Failure), V1StepResponse{Success: false, Errors: resp.Errors, Code: resp.Code}
	}
}

func (h *HandlerV1) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}

func (h *HandlerV1) writeError(w http.ResponseWriter, status int, messages ...string) {
	h.writeJSON(w, status, V1StepResponse{Success: false, Errors: messages})
}
