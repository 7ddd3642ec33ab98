package upload

import (
	"errors"
	"fmt"
	"geo-upload/internal/adapters/handlers/http/identity"
	"geo-upload/internal/core/domain"
	"maps"
	"mime"
	"mime/multipart"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
)

// GetStepV1 renders a step of the workflow. Without a step it starts a new
// upload, or resumes the one named by the id query parameter.
func (h *HandlerV1) GetStepV1(w http.ResponseWriter, r *http.Request) {
	step, ok := h.parseStep(w, r)
	if !ok {
		return
	}

	req := h.stepRequest(w, r, step)
	if step == "" {
		req.ResumeID = r.URL.Query().Get("id")
	}
	h.handleStep(w, r, req)
}

// PostStepV1 submits the form of a step
func (h *HandlerV1) PostStepV1(w http.ResponseWriter, r *http.Request) {
	step, ok := h.parseStep(w, r)
	if !ok {
		return
	}
	if step == "" {
		step = domain.StepSave
	}

	if r.ContentLength > h.maxUploadSize {
		h.writeError(w, http.StatusRequestEntityTooLarge, tooLarge(h.maxUploadSize))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	form, files, err := h.parseForm(r)
	if r.MultipartForm != nil {
		defer func() {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				h.logger.Warn("could not remove multipart temp files", "error", err)
			}
		}()
	}
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		h.writeError(w, http.StatusRequestEntityTooLarge, tooLarge(maxErr.Limit))
		return
	case err != nil:
		h.logger.Error("error parsing upload form", "error", err)
		h.writeError(w, http.StatusBadRequest, "The form could not be read.")
		return
	}

	req := h.stepRequest(w, r, step)
	req.Write = true
	req.Form = form
	req.Files = files
	h.handleStep(w, r, req)
}

func tooLarge(limit int64) string {
	return fmt.Sprintf("The upload exceeds the maximum size of %d bytes.", limit)
}

func (h *HandlerV1) parseStep(w http.ResponseWriter, r *http.Request) (domain.Step, bool) {
	name := chi.URLParam(r, "step")
	if name == "" {
		return "", true
	}
	step, err := domain.ParseStep(name)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return step, true
}

func (h *HandlerV1) stepRequest(w http.ResponseWriter, r *http.Request, step domain.Step) domain.StepRequest {
	return domain.StepRequest{
		SessionToken:  h.sessionToken(w, r),
		UserID:        identity.UserID(r.Context()),
		Step:          step,
		WantsProgress: r.Header.Get("X-Requested-With") == "XMLHttpRequest",
	}
}

func (h *HandlerV1) handleStep(w http.ResponseWriter, r *http.Request, req domain.StepRequest) {
	resp := h.uploadService.HandleStep(r.Context(), req)
	status, body := toV1StepResponse(resp)
	h.writeJSON(w, status, body)
}

// parseForm reads the submitted fields and files. Repeated fields keep their
// first value.
func (h *HandlerV1) parseForm(r *http.Request) (map[string]string, []domain.UploadedFile, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxMemory); err != nil {
			return nil, nil, err
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, nil, err
	}

	form := make(map[string]string, len(r.PostForm))
	for name, values := range r.PostForm {
		if len(values) > 0 {
			form[name] = values[0]
		}
	}

	if r.MultipartForm == nil {
		return form, nil, nil
	}

	var files []domain.UploadedFile
	for _, field := range slices.Sorted(maps.Keys(r.MultipartForm.File)) {
		for _, header := range r.MultipartForm.File[field] {
			files = append(files, uploadedFile(field, header))
		}
	}
	return form, files, nil
}

func uploadedFile(field string, header *multipart.FileHeader) domain.UploadedFile {
	return domain.UploadedFile{
		Field: field,
		Name:  header.Filename,
		Size:  header.Size,
		Open: func() (domain.FileContent, error) {
			file, err := header.Open()
			if err != nil {
				return nil, err
			}
			return file, nil
		},
	}
}
