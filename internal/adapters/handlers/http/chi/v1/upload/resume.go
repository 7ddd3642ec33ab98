package upload

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ResumeV1 reopens an incomplete upload of the caller
func (h *HandlerV1) ResumeV1(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")
	if importID == "" {
		h.writeError(w, http.StatusBadRequest, "import id is required")
		return
	}

	req := h.stepRequest(w, r, "")
	req.ResumeID = importID
	h.handleStep(w, r, req)
}
