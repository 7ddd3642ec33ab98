package upload

import (
	"errors"
	"geo-upload/internal/adapters/handlers/http/identity"
	"geo-upload/internal/core/domain"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// DeleteUploadV1 deletes an upload of the caller with its staged files
func (h *HandlerV1) DeleteUploadV1(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")
	if importID == "" {
		h.writeError(w, http.StatusBadRequest, "import id is required")
		return
	}

	err := h.uploadService.DeleteUpload(r.Context(), h.sessionToken(w, r), identity.UserID(r.Context()), importID)
	switch {
	case errors.Is(err, domain.ErrUploadNotFound):
		h.writeError(w, http.StatusNotFound, "The upload could not be found.")
		return
	case errors.Is(err, domain.ErrForbidden):
		h.writeError(w, http.StatusForbidden, "You are not allowed to delete this upload.")
		return
	case err != nil:
		h.logger.Error("error deleting upload", "import_id", importID, "error", err)
		h.writeError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	default:
		h.writeJSON(w, http.StatusOK, V1StepResponse{Success: true})
	}
}
