package upload

import (
	"context"
	"errors"
	"geo-upload/internal/core/domain"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// GetProgressV1 returns the progress of the running import
func (h *HandlerV1) GetProgressV1(w http.ResponseWriter, r *http.Request) {
	progress, err := h.uploadService.Progress(r.Context(), h.sessionToken(w, r))
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		h.writeError(w, http.StatusNotFound, "There is no upload in progress.")
		return
	case errors.Is(err, domain.ErrImportNotStarted):
		h.writeError(w, http.StatusBadRequest, "The import has not been started.")
		return
	case err != nil:
		h.logger.Error("error reading import progress", "error", err)
		h.writeError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	default:
		h.writeJSON(w, http.StatusOK, V1ProgressResponse{
			Success:         true,
			State:           progress.State,
			PercentComplete: progress.PercentComplete,
		})
	}
}

// StreamProgressV1 pushes the import progress over a websocket until the
// import leaves the running state
func (h *HandlerV1) StreamProgressV1(w http.ResponseWriter, r *http.Request) {
	token := h.sessionToken(w, r)

	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Error("error accepting progress websocket", "error", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "closing")

	ctx := c.CloseRead(r.Context())
	ticker := time.NewTicker(h.progressInterval)
	defer ticker.Stop()

	for {
		progress, err := h.uploadService.Progress(ctx, token)
		if err != nil {
			h.logger.Warn("progress stream stopped", "error", err)
			c.Close(websocket.StatusPolicyViolation, "no import in progress")
			return
		}

		writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = wsjson.Write(writeCtx, c, V1ProgressResponse{
			Success:         true,
			State:           progress.State,
			PercentComplete: progress.PercentComplete,
		})
		cancel()
		if err != nil {
			return
		}

		if progress.State != domain.JobStateRunning && progress.State != domain.JobStateReady {
			c.Close(websocket.StatusNormalClosure, "")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
