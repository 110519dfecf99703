package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bnema/showsaver/internal/domain"
	"github.com/bnema/showsaver/internal/infrastructure/logger"
	"github.com/bnema/showsaver/internal/service"
)

// QueueService is the slice of the queue the HTTP layer needs: enqueue
// and read, never acquisition work.
type QueueService interface {
	Submit(url string) (*domain.Job, int, error)
	Status(id string) (*domain.Job, error)
	Snapshot() service.QueueSnapshot
}

// BrowseService lists catalog new releases.
type BrowseService interface {
	NewReleases(ctx context.Context, forceRefresh bool) ([]domain.Release, bool, error)
}

type Handlers struct {
	queue  QueueService
	browse BrowseService
}

func NewHandlers(queue QueueService, browse BrowseService) *Handlers {
	return &Handlers{
		queue:  queue,
		browse: browse,
	}
}

type submitRequest struct {
	Text string `json:"text"`
}

func (h *Handlers) Submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"message": "Invalid request body",
			})
			return
		}

		job, position, err := h.queue.Submit(req.Text)
		switch {
		case errors.Is(err, domain.ErrEmptyURL):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"message": "URL cannot be empty",
			})
			return
		case errors.Is(err, domain.ErrQueueFull):
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"success": false,
				"message": "Download queue is full",
			})
			return
		case err != nil:
			logger.Error.Printf("submit failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"success": false,
				"message": "Submission failed",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":        true,
			"message":        "URL queued for download",
			"job_id":         job.ID,
			"url":            job.URL,
			"queue_position": position,
			"status":         string(domain.JobStatusQueued),
		})
	}
}

func (h *Handlers) Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := h.queue.Status(r.PathValue("id"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"success": false,
				"message": "Job not found",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"status":  job,
		})
	}
}

func (h *Handlers) Queue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := h.queue.Snapshot()
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"queued":      snap.Queued,
			"downloading": snap.Downloading,
			"completed":   snap.Completed,
			"queue_size":  snap.QueueSize,
		})
	}
}

func (h *Handlers) NewReleases() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forceRefresh := r.URL.Query().Get("refresh") == "1"

		releases, cached, err := h.browse.NewReleases(r.Context(), forceRefresh)
		if err != nil {
			logger.Warn.Printf("new releases fetch failed: %v", err)
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"success": false,
				"message": "Failed to fetch new releases",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"videos":  releases,
			"cached":  cached,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error.Printf("write response: %v", err)
	}
}
