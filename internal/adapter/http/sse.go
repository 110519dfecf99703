package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bnema/showsaver/internal/domain"
	"github.com/bnema/showsaver/internal/service"
)

// SSEHandler streams job snapshots as JSON server-sent events for
// clients that prefer push over polling /status.
type SSEHandler struct {
	eventBus *service.EventBus
	queue    QueueService
}

func NewSSEHandler(eventBus *service.EventBus, queue QueueService) *SSEHandler {
	return &SSEHandler{
		eventBus: eventBus,
		queue:    queue,
	}
}

// sseWrite writes one SSE event frame and flushes it.
func sseWrite(w http.ResponseWriter, eventName string, data []byte) {
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventName, data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func sendKeepAlive(w http.ResponseWriter) {
	_, _ = fmt.Fprint(w, ": keep-alive\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandler) sendStatus(w http.ResponseWriter, job *domain.Job) {
	data, err := json.Marshal(job)
	if err != nil {
		return
	}
	sseWrite(w, "status", data)
}

func (h *SSEHandler) Events() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		job, err := h.queue.Status(id)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"success": false,
				"message": "Job not found",
			})
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		// Current state first; if already terminal there is nothing
		// more to stream and the client closes when it is done.
		h.sendStatus(w, job)
		if job.IsTerminal() {
			<-r.Context().Done()
			return
		}

		ch := h.eventBus.Subscribe(id)
		defer h.eventBus.Unsubscribe(id, ch)

		ctx := r.Context()
		keepAlive := time.NewTicker(15 * time.Second)
		defer keepAlive.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-keepAlive.C:
				sendKeepAlive(w)
			case job, ok := <-ch:
				if !ok {
					return
				}
				h.sendStatus(w, job)
				if job.IsTerminal() {
					<-ctx.Done()
					return
				}
			}
		}
	}
}
