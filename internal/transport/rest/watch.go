package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/avolkov/studytrack/internal/domain"
)

// watchService defines the live subscription interface needed by WatchHandler.
type watchService interface {
	Watch(ctx context.Context, onNext func([]domain.Subject), onErr func(error)) (func(), error)
}

// WatchHandler streams subject snapshots over Server-Sent Events. Every
// event carries the full list; clients replace their state wholesale.
type WatchHandler struct {
	svc watchService
	log *slog.Logger
}

// NewWatchHandler creates a WatchHandler.
func NewWatchHandler(svc watchService, logger *slog.Logger) *WatchHandler {
	return &WatchHandler{svc: svc, log: logger.With("handler", "watch")}
}

type watchEvent struct {
	snapshot []domain.Subject
	err      error
}

// Watch handles GET /subjects/watch. Requires the auth middleware.
func (h *WatchHandler) Watch(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events := make(chan watchEvent, 8)

	cancel, err := h.svc.Watch(r.Context(),
		func(subjects []domain.Subject) {
			select {
			case events <- watchEvent{snapshot: subjects}:
			case <-r.Context().Done():
			}
		},
		func(err error) {
			select {
			case events <- watchEvent{err: err}:
			case <-r.Context().Done():
			}
		},
	)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		h.log.ErrorContext(r.Context(), "watch failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			if ev.err != nil {
				writeSSE(w, "error", map[string]string{"error": "snapshot unavailable"})
				flusher.Flush()
				continue
			}
			writeSSE(w, "snapshot", toSubjectResponses(ev.snapshot))
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
