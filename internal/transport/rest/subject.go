package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/studytrack/internal/domain"
)

// subjectService defines the minimal interface needed by SubjectHandler.
type subjectService interface {
	List(ctx context.Context) ([]domain.Subject, error)
	Create(ctx context.Context, name string) (*domain.Subject, error)
	Delete(ctx context.Context, subjectID uuid.UUID) error
	AddTopic(ctx context.Context, subjectID uuid.UUID, name string) error
	ToggleTopic(ctx context.Context, subjectID uuid.UUID, index int) error
	RemoveTopic(ctx context.Context, subjectID uuid.UUID, index int) error
}

// SubjectHandler serves subject and topic REST endpoints. All routes
// require the auth middleware.
type SubjectHandler struct {
	svc subjectService
	log *slog.Logger
}

// NewSubjectHandler creates a SubjectHandler.
func NewSubjectHandler(svc subjectService, logger *slog.Logger) *SubjectHandler {
	return &SubjectHandler{svc: svc, log: logger.With("handler", "subject")}
}

type createSubjectRequest struct {
	Name string `json:"name"`
}

type addTopicRequest struct {
	Name string `json:"name"`
}

type topicIndexRequest struct {
	Index int `json:"index"`
}

type topicResponse struct {
	Name      string    `json:"name"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
}

type subjectResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Topics    []topicResponse `json:"topics"`
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
	Percent   int             `json:"percent"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// List handles GET /subjects.
func (h *SubjectHandler) List(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.svc.List(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSubjectResponses(subjects))
}

// Create handles POST /subjects.
func (h *SubjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	subj, err := h.svc.Create(r.Context(), req.Name)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSubjectResponse(*subj))
}

// Delete handles DELETE /subjects/{id}.
func (h *SubjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := subjectIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), subjectID); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AddTopic handles POST /subjects/{id}/topics.
func (h *SubjectHandler) AddTopic(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := subjectIDFromPath(w, r)
	if !ok {
		return
	}

	var req addTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.AddTopic(r.Context(), subjectID, req.Name); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ToggleTopic handles POST /subjects/{id}/topics/toggle.
func (h *SubjectHandler) ToggleTopic(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := subjectIDFromPath(w, r)
	if !ok {
		return
	}

	var req topicIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.ToggleTopic(r.Context(), subjectID, req.Index); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RemoveTopic handles POST /subjects/{id}/topics/remove.
func (h *SubjectHandler) RemoveTopic(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := subjectIDFromPath(w, r)
	if !ok {
		return
	}

	var req topicIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.RemoveTopic(r.Context(), subjectID, req.Index); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SubjectHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.UserMessage())
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func subjectIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subject id")
		return uuid.Nil, false
	}
	return id, true
}

func toSubjectResponses(subjects []domain.Subject) []subjectResponse {
	out := make([]subjectResponse, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, toSubjectResponse(s))
	}
	return out
}

func toSubjectResponse(s domain.Subject) subjectResponse {
	p := s.Progress()

	topics := make([]topicResponse, 0, len(s.Topics))
	for _, t := range s.Topics {
		topics = append(topics, topicResponse{Name: t.Name, Done: t.Done, CreatedAt: t.CreatedAt})
	}

	return subjectResponse{
		ID:        s.ID.String(),
		Name:      s.Name,
		Topics:    topics,
		Completed: p.Completed,
		Total:     p.Total,
		Percent:   p.Percent,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
