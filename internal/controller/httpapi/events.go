package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/Freeeeeet/campus_events/internal/lifecycle"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/Freeeeeet/campus_events/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type createEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	Capacity    int       `json:"capacity"`
	RoomID      string    `json:"room_id" validate:"required"`
}

type registerRequest struct {
	// Пустой student_id означает запись самого действующего пользователя
	StudentID string `json:"student_id"`
}

type reportStudent struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	StudentNumber string `json:"student_number,omitempty"`
}

type reportResponse struct {
	Event         model.Event     `json:"event"`
	RoomName      string          `json:"room_name"`
	OrganizerName string          `json:"organizer_name"`
	Registered    int             `json:"registered"`
	Remaining     int             `json:"remaining"`
	Students      []reportStudent `json:"students"`
}

type summaryResponse struct {
	Events     map[model.EventStatus]int `json:"events"`
	Students   int                       `json:"students"`
	Organizers int                       `json:"organizers"`
	Admins     int                       `json:"admins"`
	Rooms      int                       `json:"rooms"`
}

// CreateEvent handles POST /events
// Организатор получает активное мероприятие, студент - предложение.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var req createEventRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	event, err := h.events.Create(r.Context(), lifecycle.CreateRequest{
		CreatorID:   actorID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Capacity:    req.Capacity,
		RoomID:      req.RoomID,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events?status=Active&q=robotics
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	status := model.EventStatus(r.URL.Query().Get("status"))
	switch status {
	case "", model.EventStatusPending, model.EventStatusActive, model.EventStatusCancelled, model.EventStatusRejected:
	default:
		writeError(w, http.StatusBadRequest, "unknown status "+string(status))
		return
	}

	writeJSON(w, http.StatusOK, h.events.List(r.Context(), service.EventFilter{
		Status: status,
		Search: r.URL.Query().Get("q"),
	}))
}

// GetEvent handles GET /events/{id}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// ApproveEvent handles POST /events/{id}/approve
func (h *Handler) ApproveEvent(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.events.Approve)
}

// RejectEvent handles POST /events/{id}/reject
func (h *Handler) RejectEvent(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.events.Reject)
}

// CancelEvent handles POST /events/{id}/cancel
func (h *Handler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.events.Cancel)
}

type transitionFunc func(ctx context.Context, eventID, organizerID string) (model.Event, error)

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	actorID, err := actor(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	event, err := fn(r.Context(), chi.URLParam(r, "id"), actorID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Register handles POST /events/{id}/registrations
// Без student_id записывается сам вызывающий.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var req registerRequest
	if r.ContentLength != 0 && !h.decodeJSON(w, r, &req) {
		return
	}

	studentID := req.StudentID
	if studentID == "" {
		studentID = actorID
	}

	reg, err := h.registrations.Register(r.Context(), actorID, studentID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// EventRegistrations handles GET /events/{id}/registrations
func (h *Handler) EventRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.registrations.ForEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// Withdraw handles DELETE /registrations/{id}
// Повторное снятие не ошибка: removed=false.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	removed, err := h.registrations.Withdraw(r.Context(), actorID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// EventReport handles GET /events/{id}/report
func (h *Handler) EventReport(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	report, err := h.events.Report(r.Context(), actorID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := reportResponse{
		Event:         report.Event,
		RoomName:      report.RoomName,
		OrganizerName: report.OrganizerName,
		Registered:    report.Registered,
		Remaining:     report.Remaining,
		Students:      make([]reportStudent, 0, len(report.Students)),
	}
	for _, s := range report.Students {
		resp.Students = append(resp.Students, reportStudent{ID: s.ID, Name: s.Name, StudentNumber: s.StudentNumber})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ExportCSV handles GET /events/export.csv
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="events.csv"`)
	w.WriteHeader(http.StatusOK)

	if err := h.events.ExportCSV(r.Context(), w); err != nil {
		// Заголовки уже отправлены, остаётся только залогировать
		h.logger.Error("CSV export failed", zap.Error(err))
	}
}

// Summary handles GET /reports/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	s := h.events.Summary(r.Context())
	writeJSON(w, http.StatusOK, summaryResponse{
		Events:     s.ByStatus,
		Students:   s.Students,
		Organizers: s.Organizers,
		Admins:     s.Admins,
		Rooms:      s.Rooms,
	})
}
