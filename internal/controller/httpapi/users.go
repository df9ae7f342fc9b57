package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/Freeeeeet/campus_events/internal/service"
	"github.com/go-chi/chi/v5"
)

type createUserRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	Email         string `json:"email" validate:"omitempty,email"`
	Role          string `json:"role" validate:"required,oneof=student organizer admin"`
	StudentNumber string `json:"student_number" validate:"max=50"`
	TelegramID    int64  `json:"telegram_id" validate:"gte=0"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=student organizer admin"`
}

// CreateUser handles POST /users
// Первого администратора можно создать без заголовка X-User-ID.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	actorID, _ := actor(r)
	user, err := h.users.CreateUser(r.Context(), actorID, service.CreateUserInput{
		Name:          req.Name,
		Email:         req.Email,
		Role:          model.Role(req.Role),
		StudentNumber: req.StudentNumber,
		TelegramID:    req.TelegramID,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// ListUsers handles GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.users.List(r.Context()))
}

// GetUser handles GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ChangeRole handles PATCH /users/{id}/role
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var req changeRoleRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.ChangeRole(r.Context(), actorID, chi.URLParam(r, "id"), model.Role(req.Role))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /users/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := h.users.Delete(r.Context(), actorID, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StudentRegistrations handles GET /users/{id}/registrations
// Возвращает мероприятия студента в порядке записи.
func (h *Handler) StudentRegistrations(w http.ResponseWriter, r *http.Request) {
	events, err := h.registrations.ForStudent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
