package httpapi

import (
	"net/http"
	"time"

	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/Freeeeeet/campus_events/internal/service"
	"github.com/go-chi/chi/v5"
)

type addRoomRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Location string `json:"location" validate:"max=200"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
}

type scheduleItem struct {
	EventID   string            `json:"event_id"`
	Title     string            `json:"title"`
	Status    model.EventStatus `json:"status"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
}

// AddRoom handles POST /rooms
func (h *Handler) AddRoom(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var req addRoomRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	room, err := h.rooms.AddRoom(r.Context(), actorID, service.AddRoomInput{
		Name:     req.Name,
		Location: req.Location,
		Capacity: req.Capacity,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// ListRooms handles GET /rooms
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.rooms.List(r.Context()))
}

// DeleteRoom handles DELETE /rooms/{id}
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := h.rooms.DeleteRoom(r.Context(), actorID, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RoomSchedule handles GET /rooms/{id}/schedule
func (h *Handler) RoomSchedule(w http.ResponseWriter, r *http.Request) {
	items, err := h.rooms.Schedule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]scheduleItem, 0, len(items))
	for _, item := range items {
		resp = append(resp, scheduleItem{
			EventID:   item.Booking.EventID,
			Title:     item.Event.Title,
			Status:    item.Event.Status,
			StartTime: item.Booking.StartTime,
			EndTime:   item.Booking.EndTime,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// RoomAvailability handles GET /rooms/{id}/availability?start=...&end=...
// Время в формате RFC 3339.
func (h *Handler) RoomAvailability(w http.ResponseWriter, r *http.Request) {
	start, errStart := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	end, errEnd := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if errStart != nil || errEnd != nil {
		writeError(w, http.StatusBadRequest, "start and end must be RFC 3339 timestamps")
		return
	}
	if !start.Before(end) {
		h.writeServiceError(w, r, model.ErrInvalidInterval)
		return
	}

	available, err := h.rooms.IsAvailable(r.Context(), chi.URLParam(r, "id"), start, end)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}
