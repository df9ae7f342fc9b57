// Package httpapi отдаёт сервисы кампуса по HTTP через chi.
package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/campus_events/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Handler struct {
	users         *service.UserService
	rooms         *service.RoomService
	events        *service.EventService
	registrations *service.RegistrationService
	validate      *validator.Validate
	logger        *zap.Logger
}

func NewHandler(
	users *service.UserService,
	rooms *service.RoomService,
	events *service.EventService,
	registrations *service.RegistrationService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		users:         users,
		rooms:         rooms,
		events:        events,
		registrations: registrations,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		logger:        logger,
	}
}

// Routes собирает роутер со всеми эндпоинтами
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(h.logger))

	r.Get("/health", h.Health)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.CreateUser)
		r.Get("/", h.ListUsers)
		r.Get("/{id}", h.GetUser)
		r.Patch("/{id}/role", h.ChangeRole)
		r.Delete("/{id}", h.DeleteUser)
		r.Get("/{id}/registrations", h.StudentRegistrations)
	})

	r.Route("/rooms", func(r chi.Router) {
		r.Post("/", h.AddRoom)
		r.Get("/", h.ListRooms)
		r.Delete("/{id}", h.DeleteRoom)
		r.Get("/{id}/schedule", h.RoomSchedule)
		r.Get("/{id}/availability", h.RoomAvailability)
	})

	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.CreateEvent)
		r.Get("/", h.ListEvents)
		r.Get("/export.csv", h.ExportCSV)
		r.Get("/{id}", h.GetEvent)
		r.Post("/{id}/approve", h.ApproveEvent)
		r.Post("/{id}/reject", h.RejectEvent)
		r.Post("/{id}/cancel", h.CancelEvent)
		r.Post("/{id}/registrations", h.Register)
		r.Get("/{id}/registrations", h.EventRegistrations)
		r.Get("/{id}/report", h.EventReport)
	})

	r.Delete("/registrations/{id}", h.Withdraw)
	r.Get("/reports/summary", h.Summary)

	return r
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
