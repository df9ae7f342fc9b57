package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// UserHeader заголовок с ID действующего пользователя
const UserHeader = "X-User-ID"

var errNoActor = errors.New(UserHeader + " header is required")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON читает тело запроса и проверяет его теги validate
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}

	if err := h.validate.StructCtx(r.Context(), dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationMessage(err))
		return false
	}
	return true
}

// validationMessage собирает ошибки валидатора в одну строку
func validationMessage(err error) string {
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) {
		return err.Error()
	}

	msgs := make([]string, 0, len(vErrors))
	for _, fe := range vErrors {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email")
		case "gtfield":
			msgs = append(msgs, fmt.Sprintf("%s must be after %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

// statusFor сопоставляет ошибке предметной области HTTP статус
func statusFor(err error) int {
	switch {
	case errors.Is(err, errNoActor):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrNotPermitted):
		return http.StatusForbidden
	case errors.Is(err, model.ErrRoomConflict),
		errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrEventFull),
		errors.Is(err, model.ErrEventNotActive),
		errors.Is(err, model.ErrDuplicateRegistration),
		errors.Is(err, model.ErrRoomInUse):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidInterval),
		errors.Is(err, model.ErrInvalidCapacity),
		errors.Is(err, model.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

// actor возвращает ID действующего пользователя из заголовка
func actor(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(UserHeader))
	if id == "" {
		return "", errNoActor
	}
	return id, nil
}
