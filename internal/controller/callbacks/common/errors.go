package common

import (
	"errors"

	"github.com/Freeeeeet/campus_events/internal/model"
)

// Ошибки уровня бота
var (
	ErrNoMessage     = errors.New("no message in callback")
	ErrInvalidFormat = errors.New("invalid callback format")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return "❌ Не найдено. Возможно, запись уже удалена"
	case errors.Is(err, model.ErrRoomConflict):
		return "❌ Комната уже занята в это время. Выберите другое время или комнату"
	case errors.Is(err, model.ErrInvalidTransition):
		return "❌ Это действие недоступно для мероприятия в текущем статусе"
	case errors.Is(err, model.ErrEventFull):
		return "❌ Свободных мест нет"
	case errors.Is(err, model.ErrEventNotActive):
		return "❌ Запись на это мероприятие закрыта"
	case errors.Is(err, model.ErrDuplicateRegistration):
		return "❌ Вы уже записаны на это мероприятие"
	case errors.Is(err, model.ErrNotPermitted):
		return "❌ У вас нет прав на это действие"
	case errors.Is(err, model.ErrInvalidInterval):
		return "❌ Время начала должно быть раньше времени окончания"
	case errors.Is(err, model.ErrInvalidCapacity):
		return "❌ Количество мест должно быть не меньше 1"
	case errors.Is(err, model.ErrRoomInUse):
		return "❌ У комнаты есть брони"
	case errors.Is(err, model.ErrInvalidInput):
		return "❌ Некорректные данные"
	case errors.Is(err, ErrNoMessage):
		return "❌ Ошибка обработки сообщения"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Неверный формат данных"
	default:
		return "❌ Произошла ошибка. Попробуйте позже."
	}
}
