package state

import "time"

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Состояния для предложения мероприятия (/propose)
	StateProposeTitle       UserState = "propose_title"
	StateProposeDescription UserState = "propose_description"
	StateProposeStart       UserState = "propose_start"
	StateProposeEnd         UserState = "propose_end"
	StateProposeCapacity    UserState = "propose_capacity"
	StateProposeRoom        UserState = "propose_room" // ждём нажатия кнопки с комнатой
)

// Ключи временных данных диалога
const (
	KeyUserID      = "user_id"
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyStart       = "start"
	KeyEnd         = "end"
	KeyCapacity    = "capacity"
)

// UserData хранит шаг и собранные данные диалога
type UserData struct {
	State     UserState
	Data      map[string]any
	UpdatedAt time.Time // последняя запись, от неё считается ttl
}
