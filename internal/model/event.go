package model

import (
	"slices"
	"time"
)

type EventStatus string

const (
	EventStatusPending   EventStatus = "Pending"   // Предложено студентом, ждёт одобрения
	EventStatusActive    EventStatus = "Active"    // Открыто для записи
	EventStatusCancelled EventStatus = "Cancelled" // Отменено организатором
	EventStatusRejected  EventStatus = "Rejected"  // Отклонено организатором
)

// IsTerminal из статуса больше нет переходов
func (s EventStatus) IsTerminal() bool {
	return s == EventStatusCancelled || s == EventStatusRejected
}

// HoldsRoom держит ли мероприятие в этом статусе бронь комнаты
func (s EventStatus) HoldsRoom() bool {
	return s == EventStatusPending || s == EventStatusActive
}

type Event struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time"`
	Capacity      int            `json:"capacity"`
	Status        EventStatus    `json:"status"`
	RoomID        string         `json:"room_id"`
	OrganizerID   *string        `json:"organizer_id"` // nil - предложено студентом и ещё не одобрено
	ProposerID    string         `json:"proposer_id"`
	Registrations []Registration `json:"registrations"`
	CreatedAt     time.Time      `json:"created_at"`
}

// IsFull все места заняты
func (e *Event) IsFull() bool {
	return len(e.Registrations) >= e.Capacity
}

// Remaining количество свободных мест
func (e *Event) Remaining() int {
	return max(e.Capacity-len(e.Registrations), 0)
}

// RegistrationOf регистрация студента на это мероприятие, если есть
func (e *Event) RegistrationOf(studentID string) (Registration, bool) {
	for _, reg := range e.Registrations {
		if reg.StudentID == studentID {
			return reg, true
		}
	}
	return Registration{}, false
}

// StudentIDs ID записавшихся студентов в порядке записи
func (e *Event) StudentIDs() []string {
	ids := make([]string, 0, len(e.Registrations))
	for _, reg := range e.Registrations {
		ids = append(ids, reg.StudentID)
	}
	return ids
}

func (e Event) Clone() Event {
	e.Registrations = slices.Clone(e.Registrations)
	if e.OrganizerID != nil {
		id := *e.OrganizerID
		e.OrganizerID = &id
	}
	return e
}
