package model

import (
	"slices"
	"time"
)

type Role string

const (
	RoleStudent   Role = "student"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// Valid сообщает, известна ли роль системе
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            Role      `json:"role"`
	StudentNumber   string    `json:"student_number,omitempty"`
	TelegramID      int64     `json:"telegram_id"`
	RegistrationIDs []string  `json:"registration_ids"` // только у студентов, в порядке записи
	CreatedAt       time.Time `json:"created_at"`
}

// IsStudent может ли пользователь записываться на мероприятия
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// CanManageEvents может ли пользователь одобрять, отклонять и отменять мероприятия
func (u *User) CanManageEvents() bool {
	return u.Role == RoleOrganizer || u.Role == RoleAdmin
}

// Clone глубокая копия, которую можно отдавать наружу из каталога
func (u User) Clone() User {
	u.RegistrationIDs = slices.Clone(u.RegistrationIDs)
	return u
}
