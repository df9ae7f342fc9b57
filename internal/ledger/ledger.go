// Package ledger записывает студентов на мероприятия и снимает записи.
// Проверяет статус мероприятия, единственность записи и вместимость.
package ledger

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Freeeeeet/campus_events/internal/directory"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/google/uuid"
)

type Ledger struct {
	dir   *directory.Directory
	now   func() time.Time
	newID func() string
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

func New(dir *directory.Directory, opts ...Option) *Ledger {
	l := &Ledger{
		dir:   dir,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Register записывает студента. Ошибки проверяются в порядке
// ErrEventNotActive, ErrDuplicateRegistration, ErrEventFull.
func (l *Ledger) Register(studentID, eventID string) (model.Registration, error) {
	student, err := l.dir.User(studentID)
	if err != nil {
		return model.Registration{}, err
	}
	if !student.IsStudent() {
		return model.Registration{}, fmt.Errorf("%w: only students can register", model.ErrNotPermitted)
	}

	var reg model.Registration
	_, err = l.dir.UpdateEvent(eventID, func(e *model.Event) error {
		if e.Status != model.EventStatusActive {
			return fmt.Errorf("%w: event %s is %s", model.ErrEventNotActive, e.ID, e.Status)
		}
		if _, ok := e.RegistrationOf(studentID); ok {
			return model.ErrDuplicateRegistration
		}
		if e.IsFull() {
			return fmt.Errorf("%w: %d of %d seats taken", model.ErrEventFull, len(e.Registrations), e.Capacity)
		}

		reg = model.Registration{
			ID:        l.newID(),
			StudentID: studentID,
			EventID:   e.ID,
			CreatedAt: l.now(),
		}

		_, err := l.dir.UpdateUser(studentID, func(u *model.User) error {
			u.RegistrationIDs = append(u.RegistrationIDs, reg.ID)
			return nil
		})
		if err != nil {
			return err
		}

		e.Registrations = append(e.Registrations, reg)
		l.dir.IndexRegistration(reg.ID, e.ID)
		return nil
	})
	if err != nil {
		return model.Registration{}, err
	}

	return reg, nil
}

// Withdraw убирает регистрацию из мероприятия и у студента.
// Неизвестная или уже снятая регистрация даёт removed == false.
func (l *Ledger) Withdraw(registrationID string) (reg model.Registration, removed bool, err error) {
	eventID, ok := l.dir.RegistrationEvent(registrationID)
	if !ok {
		return model.Registration{}, false, nil
	}

	_, err = l.dir.UpdateEvent(eventID, func(e *model.Event) error {
		i := slices.IndexFunc(e.Registrations, func(r model.Registration) bool {
			return r.ID == registrationID
		})
		if i < 0 {
			return nil
		}
		reg = e.Registrations[i]

		_, err := l.dir.UpdateUser(reg.StudentID, func(u *model.User) error {
			u.RegistrationIDs = slices.DeleteFunc(u.RegistrationIDs, func(id string) bool {
				return id == registrationID
			})
			return nil
		})
		// удалённый аккаунт не мешает освободить место
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return err
		}

		e.Registrations = slices.Delete(e.Registrations, i, i+1)
		l.dir.UnindexRegistration(registrationID)
		removed = true
		return nil
	})
	if err != nil {
		return model.Registration{}, false, err
	}

	return reg, removed, nil
}

// WithdrawStudent снимает запись студента на мероприятие, если она есть
func (l *Ledger) WithdrawStudent(studentID, eventID string) (model.Registration, bool, error) {
	event, err := l.dir.Event(eventID)
	if err != nil {
		return model.Registration{}, false, err
	}

	reg, ok := event.RegistrationOf(studentID)
	if !ok {
		return model.Registration{}, false, nil
	}
	return l.Withdraw(reg.ID)
}
