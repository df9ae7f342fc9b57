package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/campus_events/internal/directory"
	"github.com/Freeeeeet/campus_events/internal/ledger"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type RegistrationService struct {
	dir     *directory.Directory
	ledger  *ledger.Ledger
	persist *Persistence
	logger  *zap.Logger
}

func NewRegistrationService(dir *directory.Directory, ledger *ledger.Ledger, persist *Persistence, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{
		dir:     dir,
		ledger:  ledger,
		persist: persist,
		logger:  logger,
	}
}

// Register записывает студента на мероприятие. Записать другого студента
// может только организатор или администратор.
func (s *RegistrationService) Register(ctx context.Context, actorID, studentID, eventID string) (model.Registration, error) {
	if err := s.authorize(actorID, studentID); err != nil {
		return model.Registration{}, err
	}

	reg, err := s.ledger.Register(studentID, eventID)
	if err != nil {
		s.logger.Debug("Registration refused",
			zap.String("student_id", studentID),
			zap.String("event_id", eventID),
			zap.Error(err),
		)
		return model.Registration{}, err
	}

	// Без записи мероприятия место не считается занятым: откатываем
	if err := s.persist.SaveEvents(ctx, reg.EventID); err != nil {
		if _, _, rbErr := s.ledger.Withdraw(reg.ID); rbErr != nil {
			s.logger.Error("❌ Failed to roll back registration",
				zap.String("registration_id", reg.ID),
				zap.Error(rbErr),
			)
		}
		return model.Registration{}, err
	}
	logDeferred(s.logger, s.persist.SaveUsers(ctx, reg.StudentID), zap.String("registration_id", reg.ID))

	s.logger.Info("Student registered",
		zap.String("registration_id", reg.ID),
		zap.String("student_id", studentID),
		zap.String("event_id", eventID),
		zap.String("actor_id", actorID),
	)
	return reg, nil
}

// Withdraw снимает регистрацию. Снять её может сам студент, организатор
// или администратор. Повторный вызов ничего не делает.
func (s *RegistrationService) Withdraw(ctx context.Context, actorID, registrationID string) (bool, error) {
	if _, err := s.dir.User(actorID); err != nil {
		return false, err
	}

	eventID, ok := s.dir.RegistrationEvent(registrationID)
	if !ok {
		return false, nil
	}
	event, err := s.dir.Event(eventID)
	if err != nil {
		return false, err
	}
	reg, ok := lo.Find(event.Registrations, func(r model.Registration) bool { return r.ID == registrationID })
	if !ok {
		return false, nil
	}
	if err := s.authorize(actorID, reg.StudentID); err != nil {
		return false, err
	}

	reg, removed, err := s.ledger.Withdraw(registrationID)
	if err != nil || !removed {
		return false, err
	}

	s.afterWithdraw(ctx, actorID, reg)
	return true, nil
}

// WithdrawStudent снимает регистрацию студента на мероприятие, если она есть
func (s *RegistrationService) WithdrawStudent(ctx context.Context, actorID, studentID, eventID string) (bool, error) {
	if err := s.authorize(actorID, studentID); err != nil {
		return false, err
	}

	reg, removed, err := s.ledger.WithdrawStudent(studentID, eventID)
	if err != nil || !removed {
		return false, err
	}

	s.afterWithdraw(ctx, actorID, reg)
	return true, nil
}

// ForStudent возвращает мероприятия, на которые записан студент, в порядке записи
func (s *RegistrationService) ForStudent(_ context.Context, studentID string) ([]model.Event, error) {
	student, err := s.dir.User(studentID)
	if err != nil {
		return nil, err
	}

	return lo.FilterMap(student.RegistrationIDs, func(regID string, _ int) (model.Event, bool) {
		eventID, ok := s.dir.RegistrationEvent(regID)
		if !ok {
			return model.Event{}, false
		}
		event, err := s.dir.Event(eventID)
		return event, err == nil
	}), nil
}

// ForEvent возвращает регистрации мероприятия в порядке записи
func (s *RegistrationService) ForEvent(_ context.Context, eventID string) ([]model.Registration, error) {
	event, err := s.dir.Event(eventID)
	if err != nil {
		return nil, err
	}
	return event.Registrations, nil
}

// authorize пропускает самого студента, организатора и администратора
func (s *RegistrationService) authorize(actorID, studentID string) error {
	actor, err := s.dir.User(actorID)
	if err != nil {
		return err
	}
	if actor.ID != studentID && !actor.CanManageEvents() {
		return fmt.Errorf("%w: only the student or an organizer can manage this registration", model.ErrNotPermitted)
	}
	return nil
}

// afterWithdraw сохраняет обе стороны. Снятие уже состоялось,
// ошибка хранилища только логируется.
func (s *RegistrationService) afterWithdraw(ctx context.Context, actorID string, reg model.Registration) {
	logDeferred(s.logger, s.persist.SaveEvents(ctx, reg.EventID), zap.String("registration_id", reg.ID))
	logDeferred(s.logger, s.persist.SaveUsers(ctx, reg.StudentID), zap.String("registration_id", reg.ID))

	s.logger.Info("Registration withdrawn",
		zap.String("registration_id", reg.ID),
		zap.String("student_id", reg.StudentID),
		zap.String("event_id", reg.EventID),
		zap.String("actor_id", actorID),
	)
}
