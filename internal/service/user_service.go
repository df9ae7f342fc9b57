package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/campus_events/internal/directory"
	"github.com/Freeeeeet/campus_events/internal/ledger"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type UserService struct {
	dir     *directory.Directory
	ledger  *ledger.Ledger
	persist *Persistence
	logger  *zap.Logger
	now     func() time.Time
}

func NewUserService(dir *directory.Directory, ledger *ledger.Ledger, persist *Persistence, logger *zap.Logger) *UserService {
	return &UserService{
		dir:     dir,
		ledger:  ledger,
		persist: persist,
		logger:  logger,
		now:     time.Now,
	}
}

type CreateUserInput struct {
	Name          string
	Email         string
	Role          model.Role
	StudentNumber string
	TelegramID    int64
}

// RegisterTelegramUser регистрирует чат как студента или обновляет имя существующего пользователя
func (s *UserService) RegisterTelegramUser(ctx context.Context, telegramID int64, name string) (model.User, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("tg%d", telegramID)
	}

	// Если пользователь уже существует, обновляем имя
	if existing, ok := s.dir.UserByTelegramID(telegramID); ok {
		if existing.Name == name {
			return existing, false, nil
		}

		updated, err := s.dir.UpdateUser(existing.ID, func(u *model.User) error {
			u.Name = name
			return nil
		})
		if err != nil {
			return model.User{}, false, fmt.Errorf("update user: %w", err)
		}
		logDeferred(s.logger, s.persist.SaveUsers(ctx, updated.ID), zap.String("user_id", updated.ID))

		s.logger.Info("User updated",
			zap.String("user_id", updated.ID),
			zap.Int64("telegram_id", telegramID),
		)
		return updated, false, nil
	}

	user, err := s.add(ctx, CreateUserInput{
		Name:       name,
		Role:       model.RoleStudent, // По умолчанию студент
		TelegramID: telegramID,
	})
	if err != nil {
		return model.User{}, false, err
	}

	s.logger.Info("New user registered",
		zap.String("user_id", user.ID),
		zap.Int64("telegram_id", telegramID),
		zap.String("name", user.Name),
	)
	return user, true, nil
}

// CreateUser создаёт пользователя от имени администратора.
// Пока в системе нет ни одного администратора, первого можно создать без actorID.
func (s *UserService) CreateUser(ctx context.Context, actorID string, in CreateUserInput) (model.User, error) {
	if s.hasAdmin() {
		if _, err := requireAdmin(s.dir, actorID); err != nil {
			return model.User{}, err
		}
	} else if in.Role != model.RoleAdmin {
		return model.User{}, fmt.Errorf("%w: the first user must be an admin", model.ErrNotPermitted)
	}

	user, err := s.add(ctx, in)
	if err != nil {
		return model.User{}, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("actor_id", actorID),
	)
	return user, nil
}

// GetByID получает пользователя по ID
func (s *UserService) GetByID(_ context.Context, id string) (model.User, error) {
	return s.dir.User(id)
}

// GetByTelegramID получает пользователя по Telegram ID
func (s *UserService) GetByTelegramID(_ context.Context, telegramID int64) (model.User, error) {
	user, ok := s.dir.UserByTelegramID(telegramID)
	if !ok {
		return model.User{}, fmt.Errorf("%w: telegram user %d", model.ErrNotFound, telegramID)
	}
	return user, nil
}

func (s *UserService) List(_ context.Context) []model.User {
	return s.dir.Users()
}

// ChangeRole меняет роль пользователя. Студента с активными регистрациями
// нельзя перевести в другую роль, пока он не отпишется.
func (s *UserService) ChangeRole(ctx context.Context, actorID, id string, role model.Role) (model.User, error) {
	if _, err := requireAdmin(s.dir, actorID); err != nil {
		return model.User{}, err
	}
	if !role.Valid() {
		return model.User{}, fmt.Errorf("%w: unknown role %q", model.ErrInvalidInput, role)
	}

	user, err := s.dir.UpdateUser(id, func(u *model.User) error {
		if u.IsStudent() && role != model.RoleStudent && len(u.RegistrationIDs) > 0 {
			return fmt.Errorf("%w: student still has %d registrations", model.ErrInvalidInput, len(u.RegistrationIDs))
		}
		u.Role = role
		return nil
	})
	if err != nil {
		return model.User{}, err
	}

	logDeferred(s.logger, s.persist.SaveUsers(ctx, user.ID), zap.String("user_id", user.ID))

	s.logger.Info("User role changed",
		zap.String("user_id", user.ID),
		zap.String("role", string(role)),
		zap.String("actor_id", actorID),
	)
	return user, nil
}

// Delete удаляет пользователя и освобождает его места на мероприятиях.
// Сначала пользователь удаляется из каталога, после этого новые записи
// на него невозможны, и снимаются все регистрации, которые успели появиться.
func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	if _, err := requireAdmin(s.dir, actorID); err != nil {
		return err
	}

	if err := s.dir.DeleteUser(id); err != nil {
		return err
	}

	var touched []string
	for _, event := range s.dir.Events() {
		reg, ok := event.RegistrationOf(id)
		if !ok {
			continue
		}
		_, removed, err := s.ledger.Withdraw(reg.ID)
		if err != nil {
			return fmt.Errorf("withdraw registration %s: %w", reg.ID, err)
		}
		if removed {
			touched = append(touched, event.ID)
		}
	}

	logDeferred(s.logger, s.persist.SaveEvents(ctx, touched...), zap.String("user_id", id))
	logDeferred(s.logger, s.persist.DeleteUser(ctx, id), zap.String("user_id", id))

	s.logger.Info("User deleted",
		zap.String("user_id", id),
		zap.Int("withdrawn_registrations", len(touched)),
		zap.String("actor_id", actorID),
	)
	return nil
}

func (s *UserService) add(ctx context.Context, in CreateUserInput) (model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return model.User{}, fmt.Errorf("%w: name is required", model.ErrInvalidInput)
	}
	if !in.Role.Valid() {
		return model.User{}, fmt.Errorf("%w: unknown role %q", model.ErrInvalidInput, in.Role)
	}
	if in.TelegramID != 0 {
		if _, ok := s.dir.UserByTelegramID(in.TelegramID); ok {
			return model.User{}, fmt.Errorf("%w: telegram id %d is already linked", model.ErrInvalidInput, in.TelegramID)
		}
	}

	user := model.User{
		ID:         uuid.NewString(),
		Name:       in.Name,
		Email:      strings.TrimSpace(in.Email),
		Role:       in.Role,
		TelegramID: in.TelegramID,
		CreatedAt:  s.now(),
	}
	if in.Role == model.RoleStudent {
		user.StudentNumber = strings.TrimSpace(in.StudentNumber)
	}

	if err := s.dir.AddUser(user); err != nil {
		return model.User{}, err
	}
	if err := s.persist.SaveUsers(ctx, user.ID); err != nil {
		// нового пользователя ещё никто не видел, просто убираем
		_ = s.dir.DeleteUser(user.ID)
		return model.User{}, err
	}

	return user, nil
}

func (s *UserService) hasAdmin() bool {
	return lo.ContainsBy(s.dir.Users(), func(u model.User) bool { return u.Role == model.RoleAdmin })
}
