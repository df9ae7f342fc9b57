package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/Freeeeeet/campus_events/internal/repository/base"
)

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(repo *base.Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// Save создаёт пользователя или обновляет существующего
func (r *UserRepository) Save(ctx context.Context, user model.User) error {
	query := `
		INSERT INTO users (id, name, email, role, student_number, telegram_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    email = EXCLUDED.email,
		    role = EXCLUDED.role,
		    student_number = EXCLUDED.student_number,
		    telegram_id = EXCLUDED.telegram_id
	`

	_, err := r.ExecAffected(
		ctx, query,
		user.ID,
		user.Name,
		user.Email,
		string(user.Role),
		user.StudentNumber,
		user.TelegramID,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	return nil
}

// Delete удаляет пользователя. Его регистрации к этому моменту уже сняты.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: user %s", model.ErrNotFound, id)
	}

	return nil
}

// GetAll получает всех пользователей. RegistrationIDs заполняются позже
// из таблицы registrations.
func (r *UserRepository) GetAll(ctx context.Context) ([]model.User, error) {
	query := `
		SELECT id, name, email, role, student_number, telegram_id, created_at
		FROM users
		ORDER BY created_at, id
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var (
			user model.User
			role string
		)
		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&role,
			&user.StudentNumber,
			&user.TelegramID,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		user.Role = model.Role(role)
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}
