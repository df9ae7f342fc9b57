package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/campus_events/internal/directory"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/Freeeeeet/campus_events/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore хранит состояние в PostgreSQL
type PostgresStore struct {
	pool   *pgxpool.Pool
	users  *UserRepository
	rooms  *RoomRepository
	events *EventRepository
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	repo := base.NewRepository(pool)
	return &PostgresStore{
		pool:   pool,
		users:  NewUserRepository(repo),
		rooms:  NewRoomRepository(repo),
		events: NewEventRepository(repo),
	}
}

func (s *PostgresStore) Load(ctx context.Context) (directory.Snapshot, error) {
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return directory.Snapshot{}, err
	}

	rooms, err := s.rooms.GetAll(ctx)
	if err != nil {
		return directory.Snapshot{}, err
	}

	events, err := s.events.GetAll(ctx)
	if err != nil {
		return directory.Snapshot{}, err
	}

	regs, err := s.events.GetRegistrations(ctx)
	if err != nil {
		return directory.Snapshot{}, err
	}

	// регистрации идут по seq, так что порядок записи сохраняется и у мероприятия, и у студента
	byEvent := lo.GroupBy(regs, func(reg model.Registration) string { return reg.EventID })
	for i := range events {
		events[i].Registrations = byEvent[events[i].ID]
	}

	byStudent := lo.GroupBy(regs, func(reg model.Registration) string { return reg.StudentID })
	for i := range users {
		if own, ok := byStudent[users[i].ID]; ok {
			users[i].RegistrationIDs = lo.Map(own, func(reg model.Registration, _ int) string { return reg.ID })
		}
	}

	return directory.Snapshot{Users: users, Rooms: rooms, Events: events}, nil
}

func (s *PostgresStore) SaveUser(ctx context.Context, user model.User) error {
	return s.users.Save(ctx, user)
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

func (s *PostgresStore) SaveRoom(ctx context.Context, room model.Room) error {
	return s.rooms.Save(ctx, room)
}

func (s *PostgresStore) DeleteRoom(ctx context.Context, id string) error {
	return s.rooms.Delete(ctx, id)
}

func (s *PostgresStore) SaveEvent(ctx context.Context, event model.Event) error {
	return s.events.Save(ctx, event)
}

// Close закрывает пул соединений
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// NewPool открывает пул и проверяет соединение
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
