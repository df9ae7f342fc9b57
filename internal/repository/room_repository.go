package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/Freeeeeet/campus_events/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type RoomRepository struct {
	*base.Repository
}

func NewRoomRepository(repo *base.Repository) *RoomRepository {
	return &RoomRepository{Repository: repo}
}

// Save сохраняет комнату и полностью заменяет её брони
func (r *RoomRepository) Save(ctx context.Context, room model.Room) error {
	return r.InTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO rooms (id, name, location, capacity, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name,
			    location = EXCLUDED.location,
			    capacity = EXCLUDED.capacity
		`
		if _, err := tx.Exec(ctx, query, room.ID, room.Name, room.Location, room.Capacity, room.CreatedAt); err != nil {
			return fmt.Errorf("save room: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM room_bookings WHERE room_id = $1`, room.ID); err != nil {
			return fmt.Errorf("clear room bookings: %w", err)
		}

		if len(room.Bookings) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, b := range room.Bookings {
			batch.Queue(
				`INSERT INTO room_bookings (room_id, event_id, start_time, end_time) VALUES ($1, $2, $3, $4)`,
				room.ID, b.EventID, b.StartTime, b.EndTime,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("save room bookings: %w", err)
		}

		return nil
	})
}

// Delete удаляет комнату, брони уходят каскадом
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: room %s", model.ErrNotFound, id)
	}

	return nil
}

// GetAll получает все комнаты вместе с бронями
func (r *RoomRepository) GetAll(ctx context.Context) ([]model.Room, error) {
	rows, err := r.Query(ctx, `
		SELECT id, name, location, capacity, created_at
		FROM rooms
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("get rooms: %w", err)
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Location, &room.Capacity, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}

	bookings, err := r.getBookings(ctx)
	if err != nil {
		return nil, err
	}

	for i := range rooms {
		rooms[i].Bookings = bookings[rooms[i].ID]
	}

	return rooms, nil
}

func (r *RoomRepository) getBookings(ctx context.Context) (map[string][]model.Booking, error) {
	rows, err := r.Query(ctx, `
		SELECT room_id, event_id, start_time, end_time
		FROM room_bookings
		ORDER BY start_time
	`)
	if err != nil {
		return nil, fmt.Errorf("get room bookings: %w", err)
	}
	defer rows.Close()

	bookings := make(map[string][]model.Booking)
	for rows.Next() {
		var (
			roomID string
			b      model.Booking
		)
		if err := rows.Scan(&roomID, &b.EventID, &b.StartTime, &b.EndTime); err != nil {
			return nil, fmt.Errorf("scan room booking: %w", err)
		}
		bookings[roomID] = append(bookings[roomID], b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room bookings: %w", err)
	}

	return bookings, nil
}
