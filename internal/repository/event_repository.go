package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/Freeeeeet/campus_events/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
)

type EventRepository struct {
	*base.Repository
}

func NewEventRepository(repo *base.Repository) *EventRepository {
	return &EventRepository{Repository: repo}
}

// Save сохраняет мероприятие и синхронизирует его регистрации.
// Существующие регистрации сохраняют свой seq, поэтому порядок записи не теряется.
func (r *EventRepository) Save(ctx context.Context, event model.Event) error {
	return r.InTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO events (id, title, description, start_time, end_time, capacity, status, room_id, organizer_id, proposer_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE
			SET title = EXCLUDED.title,
			    description = EXCLUDED.description,
			    start_time = EXCLUDED.start_time,
			    end_time = EXCLUDED.end_time,
			    capacity = EXCLUDED.capacity,
			    status = EXCLUDED.status,
			    room_id = EXCLUDED.room_id,
			    organizer_id = EXCLUDED.organizer_id
		`
		_, err := tx.Exec(
			ctx, query,
			event.ID,
			event.Title,
			event.Description,
			event.StartTime,
			event.EndTime,
			event.Capacity,
			string(event.Status),
			event.RoomID,
			event.OrganizerID,
			event.ProposerID,
			event.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("save event: %w", err)
		}

		ids := lo.Map(event.Registrations, func(reg model.Registration, _ int) string { return reg.ID })
		_, err = tx.Exec(ctx, `DELETE FROM registrations WHERE event_id = $1 AND NOT (id = ANY($2))`, event.ID, ids)
		if err != nil {
			return fmt.Errorf("remove withdrawn registrations: %w", err)
		}

		if len(event.Registrations) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, reg := range event.Registrations {
			batch.Queue(`
				INSERT INTO registrations (id, event_id, student_id, created_at)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO NOTHING
			`, reg.ID, event.ID, reg.StudentID, reg.CreatedAt)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("save registrations: %w", err)
		}

		return nil
	})
}

// GetAll получает все мероприятия без регистраций
func (r *EventRepository) GetAll(ctx context.Context) ([]model.Event, error) {
	query := `
		SELECT id, title, description, start_time, end_time, capacity, status, room_id, organizer_id, proposer_id, created_at
		FROM events
		ORDER BY start_time, id
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var (
			event  model.Event
			status string
		)
		err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Description,
			&event.StartTime,
			&event.EndTime,
			&event.Capacity,
			&status,
			&event.RoomID,
			&event.OrganizerID,
			&event.ProposerID,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		event.Status = model.EventStatus(status)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

// GetRegistrations получает все регистрации в порядке записи
func (r *EventRepository) GetRegistrations(ctx context.Context) ([]model.Registration, error) {
	rows, err := r.Query(ctx, `
		SELECT id, student_id, event_id, created_at
		FROM registrations
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("get registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.StudentID, &reg.EventID, &reg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}

	return regs, nil
}
