// Package lifecycle создаёт мероприятия и ведёт их по статусам
// Pending -> Active -> Cancelled и Pending -> Rejected, вместе со статусом
// меняется бронь комнаты.
package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/campus_events/internal/directory"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Manager struct {
	dir      *directory.Directory
	notifier Notifier
	now      func() time.Time
	newID    func() string
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

// NewManager создаёт менеджер. notifier может быть nil.
func NewManager(dir *directory.Directory, notifier Notifier, opts ...Option) *Manager {
	m := &Manager{
		dir:      dir,
		notifier: notifier,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type CreateRequest struct {
	CreatorID   string
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Capacity    int
	RoomID      string
}

// Create бронирует комнату и только после этого заводит мероприятие.
// У организатора оно сразу активно, у студента ждёт одобрения.
func (m *Manager) Create(req CreateRequest) (model.Event, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.Event{}, fmt.Errorf("%w: title is required", model.ErrInvalidInput)
	}
	if !req.StartTime.Before(req.EndTime) {
		return model.Event{}, model.ErrInvalidInterval
	}
	if req.Capacity < 1 {
		return model.Event{}, model.ErrInvalidCapacity
	}

	creator, err := m.dir.User(req.CreatorID)
	if err != nil {
		return model.Event{}, err
	}

	status, err := InitialStatus(creator.Role)
	if err != nil {
		return model.Event{}, err
	}

	id := m.newID()
	booked, err := m.dir.BookRoom(req.RoomID, id, req.StartTime, req.EndTime)
	if err != nil {
		return model.Event{}, err
	}
	if !booked {
		return model.Event{}, fmt.Errorf("%w: room %s, %s - %s", model.ErrRoomConflict,
			req.RoomID, req.StartTime.Format(time.RFC3339), req.EndTime.Format(time.RFC3339))
	}

	event := model.Event{
		ID:          id,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Capacity:    req.Capacity,
		Status:      status,
		RoomID:      req.RoomID,
		ProposerID:  creator.ID,
		CreatedAt:   m.now(),
	}
	if status == model.EventStatusActive {
		event.OrganizerID = lo.ToPtr(creator.ID)
	}

	if err := m.dir.AddEvent(event); err != nil {
		m.release(event)
		return model.Event{}, err
	}

	return event, nil
}

// Approve активирует предложение и делает организатора владельцем.
// Бронь, сделанная при предложении, остаётся.
func (m *Manager) Approve(eventID, organizerID string) (model.Event, error) {
	return m.transition(eventID, organizerID, ActionApprove)
}

// Reject отклоняет предложение и освобождает комнату
func (m *Manager) Reject(eventID, organizerID string) (model.Event, error) {
	return m.transition(eventID, organizerID, ActionReject)
}

// Cancel отменяет активное мероприятие, освобождает комнату
// и один раз уведомляет записавшихся.
func (m *Manager) Cancel(ctx context.Context, eventID, organizerID string) (model.Event, error) {
	event, err := m.transition(eventID, organizerID, ActionCancel)
	if err != nil {
		return model.Event{}, err
	}

	if m.notifier != nil {
		m.notifier.Notify(ctx, event, CancellationMessage(event))
	}
	return event, nil
}

// ExpireProposals отклоняет предложения, начавшиеся не позже now
func (m *Manager) ExpireProposals(now time.Time) []model.Event {
	var expired []model.Event

	for _, candidate := range m.dir.Events() {
		if candidate.Status != model.EventStatusPending || candidate.StartTime.After(now) {
			continue
		}

		event, err := m.dir.UpdateEvent(candidate.ID, func(e *model.Event) error {
			if e.Status != model.EventStatusPending {
				return model.ErrInvalidTransition
			}
			m.release(*e)
			e.Status = model.EventStatusRejected
			return nil
		})
		if err == nil {
			expired = append(expired, event)
		}
	}

	return expired
}

// Discard убирает только что созданное мероприятие вместе с бронью.
// Если на него уже успели записаться, мероприятие остаётся.
func (m *Manager) Discard(eventID string) error {
	return m.dir.RemoveEvent(eventID, func(e model.Event) error {
		if len(e.Registrations) > 0 {
			return fmt.Errorf("%w: event %s already has %d registrations",
				model.ErrInvalidTransition, e.ID, len(e.Registrations))
		}
		m.release(e)
		return nil
	})
}

// IsAvailable проверяет, свободна ли комната на [start, end)
func (m *Manager) IsAvailable(roomID string, start, end time.Time) (bool, error) {
	cal, err := m.dir.Calendar(roomID)
	if err != nil {
		return false, err
	}
	return cal.IsAvailable(start, end), nil
}

func (m *Manager) transition(eventID, actorID string, action Action) (model.Event, error) {
	actor, err := m.dir.User(actorID)
	if err != nil {
		return model.Event{}, err
	}
	if !actor.CanManageEvents() {
		return model.Event{}, fmt.Errorf("%w: %s cannot %s events", model.ErrNotPermitted, actor.Role, action)
	}

	return m.dir.UpdateEvent(eventID, func(e *model.Event) error {
		next, err := Next(e.Status, action)
		if err != nil {
			return err
		}

		if action == ActionApprove {
			e.OrganizerID = lo.ToPtr(actor.ID)
		}
		if releasesRoom(action) {
			m.release(*e)
		}
		e.Status = next
		return nil
	})
}

func (m *Manager) release(event model.Event) {
	// комнату с бронями удалить нельзя, отсутствие календаря означает что освобождать нечего
	if cal, err := m.dir.Calendar(event.RoomID); err == nil {
		cal.Release(event.ID)
	}
}
