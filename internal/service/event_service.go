package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/campus_events/internal/directory"
	"github.com/Freeeeeet/campus_events/internal/lifecycle"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type EventService struct {
	dir       *directory.Directory
	lifecycle *lifecycle.Manager
	persist   *Persistence
	logger    *zap.Logger
	now       func() time.Time
}

func NewEventService(dir *directory.Directory, lifecycle *lifecycle.Manager, persist *Persistence, logger *zap.Logger) *EventService {
	return &EventService{
		dir:       dir,
		lifecycle: lifecycle,
		persist:   persist,
		logger:    logger,
		now:       time.Now,
	}
}

// EventFilter фильтр списка мероприятий. Пустые поля не фильтруют.
type EventFilter struct {
	Status model.EventStatus
	// Search ищет без учёта регистра в названии и имени организатора
	Search string
}

// EventReport сводка по одному мероприятию
type EventReport struct {
	Event         model.Event
	RoomName      string
	OrganizerName string
	Registered    int
	Remaining     int
	Students      []model.User
}

// Summary общая статистика
type Summary struct {
	ByStatus   map[model.EventStatus]int
	Students   int
	Organizers int
	Admins     int
	Rooms      int
}

// Create создаёт мероприятие. Организатор получает активное мероприятие,
// студент - предложение, ожидающее одобрения.
func (s *EventService) Create(ctx context.Context, req lifecycle.CreateRequest) (model.Event, error) {
	event, err := s.lifecycle.Create(req)
	if err != nil {
		s.logger.Warn("Event creation refused",
			zap.String("creator_id", req.CreatorID),
			zap.String("room_id", req.RoomID),
			zap.Error(err),
		)
		return model.Event{}, err
	}

	// Незаписанное мероприятие откатываем вместе с бронью
	if err := s.persist.SaveEvents(ctx, event.ID); err != nil {
		rbErr := s.lifecycle.Discard(event.ID)
		if rbErr == nil {
			return model.Event{}, err
		}
		// на мероприятие уже записались, оставляем его и ждём Flush
		s.logger.Error("❌ Failed to roll back event creation",
			zap.String("event_id", event.ID),
			zap.Error(rbErr),
		)
	}
	logDeferred(s.logger, s.persist.SaveRooms(ctx, event.RoomID), zap.String("room_id", event.RoomID))

	s.logger.Info("Event created",
		zap.String("event_id", event.ID),
		zap.String("title", event.Title),
		zap.String("status", string(event.Status)),
		zap.String("room_id", event.RoomID),
		zap.Time("start", event.StartTime),
		zap.Time("end", event.EndTime),
	)
	return event, nil
}

// Approve одобряет предложение студента
func (s *EventService) Approve(ctx context.Context, eventID, organizerID string) (model.Event, error) {
	event, err := s.lifecycle.Approve(eventID, organizerID)
	if err != nil {
		return model.Event{}, err
	}

	logDeferred(s.logger, s.persist.SaveEvents(ctx, event.ID), zap.String("event_id", event.ID))

	s.logger.Info("Event approved",
		zap.String("event_id", event.ID),
		zap.String("organizer_id", organizerID),
	)
	return event, nil
}

// Reject отклоняет предложение и освобождает комнату
func (s *EventService) Reject(ctx context.Context, eventID, organizerID string) (model.Event, error) {
	event, err := s.lifecycle.Reject(eventID, organizerID)
	if err != nil {
		return model.Event{}, err
	}

	s.saveEventAndRoom(ctx, event)

	s.logger.Info("Event rejected",
		zap.String("event_id", event.ID),
		zap.String("organizer_id", organizerID),
	)
	return event, nil
}

// Cancel отменяет активное мероприятие, освобождает комнату и уведомляет записавшихся
func (s *EventService) Cancel(ctx context.Context, eventID, organizerID string) (model.Event, error) {
	event, err := s.lifecycle.Cancel(ctx, eventID, organizerID)
	if err != nil {
		return model.Event{}, err
	}

	s.saveEventAndRoom(ctx, event)

	s.logger.Info("Event cancelled",
		zap.String("event_id", event.ID),
		zap.String("organizer_id", organizerID),
		zap.Int("registrations", len(event.Registrations)),
	)
	return event, nil
}

// ExpireProposals отклоняет предложения, время начала которых уже наступило
func (s *EventService) ExpireProposals(ctx context.Context) ([]model.Event, error) {
	expired := s.lifecycle.ExpireProposals(s.now())
	for _, event := range expired {
		s.saveEventAndRoom(ctx, event)

		s.logger.Info("Stale proposal rejected",
			zap.String("event_id", event.ID),
			zap.Time("start", event.StartTime),
		)
	}
	return expired, nil
}

func (s *EventService) Get(_ context.Context, id string) (model.Event, error) {
	return s.dir.Event(id)
}

// List возвращает мероприятия по времени начала
func (s *EventService) List(_ context.Context, filter EventFilter) []model.Event {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	return lo.Filter(s.dir.Events(), func(e model.Event, _ int) bool {
		if filter.Status != "" && e.Status != filter.Status {
			return false
		}
		if search == "" {
			return true
		}
		if strings.Contains(strings.ToLower(e.Title), search) {
			return true
		}
		return strings.Contains(strings.ToLower(s.OrganizerName(e)), search)
	})
}

// Pending возвращает предложения, ожидающие решения
func (s *EventService) Pending(ctx context.Context) []model.Event {
	return s.List(ctx, EventFilter{Status: model.EventStatusPending})
}

// OrganizedBy возвращает мероприятия, которыми владеет организатор
func (s *EventService) OrganizedBy(_ context.Context, organizerID string) []model.Event {
	return lo.Filter(s.dir.Events(), func(e model.Event, _ int) bool {
		return e.OrganizerID != nil && *e.OrganizerID == organizerID
	})
}

// Report собирает сводку по мероприятию (только организатор или администратор)
func (s *EventService) Report(_ context.Context, actorID, eventID string) (EventReport, error) {
	if _, err := requireManager(s.dir, actorID); err != nil {
		return EventReport{}, err
	}

	event, err := s.dir.Event(eventID)
	if err != nil {
		return EventReport{}, err
	}

	report := EventReport{
		Event:         event,
		OrganizerName: s.OrganizerName(event),
		Registered:    len(event.Registrations),
		Remaining:     event.Remaining(),
	}
	if room, err := s.dir.Room(event.RoomID); err == nil {
		report.RoomName = room.Name
	}
	for _, id := range event.StudentIDs() {
		if student, err := s.dir.User(id); err == nil {
			report.Students = append(report.Students, student)
		}
	}

	return report, nil
}

// Summary считает мероприятия по статусам и пользователей по ролям
func (s *EventService) Summary(_ context.Context) Summary {
	users := s.dir.Users()
	byRole := lo.CountValuesBy(users, func(u model.User) model.Role { return u.Role })

	byStatus := map[model.EventStatus]int{
		model.EventStatusPending:   0,
		model.EventStatusActive:    0,
		model.EventStatusCancelled: 0,
		model.EventStatusRejected:  0,
	}
	for status, n := range lo.CountValuesBy(s.dir.Events(), func(e model.Event) model.EventStatus { return e.Status }) {
		byStatus[status] = n
	}

	return Summary{
		ByStatus:   byStatus,
		Students:   byRole[model.RoleStudent],
		Organizers: byRole[model.RoleOrganizer],
		Admins:     byRole[model.RoleAdmin],
		Rooms:      len(s.dir.Rooms()),
	}
}

// ExportCSV пишет все мероприятия в CSV
func (s *EventService) ExportCSV(_ context.Context, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Event ID", "Title", "Status", "Organizer", "Capacity", "Registered"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, e := range s.dir.Events() {
		organizer := s.OrganizerName(e)
		if organizer == "" {
			organizer = "None"
		}

		err := cw.Write([]string{
			e.ID,
			e.Title,
			string(e.Status),
			organizer,
			strconv.Itoa(e.Capacity),
			strconv.Itoa(len(e.Registrations)),
		})
		if err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// OrganizerName возвращает имя владельца мероприятия или пустую строку
func (s *EventService) OrganizerName(event model.Event) string {
	if event.OrganizerID == nil {
		return ""
	}
	organizer, err := s.dir.User(*event.OrganizerID)
	if err != nil {
		return ""
	}
	return organizer.Name
}

// saveEventAndRoom сохраняет уже состоявшийся переход, ошибки только логируются
func (s *EventService) saveEventAndRoom(ctx context.Context, event model.Event) {
	logDeferred(s.logger, s.persist.SaveEvents(ctx, event.ID), zap.String("event_id", event.ID))
	logDeferred(s.logger, s.persist.SaveRooms(ctx, event.RoomID), zap.String("room_id", event.RoomID))
}
