package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/campus_events/internal/directory"
	"github.com/Freeeeeet/campus_events/internal/lifecycle"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RoomService struct {
	dir       *directory.Directory
	lifecycle *lifecycle.Manager
	persist   *Persistence
	logger    *zap.Logger
	now       func() time.Time
}

func NewRoomService(dir *directory.Directory, lifecycle *lifecycle.Manager, persist *Persistence, logger *zap.Logger) *RoomService {
	return &RoomService{
		dir:       dir,
		lifecycle: lifecycle,
		persist:   persist,
		logger:    logger,
		now:       time.Now,
	}
}

type AddRoomInput struct {
	Name     string
	Location string
	Capacity int
}

// ScheduleItem бронь комнаты вместе с мероприятием, которому она принадлежит
type ScheduleItem struct {
	Booking model.Booking
	Event   model.Event
}

// AddRoom добавляет комнату (только администратор)
func (s *RoomService) AddRoom(ctx context.Context, actorID string, in AddRoomInput) (model.Room, error) {
	if _, err := requireAdmin(s.dir, actorID); err != nil {
		return model.Room{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Room{}, fmt.Errorf("%w: room name is required", model.ErrInvalidInput)
	}
	if in.Capacity < 1 {
		return model.Room{}, model.ErrInvalidCapacity
	}

	room := model.Room{
		ID:        uuid.NewString(),
		Name:      name,
		Location:  strings.TrimSpace(in.Location),
		Capacity:  in.Capacity,
		CreatedAt: s.now(),
	}

	if err := s.dir.AddRoom(room); err != nil {
		return model.Room{}, err
	}
	if err := s.persist.SaveRooms(ctx, room.ID); err != nil {
		if rbErr := s.dir.DeleteRoom(room.ID); rbErr == nil {
			return model.Room{}, err
		}
		// комнату уже успели забронировать, оставляем до Flush
		logDeferred(s.logger, err, zap.String("room_id", room.ID))
	}

	s.logger.Info("Room added",
		zap.String("room_id", room.ID),
		zap.String("name", room.Name),
		zap.Int("capacity", room.Capacity),
	)
	return room, nil
}

// DeleteRoom удаляет комнату без броней (только администратор)
func (s *RoomService) DeleteRoom(ctx context.Context, actorID, id string) error {
	if _, err := requireAdmin(s.dir, actorID); err != nil {
		return err
	}

	if err := s.dir.DeleteRoom(id); err != nil {
		return err
	}
	logDeferred(s.logger, s.persist.DeleteRoom(ctx, id), zap.String("room_id", id))

	s.logger.Info("Room deleted", zap.String("room_id", id), zap.String("actor_id", actorID))
	return nil
}

func (s *RoomService) List(_ context.Context) []model.Room {
	return s.dir.Rooms()
}

func (s *RoomService) Get(_ context.Context, id string) (model.Room, error) {
	return s.dir.Room(id)
}

// Schedule возвращает брони комнаты по времени начала
func (s *RoomService) Schedule(_ context.Context, roomID string) ([]ScheduleItem, error) {
	room, err := s.dir.Room(roomID)
	if err != nil {
		return nil, err
	}

	items := make([]ScheduleItem, 0, len(room.Bookings))
	for _, b := range room.Bookings {
		item := ScheduleItem{Booking: b}
		if event, err := s.dir.Event(b.EventID); err == nil {
			item.Event = event
		}
		items = append(items, item)
	}
	return items, nil
}

// IsAvailable проверяет, свободна ли комната на [start, end)
func (s *RoomService) IsAvailable(_ context.Context, roomID string, start, end time.Time) (bool, error) {
	return s.lifecycle.IsAvailable(roomID, start, end)
}
