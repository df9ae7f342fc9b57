// Package calendar хранит брони одной комнаты и решает,
// помещается ли между ними новый полуинтервал [start, end).
package calendar

import (
	"slices"
	"sync"
	"time"

	"github.com/Freeeeeet/campus_events/internal/model"
)

// Calendar безопасен для конкурентного доступа. Любое изменение заново
// проверяет пересечения под блокировкой, ответ IsAvailable лишь подсказка.
type Calendar struct {
	mu       sync.RWMutex
	bookings []model.Booking
}

// New создаёт календарь с уже существующими бронями, например после рестарта.
// Брони принимаются как есть, пересечения на совести вызывающего.
func New(bookings ...model.Booking) *Calendar {
	return &Calendar{bookings: slices.Clone(bookings)}
}

// IsAvailable свободен ли [start, end).
// Пустой или перевёрнутый интервал никогда не свободен.
func (c *Calendar) IsAvailable(start, end time.Time) bool {
	if !start.Before(end) {
		return false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.freeLocked(start, end)
}

// Book бронирует интервал за eventID, если он свободен. Возвращает false
// и ничего не меняет, если интервал некорректен, занят или у мероприятия
// здесь уже есть бронь.
func (c *Calendar) Book(eventID string, start, end time.Time) bool {
	if !start.Before(end) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexLocked(eventID) >= 0 || !c.freeLocked(start, end) {
		return false
	}

	c.bookings = append(c.bookings, model.Booking{
		EventID:   eventID,
		StartTime: start,
		EndTime:   end,
	})
	return true
}

// Release снимает бронь eventID. Неизвестные мероприятия игнорируются.
func (c *Calendar) Release(eventID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(eventID); i >= 0 {
		c.bookings = slices.Delete(c.bookings, i, i+1)
	}
}

// Has есть ли у eventID бронь
func (c *Calendar) Has(eventID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.indexLocked(eventID) >= 0
}

// Len количество броней
func (c *Calendar) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.bookings)
}

// Bookings копия броней по времени начала
func (c *Calendar) Bookings() []model.Booking {
	c.mu.RLock()
	out := slices.Clone(c.bookings)
	c.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b model.Booking) int {
		return a.StartTime.Compare(b.StartTime)
	})
	return out
}

func (c *Calendar) freeLocked(start, end time.Time) bool {
	for _, b := range c.bookings {
		if b.Overlaps(start, end) {
			return false
		}
	}
	return true
}

func (c *Calendar) indexLocked(eventID string) int {
	return slices.IndexFunc(c.bookings, func(b model.Booking) bool {
		return b.EventID == eventID
	})
}
