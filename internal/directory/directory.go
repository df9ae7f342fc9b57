// Package directory хранит пользователей, комнаты и мероприятия в памяти по ID.
// Здесь только хранение и связи, правила живут в lifecycle и ledger.
//
// Порядок блокировок: запись мероприятия, индекс каталога, календарь комнаты,
// запись пользователя. Индекс держится только на поиск, вставку и удаление,
// никогда во время колбэков.
package directory

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Freeeeeet/campus_events/internal/calendar"
	"github.com/Freeeeeet/campus_events/internal/model"
)

type userRecord struct {
	mu      sync.Mutex
	user    model.User
	deleted bool // выставляется под mu, запись больше не меняется
}

type roomRecord struct {
	room     model.Room // без Bookings, они живут в календаре
	calendar *calendar.Calendar
}

type eventRecord struct {
	mu      sync.Mutex
	event   model.Event
	removed bool
}

type Directory struct {
	mu            sync.RWMutex
	users         map[string]*userRecord
	rooms         map[string]*roomRecord
	events        map[string]*eventRecord
	registrations map[string]string // ID регистрации -> ID мероприятия
}

func New() *Directory {
	return &Directory{
		users:         make(map[string]*userRecord),
		rooms:         make(map[string]*roomRecord),
		events:        make(map[string]*eventRecord),
		registrations: make(map[string]string),
	}
}

// ========================
// Пользователи
// ========================

func (d *Directory) AddUser(user model.User) error {
	if user.ID == "" {
		return fmt.Errorf("%w: user id is empty", model.ErrInvalidInput)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.users[user.ID]; exists {
		return fmt.Errorf("%w: user %s already exists", model.ErrInvalidInput, user.ID)
	}
	d.users[user.ID] = &userRecord{user: user.Clone()}
	return nil
}

func (d *Directory) User(id string) (model.User, error) {
	rec, err := d.userRecord(id)
	if err != nil {
		return model.User{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return model.User{}, fmt.Errorf("%w: user %s", model.ErrNotFound, id)
	}
	return rec.user.Clone(), nil
}

// UserByTelegramID ищет пользователя по ID чата Telegram
func (d *Directory) UserByTelegramID(telegramID int64) (model.User, bool) {
	for _, u := range d.Users() {
		if u.TelegramID == telegramID {
			return u, true
		}
	}
	return model.User{}, false
}

// Users все пользователи по времени создания
func (d *Directory) Users() []model.User {
	d.mu.RLock()
	recs := make([]*userRecord, 0, len(d.users))
	for _, rec := range d.users {
		recs = append(recs, rec)
	}
	d.mu.RUnlock()

	out := make([]model.User, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		if !rec.deleted {
			out = append(out, rec.user.Clone())
		}
		rec.mu.Unlock()
	}

	slices.SortFunc(out, func(a, b model.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// UpdateUser применяет fn к пользователю под его блокировкой.
// Если fn вернула ошибку, запись не меняется.
func (d *Directory) UpdateUser(id string, fn func(u *model.User) error) (model.User, error) {
	rec, err := d.userRecord(id)
	if err != nil {
		return model.User{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return model.User{}, fmt.Errorf("%w: user %s", model.ErrNotFound, id)
	}

	draft := rec.user.Clone()
	if err := fn(&draft); err != nil {
		return model.User{}, err
	}
	draft.ID = rec.user.ID
	rec.user = draft
	return rec.user.Clone(), nil
}

// DeleteUser удаляет пользователя. Запись помечается удалённой под её
// блокировкой, так что UpdateUser, успевший взять запись раньше, получит
// ErrNotFound и ничего не добавит.
func (d *Directory) DeleteUser(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.users[id]
	if !ok {
		return fmt.Errorf("%w: user %s", model.ErrNotFound, id)
	}

	rec.mu.Lock()
	rec.deleted = true
	rec.mu.Unlock()

	delete(d.users, id)
	return nil
}

func (d *Directory) userRecord(id string) (*userRecord, error) {
	d.mu.RLock()
	rec, ok := d.users[id]
	d.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: user %s", model.ErrNotFound, id)
	}
	return rec, nil
}

// ========================
// Комнаты
// ========================

// AddRoom сохраняет комнату и строит календарь из room.Bookings
func (d *Directory) AddRoom(room model.Room) error {
	if room.ID == "" {
		return fmt.Errorf("%w: room id is empty", model.ErrInvalidInput)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.rooms[room.ID]; exists {
		return fmt.Errorf("%w: room %s already exists", model.ErrInvalidInput, room.ID)
	}

	cal := calendar.New(room.Bookings...)
	room.Bookings = nil
	d.rooms[room.ID] = &roomRecord{room: room, calendar: cal}
	return nil
}

// Room комната вместе с текущими бронями
func (d *Directory) Room(id string) (model.Room, error) {
	d.mu.RLock()
	rec, ok := d.rooms[id]
	d.mu.RUnlock()

	if !ok {
		return model.Room{}, fmt.Errorf("%w: room %s", model.ErrNotFound, id)
	}
	return rec.snapshot(), nil
}

// Rooms все комнаты по имени
func (d *Directory) Rooms() []model.Room {
	d.mu.RLock()
	recs := make([]*roomRecord, 0, len(d.rooms))
	for _, rec := range d.rooms {
		recs = append(recs, rec)
	}
	d.mu.RUnlock()

	out := make([]model.Room, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.snapshot())
	}

	slices.SortFunc(out, func(a, b model.Room) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Calendar календарь броней комнаты
func (d *Directory) Calendar(roomID string) (*calendar.Calendar, error) {
	d.mu.RLock()
	rec, ok := d.rooms[roomID]
	d.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: room %s", model.ErrNotFound, roomID)
	}
	return rec.calendar, nil
}

// BookRoom бронирует [start, end) за eventID под блокировкой индекса,
// чтобы комнату не удалили между поиском и бронью.
func (d *Directory) BookRoom(roomID, eventID string, start, end time.Time) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.rooms[roomID]
	if !ok {
		return false, fmt.Errorf("%w: room %s", model.ErrNotFound, roomID)
	}
	return rec.calendar.Book(eventID, start, end), nil
}

// DeleteRoom удаляет комнату без броней. Мероприятия сохраняют
// старый ID комнаты.
func (d *Directory) DeleteRoom(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.rooms[id]
	if !ok {
		return fmt.Errorf("%w: room %s", model.ErrNotFound, id)
	}
	if n := rec.calendar.Len(); n > 0 {
		return fmt.Errorf("%w: room %s has %d bookings", model.ErrRoomInUse, id, n)
	}
	delete(d.rooms, id)
	return nil
}

func (r *roomRecord) snapshot() model.Room {
	room := r.room
	room.Bookings = r.calendar.Bookings()
	return room
}

// ========================
// Мероприятия
// ========================

// AddEvent сохраняет мероприятие и индексирует его регистрации
func (d *Directory) AddEvent(event model.Event) error {
	if event.ID == "" {
		return fmt.Errorf("%w: event id is empty", model.ErrInvalidInput)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.events[event.ID]; exists {
		return fmt.Errorf("%w: event %s already exists", model.ErrInvalidInput, event.ID)
	}
	d.events[event.ID] = &eventRecord{event: event.Clone()}
	for _, reg := range event.Registrations {
		d.registrations[reg.ID] = event.ID
	}
	return nil
}

func (d *Directory) Event(id string) (model.Event, error) {
	rec, err := d.eventRecord(id)
	if err != nil {
		return model.Event{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.removed {
		return model.Event{}, fmt.Errorf("%w: event %s", model.ErrNotFound, id)
	}
	return rec.event.Clone(), nil
}

// Events все мероприятия по времени начала
func (d *Directory) Events() []model.Event {
	d.mu.RLock()
	recs := make([]*eventRecord, 0, len(d.events))
	for _, rec := range d.events {
		recs = append(recs, rec)
	}
	d.mu.RUnlock()

	out := make([]model.Event, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		if !rec.removed {
			out = append(out, rec.event.Clone())
		}
		rec.mu.Unlock()
	}

	slices.SortFunc(out, func(a, b model.Event) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// UpdateEvent применяет fn к мероприятию под его блокировкой. Внутри fn
// можно брать календарь и пользователя (именно в этом порядке).
// Если fn вернула ошибку, запись не меняется.
func (d *Directory) UpdateEvent(id string, fn func(e *model.Event) error) (model.Event, error) {
	rec, err := d.eventRecord(id)
	if err != nil {
		return model.Event{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.removed {
		return model.Event{}, fmt.Errorf("%w: event %s", model.ErrNotFound, id)
	}

	draft := rec.event.Clone()
	if err := fn(&draft); err != nil {
		return model.Event{}, err
	}
	draft.ID = rec.event.ID
	rec.event = draft
	return rec.event.Clone(), nil
}

// RemoveEvent удаляет мероприятие, если fn не вернула ошибку. fn вызывается
// под блокировкой мероприятия, как в UpdateEvent.
func (d *Directory) RemoveEvent(id string, fn func(e model.Event) error) error {
	rec, err := d.eventRecord(id)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.removed {
		return fmt.Errorf("%w: event %s", model.ErrNotFound, id)
	}
	if err := fn(rec.event.Clone()); err != nil {
		return err
	}

	d.mu.Lock()
	delete(d.events, id)
	for _, reg := range rec.event.Registrations {
		delete(d.registrations, reg.ID)
	}
	d.mu.Unlock()

	rec.removed = true
	return nil
}

func (d *Directory) eventRecord(id string) (*eventRecord, error) {
	d.mu.RLock()
	rec, ok := d.events[id]
	d.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: event %s", model.ErrNotFound, id)
	}
	return rec, nil
}

// ========================
// Индекс регистраций
// ========================

// RegistrationEvent ID мероприятия, которому принадлежит регистрация
func (d *Directory) RegistrationEvent(registrationID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	eventID, ok := d.registrations[registrationID]
	return eventID, ok
}

func (d *Directory) IndexRegistration(registrationID, eventID string) {
	d.mu.Lock()
	d.registrations[registrationID] = eventID
	d.mu.Unlock()
}

func (d *Directory) UnindexRegistration(registrationID string) {
	d.mu.Lock()
	delete(d.registrations, registrationID)
	d.mu.Unlock()
}
