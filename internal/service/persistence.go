package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Freeeeeet/campus_events/internal/directory"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/Freeeeeet/campus_events/internal/repository"
	"go.uber.org/zap"
)

type entityKind int

const (
	kindUser entityKind = iota
	kindRoom
	kindEvent
	kindDeletedUser
	kindDeletedRoom
)

type entityKey struct {
	kind entityKind
	id   string
}

// Persistence записывает изменённые сущности в хранилище.
// Каждая запись берёт актуальную копию из каталога под общим мьютексом,
// поэтому в хранилище всегда попадает последнее состояние, а не устаревший снимок.
// Неудавшиеся записи запоминаются и повторяются в Flush.
type Persistence struct {
	mu    sync.Mutex
	dir   *directory.Directory
	store repository.Store
	dirty map[entityKey]struct{}
}

func NewPersistence(dir *directory.Directory, store repository.Store) *Persistence {
	return &Persistence{dir: dir, store: store, dirty: make(map[entityKey]struct{})}
}

func (p *Persistence) SaveUsers(ctx context.Context, ids ...string) error {
	return p.write(ctx, kindUser, ids)
}

func (p *Persistence) SaveRooms(ctx context.Context, ids ...string) error {
	return p.write(ctx, kindRoom, ids)
}

func (p *Persistence) SaveEvents(ctx context.Context, ids ...string) error {
	return p.write(ctx, kindEvent, ids)
}

func (p *Persistence) DeleteUser(ctx context.Context, id string) error {
	return p.write(ctx, kindDeletedUser, []string{id})
}

func (p *Persistence) DeleteRoom(ctx context.Context, id string) error {
	return p.write(ctx, kindDeletedRoom, []string{id})
}

// Pending возвращает число записей, ожидающих повтора
func (p *Persistence) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.dirty)
}

// Flush повторяет неудавшиеся записи. Возвращает число записанных сущностей.
func (p *Persistence) Flush(ctx context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	flushed := 0
	var errs []error
	for key := range p.dirty {
		written, err := p.writeOne(ctx, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		delete(p.dirty, key)
		if written {
			flushed++
		}
	}
	return flushed, errors.Join(errs...)
}

func (p *Persistence) write(ctx context.Context, kind entityKind, ids []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var first error
	for _, id := range ids {
		key := entityKey{kind: kind, id: id}
		if _, err := p.writeOne(ctx, key); err != nil {
			p.dirty[key] = struct{}{}
			if first == nil {
				first = err
			}
			continue
		}
		delete(p.dirty, key)
	}
	return first
}

// writeOne пишет актуальное состояние сущности. Удалённые из каталога
// сущности пропускаются, written тогда false. Вызывать под p.mu.
func (p *Persistence) writeOne(ctx context.Context, key entityKey) (bool, error) {
	switch key.kind {
	case kindUser:
		user, err := p.dir.User(key.id)
		if errors.Is(err, model.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if err := p.store.SaveUser(ctx, user); err != nil {
			return false, fmt.Errorf("save user %s: %w", key.id, err)
		}
	case kindRoom:
		room, err := p.dir.Room(key.id)
		if errors.Is(err, model.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if err := p.store.SaveRoom(ctx, room); err != nil {
			return false, fmt.Errorf("save room %s: %w", key.id, err)
		}
	case kindEvent:
		event, err := p.dir.Event(key.id)
		if errors.Is(err, model.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if err := p.store.SaveEvent(ctx, event); err != nil {
			return false, fmt.Errorf("save event %s: %w", key.id, err)
		}
	case kindDeletedUser:
		// в хранилище записи может и не быть, если она так и не сохранилась
		err := p.store.DeleteUser(ctx, key.id)
		if errors.Is(err, model.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("delete user %s: %w", key.id, err)
		}
	case kindDeletedRoom:
		err := p.store.DeleteRoom(ctx, key.id)
		if errors.Is(err, model.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("delete room %s: %w", key.id, err)
		}
	}
	return true, nil
}

// logDeferred логирует запись, не дошедшую до хранилища. Изменение в памяти
// уже состоялось, Flush повторит запись.
func logDeferred(logger *zap.Logger, err error, fields ...zap.Field) {
	if err == nil {
		return
	}
	logger.Error("⚠️ Change kept in memory, store write deferred", append(fields, zap.Error(err))...)
}
