//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_store.go -package=mocks
package repository

import (
	"context"

	"github.com/Freeeeeet/campus_events/internal/directory"
	"github.com/Freeeeeet/campus_events/internal/model"
)

// Store сохраняет состояние каталога. Сервисы пишут в него после каждого
// успешного изменения, а при старте состояние поднимается через Load.
type Store interface {
	// Load возвращает всё сохранённое состояние
	Load(ctx context.Context) (directory.Snapshot, error)

	SaveUser(ctx context.Context, user model.User) error
	DeleteUser(ctx context.Context, id string) error

	// SaveRoom сохраняет комнату вместе с её бронями
	SaveRoom(ctx context.Context, room model.Room) error
	DeleteRoom(ctx context.Context, id string) error

	// SaveEvent сохраняет мероприятие вместе с его регистрациями
	SaveEvent(ctx context.Context, event model.Event) error

	Close() error
}
