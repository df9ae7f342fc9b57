package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Freeeeeet/campus_events/internal/directory"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/dgraph-io/badger/v4"
)

const (
	userPrefix  = "user:"
	roomPrefix  = "room:"
	eventPrefix = "event:"
)

var _ Store = (*BadgerStore)(nil)

// BadgerStore хранит состояние во встроенной базе Badger, по ключу на сущность
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore открывает (или создаёт) базу в каталоге path
func OpenBadgerStore(path string) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return NewBadgerStore(db), nil
}

func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func (s *BadgerStore) Load(_ context.Context) (directory.Snapshot, error) {
	var (
		snapshot directory.Snapshot
		err      error
	)

	err = s.db.View(func(txn *badger.Txn) error {
		if snapshot.Users, err = scan[model.User](txn, userPrefix); err != nil {
			return err
		}
		if snapshot.Rooms, err = scan[model.Room](txn, roomPrefix); err != nil {
			return err
		}
		snapshot.Events, err = scan[model.Event](txn, eventPrefix)
		return err
	})
	if err != nil {
		return directory.Snapshot{}, fmt.Errorf("load state: %w", err)
	}

	return snapshot, nil
}

func (s *BadgerStore) SaveUser(_ context.Context, user model.User) error {
	return s.put(userPrefix+user.ID, user)
}

func (s *BadgerStore) DeleteUser(_ context.Context, id string) error {
	return s.delete(userPrefix+id, "user")
}

func (s *BadgerStore) SaveRoom(_ context.Context, room model.Room) error {
	return s.put(roomPrefix+room.ID, room)
}

func (s *BadgerStore) DeleteRoom(_ context.Context, id string) error {
	return s.delete(roomPrefix+id, "room")
}

func (s *BadgerStore) SaveEvent(_ context.Context, event model.Event) error {
	return s.put(eventPrefix+event.ID, event)
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) put(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (s *BadgerStore) delete(key, kind string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(key)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s %s", model.ErrNotFound, kind, key)
			}
			return err
		}
		return txn.Delete([]byte(key))
	})
}

func scan[T any](txn *badger.Txn, prefix string) ([]T, error) {
	options := badger.DefaultIteratorOptions
	options.Prefix = []byte(prefix)

	it := txn.NewIterator(options)
	defer it.Close()

	var out []T
	for it.Seek(options.Prefix); it.ValidForPrefix(options.Prefix); it.Next() {
		var v T
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		})
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", it.Item().Key(), err)
		}
		out = append(out, v)
	}

	return out, nil
}
