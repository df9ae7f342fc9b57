package state

import (
	"maps"
	"sync"
	"time"
)

// DefaultTTL сколько живёт брошенный диалог
const DefaultTTL = 30 * time.Minute

// Manager хранит диалоги пользователей по telegram ID.
// Диалог без активности дольше ttl считается завершённым.
type Manager struct {
	mu      sync.RWMutex
	dialogs map[int64]*UserData
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*Manager)

func WithTTL(ttl time.Duration) Option {
	return func(sm *Manager) { sm.ttl = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(sm *Manager) { sm.now = now }
}

func NewManager(opts ...Option) *Manager {
	sm := &Manager{
		dialogs: make(map[int64]*UserData),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// live возвращает диалог, если он не протух. Вызывать под блокировкой.
func (sm *Manager) live(telegramID int64) (*UserData, bool) {
	d, ok := sm.dialogs[telegramID]
	if !ok || sm.now().Sub(d.UpdatedAt) > sm.ttl {
		return nil, false
	}
	return d, true
}

// touch возвращает диалог для записи, заводя новый вместо протухшего
func (sm *Manager) touch(telegramID int64) *UserData {
	d, ok := sm.live(telegramID)
	if !ok {
		d = &UserData{State: StateNone, Data: make(map[string]any)}
		sm.dialogs[telegramID] = d
	}
	d.UpdatedAt = sm.now()
	return d
}

func (sm *Manager) GetState(telegramID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if d, ok := sm.live(telegramID); ok {
		return d.State
	}
	return StateNone
}

// SetState переводит диалог на шаг. StateNone завершает диалог.
func (sm *Manager) SetState(telegramID int64, state UserState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if state == StateNone {
		delete(sm.dialogs, telegramID)
		return
	}
	sm.touch(telegramID).State = state
}

func (sm *Manager) GetData(telegramID int64, key string) (any, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	d, ok := sm.live(telegramID)
	if !ok {
		return nil, false
	}
	value, ok := d.Data[key]
	return value, ok
}

func (sm *Manager) SetData(telegramID int64, key string, value any) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.touch(telegramID).Data[key] = value
}

func (sm *Manager) ClearState(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.dialogs, telegramID)
}

// GetAllData возвращает копию данных диалога
func (sm *Manager) GetAllData(telegramID int64) map[string]any {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if d, ok := sm.live(telegramID); ok {
		return maps.Clone(d.Data)
	}
	return nil
}

func (sm *Manager) GetString(telegramID int64, key string) (string, bool) {
	return Get[string](sm, telegramID, key)
}

// Sweep удаляет протухшие диалоги и возвращает их количество
func (sm *Manager) Sweep() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	removed := 0
	for id := range sm.dialogs {
		if _, ok := sm.live(id); !ok {
			delete(sm.dialogs, id)
			removed++
		}
	}
	return removed
}

// Get достаёт значение нужного типа из данных диалога
func Get[T any](sm *Manager, telegramID int64, key string) (T, bool) {
	var zero T
	value, ok := sm.GetData(telegramID, key)
	if !ok {
		return zero, false
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
