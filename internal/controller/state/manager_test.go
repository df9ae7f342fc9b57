package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManager_StateLifecycle(t *testing.T) {
	sm := NewManager()
	const tg = int64(42)

	require.Equal(t, StateNone, sm.GetState(tg))

	sm.SetState(tg, StateProposeTitle)
	sm.SetData(tg, KeyTitle, "Robotics night")
	require.Equal(t, StateProposeTitle, sm.GetState(tg))

	title, ok := sm.GetString(tg, KeyTitle)
	require.True(t, ok)
	require.Equal(t, "Robotics night", title)

	sm.SetData(tg, KeyCapacity, 30)
	_, ok = sm.GetString(tg, KeyCapacity)
	require.False(t, ok, "не строка")

	data := sm.GetAllData(tg)
	data[KeyTitle] = "changed"
	title, _ = sm.GetString(tg, KeyTitle)
	require.Equal(t, "Robotics night", title, "GetAllData возвращает копию")

	sm.SetState(tg, StateNone)
	require.Equal(t, StateNone, sm.GetState(tg))
	require.Nil(t, sm.GetAllData(tg))
}

func TestManager_ClearState(t *testing.T) {
	sm := NewManager()
	sm.SetData(1, KeyUserID, "u1")
	sm.SetState(1, StateProposeRoom)
	sm.SetState(2, StateProposeTitle)

	sm.ClearState(1)

	require.Equal(t, StateNone, sm.GetState(1))
	_, ok := sm.GetData(1, KeyUserID)
	require.False(t, ok)
	require.Equal(t, StateProposeTitle, sm.GetState(2))
}

func TestManager_Concurrent(t *testing.T) {
	sm := NewManager()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			sm.SetState(id, StateProposeTitle)
			sm.SetData(id, KeyTitle, "t")
			_ = sm.GetState(id)
			sm.ClearState(id)
		}(int64(i))
	}
	wg.Wait()

	for i := range 50 {
		require.Equal(t, StateNone, sm.GetState(int64(i)))
	}
}

func TestManager_DialogExpires(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	sm := NewManager(WithTTL(10*time.Minute), WithClock(func() time.Time { return now }))

	sm.SetState(1, StateProposeCapacity)
	sm.SetData(1, KeyCapacity, 25)
	sm.SetState(2, StateProposeTitle)

	now = now.Add(9 * time.Minute)
	sm.SetData(2, KeyTitle, "Robotics night")
	capacity, ok := Get[int](sm, 1, KeyCapacity)
	require.True(t, ok)
	require.Equal(t, 25, capacity)

	now = now.Add(2 * time.Minute)
	require.Equal(t, StateNone, sm.GetState(1))
	_, ok = sm.GetData(1, KeyCapacity)
	require.False(t, ok)
	require.Equal(t, StateProposeTitle, sm.GetState(2), "запись продлевает диалог")

	require.Equal(t, 1, sm.Sweep())
	require.Equal(t, 0, sm.Sweep())

	// Новый диалог после протухшего начинается с чистых данных
	sm.SetState(1, StateProposeTitle)
	_, ok = Get[int](sm, 1, KeyCapacity)
	require.False(t, ok)
}

func TestGet_WrongType(t *testing.T) {
	sm := NewManager()
	sm.SetData(7, KeyStart, "not a time")

	_, ok := Get[time.Time](sm, 7, KeyStart)
	require.False(t, ok)
	_, ok = Get[time.Time](sm, 7, KeyEnd)
	require.False(t, ok)
}
