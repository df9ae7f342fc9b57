package ledger_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/campus_events/internal/directory"
	"github.com/Freeeeeet/campus_events/internal/ledger"
	"github.com/Freeeeeet/campus_events/internal/lifecycle"
	"github.com/Freeeeeet/campus_events/internal/mocks"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

type fixture struct {
	dir       *directory.Directory
	lifecycle *lifecycle.Manager
	ledger    *ledger.Ledger
}

func newFixture(t *testing.T, notifier lifecycle.Notifier, students ...string) fixture {
	t.Helper()
	req := require.New(t)

	dir := directory.New()
	req.NoError(dir.AddUser(model.User{ID: "org", Name: "Olga", Role: model.RoleOrganizer}))
	req.NoError(dir.AddRoom(model.Room{ID: "lab", Name: "Lab", Capacity: 2}))
	for _, id := range students {
		req.NoError(dir.AddUser(model.User{ID: id, Name: id, Role: model.RoleStudent}))
	}

	return fixture{
		dir:       dir,
		lifecycle: lifecycle.NewManager(dir, notifier),
		ledger:    ledger.New(dir, ledger.WithClock(func() time.Time { return day })),
	}
}

func (f fixture) createEvent(t *testing.T, creator string, capacity int) model.Event {
	t.Helper()
	event, err := f.lifecycle.Create(lifecycle.CreateRequest{
		CreatorID: creator,
		Title:     "Workshop",
		StartTime: day.Add(10 * time.Hour),
		EndTime:   day.Add(11 * time.Hour),
		Capacity:  capacity,
		RoomID:    "lab",
	})
	require.NoError(t, err)
	return event
}

func TestLedger_Register(t *testing.T) {
	t.Run("should register up to capacity then report full", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t, nil, "s1", "s2", "s3")
		event := f.createEvent(t, "org", 2)

		r1, err := f.ledger.Register("s1", event.ID)
		req.NoError(err)
		req.Equal(day, r1.CreatedAt)
		req.Equal(event.ID, r1.EventID)

		r2, err := f.ledger.Register("s2", event.ID)
		req.NoError(err)

		_, err = f.ledger.Register("s3", event.ID)
		req.ErrorIs(err, model.ErrEventFull)

		stored, err := f.dir.Event(event.ID)
		req.NoError(err)
		req.Equal([]model.Registration{r1, r2}, stored.Registrations)
		req.True(stored.IsFull())

		student, err := f.dir.User("s1")
		req.NoError(err)
		req.Equal([]string{r1.ID}, student.RegistrationIDs)

		student, err = f.dir.User("s3")
		req.NoError(err)
		req.Empty(student.RegistrationIDs)
	})

	t.Run("should refuse duplicate registration", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t, nil, "s1")
		event := f.createEvent(t, "org", 5)

		_, err := f.ledger.Register("s1", event.ID)
		req.NoError(err)

		_, err = f.ledger.Register("s1", event.ID)
		req.ErrorIs(err, model.ErrDuplicateRegistration)

		stored, err := f.dir.Event(event.ID)
		req.NoError(err)
		req.Len(stored.Registrations, 1)
	})

	t.Run("should report not active before duplicate and full", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t, nil, "s1", "s2")
		event := f.createEvent(t, "org", 1)

		_, err := f.ledger.Register("s1", event.ID)
		req.NoError(err)

		// заполнено и студент уже записан: проверка дубля идёт раньше вместимости
		_, err = f.ledger.Register("s1", event.ID)
		req.ErrorIs(err, model.ErrDuplicateRegistration)
		req.NotErrorIs(err, model.ErrEventFull)

		_, err = f.lifecycle.Cancel(context.Background(), event.ID, "org")
		req.NoError(err)

		_, err = f.ledger.Register("s1", event.ID)
		req.ErrorIs(err, model.ErrEventNotActive)
		req.NotErrorIs(err, model.ErrDuplicateRegistration)

		_, err = f.ledger.Register("s2", event.ID)
		req.ErrorIs(err, model.ErrEventNotActive)
		req.NotErrorIs(err, model.ErrEventFull)
	})

	t.Run("should refuse pending proposals", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t, nil, "s1", "s2")
		proposal := f.createEvent(t, "s2", 3)

		_, err := f.ledger.Register("s1", proposal.ID)
		req.ErrorIs(err, model.ErrEventNotActive)
	})

	t.Run("should reject unknown ids and non students", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t, nil, "s1")
		event := f.createEvent(t, "org", 3)

		_, err := f.ledger.Register("ghost", event.ID)
		req.ErrorIs(err, model.ErrNotFound)

		_, err = f.ledger.Register("s1", "missing")
		req.ErrorIs(err, model.ErrNotFound)

		_, err = f.ledger.Register("org", event.ID)
		req.ErrorIs(err, model.ErrNotPermitted)
	})

	t.Run("should never exceed capacity under concurrent registrations", func(t *testing.T) {
		req := require.New(t)
		students := make([]string, 50)
		for i := range students {
			students[i] = fmt.Sprintf("s%d", i)
		}
		f := newFixture(t, nil, students...)
		event := f.createEvent(t, "org", 10)

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			full int
		)
		for _, id := range students {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				if _, err := f.ledger.Register(id, event.ID); err != nil {
					req.ErrorIs(err, model.ErrEventFull)
					mu.Lock()
					full++
					mu.Unlock()
				}
			}(id)
		}
		wg.Wait()

		stored, err := f.dir.Event(event.ID)
		req.NoError(err)
		req.Len(stored.Registrations, 10)
		req.Equal(40, full)
	})
}

func TestLedger_Withdraw(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, nil, "s1", "s2")
	event := f.createEvent(t, "org", 1)

	reg, err := f.ledger.Register("s1", event.ID)
	req.NoError(err)

	_, err = f.ledger.Register("s2", event.ID)
	req.ErrorIs(err, model.ErrEventFull)

	withdrawn, removed, err := f.ledger.Withdraw(reg.ID)
	req.NoError(err)
	req.True(removed)
	req.Equal(reg, withdrawn)

	student, err := f.dir.User("s1")
	req.NoError(err)
	req.Empty(student.RegistrationIDs)

	// повторный вызов - no-op
	_, removed, err = f.ledger.Withdraw(reg.ID)
	req.NoError(err)
	req.False(removed)

	_, err = f.ledger.Register("s2", event.ID)
	req.NoError(err)

	_, removed, err = f.ledger.WithdrawStudent("s2", event.ID)
	req.NoError(err)
	req.True(removed)

	_, removed, err = f.ledger.WithdrawStudent("s2", event.ID)
	req.NoError(err)
	req.False(removed)

	// после отмены регистрации место снова свободно и для того же студента
	_, err = f.ledger.Register("s1", event.ID)
	req.NoError(err)
}

// Lab: capacity 2, two students fill the event, the third is refused,
// cancellation frees [10:00, 11:00) for a new proposal.
func TestScenario_LabEvening(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	f := newFixture(t, notifier, "s1", "s2", "s3")

	a := f.createEvent(t, "org", 2)
	req.Equal(model.EventStatusActive, a.Status)

	_, err := f.ledger.Register("s1", a.ID)
	req.NoError(err)
	_, err = f.ledger.Register("s2", a.ID)
	req.NoError(err)

	stored, err := f.dir.Event(a.ID)
	req.NoError(err)
	req.Len(stored.Registrations, 2)
	req.True(stored.IsFull())

	_, err = f.ledger.Register("s3", a.ID)
	req.ErrorIs(err, model.ErrEventFull)

	notifier.EXPECT().
		Notify(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, e model.Event, _ string) {
			req.ElementsMatch([]string{"s1", "s2"}, e.StudentIDs())
		}).
		Times(1)

	cancelled, err := f.lifecycle.Cancel(context.Background(), a.ID, "org")
	req.NoError(err)
	req.Equal(model.EventStatusCancelled, cancelled.Status)

	available, err := f.lifecycle.IsAvailable("lab", day.Add(10*time.Hour), day.Add(11*time.Hour))
	req.NoError(err)
	req.True(available)

	b := f.createEvent(t, "s3", 2)
	req.Equal(model.EventStatusPending, b.Status)
}
