package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/campus_events/internal/controller/callbacks/common"
	"github.com/Freeeeeet/campus_events/internal/controller/state"
	"github.com/Freeeeeet/campus_events/internal/directory"
	"github.com/Freeeeeet/campus_events/internal/ledger"
	"github.com/Freeeeeet/campus_events/internal/lifecycle"
	"github.com/Freeeeeet/campus_events/internal/mocks"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/Freeeeeet/campus_events/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const (
	tgOrganizer int64 = 100
	tgStudent   int64 = 200
	tgAdmin     int64 = 300
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeMessenger struct {
	mu       sync.Mutex
	messages []*bot.SendMessageParams
}

func (f *fakeMessenger) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, params)
	return &models.Message{}, nil
}

func (f *fakeMessenger) AnswerCallbackQuery(context.Context, *bot.AnswerCallbackQueryParams) (bool, error) {
	return true, nil
}

func (f *fakeMessenger) last(t *testing.T) *bot.SendMessageParams {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.messages)
	return f.messages[len(f.messages)-1]
}

func buttons(t *testing.T, markup models.ReplyMarkup) []string {
	t.Helper()
	kb, ok := markup.(*models.InlineKeyboardMarkup)
	require.True(t, ok, "ожидалась inline клавиатура")

	var data []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			data = append(data, btn.CallbackData)
		}
	}
	return data
}

func message(telegramID int64, text string) *models.Update {
	return &models.Update{Message: &models.Message{
		From: &models.User{ID: telegramID, FirstName: "Kim"},
		Chat: models.Chat{ID: telegramID},
		Text: text,
	}}
}

type fixture struct {
	h      *Handlers
	dir    *directory.Directory
	events *service.EventService
	regs   *service.RegistrationService
	m      *fakeMessenger
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	req := require.New(t)

	dir := directory.New()
	req.NoError(dir.AddUser(model.User{ID: "org", Name: "Olga Petrova", Role: model.RoleOrganizer, TelegramID: tgOrganizer}))
	req.NoError(dir.AddUser(model.User{ID: "s1", Name: "Sam", Role: model.RoleStudent, TelegramID: tgStudent}))
	req.NoError(dir.AddUser(model.User{ID: "admin", Name: "Ada", Role: model.RoleAdmin, TelegramID: tgAdmin}))
	req.NoError(dir.AddRoom(model.Room{ID: "lab", Name: "Lab", Capacity: 40}))

	store := mocks.NewMockStore(gomock.NewController(t))
	store.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	store.EXPECT().SaveRoom(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	store.EXPECT().SaveEvent(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	logger := zap.NewNop()
	persist := service.NewPersistence(dir, store)
	manager := lifecycle.NewManager(dir, nil, lifecycle.WithClock(func() time.Time { return now }))
	l := ledger.New(dir, ledger.WithClock(func() time.Time { return now }))

	events := service.NewEventService(dir, manager, persist, logger)
	regs := service.NewRegistrationService(dir, l, persist, logger)
	h := NewHandlers(
		service.NewUserService(dir, l, persist, logger),
		events,
		regs,
		service.NewRoomService(dir, manager, persist, logger),
		state.NewManager(),
		logger,
	)
	h.location = time.UTC
	h.now = func() time.Time { return now }

	return fixture{h: h, dir: dir, events: events, regs: regs, m: &fakeMessenger{}}
}

func (f fixture) send(text string, telegramID int64) {
	update := message(telegramID, text)
	ctx := context.Background()
	switch text {
	case "/start":
		f.h.HandleStart(ctx, f.m, update)
	case "/events":
		f.h.HandleEvents(ctx, f.m, update)
	case "/propose":
		f.h.HandleProposeStart(ctx, f.m, update)
	case "/pending":
		f.h.HandlePending(ctx, f.m, update)
	case "/myregistrations":
		f.h.HandleMyRegistrations(ctx, f.m, update)
	case "/myevents":
		f.h.HandleMyEvents(ctx, f.m, update)
	case "/rooms":
		f.h.HandleRooms(ctx, f.m, update)
	case "/cancel":
		f.h.HandleCancel(ctx, f.m, update)
	default:
		f.h.HandleTextMessage(ctx, f.m, update)
	}
}

func (f fixture) createEvent(t *testing.T, creatorID string, start time.Time) model.Event {
	t.Helper()
	event, err := f.events.Create(context.Background(), lifecycle.CreateRequest{
		CreatorID: creatorID,
		Title:     "Robotics night",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Capacity:  2,
		RoomID:    "lab",
	})
	require.NoError(t, err)
	return event
}

func TestHandleStart(t *testing.T) {
	f := newFixture(t)

	f.send("/start", 500)
	require.Contains(t, f.m.last(t).Text, "Привет, Kim!")
	require.Contains(t, f.m.last(t).Text, "Студент")

	user, ok := f.dir.UserByTelegramID(500)
	require.True(t, ok)
	require.Equal(t, model.RoleStudent, user.Role)

	f.send("/start", 500)
	require.Contains(t, f.m.last(t).Text, "С возвращением, Kim!")
	require.Len(t, f.dir.Users(), 4)
}

func TestRequireUser_Unknown(t *testing.T) {
	f := newFixture(t)

	f.send("/events", 999)
	require.Contains(t, f.m.last(t).Text, "Используйте /start")
}

func TestHandlePending_OnlyManagers(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, "s1", now.Add(24*time.Hour))

	f.send("/pending", tgStudent)
	require.Contains(t, f.m.last(t).Text, "только организаторам")

	f.send("/pending", tgOrganizer)
	last := f.m.last(t)
	require.Contains(t, last.Text, "⏳ Robotics night")
	data := buttons(t, last.ReplyMarkup)
	require.Contains(t, data[0], common.Approve)
	require.Contains(t, data[1], common.Reject)
}

func TestHandleEvents_ShowsActiveOnly(t *testing.T) {
	f := newFixture(t)
	active := f.createEvent(t, "org", now.Add(24*time.Hour))
	f.createEvent(t, "s1", now.Add(48*time.Hour))

	f.send("/events", tgStudent)

	last := f.m.last(t)
	require.Contains(t, last.Text, "1. ✅ Robotics night")
	require.NotContains(t, last.Text, "⏳")
	require.Equal(t, []string{common.ViewEvent + active.ID}, buttons(t, last.ReplyMarkup))
}

func TestHandleMyRegistrations(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, "org", now.Add(24*time.Hour))

	f.send("/myregistrations", tgStudent)
	require.Contains(t, f.m.last(t).Text, "нет записей")

	_, err := f.regs.Register(context.Background(), "s1", "s1", event.ID)
	require.NoError(t, err)

	f.send("/myregistrations", tgStudent)
	last := f.m.last(t)
	require.Contains(t, last.Text, "Записано 1 из 2")
	require.Equal(t, []string{common.Withdraw + event.ID}, buttons(t, last.ReplyMarkup))

	f.send("/myregistrations", tgOrganizer)
	require.Contains(t, f.m.last(t).Text, "только студенты")
}

func TestProposeDialog_Organizer(t *testing.T) {
	f := newFixture(t)
	sm := f.h.StateManager()

	f.send("/propose", tgOrganizer)
	require.Equal(t, state.StateProposeTitle, sm.GetState(tgOrganizer))

	f.send("Robotics night", tgOrganizer)
	f.send("-", tgOrganizer)
	f.send("02.03.2026 18:00", tgOrganizer)
	f.send("20:00", tgOrganizer)
	require.Contains(t, f.m.last(t).Text, "Длительность: 2 ч")

	f.send("30", tgOrganizer)
	require.Equal(t, state.StateProposeRoom, sm.GetState(tgOrganizer))
	require.Equal(t, []string{common.ProposeRoom + "lab"}, buttons(t, f.m.last(t).ReplyMarkup))

	err := f.h.CompleteProposal(context.Background(), f.m, tgOrganizer, tgOrganizer, "lab")
	require.NoError(t, err)
	require.Equal(t, state.StateNone, sm.GetState(tgOrganizer))

	events := f.dir.Events()
	require.Len(t, events, 1)
	require.Equal(t, model.EventStatusActive, events[0].Status)
	require.Equal(t, "", events[0].Description)
	require.Equal(t, 30, events[0].Capacity)
	require.Equal(t, time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC), events[0].StartTime)
}

func TestProposeDialog_StudentGetsPending(t *testing.T) {
	f := newFixture(t)

	for _, text := range []string{"/propose", "Board games", "Bring your own", "02.03.2026 18:00", "19:30", "8"} {
		f.send(text, tgStudent)
	}
	require.NoError(t, f.h.CompleteProposal(context.Background(), f.m, tgStudent, tgStudent, "lab"))

	events := f.dir.Events()
	require.Len(t, events, 1)
	require.Equal(t, model.EventStatusPending, events[0].Status)
	require.Nil(t, events[0].OrganizerID)
	require.Equal(t, "s1", events[0].ProposerID)
}

func TestProposeDialog_Validation(t *testing.T) {
	f := newFixture(t)
	sm := f.h.StateManager()

	f.send("/propose", tgAdmin)
	require.Contains(t, f.m.last(t).Text, "Администраторы не создают")
	require.Equal(t, state.StateNone, sm.GetState(tgAdmin))

	f.send("/propose", tgOrganizer)
	f.send("ab", tgOrganizer)
	require.Contains(t, f.m.last(t).Text, "слишком короткое")
	require.Equal(t, state.StateProposeTitle, sm.GetState(tgOrganizer))

	f.send("Robotics night", tgOrganizer)
	f.send("-", tgOrganizer)

	f.send("tomorrow", tgOrganizer)
	require.Contains(t, f.m.last(t).Text, "Не удалось разобрать дату")

	f.send("28.02.2026 18:00", tgOrganizer)
	require.Contains(t, f.m.last(t).Text, "уже прошло")
	require.Equal(t, state.StateProposeStart, sm.GetState(tgOrganizer))

	f.send("02.03.2026 18:00", tgOrganizer)
	f.send("17:00", tgOrganizer)
	require.Contains(t, f.m.last(t).Text, "раньше времени окончания")
	require.Equal(t, state.StateProposeEnd, sm.GetState(tgOrganizer))

	f.send("20:00", tgOrganizer)
	f.send("0", tgOrganizer)
	require.Contains(t, f.m.last(t).Text, "не меньше 1")
	require.Equal(t, state.StateProposeCapacity, sm.GetState(tgOrganizer))

	f.send("/cancel", tgOrganizer)
	require.Equal(t, state.StateNone, sm.GetState(tgOrganizer))
	require.Empty(t, f.dir.Events())
}

func TestProposeDialog_AllRoomsBusy(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, "org", time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC))

	for _, text := range []string{"/propose", "Late talk", "-", "02.03.2026 19:00", "21:00", "10"} {
		f.send(text, tgOrganizer)
	}

	require.Contains(t, f.m.last(t).Text, "все комнаты заняты")
	require.Equal(t, state.StateNone, f.h.StateManager().GetState(tgOrganizer))
}

func TestCompleteProposal_ConflictKeepsDialog(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

	sm := f.h.StateManager()
	sm.SetState(tgStudent, state.StateProposeRoom)
	sm.SetData(tgStudent, state.KeyUserID, "s1")
	sm.SetData(tgStudent, state.KeyTitle, "Board games")
	sm.SetData(tgStudent, state.KeyStart, start)
	sm.SetData(tgStudent, state.KeyEnd, start.Add(time.Hour))
	sm.SetData(tgStudent, state.KeyCapacity, 8)

	// Пока студент выбирал, организатор занял комнату
	f.createEvent(t, "org", start.Add(30*time.Minute))

	err := f.h.CompleteProposal(context.Background(), f.m, tgStudent, tgStudent, "lab")
	require.ErrorIs(t, err, model.ErrRoomConflict)
	require.Equal(t, state.StateProposeRoom, sm.GetState(tgStudent))
	require.Len(t, f.dir.Events(), 1)

	sm.ClearState(tgStudent)
	err = f.h.CompleteProposal(context.Background(), f.m, tgStudent, tgStudent, "lab")
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestHandleRooms(t *testing.T) {
	f := newFixture(t)

	f.send("/rooms", tgStudent)
	require.Contains(t, f.m.last(t).Text, "🟢 Свободна")

	f.createEvent(t, "org", time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC))
	f.send("/rooms", tgStudent)
	require.Contains(t, f.m.last(t).Text, "🔴 02.03.2026 (Пн) 18:00-20:00 Robotics night")
}
