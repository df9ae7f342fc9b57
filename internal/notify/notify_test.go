package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/campus_events/internal/directory"
	"github.com/Freeeeeet/campus_events/internal/lifecycle"
	"github.com/Freeeeeet/campus_events/internal/mocks"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func cancelledEvent() model.Event {
	return model.Event{
		ID:     "ev-1",
		Title:  "Go meetup",
		Status: model.EventStatusCancelled,
		Registrations: []model.Registration{
			{ID: "r1", StudentID: "s1", EventID: "ev-1"},
			{ID: "r2", StudentID: "s2", EventID: "ev-1"},
			{ID: "r3", StudentID: "ghost", EventID: "ev-1"},
		},
	}
}

type fakeSender struct {
	chats []int64
	texts []string
	fail  map[int64]bool
}

func (f *fakeSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	chatID := params.ChatID.(int64)
	if f.fail[chatID] {
		return nil, errors.New("chat not found")
	}
	f.chats = append(f.chats, chatID)
	f.texts = append(f.texts, params.Text)
	return &models.Message{}, nil
}

func TestTelegramNotifier_Notify(t *testing.T) {
	req := require.New(t)

	dir := directory.New()
	req.NoError(dir.AddUser(model.User{ID: "s1", Name: "Sam", Role: model.RoleStudent, TelegramID: 101}))
	req.NoError(dir.AddUser(model.User{ID: "s2", Name: "Kim", Role: model.RoleStudent})) // без чата
	req.NoError(dir.AddUser(model.User{ID: "s3", Name: "Lee", Role: model.RoleStudent, TelegramID: 103}))

	event := cancelledEvent()
	event.Registrations = append(event.Registrations, model.Registration{ID: "r4", StudentID: "s3", EventID: "ev-1"})

	core, logs := observer.New(zap.InfoLevel)
	sender := &fakeSender{fail: map[int64]bool{103: true}}
	n := NewTelegramNotifier(sender, dir, zap.New(core))

	message := lifecycle.CancellationMessage(event)
	n.Notify(context.Background(), event, message)

	req.Equal([]int64{101}, sender.chats)
	req.Equal([]string{"🔔 Event &#39;Go meetup&#39; has been CANCELLED by the organizer."}, sender.texts)
	req.Equal(1, logs.FilterMessage("Failed to deliver notice").Len())

	summary := logs.FilterMessage("Telegram notices sent").All()
	req.Len(summary, 1)
	req.Equal(int64(1), summary[0].ContextMap()["sent"])
}

type fakePublisher struct {
	exchange string
	msgs     []amqp.Publishing
	err      error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, _ string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.exchange = exchange
	f.msgs = append(f.msgs, msg)
	return nil
}

func TestRabbitNotifier_Notify(t *testing.T) {
	t.Run("should publish json notice", func(t *testing.T) {
		req := require.New(t)
		pub := &fakePublisher{}
		n := newRabbitNotifier(pub, "campus_events", zap.NewNop())
		at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
		n.now = func() time.Time { return at }

		event := cancelledEvent()
		n.Notify(context.Background(), event, "cancelled")

		req.Equal("campus_events", pub.exchange)
		req.Len(pub.msgs, 1)
		req.Equal("application/json", pub.msgs[0].ContentType)
		req.Equal(amqp.Persistent, pub.msgs[0].DeliveryMode)

		var notice Notice
		req.NoError(json.Unmarshal(pub.msgs[0].Body, &notice))
		req.Equal(Notice{
			EventID:    "ev-1",
			Title:      "Go meetup",
			Status:     model.EventStatusCancelled,
			Message:    "cancelled",
			StudentIDs: []string{"s1", "s2", "ghost"},
			SentAt:     at,
		}, notice)
	})

	t.Run("should log publish failure", func(t *testing.T) {
		req := require.New(t)
		core, logs := observer.New(zap.ErrorLevel)
		n := newRabbitNotifier(&fakePublisher{err: amqp.ErrClosed}, "campus_events", zap.New(core))

		n.Notify(context.Background(), cancelledEvent(), "cancelled")

		req.Equal(1, logs.FilterMessage("Failed to publish notice").Len())
		req.Nil(n.Close())
	})
}

func TestFanout_Notify(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := mocks.NewMockNotifier(ctrl)
	second := mocks.NewMockNotifier(ctrl)

	event := cancelledEvent()
	gomock.InOrder(
		first.EXPECT().Notify(gomock.Any(), event, "bye").Times(1),
		second.EXPECT().Notify(gomock.Any(), event, "bye").Times(1),
	)

	Fanout{first, nil, second}.Notify(context.Background(), event, "bye")
}

func TestLogNotifier_Notify(t *testing.T) {
	req := require.New(t)
	core, logs := observer.New(zap.InfoLevel)

	NewLogNotifier(zap.New(core)).Notify(context.Background(), cancelledEvent(), "bye")

	entries := logs.All()
	req.Len(entries, 1)
	req.Equal("ev-1", entries[0].ContextMap()["event_id"])
	req.Equal("bye", entries[0].ContextMap()["message"])
}
