package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Freeeeeet/campus_events/internal/model"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Notice тело сообщения, публикуемого в RabbitMQ
type Notice struct {
	EventID    string            `json:"event_id"`
	Title      string            `json:"title"`
	Status     model.EventStatus `json:"status"`
	Message    string            `json:"message"`
	StudentIDs []string          `json:"student_ids"`
	SentAt     time.Time         `json:"sent_at"`
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitNotifier публикует уведомления в exchange, откуда их забирают внешние рассыльщики
type RabbitNotifier struct {
	conn     *amqp.Connection
	channel  publisher
	exchange string
	logger   *zap.Logger
	now      func() time.Time
}

// NewRabbitNotifier подключается к брокеру и объявляет exchange и очередь
func NewRabbitNotifier(url, exchange, queue string, logger *zap.Logger) (*RabbitNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queue, "", exchange, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	logger.Info("RabbitMQ initialized", zap.String("exchange", exchange), zap.String("queue", queue))

	n := newRabbitNotifier(ch, exchange, logger)
	n.conn = conn
	return n, nil
}

func newRabbitNotifier(ch publisher, exchange string, logger *zap.Logger) *RabbitNotifier {
	return &RabbitNotifier{
		channel:  ch,
		exchange: exchange,
		logger:   logger,
		now:      time.Now,
	}
}

func (n *RabbitNotifier) Notify(ctx context.Context, event model.Event, message string) {
	notice := Notice{
		EventID:    event.ID,
		Title:      event.Title,
		Status:     event.Status,
		Message:    message,
		StudentIDs: event.StudentIDs(),
		SentAt:     n.now().UTC(),
	}

	body, err := json.Marshal(notice)
	if err != nil {
		n.logger.Error("Failed to encode notice", zap.String("event_id", event.ID), zap.Error(err))
		return
	}

	err = n.channel.PublishWithContext(ctx, n.exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    notice.SentAt,
		Body:         body,
	})
	if err != nil {
		n.logger.Error("Failed to publish notice",
			zap.String("event_id", event.ID),
			zap.String("exchange", n.exchange),
			zap.Error(err),
		)
		return
	}

	n.logger.Debug("Notice published", zap.String("event_id", event.ID), zap.String("exchange", n.exchange))
}

// Close закрывает соединение с брокером
func (n *RabbitNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Close()
}
