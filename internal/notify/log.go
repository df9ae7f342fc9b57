package notify

import (
	"context"

	"github.com/Freeeeeet/campus_events/internal/lifecycle"
	"github.com/Freeeeeet/campus_events/internal/model"
	"go.uber.org/zap"
)

var _ lifecycle.Notifier = (*LogNotifier)(nil)

// LogNotifier только пишет уведомление в лог
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, event model.Event, message string) {
	n.logger.Info("📣 Event notice",
		zap.String("event_id", event.ID),
		zap.String("status", string(event.Status)),
		zap.Strings("student_ids", event.StudentIDs()),
		zap.String("message", message),
	)
}
