package notify

import (
	"context"

	"github.com/Freeeeeet/campus_events/internal/lifecycle"
	"github.com/Freeeeeet/campus_events/internal/model"
)

// Fanout передаёт уведомление каждому из получателей по очереди
type Fanout []lifecycle.Notifier

func (f Fanout) Notify(ctx context.Context, event model.Event, message string) {
	for _, n := range f {
		if n != nil {
			n.Notify(ctx, event, message)
		}
	}
}
