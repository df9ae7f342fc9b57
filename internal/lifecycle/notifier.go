//go:generate go run go.uber.org/mock/mockgen -source=notifier.go -destination=../mocks/mock_notifier.go -package=mocks
package lifecycle

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/campus_events/internal/model"
)

// Notifier рассылает уведомления по мероприятию.
// Результат доставки менеджер не проверяет.
type Notifier interface {
	Notify(ctx context.Context, event model.Event, message string)
}

// CancellationMessage текст уведомления об отмене
func CancellationMessage(event model.Event) string {
	return fmt.Sprintf("Event '%s' has been CANCELLED by the organizer.", event.Title)
}
