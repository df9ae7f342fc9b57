package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/campus_events/internal/controller/callbacks/common"
	"github.com/Freeeeeet/campus_events/internal/controller/callbacks/common/keyboard"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Route распределяет callback query по соответствующим обработчикам
func Route(ctx context.Context, b common.Messenger, callback *models.CallbackQuery, h *Handler) {
	data := callback.Data

	h.Logger.Info("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID),
		zap.String("user_name", callback.From.FirstName))

	switch {
	case data == keyboard.Noop:
		common.AnswerCallback(ctx, b, callback.ID, "")

	case strings.HasPrefix(data, common.EventsPage):
		HandleEventsPage(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ViewEvent):
		HandleViewEvent(ctx, b, callback, h)
	case strings.HasPrefix(data, common.Register):
		HandleRegister(ctx, b, callback, h)
	case strings.HasPrefix(data, common.Withdraw):
		HandleWithdraw(ctx, b, callback, h)
	case strings.HasPrefix(data, common.Approve):
		HandleApprove(ctx, b, callback, h)
	case strings.HasPrefix(data, common.Reject):
		HandleReject(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ConfirmCancel):
		HandleConfirmCancel(ctx, b, callback, h)
	case strings.HasPrefix(data, common.CancelEvent):
		HandleCancelEvent(ctx, b, callback, h)
	case strings.HasPrefix(data, common.EventReport):
		HandleEventReport(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ProposeRoom):
		HandleProposeRoom(ctx, b, callback, h)

	default:
		h.Logger.Warn("Unknown callback", zap.String("data", data))
		common.AnswerCallback(ctx, b, callback.ID, "❓ Неизвестная команда")
	}
}
