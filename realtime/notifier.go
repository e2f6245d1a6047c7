package realtime

import (
	"context"
	"log/slog"

	"github.com/Dosada05/club-system/models"
)

// UserRoom — имя комнаты конкретного пользователя.
func UserRoom(userID string) string {
	return "user_" + userID
}

// HubNotifier доставляет уведомления ядра через websocket-хаб.
// Fire-and-forget: сбой доставки логируется и не влияет на вызывающего.
type HubNotifier struct {
	hub    *Hub
	logger *slog.Logger
}

func NewHubNotifier(hub *Hub, logger *slog.Logger) *HubNotifier {
	return &HubNotifier{hub: hub, logger: logger}
}

func (n *HubNotifier) Notify(ctx context.Context, notification models.Notification) {
	n.logger.DebugContext(ctx, "dispatching notification",
		slog.String("kind", string(notification.Kind)),
		slog.String("recipient_id", notification.RecipientID),
	)
	n.hub.SendToRoom(UserRoom(notification.RecipientID), notification)
}
