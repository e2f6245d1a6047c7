package services

import (
	"context"

	"github.com/Dosada05/club-system/models"
)

// Notifier — внешний канал доставки уведомлений. Вызовы fire-and-forget:
// сервисы игнорируют возвращаемую ошибку после успешной записи состояния,
// максимум логируют её.
type Notifier interface {
	Notify(ctx context.Context, notification models.Notification)
}

// NopNotifier — заглушка для окружений без канала доставки.
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, notification models.Notification) {}
