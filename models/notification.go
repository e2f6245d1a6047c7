package models

// NotificationKind — тип события для внешнего канала уведомлений.
type NotificationKind string

const (
	NotificationRoleChanged      NotificationKind = "role_changed"
	NotificationWaitlistPromoted NotificationKind = "waitlist_promoted"
	NotificationReminderDue      NotificationKind = "reminder_due"
)

// Notification — намерение уведомить пользователя. Доставка fire-and-forget:
// сбой доставки никогда не откатывает породившее её изменение состояния.
type Notification struct {
	Kind        NotificationKind       `json:"kind"`
	RecipientID string                 `json:"recipient_id"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
}
