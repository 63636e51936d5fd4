package models

// NotificationType classifies a notification event.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
)

// Notification is a structured event emitted by the stores and displayed by
// whatever sink is attached (toast, CLI output, notification center).
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Timestamp int64            `json:"timestamp"`
	Read      bool             `json:"read"`
}
