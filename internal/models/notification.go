package models

import "fmt"

// Notification is a human-readable message about a workflow outcome.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (n *Notification) String() string {
	return fmt.Sprintf("%s: %s", n.Title, n.Body)
}

// NotificationService delivers workflow outcome messages out-of-band.
// Implementations must not block the caller for long and must swallow their
// own delivery failures.
type NotificationService interface {
	SendNotification(notification *Notification)
}
