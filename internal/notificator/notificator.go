package notificator

import (
	"runtime/debug"

	"github.com/unisub/unisub/internal/models"
	"github.com/unisub/unisub/pkg/logger"
)

// Notificator fans a workflow outcome out to the configured operator
// channels. Channels left unconfigured are skipped; a channel failure is
// logged and never propagated to the workflow that produced the message.
type Notificator struct {
	logger *logger.Logger

	TelegramNotificator *TelegramNotificator
	EmailNotificator    *EmailNotificator
}

func NewNotificator(logger *logger.Logger, telNotif *TelegramNotificator, emailNotif *EmailNotificator) *Notificator {
	return &Notificator{logger: logger, TelegramNotificator: telNotif, EmailNotificator: emailNotif}
}

// safeCall runs a function with panic recovery (synchronous, no goroutine spawning)
func (n *Notificator) safeCall(fn func(), context string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Function panicked",
				"context", context,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

func (n *Notificator) SendNotification(notification *models.Notification) {
	message := notification.String()

	if n.TelegramNotificator != nil {
		n.safeCall(func() { n.TelegramNotificator.SendNotification(message) }, "telegramNotification")
	}
	if n.EmailNotificator != nil {
		n.safeCall(func() { n.EmailNotificator.SendNotification(message) }, "emailNotification")
	}
}
