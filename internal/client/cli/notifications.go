package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hhblog/internal/client/services"
)

// Notifications shows the notification list and marks it read.
func (a *App) Notifications(ctx context.Context) error {
	a.notifications.Open(ctx)
	a.setRetry(func(ctx context.Context) {
		a.notifications.Retry(ctx)
		a.showNotifications()
	})
	a.showNotifications()
	return nil
}

func (a *App) showNotifications() {
	if note := renderSource(a.notifications.Source()); note != "" {
		a.println(note)
	}
	list := a.notifications.Visible(services.NotificationFilter{})
	if len(list) == 0 {
		a.println(mutedStyle.Render("No notifications."))
		return
	}
	a.println(renderNotificationList(list, a.now()))
}

// Unread prints the unread badge.
func (a *App) Unread(ctx context.Context) error {
	n := a.badge.Refresh(ctx)
	a.println(fmt.Sprintf("%d unread notification(s).", n))
	return nil
}
