package models

import (
	"fmt"
	"strings"
	"time"
)

type NotificationType string

const (
	NotificationNewArticle NotificationType = "new_article"
	NotificationComment    NotificationType = "comment"
	NotificationLike       NotificationType = "like"
)

// Known reports whether t is one of the types the client renders specially.
func (t NotificationType) Known() bool {
	switch t {
	case NotificationNewArticle, NotificationComment, NotificationLike:
		return true
	}
	return false
}

// Label is the badge text shown next to a notification.
func (t NotificationType) Label() string {
	switch t {
	case NotificationNewArticle:
		return "New article"
	case NotificationComment:
		return "Comment"
	case NotificationLike:
		return "Like"
	default:
		return "Notification"
	}
}

// InferNotificationType guesses the type from the text when the server did
// not send one.
func InferNotificationType(text string) NotificationType {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "like"):
		return NotificationLike
	case strings.Contains(t, "comment"), strings.Contains(t, "คอมเม้น"):
		return NotificationComment
	case strings.Contains(t, "new article"), strings.Contains(t, "published"), strings.Contains(t, "บทความใหม่"):
		return NotificationNewArticle
	default:
		return ""
	}
}

type Notification struct {
	ID        int              `json:"id"`
	Type      NotificationType `json:"type"`
	Text      string           `json:"text"`
	Avatar    string           `json:"avatar,omitempty"`
	PostID    int              `json:"postId,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (n *Notification) UnmarshalJSON(b []byte) error {
	f, err := decodeFields(b)
	if err != nil {
		return err
	}

	*n = Notification{
		Type:      NotificationType(f.str("type", "notification_type")),
		Text:      f.str("text", "message", "content", "description"),
		Avatar:    f.str("avatar", "userAvatar"),
		CreatedAt: f.when("createdAt", "timestamp", "date", "created_at"),
	}
	n.ID, _ = f.num("id")

	if n.Text == "" {
		n.Text = "Notification"
	}
	if n.Avatar == "" {
		if u := f.obj("user"); u != nil {
			n.Avatar = u.str("avatar")
		}
	}

	if id, ok := f.num("postId", "post_id", "articleId", "article_id", "relatedPostId"); ok {
		n.PostID = id
	} else if p := f.obj("post"); p != nil {
		n.PostID, _ = p.num("id")
	} else if a := f.obj("article"); a != nil {
		n.PostID, _ = a.num("id")
	}

	if !n.Type.Known() {
		if inferred := InferNotificationType(n.Text); inferred != "" {
			n.Type = inferred
		}
	}
	return nil
}

// HoursAgo is the whole number of hours between CreatedAt and now, never
// negative. A missing timestamp counts as zero.
func (n Notification) HoursAgo(now time.Time) int {
	if n.CreatedAt.IsZero() {
		return 0
	}
	h := int(now.Sub(n.CreatedAt) / time.Hour)
	if h < 0 {
		return 0
	}
	return h
}

// RelativeTime renders HoursAgo the way the notification list shows it.
func (n Notification) RelativeTime(now time.Time) string {
	return RelativeHours(n.HoursAgo(now))
}

func RelativeHours(hours int) string {
	switch {
	case hours < 1:
		return "Just now"
	case hours == 1:
		return "1 hour ago"
	case hours < 24:
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := hours / 24
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
