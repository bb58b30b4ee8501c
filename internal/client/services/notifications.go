package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/hhblog/internal/client/events"
	"github.com/dmitrijs2005/hhblog/internal/client/models"
	"github.com/dmitrijs2005/hhblog/internal/client/reconcile"
	"github.com/dmitrijs2005/hhblog/internal/client/session"
	"github.com/dmitrijs2005/hhblog/internal/client/storage"
	"github.com/dmitrijs2005/hhblog/internal/logging"
)

// RoleSource reports the resolved identity. *session.Resolver implements it.
type RoleSource interface {
	State() session.State
}

// NotificationFilter narrows the notification list. An empty or "all" Type
// matches every type.
type NotificationFilter struct {
	Search string
	Type   string
}

func (f NotificationFilter) match(n models.Notification) bool {
	if q := strings.TrimSpace(f.Search); q != "" &&
		!strings.Contains(strings.ToLower(n.Text), strings.ToLower(q)) {
		return false
	}
	return facet(f.Type, string(n.Type))
}

type NotificationService struct {
	deps  Deps
	roles RoleSource
	list  *reconcile.List[models.Notification, int]
}

func NewNotificationService(d Deps, roles RoleSource) *NotificationService {
	s := &NotificationService{deps: d, roles: roles}
	s.list = reconcile.New(reconcile.Options[models.Notification, int]{
		Name:        "Notifications",
		Fetch:       guard(d, s.fetch),
		Cache:       d.Store.Notifications(),
		ID:          func(n models.Notification) int { return n.ID },
		Sample:      func() []models.Notification { return SampleNotifications(d.now()) },
		Timeout:     NotificationsTimeout,
		Banner:      d.Flash,
		BannerTTL:   d.BannerTTL,
		EmptyPolicy: reconcile.ClearOnEmpty,
		Logger:      d.Log.With("list", "notifications"),
	})
	return s
}

func (s *NotificationService) fetch(ctx context.Context) ([]models.Notification, error) {
	list, err := s.deps.API.ListNotifications(ctx)
	if err != nil {
		return nil, err
	}
	return withPositionIDs(list,
		func(n models.Notification) int { return n.ID },
		func(n *models.Notification, id int) { n.ID = id }), nil
}

// Open marks every notification as read, then shows and refreshes the
// list.
func (s *NotificationService) Open(ctx context.Context) reconcile.Result {
	at := s.deps.now()
	if err := s.deps.Store.SetReadMarker(ctx, at); err != nil {
		s.deps.Log.Warn(ctx, "failed to store read-marker", "error", err)
	} else {
		s.deps.Bus.Publish(events.NotificationsRead{At: at})
	}

	s.list.Prime(ctx)
	return s.load(ctx, false)
}

func (s *NotificationService) Retry(ctx context.Context) reconcile.Result {
	return s.load(ctx, true)
}

func (s *NotificationService) load(ctx context.Context, explicit bool) reconcile.Result {
	res := s.list.Load(ctx, explicit)
	if res.Err == nil && !res.Stale {
		s.deps.Bus.Publish(events.NotificationsUpdated{Count: res.Count})
	}
	return res
}

// Attach refreshes the list whenever a refresh is requested.
func (s *NotificationService) Attach(ctx context.Context) func() {
	return events.Subscribe(s.deps.Bus, func(events.NotificationsRefreshRequested) {
		s.load(ctx, false)
	})
}

func (s *NotificationService) Source() reconcile.Source {
	return s.list.Source()
}

// Visible returns the notifications the current user should see. Admins
// only see comments and likes.
func (s *NotificationService) Visible(f NotificationFilter) []models.Notification {
	admin := s.roles != nil && s.roles.State().IsAdmin()
	return s.list.Filter(func(n models.Notification) bool {
		if admin && n.Type != models.NotificationComment && n.Type != models.NotificationLike {
			return false
		}
		return f.match(n)
	})
}

// UnreadCount counts the notifications newer than the read-marker. Before
// the first visit every notification is unread.
func UnreadCount(list []models.Notification, readAt time.Time) int {
	if readAt.IsZero() {
		return len(list)
	}
	n := 0
	for _, item := range list {
		if item.CreatedAt.After(readAt) {
			n++
		}
	}
	return n
}

// UnreadBadge keeps the unread count of the navigation bar. It re-reads
// storage on every relevant event, so changes made by another process are
// picked up through events.StorageChanged.
type UnreadBadge struct {
	store *storage.Store
	bus   *events.Bus
	log   logging.Logger

	mu       sync.Mutex
	count    int
	onChange func(int)
}

func NewUnreadBadge(d Deps) *UnreadBadge {
	return &UnreadBadge{store: d.Store, bus: d.Bus, log: d.Log}
}

// OnChange registers fn to be called with the new count whenever it moves.
func (b *UnreadBadge) OnChange(fn func(int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

func (b *UnreadBadge) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Refresh re-derives the count from storage.
func (b *UnreadBadge) Refresh(ctx context.Context) int {
	list, _, err := b.store.Notifications().Load(ctx)
	if err != nil {
		b.log.Warn(ctx, "failed to read notifications", "error", err)
		return b.Count()
	}
	readAt, err := b.store.ReadMarker(ctx)
	if err != nil {
		b.log.Warn(ctx, "failed to read read-marker", "error", err)
		return b.Count()
	}

	n := UnreadCount(list, readAt)

	b.mu.Lock()
	changed := n != b.count
	b.count = n
	fn := b.onChange
	b.mu.Unlock()

	if changed && fn != nil {
		fn(n)
	}
	return n
}

// Attach subscribes the badge to the events that can move the count.
func (b *UnreadBadge) Attach(ctx context.Context) func() {
	unsubs := []func(){
		events.Subscribe(b.bus, func(events.NotificationsRead) { b.Refresh(ctx) }),
		events.Subscribe(b.bus, func(events.NotificationsUpdated) { b.Refresh(ctx) }),
		events.Subscribe(b.bus, func(events.StorageChanged) { b.Refresh(ctx) }),
		events.Subscribe(b.bus, func(events.LoginChanged) { b.Refresh(ctx) }),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
