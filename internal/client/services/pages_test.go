package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/hhblog/internal/client/events"
	"github.com/dmitrijs2005/hhblog/internal/client/models"
	"github.com/dmitrijs2005/hhblog/internal/client/reconcile"
	"github.com/dmitrijs2005/hhblog/internal/client/session"
	"github.com/dmitrijs2005/hhblog/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostPage_ToggleLike(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.login(t)

	var mu sync.Mutex
	liked := false
	e.reply(http.MethodGet, "/posts/7", http.StatusOK, map[string]any{"id": 7, "title": "Hello", "status_id": 2})
	e.reply(http.MethodGet, "/posts/7/comments", http.StatusOK, []any{})
	e.handle(http.MethodGet, "/posts/7/likes", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		count := 5
		if liked {
			count = 6
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": count, "liked": liked})
	})
	e.handle(http.MethodPost, "/posts/7/like", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		liked = !liked
		writeJSON(w, http.StatusOK, map[string]any{"liked": liked})
	})

	page, err := NewPostService(e.deps).Open(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, reconcile.SourceRemote, page.Source())
	assert.Equal(t, models.LikeState{Count: 5}, page.Likes())

	state, err := page.ToggleLike(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.LikeState{Count: 6, Liked: true}, state)
	assert.Equal(t, 6, page.Post().LikesCount)

	state, err = page.ToggleLike(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.LikeState{Count: 5, Liked: false}, state)
}

func TestPostPage_LoginRequired(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.reply(http.MethodGet, "/posts/7", http.StatusOK, map[string]any{"id": 7, "title": "Hello"})
	e.reply(http.MethodGet, "/posts/7/likes", http.StatusOK, map[string]any{"count": 2})
	e.reply(http.MethodGet, "/posts/7/comments", http.StatusOK, []any{})

	page, err := NewPostService(e.deps).Open(ctx, 7)
	require.NoError(t, err)

	state, err := page.ToggleLike(ctx)
	assert.True(t, IsLoginRequired(err))
	assert.Equal(t, 2, state.Count)

	_, err = page.AddComment(ctx, "hi")
	assert.True(t, IsLoginRequired(err))
	assert.Equal(t, "Please log in first.", UserMessage(err))

	assert.Equal(t, 0, e.count("POST /posts/7/like"))
	assert.Equal(t, 0, e.count("POST /posts/7/comments"))
}

func TestPostPage_AddCommentMatchesRefetch(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.login(t)

	created := e.now.Add(-time.Minute).Format(time.RFC3339)
	var mu sync.Mutex
	var stored []any
	e.reply(http.MethodGet, "/posts/7", http.StatusOK, map[string]any{"id": 7, "title": "Hello"})
	e.reply(http.MethodGet, "/posts/7/likes", http.StatusOK, []any{})
	e.handle(http.MethodGet, "/posts/7/comments", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"comments": stored})
	})
	e.handle(http.MethodPost, "/posts/7/comments", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		c := map[string]any{"id": 21, "post_id": 7, "name": "Jane", "comment_text": "Nice read", "created_at": created}
		stored = append(stored, c)
		writeJSON(w, http.StatusCreated, map[string]any{"comment": c})
	})

	svc := NewPostService(e.deps)
	page, err := svc.Open(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, page.Comments())

	_, err = page.AddComment(ctx, "   ")
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Comment is required", fe["comment"])

	c, err := page.AddComment(ctx, "Nice read")
	require.NoError(t, err)
	assert.Equal(t, 21, c.ID)

	again, err := svc.Open(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, again.Comments(), page.Comments())
}

func TestPostPage_SampleFallback(t *testing.T) {
	e := newEnv(t)
	e.setDown(true)
	e.reply(http.MethodGet, "/posts/{id}", http.StatusOK, nil)

	page, err := NewPostService(e.deps).Open(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, reconcile.SourceSample, page.Source())
	assert.Equal(t, SamplePosts()[1].Title, page.Post().Title)

	_, err = NewPostService(e.deps).Open(context.Background(), 99)
	assert.Error(t, err)
}

func TestPostPage_RejectedSessionIsPurged(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.login(t)
	e.reply(http.MethodGet, "/posts/7", http.StatusOK, map[string]any{"id": 7})
	e.reply(http.MethodGet, "/posts/7/likes", http.StatusOK, map[string]any{"count": 1})
	e.reply(http.MethodGet, "/posts/7/comments", http.StatusOK, []any{})
	e.reply(http.MethodPost, "/posts/7/like", http.StatusUnauthorized, map[string]any{"message": "jwt expired"})

	logins := 0
	events.Subscribe(e.bus, func(events.LoginChanged) { logins++ })

	page, err := NewPostService(e.deps).Open(ctx, 7)
	require.NoError(t, err)

	_, err = page.ToggleLike(ctx)
	assert.Equal(t, "jwt expired", UserMessage(err))
	_, ok, err := e.store.Session(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, logins)
}

type roleStub session.State

func (r roleStub) State() session.State { return session.State(r) }

type notificationFeed struct {
	mu    sync.Mutex
	items []any
}

func (f *notificationFeed) set(items ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = items
}

func (f *notificationFeed) serve(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"notifications": f.items})
}

func notification(id int, typ, text string, at time.Time) map[string]any {
	return map[string]any{"id": id, "type": typ, "text": text, "createdAt": at.Format(time.RFC3339)}
}

func TestNotifications_ReadMarkerAndBadge(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	start := e.now

	feed := &notificationFeed{}
	feed.set(
		notification(1, "comment", "old comment", start.Add(-2*time.Hour)),
		notification(2, "like", "old like", start.Add(-time.Hour)),
	)
	e.handle(http.MethodGet, "/notifications", feed.serve)

	badge := NewUnreadBadge(e.deps)
	var seen []int
	badge.OnChange(func(n int) { seen = append(seen, n) })
	defer badge.Attach(ctx)()

	svc := NewNotificationService(e.deps, nil)

	svc.Retry(ctx)
	assert.Equal(t, 2, badge.Count(), "never visited: everything is unread")

	svc.Open(ctx)
	assert.Equal(t, 0, badge.Count())
	readAt, err := e.store.ReadMarker(ctx)
	require.NoError(t, err)
	assert.True(t, readAt.Equal(start))

	e.now = start.Add(time.Hour)
	feed.set(
		notification(1, "comment", "old comment", start.Add(-2*time.Hour)),
		notification(2, "like", "old like", start.Add(-time.Hour)),
		notification(3, "comment", "new comment", start.Add(30*time.Minute)),
	)
	svc.Retry(ctx)
	assert.Equal(t, 1, badge.Count())
	assert.Equal(t, []int{2, 0, 1}, seen)
}

func TestNotifications_AdminSeesOnlyCommentsAndLikes(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	feed := &notificationFeed{}
	feed.set(
		notification(1, "new_article", "New article: Go", e.now),
		notification(2, "comment", "Jane commented", e.now),
		notification(3, "like", "Joe liked your post", e.now),
	)
	e.handle(http.MethodGet, "/notifications", feed.serve)

	admin := roleStub{Status: session.StatusAuthenticated, Profile: &models.User{Role: common.RoleAdmin}}
	svc := NewNotificationService(e.deps, admin)
	svc.Open(ctx)

	ids := func(list []models.Notification) []int {
		var out []int
		for _, n := range list {
			out = append(out, n.ID)
		}
		return out
	}
	assert.Equal(t, []int{2, 3}, ids(svc.Visible(NotificationFilter{})))
	assert.Equal(t, []int{3}, ids(svc.Visible(NotificationFilter{Type: "like"})))

	member := NewNotificationService(e.deps, roleStub{Status: session.StatusAuthenticated, Profile: &models.User{Role: "user"}})
	member.Open(ctx)
	assert.Equal(t, []int{1, 2, 3}, ids(member.Visible(NotificationFilter{Type: "all"})))
	assert.Equal(t, []int{2}, ids(member.Visible(NotificationFilter{Search: "JANE"})))
}

func TestNotifications_EmptyFetchClearsSnapshot(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	feed := &notificationFeed{}
	feed.set(notification(1, "comment", "hello", e.now))
	e.handle(http.MethodGet, "/notifications", feed.serve)

	svc := NewNotificationService(e.deps, nil)
	svc.Open(ctx)
	_, ok, err := e.store.Notifications().Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	feed.set()
	res := svc.Retry(ctx)
	require.NoError(t, res.Err)
	assert.Empty(t, svc.Visible(NotificationFilter{}))
	_, ok, err = e.store.Notifications().Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNotifications_RefreshRequested(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	feed := &notificationFeed{}
	e.handle(http.MethodGet, "/notifications", feed.serve)

	svc := NewNotificationService(e.deps, nil)
	defer svc.Attach(ctx)()

	e.bus.Publish(events.NotificationsRefreshRequested{})
	assert.Equal(t, 1, e.count("GET /notifications"))
}

func TestUnreadCount(t *testing.T) {
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	list := []models.Notification{
		{ID: 1, CreatedAt: now.Add(-time.Hour)},
		{ID: 2, CreatedAt: now.Add(time.Hour)},
		{ID: 3, CreatedAt: now},
	}
	assert.Equal(t, 3, UnreadCount(list, time.Time{}))
	assert.Equal(t, 1, UnreadCount(list, now))
	assert.Equal(t, 0, UnreadCount(nil, now))
}

func TestAccount_ResetPasswordRejectedSession(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.login(t)
	require.NoError(t, e.store.SetProfile(ctx, models.User{ID: 1, Name: "Jane"}))
	e.reply(http.MethodPut, "/auth/reset-password", http.StatusUnauthorized, nil)

	logins := 0
	events.Subscribe(e.bus, func(events.LoginChanged) { logins++ })

	s := NewAccountService(e.deps)
	require.NoError(t, s.RequestPasswordReset(PasswordChange{Current: "oldpass", New: "newpass", Confirm: "newpass"}))
	err := s.ConfirmPasswordReset(ctx)
	require.Error(t, err)
	assert.Equal(t, "Failed to reset password.", UserMessage(err))

	_, ok, err := e.store.Session(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	profile, err := e.store.Profile(ctx)
	require.NoError(t, err)
	assert.Nil(t, profile)
	assert.Equal(t, 1, logins)
}

func TestAccount_ResetPassword(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.login(t)

	var body map[string]string
	e.handle(http.MethodPut, "/auth/reset-password", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, decodeBody(r, &body))
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})

	s := NewAccountService(e.deps)
	assert.ErrorIs(t, s.ConfirmPasswordReset(ctx), ErrNothingToConfirm)

	require.NoError(t, s.RequestPasswordReset(PasswordChange{Current: "oldpass", New: "newpass", Confirm: "newpass"}))
	require.NoError(t, s.ConfirmPasswordReset(ctx))
	assert.Equal(t, map[string]string{"oldPassword": "oldpass", "newPassword": "newpass"}, body)
	assert.Equal(t, "Password reset successfully", e.toast())
	assert.ErrorIs(t, s.ConfirmPasswordReset(ctx), ErrNothingToConfirm)
}

func TestAccount_PasswordValidation(t *testing.T) {
	tests := []struct {
		name string
		in   PasswordChange
		want FieldErrors
	}{
		{"empty", PasswordChange{}, FieldErrors{
			"current": "Current password is required",
			"new":     "New password is required",
			"confirm": "Please confirm your password",
		}},
		{"short", PasswordChange{Current: "x", New: "abc", Confirm: "abc"}, FieldErrors{
			"new": "Password must be at least 6 characters",
		}},
		{"mismatch", PasswordChange{Current: "x", New: "abcdef", Confirm: "abcdeg"}, FieldErrors{
			"confirm": "Passwords do not match",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewAccountService(newEnv(t).deps)
			err := s.RequestPasswordReset(tt.in)
			var fe FieldErrors
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.want, fe)
			assert.ErrorIs(t, err, common.ErrorValidation)

			_, pending := s.resets.Pending()
			assert.False(t, pending)
		})
	}
}

func TestAccount_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.login(t)
	require.NoError(t, e.store.SetProfile(ctx, models.User{ID: 1, Name: "Jane", Username: "jane", Email: "jane@example.com", Role: "user"}))

	e.handle(http.MethodPut, "/users/profile", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{
			"name":        r.FormValue("name"),
			"username":    r.FormValue("username"),
			"profile_pic": "/img/jd.png",
		}})
	})

	logins := 0
	events.Subscribe(e.bus, func(events.LoginChanged) { logins++ })

	s := NewAccountService(e.deps)

	_, err := s.UpdateProfile(ctx, models.ProfileUpdate{Name: "Jane", Username: "jd"})
	assert.Equal(t, "Username must be at least 3 characters", UserMessage(err))

	u, err := s.UpdateProfile(ctx, models.ProfileUpdate{Name: " Jane Doe ", Username: "janedoe"})
	require.NoError(t, err)
	want := models.User{ID: 1, Name: "Jane Doe", Username: "janedoe", Email: "jane@example.com", ProfilePic: "/img/jd.png", Role: "user"}
	assert.Equal(t, want, *u)

	cached, err := s.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, *cached)
	assert.Equal(t, "Profile saved", e.toast())
	assert.Equal(t, 1, logins)
}

func TestAccount_ProfileFetchedWhenMissing(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := NewAccountService(e.deps).Profile(ctx)
	assert.ErrorIs(t, err, ErrLoginRequired)

	e.login(t)
	e.reply(http.MethodGet, "/auth/get-user", http.StatusOK, map[string]any{"user": map[string]any{"id": 4, "name": "Jane"}})

	s := NewAccountService(e.deps)
	u, err := s.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Jane", u.Name)

	_, err = s.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, e.count("GET /auth/get-user"))
}

func TestConfirmation(t *testing.T) {
	var ran []int
	c := NewConfirmation(func(_ context.Context, id int) error {
		ran = append(ran, id)
		if id == 2 {
			return errors.New("boom")
		}
		return nil
	})

	c.Request(1)
	c.Request(2)
	id, ok := c.Pending()
	require.True(t, ok)
	assert.Equal(t, 2, id, "a later request replaces the pending one")

	assert.EqualError(t, c.Confirm(context.Background()), "boom")
	_, ok = c.Pending()
	assert.False(t, ok, "a failed action still consumes the request")

	assert.ErrorIs(t, c.Confirm(context.Background()), ErrNothingToConfirm)
	assert.Equal(t, []int{2}, ran)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "Please log in first.", UserMessage(ErrLoginRequired))
	assert.Equal(t, "a; b", UserMessage(FieldErrors{"y": "b", "x": "a"}))
	assert.Equal(t, "Nope", UserMessage(&Failure{Message: "Nope", Err: errors.New("x")}))
	assert.Equal(t, "Something went wrong: boom", UserMessage(errors.New("boom")))
}
