// Package services implements the views of the blog client on top of the
// API client, the local store and the event bus: the article, category and
// notification lists, the post page, and the auth and account flows.
//
// Services never panic on remote failures. Lists fall back to local data;
// mutations return an error whose text is fit for the user (see
// UserMessage) and leave local state as it was.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/hhblog/internal/client/client"
	"github.com/dmitrijs2005/hhblog/internal/client/events"
	"github.com/dmitrijs2005/hhblog/internal/client/flash"
	"github.com/dmitrijs2005/hhblog/internal/client/storage"
	"github.com/dmitrijs2005/hhblog/internal/logging"
)

// Per-view request timeouts.
const (
	PostsTimeout         = 5 * time.Second
	CategoriesTimeout    = 5 * time.Second
	NotificationsTimeout = 3 * time.Second
	PostViewTimeout      = 3 * time.Second
	ResetPasswordTimeout = 10 * time.Second
)

// Deps are the collaborators shared by all services.
type Deps struct {
	API       client.Client
	Store     *storage.Store
	Bus       *events.Bus
	Flash     *flash.Flash
	Log       logging.Logger
	ToastTTL  time.Duration
	BannerTTL time.Duration
	Now       func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) toast(text string) {
	if d.Flash != nil {
		d.Flash.Success(text, d.ToastTTL)
	}
}

// signedIn reports whether a session credential is stored.
func (d Deps) signedIn(ctx context.Context) (bool, error) {
	_, ok, err := d.Store.Session(ctx)
	return ok, err
}

// forceLogout purges the session after the server rejected it. Nothing is
// published when no session was stored.
func (d Deps) forceLogout(ctx context.Context) {
	if ok, err := d.signedIn(ctx); err == nil && !ok {
		return
	}
	if err := d.Store.ClearAuth(ctx); err != nil {
		d.Log.Error(ctx, "failed to purge session", "error", err)
		return
	}
	d.Bus.Publish(events.LoginChanged{})
}

// check purges the session when err is a 401 and returns err unchanged.
// Every authenticated call goes through it.
func (d Deps) check(ctx context.Context, err error) error {
	if err != nil && client.IsUnauthorized(err) {
		d.Log.Info(ctx, "session rejected by server, purging")
		d.forceLogout(ctx)
	}
	return err
}

// fail is check followed by the package-level fail.
func (d Deps) fail(ctx context.Context, err error, fallback string) error {
	return fail(d.check(ctx, err), fallback)
}

// guard wraps a list fetch so that a 401 purges the session.
func guard[T any](d Deps, fetch func(context.Context) ([]T, error)) func(context.Context) ([]T, error) {
	return func(ctx context.Context) ([]T, error) {
		items, err := fetch(ctx)
		return items, d.check(ctx, err)
	}
}

// withPositionIDs gives items lacking an identifier their 1-based position.
func withPositionIDs[T any](items []T, get func(T) int, set func(*T, int)) []T {
	for i := range items {
		if get(items[i]) == 0 {
			set(&items[i], i+1)
		}
	}
	return items
}
