package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hhblog/internal/client/models"
	"github.com/dmitrijs2005/hhblog/internal/client/services"
)

// Posts shows the public feed, optionally narrowed by title or category.
func (a *App) Posts(ctx context.Context, query string) error {
	posts, res := a.posts.Feed(ctx, query)
	a.setRetry(func(ctx context.Context) { _ = a.Posts(ctx, query) })

	if note := renderSource(res.Source); note != "" {
		a.println(note)
	}
	if len(posts) == 0 {
		a.println(mutedStyle.Render("No posts found."))
		return nil
	}
	a.println(renderPostList(posts))
	return nil
}

// openPage returns the page of post id, reusing the one last shown.
func (a *App) openPage(ctx context.Context, id int) (*services.PostPage, error) {
	a.mu.Lock()
	page := a.page
	a.mu.Unlock()
	if page != nil && page.Post().ID == id {
		return page, nil
	}

	page, err := a.posts.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.page = page
	a.mu.Unlock()
	return page, nil
}

// Post shows one post with its likes and comments.
func (a *App) Post(ctx context.Context, id int) error {
	a.mu.Lock()
	a.page = nil
	a.mu.Unlock()

	page, err := a.openPage(ctx, id)
	if err != nil {
		return err
	}
	a.setRetry(func(ctx context.Context) { _ = a.Post(ctx, id) })

	if note := renderSource(page.Source()); note != "" {
		a.println(note)
	}
	a.println(renderPost(page.Post(), page.Likes()))
	a.println()
	a.println(renderComments(page.Comments()))
	return nil
}

// Like toggles the like of the signed-in user on post id.
func (a *App) Like(ctx context.Context, id int) error {
	page, err := a.openPage(ctx, id)
	if err != nil {
		return err
	}
	likes, err := page.ToggleLike(ctx)
	if err != nil {
		return err
	}

	verb := "Unliked"
	if likes.Liked {
		verb = "Liked"
	}
	a.println(fmt.Sprintf("%s. %d like(s).", verb, likes.Count))
	return nil
}

// Comment asks for a comment and posts it on post id.
func (a *App) Comment(ctx context.Context, id int) error {
	if !a.isLoggedIn() {
		return services.ErrLoginRequired
	}
	page, err := a.openPage(ctx, id)
	if err != nil {
		return err
	}

	text, err := GetMultiline(a.reader, "Enter your comment", a.out)
	if err != nil {
		return err
	}
	c, err := page.AddComment(ctx, text)
	if err != nil {
		return err
	}

	a.println(successStyle.Render("Comment posted."))
	a.println(renderComments([]models.Comment{*c}))
	return nil
}

func (a *App) setRetry(fn func(ctx context.Context)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.retry = fn
}

// Retry repeats the last list view, with a banner if it fails again.
func (a *App) Retry(ctx context.Context) error {
	a.mu.Lock()
	fn := a.retry
	a.mu.Unlock()
	if fn == nil {
		a.println("Nothing to retry.")
		return nil
	}
	fn(ctx)
	return nil
}
