package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dmitrijs2005/hhblog/internal/client/models"
	"github.com/dmitrijs2005/hhblog/internal/client/reconcile"
)

// discard is the snapshot of lists that are not cached locally.
type discard[T any] struct{}

func (discard[T]) Load(context.Context) ([]T, bool, error) { return nil, false, nil }
func (discard[T]) Save(context.Context, []T) error         { return nil }
func (discard[T]) Clear(context.Context) error             { return nil }

// PostService is the public side of the blog: the feed and single posts.
type PostService struct {
	deps Deps
	feed *reconcile.List[models.Post, int]
}

func NewPostService(d Deps) *PostService {
	s := &PostService{deps: d}
	s.feed = reconcile.New(reconcile.Options[models.Post, int]{
		Name:      "Posts",
		Fetch:     guard(d, d.API.ListPosts),
		Cache:     discard[models.Post]{},
		ID:        func(p models.Post) int { return p.ID },
		Sample:    SamplePosts,
		Timeout:   PostsTimeout,
		Banner:    d.Flash,
		BannerTTL: d.BannerTTL,
		Logger:    d.Log.With("list", "posts"),
	})
	return s
}

// Feed loads the published posts whose title or category contains query.
func (s *PostService) Feed(ctx context.Context, query string) ([]models.Post, reconcile.Result) {
	res := s.feed.Load(ctx, false)
	q := strings.ToLower(strings.TrimSpace(query))
	return s.feed.Filter(func(p models.Post) bool {
		if p.Status != models.StatusPublished {
			return false
		}
		return q == "" ||
			strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Category), q)
	}), res
}

// Open loads a post with its likes and comments. When the post cannot be
// fetched the matching sample post is shown instead.
func (s *PostService) Open(ctx context.Context, id int) (*PostPage, error) {
	page := &PostPage{deps: s.deps, source: reconcile.SourceRemote}

	callCtx, cancel := context.WithTimeout(ctx, PostViewTimeout)
	p, err := s.deps.API.GetPost(callCtx, id)
	cancel()
	if err != nil {
		s.deps.check(ctx, err)
		s.deps.Log.Warn(ctx, "failed to load post, using sample", "id", id, "error", err)
		sample, ok := samplePost(id)
		if !ok {
			return nil, fail(err, "Post not found.")
		}
		p = &sample
		page.source = reconcile.SourceSample
	}
	page.post = *p
	page.likes = models.LikeState{Count: p.LikesCount}

	if page.source == reconcile.SourceRemote {
		callCtx, cancel := context.WithTimeout(ctx, PostViewTimeout)
		if likes, err := s.deps.API.GetLikes(callCtx, id); err == nil {
			page.likes = *likes
		}
		cancel()
	}

	comments := func(ctx context.Context) ([]models.Comment, error) {
		return s.deps.API.ListComments(ctx, id)
	}
	page.comments = reconcile.New(reconcile.Options[models.Comment, int]{
		Name:    "Comments",
		Fetch:   guard(s.deps, comments),
		Cache:   discard[models.Comment]{},
		ID:      func(c models.Comment) int { return c.ID },
		Timeout: PostViewTimeout,
		Logger:  s.deps.Log.With("list", "comments", "post", id),
	})
	if page.source == reconcile.SourceRemote {
		page.comments.Load(ctx, false)
	}
	return page, nil
}

func samplePost(id int) (models.Post, bool) {
	posts := SamplePosts()
	for _, p := range posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

// PostPage is one opened post.
type PostPage struct {
	deps   Deps
	source reconcile.Source

	mu       sync.Mutex
	post     models.Post
	likes    models.LikeState
	comments *reconcile.List[models.Comment, int]
}

func (p *PostPage) Post() models.Post {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.post
}

func (p *PostPage) Source() reconcile.Source { return p.source }

func (p *PostPage) Likes() models.LikeState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.likes
}

func (p *PostPage) Comments() []models.Comment {
	return p.comments.Items()
}

// ToggleLike flips the like of the current user and re-reads the counter.
func (p *PostPage) ToggleLike(ctx context.Context) (models.LikeState, error) {
	if ok, err := p.deps.signedIn(ctx); err != nil || !ok {
		return p.Likes(), ErrLoginRequired
	}

	id := p.Post().ID
	toggled, err := p.deps.API.ToggleLike(ctx, id)
	if err != nil {
		return p.Likes(), p.deps.fail(ctx, err, "Failed to update like.")
	}

	p.mu.Lock()
	prev := p.likes
	p.mu.Unlock()

	next := models.LikeState{Liked: toggled.Liked, Count: prev.Count}
	callCtx, cancel := context.WithTimeout(ctx, PostViewTimeout)
	defer cancel()
	if likes, err := p.deps.API.GetLikes(callCtx, id); err == nil {
		next.Count = likes.Count
	} else if toggled.Count > 0 {
		next.Count = toggled.Count
	} else if next.Liked != prev.Liked {
		if next.Liked {
			next.Count++
		} else if next.Count > 0 {
			next.Count--
		}
	}

	p.mu.Lock()
	p.likes = next
	p.post.LikesCount = next.Count
	p.mu.Unlock()
	return next, nil
}

// AddComment posts text and appends the server's copy of the comment.
func (p *PostPage) AddComment(ctx context.Context, text string) (*models.Comment, error) {
	if ok, err := p.deps.signedIn(ctx); err != nil || !ok {
		return nil, ErrLoginRequired
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, FieldErrors{"comment": "Comment is required"}
	}

	c, err := p.deps.API.CreateComment(ctx, p.Post().ID, text)
	if err != nil {
		return nil, p.deps.fail(ctx, err, "Failed to post comment.")
	}

	if c.Text == "" {
		c.Text = text
	}
	if c.Author == "" {
		if u, err := p.deps.Store.Profile(ctx); err == nil && u != nil {
			c.Author = u.DisplayName()
			c.Avatar = u.ProfilePic
		}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = p.deps.now()
	}

	p.comments.Append(*c)
	return c, nil
}

// IsLoginRequired reports whether err asks the user to log in first.
func IsLoginRequired(err error) bool {
	return errors.Is(err, ErrLoginRequired)
}
