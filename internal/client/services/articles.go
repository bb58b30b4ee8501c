package services

import (
	"context"
	"sort"
	"strings"

	"github.com/dmitrijs2005/hhblog/internal/client/client"
	"github.com/dmitrijs2005/hhblog/internal/client/models"
	"github.com/dmitrijs2005/hhblog/internal/client/reconcile"
)

const (
	msgArticleDraft     = "Create article and saved as draft. You can publish article later."
	msgArticlePublished = "Create article and published successfully."
	msgArticleUpdated   = "Article updated successfully."
	msgArticleDeleted   = "Article deleted successfully."
)

// ArticleFilter narrows the admin article list. Empty or "all" facets match
// everything.
type ArticleFilter struct {
	Search   string
	Status   string
	Category string
}

func (f ArticleFilter) match(p models.Post) bool {
	if q := strings.TrimSpace(f.Search); q != "" &&
		!strings.Contains(strings.ToLower(p.Title), strings.ToLower(q)) {
		return false
	}
	if !facet(f.Status, p.Status) || !facet(f.Category, p.Category) {
		return false
	}
	return true
}

func facet(want, got string) bool {
	want = strings.TrimSpace(want)
	return want == "" || strings.EqualFold(want, "all") || strings.EqualFold(want, got)
}

// ArticleService is the admin article dashboard.
type ArticleService struct {
	deps    Deps
	list    *reconcile.List[models.Post, int]
	deletes *Confirmation[int]
}

func NewArticleService(d Deps) *ArticleService {
	s := &ArticleService{deps: d}
	s.list = reconcile.New(reconcile.Options[models.Post, int]{
		Name:        "Articles",
		Fetch:       guard(d, s.fetch),
		Cache:       d.Store.Articles(),
		ID:          func(p models.Post) int { return p.ID },
		Sample:      SamplePosts,
		Timeout:     PostsTimeout,
		Banner:      d.Flash,
		BannerTTL:   d.BannerTTL,
		EmptyPolicy: reconcile.KeepOnEmpty,
		MergeSample: true,
		Logger:      d.Log.With("list", "articles"),
	})
	s.deletes = NewConfirmation(s.delete)
	return s
}

func (s *ArticleService) fetch(ctx context.Context) ([]models.Post, error) {
	posts, err := s.deps.API.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	return withPositionIDs(posts,
		func(p models.Post) int { return p.ID },
		func(p *models.Post, id int) { p.ID = id }), nil
}

// Open shows the local list at once and then refreshes it in the
// background of the call.
func (s *ArticleService) Open(ctx context.Context) reconcile.Result {
	s.list.Prime(ctx)
	return s.list.Load(ctx, false)
}

// Retry re-fetches and reports a failure with a banner.
func (s *ArticleService) Retry(ctx context.Context) reconcile.Result {
	return s.list.Load(ctx, true)
}

func (s *ArticleService) Items() []models.Post {
	return s.list.Items()
}

func (s *ArticleService) Source() reconcile.Source {
	return s.list.Source()
}

func (s *ArticleService) Filter(f ArticleFilter) []models.Post {
	return s.list.Filter(f.match)
}

// Categories lists the distinct categories of the articles on display, for
// the category facet.
func (s *ArticleService) Categories() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range s.list.Items() {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

// Get returns the article for editing: the server copy when reachable,
// else the one on display.
func (s *ArticleService) Get(ctx context.Context, id int) (*models.Post, error) {
	callCtx, cancel := context.WithTimeout(ctx, PostsTimeout)
	defer cancel()

	p, err := s.deps.API.GetPost(callCtx, id)
	if err == nil {
		return p, nil
	}
	if client.IsUnauthorized(s.deps.check(ctx, err)) {
		return nil, fail(err, "Article not found.")
	}
	if local, ok := s.list.Find(id); ok {
		s.deps.Log.Warn(ctx, "using local copy of article", "id", id, "error", err)
		return &local, nil
	}
	return nil, s.deps.fail(ctx, err, "Article not found.")
}

func validateArticle(in models.PostInput) error {
	fe := FieldErrors{}
	if strings.TrimSpace(in.Title) == "" {
		fe["title"] = "Title is required"
	}
	if strings.TrimSpace(in.Category) == "" && in.CategoryID == 0 {
		fe["category"] = "Category is required"
	}
	if strings.TrimSpace(in.Content) == "" {
		fe["content"] = "Content is required"
	}
	return fe.err()
}

// resolveCategory fills CategoryID from the cached category list when only
// the name was given.
func (s *ArticleService) resolveCategory(ctx context.Context, in models.PostInput) models.PostInput {
	if in.CategoryID != 0 || in.Category == "" {
		return in
	}
	cats, ok, err := s.deps.Store.Categories().Load(ctx)
	if err != nil || !ok {
		cats = SampleCategories()
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, in.Category) {
			in.CategoryID = c.ID
			break
		}
	}
	return in
}

func (s *ArticleService) Create(ctx context.Context, in models.PostInput) (*models.Post, error) {
	if err := validateArticle(in); err != nil {
		return nil, err
	}
	if in.Status != models.StatusDraft {
		in.Status = models.StatusPublished
	}

	p, err := s.deps.API.CreatePost(ctx, s.resolveCategory(ctx, in))
	if err != nil {
		return nil, s.deps.fail(ctx, err, "Failed to create article.")
	}

	if in.Status == models.StatusDraft {
		s.deps.toast(msgArticleDraft)
	} else {
		s.deps.toast(msgArticlePublished)
	}
	s.list.Load(ctx, false)
	return p, nil
}

func (s *ArticleService) Update(ctx context.Context, id int, in models.PostInput) (*models.Post, error) {
	if err := validateArticle(in); err != nil {
		return nil, err
	}
	if in.Status != models.StatusDraft {
		in.Status = models.StatusPublished
	}

	p, err := s.deps.API.UpdatePost(ctx, id, s.resolveCategory(ctx, in))
	if err != nil {
		return nil, s.deps.fail(ctx, err, "Failed to update article.")
	}

	s.deps.toast(msgArticleUpdated)
	s.list.Load(ctx, false)
	return p, nil
}

func (s *ArticleService) RequestDelete(id int) { s.deletes.Request(id) }

func (s *ArticleService) PendingDelete() (int, bool) { return s.deletes.Pending() }

func (s *ArticleService) CancelDelete() { s.deletes.Cancel() }

func (s *ArticleService) ConfirmDelete(ctx context.Context) error {
	return s.deletes.Confirm(ctx)
}

func (s *ArticleService) delete(ctx context.Context, id int) error {
	if err := s.deps.API.DeletePost(ctx, id); err != nil {
		return s.deps.fail(ctx, err, "Failed to delete article.")
	}
	s.list.Remove(ctx, id)
	s.deps.toast(msgArticleDeleted)
	return nil
}
