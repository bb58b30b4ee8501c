package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/hhblog/internal/client/models"
	"github.com/dmitrijs2005/hhblog/internal/client/services"
)

// parseArticleArgs splits "articles" arguments into facets (status=..,
// category=..) and the free-text search.
func parseArticleArgs(args []string) services.ArticleFilter {
	var f services.ArticleFilter
	var search []string
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "status="):
			f.Status = strings.TrimPrefix(arg, "status=")
		case strings.HasPrefix(arg, "category="):
			f.Category = strings.TrimPrefix(arg, "category=")
		default:
			search = append(search, arg)
		}
	}
	f.Search = strings.Join(search, " ")
	return f
}

// Articles shows the admin article dashboard.
func (a *App) Articles(ctx context.Context, args []string) error {
	f := parseArticleArgs(args)
	a.articles.Open(ctx)
	a.setRetry(func(ctx context.Context) {
		a.articles.Retry(ctx)
		a.showArticles(f)
	})
	a.showArticles(f)
	return nil
}

func (a *App) showArticles(f services.ArticleFilter) {
	if note := renderSource(a.articles.Source()); note != "" {
		a.println(note)
	}
	list := a.articles.Filter(f)
	if len(list) == 0 {
		a.println(mutedStyle.Render("No articles match."))
		return
	}
	a.println(renderArticleList(list))
	if cats := a.articles.Categories(); len(cats) > 0 {
		a.println(mutedStyle.Render("Categories: " + strings.Join(cats, ", ")))
	}
}

// articleForm asks for the article fields. Empty answers keep the values
// of current.
func (a *App) articleForm(current models.Post) (models.PostInput, error) {
	var in models.PostInput
	ask := func(label, value string) (string, error) {
		if value != "" {
			label = fmt.Sprintf("%s [%s]", label, truncate(value, 40))
		}
		answer, err := a.prompt(label)
		return withDefault(answer, value), err
	}

	var err error
	if in.Title, err = ask("Title", current.Title); err != nil {
		return in, err
	}
	if in.Category, err = ask("Category", current.Category); err != nil {
		return in, err
	}
	if in.Description, err = ask("Description", current.Description); err != nil {
		return in, err
	}

	content, err := GetMultiline(a.reader, "Content", a.out)
	if err != nil {
		return in, err
	}
	in.Content = withDefault(content, current.Content)

	status, err := ask("Status (draft/published)", current.Status)
	if err != nil {
		return in, err
	}
	if strings.EqualFold(status, models.StatusDraft) {
		in.Status = models.StatusDraft
	} else {
		in.Status = models.StatusPublished
	}

	path, err := a.prompt("Image file (optional)")
	if err != nil {
		return in, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return in, fmt.Errorf("read image: %w", err)
		}
		in.Image, in.ImageName = data, filepath.Base(path)
	}
	return in, nil
}

func (a *App) ArticleNew(ctx context.Context) error {
	in, err := a.articleForm(models.Post{})
	if err != nil {
		return err
	}
	p, err := a.articles.Create(ctx, in)
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("Article #%d saved.", p.ID))
	return nil
}

func (a *App) ArticleEdit(ctx context.Context, id int) error {
	current, err := a.articles.Get(ctx, id)
	if err != nil {
		return err
	}
	in, err := a.articleForm(*current)
	if err != nil {
		return err
	}
	if _, err := a.articles.Update(ctx, id, in); err != nil {
		return err
	}
	return nil
}

func (a *App) ArticleDelete(ctx context.Context, id int) error {
	a.articles.RequestDelete(id)
	ok, err := GetConfirmation(a.reader, fmt.Sprintf("Delete article #%d?", id), a.out)
	if err != nil || !ok {
		a.articles.CancelDelete()
		a.println("Cancelled.")
		return err
	}
	return a.articles.ConfirmDelete(ctx)
}

// Categories shows the admin category list.
func (a *App) Categories(ctx context.Context, query string) error {
	a.categories.Open(ctx)
	a.setRetry(func(ctx context.Context) {
		a.categories.Retry(ctx)
		a.showCategories(query)
	})
	a.showCategories(query)
	return nil
}

func (a *App) showCategories(query string) {
	if note := renderSource(a.categories.Source()); note != "" {
		a.println(note)
	}
	list := a.categories.Search(query)
	if len(list) == 0 {
		a.println(mutedStyle.Render("No categories match."))
		return
	}
	a.println(renderCategoryList(list))
}

func (a *App) CategoryNew(ctx context.Context) error {
	name, err := a.prompt("Category name")
	if err != nil {
		return err
	}
	c, err := a.categories.Create(ctx, name)
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("Category %q saved.", c.Name))
	return nil
}

func (a *App) CategoryEdit(ctx context.Context, id int) error {
	current, err := a.categories.Get(ctx, id)
	if err != nil {
		return err
	}
	name, err := a.prompt(fmt.Sprintf("Category name [%s]", current.Name))
	if err != nil {
		return err
	}
	_, err = a.categories.Update(ctx, id, withDefault(name, current.Name))
	return err
}

func (a *App) CategoryDelete(ctx context.Context, id int) error {
	a.categories.RequestDelete(id)
	ok, err := GetConfirmation(a.reader, fmt.Sprintf("Delete category #%d?", id), a.out)
	if err != nil || !ok {
		a.categories.CancelDelete()
		a.println("Cancelled.")
		return err
	}
	return a.categories.ConfirmDelete(ctx)
}
