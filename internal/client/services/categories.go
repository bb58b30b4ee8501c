package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/hhblog/internal/client/client"
	"github.com/dmitrijs2005/hhblog/internal/client/models"
	"github.com/dmitrijs2005/hhblog/internal/client/reconcile"
)

const (
	msgCategoryCreated  = "Create category: Category has been successfully created"
	msgCategoryUpdated  = "Category updated successfully"
	msgCategoryDeleted  = "Category deleted successfully"
	msgCategoryNotFound = "Category not found."
)

// CategoryService is the admin category list with its create, edit and
// delete flows.
type CategoryService struct {
	deps    Deps
	list    *reconcile.List[models.Category, int]
	deletes *Confirmation[int]
}

func NewCategoryService(d Deps) *CategoryService {
	s := &CategoryService{deps: d}
	s.list = reconcile.New(reconcile.Options[models.Category, int]{
		Name:      "Categories",
		Fetch:     guard(d, s.fetch),
		Cache:     d.Store.Categories(),
		ID:        func(c models.Category) int { return c.ID },
		Sample:    SampleCategories,
		Timeout:   CategoriesTimeout,
		Banner:    d.Flash,
		BannerTTL: d.BannerTTL,
		Logger:    d.Log.With("list", "categories"),
	})
	s.deletes = NewConfirmation(s.delete)
	return s
}

func (s *CategoryService) fetch(ctx context.Context) ([]models.Category, error) {
	cats, err := s.deps.API.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return withPositionIDs(cats,
		func(c models.Category) int { return c.ID },
		func(c *models.Category, id int) { c.ID = id }), nil
}

func (s *CategoryService) Open(ctx context.Context) reconcile.Result {
	s.list.Prime(ctx)
	return s.list.Load(ctx, false)
}

func (s *CategoryService) Retry(ctx context.Context) reconcile.Result {
	return s.list.Load(ctx, true)
}

func (s *CategoryService) Items() []models.Category {
	return s.list.Items()
}

func (s *CategoryService) Source() reconcile.Source {
	return s.list.Source()
}

// Search filters by case-insensitive substring of the name.
func (s *CategoryService) Search(q string) []models.Category {
	q = strings.ToLower(strings.TrimSpace(q))
	return s.list.Filter(func(c models.Category) bool {
		return q == "" || strings.Contains(strings.ToLower(c.Name), q)
	})
}

// Get loads one category for editing.
func (s *CategoryService) Get(ctx context.Context, id int) (*models.Category, error) {
	callCtx, cancel := context.WithTimeout(ctx, CategoriesTimeout)
	defer cancel()

	c, err := s.deps.API.GetCategory(callCtx, id)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return nil, &Failure{Message: msgCategoryNotFound, Err: err}
		}
		return nil, s.deps.fail(ctx, err, "Failed to load category.")
	}
	if c.ID == 0 {
		c.ID = id
	}
	return c, nil
}

func validateCategory(name string) error {
	if strings.TrimSpace(name) == "" {
		return FieldErrors{"name": "Category name is required"}
	}
	return nil
}

func (s *CategoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	if err := validateCategory(name); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, CategoriesTimeout)
	defer cancel()

	c, err := s.deps.API.CreateCategory(callCtx, name)
	if err != nil {
		return nil, s.deps.fail(ctx, err, "Failed to save category.")
	}

	s.deps.toast(msgCategoryCreated)
	s.list.Load(ctx, false)
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id int, name string) (*models.Category, error) {
	if err := validateCategory(name); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, CategoriesTimeout)
	defer cancel()

	c, err := s.deps.API.UpdateCategory(callCtx, id, name)
	if err != nil {
		return nil, s.deps.fail(ctx, err, "Failed to save category.")
	}

	s.deps.toast(msgCategoryUpdated)
	s.list.Load(ctx, false)
	return c, nil
}

func (s *CategoryService) RequestDelete(id int) { s.deletes.Request(id) }

func (s *CategoryService) PendingDelete() (int, bool) { return s.deletes.Pending() }

func (s *CategoryService) CancelDelete() { s.deletes.Cancel() }

func (s *CategoryService) ConfirmDelete(ctx context.Context) error {
	return s.deletes.Confirm(ctx)
}

func (s *CategoryService) delete(ctx context.Context, id int) error {
	callCtx, cancel := context.WithTimeout(ctx, CategoriesTimeout)
	defer cancel()

	if err := s.deps.API.DeleteCategory(callCtx, id); err != nil {
		return s.deps.fail(ctx, err, "Failed to delete category.")
	}
	s.list.Remove(ctx, id)
	s.deps.toast(msgCategoryDeleted)
	return nil
}
