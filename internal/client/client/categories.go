package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/hhblog/internal/client/models"
)

func (c *HTTPClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	body, err := c.do(ctx, http.MethodGet, "/categories", nil, "")
	if err != nil {
		return nil, err
	}
	return decodeList[models.Category](body)
}

func (c *HTTPClient) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/categories/%d", id), nil, "")
	if err != nil {
		return nil, err
	}
	return decodeObject[models.Category](body, "category")
}

func (c *HTTPClient) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	return c.sendCategory(ctx, http.MethodPost, "/categories", name)
}

func (c *HTTPClient) UpdateCategory(ctx context.Context, id int, name string) (*models.Category, error) {
	cat, err := c.sendCategory(ctx, http.MethodPut, fmt.Sprintf("/categories/%d", id), name)
	if err != nil {
		return nil, err
	}
	if cat.ID == 0 {
		cat.ID = id
	}
	return cat, nil
}

func (c *HTTPClient) sendCategory(ctx context.Context, method, path, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	body, err := c.doJSON(ctx, method, path, map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	cat, err := decodeObject[models.Category](body, "category")
	if err != nil {
		return &models.Category{Name: name}, nil
	}
	if cat.Name == "" {
		cat.Name = name
	}
	return cat, nil
}

func (c *HTTPClient) DeleteCategory(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/categories/%d", id), nil, "")
	return err
}
