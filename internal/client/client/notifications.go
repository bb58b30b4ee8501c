package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/hhblog/internal/client/models"
)

func (c *HTTPClient) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	body, err := c.do(ctx, http.MethodGet, "/notifications", nil, "")
	if err != nil {
		return nil, err
	}
	return decodeList[models.Notification](body)
}
