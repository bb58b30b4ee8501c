package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/hhblog/internal/client/models"
	"github.com/dmitrijs2005/hhblog/internal/netx"
)

func (c *HTTPClient) ListPosts(ctx context.Context) ([]models.Post, error) {
	body, err := c.do(ctx, http.MethodGet, "/posts", nil, "")
	if err != nil {
		return nil, err
	}
	return decodeList[models.Post](body)
}

// GetPost tolerates servers that answer with the whole list: the matching
// post is picked, or the first one.
func (c *HTTPClient) GetPost(ctx context.Context, id int) (*models.Post, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d", id), nil, "")
	if err != nil {
		return nil, err
	}

	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		posts, err := decodeList[models.Post](trimmed)
		if err != nil {
			return nil, err
		}
		if len(posts) == 0 {
			return nil, ErrNotFound
		}
		for i := range posts {
			if posts[i].ID == id {
				return &posts[i], nil
			}
		}
		return &posts[0], nil
	}

	return decodeObject[models.Post](body, "post")
}

func (c *HTTPClient) CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error) {
	return c.sendPost(ctx, http.MethodPost, "/posts", in)
}

func (c *HTTPClient) UpdatePost(ctx context.Context, id int, in models.PostInput) (*models.Post, error) {
	return c.sendPost(ctx, http.MethodPut, fmt.Sprintf("/posts/%d", id), in)
}

func (c *HTTPClient) sendPost(ctx context.Context, method, path string, in models.PostInput) (*models.Post, error) {
	form, contentType, err := netx.Multipart(in.Fields(),
		netx.File{Field: "imageFile", Filename: in.ImageName, Data: in.Image})
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, method, path, form, contentType)
	if err != nil {
		return nil, err
	}
	return decodeObject[models.Post](body, "post")
}

func (c *HTTPClient) DeletePost(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", id), nil, "")
	return err
}

// GetLikes accepts {"count": n, "liked": b} or a bare array of likes.
func (c *HTTPClient) GetLikes(ctx context.Context, postID int) (*models.LikeState, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d/likes", postID), nil, "")
	if err != nil {
		return nil, err
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		likes, err := decodeList[map[string]any](trimmed)
		if err != nil {
			return nil, err
		}
		return &models.LikeState{Count: len(likes)}, nil
	}
	return decodeObject[models.LikeState](body)
}

func (c *HTTPClient) ToggleLike(ctx context.Context, postID int) (*models.LikeState, error) {
	body, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/like", postID), nil, "")
	if err != nil {
		return nil, err
	}
	return decodeObject[models.LikeState](body)
}

func (c *HTTPClient) ListComments(ctx context.Context, postID int) ([]models.Comment, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d/comments", postID), nil, "")
	if err != nil {
		return nil, err
	}
	return decodeList[models.Comment](body)
}

func (c *HTTPClient) CreateComment(ctx context.Context, postID int, text string) (*models.Comment, error) {
	body, err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/comments", postID),
		map[string]string{"comment_text": text})
	if err != nil {
		return nil, err
	}
	return decodeObject[models.Comment](body, "comment")
}
