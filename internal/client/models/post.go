package models

import (
	"fmt"
	"time"
)

const (
	StatusDraft     = "Draft"
	StatusPublished = "Published"

	StatusIDDraft     = 1
	StatusIDPublished = 2
)

// StatusLabel maps the server's numeric status to its display label.
func StatusLabel(id int) string {
	switch id {
	case StatusIDDraft:
		return StatusDraft
	case StatusIDPublished:
		return StatusPublished
	default:
		return ""
	}
}

// StatusID is the inverse of StatusLabel. Unknown labels map to published.
func StatusID(label string) int {
	if label == StatusDraft {
		return StatusIDDraft
	}
	return StatusIDPublished
}

// Post is an article as shown in the public feed and the admin dashboard.
type Post struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	CategoryID  int       `json:"category_id,omitempty"`
	Status      string    `json:"status"`
	StatusID    int       `json:"status_id,omitempty"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content,omitempty"`
	Image       string    `json:"image,omitempty"`
	Author      string    `json:"author,omitempty"`
	Date        time.Time `json:"date"`
	LikesCount  int       `json:"likes_count,omitempty"`
}

// UnmarshalJSON accepts the several shapes the API has used for posts and
// fills display fallbacks for title, category and status.
func (p *Post) UnmarshalJSON(b []byte) error {
	f, err := decodeFields(b)
	if err != nil {
		return err
	}

	*p = Post{}
	p.ID, _ = f.num("id")
	p.Title = f.str("title", "name")
	if p.Title == "" {
		p.Title = "Untitled"
	}

	p.CategoryID, _ = f.num("category_id", "categoryId")
	p.Category = f.str("category")
	if p.Category == "" {
		if c := f.obj("category"); c != nil {
			p.Category = c.str("name")
		}
	}
	if p.Category == "" {
		if p.CategoryID != 0 {
			p.Category = fmt.Sprintf("Category %d", p.CategoryID)
		} else {
			p.Category = "Uncategorized"
		}
	}

	p.StatusID, _ = f.num("status_id", "statusId")
	p.Status = f.str("status")
	if p.Status == "" {
		p.Status = StatusLabel(p.StatusID)
	}
	if p.Status == "" {
		p.Status = StatusPublished
	}

	p.Description = f.str("description", "excerpt")
	p.Content = f.str("content", "body")
	p.Image = f.str("image", "thumbnail", "image_url")
	p.Author = f.str("author")
	if p.Author == "" {
		if a := f.obj("author"); a != nil {
			p.Author = a.str("name", "username")
		}
	}
	p.Date = f.when("date", "published_at", "created_at", "createdAt")
	p.LikesCount, _ = f.num("likes_count", "likes")

	return nil
}

// PostInput is the body of article create/update requests.
type PostInput struct {
	Title       string
	CategoryID  int
	Category    string
	Description string
	Content     string
	Status      string
	Image       []byte
	ImageName   string
}

// Fields returns the multipart text fields of the input.
func (in PostInput) Fields() map[string]string {
	out := map[string]string{
		"title":       in.Title,
		"description": in.Description,
		"content":     in.Content,
		"status_id":   fmt.Sprint(StatusID(in.Status)),
		"category":    in.Category,
	}
	if in.CategoryID != 0 {
		out["category_id"] = fmt.Sprint(in.CategoryID)
	}
	return out
}
