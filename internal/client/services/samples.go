package services

import (
	"time"

	"github.com/dmitrijs2005/hhblog/internal/client/models"
)

var samplePostSeed = []struct {
	title, category, description string
}{
	{"The Art of Mindfulness: Finding Peace in a Busy World", "General", "Discover the transformative power of mindfulness and how it can help you navigate modern life."},
	{"The Secret Language of Cats: Decoding Feline Behavior", "Cat", "Unlock the mysteries of cat communication and learn what your feline friend is trying to tell you."},
	{"Embracing Minimalism: The Joy of Living with Less", "Inspiration", "Explore the freedom that comes with owning less and focusing on what truly matters."},
	{"The Power of Habits: Small Changes, Big Impact", "Inspiration", "Learn how small daily habits compound into life-changing results."},
	{"Cat Nutrition Guide: What to Feed Your Feline Friend", "Cat", "A practical guide to the nutritional needs of cats at every life stage."},
	{"The Future of Work: Adapting to a Digital World", "General", "How remote work and automation are reshaping careers and workplaces."},
}

// SamplePosts is the built-in article list shown when neither the API nor
// the snapshot has any. Every third post starting with the first is a draft.
func SamplePosts() []models.Post {
	base := time.Date(2024, 9, 11, 0, 0, 0, 0, time.UTC)
	out := make([]models.Post, 0, len(samplePostSeed))
	for i, s := range samplePostSeed {
		status := models.StatusPublished
		if i%3 == 0 {
			status = models.StatusDraft
		}
		out = append(out, models.Post{
			ID:          i + 1,
			Title:       s.title,
			Category:    s.category,
			Status:      status,
			StatusID:    models.StatusID(status),
			Description: s.description,
			Content:     s.description,
			Author:      "Thompson P.",
			Date:        base.AddDate(0, 0, -i),
		})
	}
	return out
}

func SampleCategories() []models.Category {
	return []models.Category{
		{ID: 1, Name: "General"},
		{ID: 2, Name: "Cat"},
		{ID: 3, Name: "Inspiration"},
	}
}

// SampleNotifications is the built-in notification list, dated relative to
// now.
func SampleNotifications(now time.Time) []models.Notification {
	ago := func(h int) time.Time { return now.Add(-time.Duration(h) * time.Hour) }
	return []models.Notification{
		{ID: 1, Type: models.NotificationNewArticle, Text: "New article: The Art of Mindfulness", PostID: 1, CreatedAt: ago(1)},
		{ID: 2, Type: models.NotificationComment, Text: "Someone commented on 'The Art of Mindfulness'", PostID: 1, CreatedAt: ago(2)},
		{ID: 3, Type: models.NotificationNewArticle, Text: "New article: Cat Nutrition Guide", PostID: 5, CreatedAt: ago(5)},
		{ID: 4, Type: models.NotificationComment, Text: "Someone commented on 'Cat Nutrition Guide'", PostID: 5, CreatedAt: ago(8)},
	}
}
