package cli

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/hhblog/internal/client/flash"
	"github.com/dmitrijs2005/hhblog/internal/client/models"
	"github.com/dmitrijs2005/hhblog/internal/client/reconcile"
)

const (
	colBlue   = "4"
	colGreen  = "2"
	colRed    = "1"
	colYellow = "3"
	colGray   = "8"

	maxCellWidth = 48
	dateLayout   = "Jan 2, 2006"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colBlue))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colGray))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colGreen))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colRed))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colYellow))
)

// renderFlash renders a toast or banner.
func renderFlash(m flash.Message) string {
	switch m.Kind {
	case flash.KindSuccess:
		return successStyle.Render("✓ " + m.Text)
	case flash.KindError:
		return errorStyle.Render("! " + m.Text)
	default:
		return m.Text
	}
}

// renderSource notes when the list on display is not fresh from the API.
func renderSource(src reconcile.Source) string {
	switch src {
	case reconcile.SourceCache:
		return warnStyle.Render("(showing saved data)")
	case reconcile.SourceSample:
		return warnStyle.Render("(showing sample data)")
	default:
		return ""
	}
}

func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-3]) + "..."
}

// renderTable lays rows out in left-aligned columns under a styled header.
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i := range row {
			row[i] = truncate(row[i], maxCellWidth)
			if w := utf8.RuneCountInString(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = c + strings.Repeat(" ", widths[i]-utf8.RuneCountInString(c))
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(line(headers)))
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(line(row))
	}
	return b.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

func renderPostList(posts []models.Post) string {
	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, []string{fmt.Sprint(p.ID), p.Title, p.Category, formatDate(p.Date)})
	}
	return renderTable([]string{"ID", "TITLE", "CATEGORY", "DATE"}, rows)
}

func renderArticleList(posts []models.Post) string {
	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, []string{fmt.Sprint(p.ID), p.Title, p.Category, p.Status, formatDate(p.Date)})
	}
	return renderTable([]string{"ID", "TITLE", "CATEGORY", "STATUS", "DATE"}, rows)
}

func renderCategoryList(cats []models.Category) string {
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{fmt.Sprint(c.ID), c.Name})
	}
	return renderTable([]string{"ID", "NAME"}, rows)
}

func renderNotificationList(list []models.Notification, now time.Time) string {
	rows := make([][]string, 0, len(list))
	for _, n := range list {
		post := ""
		if n.PostID != 0 {
			post = fmt.Sprint(n.PostID)
		}
		rows = append(rows, []string{n.Type.Label(), n.Text, post, n.RelativeTime(now)})
	}
	return renderTable([]string{"TYPE", "MESSAGE", "POST", "WHEN"}, rows)
}

func renderPost(p models.Post, likes models.LikeState) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Title))
	b.WriteString("\n")

	meta := []string{p.Category, formatDate(p.Date)}
	if p.Author != "" {
		meta = append([]string{p.Author}, meta...)
	}
	b.WriteString(mutedStyle.Render(strings.Join(meta, " · ")))
	b.WriteString("\n\n")

	body := p.Content
	if body == "" {
		body = p.Description
	}
	b.WriteString(body)
	b.WriteString("\n\n")

	heart := "♡"
	if likes.Liked {
		heart = "♥"
	}
	b.WriteString(fmt.Sprintf("%s %d", heart, likes.Count))
	return b.String()
}

func renderComments(comments []models.Comment) string {
	if len(comments) == 0 {
		return mutedStyle.Render("No comments yet.")
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Comments (%d)", len(comments))))
	for _, c := range comments {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render(c.Author))
		b.WriteString(" ")
		b.WriteString(mutedStyle.Render(formatDate(c.CreatedAt)))
		b.WriteString("\n  ")
		b.WriteString(c.Text)
	}
	return b.String()
}

func renderUser(u models.User) string {
	rows := [][]string{
		{"Name", u.Name},
		{"Username", u.Username},
		{"Email", u.Email},
		{"Role", u.Role},
	}
	if u.ProfilePic != "" {
		rows = append(rows, []string{"Picture", u.ProfilePic})
	}
	return renderTable([]string{"FIELD", "VALUE"}, rows)
}
