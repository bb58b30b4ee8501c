package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/hhblog/internal/client/services"
	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	admin    bool
	errs     map[string]error

	calls []string
	after int
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	name, _, _ := strings.Cut(call, " ")
	return f.errs[name]
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) isAdmin() bool    { return f.admin }
func (f *fakeExec) afterCommand()    { f.after++ }

func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Signup(context.Context) error { return f.record("signup") }
func (f *fakeExec) AdminLogin(context.Context) error {
	f.loggedIn, f.admin = true, true
	return f.record("admin-login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn, f.admin = false, false
	return f.record("logout")
}
func (f *fakeExec) Whoami(context.Context) error { return f.record("whoami") }
func (f *fakeExec) Posts(_ context.Context, q string) error {
	return f.record(fmt.Sprintf("posts %q", q))
}
func (f *fakeExec) Post(_ context.Context, id int) error { return f.record(fmt.Sprintf("post %d", id)) }
func (f *fakeExec) Like(_ context.Context, id int) error { return f.record(fmt.Sprintf("like %d", id)) }
func (f *fakeExec) Comment(_ context.Context, id int) error {
	return f.record(fmt.Sprintf("comment %d", id))
}
func (f *fakeExec) Articles(_ context.Context, args []string) error {
	return f.record(fmt.Sprintf("articles %v", args))
}
func (f *fakeExec) ArticleNew(context.Context) error { return f.record("article-new") }
func (f *fakeExec) ArticleEdit(_ context.Context, id int) error {
	return f.record(fmt.Sprintf("article-edit %d", id))
}
func (f *fakeExec) ArticleDelete(_ context.Context, id int) error {
	return f.record(fmt.Sprintf("article-delete %d", id))
}
func (f *fakeExec) Categories(_ context.Context, q string) error {
	return f.record(fmt.Sprintf("categories %q", q))
}
func (f *fakeExec) CategoryNew(context.Context) error { return f.record("category-new") }
func (f *fakeExec) CategoryEdit(_ context.Context, id int) error {
	return f.record(fmt.Sprintf("category-edit %d", id))
}
func (f *fakeExec) CategoryDelete(_ context.Context, id int) error {
	return f.record(fmt.Sprintf("category-delete %d", id))
}
func (f *fakeExec) Notifications(context.Context) error { return f.record("notifications") }
func (f *fakeExec) Unread(context.Context) error        { return f.record("unread") }
func (f *fakeExec) Profile(context.Context) error       { return f.record("profile") }
func (f *fakeExec) ResetPassword(context.Context) error { return f.record("reset-password") }
func (f *fakeExec) Retry(context.Context) error         { return f.record("retry") }
func (f *fakeExec) Health(context.Context) error        { return f.record("health") }

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func run(exec *fakeExec, lines ...string) {
	r := bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	runREPL(context.Background(), exec, func() string { return "" }, r)
}

func TestRunREPL_GuestFlow(t *testing.T) {
	out := capturePrintln(t)
	exec := &fakeExec{}

	run(exec,
		"help",
		"posts cat naps",
		"post 3",
		"post x",
		"notifications",
		"articles",
		"login",
		"notifications",
		"foobar",
		"exit",
		"posts",
	)

	assert.Equal(t, []string{`posts "cat naps"`, "post 3", "login", "notifications"}, exec.calls)
	assert.Contains(t, *out, helpGuest)
	assert.NotContains(t, *out, helpUser)
	assert.Contains(t, *out, "usage: post <id>, id must be a positive number")
	assert.Contains(t, *out, "Please log in first.")
	assert.Contains(t, *out, "Admin access required. Use admin-login first.")
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Equal(t, "Bye!", (*out)[len(*out)-1])
}

func TestRunREPL_AdminCommands(t *testing.T) {
	capturePrintln(t)
	exec := &fakeExec{loggedIn: true, admin: true}

	run(exec,
		"articles go status=draft category=Cat",
		"article-new",
		"article-edit 4",
		"article-delete 4",
		"article-delete",
		"categories food",
		"category-new",
		"category-edit 2",
		"category-delete 3",
		"logout",
		"category-delete 3",
	)

	assert.Equal(t, []string{
		"articles [go status=draft category=Cat]",
		"article-new",
		"article-edit 4",
		"article-delete 4",
		`categories "food"`,
		"category-new",
		"category-edit 2",
		"category-delete 3",
		"logout",
	}, exec.calls)
}

func TestRunREPL_ErrorsAreRenderedAndLoopContinues(t *testing.T) {
	out := capturePrintln(t)
	exec := &fakeExec{
		loggedIn: true,
		errs: map[string]error{
			"like":    services.ErrLoginRequired,
			"profile": &services.Failure{Message: "Failed to load profile."},
		},
	}

	run(exec, "like 7", "profile", "whoami")

	assert.Equal(t, []string{"like 7", "profile", "whoami"}, exec.calls)
	assert.Equal(t, 3, exec.after, "toasts are flushed after every command")
	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "Please log in first.")
	assert.Contains(t, joined, "Failed to load profile.")
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	capturePrintln(t)
	exec := &fakeExec{}

	run(exec, "health")

	assert.Equal(t, []string{"health"}, exec.calls)
}

func TestParseArticleArgs(t *testing.T) {
	f := parseArticleArgs([]string{"go", "status=Draft", "tips", "category=Cat"})
	assert.Equal(t, services.ArticleFilter{Search: "go tips", Status: "Draft", Category: "Cat"}, f)
	assert.Equal(t, services.ArticleFilter{}, parseArticleArgs(nil))
}
