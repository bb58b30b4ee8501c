package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/hhblog/internal/client/services"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	afterCommand()

	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	AdminLogin(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error

	Posts(ctx context.Context, query string) error
	Post(ctx context.Context, id int) error
	Like(ctx context.Context, id int) error
	Comment(ctx context.Context, id int) error

	Articles(ctx context.Context, args []string) error
	ArticleNew(ctx context.Context) error
	ArticleEdit(ctx context.Context, id int) error
	ArticleDelete(ctx context.Context, id int) error

	Categories(ctx context.Context, query string) error
	CategoryNew(ctx context.Context) error
	CategoryEdit(ctx context.Context, id int) error
	CategoryDelete(ctx context.Context, id int) error

	Notifications(ctx context.Context) error
	Unread(ctx context.Context) error

	Profile(ctx context.Context) error
	ResetPassword(ctx context.Context) error

	Retry(ctx context.Context) error
	Health(ctx context.Context) error
}

const (
	helpGuest = "Available commands: posts [query], post <id>, login, signup, admin-login, health, exit"
	helpUser  = "Available commands: posts [query], post <id>, like <id>, comment <id>, notifications, unread, " +
		"profile, reset-password, whoami, retry, health, logout, exit"
	helpAdmin = "Admin commands: articles [query] [status=..] [category=..], article-new, article-edit <id>, " +
		"article-delete <id>, categories [query], category-new, category-edit <id>, category-delete <id>"
)

var errUsage = errors.New("usage")

// adminCommands are refused unless the resolved user is an admin.
var adminCommands = map[string]bool{
	"articles": true, "article-new": true, "article-edit": true, "article-delete": true,
	"categories": true, "category-new": true, "category-edit": true, "category-delete": true,
}

// userCommands are refused unless a user is signed in.
var userCommands = map[string]bool{
	"logout": true, "whoami": true, "notifications": true, "unread": true,
	"profile": true, "reset-password": true,
}

// runREPL starts a read–eval–print loop for the blog CLI.
//
// It reads a line from r, parses the first token as the command, and
// dispatches to methods on 'a'. Admin views are guarded by role and
// account views by sign-in, the way the web client's routes are. The loop
// exits on EOF or when the user types "exit" or "quit".
//
// Handler errors are printed and the loop continues; handlers log their
// own diagnostics.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("blog%s> ", statusFn()))
		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch {
		case adminCommands[cmd] && !a.isAdmin():
			printlnFn("Admin access required. Use admin-login first.")
			continue
		case userCommands[cmd] && !a.isLoggedIn():
			printlnFn("Please log in first.")
			continue
		}

		err = dispatch(ctx, a, cmd, args)
		a.afterCommand()
		if err != nil {
			if errors.Is(err, errQuit) {
				printlnFn("Bye!")
				return
			}
			if errors.Is(err, errUsage) {
				printlnFn(err.Error())
				continue
			}
			printlnFn(errorStyle.Render(services.UserMessage(err)))
		}
	}
}

var errQuit = errors.New("quit")

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		printlnFn(helpGuest)
		if a.isLoggedIn() {
			printlnFn(helpUser)
		}
		if a.isAdmin() {
			printlnFn(helpAdmin)
		}
		return nil

	case "login":
		return a.Login(ctx)
	case "signup", "register":
		return a.Signup(ctx)
	case "admin-login":
		return a.AdminLogin(ctx)
	case "logout":
		return a.Logout(ctx)
	case "whoami":
		return a.Whoami(ctx)

	case "posts":
		return a.Posts(ctx, strings.Join(args, " "))
	case "post", "like", "comment":
		id, err := idArg(cmd, args)
		if err != nil {
			return err
		}
		switch cmd {
		case "post":
			return a.Post(ctx, id)
		case "like":
			return a.Like(ctx, id)
		default:
			return a.Comment(ctx, id)
		}

	case "articles":
		return a.Articles(ctx, args)
	case "article-new":
		return a.ArticleNew(ctx)
	case "article-edit", "article-delete":
		id, err := idArg(cmd, args)
		if err != nil {
			return err
		}
		if cmd == "article-edit" {
			return a.ArticleEdit(ctx, id)
		}
		return a.ArticleDelete(ctx, id)

	case "categories":
		return a.Categories(ctx, strings.Join(args, " "))
	case "category-new":
		return a.CategoryNew(ctx)
	case "category-edit", "category-delete":
		id, err := idArg(cmd, args)
		if err != nil {
			return err
		}
		if cmd == "category-edit" {
			return a.CategoryEdit(ctx, id)
		}
		return a.CategoryDelete(ctx, id)

	case "notifications":
		return a.Notifications(ctx)
	case "unread":
		return a.Unread(ctx)
	case "profile":
		return a.Profile(ctx)
	case "reset-password":
		return a.ResetPassword(ctx)
	case "retry":
		return a.Retry(ctx)
	case "health":
		return a.Health(ctx)

	case "exit", "quit":
		return errQuit

	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}

func idArg(cmd string, args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: %s <id>", errUsage, cmd)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s <id>, id must be a positive number", errUsage, cmd)
	}
	return id, nil
}
