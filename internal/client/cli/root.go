package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// showFlash prints and dismisses the pending toast or banner, if any.
func (a *App) showFlash() {
	if msg, ok := a.flash.Take(); ok {
		a.println(renderFlash(msg))
	}
}

// getStatus builds the prompt suffix: who is signed in, the mode and the
// unread badge.
func (a *App) getStatus() string {
	var parts []string
	if st := a.resolver.State(); st.Authenticated() {
		name := a.displayName()
		if st.IsAdmin() {
			name += "*"
		}
		parts = append(parts, name)
	}
	if mode := a.Mode(); mode != "" {
		parts = append(parts, string(mode))
	}
	if a.isLoggedIn() {
		if n := a.badge.Count(); n > 0 {
			parts = append(parts, fmt.Sprintf("%d unread", n))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf(" (%s)", strings.Join(parts, " "))
}

// Root prints the greeting and runs the REPL on the app's input.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to the blog CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

// afterCommand prints the toast or banner the command left behind.
func (a *App) afterCommand() {
	a.showFlash()
}
