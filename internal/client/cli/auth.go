package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hhblog/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) prompt(label string) (string, error) {
	return getSimpleText(a.reader, label, a.out)
}

func (a *App) credentials() (string, string, error) {
	email, err := a.prompt("Enter email")
	if err != nil {
		return "", "", err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

// Login signs a reader in. On success the session resolver re-resolves
// through the LoginChanged event.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	if err := a.authService.Login(ctx, email, password); err != nil {
		return err
	}
	a.println(successStyle.Render(fmt.Sprintf("Welcome, %s!", a.displayName())))
	return nil
}

// AdminLogin signs an administrator in and refuses other roles.
func (a *App) AdminLogin(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	if err := a.authService.AdminLogin(ctx, email, password); err != nil {
		return err
	}
	a.println(successStyle.Render(fmt.Sprintf("Welcome, %s! Type 'help' for admin commands.", a.displayName())))
	return nil
}

func (a *App) Signup(ctx context.Context) error {
	var req models.SignupRequest
	var err error

	if req.Name, err = a.prompt("Enter name"); err != nil {
		return err
	}
	if req.Username, err = a.prompt("Enter username"); err != nil {
		return err
	}
	if req.Email, err = a.prompt("Enter email"); err != nil {
		return err
	}
	if req.Password, err = getPassword(a.reader, "Enter password", a.out); err != nil {
		return err
	}

	if err := a.authService.Signup(ctx, req); err != nil {
		return err
	}

	if a.isLoggedIn() {
		a.println(successStyle.Render(fmt.Sprintf("Account created. Welcome, %s!", a.displayName())))
	} else {
		a.println(successStyle.Render("Account created. You can log in now."))
	}
	return nil
}

// Logout purges the stored session and the cached profile.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out.")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	st := a.resolver.State()
	if !st.Authenticated() || st.Profile == nil {
		a.println("Not logged in.")
		return nil
	}
	a.println(renderUser(*st.Profile))
	return nil
}

func (a *App) displayName() string {
	if p := a.resolver.State().Profile; p != nil {
		return p.DisplayName()
	}
	return "User"
}
