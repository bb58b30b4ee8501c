package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/hhblog/internal/client/models"
	"github.com/dmitrijs2005/hhblog/internal/client/services"
)

// Profile shows the profile and offers to edit it.
func (a *App) Profile(ctx context.Context) error {
	u, err := a.account.Profile(ctx)
	if err != nil {
		return err
	}
	a.println(renderUser(*u))

	edit, err := GetConfirmation(a.reader, "Edit profile?", a.out)
	if err != nil || !edit {
		return err
	}

	var in models.ProfileUpdate
	name, err := a.prompt(fmt.Sprintf("Name [%s]", u.Name))
	if err != nil {
		return err
	}
	in.Name = withDefault(name, u.Name)

	username, err := a.prompt(fmt.Sprintf("Username [%s]", u.Username))
	if err != nil {
		return err
	}
	in.Username = withDefault(username, u.Username)

	path, err := a.prompt("Profile picture file (optional)")
	if err != nil {
		return err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read picture: %w", err)
		}
		in.Image, in.ImageName = data, filepath.Base(path)
	}

	updated, err := a.account.UpdateProfile(ctx, in)
	if err != nil {
		return err
	}
	a.println(renderUser(*updated))
	return nil
}

// ResetPassword asks for the current and the new password and confirms
// before submitting.
func (a *App) ResetPassword(ctx context.Context) error {
	var in services.PasswordChange
	var err error

	if in.Current, err = getPassword(a.reader, "Current password", a.out); err != nil {
		return err
	}
	if in.New, err = getPassword(a.reader, "New password", a.out); err != nil {
		return err
	}
	if in.Confirm, err = getPassword(a.reader, "Confirm new password", a.out); err != nil {
		return err
	}

	if err := a.account.RequestPasswordReset(in); err != nil {
		return err
	}
	ok, err := GetConfirmation(a.reader, "Change your password?", a.out)
	if err != nil || !ok {
		a.account.CancelPasswordReset()
		a.println("Cancelled.")
		return err
	}
	return a.account.ConfirmPasswordReset(ctx)
}
