package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/hhblog/internal/client/events"
	"github.com/dmitrijs2005/hhblog/internal/client/models"
	"github.com/dmitrijs2005/hhblog/internal/client/session"
)

const (
	msgPasswordReset = "Password reset successfully"
	msgProfileSaved  = "Profile saved"
)

// PasswordChange is the password reset form.
type PasswordChange struct {
	Current string
	New     string
	Confirm string
}

type passwordPair struct {
	oldPassword, newPassword string
}

// AccountService covers the profile page and the password reset page.
type AccountService struct {
	deps   Deps
	resets *Confirmation[passwordPair]
}

func NewAccountService(d Deps) *AccountService {
	s := &AccountService{deps: d}
	s.resets = NewConfirmation(s.resetPassword)
	return s
}

func validatePasswordChange(in PasswordChange) error {
	fe := FieldErrors{}
	if in.Current == "" {
		fe["current"] = "Current password is required"
	}
	switch {
	case in.New == "":
		fe["new"] = "New password is required"
	case len(in.New) < 6:
		fe["new"] = "Password must be at least 6 characters"
	}
	switch {
	case in.Confirm == "":
		fe["confirm"] = "Please confirm your password"
	case in.New != "" && in.Confirm != in.New:
		fe["confirm"] = "Passwords do not match"
	}
	return fe.err()
}

// RequestPasswordReset validates the form and waits for confirmation.
func (s *AccountService) RequestPasswordReset(in PasswordChange) error {
	if err := validatePasswordChange(in); err != nil {
		return err
	}
	s.resets.Request(passwordPair{oldPassword: in.Current, newPassword: in.New})
	return nil
}

func (s *AccountService) CancelPasswordReset() { s.resets.Cancel() }

func (s *AccountService) ConfirmPasswordReset(ctx context.Context) error {
	return s.resets.Confirm(ctx)
}

func (s *AccountService) resetPassword(ctx context.Context, p passwordPair) error {
	if ok, err := s.deps.signedIn(ctx); err != nil || !ok {
		return ErrLoginRequired
	}

	callCtx, cancel := context.WithTimeout(ctx, ResetPasswordTimeout)
	defer cancel()

	if err := s.deps.API.ResetPassword(callCtx, p.oldPassword, p.newPassword); err != nil {
		return s.deps.fail(ctx, err, "Failed to reset password.")
	}

	s.deps.toast(msgPasswordReset)
	return nil
}

// Profile returns the cached profile, fetching it when the cache is empty.
func (s *AccountService) Profile(ctx context.Context) (*models.User, error) {
	u, err := s.deps.Store.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	if ok, err := s.deps.signedIn(ctx); err != nil || !ok {
		return nil, ErrLoginRequired
	}

	callCtx, cancel := context.WithTimeout(ctx, session.GetUserTimeout)
	defer cancel()

	u, err = s.deps.API.GetUser(callCtx)
	if err != nil {
		return nil, s.deps.fail(ctx, err, "Failed to load profile.")
	}
	if err := s.deps.Store.SetProfile(ctx, *u); err != nil {
		s.deps.Log.Warn(ctx, "failed to cache profile", "error", err)
	}
	return u, nil
}

func validateProfile(in models.ProfileUpdate) error {
	fe := FieldErrors{}
	if strings.TrimSpace(in.Name) == "" {
		fe["name"] = "Name is required"
	}
	username := strings.TrimSpace(in.Username)
	switch {
	case username == "":
		fe["username"] = "Username is required"
	case len([]rune(username)) < 3:
		fe["username"] = "Username must be at least 3 characters"
	}
	return fe.err()
}

// UpdateProfile saves name, username and an optional picture, and caches
// the result.
func (s *AccountService) UpdateProfile(ctx context.Context, in models.ProfileUpdate) (*models.User, error) {
	if err := validateProfile(in); err != nil {
		return nil, err
	}
	if ok, err := s.deps.signedIn(ctx); err != nil || !ok {
		return nil, ErrLoginRequired
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)

	updated, err := s.deps.API.UpdateProfile(ctx, in)
	if err != nil {
		return nil, s.deps.fail(ctx, err, "Failed to save profile.")
	}

	merged := *updated
	if cached, err := s.deps.Store.Profile(ctx); err == nil && cached != nil {
		merged = mergeProfile(*cached, *updated)
	}
	if err := s.deps.Store.SetProfile(ctx, merged); err != nil {
		s.deps.Log.Warn(ctx, "failed to cache profile", "error", err)
	}

	s.deps.toast(msgProfileSaved)
	s.deps.Bus.Publish(events.LoginChanged{})
	return &merged, nil
}

// mergeProfile overlays the non-empty fields of next onto prev.
func mergeProfile(prev, next models.User) models.User {
	out := prev
	if next.ID != 0 {
		out.ID = next.ID
	}
	if next.Name != "" {
		out.Name = next.Name
	}
	if next.Username != "" {
		out.Username = next.Username
	}
	if next.Email != "" {
		out.Email = next.Email
	}
	if next.ProfilePic != "" {
		out.ProfilePic = next.ProfilePic
	}
	if next.Role != "" {
		out.Role = next.Role
	}
	return out
}
