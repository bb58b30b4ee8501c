package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/hhblog/internal/client/events"
	"github.com/dmitrijs2005/hhblog/internal/client/models"
	"github.com/dmitrijs2005/hhblog/internal/client/session"
	"github.com/dmitrijs2005/hhblog/internal/common"
)

const (
	msgNoToken  = "Login successful but no token received. Please try again."
	msgNotAdmin = "Only administrators can log in here."
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService defines the session flows of the CLI.
//
// Contract:
//   - Login / AdminLogin: exchange credentials for a token and store it
//     together with the logged-in flag.
//   - Signup: register and, when the server issues a token, log in.
//   - Logout: purge the session and the cached profile.
//   - Health: check that the API answers.
//
// Every flow that changes the session publishes events.LoginChanged.
type AuthService interface {
	Login(ctx context.Context, email, password string) error
	AdminLogin(ctx context.Context, email, password string) error
	Signup(ctx context.Context, req models.SignupRequest) error
	Logout(ctx context.Context) error
	Health(ctx context.Context) error
}

type authService struct {
	deps Deps
}

func NewAuthService(d Deps) AuthService {
	return &authService{deps: d}
}

func validateLogin(email, password string) error {
	fe := FieldErrors{}
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		fe["email"] = "Email is required"
	case !emailRe.MatchString(email):
		fe["email"] = "Email must be a valid email"
	}
	if password == "" {
		fe["password"] = "Password is required"
	}
	return fe.err()
}

// login stores a fresh session without announcing it.
func (a *authService) login(ctx context.Context, email, password string) error {
	if err := validateLogin(email, password); err != nil {
		return err
	}

	s, err := a.deps.API.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return fail(err, "Login failed. Please try again.")
	}
	if s.Token == "" {
		return &Failure{Message: msgNoToken, Err: common.ErrInvalidToken}
	}

	if err := a.deps.Store.SetSession(ctx, s.Token); err != nil {
		return err
	}
	if s.User != nil {
		if err := a.deps.Store.SetProfile(ctx, *s.User); err != nil {
			a.deps.Log.Warn(ctx, "failed to cache profile", "error", err)
		}
	}
	return nil
}

func (a *authService) Login(ctx context.Context, email, password string) error {
	if err := a.login(ctx, email, password); err != nil {
		return err
	}
	a.deps.Log.Info(ctx, "logged in")
	a.deps.Bus.Publish(events.LoginChanged{})
	return nil
}

// AdminLogin logs in and keeps the session only for administrators.
func (a *authService) AdminLogin(ctx context.Context, email, password string) error {
	if err := a.login(ctx, email, password); err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, session.GetUserTimeout)
	defer cancel()

	u, err := a.deps.API.GetUser(callCtx)
	if err != nil {
		a.deps.forceLogout(ctx)
		return fail(err, "Login failed. Please try again.")
	}
	if !u.IsAdmin() {
		a.deps.forceLogout(ctx)
		return &Failure{Message: msgNotAdmin, Err: common.ErrorUnauthorized}
	}

	if err := a.deps.Store.SetProfile(ctx, *u); err != nil {
		a.deps.Log.Warn(ctx, "failed to cache profile", "error", err)
	}
	a.deps.Log.Info(ctx, "admin logged in", "user", u.Username)
	a.deps.Bus.Publish(events.LoginChanged{})
	return nil
}

func validateSignup(req models.SignupRequest) error {
	fe := FieldErrors{}

	if strings.TrimSpace(req.Name) == "" {
		fe["name"] = "Name is required"
	}

	username := strings.TrimSpace(req.Username)
	switch {
	case username == "":
		fe["username"] = "Username is required"
	case len([]rune(username)) < 3:
		fe["username"] = "Username must be at least 3 characters"
	}

	email := strings.TrimSpace(req.Email)
	switch {
	case email == "":
		fe["email"] = "Email is required"
	case !emailRe.MatchString(email):
		fe["email"] = "Email must be a valid email"
	}

	switch {
	case req.Password == "":
		fe["password"] = "Password is required"
	case len(req.Password) < 6:
		fe["password"] = "Password must be at least 6 characters"
	}

	return fe.err()
}

func (a *authService) Signup(ctx context.Context, req models.SignupRequest) error {
	if err := validateSignup(req); err != nil {
		return err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	s, err := a.deps.API.Register(ctx, req)
	if err != nil {
		return fail(err, "Registration failed. Please try again.")
	}
	if s.Token == "" {
		return nil
	}

	if err := a.deps.Store.SetSession(ctx, s.Token); err != nil {
		return err
	}
	if s.User != nil {
		if err := a.deps.Store.SetProfile(ctx, *s.User); err != nil {
			a.deps.Log.Warn(ctx, "failed to cache profile", "error", err)
		}
	}
	a.deps.Bus.Publish(events.LoginChanged{})
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.deps.Store.ClearAuth(ctx); err != nil {
		return err
	}
	a.deps.Log.Info(ctx, "logged out")
	a.deps.Bus.Publish(events.LoginChanged{})
	return nil
}

func (a *authService) Health(ctx context.Context) error {
	return a.deps.API.Health(ctx)
}
