package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/hhblog/internal/client/events"
	"github.com/dmitrijs2005/hhblog/internal/client/models"
	"github.com/dmitrijs2005/hhblog/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_StoresSessionAndAnnounces(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.handle(http.MethodPost, "/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "ann@example.com", in["email"])
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "abc"})
	})

	logins := 0
	events.Subscribe(e.bus, func(events.LoginChanged) { logins++ })

	require.NoError(t, NewAuthService(e.deps).Login(ctx, " ann@example.com ", "secret"))

	token, ok, err := e.store.Session(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)
	assert.Equal(t, 1, logins)
}

func TestLogin_NoToken(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.reply(http.MethodPost, "/auth/login", http.StatusOK, map[string]string{"message": "ok"})

	err := NewAuthService(e.deps).Login(ctx, "ann@example.com", "secret")
	require.Error(t, err)
	assert.Equal(t, "Login successful but no token received. Please try again.", UserMessage(err))

	_, ok, err := e.store.Session(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogin_ServerMessageVerbatim(t *testing.T) {
	e := newEnv(t)
	e.reply(http.MethodPost, "/auth/login", http.StatusBadRequest, map[string]string{"error": "Invalid email or password"})

	err := NewAuthService(e.deps).Login(context.Background(), "ann@example.com", "wrong")
	assert.Equal(t, "Invalid email or password", UserMessage(err))
}

func TestLogin_Validation(t *testing.T) {
	e := newEnv(t)

	err := NewAuthService(e.deps).Login(context.Background(), "not-an-email", "")
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Email must be a valid email", fe["email"])
	assert.Equal(t, "Password is required", fe["password"])
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.Equal(t, 0, e.count("POST /auth/login"))
}

func TestAdminLogin(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		wantErr string
		stored  bool
	}{
		{"admin", "admin", "", true},
		{"member", "user", "Only administrators can log in here.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			e := newEnv(t)
			e.reply(http.MethodPost, "/auth/login", http.StatusOK, map[string]string{"access_token": "abc"})
			e.handle(http.MethodGet, "/auth/get-user", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
				writeJSON(w, http.StatusOK, map[string]any{"id": 1, "username": "ann", "role": tt.role})
			})

			logins := 0
			events.Subscribe(e.bus, func(events.LoginChanged) { logins++ })

			err := NewAuthService(e.deps).AdminLogin(ctx, "ann@example.com", "secret")
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, UserMessage(err))
			} else {
				require.NoError(t, err)
			}

			_, ok, err := e.store.Session(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.stored, ok)
			assert.Equal(t, 1, logins)
		})
	}
}

func TestSignup_Validation(t *testing.T) {
	e := newEnv(t)

	err := NewAuthService(e.deps).Signup(context.Background(), models.SignupRequest{
		Username: "ab",
		Email:    "x@y",
		Password: "12345",
	})

	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, FieldErrors{
		"name":     "Name is required",
		"username": "Username must be at least 3 characters",
		"email":    "Email must be a valid email",
		"password": "Password must be at least 6 characters",
	}, fe)
	assert.Equal(t, 0, e.count("POST /auth/register"))
}

func TestSignup_LogsInWithReturnedToken(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.reply(http.MethodPost, "/auth/register", http.StatusCreated, map[string]any{
		"token": "fresh",
		"user":  map[string]any{"id": 5, "name": "Ann", "username": "ann"},
	})

	err := NewAuthService(e.deps).Signup(ctx, models.SignupRequest{
		Name: "Ann", Username: "ann", Email: "ann@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	token, ok, err := e.store.Session(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fresh", token)

	p, err := e.store.Profile(ctx)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 5, p.ID)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.login(t)
	require.NoError(t, e.store.SetProfile(ctx, models.User{ID: 1}))

	logins := 0
	events.Subscribe(e.bus, func(events.LoginChanged) { logins++ })

	require.NoError(t, NewAuthService(e.deps).Logout(ctx))

	_, ok, err := e.store.Session(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	p, err := e.store.Profile(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, 1, logins)
}
