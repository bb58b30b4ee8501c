package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/hhblog/internal/client/models"
	"github.com/dmitrijs2005/hhblog/internal/netx"
)

// Session is the result of a login or registration. Token is empty when the
// server accepted the request without issuing a credential.
type Session struct {
	Token string
	User  *models.User
}

type sessionResponse struct {
	AccessToken string          `json:"access_token"`
	Token       string          `json:"token"`
	CamelToken  string          `json:"accessToken"`
	User        json.RawMessage `json:"user"`
	Data        *struct {
		AccessToken string `json:"access_token"`
		Token       string `json:"token"`
	} `json:"data"`
}

func decodeSession(body []byte) (*Session, error) {
	var r sessionResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, err
		}
	}

	s := &Session{}
	for _, t := range []string{r.AccessToken, r.Token, r.CamelToken} {
		if t != "" {
			s.Token = t
			break
		}
	}
	if s.Token == "" && r.Data != nil {
		s.Token = r.Data.AccessToken
		if s.Token == "" {
			s.Token = r.Data.Token
		}
	}
	if len(r.User) > 0 && r.User[0] == '{' {
		var u models.User
		if err := json.Unmarshal(r.User, &u); err == nil {
			s.User = &u
		}
	}
	return s, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*Session, error) {
	body, err := c.doJSON(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return decodeSession(body)
}

func (c *HTTPClient) Register(ctx context.Context, req models.SignupRequest) (*Session, error) {
	body, err := c.doJSON(ctx, http.MethodPost, "/auth/register", req)
	if err != nil {
		return nil, err
	}
	return decodeSession(body)
}

func (c *HTTPClient) GetUser(ctx context.Context) (*models.User, error) {
	body, err := c.do(ctx, http.MethodGet, "/auth/get-user", nil, "")
	if err != nil {
		return nil, err
	}
	return decodeObject[models.User](body, "user")
}

func (c *HTTPClient) ResetPassword(ctx context.Context, oldPassword, newPassword string) error {
	_, err := c.doJSON(ctx, http.MethodPut, "/auth/reset-password", map[string]string{
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	})
	return err
}

// UpdateProfile sends a multipart form; the image part is omitted when
// in.Image is empty. The server's echo of the profile is returned, or a
// profile built from the input when the response carries none.
func (c *HTTPClient) UpdateProfile(ctx context.Context, in models.ProfileUpdate) (*models.User, error) {
	form, contentType, err := netx.Multipart(
		map[string]string{"name": in.Name, "username": in.Username},
		netx.File{Field: "imageFile", Filename: in.ImageName, Data: in.Image},
	)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodPut, "/users/profile", form, contentType)
	if err != nil {
		return nil, err
	}

	u, err := decodeObject[models.User](body, "user")
	if err != nil || (u.Name == "" && u.Username == "") {
		return &models.User{Name: in.Name, Username: in.Username}, nil
	}
	return u, nil
}

func (c *HTTPClient) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil, "")
	return err
}
