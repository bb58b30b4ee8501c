package models

import "github.com/dmitrijs2005/hhblog/internal/common"

// User is the profile returned by /auth/get-user and cached locally.
type User struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	ProfilePic string `json:"profile_pic,omitempty"`
	Role       string `json:"role"`
}

func (u *User) UnmarshalJSON(b []byte) error {
	f, err := decodeFields(b)
	if err != nil {
		return err
	}
	*u = User{
		Name:       f.str("name"),
		Username:   f.str("username"),
		Email:      f.str("email"),
		ProfilePic: f.str("profile_pic", "profileImage", "avatar"),
		Role:       f.str("role"),
	}
	u.ID, _ = f.num("id")
	return nil
}

func (u User) IsAdmin() bool {
	return u.Role == common.RoleAdmin
}

// DisplayName prefers the full name, then the username.
func (u User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return u.Username
	default:
		return "User"
	}
}

// ProfileUpdate is the body of PUT /users/profile.
type ProfileUpdate struct {
	Name      string
	Username  string
	Image     []byte
	ImageName string
}

// SignupRequest is the body of POST /auth/register.
type SignupRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
