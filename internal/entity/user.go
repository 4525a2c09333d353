package entity

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"size:255;not null" json:"-"`
	ProfilePicture *string   `gorm:"type:text" json:"profile_picture"`
	Roles          Role      `gorm:"size:20;not null;default:user" json:"roles"`
	RefreshToken   *string   `gorm:"size:128" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Roles == RoleAdmin
}

// UserView is the public projection of a user.
type UserView struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ProfilePicture *string   `json:"profile_picture"`
	Roles          Role      `json:"roles"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (u *User) View() UserView {
	return UserView{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		Roles:          u.Roles,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// AuthorView is the projection of a user embedded in recipes, comments and ratings.
type AuthorView struct {
	ID             uint    `json:"id"`
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

func (u *User) Author() *AuthorView {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &AuthorView{ID: u.ID, Username: u.Username, ProfilePicture: u.ProfilePicture}
}
