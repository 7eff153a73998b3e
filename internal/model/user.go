// Package model defines database models
package model

import "time"

type Role string

const (
	RoleSeeker Role = "seeker"
	RoleOwner  Role = "owner"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:16" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"` // Always stored lower-cased
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"not null;default:seeker" json:"role"`
	Verified     bool      `gorm:"default:false" json:"isVerified"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}

// PublicUser is the projection of a User that is safe to hand to clients.
type PublicUser struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	ProfileImage string    `json:"profileImage,omitempty"`
	Verified     bool      `json:"isVerified"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         u.Role,
		ProfileImage: u.ProfileImage,
		Verified:     u.Verified,
		CreatedAt:    u.CreatedAt,
	}
}

func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}
