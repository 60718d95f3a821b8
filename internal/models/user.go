package models

import (
	"time"
)

// ReservedUsername cannot be registered because /users/me is a route.
const ReservedUsername = "me"

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
	Email        string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName    string    `gorm:"size:150" json:"first_name"`
	LastName     string    `gorm:"size:150" json:"last_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"-"`

	Recipes []Recipe `gorm:"foreignKey:AuthorID" json:"-"`
}
