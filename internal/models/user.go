package models

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	Username      string          `json:"username" gorm:"uniqueIndex;not null;size:80" validate:"required,not_blank,max=80"`
	Email         string          `json:"email" gorm:"uniqueIndex;not null;size:120" validate:"required,email,max=120"`
	FullName      *string         `json:"full_name" gorm:"size:100"`
	Qualification *string         `json:"qualification" gorm:"size:100"`
	DateOfBirth   *datatypes.Date `json:"date_of_birth"`
	IsAdmin       bool            `json:"is_admin" gorm:"default:false;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Attempts []Attempt `json:"attempts,omitempty" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName returns the full name when set, otherwise the username.
func (u *User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Username
}
