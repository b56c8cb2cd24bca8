package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrAttemptImmutable = errors.New("attempts cannot be modified once recorded")

// Attempt is one scored submission of a quiz by a user. Rows are insert-only.
type Attempt struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;index"`
	QuizID      uint      `json:"quiz_id" gorm:"not null;index"`
	TotalScored int       `json:"total_scored" gorm:"not null"`
	Timestamp   time.Time `json:"timestamp" gorm:"not null;index"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Quiz *Quiz `json:"quiz,omitempty" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
}

func (Attempt) TableName() string {
	return "attempts"
}

func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	return nil
}

func (a *Attempt) BeforeUpdate(tx *gorm.DB) error {
	return ErrAttemptImmutable
}

// AllModels lists every table the service owns, in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Subject{},
		&Chapter{},
		&Quiz{},
		&Question{},
		&Attempt{},
	}
}
