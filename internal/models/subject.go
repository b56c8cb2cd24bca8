package models

import "time"

type Subject struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null;size:100;index" validate:"required,not_blank,max=100"`
	Description *string `json:"description" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Chapters []Chapter `json:"chapters,omitempty" gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE"`
}

func (Subject) TableName() string {
	return "subjects"
}

type Chapter struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null;size:100" validate:"required,not_blank,max=100"`
	Description *string `json:"description" gorm:"type:text"`
	SubjectID   uint    `json:"subject_id" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Subject *Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Quizzes []Quiz   `json:"quizzes,omitempty" gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE"`
}

func (Chapter) TableName() string {
	return "chapters"
}
