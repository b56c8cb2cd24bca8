package models

import "time"

const (
	MinOptionIndex = 1
	MaxOptionIndex = 4
)

type Quiz struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	Name            string     `json:"name" gorm:"not null;size:100;index" validate:"required,not_blank,max=100"`
	ChapterID       uint       `json:"chapter_id" gorm:"not null;index"`
	ScheduledAt     *time.Time `json:"scheduled_at" gorm:"index"`
	DurationMinutes int        `json:"duration_minutes" gorm:"not null;check:duration_minutes > 0" validate:"gt=0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Chapter   *Chapter   `json:"chapter,omitempty" gorm:"foreignKey:ChapterID"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`

	// Computed
	QuestionCount int `json:"question_count" gorm:"-"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Subject walks quiz -> chapter -> subject and returns nil when a link is not loaded.
func (q *Quiz) Subject() *Subject {
	if q.Chapter == nil {
		return nil
	}
	return q.Chapter.Subject
}

type Question struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	QuizID        uint   `json:"quiz_id" gorm:"not null;index"`
	Statement     string `json:"statement" gorm:"type:text;not null" validate:"required,not_blank"`
	Option1       string `json:"option1" gorm:"not null;size:200"`
	Option2       string `json:"option2" gorm:"not null;size:200"`
	Option3       string `json:"option3" gorm:"not null;size:200"`
	Option4       string `json:"option4" gorm:"not null;size:200"`
	CorrectOption int    `json:"correct_option" gorm:"not null;check:correct_option BETWEEN 1 AND 4" validate:"option_index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// Valid reports whether the correct option points at one of the four options.
func (q *Question) Valid() bool {
	return q.CorrectOption >= MinOptionIndex && q.CorrectOption <= MaxOptionIndex
}

// Options returns the four options in display order.
func (q *Question) Options() []string {
	return []string{q.Option1, q.Option2, q.Option3, q.Option4}
}
