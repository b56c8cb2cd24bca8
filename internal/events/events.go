package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "quiz-service"
	EventVersion = "1.0"

	DefaultTopic = "quiz.events"
)

type EventType string

const (
	EventAttemptSubmitted EventType = "attempt.submitted"
)

// Event is the envelope of everything the service publishes
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with a fresh id and the current UTC time
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// AttemptSubmittedData is published once per recorded attempt
type AttemptSubmittedData struct {
	AttemptID      uint      `json:"attempt_id"`
	UserID         uint      `json:"user_id"`
	QuizID         uint      `json:"quiz_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
