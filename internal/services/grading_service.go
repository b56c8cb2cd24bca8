package services

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// ScoreResult is the outcome of scoring one submission
type ScoreResult struct {
	Score          int `json:"score"`
	TotalQuestions int `json:"total_questions"`
}

// ScoreAttempt counts the questions whose submitted answer equals the correct
// option. Missing, blank, non-numeric and out-of-range answers count as
// incorrect. The result does not depend on the order of questions.
func ScoreAttempt(questions []*models.Question, answers map[uint]string) ScoreResult {
	result := ScoreResult{TotalQuestions: len(questions)}

	for _, question := range questions {
		raw, ok := answers[question.ID]
		if !ok {
			continue
		}

		selected, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			continue
		}

		if selected == question.CorrectOption {
			result.Score++
		}
	}

	return result
}

// ShuffleFunc has the signature of rand.Shuffle
type ShuffleFunc func(n int, swap func(i, j int))

// ShuffleQuestions returns a shuffled copy; the input slice is left untouched
func ShuffleQuestions(questions []*models.Question, shuffle ShuffleFunc) []*models.Question {
	shuffled := make([]*models.Question, len(questions))
	copy(shuffled, questions)

	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled
}
