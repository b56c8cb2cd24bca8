package services

import (
	"encoding/json"
	"strconv"
	"strings"
)

const answerKeyPrefix = "question_"

// NormalizeAnswers converts a submitted answer map into question id -> raw
// answer. Keys may be "12" or "question_12"; keys that are not positive
// integers are dropped. Values keep their textual form so that malformed
// answers reach the scorer and score as incorrect.
func NormalizeAnswers(raw map[string]interface{}) map[uint]string {
	answers := make(map[uint]string, len(raw))

	for key, value := range raw {
		id, ok := parseQuestionKey(key)
		if !ok {
			continue
		}

		text, ok := answerText(value)
		if !ok {
			continue
		}
		answers[id] = text
	}

	return answers
}

func parseQuestionKey(key string) (uint, bool) {
	key = strings.TrimPrefix(strings.TrimSpace(key), answerKeyPrefix)
	id, err := strconv.ParseUint(key, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func answerText(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

func roundFloat(val float64, precision int) float64 {
	ratio := 1.0
	for i := 0; i < precision; i++ {
		ratio *= 10
	}
	if val < 0 {
		return -float64(int64(-val*ratio+0.5)) / ratio
	}
	return float64(int64(val*ratio+0.5)) / ratio
}
