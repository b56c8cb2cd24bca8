package services

import (
	"sort"
	"strconv"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

// The functions in this file derive read-only statistics from a report
// snapshot. None of them touch storage.

const (
	recentAttemptsLimit = 5
	recentUsersLimit    = 5
	unknownLabel        = "Unknown"
	dateLayout          = "2006-01-02"
)

// ScoreRange is an inclusive histogram bucket
type ScoreRange struct {
	Min int
	Max int
}

// ScoreRanges are the fixed histogram buckets. Scores outside 0..100 fall in none.
var ScoreRanges = []ScoreRange{
	{Min: 0, Max: 20},
	{Min: 21, Max: 40},
	{Min: 41, Max: 60},
	{Min: 61, Max: 80},
	{Min: 81, Max: 100},
}

type UserSummary struct {
	UserID           uint    `json:"user_id"`
	AttemptCount     int     `json:"attempt_count"`
	AverageScore     float64 `json:"average_score"`
	AttemptedQuizIDs []uint  `json:"attempted_quiz_ids"`
}

type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	DisplayName  string `json:"display_name"`
	TotalScore   int    `json:"total_score"`
	AttemptCount int    `json:"attempt_count"`
}

type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type RangeCount struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}

type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type SubjectStat struct {
	SubjectID    uint   `json:"subject_id"`
	SubjectName  string `json:"subject_name"`
	MaxScore     int    `json:"max_score"`
	AttemptCount int    `json:"attempt_count"`
}

type QuizStat struct {
	QuizID         uint    `json:"quiz_id"`
	QuizName       string  `json:"quiz_name"`
	AttemptCount   int     `json:"attempt_count"`
	AverageScore   float64 `json:"average_score"`
	CompletionRate float64 `json:"completion_rate"`
}

type AdminTotals struct {
	TotalUsers          int     `json:"total_users"`
	TotalSubjects       int     `json:"total_subjects"`
	TotalQuestions      int     `json:"total_questions"`
	TotalQuizzes        int     `json:"total_quizzes"`
	TotalAttempts       int     `json:"total_attempts"`
	AverageScorePercent float64 `json:"average_score_percent"`
}

type RecentAttempt struct {
	AttemptID uint      `json:"attempt_id"`
	UserName  string    `json:"user_name"`
	QuizName  string    `json:"quiz_name"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

type RecentUser struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// SummarizeUser computes the attempt count, the mean score (0 without
// attempts) and the distinct quiz ids the user attempted, in first-attempt order.
func SummarizeUser(userID uint, attempts []*models.Attempt) UserSummary {
	summary := UserSummary{UserID: userID, AttemptedQuizIDs: []uint{}}

	seen := make(map[uint]struct{})
	total := 0
	for _, attempt := range attempts {
		if attempt.UserID != userID {
			continue
		}
		summary.AttemptCount++
		total += attempt.TotalScored
		if _, ok := seen[attempt.QuizID]; !ok {
			seen[attempt.QuizID] = struct{}{}
			summary.AttemptedQuizIDs = append(summary.AttemptedQuizIDs, attempt.QuizID)
		}
	}

	if summary.AttemptCount > 0 {
		summary.AverageScore = float64(total) / float64(summary.AttemptCount)
	}
	return summary
}

// UpcomingQuizzes returns scheduled quizzes dated at or after now that the
// user has not attempted, ordered by quiz id.
func UpcomingQuizzes(quizzes []*models.Quiz, attemptedQuizIDs []uint, now time.Time) []*models.Quiz {
	attempted := make(map[uint]struct{}, len(attemptedQuizIDs))
	for _, id := range attemptedQuizIDs {
		attempted[id] = struct{}{}
	}

	upcoming := make([]*models.Quiz, 0)
	for _, quiz := range quizzes {
		if quiz.ScheduledAt == nil || quiz.ScheduledAt.Before(now) {
			continue
		}
		if _, ok := attempted[quiz.ID]; ok {
			continue
		}
		upcoming = append(upcoming, quiz)
	}

	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].ID < upcoming[j].ID })
	return upcoming
}

// Leaderboard ranks non-admin users by the sum of their scores, highest first.
// Users with equal totals keep their input order.
func Leaderboard(users []*models.User, attempts []*models.Attempt) []LeaderboardEntry {
	totals := make(map[uint]int)
	counts := make(map[uint]int)
	for _, attempt := range attempts {
		totals[attempt.UserID] += attempt.TotalScored
		counts[attempt.UserID]++
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, user := range users {
		if user.IsAdmin {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			UserID:       user.ID,
			Username:     user.Username,
			DisplayName:  user.DisplayName(),
			TotalScore:   totals[user.ID],
			AttemptCount: counts[user.ID],
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalScore > entries[j].TotalScore
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// AttemptsByDate counts attempts per UTC calendar day, oldest day first
func AttemptsByDate(attempts []*models.Attempt) []DateCount {
	counts := make(map[string]int)
	for _, attempt := range attempts {
		counts[attempt.Timestamp.UTC().Format(dateLayout)]++
	}

	series := make([]DateCount, 0, len(counts))
	for date, count := range counts {
		series = append(series, DateCount{Date: date, Count: count})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}

// ScoreHistogram counts attempts per fixed score range
func ScoreHistogram(attempts []*models.Attempt) []RangeCount {
	histogram := make([]RangeCount, len(ScoreRanges))
	for i, r := range ScoreRanges {
		histogram[i] = RangeCount{Label: r.label(), Min: r.Min, Max: r.Max}
	}

	for _, attempt := range attempts {
		for i, r := range ScoreRanges {
			if attempt.TotalScored >= r.Min && attempt.TotalScored <= r.Max {
				histogram[i].Count++
				break
			}
		}
	}
	return histogram
}

func (r ScoreRange) label() string {
	return strconv.Itoa(r.Min) + "-" + strconv.Itoa(r.Max)
}

// SubjectPerformance reports, per subject, the best score and the attempt
// count over the quizzes of its chapters.
func SubjectPerformance(snapshot *repositories.ReportSnapshot) []SubjectStat {
	subjectOfQuiz := quizSubjectIDs(snapshot)

	stats := make([]SubjectStat, len(snapshot.Subjects))
	index := make(map[uint]int, len(snapshot.Subjects))
	for i, subject := range snapshot.Subjects {
		stats[i] = SubjectStat{SubjectID: subject.ID, SubjectName: subject.Name}
		index[subject.ID] = i
	}

	for _, attempt := range snapshot.Attempts {
		subjectID, ok := subjectOfQuiz[attempt.QuizID]
		if !ok {
			continue
		}
		i, ok := index[subjectID]
		if !ok {
			continue
		}
		if stats[i].AttemptCount == 0 || attempt.TotalScored > stats[i].MaxScore {
			stats[i].MaxScore = attempt.TotalScored
		}
		stats[i].AttemptCount++
	}
	return stats
}

// QuizPerformance reports the mean score and completion rate of every quiz.
// The completion denominator is every user except the admin; when it is not
// positive, or the quiz has no attempts, the rate is 0.
func QuizPerformance(quizzes []*models.Quiz, attempts []*models.Attempt, totalUsers int) []QuizStat {
	totals := make(map[uint]int)
	counts := make(map[uint]int)
	for _, attempt := range attempts {
		totals[attempt.QuizID] += attempt.TotalScored
		counts[attempt.QuizID]++
	}

	eligible := totalUsers - 1

	stats := make([]QuizStat, 0, len(quizzes))
	for _, quiz := range quizzes {
		stat := QuizStat{QuizID: quiz.ID, QuizName: quiz.Name, AttemptCount: counts[quiz.ID]}
		if stat.AttemptCount > 0 {
			stat.AverageScore = float64(totals[quiz.ID]) / float64(stat.AttemptCount)
			if eligible > 0 {
				stat.CompletionRate = float64(stat.AttemptCount) / float64(eligible) * 100
			}
		}
		stats = append(stats, stat)
	}
	return stats
}

// MonthlyDistribution counts non-admin attempts by the English month name of
// the quiz's scheduled date. Attempts on unscheduled or unknown quizzes are skipped.
func MonthlyDistribution(snapshot *repositories.ReportSnapshot) []LabelCount {
	quizzes := make(map[uint]*models.Quiz, len(snapshot.Quizzes))
	for _, quiz := range snapshot.Quizzes {
		quizzes[quiz.ID] = quiz
	}

	return distribute(snapshot, func(attempt *models.Attempt) (string, bool) {
		quiz, ok := quizzes[attempt.QuizID]
		if !ok || quiz.ScheduledAt == nil {
			return "", false
		}
		return quiz.ScheduledAt.Month().String(), true
	})
}

// SubjectDistribution counts non-admin attempts by subject name, reached
// through quiz -> chapter -> subject. Broken links are skipped.
func SubjectDistribution(snapshot *repositories.ReportSnapshot) []LabelCount {
	subjectOfQuiz := quizSubjectIDs(snapshot)
	names := make(map[uint]string, len(snapshot.Subjects))
	for _, subject := range snapshot.Subjects {
		names[subject.ID] = subject.Name
	}

	return distribute(snapshot, func(attempt *models.Attempt) (string, bool) {
		subjectID, ok := subjectOfQuiz[attempt.QuizID]
		if !ok {
			return "", false
		}
		name, ok := names[subjectID]
		return name, ok
	})
}

// distribute walks non-admin users in order and each user's attempts in order,
// counting labels in first-encounter order.
func distribute(snapshot *repositories.ReportSnapshot, labelOf func(*models.Attempt) (string, bool)) []LabelCount {
	byUser := make(map[uint][]*models.Attempt)
	for _, attempt := range snapshot.Attempts {
		byUser[attempt.UserID] = append(byUser[attempt.UserID], attempt)
	}

	result := make([]LabelCount, 0)
	position := make(map[string]int)
	for _, user := range snapshot.Users {
		if user.IsAdmin {
			continue
		}
		for _, attempt := range byUser[user.ID] {
			label, ok := labelOf(attempt)
			if !ok {
				continue
			}
			i, seen := position[label]
			if !seen {
				i = len(result)
				position[label] = i
				result = append(result, LabelCount{Label: label})
			}
			result[i].Count++
		}
	}
	return result
}

// AdminOverview counts every collection and the mean score as a percentage of
// 100 points per attempt.
func AdminOverview(snapshot *repositories.ReportSnapshot) AdminTotals {
	totals := AdminTotals{
		TotalUsers:    len(snapshot.Users),
		TotalSubjects: len(snapshot.Subjects),
		TotalQuizzes:  len(snapshot.Quizzes),
		TotalAttempts: len(snapshot.Attempts),
	}

	for _, quiz := range snapshot.Quizzes {
		totals.TotalQuestions += quiz.QuestionCount
	}

	if totals.TotalAttempts > 0 {
		sum := 0
		for _, attempt := range snapshot.Attempts {
			sum += attempt.TotalScored
		}
		totals.AverageScorePercent = roundFloat(float64(sum)/float64(totals.TotalAttempts*100)*100, 2)
	}
	return totals
}

// RecentAttempts returns the latest attempts, newest first
func RecentAttempts(snapshot *repositories.ReportSnapshot, limit int) []RecentAttempt {
	users := make(map[uint]*models.User, len(snapshot.Users))
	for _, user := range snapshot.Users {
		users[user.ID] = user
	}
	quizzes := make(map[uint]*models.Quiz, len(snapshot.Quizzes))
	for _, quiz := range snapshot.Quizzes {
		quizzes[quiz.ID] = quiz
	}

	ordered := make([]*models.Attempt, len(snapshot.Attempts))
	copy(ordered, snapshot.Attempts)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].Timestamp.After(ordered[j].Timestamp)
		}
		return ordered[i].ID > ordered[j].ID
	})

	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	recent := make([]RecentAttempt, 0, len(ordered))
	for _, attempt := range ordered {
		entry := RecentAttempt{
			AttemptID: attempt.ID,
			UserName:  unknownLabel,
			QuizName:  unknownLabel,
			Score:     attempt.TotalScored,
			Timestamp: attempt.Timestamp,
		}
		if user, ok := users[attempt.UserID]; ok {
			entry.UserName = user.DisplayName()
		}
		if quiz, ok := quizzes[attempt.QuizID]; ok {
			entry.QuizName = quiz.Name
		}
		recent = append(recent, entry)
	}
	return recent
}

// RecentUsers returns the newest non-admin users, highest id first
func RecentUsers(users []*models.User, limit int) []RecentUser {
	candidates := make([]*models.User, 0, len(users))
	for _, user := range users {
		if !user.IsAdmin {
			candidates = append(candidates, user)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].ID > candidates[j].ID })

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	recent := make([]RecentUser, 0, len(candidates))
	for _, user := range candidates {
		recent = append(recent, RecentUser{
			UserID:   user.ID,
			Username: user.Username,
			FullName: user.DisplayName(),
			Email:    user.Email,
		})
	}
	return recent
}

// quizSubjectIDs maps quiz id to subject id through the chapter table
func quizSubjectIDs(snapshot *repositories.ReportSnapshot) map[uint]uint {
	chapterSubject := make(map[uint]uint, len(snapshot.Chapters))
	for _, chapter := range snapshot.Chapters {
		chapterSubject[chapter.ID] = chapter.SubjectID
	}

	quizSubject := make(map[uint]uint, len(snapshot.Quizzes))
	for _, quiz := range snapshot.Quizzes {
		if subjectID, ok := chapterSubject[quiz.ChapterID]; ok {
			quizSubject[quiz.ID] = subjectID
		}
	}
	return quizSubject
}
