// Package scoring derives the urgency score of a task.
//
// The score is the sum of a priority component and a status component,
// clamped at zero. The priority component compares status with exact case
// while the status component folds case first; both comparisons are kept
// separate on purpose because merging them changes observable scores.
package scoring

import (
	"strings"
	"time"
	"unicode/utf8"

	"taskscore/internal/models"
)

const (
	day = 24 * time.Hour

	// mediumAgeThreshold is the age after which an in-progress priority 2
	// task earns its bonus.
	mediumAgeThreshold = 7 * day
	// staleAgeThreshold is the age after which a pending task is considered stale.
	staleAgeThreshold = 14 * day

	longWordLength = 10
)

// Score returns the urgency score of t evaluated at now. It never fails and
// never returns a negative value.
func Score(t models.Task, now time.Time) int {
	p := priorityScore(t, now)
	s := statusScore(t, now)
	return max(0, p+s)
}

// PriorityScore exposes the priority component of the score.
func PriorityScore(t models.Task, now time.Time) int {
	return priorityScore(t, now)
}

// StatusScore exposes the status component of the score. It may be negative.
func StatusScore(t models.Task, now time.Time) int {
	return statusScore(t, now)
}

func priorityScore(t models.Task, now time.Time) int {
	switch {
	case t.Priority <= 0:
		return 1
	case t.Priority == 1:
		return highPriorityScore(t)
	case t.Priority == 2:
		return mediumPriorityScore(t, now)
	default:
		return 1
	}
}

func highPriorityScore(t models.Task) int {
	score := 10
	if statusEquals(t, models.StatusPending) {
		score += 3
	}
	return score
}

func mediumPriorityScore(t models.Task, now time.Time) int {
	score := 5
	if statusEquals(t, models.StatusInProgress) && !t.IsCompleted {
		score += 2
		if age(t, now) > mediumAgeThreshold {
			score += 3
		}
	}
	return score
}

func statusScore(t models.Task, now time.Time) int {
	switch statusFolded(t) {
	case models.StatusPending:
		return pendingScore(t, now)
	case models.StatusInProgress:
		return inProgressScore(t)
	default:
		if !t.IsCompleted && t.Priority < 3 {
			return 3
		}
		return 0
	}
}

func pendingScore(t models.Task, now time.Time) int {
	if age(t, now) <= staleAgeThreshold {
		return 0
	}
	// Recomputed rather than passed in from Score.
	score := priorityScore(t, now) * 2
	if t.Priority < 3 {
		score += 5
	}
	return score
}

func inProgressScore(t models.Task) int {
	if t.IsCompleted {
		return -5
	}
	score := 0
	for _, word := range strings.Split(t.Title, " ") {
		if utf8.RuneCountInString(word) > longWordLength {
			score++
		}
	}
	return score
}

// statusEquals compares the task status with exact case.
func statusEquals(t models.Task, status string) bool {
	return t.Status == status
}

// statusFolded returns the task status lowered for case-insensitive matching.
func statusFolded(t models.Task) string {
	return strings.ToLower(t.Status)
}

func age(t models.Task, now time.Time) time.Duration {
	return now.Sub(t.CreatedAt)
}
