package scoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"taskscore/internal/models"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func taskAged(days float64, priority int, status string) models.Task {
	t := models.NewTask("Task")
	t.Priority = priority
	t.Status = status
	t.CreatedAt = now.Add(-time.Duration(days * float64(day)))
	return t
}

func TestScore_Examples(t *testing.T) {
	tests := []struct {
		name string
		task models.Task
		want int
	}{
		{
			name: "medium priority pending stale",
			task: taskAged(15, 2, "pending"),
			want: 20,
		},
		{
			name: "high priority pending stale",
			task: taskAged(20, 1, "pending"),
			want: 44,
		},
		{
			name: "low priority in progress with long words",
			task: func() models.Task {
				task := taskAged(0, 3, "in-progress")
				task.Title = "VeryLongWord AnotherLongWord ThirdLongWordHere"
				return task
			}(),
			want: 4,
		},
		{
			name: "medium priority in progress completed is clamped",
			task: func() models.Task {
				task := taskAged(0, 2, "in-progress")
				task.IsCompleted = true
				return task
			}(),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.task, now))
		})
	}
}

func TestPriorityScore_NonPositivePriority(t *testing.T) {
	for _, priority := range []int{0, -1, -100} {
		for _, status := range []string{"pending", "in-progress", "done", ""} {
			task := taskAged(30, priority, status)
			assert.Equal(t, 1, PriorityScore(task, now), "priority=%d status=%q", priority, status)
		}
	}
}

func TestPriorityScore_HighPriorityIsCaseSensitive(t *testing.T) {
	tests := []struct {
		status string
		want   int
	}{
		{"pending", 13},
		{"Pending", 10},
		{"PENDING", 10},
		{"in-progress", 10},
		{"", 10},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, PriorityScore(taskAged(1, 1, tt.status), now))
		})
	}
}

func TestPriorityScore_MediumPriority(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		completed bool
		ageDays   float64
		want      int
	}{
		{"in progress fresh", "in-progress", false, 3, 7},
		{"in progress exactly seven days", "in-progress", false, 7, 7},
		{"in progress older than seven days", "in-progress", false, 7.5, 10},
		{"in progress completed", "in-progress", true, 30, 5},
		{"in progress wrong case", "In-Progress", false, 30, 5},
		{"pending", "pending", false, 30, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := taskAged(tt.ageDays, 2, tt.status)
			task.IsCompleted = tt.completed
			assert.Equal(t, tt.want, PriorityScore(task, now))
		})
	}
}

func TestPriorityScore_OtherPriorities(t *testing.T) {
	for _, priority := range []int{3, 4, 99} {
		assert.Equal(t, 1, PriorityScore(taskAged(0, priority, "pending"), now))
	}
}

func TestStatusScore_FreshPendingIsZero(t *testing.T) {
	for _, status := range []string{"pending", "PENDING", "Pending"} {
		for _, priority := range []int{-1, 1, 2, 3, 7} {
			task := taskAged(14, priority, status)
			task.Title = "Extraordinarily verbose"
			assert.Equal(t, 0, StatusScore(task, now), "status=%q priority=%d", status, priority)
		}
	}
}

func TestStatusScore_StalePending(t *testing.T) {
	tests := []struct {
		name     string
		priority int
		status   string
		want     int
	}{
		// Priority component for "Pending" is 10, not 13, since that check is case-sensitive.
		{"high priority folded status", 1, "Pending", 25},
		{"low priority", 3, "pending", 2},
		{"non-positive priority", 0, "pending", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusScore(taskAged(15, tt.priority, tt.status), now))
		})
	}
}

func TestStatusScore_InProgressCompletedIsNegative(t *testing.T) {
	for _, status := range []string{"in-progress", "IN-PROGRESS"} {
		task := taskAged(0, 3, status)
		task.IsCompleted = true
		assert.Equal(t, -5, StatusScore(task, now))
		assert.Equal(t, 0, Score(task, now))
	}
}

func TestStatusScore_LongWordBoundary(t *testing.T) {
	tests := []struct {
		title string
		want  int
	}{
		{"abcdefghij", 0},
		{"abcdefghijk", 1},
		{"abcdefghij abcdefghijk", 1},
		{"short words only", 0},
		{"", 0},
		{"abcdefghijk  abcdefghijk", 2},
		{"ééééééééééé", 1},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			task := taskAged(0, 3, "in-progress")
			task.Title = tt.title
			assert.Equal(t, tt.want, StatusScore(task, now))
		})
	}
}

func TestStatusScore_OtherStatus(t *testing.T) {
	tests := []struct {
		status    string
		priority  int
		completed bool
		want      int
	}{
		{"done", 1, false, 3},
		{"", 2, false, 3},
		{"blocked", 0, false, 3},
		{"done", 1, true, 0},
		{"done", 3, false, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d/%t", tt.status, tt.priority, tt.completed), func(t *testing.T) {
			task := taskAged(0, tt.priority, tt.status)
			task.IsCompleted = tt.completed
			assert.Equal(t, tt.want, StatusScore(task, now))
		})
	}
}

func TestScore_NeverNegative(t *testing.T) {
	statuses := []string{"pending", "in-progress", "IN-PROGRESS", "done", ""}
	for priority := -3; priority <= 6; priority++ {
		for _, status := range statuses {
			for _, completed := range []bool{false, true} {
				for _, ageDays := range []float64{0, 8, 15, 400} {
					task := taskAged(ageDays, priority, status)
					task.IsCompleted = completed
					assert.GreaterOrEqual(t, Score(task, now), 0)
				}
			}
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	task := taskAged(20, 1, "pending")
	assert.Equal(t, Score(task, now), Score(task, now))
}
