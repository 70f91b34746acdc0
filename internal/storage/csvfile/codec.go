package csvfile

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskscore/internal/models"
	"taskscore/internal/storage"
)

const header = "Id,Title,Description,IsCompleted,Status,Priority,CreatedAt"

const fieldCount = 7

const (
	trueToken  = "True"
	falseToken = "False"
)

// DecodeError reports a line of the task file that could not be parsed.
// It matches storage.ErrMalformedRecord.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == storage.ErrMalformedRecord
}

func encode(tasks []models.Task) []byte {
	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteByte('\n')
	for _, t := range tasks {
		buf.WriteString(encodeTask(t))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func encodeTask(t models.Task) string {
	description := ""
	if t.Description != nil {
		description = escape(*t.Description)
	}
	completed := falseToken
	if t.IsCompleted {
		completed = trueToken
	}
	return strings.Join([]string{
		strconv.FormatInt(t.ID, 10),
		escape(t.Title),
		description,
		completed,
		t.Status,
		strconv.Itoa(t.Priority),
		t.CreatedAt.Format(time.RFC3339Nano),
	}, ",")
}

// decode parses a whole task file. The first line is the header and is
// skipped; blank lines are ignored. Any bad line fails the whole decode.
func decode(data []byte) ([]models.Task, error) {
	lines := strings.Split(string(data), "\n")
	tasks := make([]models.Task, 0, len(lines)-1)
	for i, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		t, err := decodeTask(line)
		if err != nil {
			return nil, &DecodeError{Line: i + 2, Err: err}
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func decodeTask(line string) (models.Task, error) {
	parts := strings.Split(line, ",")
	if len(parts) != fieldCount {
		return models.Task{}, fmt.Errorf("expected %d fields, got %d", fieldCount, len(parts))
	}

	id, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return models.Task{}, fmt.Errorf("parse id: %w", err)
	}
	completed, err := parseBool(parts[3])
	if err != nil {
		return models.Task{}, err
	}
	priority, err := strconv.Atoi(strings.TrimSpace(parts[5]))
	if err != nil {
		return models.Task{}, fmt.Errorf("parse priority: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(parts[6]))
	if err != nil {
		return models.Task{}, fmt.Errorf("parse created at: %w", err)
	}

	t := models.Task{
		ID:          id,
		Title:       unescape(parts[1]),
		IsCompleted: completed,
		Status:      parts[4],
		Priority:    priority,
		CreatedAt:   createdAt,
	}
	// An empty field is an absent description, never an empty one.
	if parts[2] != "" {
		t.Description = models.StringPtr(unescape(parts[2]))
	}
	return t, nil
}

func parseBool(v string) (bool, error) {
	v = strings.TrimSpace(v)
	switch {
	case strings.EqualFold(v, trueToken):
		return true, nil
	case strings.EqualFold(v, falseToken):
		return false, nil
	default:
		return false, errors.New("parse is completed: invalid boolean " + strconv.Quote(v))
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}

func unescape(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}
