package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskscore/internal/models"
	"taskscore/internal/storage"
	"taskscore/internal/storage/storagetest"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func TestStore_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.TaskStore {
		return openTemp(t)
	})
}

func TestOpen_WritesHeaderForNewFile(t *testing.T) {
	s := openTemp(t)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, header+"\n", string(data))
	assert.Equal(t, FileName, filepath.Base(s.Path()))
}

func TestOpen_RejectsEmptyBaseDir(t *testing.T) {
	_, err := Open("  ", nil)
	assert.Error(t, err)
}

func TestStore_FirstIDIsOneForEmptyFile(t *testing.T) {
	s := openTemp(t)

	task := models.NewTask("first")
	require.NoError(t, s.Create(context.Background(), &task))
	assert.Equal(t, int64(1), task.ID)
}

func TestOpen_SeedsIDFromMaxExisting(t *testing.T) {
	dir := t.TempDir()
	content := header + "\n" +
		"4,Alpha,,False,pending,3,2024-01-02T03:04:05Z\n" +
		"9,Beta,desc,True,done,1,2024-01-02T03:04:05.1234567Z\n" +
		"2,Gamma,,False,pending,2,2024-01-02T03:04:05+02:00\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	s, err := Open(dir, nil)
	require.NoError(t, err)

	task := models.NewTask("next")
	require.NoError(t, s.Create(context.Background(), &task))
	assert.Equal(t, int64(10), task.ID)

	tasks, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 4)
}

func TestStore_FileLayout(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	createdAt := time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.UTC)
	task := models.Task{
		Title:       `Say "hi"`,
		Description: models.StringPtr("greet"),
		IsCompleted: true,
		Priority:    1,
		Status:      models.StatusInProgress,
		CreatedAt:   createdAt,
	}
	require.NoError(t, s.Create(ctx, &task))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, header, lines[0])
	assert.Equal(t, `1,Say ""hi"",greet,True,in-progress,1,2024-05-06T07:08:09.123456789Z`, lines[1])

	got, found, err := s.Get(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `Say "hi"`, got.Title)
	assert.True(t, createdAt.Equal(got.CreatedAt))
}

func TestStore_QuotesStableAcrossRewrites(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	task := models.NewTask(`a "quoted" title`)
	require.NoError(t, s.Create(ctx, &task))

	other := models.NewTask("other")
	require.NoError(t, s.Create(ctx, &other))
	_, err := s.Delete(ctx, other.ID)
	require.NoError(t, err)

	got, found, err := s.Get(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `a "quoted" title`, got.Title)
}

func TestStore_TimezoneOffsetRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	zone := time.FixedZone("plus5", 5*60*60)
	task := models.NewTask("zoned")
	task.CreatedAt = time.Date(2023, 12, 31, 23, 59, 59, 0, zone)
	require.NoError(t, s.Create(ctx, &task))

	got, _, err := s.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, task.CreatedAt.Equal(got.CreatedAt))
	_, offset := got.CreatedAt.Zone()
	assert.Equal(t, 5*60*60, offset)
}

func TestStore_CommaInTitleCorruptsRow(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	task := models.NewTask("milk, eggs")
	require.NoError(t, s.Create(ctx, &task))

	_, err := s.List(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrMalformedRecord))

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, 2, decodeErr.Line)
}

func TestStore_MalformedLineFailsReadsAndWrites(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"bad id", "x,Title,,False,pending,3,2024-01-02T03:04:05Z"},
		{"bad bool", "1,Title,,maybe,pending,3,2024-01-02T03:04:05Z"},
		{"bad priority", "1,Title,,False,pending,high,2024-01-02T03:04:05Z"},
		{"bad time", "1,Title,,False,pending,3,yesterday"},
		{"too few fields", "1,Title,,False"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openTemp(t)
			ctx := context.Background()
			require.NoError(t, os.WriteFile(s.Path(), []byte(header+"\n"+tt.line+"\n"), 0o644))

			_, err := s.List(ctx)
			assert.ErrorIs(t, err, storage.ErrMalformedRecord)

			_, _, err = s.Get(ctx, 1)
			assert.ErrorIs(t, err, storage.ErrMalformedRecord)

			task := models.NewTask("new")
			assert.ErrorIs(t, s.Create(ctx, &task), storage.ErrMalformedRecord)
		})
	}
}

func TestOpen_MalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(header+"\nnot,a,task\n"), 0o644))

	_, err := Open(dir, nil)
	assert.ErrorIs(t, err, storage.ErrMalformedRecord)
}

func TestStore_MissingFileSurfacesError(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, os.Remove(s.Path()))

	_, err := s.List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, storage.ErrMalformedRecord)
}

func TestStore_BlankLinesAndCRLFIgnored(t *testing.T) {
	s := openTemp(t)
	content := header + "\r\n" +
		"3,Alpha,,False,pending,3,2024-01-02T03:04:05Z\r\n" +
		"\r\n" +
		"   \n"
	require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o644))

	tasks, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "pending", tasks[0].Status)
	assert.Nil(t, tasks[0].Description)
}

func TestStore_StatePersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := Open(dir, nil)
	require.NoError(t, err)
	a := models.NewTask("a")
	b := models.NewTask("b")
	require.NoError(t, first.Create(ctx, &a))
	require.NoError(t, first.Create(ctx, &b))
	_, err = first.Delete(ctx, b.ID)
	require.NoError(t, err)

	second, err := Open(dir, nil)
	require.NoError(t, err)
	c := models.NewTask("c")
	require.NoError(t, second.Create(ctx, &c))

	// Seeding uses the max id on disk, so a deleted tail id is handed out again.
	assert.Equal(t, a.ID+1, c.ID)

	got, found, err := second.Get(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "a", got.Title)
}
