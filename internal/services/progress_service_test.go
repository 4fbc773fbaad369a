package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnlockedLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		completed []int
		want      []int
	}{
		{"no history unlocks level one", nil, []int{1}},
		{"level one completed", []int{1}, []int{1, 2}},
		{"sequential progress", []int{1, 2}, []int{1, 2, 3}},
		{"gap in history", []int{2}, []int{1, 3}},
		{"orphan completion", []int{5}, []int{1, 6}},
		{"ignores non-positive numbers", []int{0, -3}, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, UnlockedLevels(tt.completed))
		})
	}
}

func TestSaveCompletion_UnknownUser(t *testing.T) {
	t.Parallel()

	svc := NewProgressService(newTestDB(t), nil)
	_, err := svc.SaveCompletion("ghost@example.com", "patent", 1, 50, 30)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserLevels_UnknownUser(t *testing.T) {
	t.Parallel()

	svc := NewProgressService(newTestDB(t), nil)
	_, err := svc.GetUserLevels("ghost@example.com", "patent")
	require.ErrorIs(t, err, ErrUserNotFound)
}

// Replaying a level appends history; it never replaces the earlier record.
func TestSaveCompletion_ReplayAccumulates(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	insertTestUser(t, db, "", "Alice", "alice@example.com")
	svc := NewProgressService(db, nil)

	_, err := svc.SaveCompletion("alice@example.com", "patent", 1, 50, 30)
	require.NoError(t, err)
	_, err = svc.SaveCompletion("alice@example.com", "patent", 1, 80, 25)
	require.NoError(t, err)

	progress, err := svc.GetUserLevels("alice@example.com", "patent")
	require.NoError(t, err)
	require.Equal(t, []int{1}, progress.CompletedLevels)
	require.Len(t, progress.CompletedLevelsData, 2)
	require.Equal(t, 50, progress.CompletedLevelsData[0].Score)
	require.Equal(t, 80, progress.CompletedLevelsData[1].Score)
}

func TestGetUserLevels_PerChapter(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	insertTestUser(t, db, "", "Alice", "alice@example.com")
	svc := NewProgressService(db, nil)

	for _, save := range []struct {
		chapter string
		level   int
	}{
		{"patent", 1},
		{"patent", 2},
		{"design", 3},
	} {
		_, err := svc.SaveCompletion("alice@example.com", save.chapter, save.level, 10, 5)
		require.NoError(t, err)
	}

	patent, err := svc.GetUserLevels("alice@example.com", "patent")
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, patent.CompletedLevels)
	require.Equal(t, []int{1, 2, 3}, patent.UnlockedLevels)

	design, err := svc.GetUserLevels("alice@example.com", "design")
	require.NoError(t, err)
	require.Equal(t, []int{3}, design.CompletedLevels)
	require.Equal(t, []int{1, 4}, design.UnlockedLevels)

	// Existing user with no records for a chapter gets an empty result,
	// not an error.
	trademark, err := svc.GetUserLevels("alice@example.com", "trademark")
	require.NoError(t, err)
	require.Empty(t, trademark.CompletedLevels)
	require.Empty(t, trademark.CompletedLevelsData)
	require.Equal(t, []int{1}, trademark.UnlockedLevels)
}
