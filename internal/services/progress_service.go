package services

import (
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ipquest/ipquest-be/internal/models"
	"github.com/ipquest/ipquest-be/internal/websocket"
)

// ProgressServiceProvider defines the interface for progress services.
type ProgressServiceProvider interface {
	SaveCompletion(email, chapter string, levelNumber, score, timeTaken int) (models.LevelRecord, error)
	GetUserLevels(email, chapter string) (models.ChapterProgress, error)
}

// ProgressService records level completions and answers unlock-state
// queries. Completions are an append-only event log: saving the same
// (chapter, level) again adds history, it never replaces anything.
type ProgressService struct {
	db  *sql.DB
	hub *websocket.Hub // may be nil when no live feed is wanted
}

// NewProgressService creates a new ProgressService.
func NewProgressService(db *sql.DB, hub *websocket.Hub) *ProgressService {
	return &ProgressService{db: db, hub: hub}
}

// SaveCompletion appends one LevelRecord for the user. The single INSERT is
// the store's atomic-append guarantee: concurrent saves for the same user
// are independent rows and neither can be lost.
func (s *ProgressService) SaveCompletion(email, chapter string, levelNumber, score, timeTaken int) (models.LevelRecord, error) {
	userID, name, err := s.resolveUser(email)
	if err != nil {
		return models.LevelRecord{}, err
	}

	record := models.LevelRecord{
		ID:          uuid.New().String(),
		UserID:      userID,
		Chapter:     chapter,
		LevelNumber: levelNumber,
		Score:       score,
		TimeTaken:   timeTaken,
		CompletedAt: time.Now().UTC(),
	}

	stmt, err := s.db.Prepare("INSERT INTO level_records(id, user_id, chapter, level_number, score, time_taken, completed_at) VALUES(?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return models.LevelRecord{}, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(record.ID, record.UserID, record.Chapter, record.LevelNumber, record.Score, record.TimeTaken, record.CompletedAt)
	if err != nil {
		return models.LevelRecord{}, err
	}

	if s.hub != nil {
		s.hub.BroadcastTo(chapter, websocket.NewScoreRecordedMessage(websocket.ScoreEvent{
			Name:        name,
			Chapter:     chapter,
			LevelNumber: levelNumber,
			Score:       score,
		}))
		s.hub.Broadcast <- websocket.NewLeaderboardChangedMessage()
	}

	return record, nil
}

// GetUserLevels returns the distinct completed level numbers, the derived
// unlocked set, and the full completion history for one chapter. Pure read;
// the unlock state is recomputed on every call and never cached.
func (s *ProgressService) GetUserLevels(email, chapter string) (models.ChapterProgress, error) {
	userID, _, err := s.resolveUser(email)
	if err != nil {
		return models.ChapterProgress{}, err
	}

	// rowid preserves insertion order for the history view.
	rows, err := s.db.Query("SELECT id, chapter, level_number, score, time_taken, completed_at FROM level_records WHERE user_id = ? AND chapter = ? ORDER BY rowid", userID, chapter)
	if err != nil {
		return models.ChapterProgress{}, err
	}
	defer rows.Close()

	records := []models.LevelRecord{}
	seen := map[int]bool{}
	for rows.Next() {
		var record models.LevelRecord
		if err := rows.Scan(&record.ID, &record.Chapter, &record.LevelNumber, &record.Score, &record.TimeTaken, &record.CompletedAt); err != nil {
			return models.ChapterProgress{}, err
		}
		record.UserID = userID
		records = append(records, record)
		seen[record.LevelNumber] = true
	}
	if err := rows.Err(); err != nil {
		return models.ChapterProgress{}, err
	}

	completed := make([]int, 0, len(seen))
	for n := range seen {
		completed = append(completed, n)
	}
	sort.Ints(completed)

	return models.ChapterProgress{
		CompletedLevels:     completed,
		UnlockedLevels:      UnlockedLevels(completed),
		CompletedLevelsData: records,
	}, nil
}

// UnlockedLevels derives the unlocked set from the completed level numbers:
// level 1 is always unlocked, and level k>1 is unlocked iff k-1 was
// completed.
func UnlockedLevels(completed []int) []int {
	seen := map[int]bool{1: true}
	for _, n := range completed {
		if n >= 1 {
			seen[n+1] = true
		}
	}

	unlocked := make([]int, 0, len(seen))
	for n := range seen {
		unlocked = append(unlocked, n)
	}
	sort.Ints(unlocked)
	return unlocked
}

// resolveUser maps an email to the user's id and display name.
func (s *ProgressService) resolveUser(email string) (id, name string, err error) {
	row := s.db.QueryRow("SELECT id, name FROM users WHERE email = ?", email)
	if err := row.Scan(&id, &name); err != nil {
		if err == sql.ErrNoRows {
			return "", "", ErrUserNotFound
		}
		return "", "", err
	}
	return id, name, nil
}
