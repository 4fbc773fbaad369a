package models

import "time"

// LevelRecord is one persisted level-completion event. Records are
// append-only: replaying a level adds a new record, it never replaces
// an earlier one.
type LevelRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Chapter     string    `json:"chapter"` // e.g. "patent", "copyrights", "trademark", "design"
	LevelNumber int       `json:"levelNumber"`
	Score       int       `json:"score"`
	TimeTaken   int       `json:"timeTaken"` // seconds
	CompletedAt time.Time `json:"completedAt"`
}

// ChapterProgress is the answer to a user-levels query for one chapter.
type ChapterProgress struct {
	CompletedLevels     []int         `json:"completedLevels"`
	UnlockedLevels      []int         `json:"unlockedLevels"`
	CompletedLevelsData []LevelRecord `json:"completedLevelsData"`
}
