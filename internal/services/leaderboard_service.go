package services

import (
	"database/sql"

	"github.com/ipquest/ipquest-be/internal/models"
)

// LeaderboardServiceProvider defines the interface for leaderboard services.
type LeaderboardServiceProvider interface {
	GetLeaderboard() ([]models.LeaderboardEntry, error)
}

// LeaderboardService ranks users by cumulative score across all chapters.
// The aggregation is recomputed per call; no running total is stored.
type LeaderboardService struct {
	db *sql.DB
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(db *sql.DB) *LeaderboardService {
	return &LeaderboardService{db: db}
}

// GetLeaderboard returns every user with the sum of their recorded scores,
// sorted descending. Ties break on user id so the order is deterministic.
func (s *LeaderboardService) GetLeaderboard() ([]models.LeaderboardEntry, error) {
	rows, err := s.db.Query(`
		SELECT u.name, u.email, COALESCE(SUM(r.score), 0) AS total_score
		FROM users u
		LEFT JOIN level_records r ON r.user_id = u.id
		GROUP BY u.id
		ORDER BY total_score DESC, u.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.LeaderboardEntry{}
	rank := 1
	for rows.Next() {
		var entry models.LeaderboardEntry
		if err := rows.Scan(&entry.Name, &entry.Email, &entry.TotalScore); err != nil {
			return nil, err
		}
		entry.Rank = rank
		rank++
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
