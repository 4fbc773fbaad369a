package models

// LeaderboardEntry is one row of the global ranking.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	TotalScore int    `json:"totalScore"`
}
