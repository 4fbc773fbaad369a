package websocket

import "encoding/json"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// ScoreEvent is the payload broadcast when a level completion is recorded.
type ScoreEvent struct {
	Name        string `json:"name"`
	Chapter     string `json:"chapter"`
	LevelNumber int    `json:"levelNumber"`
	Score       int    `json:"score"`
}

// NewScoreRecordedMessage builds the broadcast bytes for a score event.
func NewScoreRecordedMessage(ev ScoreEvent) []byte {
	data, _ := json.Marshal(Message{Action: "score.recorded", Payload: ev})
	return data
}

// NewLeaderboardChangedMessage nudges clients to refetch the leaderboard.
func NewLeaderboardChangedMessage() []byte {
	data, _ := json.Marshal(Message{Action: "leaderboard.changed"})
	return data
}
