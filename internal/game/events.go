package game

import (
	"time"

	"gala_server/internal/domain"
)

// Payload shapes for outbound events. One struct per message type so
// the wire format is explicit rather than assembled from loose maps.

type JoinedPayload struct {
	Player      domain.PlayerSummary `json:"player"`
	Team        domain.TeamSummary   `json:"team"`
	GameState   domain.GameState     `json:"game_state"`
	Token       string               `json:"token"`
	IsReconnect bool                 `json:"is_reconnect"`
}

type KickedPayload struct {
	Reason string `json:"reason"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type PlayerCountPayload struct {
	Total int                  `json:"total"`
	Teams []domain.TeamSummary `json:"teams"`
}

type RoundStartPayload struct {
	Round     int       `json:"round"`
	Target    int       `json:"target"`
	StartedAt time.Time `json:"started_at"`
}

// ScorePayload is the private per-action acknowledgment. Targeted at
// the acting connection only, never broadcast.
type ScorePayload struct {
	Round     int `json:"round"`
	Score     int `json:"score"`
	Total     int `json:"total"`
	Increment int `json:"increment"`
}

type BonusChangePayload struct {
	Round int    `json:"round"`
	Stage int    `json:"stage"`
	Mode  string `json:"mode"`
}

type TeamProgress struct {
	TeamID   string  `json:"team_id"`
	Score    int     `json:"score"`
	Position int     `json:"position"`
	Progress float64 `json:"progress"`
	Finished bool    `json:"finished"`
}

type RaceUpdatePayload struct {
	Round int            `json:"round"`
	Teams []TeamProgress `json:"teams"`
}

type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	EmployeeID string `json:"employee_id"`
	TeamID     string `json:"team_id"`
	Score      int    `json:"score"`
}

type RoundEndPayload struct {
	Round       int                  `json:"round"`
	Teams       []domain.TeamSummary `json:"teams"`
	Leaderboard []LeaderboardEntry   `json:"leaderboard"`
	Winner      domain.TeamSummary   `json:"winner"`
}

type SettingsUpdatePayload struct {
	Settings domain.Settings `json:"settings"`
}

type GameResetPayload struct {
	GameID string `json:"game_id"`
}

type WarmupStartPayload struct {
	// Clients use warmup to request device motion permission before
	// the shake round starts.
	SensorCheck bool `json:"sensor_check"`
}

type ScreenInitPayload struct {
	GameState   domain.GameState     `json:"game_state"`
	Teams       []domain.TeamSummary `json:"teams"`
	PlayerCount int                  `json:"player_count"`
}

type AdminInitPayload struct {
	GameState   domain.GameState       `json:"game_state"`
	Settings    domain.Settings        `json:"settings"`
	Teams       []domain.TeamSummary   `json:"teams"`
	Players     []domain.PlayerSummary `json:"players"`
	PlayerCount int                    `json:"player_count"`
}

type QuizStartPayload struct {
	TotalQuestions  int                  `json:"total_questions"`
	TimePerQuestion int                  `json:"time_per_question"`
	Teams           []domain.TeamSummary `json:"teams"`
}

// QuestionPayload deliberately omits the correct index.
type QuestionPayload struct {
	ID             int                 `json:"id"`
	Text           string              `json:"text"`
	Options        []string            `json:"options"`
	Kind           domain.QuestionKind `json:"kind"`
	QuestionNumber int                 `json:"question_number"`
	TotalQuestions int                 `json:"total_questions"`
	TimeLimit      int                 `json:"time_limit"`
}

type AnsweredPayload struct {
	Index int `json:"index"`
}

type AnswerCountPayload struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// QuizResultPayload is the private correctness reply after a reveal.
type QuizResultPayload struct {
	Correct      bool `json:"correct"`
	CorrectIndex int  `json:"correct_index"`
	YourAnswer   int  `json:"your_answer"`
}

type QuizRevealPayload struct {
	QuestionID   int                  `json:"question_id"`
	CorrectIndex int                  `json:"correct_index"`
	Kind         domain.QuestionKind  `json:"kind"`
	Votes        map[string]teamVote  `json:"votes"`
	Teams        []domain.TeamSummary `json:"teams"`
}

type QuizEndPayload struct {
	Rankings []domain.TeamSummary `json:"rankings"`
	Winner   domain.TeamSummary   `json:"winner"`
}
