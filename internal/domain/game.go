package domain

import "time"

// Phase - стадия игры
type Phase string

const (
	PhaseWaiting     Phase = "waiting"
	PhaseWarmup      Phase = "warmup"
	PhaseRoundActive Phase = "round_active"
	PhaseQuiz        Phase = "quiz"
	PhaseRoundResult Phase = "round_result"
	PhaseFinished    Phase = "finished"
)

// Rounds in one game. Round 1 and 2 are continuous-action races.
const RoundCount = 2

// GameState is the canonical top-level state. GameID changes only on
// reset and scopes every session token issued before it.
type GameState struct {
	GameID       string     `json:"game_id"`
	Phase        Phase      `json:"phase"`
	IsRunning    bool       `json:"is_running"`
	CurrentRound int        `json:"current_round"`
	StartTime    *time.Time `json:"start_time,omitempty"`
}

// QuestionKind - тип вопроса
type QuestionKind string

const (
	QuestionNormal QuestionKind = "normal"
	QuestionStar   QuestionKind = "star"   // no penalty on a wrong majority
	QuestionBanana QuestionKind = "banana" // heavier penalty on a wrong majority
)

// QuestionPoints is the payout applied to a team's power after the
// majority vote resolves.
type QuestionPoints struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
}

// Question - вопрос для квиз-раунда
type Question struct {
	ID           int            `json:"id"`
	Text         string         `json:"text"`
	Options      []string       `json:"options"`
	CorrectIndex int            `json:"correct_index"`
	Kind         QuestionKind   `json:"kind"`
	Points       QuestionPoints `json:"points"`
}
