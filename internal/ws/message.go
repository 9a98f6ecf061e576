package ws

import "encoding/json"

// Message is the outbound envelope for every websocket event.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Outbound event types. The set is closed: handlers construct these
// explicitly, there is no string-keyed registry.
const (
	MsgJoined          = "joined"
	MsgKicked          = "kicked"
	MsgError           = "error"
	MsgPlayerCount     = "player-count"
	MsgRoundStart      = "round-start"
	MsgScore           = "score"
	MsgBonusChange     = "bonus-change"
	MsgRaceUpdate      = "race-update"
	MsgRoundEnd        = "round-end"
	MsgLeaderboardShow = "leaderboard-show"
	MsgSettingsUpdate  = "settings-update"
	MsgGameReset       = "game-reset"
	MsgWarmupStart     = "warmup-start"
	MsgScreenInit      = "screen-init"
	MsgAdminInit       = "admin-init"
	MsgQuizStart       = "quiz-start"
	MsgQuizQuestion    = "quiz-question"
	MsgQuizResult      = "quiz-result"
	MsgQuizAnswered    = "quiz-answered"
	MsgQuizAnswerCount = "quiz-answer-count"
	MsgQuizReveal      = "quiz-reveal"
	MsgQuizEnd         = "quiz-end"
)

// Inbound event types.
const (
	MsgJoin   = "join"
	MsgAction = "action"
	MsgAnswer = "answer"
)

// Inbound is the envelope read off a player connection. The payload
// stays raw until the controller dispatches on Type.
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JoinPayload - заявка на вход. Token присутствует только при reconnect.
type JoinPayload struct {
	EmployeeID string `json:"employee_id"`
	Team       string `json:"team,omitempty"`
	Token      string `json:"token,omitempty"`
}

// ActionPayload is one score-affecting input sample.
type ActionPayload struct {
	Kind      string  `json:"kind"` // "tap" or "shake"
	Magnitude float64 `json:"magnitude,omitempty"`
	Intensity float64 `json:"intensity,omitempty"`
}

// AnswerPayload is a quiz answer.
type AnswerPayload struct {
	Index int `json:"index"`
}
