package domain

import (
	"strconv"
	"strings"
	"time"
)

// Player - участник игры. Устойчивый ключ - EmployeeID, ConnID живёт
// только пока есть подключение.
type Player struct {
	ConnID         string     `json:"conn_id,omitempty"`
	EmployeeID     string     `json:"employee_id"`
	SessionToken   string     `json:"session_token,omitempty"`
	TeamID         string     `json:"team_id"`
	Round1Score    int        `json:"round1_score"`
	Round2Score    int        `json:"round2_score"`
	TotalScore     int        `json:"total_score"`
	IsOnline       bool       `json:"is_online"`
	JoinedAt       time.Time  `json:"joined_at"`
	LastActiveAt   time.Time  `json:"last_active_at"`
	DisconnectedAt *time.Time `json:"disconnected_at,omitempty"`
}

// RoundScore returns the player's score for the given race round.
func (p *Player) RoundScore(round int) int {
	if round == 2 {
		return p.Round2Score
	}
	return p.Round1Score
}

// AddRoundScore applies an increment to one round and recomputes the
// total so TotalScore always equals Round1Score+Round2Score.
func (p *Player) AddRoundScore(round, increment int) {
	if round == 2 {
		p.Round2Score += increment
	} else {
		p.Round1Score += increment
	}
	p.TotalScore = p.Round1Score + p.Round2Score
}

// NormalizeEmployeeID canonicalizes a player identity for matching:
// surrounding whitespace stripped, case folded.
func NormalizeEmployeeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// PlayerSummary is the wire shape for a player. The session token
// never leaves the record: it is handed out once, in the joined reply.
type PlayerSummary struct {
	EmployeeID   string     `json:"employee_id"`
	TeamID       string     `json:"team_id"`
	Round1Score  int        `json:"round1_score"`
	Round2Score  int        `json:"round2_score"`
	TotalScore   int        `json:"total_score"`
	IsOnline     bool       `json:"is_online"`
	JoinedAt     time.Time  `json:"joined_at"`
	LastActiveAt time.Time  `json:"last_active_at"`
}

func (p *Player) Summary() PlayerSummary {
	return PlayerSummary{
		EmployeeID:   p.EmployeeID,
		TeamID:       p.TeamID,
		Round1Score:  p.Round1Score,
		Round2Score:  p.Round2Score,
		TotalScore:   p.TotalScore,
		IsOnline:     p.IsOnline,
		JoinedAt:     p.JoinedAt,
		LastActiveAt: p.LastActiveAt,
	}
}

// Team - команда. Members содержит только live connection ids.
type Team struct {
	ID          string              `json:"id"`
	Ordinal     int                 `json:"ordinal"`
	Name        string              `json:"name"`
	Color       string              `json:"color"`
	Members     map[string]struct{} `json:"-"`
	Round1Score int                 `json:"round1_score"`
	Round2Score int                 `json:"round2_score"`
	TotalScore  int                 `json:"total_score"`
	Power       int                 `json:"power"`
	FinishedAt  *time.Time          `json:"finished_at,omitempty"`
}

func (t *Team) RoundScore(round int) int {
	if round == 2 {
		return t.Round2Score
	}
	return t.Round1Score
}

func (t *Team) AddRoundScore(round, increment int) {
	if round == 2 {
		t.Round2Score += increment
	} else {
		t.Round1Score += increment
	}
	t.TotalScore = t.Round1Score + t.Round2Score
}

// TeamSummary is the wire shape for a team (member count instead of
// connection ids).
type TeamSummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Color       string     `json:"color"`
	PlayerCount int        `json:"player_count"`
	Round1Score int        `json:"round1_score"`
	Round2Score int        `json:"round2_score"`
	TotalScore  int        `json:"total_score"`
	Power       int        `json:"power"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

func (t *Team) Summary() TeamSummary {
	return TeamSummary{
		ID:          t.ID,
		Name:        t.Name,
		Color:       t.Color,
		PlayerCount: len(t.Members),
		Round1Score: t.Round1Score,
		Round2Score: t.Round2Score,
		TotalScore:  t.TotalScore,
		Power:       t.Power,
		FinishedAt:  t.FinishedAt,
	}
}

// DefaultTeams builds the first n teams from the stock palette.
func DefaultTeams(n int) []*Team {
	palette := []struct {
		name  string
		color string
	}{
		{"Engineering", "#FF6B6B"},
		{"Design", "#4ECDC4"},
		{"Marketing", "#45B7D1"},
		{"Sales", "#96CEB4"},
		{"People Ops", "#FFEAA7"},
		{"Finance", "#DDA0DD"},
	}
	if n < 1 {
		n = 1
	}
	if n > len(palette) {
		n = len(palette)
	}
	teams := make([]*Team, 0, n)
	for i := 0; i < n; i++ {
		teams = append(teams, &Team{
			ID:      "team" + strconv.Itoa(i+1),
			Ordinal: i,
			Name:    palette[i].name,
			Color:   palette[i].color,
			Members: make(map[string]struct{}),
		})
	}
	return teams
}
