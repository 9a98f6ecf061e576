package domain

// Settings holds the tunables for a game. Immutable while
// GameState.IsRunning is true.
type Settings struct {
	Round1Target int   `json:"round1_target"`
	Round2Target int   `json:"round2_target"`
	Round1Bonus  []int `json:"round1_bonus"` // ascending absolute scores
	Round2Bonus  []int `json:"round2_bonus"`

	LeaderboardSize int     `json:"leaderboard_size"`
	ShakeThreshold  float64 `json:"shake_threshold"` // min motion magnitude
	TrackDivisions  int     `json:"track_divisions"`

	QuizQuestionTime int `json:"quiz_question_time"` // seconds
}

// DefaultSettings - значения по умолчанию
func DefaultSettings() Settings {
	return Settings{
		Round1Target:     100,
		Round2Target:     150,
		Round1Bonus:      []int{50, 80},
		Round2Bonus:      []int{75, 120},
		LeaderboardSize:  10,
		ShakeThreshold:   1.2,
		TrackDivisions:   20,
		QuizQuestionTime: 15,
	}
}

// SettingsPatch is a partial settings update. Nil fields are left
// untouched. Changing a round target rescales that round's bonus
// thresholds proportionally so game pacing is preserved.
type SettingsPatch struct {
	Round1Target     *int     `json:"round1_target,omitempty"`
	Round2Target     *int     `json:"round2_target,omitempty"`
	LeaderboardSize  *int     `json:"leaderboard_size,omitempty"`
	ShakeThreshold   *float64 `json:"shake_threshold,omitempty"`
	TrackDivisions   *int     `json:"track_divisions,omitempty"`
	QuizQuestionTime *int     `json:"quiz_question_time,omitempty"`
}

// Apply mutates s with the non-nil fields of p.
func (p SettingsPatch) Apply(s *Settings) {
	if p.Round1Target != nil && *p.Round1Target > 0 {
		s.Round1Bonus = rescale(s.Round1Bonus, s.Round1Target, *p.Round1Target)
		s.Round1Target = *p.Round1Target
	}
	if p.Round2Target != nil && *p.Round2Target > 0 {
		s.Round2Bonus = rescale(s.Round2Bonus, s.Round2Target, *p.Round2Target)
		s.Round2Target = *p.Round2Target
	}
	if p.LeaderboardSize != nil && *p.LeaderboardSize > 0 {
		s.LeaderboardSize = *p.LeaderboardSize
	}
	if p.ShakeThreshold != nil && *p.ShakeThreshold > 0 {
		s.ShakeThreshold = *p.ShakeThreshold
	}
	if p.TrackDivisions != nil && *p.TrackDivisions > 0 {
		s.TrackDivisions = *p.TrackDivisions
	}
	if p.QuizQuestionTime != nil && *p.QuizQuestionTime > 0 {
		s.QuizQuestionTime = *p.QuizQuestionTime
	}
}

func rescale(thresholds []int, oldTarget, newTarget int) []int {
	if oldTarget <= 0 || len(thresholds) == 0 {
		return thresholds
	}
	out := make([]int, len(thresholds))
	for i, t := range thresholds {
		out[i] = t * newTarget / oldTarget
	}
	return out
}

// TargetFor returns the target score for a race round.
func (s Settings) TargetFor(round int) int {
	if round == 2 {
		return s.Round2Target
	}
	return s.Round1Target
}

// BonusFor returns the bonus thresholds for a race round.
func (s Settings) BonusFor(round int) []int {
	if round == 2 {
		return s.Round2Bonus
	}
	return s.Round1Bonus
}
