package game

import (
	"math"
	"sort"
	"time"

	"gala_server/internal/domain"
	"gala_server/internal/ws"
)

// Per-action increments, from the stock scoring rules: a tap is worth
// one point, a shake scales with intensity up to a cap.
const (
	tapIncrement  = 1
	shakeCap      = 5
	shakeIntScale = 2
)

// Bonus modes by stage ordinal. Stage 0 is the base game; any higher
// stage doubles increments and hints the clients to switch input mode.
var bonusModes = []string{"normal", "double", "frenzy"}

// raceRound is the ephemeral state of one continuous-action round.
// Created at round start, discarded at round end, never persisted.
type raceRound struct {
	number     int
	generation uint64
	target     int
	thresholds []int
	bonusStage int
	startedAt  time.Time
}

func newRaceRound(number int, gen uint64, s domain.Settings, now time.Time) *raceRound {
	return &raceRound{
		number:     number,
		generation: gen,
		target:     s.TargetFor(number),
		thresholds: s.BonusFor(number),
		startedAt:  now,
	}
}

// scoreAction converts one input sample into a score increment and
// applies it to the acting player and their team. Returns 0 when the
// sample scores nothing or the team has already finished: a finished
// team stops earning while the rest race on.
func (r *raceRound) scoreAction(p *domain.Player, team *domain.Team, act ws.ActionPayload, s domain.Settings, now time.Time) int {
	if team.RoundScore(r.number) >= r.target {
		return 0
	}

	var increment int
	switch act.Kind {
	case "tap":
		increment = tapIncrement
	case "shake":
		if act.Magnitude < s.ShakeThreshold {
			return 0
		}
		increment = int(math.Floor(act.Intensity * shakeIntScale))
		if increment > shakeCap {
			increment = shakeCap
		}
		if increment < 1 {
			increment = 1
		}
	default:
		return 0
	}

	if r.bonusStage > 0 {
		increment *= 2
	}

	p.AddRoundScore(r.number, increment)
	p.LastActiveAt = now
	team.AddRoundScore(r.number, increment)

	// The crossing action may overshoot the target; the score is kept
	// as earned, only the finish time is recorded.
	if team.RoundScore(r.number) >= r.target && team.FinishedAt == nil {
		t := now
		team.FinishedAt = &t
	}
	return increment
}

// advanceBonus compares the leading team's score against the ordered
// thresholds and returns every newly reached stage, lowest first, one
// entry per crossing. Stages never regress.
func (r *raceRound) advanceBonus(teams []*domain.Team) []int {
	leading := 0
	for _, t := range teams {
		if s := t.RoundScore(r.number); s > leading {
			leading = s
		}
	}

	var crossed []int
	for r.bonusStage < len(r.thresholds) && leading >= r.thresholds[r.bonusStage] {
		r.bonusStage++
		crossed = append(crossed, r.bonusStage)
	}
	return crossed
}

// complete reports whether every team has reached the target.
func (r *raceRound) complete(teams []*domain.Team) bool {
	for _, t := range teams {
		if t.RoundScore(r.number) < r.target {
			return false
		}
	}
	return len(teams) > 0
}

// progress computes the screen-facing race telemetry: each team's
// position along the track divisions, proportional to score/target.
func (r *raceRound) progress(teams []*domain.Team, divisions int) []TeamProgress {
	out := make([]TeamProgress, 0, len(teams))
	for _, t := range teams {
		score := t.RoundScore(r.number)
		frac := float64(score) / float64(r.target)
		if frac > 1 {
			frac = 1
		}
		out = append(out, TeamProgress{
			TeamID:   t.ID,
			Score:    score,
			Position: int(frac * float64(divisions)),
			Progress: frac,
			Finished: t.FinishedAt != nil,
		})
	}
	return out
}

// winner picks the team that reached the target first; teams that
// never finished sort last. On a forced end where nobody finished the
// score leader wins, so the winner always agrees with the ranking.
// Ties break by team ordinal.
func (r *raceRound) winner(teams []*domain.Team) *domain.Team {
	var best *domain.Team
	for _, t := range teams {
		if best == nil {
			best = t
			continue
		}
		if r.better(t, best) {
			best = t
		}
	}
	return best
}

func (r *raceRound) better(a, b *domain.Team) bool {
	if a.FinishedAt == nil && b.FinishedAt == nil {
		sa, sb := a.RoundScore(r.number), b.RoundScore(r.number)
		if sa != sb {
			return sa > sb
		}
		return a.Ordinal < b.Ordinal
	}
	return earlierFinish(a, b)
}

func earlierFinish(a, b *domain.Team) bool {
	switch {
	case a.FinishedAt == nil && b.FinishedAt == nil:
		return a.Ordinal < b.Ordinal
	case a.FinishedAt == nil:
		return false
	case b.FinishedAt == nil:
		return true
	case a.FinishedAt.Equal(*b.FinishedAt):
		return a.Ordinal < b.Ordinal
	default:
		return a.FinishedAt.Before(*b.FinishedAt)
	}
}

// rankTeams orders teams by the round's score descending, ties by
// ordinal.
func (r *raceRound) rankTeams(teams []*domain.Team) []domain.TeamSummary {
	ranked := make([]*domain.Team, len(teams))
	copy(ranked, teams)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := ranked[i].RoundScore(r.number), ranked[j].RoundScore(r.number)
		if si != sj {
			return si > sj
		}
		return ranked[i].Ordinal < ranked[j].Ordinal
	})
	out := make([]domain.TeamSummary, len(ranked))
	for i, t := range ranked {
		out[i] = t.Summary()
	}
	return out
}

// leaderboard ranks individual players by the round's score, ties by
// ascending join time, truncated to size.
func (r *raceRound) leaderboard(players []*domain.Player, size int) []LeaderboardEntry {
	sorted := make([]*domain.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := sorted[i].RoundScore(r.number), sorted[j].RoundScore(r.number)
		if si != sj {
			return si > sj
		}
		return sorted[i].JoinedAt.Before(sorted[j].JoinedAt)
	})
	if size > 0 && len(sorted) > size {
		sorted = sorted[:size]
	}
	out := make([]LeaderboardEntry, len(sorted))
	for i, p := range sorted {
		out[i] = LeaderboardEntry{
			Rank:       i + 1,
			EmployeeID: p.EmployeeID,
			TeamID:     p.TeamID,
			Score:      p.RoundScore(r.number),
		}
	}
	return out
}
