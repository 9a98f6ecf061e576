package game

import (
	"sort"
	"time"

	"gala_server/internal/domain"
)

const quizStartingPower = 100

// quizRound runs the discrete question/answer cycle. Unlike the race
// it has no continuous action stream and no bonus stages: each
// question resolves by majority vote per team against the question's
// payout table.
type quizRound struct {
	questions  []domain.Question
	index      int // questions already dealt
	current    *domain.Question
	answers    map[string]quizAnswer // employee id -> answer
	generation uint64
}

type quizAnswer struct {
	index      int
	answeredAt time.Time
}

func newQuizRound(gen uint64, questions []domain.Question) *quizRound {
	return &quizRound{
		questions:  questions,
		answers:    make(map[string]quizAnswer),
		generation: gen,
	}
}

// nextQuestion deals the next question off the deck, or the provided
// override. Returns nil when the deck is exhausted.
func (q *quizRound) nextQuestion(override *domain.Question) *domain.Question {
	q.answers = make(map[string]quizAnswer)
	if override != nil {
		q.current = override
		q.index++
		return q.current
	}
	if q.index >= len(q.questions) {
		q.current = nil
		return nil
	}
	q.current = &q.questions[q.index]
	q.index++
	return q.current
}

// recordAnswer stores one answer per player per question. Reports
// false for a duplicate or when no question is open.
func (q *quizRound) recordAnswer(employeeID string, index int, now time.Time) bool {
	if q.current == nil {
		return false
	}
	if _, dup := q.answers[employeeID]; dup {
		return false
	}
	q.answers[employeeID] = quizAnswer{index: index, answeredAt: now}
	return true
}

// teamVote tallies a team's answers for the open question.
type teamVote struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
}

// resolve closes the open question and applies the payout to every
// team whose members voted: a strict majority of correct answers earns
// the correct payout, anything else the wrong payout. Power never goes
// below zero. Returns the per-team tallies, nil if no question is open.
func (q *quizRound) resolve(players map[string]*domain.Player, teams map[string]*domain.Team) map[string]teamVote {
	if q.current == nil {
		return nil
	}

	votes := make(map[string]teamVote, len(teams))
	for employeeID, a := range q.answers {
		p, ok := players[employeeID]
		if !ok {
			continue
		}
		v := votes[p.TeamID]
		if a.index == q.current.CorrectIndex {
			v.Correct++
		} else {
			v.Wrong++
		}
		votes[p.TeamID] = v
	}

	for teamID, v := range votes {
		team, ok := teams[teamID]
		if ok && v.Correct+v.Wrong > 0 {
			if float64(v.Correct)/float64(v.Correct+v.Wrong) > 0.5 {
				team.Power += q.current.Points.Correct
			} else {
				team.Power += q.current.Points.Wrong
			}
			if team.Power < 0 {
				team.Power = 0
			}
		}
	}

	q.current = nil
	return votes
}

// done reports whether every question from the deck has been resolved.
func (q *quizRound) done() bool {
	return q.current == nil && q.index >= len(q.questions)
}

// rankings orders teams by power descending, ties by ordinal.
func rankingsByPower(teams []*domain.Team) []domain.TeamSummary {
	ranked := make([]*domain.Team, len(teams))
	copy(ranked, teams)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Power != ranked[j].Power {
			return ranked[i].Power > ranked[j].Power
		}
		return ranked[i].Ordinal < ranked[j].Ordinal
	})
	out := make([]domain.TeamSummary, len(ranked))
	for i, t := range ranked {
		out[i] = t.Summary()
	}
	return out
}
