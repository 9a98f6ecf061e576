package game

import (
	"testing"
	"time"

	"gala_server/internal/domain"
	"gala_server/internal/ws"
)

func testTeam(id string, ordinal int) *domain.Team {
	return &domain.Team{ID: id, Ordinal: ordinal, Members: make(map[string]struct{})}
}

func TestScoreActionTap(t *testing.T) {
	s := domain.DefaultSettings()
	r := newRaceRound(1, 1, s, time.Now())
	p := &domain.Player{EmployeeID: "e001", TeamID: "team1"}
	team := testTeam("team1", 0)

	for i := 0; i < 50; i++ {
		if got := r.scoreAction(p, team, ws.ActionPayload{Kind: "tap"}, s, time.Now()); got != 1 {
			t.Fatalf("tap %d scored %d, want 1", i, got)
		}
	}
	if p.Round1Score != 50 || p.TotalScore != 50 {
		t.Fatalf("player score %d/%d, want 50/50", p.Round1Score, p.TotalScore)
	}
	if team.Round1Score != 50 {
		t.Fatalf("team score %d, want 50", team.Round1Score)
	}
}

func TestScoreActionShake(t *testing.T) {
	s := domain.DefaultSettings()
	r := newRaceRound(1, 1, s, time.Now())
	team := testTeam("team1", 0)
	now := time.Now()

	cases := []struct {
		name      string
		magnitude float64
		intensity float64
		want      int
	}{
		{"below threshold", s.ShakeThreshold - 0.1, 3, 0},
		{"at threshold", s.ShakeThreshold, 1.5, 3},
		{"floors intensity", s.ShakeThreshold, 1.9, 3},
		{"capped", s.ShakeThreshold, 10, 5},
		{"minimum one", s.ShakeThreshold, 0.1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &domain.Player{EmployeeID: "e001", TeamID: "team1"}
			got := r.scoreAction(p, team, ws.ActionPayload{
				Kind: "shake", Magnitude: tc.magnitude, Intensity: tc.intensity,
			}, s, now)
			if got != tc.want {
				t.Fatalf("shake scored %d, want %d", got, tc.want)
			}
		})
	}
}

func TestScoreActionUnknownKind(t *testing.T) {
	s := domain.DefaultSettings()
	r := newRaceRound(1, 1, s, time.Now())
	p := &domain.Player{EmployeeID: "e001", TeamID: "team1"}
	team := testTeam("team1", 0)

	if got := r.scoreAction(p, team, ws.ActionPayload{Kind: "clap"}, s, time.Now()); got != 0 {
		t.Fatalf("unknown kind scored %d", got)
	}
	if p.TotalScore != 0 || team.TotalScore != 0 {
		t.Fatal("unknown kind mutated scores")
	}
}

func TestScoreActionBonusDoubles(t *testing.T) {
	s := domain.DefaultSettings()
	r := newRaceRound(1, 1, s, time.Now())
	p := &domain.Player{EmployeeID: "e001", TeamID: "team1"}
	team := testTeam("team1", 0)

	r.bonusStage = 1
	if got := r.scoreAction(p, team, ws.ActionPayload{Kind: "tap"}, s, time.Now()); got != 2 {
		t.Fatalf("bonus tap scored %d, want 2", got)
	}
	r.bonusStage = 2
	got := r.scoreAction(p, team, ws.ActionPayload{
		Kind: "shake", Magnitude: s.ShakeThreshold, Intensity: 2,
	}, s, time.Now())
	if got != 8 {
		t.Fatalf("bonus shake scored %d, want 8", got)
	}
}

func TestFinishedTeamStopsEarning(t *testing.T) {
	s := domain.DefaultSettings()
	r := newRaceRound(1, 1, s, time.Now())
	p := &domain.Player{EmployeeID: "e001", TeamID: "team1"}
	team := testTeam("team1", 0)
	now := time.Now()

	team.AddRoundScore(1, r.target-1)
	// The crossing action lands in full, even if it overshoots.
	r.bonusStage = 1
	if got := r.scoreAction(p, team, ws.ActionPayload{Kind: "tap"}, s, now); got != 2 {
		t.Fatalf("crossing tap scored %d, want 2", got)
	}
	if team.Round1Score != r.target+1 {
		t.Fatalf("overshoot clipped: %d, want %d", team.Round1Score, r.target+1)
	}
	if team.FinishedAt == nil {
		t.Fatal("finish time not recorded")
	}
	finished := *team.FinishedAt

	// Past the target nothing counts and the finish time holds.
	if got := r.scoreAction(p, team, ws.ActionPayload{Kind: "tap"}, s, now.Add(time.Second)); got != 0 {
		t.Fatalf("post-finish tap scored %d", got)
	}
	if !team.FinishedAt.Equal(finished) {
		t.Fatal("finish time moved")
	}
}

func TestAdvanceBonusExactlyOncePerStage(t *testing.T) {
	s := domain.DefaultSettings()
	r := newRaceRound(1, 1, s, time.Now())
	a, b := testTeam("team1", 0), testTeam("team2", 1)
	teams := []*domain.Team{a, b}

	if got := r.advanceBonus(teams); len(got) != 0 {
		t.Fatalf("stage advanced at zero score: %v", got)
	}

	a.AddRoundScore(1, r.thresholds[0])
	if got := r.advanceBonus(teams); len(got) != 1 || got[0] != 1 {
		t.Fatalf("first crossing reported %v, want [1]", got)
	}
	if got := r.advanceBonus(teams); len(got) != 0 {
		t.Fatalf("stage 1 reported twice: %v", got)
	}

	// The trailing team reaching the same threshold changes nothing.
	b.AddRoundScore(1, r.thresholds[0])
	if got := r.advanceBonus(teams); len(got) != 0 {
		t.Fatalf("trailing team re-triggered stage: %v", got)
	}

	// A single burst across two thresholds reports both stages, in order.
	a.AddRoundScore(1, r.target)
	got := r.advanceBonus(teams)
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("second crossing reported %v, want [2]", got)
	}
}

func TestAdvanceBonusBurstCrossesAllStages(t *testing.T) {
	s := domain.DefaultSettings()
	r := newRaceRound(1, 1, s, time.Now())
	a := testTeam("team1", 0)

	a.AddRoundScore(1, r.thresholds[len(r.thresholds)-1]+10)
	got := r.advanceBonus([]*domain.Team{a})
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("burst crossing reported %v, want [1 2]", got)
	}
}

func TestCompleteRequiresEveryTeam(t *testing.T) {
	s := domain.DefaultSettings()
	r := newRaceRound(1, 1, s, time.Now())
	a, b, c := testTeam("team1", 0), testTeam("team2", 1), testTeam("team3", 2)
	teams := []*domain.Team{a, b, c}

	a.AddRoundScore(1, r.target)
	b.AddRoundScore(1, r.target-20)
	c.AddRoundScore(1, r.target)
	if r.complete(teams) {
		t.Fatal("round completed with a team short of target")
	}
	b.AddRoundScore(1, 20)
	if !r.complete(teams) {
		t.Fatal("round not complete with every team at target")
	}
}

func TestWinnerByFinishTime(t *testing.T) {
	r := newRaceRound(1, 1, domain.DefaultSettings(), time.Now())
	now := time.Now()
	early, late := now, now.Add(time.Second)

	a, b, c := testTeam("team1", 0), testTeam("team2", 1), testTeam("team3", 2)
	b.FinishedAt = &early
	c.FinishedAt = &late

	if w := r.winner([]*domain.Team{a, b, c}); w != b {
		t.Fatalf("winner = %s, want team2", w.ID)
	}

	// Same instant: the lower ordinal wins.
	a.FinishedAt = &early
	if w := r.winner([]*domain.Team{c, b, a}); w != a {
		t.Fatalf("tie winner = %s, want team1", w.ID)
	}
}

func TestWinnerNobodyFinishedFallsBackToScore(t *testing.T) {
	r := newRaceRound(1, 1, domain.DefaultSettings(), time.Now())
	a, b, c := testTeam("team1", 0), testTeam("team2", 1), testTeam("team3", 2)
	a.AddRoundScore(1, 10)
	b.AddRoundScore(1, 40)
	c.AddRoundScore(1, 90)

	// Forced end short of the target: the score leader wins, not the
	// lowest ordinal.
	if w := r.winner([]*domain.Team{a, b, c}); w != c {
		t.Fatalf("winner = %s, want team3", w.ID)
	}
	if got := r.rankTeams([]*domain.Team{a, b, c}); got[0].ID != "team3" {
		t.Fatalf("ranking leader = %s, want team3", got[0].ID)
	}

	// Equal scores, nobody finished: ordinal breaks the tie.
	b.AddRoundScore(1, 50)
	if w := r.winner([]*domain.Team{c, b, a}); w != b {
		t.Fatalf("tie winner = %s, want team2", w.ID)
	}

	// Any finished team still beats a higher-scoring unfinished one.
	now := time.Now()
	a.FinishedAt = &now
	if w := r.winner([]*domain.Team{a, b, c}); w != a {
		t.Fatalf("winner = %s, want team1", w.ID)
	}
}

func TestProgressPositions(t *testing.T) {
	s := domain.DefaultSettings()
	r := newRaceRound(1, 1, s, time.Now())
	a := testTeam("team1", 0)
	a.AddRoundScore(1, r.target/2)

	got := r.progress([]*domain.Team{a}, s.TrackDivisions)
	if len(got) != 1 {
		t.Fatalf("progress entries = %d", len(got))
	}
	if got[0].Position != s.TrackDivisions/2 {
		t.Fatalf("position = %d, want %d", got[0].Position, s.TrackDivisions/2)
	}

	// Overshoot clamps to the end of the track, not beyond.
	a.AddRoundScore(1, r.target)
	got = r.progress([]*domain.Team{a}, s.TrackDivisions)
	if got[0].Position != s.TrackDivisions || got[0].Progress != 1 {
		t.Fatalf("overshoot position = %d progress = %v", got[0].Position, got[0].Progress)
	}
}

func TestLeaderboardOrderAndTruncation(t *testing.T) {
	r := newRaceRound(1, 1, domain.DefaultSettings(), time.Now())
	base := time.Now()

	players := []*domain.Player{
		{EmployeeID: "a", TeamID: "team1", Round1Score: 10, JoinedAt: base.Add(2 * time.Second)},
		{EmployeeID: "b", TeamID: "team2", Round1Score: 30, JoinedAt: base},
		{EmployeeID: "c", TeamID: "team1", Round1Score: 10, JoinedAt: base.Add(time.Second)},
		{EmployeeID: "d", TeamID: "team2", Round1Score: 5, JoinedAt: base},
	}

	got := r.leaderboard(players, 3)
	if len(got) != 3 {
		t.Fatalf("leaderboard size = %d, want 3", len(got))
	}
	wantOrder := []string{"b", "c", "a"}
	for i, id := range wantOrder {
		if got[i].EmployeeID != id {
			t.Fatalf("rank %d = %s, want %s", i+1, got[i].EmployeeID, id)
		}
		if got[i].Rank != i+1 {
			t.Fatalf("rank field = %d, want %d", got[i].Rank, i+1)
		}
	}
}
