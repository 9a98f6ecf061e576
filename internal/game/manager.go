package game

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gala_server/internal/domain"
	"gala_server/internal/logger"
	"gala_server/internal/metrics"
	"gala_server/internal/repository"
	"gala_server/internal/ws"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Sink is where the manager emits outbound events. Implemented by
// ws.Hub; tests substitute a recorder.
type Sink interface {
	SendTo(connID string, msg ws.Message) bool
	Broadcast(group string, msg ws.Message)
	JoinGroup(group, connID string)
	LeaveGroup(group, connID string)
	ClearGroup(group string)
	CloseConn(connID string)
}

// Options configures a Manager. Zero values get sane defaults.
type Options struct {
	Clock            clockwork.Clock
	Sink             Sink
	Store            *repository.Store
	TeamCount        int
	TickInterval     time.Duration
	SnapshotInterval time.Duration
	Questions        []domain.Question
}

// Manager is the single writer for all game state. Every inbound
// event, admin trigger and timer is funnelled through one command
// channel consumed by Run, so no two events ever interleave mutation.
type Manager struct {
	clock clockwork.Clock
	sink  Sink
	store *repository.Store
	snap  *repository.Snapshotter

	state     domain.GameState
	settings  domain.Settings
	teams     []*domain.Team
	teamsByID map[string]*domain.Team
	registry  *Registry

	race *raceRound
	quiz *quizRound
	// generation fences every scheduled callback: a timer that fires
	// after the round or game it belongs to has moved on is a no-op.
	generation uint64

	lastRoundEnd *RoundEndPayload
	questions    []domain.Question

	tickInterval     time.Duration
	snapshotInterval time.Duration

	commands chan command
}

type command interface{ isCommand() }

type inboundCmd struct {
	client *ws.Client
	raw    []byte
}
type disconnectCmd struct{ client *ws.Client }
type screenJoinCmd struct{ connID string }
type adminJoinCmd struct{ connID string }
type startWarmupCmd struct{ reply chan error }
type startRoundCmd struct {
	round int
	reply chan error
}
type endRoundCmd struct{ reply chan error }
type startQuizCmd struct {
	questions []domain.Question
	reply     chan error
}
type nextQuestionCmd struct {
	question *domain.Question
	reply    chan error
}
type revealCmd struct {
	generation uint64
	questionID int
}
type updateSettingsCmd struct {
	patch domain.SettingsPatch
	reply chan error
}
type showLeaderboardCmd struct{ reply chan error }
type resetCmd struct{ reply chan error }
type statusCmd struct{ reply chan Status }

func (inboundCmd) isCommand()         {}
func (disconnectCmd) isCommand()      {}
func (screenJoinCmd) isCommand()      {}
func (adminJoinCmd) isCommand()       {}
func (startWarmupCmd) isCommand()     {}
func (startRoundCmd) isCommand()      {}
func (endRoundCmd) isCommand()        {}
func (startQuizCmd) isCommand()       {}
func (nextQuestionCmd) isCommand()    {}
func (revealCmd) isCommand()          {}
func (updateSettingsCmd) isCommand()  {}
func (showLeaderboardCmd) isCommand() {}
func (resetCmd) isCommand()           {}
func (statusCmd) isCommand()          {}

// Status is the read-only view served to the admin HTTP surface.
type Status struct {
	GameState   domain.GameState     `json:"game_state"`
	Settings    domain.Settings      `json:"settings"`
	Teams       []domain.TeamSummary `json:"teams"`
	PlayerCount int                  `json:"player_count"`
	OnlineCount int                  `json:"online_count"`
}

func NewManager(opts Options) *Manager {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.TeamCount <= 0 {
		opts.TeamCount = 3
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = 200 * time.Millisecond
	}
	if opts.SnapshotInterval <= 0 {
		opts.SnapshotInterval = 10 * time.Second
	}
	if opts.Questions == nil {
		opts.Questions = DefaultQuestions()
	}

	m := &Manager{
		clock:            opts.Clock,
		sink:             opts.Sink,
		store:            opts.Store,
		settings:         domain.DefaultSettings(),
		registry:         NewRegistry(),
		questions:        opts.Questions,
		tickInterval:     opts.TickInterval,
		snapshotInterval: opts.SnapshotInterval,
		commands:         make(chan command, 1024),
	}
	m.state = domain.GameState{
		GameID: uuid.NewString(),
		Phase:  domain.PhaseWaiting,
	}
	m.installTeams(domain.DefaultTeams(opts.TeamCount))

	if m.store != nil {
		m.snap = repository.NewSnapshotter(m.store)
		m.restore()
	}
	return m
}

func (m *Manager) installTeams(teams []*domain.Team) {
	m.teams = teams
	m.teamsByID = make(map[string]*domain.Team, len(teams))
	for _, t := range teams {
		m.teamsByID[t.ID] = t
	}
}

// restore rehydrates state from the store on boot. Best-effort: any
// load error leaves the fresh state in place. A round that was running
// when the process died cannot resume, it lands in round_result.
func (m *Manager) restore() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if gs, err := m.store.LoadGameState(ctx); err != nil {
		logger.Error("restore game state failed", "err", err)
	} else if gs != nil {
		if gs.IsRunning {
			gs.IsRunning = false
			gs.Phase = domain.PhaseRoundResult
		}
		m.state = *gs
		logger.Info("restored game state", "game_id", gs.GameID, "phase", gs.Phase)
	}

	if s, err := m.store.LoadSettings(ctx); err != nil {
		logger.Error("restore settings failed", "err", err)
	} else if s != nil {
		m.settings = *s
	}

	if teams, err := m.store.LoadTeams(ctx); err != nil {
		logger.Error("restore teams failed", "err", err)
	} else {
		for id, loaded := range teams {
			if t, ok := m.teamsByID[id]; ok {
				loaded.Ordinal = t.Ordinal
				loaded.Members = make(map[string]struct{})
				*t = *loaded
			}
		}
	}

	if players, err := m.store.LoadPlayers(ctx); err != nil {
		logger.Error("restore players failed", "err", err)
	} else if len(players) > 0 {
		m.registry.Rehydrate(players)
		logger.Info("restored players", "count", len(players))
	}
}

// Run consumes commands and timers until ctx is cancelled. This is the
// only goroutine that mutates game state.
func (m *Manager) Run(ctx context.Context) {
	ticker := m.clock.NewTicker(m.tickInterval)
	defer ticker.Stop()
	snapTicker := m.clock.NewTicker(m.snapshotInterval)
	defer snapTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			if m.snap != nil {
				m.snap.Enqueue(m.buildSnapshot())
				m.snap.Close()
			}
			return
		case cmd := <-m.commands:
			m.dispatch(cmd)
		case <-ticker.Chan():
			m.onTick()
		case <-snapTicker.Chan():
			if m.snap != nil {
				m.snap.Enqueue(m.buildSnapshot())
			}
		}
	}
}

func (m *Manager) dispatch(cmd command) {
	switch c := cmd.(type) {
	case inboundCmd:
		m.handleInbound(c.client, c.raw)
	case disconnectCmd:
		m.handleDisconnect(c.client)
	case screenJoinCmd:
		m.handleScreenJoin(c.connID)
	case adminJoinCmd:
		m.handleAdminJoin(c.connID)
	case startWarmupCmd:
		c.reply <- m.startWarmup()
	case startRoundCmd:
		c.reply <- m.startRound(c.round)
	case endRoundCmd:
		c.reply <- m.endRound(true)
	case startQuizCmd:
		c.reply <- m.startQuiz(c.questions)
	case nextQuestionCmd:
		c.reply <- m.nextQuestion(c.question)
	case revealCmd:
		m.reveal(c.generation, c.questionID)
	case updateSettingsCmd:
		c.reply <- m.updateSettings(c.patch)
	case showLeaderboardCmd:
		c.reply <- m.showLeaderboard()
	case resetCmd:
		c.reply <- m.reset()
	case statusCmd:
		c.reply <- m.status()
	}
}

// --- ws.EventSink ---

// HandleMessage enqueues a raw client message for serialized dispatch.
func (m *Manager) HandleMessage(c *ws.Client, raw []byte) {
	m.commands <- inboundCmd{client: c, raw: raw}
}

// HandleDisconnect enqueues a connection teardown.
func (m *Manager) HandleDisconnect(c *ws.Client) {
	m.commands <- disconnectCmd{client: c}
}

// --- public API (transport + admin surface) ---

func (m *Manager) ScreenConnected(connID string) {
	m.commands <- screenJoinCmd{connID: connID}
}

func (m *Manager) AdminConnected(connID string) {
	m.commands <- adminJoinCmd{connID: connID}
}

func (m *Manager) StartWarmup() error {
	reply := make(chan error, 1)
	m.commands <- startWarmupCmd{reply: reply}
	return <-reply
}

func (m *Manager) StartRound(round int) error {
	reply := make(chan error, 1)
	m.commands <- startRoundCmd{round: round, reply: reply}
	return <-reply
}

func (m *Manager) EndRound() error {
	reply := make(chan error, 1)
	m.commands <- endRoundCmd{reply: reply}
	return <-reply
}

func (m *Manager) StartQuiz(questions []domain.Question) error {
	reply := make(chan error, 1)
	m.commands <- startQuizCmd{questions: questions, reply: reply}
	return <-reply
}

func (m *Manager) NextQuestion(q *domain.Question) error {
	reply := make(chan error, 1)
	m.commands <- nextQuestionCmd{question: q, reply: reply}
	return <-reply
}

func (m *Manager) UpdateSettings(patch domain.SettingsPatch) error {
	reply := make(chan error, 1)
	m.commands <- updateSettingsCmd{patch: patch, reply: reply}
	return <-reply
}

func (m *Manager) ShowLeaderboard() error {
	reply := make(chan error, 1)
	m.commands <- showLeaderboardCmd{reply: reply}
	return <-reply
}

func (m *Manager) Reset() error {
	reply := make(chan error, 1)
	m.commands <- resetCmd{reply: reply}
	return <-reply
}

func (m *Manager) Status() Status {
	reply := make(chan Status, 1)
	m.commands <- statusCmd{reply: reply}
	return <-reply
}

// --- inbound dispatch ---

func (m *Manager) handleInbound(c *ws.Client, raw []byte) {
	var in ws.Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		m.sendError(c.ID, "malformed message")
		return
	}

	switch in.Type {
	case ws.MsgJoin:
		var p ws.JoinPayload
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			m.sendError(c.ID, "malformed join payload")
			return
		}
		m.handleJoin(c, p)
	case ws.MsgAction:
		var p ws.ActionPayload
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			return
		}
		m.handleAction(c.ID, p)
	case ws.MsgAnswer:
		var p ws.AnswerPayload
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			return
		}
		m.handleAnswer(c.ID, p)
	default:
		m.sendError(c.ID, "unknown message type")
	}
}

func (m *Manager) sendError(connID, msg string) {
	m.sink.SendTo(connID, ws.Message{Type: ws.MsgError, Payload: ErrorPayload{Message: msg}})
}

// --- session registry operations ---

func (m *Manager) handleJoin(c *ws.Client, p ws.JoinPayload) {
	teamID := m.assignTeam(p.Team)
	out, err := m.registry.Join(c.ID, p.EmployeeID, p.Token, teamID, m.clock.Now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrIdentityConflict):
			m.sendError(c.ID, "this employee id is already playing on another device")
		default:
			m.sendError(c.ID, err.Error())
		}
		return
	}

	player := out.Player
	team := m.teamsByID[player.TeamID]
	if team == nil {
		// Team vanished across a restore with a different TEAM_COUNT;
		// fold the player into the least-loaded team.
		player.TeamID = m.assignTeam("")
		team = m.teamsByID[player.TeamID]
	}

	if out.EvictedConn != "" {
		// Notify-then-close the superseded connection before the new
		// one is fully admitted; its later disconnect resolves stale.
		m.sink.SendTo(out.EvictedConn, ws.Message{
			Type:    ws.MsgKicked,
			Payload: KickedPayload{Reason: "signed in from another device"},
		})
		m.sink.CloseConn(out.EvictedConn)
		delete(team.Members, out.EvictedConn)
		metrics.Evictions.Inc()
		logger.Info("evicted superseded connection",
			"employee_id", player.EmployeeID, "old_conn", out.EvictedConn, "new_conn", c.ID)
	}

	team.Members[c.ID] = struct{}{}
	m.sink.JoinGroup(ws.GroupPlayers, c.ID)
	m.sink.JoinGroup(ws.TeamGroup(team.ID), c.ID)

	m.sink.SendTo(c.ID, ws.Message{
		Type: ws.MsgJoined,
		Payload: JoinedPayload{
			Player:      player.Summary(),
			Team:        team.Summary(),
			GameState:   m.state,
			Token:       player.SessionToken,
			IsReconnect: out.Reconnect,
		},
	})
	m.broadcastPlayerCount()

	logger.Info("player joined",
		"employee_id", player.EmployeeID, "team", team.ID, "reconnect", out.Reconnect)
}

// assignTeam honors a valid preference, otherwise picks the team with
// the fewest members, ties by lowest ordinal.
func (m *Manager) assignTeam(preference string) string {
	if _, ok := m.teamsByID[preference]; ok {
		return preference
	}
	best := m.teams[0]
	for _, t := range m.teams[1:] {
		if len(t.Members) < len(best.Members) {
			best = t
		}
	}
	return best.ID
}

func (m *Manager) handleDisconnect(c *ws.Client) {
	if c.Role != ws.RolePlayer {
		return
	}
	p := m.registry.Disconnect(c.ID, m.clock.Now())
	if p == nil {
		return
	}
	if team, ok := m.teamsByID[p.TeamID]; ok {
		delete(team.Members, c.ID)
	}
	m.broadcastPlayerCount()
	logger.Info("player disconnected", "employee_id", p.EmployeeID)
}

func (m *Manager) handleScreenJoin(connID string) {
	m.sink.JoinGroup(ws.GroupScreens, connID)
	m.sink.SendTo(connID, ws.Message{
		Type: ws.MsgScreenInit,
		Payload: ScreenInitPayload{
			GameState:   m.state,
			Teams:       m.teamSummaries(),
			PlayerCount: m.registry.OnlineCount(),
		},
	})
}

func (m *Manager) handleAdminJoin(connID string) {
	m.sink.JoinGroup(ws.GroupAdmins, connID)
	players := m.registry.Players()
	summaries := make([]domain.PlayerSummary, 0, len(players))
	for _, p := range players {
		summaries = append(summaries, p.Summary())
	}
	m.sink.SendTo(connID, ws.Message{
		Type: ws.MsgAdminInit,
		Payload: AdminInitPayload{
			GameState:   m.state,
			Settings:    m.settings,
			Teams:       m.teamSummaries(),
			Players:     summaries,
			PlayerCount: m.registry.OnlineCount(),
		},
	})
}

// --- round engine operations ---

func (m *Manager) startWarmup() error {
	if m.state.IsRunning {
		return domain.ErrAlreadyRunning
	}
	m.state.Phase = domain.PhaseWarmup
	m.broadcastAll(ws.Message{
		Type:    ws.MsgWarmupStart,
		Payload: WarmupStartPayload{SensorCheck: true},
	})
	return nil
}

func (m *Manager) startRound(round int) error {
	if round < 1 || round > domain.RoundCount {
		return domain.ErrUnknownRound
	}
	if m.state.IsRunning {
		return domain.ErrAlreadyRunning
	}

	for _, t := range m.teams {
		resetRoundScore(t, round)
	}
	for _, p := range m.registry.Players() {
		if round == 2 {
			p.Round2Score = 0
		} else {
			p.Round1Score = 0
		}
		p.TotalScore = p.Round1Score + p.Round2Score
	}

	now := m.clock.Now()
	m.generation++
	m.race = newRaceRound(round, m.generation, m.settings, now)
	m.quiz = nil

	m.state.Phase = domain.PhaseRoundActive
	m.state.CurrentRound = round
	m.state.IsRunning = true
	m.state.StartTime = &now

	m.broadcastAll(ws.Message{
		Type: ws.MsgRoundStart,
		Payload: RoundStartPayload{
			Round:     round,
			Target:    m.race.target,
			StartedAt: now,
		},
	})
	logger.Info("round started", "round", round, "target", m.race.target)
	return nil
}

func resetRoundScore(t *domain.Team, round int) {
	if round == 2 {
		t.Round2Score = 0
	} else {
		t.Round1Score = 0
	}
	t.TotalScore = t.Round1Score + t.Round2Score
	t.FinishedAt = nil
}

func (m *Manager) handleAction(connID string, act ws.ActionPayload) {
	if m.race == nil || !m.state.IsRunning {
		return
	}
	p := m.registry.Resolve(connID)
	if p == nil {
		return
	}
	team, ok := m.teamsByID[p.TeamID]
	if !ok {
		return
	}

	increment := m.race.scoreAction(p, team, act, m.settings, m.clock.Now())
	if increment == 0 {
		return
	}
	metrics.ActionsProcessed.WithLabelValues(act.Kind).Inc()

	// Private acknowledgment to the acting connection only.
	m.sink.SendTo(connID, ws.Message{
		Type: ws.MsgScore,
		Payload: ScorePayload{
			Round:     m.race.number,
			Score:     p.RoundScore(m.race.number),
			Total:     p.TotalScore,
			Increment: increment,
		},
	})
}

// onTick recomputes derived telemetry and checks for bonus crossings
// and completion. Only meaningful while a race is active.
func (m *Manager) onTick() {
	if m.race == nil || !m.state.IsRunning {
		return
	}
	if m.race.generation != m.generation {
		// Stale round, its state is already gone.
		m.race = nil
		return
	}

	for _, stage := range m.race.advanceBonus(m.teams) {
		mode := bonusModes[len(bonusModes)-1]
		if stage < len(bonusModes) {
			mode = bonusModes[stage]
		}
		msg := ws.Message{
			Type: ws.MsgBonusChange,
			Payload: BonusChangePayload{
				Round: m.race.number,
				Stage: stage,
				Mode:  mode,
			},
		}
		m.sink.Broadcast(ws.GroupPlayers, msg)
		m.sink.Broadcast(ws.GroupScreens, msg)
		logger.Info("bonus stage advanced", "round", m.race.number, "stage", stage)
	}

	m.sink.Broadcast(ws.GroupScreens, ws.Message{
		Type: ws.MsgRaceUpdate,
		Payload: RaceUpdatePayload{
			Round: m.race.number,
			Teams: m.race.progress(m.teams, m.settings.TrackDivisions),
		},
	})

	if m.race.complete(m.teams) {
		if err := m.endRound(false); err != nil {
			logger.Error("round completion failed", "err", err)
		}
	}
}

func (m *Manager) endRound(forced bool) error {
	if m.race == nil || !m.state.IsRunning {
		return domain.ErrNotRunning
	}

	round := m.race.number
	end := RoundEndPayload{
		Round:       round,
		Teams:       m.race.rankTeams(m.teams),
		Leaderboard: m.race.leaderboard(m.registry.Players(), m.settings.LeaderboardSize),
		Winner:      m.race.winner(m.teams).Summary(),
	}
	m.lastRoundEnd = &end

	m.generation++
	m.race = nil
	m.state.IsRunning = false
	if round >= domain.RoundCount {
		m.state.Phase = domain.PhaseFinished
	} else {
		m.state.Phase = domain.PhaseRoundResult
	}

	m.broadcastAll(ws.Message{Type: ws.MsgRoundEnd, Payload: end})
	if m.snap != nil {
		m.snap.Enqueue(m.buildSnapshot())
	}
	logger.Info("round ended", "round", round, "forced", forced, "winner", end.Winner.ID)
	return nil
}

// --- quiz operations ---

func (m *Manager) startQuiz(questions []domain.Question) error {
	if m.state.IsRunning {
		return domain.ErrAlreadyRunning
	}
	if len(questions) == 0 {
		questions = m.questions
	}

	for _, t := range m.teams {
		t.Power = quizStartingPower
	}
	m.generation++
	m.quiz = newQuizRound(m.generation, questions)
	m.race = nil
	m.state.Phase = domain.PhaseQuiz
	m.state.IsRunning = true

	m.broadcastAll(ws.Message{
		Type: ws.MsgQuizStart,
		Payload: QuizStartPayload{
			TotalQuestions:  len(questions),
			TimePerQuestion: m.settings.QuizQuestionTime,
			Teams:           m.teamSummaries(),
		},
	})
	logger.Info("quiz started", "questions", len(questions))
	return nil
}

func (m *Manager) nextQuestion(override *domain.Question) error {
	if m.quiz == nil || !m.state.IsRunning {
		return domain.ErrNotRunning
	}
	// An unresolved question is revealed before the next one is dealt,
	// so an eager admin cannot skip a payout.
	if m.quiz.current != nil {
		m.reveal(m.quiz.generation, m.quiz.current.ID)
	}

	q := m.quiz.nextQuestion(override)
	if q == nil {
		m.endQuiz()
		return nil
	}

	m.broadcastAll(ws.Message{
		Type: ws.MsgQuizQuestion,
		Payload: QuestionPayload{
			ID:             q.ID,
			Text:           q.Text,
			Options:        q.Options,
			Kind:           q.Kind,
			QuestionNumber: m.quiz.index,
			TotalQuestions: len(m.quiz.questions),
			TimeLimit:      m.settings.QuizQuestionTime,
		},
	})

	gen, qid := m.quiz.generation, q.ID
	m.clock.AfterFunc(time.Duration(m.settings.QuizQuestionTime)*time.Second, func() {
		m.commands <- revealCmd{generation: gen, questionID: qid}
	})
	return nil
}

func (m *Manager) handleAnswer(connID string, ans ws.AnswerPayload) {
	if m.quiz == nil || !m.state.IsRunning {
		return
	}
	p := m.registry.Resolve(connID)
	if p == nil {
		return
	}
	if !m.quiz.recordAnswer(p.EmployeeID, ans.Index, m.clock.Now()) {
		return
	}
	p.LastActiveAt = m.clock.Now()

	m.sink.SendTo(connID, ws.Message{
		Type:    ws.MsgQuizAnswered,
		Payload: AnsweredPayload{Index: ans.Index},
	})
	m.sink.Broadcast(ws.GroupScreens, ws.Message{
		Type: ws.MsgQuizAnswerCount,
		Payload: AnswerCountPayload{
			Answered: len(m.quiz.answers),
			Total:    m.registry.OnlineCount(),
		},
	})
}

// reveal resolves the open question. Generation and question id fence
// the timer: after a reset, quiz end or admin fast-forward the stale
// callback does nothing.
func (m *Manager) reveal(generation uint64, questionID int) {
	if m.quiz == nil || m.quiz.generation != generation {
		return
	}
	q := m.quiz.current
	if q == nil || q.ID != questionID {
		return
	}

	answers := make(map[string]quizAnswer, len(m.quiz.answers))
	for k, v := range m.quiz.answers {
		answers[k] = v
	}

	players := make(map[string]*domain.Player)
	for _, p := range m.registry.Players() {
		players[p.EmployeeID] = p
	}
	votes := m.quiz.resolve(players, m.teamsByID)

	// Private correctness result for everyone who answered.
	for employeeID, a := range answers {
		p, ok := players[employeeID]
		if !ok || p.ConnID == "" {
			continue
		}
		m.sink.SendTo(p.ConnID, ws.Message{
			Type: ws.MsgQuizResult,
			Payload: QuizResultPayload{
				Correct:      a.index == q.CorrectIndex,
				CorrectIndex: q.CorrectIndex,
				YourAnswer:   a.index,
			},
		})
	}

	m.broadcastAll(ws.Message{
		Type: ws.MsgQuizReveal,
		Payload: QuizRevealPayload{
			QuestionID:   q.ID,
			CorrectIndex: q.CorrectIndex,
			Kind:         q.Kind,
			Votes:        votes,
			Teams:        m.teamSummaries(),
		},
	})

	if m.quiz.done() {
		m.endQuiz()
	}
}

func (m *Manager) endQuiz() {
	rankings := rankingsByPower(m.teams)
	m.generation++
	m.quiz = nil
	m.state.IsRunning = false
	m.state.Phase = domain.PhaseRoundResult

	m.broadcastAll(ws.Message{
		Type: ws.MsgQuizEnd,
		Payload: QuizEndPayload{
			Rankings: rankings,
			Winner:   rankings[0],
		},
	})
	if m.snap != nil {
		m.snap.Enqueue(m.buildSnapshot())
	}
	logger.Info("quiz ended", "winner", rankings[0].ID)
}

// --- settings / reset ---

func (m *Manager) updateSettings(patch domain.SettingsPatch) error {
	if m.state.IsRunning {
		return domain.ErrSettingsLocked
	}
	patch.Apply(&m.settings)

	msg := ws.Message{
		Type:    ws.MsgSettingsUpdate,
		Payload: SettingsUpdatePayload{Settings: m.settings},
	}
	m.sink.Broadcast(ws.GroupAdmins, msg)
	m.sink.Broadcast(ws.GroupScreens, msg)
	if m.snap != nil {
		m.snap.Enqueue(m.buildSnapshot())
	}
	return nil
}

func (m *Manager) showLeaderboard() error {
	if m.lastRoundEnd == nil {
		return domain.Validationf("no finished round to show")
	}
	m.sink.Broadcast(ws.GroupScreens, ws.Message{
		Type:    ws.MsgLeaderboardShow,
		Payload: *m.lastRoundEnd,
	})
	return nil
}

func (m *Manager) reset() error {
	oldTeams := m.teams

	m.generation++
	m.race = nil
	m.quiz = nil
	m.lastRoundEnd = nil
	m.registry.Reset()
	m.installTeams(domain.DefaultTeams(len(oldTeams)))
	m.settings = domain.DefaultSettings()
	m.state = domain.GameState{
		GameID: uuid.NewString(),
		Phase:  domain.PhaseWaiting,
	}

	for _, t := range oldTeams {
		m.sink.ClearGroup(ws.TeamGroup(t.ID))
	}

	// Store wipe is fire-and-forget like every other persistence call.
	if m.store != nil {
		go func(store *repository.Store) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Reset(ctx); err != nil {
				logger.Error("store reset failed", "err", err)
			}
		}(m.store)
	}

	m.broadcastAll(ws.Message{
		Type:    ws.MsgGameReset,
		Payload: GameResetPayload{GameID: m.state.GameID},
	})
	logger.Info("game reset", "game_id", m.state.GameID)
	return nil
}

// --- helpers ---

func (m *Manager) status() Status {
	return Status{
		GameState:   m.state,
		Settings:    m.settings,
		Teams:       m.teamSummaries(),
		PlayerCount: len(m.registry.Players()),
		OnlineCount: m.registry.OnlineCount(),
	}
}

func (m *Manager) teamSummaries() []domain.TeamSummary {
	out := make([]domain.TeamSummary, len(m.teams))
	for i, t := range m.teams {
		out[i] = t.Summary()
	}
	return out
}

func (m *Manager) broadcastPlayerCount() {
	m.broadcastAll(ws.Message{
		Type: ws.MsgPlayerCount,
		Payload: PlayerCountPayload{
			Total: m.registry.OnlineCount(),
			Teams: m.teamSummaries(),
		},
	})
}

func (m *Manager) broadcastAll(msg ws.Message) {
	m.sink.Broadcast(ws.GroupPlayers, msg)
	m.sink.Broadcast(ws.GroupScreens, msg)
	m.sink.Broadcast(ws.GroupAdmins, msg)
}

// buildSnapshot deep-copies the mutable aggregates so the snapshot
// worker can marshal them off-thread.
func (m *Manager) buildSnapshot() repository.Snapshot {
	teams := make([]*domain.Team, len(m.teams))
	for i, t := range m.teams {
		tc := *t
		tc.Members = nil
		teams[i] = &tc
	}
	players := m.registry.Players()
	playerCopies := make([]*domain.Player, len(players))
	for i, p := range players {
		pc := *p
		playerCopies[i] = &pc
	}
	return repository.Snapshot{
		GameState: m.state,
		Settings:  m.settings,
		Teams:     teams,
		Players:   playerCopies,
	}
}
