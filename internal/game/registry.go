package game

import (
	"time"

	"gala_server/internal/domain"

	"github.com/google/uuid"
)

// Registry maps durable identities to player records and arbitrates
// duplicate logins. One arena of player records, two indices: the
// employee id owns the record, the connection id is a weak rebindable
// back-reference.
type Registry struct {
	players map[string]*domain.Player // employee id -> record
	byConn  map[string]string         // conn id -> employee id
	tokens  map[string]string         // session token -> employee id
}

func NewRegistry() *Registry {
	return &Registry{
		players: make(map[string]*domain.Player),
		byConn:  make(map[string]string),
		tokens:  make(map[string]string),
	}
}

// JoinOutcome describes an accepted join.
type JoinOutcome struct {
	Player    *domain.Player
	Reconnect bool
	// EvictedConn is the superseded live connection for a reconnect,
	// empty when the identity was offline.
	EvictedConn string
}

// Join admits a connection. A valid token means reconnect: the record
// is re-pointed to connID and any live connection for the identity is
// reported for eviction. Without a token the identity must be new for
// the current game; teamID is only consulted on this fresh-join path.
func (r *Registry) Join(connID, employeeID, token, teamID string, now time.Time) (*JoinOutcome, error) {
	if token != "" {
		if id, ok := r.tokens[token]; ok {
			p := r.players[id]
			return r.reconnect(p, connID, now), nil
		}
		// A token from before a reset is dead: fall through and treat
		// this as a fresh, tokenless join.
	}

	id := domain.NormalizeEmployeeID(employeeID)
	if id == "" {
		return nil, domain.Validationf("employee id is required")
	}
	if _, exists := r.players[id]; exists {
		return nil, domain.ErrIdentityConflict
	}

	p := &domain.Player{
		ConnID:       connID,
		EmployeeID:   id,
		SessionToken: uuid.NewString(),
		TeamID:       teamID,
		IsOnline:     true,
		JoinedAt:     now,
		LastActiveAt: now,
	}
	r.players[id] = p
	r.byConn[connID] = id
	r.tokens[p.SessionToken] = id

	return &JoinOutcome{Player: p}, nil
}

func (r *Registry) reconnect(p *domain.Player, connID string, now time.Time) *JoinOutcome {
	out := &JoinOutcome{Player: p, Reconnect: true}
	if p.IsOnline && p.ConnID != "" && p.ConnID != connID {
		out.EvictedConn = p.ConnID
	}
	if p.ConnID != "" {
		delete(r.byConn, p.ConnID)
	}
	p.ConnID = connID
	p.IsOnline = true
	p.LastActiveAt = now
	p.DisconnectedAt = nil
	r.byConn[connID] = p.EmployeeID
	return out
}

// Resolve returns the player bound to a live connection, nil if none.
func (r *Registry) Resolve(connID string) *domain.Player {
	if id, ok := r.byConn[connID]; ok {
		return r.players[id]
	}
	return nil
}

// Disconnect unbinds a connection and marks its player offline. The
// durable record stays so the player can reconnect later. Returns nil
// when the connection had no player (already evicted, or a screen).
func (r *Registry) Disconnect(connID string, now time.Time) *domain.Player {
	id, ok := r.byConn[connID]
	if !ok {
		return nil
	}
	delete(r.byConn, connID)
	p := r.players[id]
	// A stale disconnect for a connection that was superseded must not
	// knock the new connection offline.
	if p.ConnID != connID {
		return nil
	}
	p.ConnID = ""
	p.IsOnline = false
	t := now
	p.DisconnectedAt = &t
	return p
}

// Players returns every registered record, online or not.
func (r *Registry) Players() []*domain.Player {
	out := make([]*domain.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	return out
}

func (r *Registry) OnlineCount() int {
	return len(r.byConn)
}

// Reset drops every player, binding and token. Previously issued
// tokens can never validate again.
func (r *Registry) Reset() {
	r.players = make(map[string]*domain.Player)
	r.byConn = make(map[string]string)
	r.tokens = make(map[string]string)
}

// Rehydrate installs players restored from the store. Tokens are
// re-registered so sessions survive a process restart; connection
// bindings are not, no socket survives a restart.
func (r *Registry) Rehydrate(players map[string]*domain.Player) {
	for id, p := range players {
		r.players[id] = p
		if p.SessionToken != "" {
			r.tokens[p.SessionToken] = id
		}
	}
}
