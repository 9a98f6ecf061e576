package game

import (
	"errors"
	"testing"
	"time"

	"gala_server/internal/domain"
)

func TestRegistryJoinFresh(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	out, err := r.Join("conn1", "  E001 ", "", "team1", now)
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if out.Reconnect {
		t.Fatal("fresh join reported as reconnect")
	}
	p := out.Player
	if p.EmployeeID != "e001" {
		t.Fatalf("identity not normalized: %q", p.EmployeeID)
	}
	if p.SessionToken == "" {
		t.Fatal("no session token minted")
	}
	if !p.IsOnline || p.ConnID != "conn1" {
		t.Fatal("player not bound to connection")
	}
	if got := r.Resolve("conn1"); got != p {
		t.Fatal("Resolve did not return the player")
	}
}

func TestRegistryJoinRequiresIdentity(t *testing.T) {
	r := NewRegistry()

	_, err := r.Join("conn1", "   ", "", "team1", time.Now())
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	if len(r.Players()) != 0 {
		t.Fatal("rejected join mutated state")
	}
}

func TestRegistryIdentityConflict(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	if _, err := r.Join("conn1", "E001", "", "team1", now); err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	// Same identity, different case and whitespace, no token.
	_, err := r.Join("conn2", " e001", "", "team2", now)
	if !errors.Is(err, domain.ErrIdentityConflict) {
		t.Fatalf("want ErrIdentityConflict, got %v", err)
	}
	// The conflict holds even after the original disconnects: the
	// record is retained for reconnection, not surrendered.
	r.Disconnect("conn1", now)
	_, err = r.Join("conn3", "E001", "", "team1", now)
	if !errors.Is(err, domain.ErrIdentityConflict) {
		t.Fatalf("want ErrIdentityConflict after disconnect, got %v", err)
	}
}

func TestRegistryReconnectEvicts(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	out, err := r.Join("conn1", "E001", "", "team1", now)
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	p := out.Player
	p.AddRoundScore(1, 40)
	p.AddRoundScore(2, 7)
	token := p.SessionToken

	out2, err := r.Join("conn2", "", token, "", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("reconnect failed: %v", err)
	}
	if !out2.Reconnect {
		t.Fatal("token join not treated as reconnect")
	}
	if out2.EvictedConn != "conn1" {
		t.Fatalf("want eviction of conn1, got %q", out2.EvictedConn)
	}
	if out2.Player != p {
		t.Fatal("reconnect created a new record")
	}
	if p.Round1Score != 40 || p.Round2Score != 7 || p.TotalScore != 47 {
		t.Fatalf("scores not preserved across reconnect: %d/%d/%d",
			p.Round1Score, p.Round2Score, p.TotalScore)
	}
	if r.Resolve("conn1") != nil {
		t.Fatal("old connection still bound")
	}
	if r.Resolve("conn2") != p {
		t.Fatal("new connection not bound")
	}
}

func TestRegistryReconnectOffline(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	out, _ := r.Join("conn1", "E001", "", "team1", now)
	token := out.Player.SessionToken
	r.Disconnect("conn1", now)

	out2, err := r.Join("conn2", "", token, "", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("reconnect failed: %v", err)
	}
	if out2.EvictedConn != "" {
		t.Fatalf("offline reconnect should not evict, got %q", out2.EvictedConn)
	}
	if !out2.Player.IsOnline || out2.Player.DisconnectedAt != nil {
		t.Fatal("player not marked online again")
	}
}

func TestRegistryStaleDisconnect(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	out, _ := r.Join("conn1", "E001", "", "team1", now)
	token := out.Player.SessionToken
	r.Join("conn2", "", token, "", now)

	// The evicted connection's disconnect arrives late; it must not
	// knock the new connection offline.
	if p := r.Disconnect("conn1", now.Add(time.Second)); p != nil {
		t.Fatal("stale disconnect affected the player")
	}
	if !out.Player.IsOnline {
		t.Fatal("player knocked offline by stale disconnect")
	}
}

func TestRegistryDisconnectRetainsRecord(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	r.Join("conn1", "E001", "", "team1", now)
	p := r.Disconnect("conn1", now.Add(time.Minute))
	if p == nil {
		t.Fatal("disconnect did not resolve the player")
	}
	if p.IsOnline || p.ConnID != "" {
		t.Fatal("player still marked online")
	}
	if p.DisconnectedAt == nil {
		t.Fatal("DisconnectedAt not recorded")
	}
	if len(r.Players()) != 1 {
		t.Fatal("durable record was dropped")
	}
}

func TestRegistryResetInvalidatesTokens(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	out, _ := r.Join("conn1", "E001", "", "team1", now)
	token := out.Player.SessionToken
	r.Reset()

	// A pre-reset token must behave like a fresh, tokenless join: the
	// identity is required again.
	_, err := r.Join("conn2", "", token, "team1", now)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("pre-reset token not treated as fresh join, got %v", err)
	}

	out2, err := r.Join("conn2", "E001", token, "team1", now)
	if err != nil {
		t.Fatalf("fresh join after reset failed: %v", err)
	}
	if out2.Reconnect {
		t.Fatal("pre-reset token resumed a session")
	}
	if out2.Player.SessionToken == token {
		t.Fatal("old token was re-issued")
	}
	if out2.Player.Round1Score != 0 {
		t.Fatal("score leaked across reset")
	}
}

func TestRegistryRehydrate(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	restored := map[string]*domain.Player{
		"e001": {
			EmployeeID:   "e001",
			SessionToken: "tok-1",
			TeamID:       "team1",
			Round1Score:  33,
			TotalScore:   33,
			JoinedAt:     now,
		},
	}
	r.Rehydrate(restored)

	out, err := r.Join("conn1", "", "tok-1", "", now)
	if err != nil {
		t.Fatalf("reconnect after rehydrate failed: %v", err)
	}
	if !out.Reconnect || out.Player.Round1Score != 33 {
		t.Fatal("restored session not resumable")
	}
}
