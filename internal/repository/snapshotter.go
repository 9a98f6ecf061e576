package repository

import (
	"context"
	"time"

	"gala_server/internal/domain"
	"gala_server/internal/logger"
	"gala_server/internal/metrics"
)

// Snapshot is a point-in-time copy of the mutable game state.
type Snapshot struct {
	GameState domain.GameState
	Settings  domain.Settings
	Teams     []*domain.Team
	Players   []*domain.Player
}

// Snapshotter drains snapshots onto the store from its own goroutine
// so persistence never blocks game-affecting operations. The queue is
// latest-wins: an enqueue while the worker is busy replaces the
// pending snapshot instead of backing up.
type Snapshotter struct {
	store *Store
	queue chan Snapshot
	done  chan struct{}
}

func NewSnapshotter(store *Store) *Snapshotter {
	s := &Snapshotter{
		store: store,
		queue: make(chan Snapshot, 1),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

// Enqueue schedules a snapshot for writing. Never blocks: if one is
// already pending it is replaced. A dropped write is retried on the
// next snapshot tick anyway.
func (s *Snapshotter) Enqueue(snap Snapshot) {
	for {
		select {
		case s.queue <- snap:
			return
		default:
		}
		select {
		case <-s.queue:
		default:
		}
	}
}

func (s *Snapshotter) run() {
	for snap := range s.queue {
		s.write(snap)
	}
	close(s.done)
}

func (s *Snapshotter) write(snap Snapshot) {
	if !s.store.Available() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.SaveGameState(ctx, snap.GameState); err != nil {
		s.fail("gameState", err)
		return
	}
	if err := s.store.SaveSettings(ctx, snap.Settings); err != nil {
		s.fail("settings", err)
		return
	}
	if err := s.store.SaveTeams(ctx, snap.Teams); err != nil {
		s.fail("teams", err)
		return
	}
	if err := s.store.SavePlayers(ctx, snap.Players); err != nil {
		s.fail("players", err)
		return
	}
}

func (s *Snapshotter) fail(what string, err error) {
	metrics.SnapshotFailures.Inc()
	logger.Error("snapshot write failed", "what", what, "err", err)
}

// Close stops the worker after the pending snapshot, if any, is written.
func (s *Snapshotter) Close() {
	close(s.queue)
	<-s.done
}
