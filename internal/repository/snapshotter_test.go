package repository

import (
	"context"
	"testing"
	"time"

	"gala_server/internal/domain"
)

func TestSnapshotterNeverBlocks(t *testing.T) {
	snap := NewSnapshotter(NewStore(""))
	defer snap.Close()

	// Far more enqueues than the queue holds; latest-wins must absorb
	// them all without blocking the caller.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			snap.Enqueue(Snapshot{GameState: domain.GameState{CurrentRound: i}})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Enqueue blocked")
	}
}

func TestSnapshotterCloseDrains(t *testing.T) {
	snap := NewSnapshotter(NewStore(""))
	snap.Enqueue(Snapshot{})
	// Close must return once the worker is finished, not hang.
	finished := make(chan struct{})
	go func() {
		snap.Close()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("Close hung")
	}
}

func TestSnapshotterWritesLatest(t *testing.T) {
	s := testStore(t)
	snap := NewSnapshotter(s)

	snap.Enqueue(Snapshot{
		GameState: domain.GameState{GameID: "snap-test", CurrentRound: 2},
		Settings:  domain.DefaultSettings(),
	})
	snap.Close()

	gs, err := s.LoadGameState(context.Background())
	if err != nil || gs == nil {
		t.Fatalf("load after snapshot: %v, %v", gs, err)
	}
	if gs.GameID != "snap-test" || gs.CurrentRound != 2 {
		t.Fatalf("snapshot content = %+v", gs)
	}
}
