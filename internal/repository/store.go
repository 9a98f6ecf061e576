package repository

import (
	"context"
	"encoding/json"
	"time"

	"gala_server/internal/domain"
	"gala_server/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

const keyPrefix = "gala:"

// Store persists game state to Redis under a namespace prefix.
// Persistence is best-effort: when Redis is unreachable the store
// degrades to a no-op and the game runs in-memory only.
type Store struct {
	rdb    *redis.Client
	prefix string
}

// NewStore connects to Redis at url (redis://...). An empty url or a
// failed ping returns a disabled store, never an error.
func NewStore(url string) *Store {
	s := &Store{prefix: keyPrefix}
	if url == "" {
		logger.Info("redis not configured, running without persistence")
		return s
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Error("invalid REDIS_URL, running without persistence", "err", err)
		return s
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("redis ping failed, running without persistence", "err", err)
		_ = client.Close()
		return s
	}

	s.rdb = client
	logger.Info("redis connected")
	return s
}

// Available reports whether the store has a live Redis client.
func (s *Store) Available() bool {
	return s != nil && s.rdb != nil
}

// Client exposes the underlying Redis client for collaborators that
// share the connection (e.g. the admin rate limiter). Nil when the
// store is disabled.
func (s *Store) Client() *redis.Client {
	if s == nil {
		return nil
	}
	return s.rdb
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

func (s *Store) SaveGameState(ctx context.Context, gs domain.GameState) error {
	if !s.Available() {
		return nil
	}
	data, err := json.Marshal(gs)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key("gameState"), data, 0).Err()
}

func (s *Store) LoadGameState(ctx context.Context) (*domain.GameState, error) {
	if !s.Available() {
		return nil, nil
	}
	data, err := s.rdb.Get(ctx, s.key("gameState")).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var gs domain.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, err
	}
	return &gs, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings domain.Settings) error {
	if !s.Available() {
		return nil
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key("settings"), data, 0).Err()
}

func (s *Store) LoadSettings(ctx context.Context) (*domain.Settings, error) {
	if !s.Available() {
		return nil, nil
	}
	data, err := s.rdb.Get(ctx, s.key("settings")).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var settings domain.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveTeams writes all teams as a hash keyed by team id. Live
// connection ids are not persisted.
func (s *Store) SaveTeams(ctx context.Context, teams []*domain.Team) error {
	if !s.Available() || len(teams) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(teams))
	for _, t := range teams {
		stripped := *t
		stripped.Members = nil
		data, err := json.Marshal(&stripped)
		if err != nil {
			return err
		}
		fields[t.ID] = data
	}
	return s.rdb.HSet(ctx, s.key("teams"), fields).Err()
}

func (s *Store) LoadTeams(ctx context.Context) (map[string]*domain.Team, error) {
	if !s.Available() {
		return nil, nil
	}
	raw, err := s.rdb.HGetAll(ctx, s.key("teams")).Result()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	teams := make(map[string]*domain.Team, len(raw))
	for id, data := range raw {
		var t domain.Team
		if err := json.Unmarshal([]byte(data), &t); err != nil {
			return nil, err
		}
		t.Members = make(map[string]struct{})
		teams[id] = &t
	}
	return teams, nil
}

// SavePlayers writes all players as a hash keyed by employee id.
func (s *Store) SavePlayers(ctx context.Context, players []*domain.Player) error {
	if !s.Available() || len(players) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(players))
	for _, p := range players {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		fields[p.EmployeeID] = data
	}
	return s.rdb.HSet(ctx, s.key("players"), fields).Err()
}

// LoadPlayers rehydrates the player arena. No connection survives a
// restart, so every player comes back offline with ConnID cleared.
func (s *Store) LoadPlayers(ctx context.Context) (map[string]*domain.Player, error) {
	if !s.Available() {
		return nil, nil
	}
	raw, err := s.rdb.HGetAll(ctx, s.key("players")).Result()
	if err != nil {
		return nil, err
	}
	players := make(map[string]*domain.Player, len(raw))
	for id, data := range raw {
		var p domain.Player
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, err
		}
		p.IsOnline = false
		p.ConnID = ""
		players[id] = &p
	}
	return players, nil
}

// Reset deletes every key under the namespace prefix.
func (s *Store) Reset(ctx context.Context) error {
	if !s.Available() {
		return nil
	}
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

func (s *Store) Close() {
	if s.Available() {
		_ = s.rdb.Close()
	}
}
