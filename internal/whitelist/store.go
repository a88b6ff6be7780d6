package whitelist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"povcat/internal/fileutil"
)

// Snapshot is a persisted whitelist and when it was fetched.
type Snapshot struct {
	Whitelist *Whitelist
	FetchedAt time.Time
}

// Store persists whitelist snapshots between runs.
type Store interface {
	// Load returns the last snapshot. ok is false when none exists.
	Load(ctx context.Context) (snapshot Snapshot, ok bool, err error)
	Save(ctx context.Context, snapshot Snapshot) error
}

// FileStore keeps the snapshot as a JSON object of nickname → team|null.
// Freshness is taken from the file modification time.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(context.Context) (Snapshot, bool, error) {
	data, modTime, ok, err := fileutil.ReadFileIfExists(s.path)
	if err != nil || !ok {
		return Snapshot{}, false, err
	}
	var players map[string]*string
	if err := json.Unmarshal(data, &players); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode whitelist %s: %w", s.path, err)
	}
	return Snapshot{Whitelist: fromPlayers(players), FetchedAt: modTime.UTC()}, true, nil
}

func (s *FileStore) Save(_ context.Context, snapshot Snapshot) error {
	data, err := json.MarshalIndent(snapshot.Whitelist.players(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode whitelist: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write whitelist: %w", err)
	}
	if !snapshot.FetchedAt.IsZero() {
		if err := os.Chtimes(s.path, snapshot.FetchedAt, snapshot.FetchedAt); err != nil {
			return fmt.Errorf("stamp whitelist: %w", err)
		}
	}
	return nil
}

// RedisStore keeps the snapshot under one key so several hosts share it.
// The key carries no expiry; freshness is decided from fetched_at.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

var _ Store = (*RedisStore)(nil)

type redisPayload struct {
	FetchedAt time.Time          `json:"fetched_at"`
	Players   map[string]*string `json:"players"`
}

// NewRedisStore returns a store using client and key.
func NewRedisStore(client redis.Cmdable, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (Snapshot, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	var payload redisPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode whitelist %s: %w", s.key, err)
	}
	return Snapshot{Whitelist: fromPlayers(payload.Players), FetchedAt: payload.FetchedAt.UTC()}, true, nil
}

func (s *RedisStore) Save(ctx context.Context, snapshot Snapshot) error {
	data, err := json.Marshal(redisPayload{FetchedAt: snapshot.FetchedAt.UTC(), Players: snapshot.Whitelist.players()})
	if err != nil {
		return fmt.Errorf("encode whitelist: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}
