package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/hoops-edge/pkg/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultSnapshotTTL bounds how stale a cached slate may be.
const DefaultSnapshotTTL = 15 * time.Minute

// SnapshotCache stores the last fetched slate in Redis so repeated runs do
// not spend provider quota. Redis failures degrade to a direct fetch.
type SnapshotCache struct {
	next   Feed
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// SnapshotConfig holds configuration for the snapshot cache.
type SnapshotConfig struct {
	Client    *redis.Client
	Sport     string
	Bookmaker string
	TTL       time.Duration
	Now       func() time.Time
	Logger    *zap.Logger
}

// NewSnapshotCache wraps next. The cache key is scoped to sport, bookmaker
// and the current UTC date.
func NewSnapshotCache(next Feed, cfg SnapshotConfig) *SnapshotCache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSnapshotTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &SnapshotCache{
		next:   next,
		client: cfg.Client,
		key:    SnapshotKey(cfg.Sport, cfg.Bookmaker, cfg.Now()),
		ttl:    cfg.TTL,
		logger: cfg.Logger,
	}
}

// SnapshotKey returns the Redis key for a slate snapshot.
func SnapshotKey(sport, bookmaker string, day time.Time) string {
	return fmt.Sprintf("hoopsedge:odds:%s:%s:%s", sport, bookmaker, day.UTC().Format("2006-01-02"))
}

// Games implements Feed.
func (s *SnapshotCache) Games(ctx context.Context) ([]types.Game, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	switch {
	case err == nil:
		var games []types.Game
		if jsonErr := json.Unmarshal(data, &games); jsonErr == nil {
			SnapshotCacheTotal.WithLabelValues("hit").Inc()
			s.logger.Debug("slate-snapshot-hit", zap.String("key", s.key), zap.Int("games", len(games)))
			return games, nil
		}
		s.logger.Warn("slate-snapshot-corrupt", zap.String("key", s.key))
		SnapshotCacheTotal.WithLabelValues("corrupt").Inc()
	case errors.Is(err, redis.Nil):
		SnapshotCacheTotal.WithLabelValues("miss").Inc()
	default:
		SnapshotCacheTotal.WithLabelValues("error").Inc()
		s.logger.Warn("slate-snapshot-read-failed", zap.String("key", s.key), zap.Error(err))
	}

	games, err := s.next.Games(ctx)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(games)
	if err != nil {
		return games, nil
	}
	err = s.client.Set(ctx, s.key, data, s.ttl).Err()
	if err != nil {
		s.logger.Warn("slate-snapshot-write-failed", zap.String("key", s.key), zap.Error(err))
	}
	return games, nil
}

// Invalidate drops the cached snapshot.
func (s *SnapshotCache) Invalidate(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
