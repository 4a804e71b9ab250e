package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/wricardo/hospital-run/game/engine"
)

const (
	defaultKeyPrefix  = "hospital:"
	defaultMaxEntries = 1000

	// Key suffixes: {prefix}results is a list of JSON results, newest at the
	// head; {prefix}stats is a hash of per-config counters.
	resultsKey = "results"
	statsKey   = "stats"
)

// RedisConfig configures a RedisStore
type RedisConfig struct {
	Client redis.UniversalClient
	// KeyPrefix namespaces every key, default "hospital:".
	KeyPrefix string
	// MaxEntries caps the result list; counters are never trimmed.
	MaxEntries int64
}

// Validate ensures all required dependencies are provided
func (c *RedisConfig) Validate() error {
	if c == nil || c.Client == nil {
		return errors.New("redis client is required")
	}
	return nil
}

// RedisStore keeps results in Redis so they survive server restarts and
// are shared between instances.
type RedisStore struct {
	client     redis.UniversalClient
	prefix     string
	maxEntries int64
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a store on an existing client
func NewRedisStore(cfg *RedisConfig) (*RedisStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}

	return &RedisStore{
		client:     cfg.Client,
		prefix:     prefix,
		maxEntries: maxEntries,
	}, nil
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

// counter field names are "<config>|<outcome>"
func counterField(configID string, outcome engine.Status) string {
	return configID + "|" + string(outcome)
}

// Record pushes the result onto the list and bumps its counter atomically
func (s *RedisStore) Record(ctx context.Context, r Result) error {
	if err := validate(r); err != nil {
		return err
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.key(resultsKey), data)
		pipe.LTrim(ctx, s.key(resultsKey), 0, s.maxEntries-1)
		pipe.HIncrBy(ctx, s.key(statsKey), counterField(r.ConfigID, r.Outcome), 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record result in Redis: %w", err)
	}
	return nil
}

// List returns up to limit results, newest first
func (s *RedisStore) List(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	raw, err := s.client.LRange(ctx, s.key(resultsKey), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list results from Redis: %w", err)
	}

	out := make([]Result, 0, len(raw))
	for _, item := range raw {
		var r Result
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Summary reads the counters hash
func (s *RedisStore) Summary(ctx context.Context) (*Summary, error) {
	counters, err := s.client.HGetAll(ctx, s.key(statsKey)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stats from Redis: %w", err)
	}

	summary := &Summary{}
	for field, value := range counters {
		idx := strings.LastIndex(field, "|")
		if idx < 0 {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("bad counter %q: %w", field, err)
		}
		summary.add(field[:idx], engine.Status(field[idx+1:]), n)
	}
	summary.finish()
	return summary, nil
}
