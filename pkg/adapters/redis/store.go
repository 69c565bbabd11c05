package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/stitch/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "stitch:run:"

// Store implements ports.RequestStore using Redis.
// Each summary is a JSON string at prefix+run+":"+request; a ZSET per run indexes
// the request ids, scored by expiry so List can prune lazily.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for summaries.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(runID, requestID string) string {
	return s.prefix + runID + ":" + requestID
}

func (s *Store) indexKey(runID string) string {
	return s.prefix + runID + ":index"
}

// Save persists the summary and indexes it under its run.
func (s *Store) Save(ctx context.Context, summary *domain.RequestSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	// Score = Now + TTL; far future when summaries never expire.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(summary.RunID, summary.RequestID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(summary.RunID), backend.Z{
		Score:  score,
		Member: summary.RequestID,
	})
	if s.ttl > 0 {
		pipe.Expire(ctx, s.indexKey(summary.RunID), s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves a summary.
func (s *Store) Load(ctx context.Context, runID, requestID string) (*domain.RequestSummary, error) {
	val, err := s.client.Get(ctx, s.key(runID, requestID)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var summary domain.RequestSummary
	if err := json.Unmarshal([]byte(val), &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &summary, nil
}

// Delete removes a summary and its index entry.
func (s *Store) Delete(ctx context.Context, runID, requestID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(runID, requestID))
	pipe.ZRem(ctx, s.indexKey(runID), requestID)

	_, err := pipe.Exec(ctx)
	return err
}

// List prunes expired index entries and returns the remaining request ids, sorted.
func (s *Store) List(ctx context.Context, runID string) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(runID), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired summaries: %w", err)
	}

	// equal scores sort lexicographically by member
	ids, err := s.client.ZRange(ctx, s.indexKey(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
