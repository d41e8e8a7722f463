package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/datkingvn/pvoil-sub000/internal/common/gameerr"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefix for Redis
	showKeyPrefix = "show:"

	defaultMaxRetries = 8
)

// envelope is the stored form of every document
type envelope struct {
	Version int64           `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Config holds configuration for the Redis document repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// MaxRetries bounds how often a transaction is re-run after losing a race
	MaxRetries int
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client     *redis.Client
	maxRetries int
}

// NewRedis creates a new Redis-backed document repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	// Validate config
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return &redisRepository{
		client:     cfg.RedisClient,
		maxRetries: maxRetries,
	}, nil
}

// Get reads a document from Redis
func (r *redisRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil || input.Key == "" {
		return nil, errors.New("input and key cannot be empty")
	}

	raw, err := r.client.Get(ctx, input.Key).Result()
	if err != nil {
		if err == redis.Nil {
			return &GetOutput{Found: false}, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}

	if input.Dest != nil {
		if err := json.Unmarshal(env.Data, input.Dest); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document %s: %w", input.Key, err)
		}
	}

	return &GetOutput{Found: true, Version: env.Version}, nil
}

// Transact runs an optimistic WATCH/MULTI/EXEC transaction over the keys.
// Losing a race discards the attempt and runs it again from fresh reads.
func (r *redisRepository) Transact(ctx context.Context, input *TransactInput) error {
	if input == nil || input.Fn == nil {
		return errors.New("input and transaction function cannot be nil")
	}

	if len(input.Keys) == 0 {
		return errors.New("transaction needs at least one key")
	}

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		err := r.client.Watch(ctx, func(rtx *redis.Tx) error {
			tx := newRedisTx(ctx, rtx, input.Keys)

			if err := input.Fn(tx); err != nil {
				return err
			}

			if len(tx.order) == 0 {
				return nil
			}

			_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for _, key := range tx.order {
					pipe.Set(ctx, key, tx.pending[key], 0)
				}
				return nil
			})
			return err
		}, input.Keys...)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		return err
	}

	return gameerr.ErrConcurrentUpdate
}

// Delete removes documents from Redis
func (r *redisRepository) Delete(ctx context.Context, input *DeleteInput) error {
	if input == nil || len(input.Keys) == 0 {
		return errors.New("input and keys cannot be empty")
	}

	if err := r.client.Del(ctx, input.Keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}

	return nil
}

// redisTx buffers writes until the surrounding Watch commits them
type redisTx struct {
	ctx      context.Context
	rtx      *redis.Tx
	allowed  map[string]bool
	versions map[string]int64
	pending  map[string][]byte
	order    []string
}

func newRedisTx(ctx context.Context, rtx *redis.Tx, keys []string) *redisTx {
	allowed := make(map[string]bool, len(keys))
	for _, k := range keys {
		allowed[k] = true
	}

	return &redisTx{
		ctx:      ctx,
		rtx:      rtx,
		allowed:  allowed,
		versions: make(map[string]int64, len(keys)),
		pending:  make(map[string][]byte, len(keys)),
	}
}

// Load reads a watched key, seeing this transaction's own pending writes
func (t *redisTx) Load(key string, dest any) (bool, error) {
	if !t.allowed[key] {
		return false, fmt.Errorf("key %s is not part of the transaction", key)
	}

	if raw, ok := t.pending[key]; ok {
		env, err := decodeEnvelope(string(raw))
		if err != nil {
			return false, err
		}
		return true, json.Unmarshal(env.Data, dest)
	}

	raw, err := t.rtx.Get(t.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			t.versions[key] = 0
			return false, nil
		}
		return false, fmt.Errorf("failed to get document: %w", err)
	}

	env, err := decodeEnvelope(raw)
	if err != nil {
		return false, err
	}
	t.versions[key] = env.Version

	if err := json.Unmarshal(env.Data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal document %s: %w", key, err)
	}

	return true, nil
}

// Store queues a write that bumps the document version by one
func (t *redisTx) Store(key string, value any) error {
	if !t.allowed[key] {
		return fmt.Errorf("key %s is not part of the transaction", key)
	}

	version, seen := t.versions[key]
	if !seen {
		raw, err := t.rtx.Get(t.ctx, key).Result()
		switch {
		case err == redis.Nil:
			version = 0
		case err != nil:
			return fmt.Errorf("failed to get document: %w", err)
		default:
			env, err := decodeEnvelope(raw)
			if err != nil {
				return err
			}
			version = env.Version
		}
		t.versions[key] = version
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", key, err)
	}

	body, err := json.Marshal(envelope{Version: version + 1, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope %s: %w", key, err)
	}

	if _, ok := t.pending[key]; !ok {
		t.order = append(t.order, key)
	}
	t.pending[key] = body

	return nil
}

func decodeEnvelope(raw string) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	return &env, nil
}
