// internal/remote/redis.go
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
)

// RedisService is the Redis-backed document service client. Each collection
// lives in a hash of JSON documents keyed by id, with creation order kept in a
// companion sorted set and change notifications published on a pub/sub
// channel.
type RedisService struct {
	rdb    *redis.Client
	logger *logrus.Logger

	mu          sync.Mutex
	collections map[string]*redisCollection
}

// NewRedisService connects to the remote document service.
func NewRedisService(cfg *config.Config, logger *logrus.Logger) (*RedisService, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRemoteAddr(),
		Password:     cfg.Remote.Password,
		DB:           cfg.Remote.DB,
		PoolSize:     cfg.Remote.PoolSize,
		MinIdleConns: cfg.Remote.MinIdleConns,

		// Connection timeouts
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		PoolTimeout: 4 * time.Second,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to document service: %w", err)
	}

	logger.Info("document service connection established")

	return &RedisService{
		rdb:         rdb,
		logger:      logger,
		collections: make(map[string]*redisCollection),
	}, nil
}

// NewRedisServiceFromClient wraps an existing client. Used by tests.
func NewRedisServiceFromClient(rdb *redis.Client, logger *logrus.Logger) *RedisService {
	return &RedisService{
		rdb:         rdb,
		logger:      logger,
		collections: make(map[string]*redisCollection),
	}
}

// Collection returns the named collection handle. Handles are shared so that
// snapshot generations stay monotonic across re-subscriptions.
func (s *RedisService) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if col, ok := s.collections[name]; ok {
		return col
	}
	col := &redisCollection{
		rdb:    s.rdb,
		logger: s.logger,
		name:   name,
	}
	s.collections[name] = col
	return col
}

// Close closes the connection.
func (s *RedisService) Close() error {
	return s.rdb.Close()
}

// Health checks the connection health.
func (s *RedisService) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.rdb.Ping(ctx).Err()
}

type redisCollection struct {
	rdb    *redis.Client
	logger *logrus.Logger
	name   string

	// generation stamps every snapshot assembled for this collection, across
	// all subscriptions, so consumers can drop deliveries that lost a race.
	generation atomic.Uint64
}

func (c *redisCollection) docsKey() string    { return "docs:" + c.name }
func (c *redisCollection) indexKey() string   { return "docs:" + c.name + ":idx" }
func (c *redisCollection) channelKey() string { return "docs:" + c.name + ":events" }

func (c *redisCollection) Add(ctx context.Context, data any) (string, error) {
	id := uuid.NewString()
	if err := c.write(ctx, id, data, time.Now().UTC()); err != nil {
		return "", err
	}
	return id, nil
}

func (c *redisCollection) Set(ctx context.Context, id string, data any, merge bool) error {
	if merge {
		merged, err := c.mergeExisting(ctx, id, data)
		if err != nil {
			return err
		}
		data = merged
	}
	return c.write(ctx, id, data, time.Now().UTC())
}

func (c *redisCollection) write(ctx context.Context, id string, data any, createdAt time.Time) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, c.docsKey(), id, payload)
	// Keep the original creation time for documents that already exist.
	pipe.ZAddNX(ctx, c.indexKey(), redis.Z{Score: float64(createdAt.UnixNano()), Member: id})
	pipe.Publish(ctx, c.channelKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write document %s/%s: %w", c.name, id, err)
	}
	return nil
}

// mergeExisting overlays the top-level fields of data onto the stored
// document, matching the service's document-level merge semantics.
func (c *redisCollection) mergeExisting(ctx context.Context, id string, data any) (map[string]any, error) {
	overlay, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	merged := make(map[string]any)
	existing, err := c.rdb.HGet(ctx, c.docsKey(), id).Result()
	switch {
	case err == redis.Nil:
		// New document, nothing to merge onto.
	case err != nil:
		return nil, fmt.Errorf("failed to read document %s/%s: %w", c.name, id, err)
	default:
		if err := json.Unmarshal([]byte(existing), &merged); err != nil {
			return nil, fmt.Errorf("corrupt document %s/%s: %w", c.name, id, err)
		}
	}

	var fields map[string]any
	if err := json.Unmarshal(overlay, &fields); err != nil {
		return nil, fmt.Errorf("merge requires an object payload: %w", err)
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged, nil
}

func (c *redisCollection) Get(ctx context.Context, id string, dest any) error {
	payload, err := c.rdb.HGet(ctx, c.docsKey(), id).Result()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read document %s/%s: %w", c.name, id, err)
	}
	return json.Unmarshal([]byte(payload), dest)
}

func (c *redisCollection) Delete(ctx context.Context, id string) error {
	pipe := c.rdb.TxPipeline()
	pipe.HDel(ctx, c.docsKey(), id)
	pipe.ZRem(ctx, c.indexKey(), id)
	pipe.Publish(ctx, c.channelKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", c.name, id, err)
	}
	return nil
}

func (c *redisCollection) List(ctx context.Context, opts SubscribeOptions) ([]Document, error) {
	raw, err := c.rdb.HGetAll(ctx, c.docsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list collection %s: %w", c.name, err)
	}

	docs := make([]Document, 0, len(raw))
	if opts.OrderByCreatedAtDesc {
		entries, err := c.rdb.ZRevRangeWithScores(ctx, c.indexKey(), 0, -1).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read collection index %s: %w", c.name, err)
		}
		for _, entry := range entries {
			id, _ := entry.Member.(string)
			payload, ok := raw[id]
			if !ok {
				continue
			}
			docs = append(docs, Document{
				ID:        id,
				Data:      json.RawMessage(payload),
				CreatedAt: time.Unix(0, int64(entry.Score)).UTC(),
			})
			delete(raw, id)
		}
	}
	// Documents missing from the index (or all of them, unordered) come last.
	for id, payload := range raw {
		docs = append(docs, Document{ID: id, Data: json.RawMessage(payload)})
	}
	return docs, nil
}

type redisSubscription struct {
	cancel context.CancelFunc
	pubsub *redis.PubSub
	once   sync.Once
}

func (s *redisSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		_ = s.pubsub.Close()
	})
}

func (c *redisCollection) Subscribe(ctx context.Context, opts SubscribeOptions, onSnapshot SnapshotHandler, onError ErrorHandler) (Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	pubsub := c.rdb.Subscribe(subCtx, c.channelKey())
	// Force the subscribe round-trip so a dead connection fails here rather
	// than on the first delivery.
	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", c.name, err)
	}

	sub := &redisSubscription{cancel: cancel, pubsub: pubsub}

	go func() {
		defer cancel()

		// Initial snapshot.
		c.deliver(subCtx, opts, onSnapshot, onError)

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				c.deliver(subCtx, opts, onSnapshot, onError)
			}
		}
	}()

	return sub, nil
}

func (c *redisCollection) deliver(ctx context.Context, opts SubscribeOptions, onSnapshot SnapshotHandler, onError ErrorHandler) {
	docs, err := c.List(ctx, opts)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logger.WithError(err).WithField("collection", c.name).Error("snapshot assembly failed")
		if onError != nil {
			onError(err)
		}
		return
	}
	onSnapshot(Snapshot{Generation: c.generation.Add(1), Docs: docs})
}
