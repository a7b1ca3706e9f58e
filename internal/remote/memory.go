// internal/remote/memory.go
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// MemoryService is an in-process document service with the same contract as
// the hosted backend. It backs the anonymous/local-only mode, where nothing
// leaves the device, and doubles as the test double for store logic.
type MemoryService struct {
	mu          sync.Mutex
	collections map[string]*memoryCollection
}

// NewMemoryService creates an empty in-memory document service.
func NewMemoryService() *MemoryService {
	return &MemoryService{collections: make(map[string]*memoryCollection)}
}

func (s *MemoryService) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if col, ok := s.collections[name]; ok {
		return col
	}
	col := &memoryCollection{
		name:        name,
		docs:        make(map[string]memoryDoc),
		subscribers: make(map[int]*memorySubscription),
	}
	s.collections[name] = col
	return col
}

func (s *MemoryService) Close() error { return nil }

type memoryDoc struct {
	payload   json.RawMessage
	createdAt time.Time
}

type memoryCollection struct {
	name string

	mu          sync.Mutex
	docs        map[string]memoryDoc
	subscribers map[int]*memorySubscription
	nextSubID   int
	generation  atomic.Uint64

	// failWrites simulates a backend outage for tests of failure semantics.
	failWrites bool
}

// FailWrites toggles simulated write failures.
func (c *memoryCollection) FailWrites(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failWrites = fail
}

// FailWrites is reachable through the Collection interface via a type assert
// in tests; expose a package-level helper to keep call sites readable.
func FailWrites(col Collection, fail bool) {
	if mc, ok := col.(*memoryCollection); ok {
		mc.FailWrites(fail)
	}
}

func (c *memoryCollection) Add(ctx context.Context, data any) (string, error) {
	id := uuid.NewString()
	if err := c.put(id, data, false); err != nil {
		return "", err
	}
	return id, nil
}

func (c *memoryCollection) Set(ctx context.Context, id string, data any, merge bool) error {
	return c.put(id, data, merge)
}

func (c *memoryCollection) put(id string, data any, merge bool) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	c.mu.Lock()
	if c.failWrites {
		c.mu.Unlock()
		return fmt.Errorf("document service unavailable")
	}

	existing, exists := c.docs[id]
	if merge && exists {
		merged := make(map[string]any)
		if err := json.Unmarshal(existing.payload, &merged); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("corrupt document %s/%s: %w", c.name, id, err)
		}
		var fields map[string]any
		if err := json.Unmarshal(payload, &fields); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("merge requires an object payload: %w", err)
		}
		for k, v := range fields {
			merged[k] = v
		}
		payload, _ = json.Marshal(merged)
	}

	createdAt := time.Now().UTC()
	if exists {
		createdAt = existing.createdAt
	}
	c.docs[id] = memoryDoc{payload: payload, createdAt: createdAt}
	c.mu.Unlock()

	c.notify()
	return nil
}

func (c *memoryCollection) Get(ctx context.Context, id string, dest any) error {
	c.mu.Lock()
	doc, ok := c.docs[id]
	c.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(doc.payload, dest)
}

func (c *memoryCollection) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.failWrites {
		c.mu.Unlock()
		return fmt.Errorf("document service unavailable")
	}
	delete(c.docs, id)
	c.mu.Unlock()

	c.notify()
	return nil
}

func (c *memoryCollection) List(ctx context.Context, opts SubscribeOptions) ([]Document, error) {
	c.mu.Lock()
	docs := make([]Document, 0, len(c.docs))
	for id, doc := range c.docs {
		payload := make(json.RawMessage, len(doc.payload))
		copy(payload, doc.payload)
		docs = append(docs, Document{ID: id, Data: payload, CreatedAt: doc.createdAt})
	}
	c.mu.Unlock()

	if opts.OrderByCreatedAtDesc {
		sort.Slice(docs, func(i, j int) bool {
			if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
				return docs[i].CreatedAt.After(docs[j].CreatedAt)
			}
			return docs[i].ID < docs[j].ID
		})
	}
	return docs, nil
}

type memorySubscription struct {
	col    *memoryCollection
	id     int
	events chan struct{}
	done   chan struct{}
	once   sync.Once
}

func (s *memorySubscription) Unsubscribe() {
	s.once.Do(func() {
		s.col.mu.Lock()
		delete(s.col.subscribers, s.id)
		s.col.mu.Unlock()
		close(s.done)
	})
}

func (c *memoryCollection) Subscribe(ctx context.Context, opts SubscribeOptions, onSnapshot SnapshotHandler, onError ErrorHandler) (Subscription, error) {
	c.mu.Lock()
	sub := &memorySubscription{
		col:    c,
		id:     c.nextSubID,
		events: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	c.nextSubID++
	c.subscribers[sub.id] = sub
	c.mu.Unlock()

	go func() {
		c.deliver(ctx, opts, onSnapshot, onError)
		for {
			select {
			case <-ctx.Done():
				sub.Unsubscribe()
				return
			case <-sub.done:
				return
			case <-sub.events:
				c.deliver(ctx, opts, onSnapshot, onError)
			}
		}
	}()

	return sub, nil
}

func (c *memoryCollection) deliver(ctx context.Context, opts SubscribeOptions, onSnapshot SnapshotHandler, onError ErrorHandler) {
	docs, err := c.List(ctx, opts)
	if err != nil {
		if onError != nil {
			onError(err)
		}
		return
	}
	onSnapshot(Snapshot{Generation: c.generation.Add(1), Docs: docs})
}

func (c *memoryCollection) notify() {
	c.mu.Lock()
	subs := make([]*memorySubscription, 0, len(c.subscribers))
	for _, sub := range c.subscribers {
		subs = append(subs, sub)
	}
	c.mu.Unlock()

	for _, sub := range subs {
		// Coalescing send: a pending event already covers this change.
		select {
		case sub.events <- struct{}{}:
		default:
		}
	}
}
