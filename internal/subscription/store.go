package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Status values mirrored from the billing service.
const (
	StatusActive   = "active"
	StatusCanceled = "canceled"
	StatusInactive = "inactive"
)

// Subscriber is one paying user as the proxy daemon sees them. The backend
// API key is the credential the proxy spends on their behalf; a subscriber
// row without one cannot be served.
type Subscriber struct {
	Email            string    `json:"email"`
	Status           string    `json:"status"`
	CustomerID       string    `json:"customerId,omitempty"`
	SubscriptionID   string    `json:"subscriptionId,omitempty"`
	CurrentPeriodEnd time.Time `json:"currentPeriodEnd,omitempty"`
	BackendAPIKey    string    `json:"backendApiKey,omitempty"`
}

// Active reports whether the subscriber may use the proxy.
func (s *Subscriber) Active() bool {
	return s != nil && s.Status == StatusActive
}

// SubscriberStore persists subscribers keyed by email. Get returns
// (nil, nil) for an unknown email.
type SubscriberStore interface {
	Get(ctx context.Context, email string) (*Subscriber, error)
	Save(ctx context.Context, sub *Subscriber) error
	Delete(ctx context.Context, email string) error
}

// RedisStore keeps subscribers as JSON values in Redis.
type RedisStore struct {
	client *goredis.Client
}

// NewRedisStore connects a subscriber store to Redis.
func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{
		client: goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Ping verifies the Redis connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func subscriberKey(email string) string {
	return "subscriber:" + email
}

func (r *RedisStore) Get(ctx context.Context, email string) (*Subscriber, error) {
	data, err := r.client.Get(ctx, subscriberKey(email)).Result()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriber: %w", err)
	}
	var sub Subscriber
	if err := json.Unmarshal([]byte(data), &sub); err != nil {
		return nil, fmt.Errorf("failed to parse subscriber: %w", err)
	}
	return &sub, nil
}

func (r *RedisStore) Save(ctx context.Context, sub *Subscriber) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal subscriber: %w", err)
	}
	if err := r.client.Set(ctx, subscriberKey(sub.Email), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save subscriber: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, subscriberKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete subscriber: %w", err)
	}
	return nil
}

// MemoryStore is an in-process SubscriberStore for tests and local runs.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[string]Subscriber
}

// NewMemoryStore creates an empty in-memory subscriber store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[string]Subscriber)}
}

func (m *MemoryStore) Get(_ context.Context, email string) (*Subscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sub, ok := m.subs[email]
	if !ok {
		return nil, nil
	}
	out := sub
	return &out, nil
}

func (m *MemoryStore) Save(_ context.Context, sub *Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub.Email] = *sub
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, email)
	return nil
}
