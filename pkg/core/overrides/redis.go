package overrides

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// =============================================================================
// REDIS STORE (production)
// Overrides are small JSON blobs keyed by property; changes fan out over
// pub/sub so every dashboard instance sees a write wherever it landed.
// =============================================================================

const (
	overrideKeyPrefix = "overrides:property:"
	overrideChannel   = "overrides:events"
)

// RedisStore implements Store on a shared Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already-connected client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// DialRedis connects and pings, failing fast at startup when Redis is
// unreachable.
func DialRedis(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func (s *RedisStore) key(propertyID string) string {
	return overrideKeyPrefix + propertyID
}

// Get returns the property's override, or (nil, nil) when none is stored.
func (s *RedisStore) Get(ctx context.Context, propertyID string) (*Override, error) {
	raw, err := s.client.Get(ctx, s.key(propertyID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get override: %w", err)
	}

	var ov Override
	if err := json.Unmarshal([]byte(raw), &ov); err != nil {
		return nil, fmt.Errorf("decode override for %s: %w", propertyID, err)
	}
	return &ov, nil
}

// Set stores the override and publishes a change event. Last writer wins.
func (s *RedisStore) Set(ctx context.Context, ov Override) error {
	if ov.UpdatedAt.IsZero() {
		ov.UpdatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(ov)
	if err != nil {
		return fmt.Errorf("encode override: %w", err)
	}
	if err := s.client.Set(ctx, s.key(ov.PropertyID), payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set override: %w", err)
	}

	s.publish(ctx, Event{PropertyID: ov.PropertyID, Kind: EventSet})
	return nil
}

// Delete removes the override and publishes a change event if one existed.
func (s *RedisStore) Delete(ctx context.Context, propertyID string) error {
	deleted, err := s.client.Del(ctx, s.key(propertyID)).Result()
	if err != nil {
		return fmt.Errorf("redis delete override: %w", err)
	}
	if deleted > 0 {
		s.publish(ctx, Event{PropertyID: propertyID, Kind: EventDeleted})
	}
	return nil
}

// publish is best-effort: the write already landed, and watchers re-read
// through Get anyway, so a lost event only delays recomputation.
func (s *RedisStore) publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_ = s.client.Publish(ctx, overrideChannel, payload).Err()
}

// Watch subscribes to the override event channel until ctx is cancelled.
func (s *RedisStore) Watch(ctx context.Context) (<-chan Event, error) {
	sub := s.client.Subscribe(ctx, overrideChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue
				}
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()

	return out, nil
}
