package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/propchain/gatekeeper/ports"
)

// RedisTicketStore is a Redis implementation of the TicketStore interface.
// TTL expiry is enforced by Redis; Consume maps to GETDEL so two concurrent
// consumers of the same ticket can never both observe the payload.
type RedisTicketStore struct {
	client *redis.Client
}

// NewRedisTicketStore creates a new Redis ticket store.
func NewRedisTicketStore(client *redis.Client) *RedisTicketStore {
	return &RedisTicketStore{client: client}
}

func key(namespace, k string) string {
	return namespace + ":" + k
}

// Put writes the payload unconditionally, superseding any previous value.
func (s *RedisTicketStore) Put(ctx context.Context, namespace, k, payload string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key(namespace, k), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store ticket: %w", err)
	}
	return nil
}

// PutUnique writes the payload only if the key is not taken yet.
func (s *RedisTicketStore) PutUnique(ctx context.Context, namespace, k, payload string, ttl time.Duration) error {
	ok, err := s.client.SetNX(ctx, key(namespace, k), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store ticket: %w", err)
	}
	if !ok {
		return ports.ErrTicketExists
	}
	return nil
}

// Consume atomically reads and deletes the entry.
func (s *RedisTicketStore) Consume(ctx context.Context, namespace, k string) (string, error) {
	payload, err := s.client.GetDel(ctx, key(namespace, k)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ports.ErrTicketNotFound
		}
		return "", fmt.Errorf("failed to consume ticket: %w", err)
	}
	return payload, nil
}

// PeekCompare reads the entry without deleting it and compares it against
// the expected value. A missing entry compares false without error.
func (s *RedisTicketStore) PeekCompare(ctx context.Context, namespace, k, expected string) (bool, error) {
	payload, err := s.client.Get(ctx, key(namespace, k)).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to read ticket: %w", err)
	}
	return payload == expected, nil
}

// Delete removes the entry. Deleting a missing key is not an error.
func (s *RedisTicketStore) Delete(ctx context.Context, namespace, k string) error {
	if err := s.client.Del(ctx, key(namespace, k)).Err(); err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	return nil
}

var _ ports.TicketStore = (*RedisTicketStore)(nil)
