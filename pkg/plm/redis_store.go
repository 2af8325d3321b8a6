package plm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

const refreshLockTTL = 30 * time.Second

// RedisTokenStore shares the access token between replicas through Redis.
type RedisTokenStore struct {
	client *redis.Client
	locker *redislock.Client
	key    string
	now    func() time.Time
}

func NewRedisTokenStore(client *redis.Client, key string) *RedisTokenStore {
	return &RedisTokenStore{
		client: client,
		locker: redislock.New(client),
		key:    key,
		now:    time.Now,
	}
}

func (s *RedisTokenStore) Load(ctx context.Context) (*Token, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}

	var tok Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("decode cached token: %w", err)
	}
	return &tok, nil
}

// Save stores the token until it expires.
func (s *RedisTokenStore) Save(ctx context.Context, tok *Token) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	ttl := tok.Expiry.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// LockRefresh blocks until this replica holds the refresh lock or ctx ends.
func (s *RedisTokenStore) LockRefresh(ctx context.Context) (func(context.Context) error, error) {
	lock, err := s.locker.Obtain(ctx, s.key+":refresh", refreshLockTTL, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(100 * time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("obtain refresh lock: %w", err)
	}
	return lock.Release, nil
}
