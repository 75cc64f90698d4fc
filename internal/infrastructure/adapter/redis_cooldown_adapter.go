package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/michaelkobetss/test-task-otpusk/internal/domain/search"
	"github.com/redis/go-redis/v9"
)

// cooldownTTLSlack keeps expired records around briefly so a poll issued
// right at the boundary can still read the token.
const cooldownTTLSlack = time.Minute

// RedisCooldownAdapter persists per-key cooldown windows in Redis so a
// restarted process resumes an existing cooldown instead of starting a
// fresh remote search.
type RedisCooldownAdapter struct {
	client *redis.Client
}

func NewRedisCooldownAdapter(client *redis.Client) *RedisCooldownAdapter {
	return &RedisCooldownAdapter{client: client}
}

func NewRedisCooldownAdapterFromAddr(addr, password string, db int) *RedisCooldownAdapter {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db, PoolSize: 50})
	return &RedisCooldownAdapter{client: client}
}

func (r *RedisCooldownAdapter) Get(ctx context.Context, key string) (search.Cooldown, bool, error) {
	val, err := r.client.Get(ctx, cooldownKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return search.Cooldown{}, false, nil
	}
	if err != nil {
		return search.Cooldown{}, false, fmt.Errorf("cooldown get for key %s: %w", key, err)
	}

	var cooldown search.Cooldown
	if err := json.Unmarshal(val, &cooldown); err != nil {
		return search.Cooldown{}, false, fmt.Errorf("cooldown decode for key %s: %w", key, err)
	}
	return cooldown, true, nil
}

func (r *RedisCooldownAdapter) Set(ctx context.Context, key string, cooldown search.Cooldown) error {
	b, err := json.Marshal(cooldown)
	if err != nil {
		return err
	}

	ttl := time.Until(cooldown.WaitUntil) + cooldownTTLSlack
	if ttl <= 0 {
		ttl = cooldownTTLSlack
	}
	return r.client.Set(ctx, cooldownKey(key), b, ttl).Err()
}

func (r *RedisCooldownAdapter) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, cooldownKey(key)).Err()
}

func (r *RedisCooldownAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCooldownAdapter) Close() error {
	return r.client.Close()
}

func cooldownKey(key string) string {
	return fmt.Sprintf("waitUntil_%s", key)
}
