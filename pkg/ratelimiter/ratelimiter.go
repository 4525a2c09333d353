package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"anoa.com/recipehub/pkg/apperror"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Limiter enforces a per-user cooldown between write actions using redis SETNX.
// A nil Limiter or one without a client allows everything.
type Limiter struct {
	rdb      *redis.Client
	cooldown time.Duration
}

func New(rdb *redis.Client, cooldown time.Duration) *Limiter {
	return &Limiter{rdb: rdb, cooldown: cooldown}
}

func key(userID uint, action string) string {
	return fmt.Sprintf("rate_limit:user:%d:%s", userID, action)
}

// Allow reports whether the user may perform action now and starts the cooldown if so.
func (l *Limiter) Allow(ctx context.Context, userID uint, action string) (bool, error) {
	if l == nil || l.rdb == nil || l.cooldown <= 0 {
		return true, nil
	}

	wasSet, err := l.rdb.SetNX(ctx, key(userID, action), "locked", l.cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

// Check is Allow folded into the error taxonomy. Redis failures do not block writes.
func (l *Limiter) Check(ctx context.Context, userID uint, action string) error {
	allowed, err := l.Allow(ctx, userID, action)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("action", action).Msg("rate limit check failed")
		return nil
	}
	if !allowed {
		ttl, err := l.TTL(ctx, userID, action)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("action", action).Msg("rate limit ttl lookup failed")
			ttl = l.cooldown
		}
		return apperror.New(apperror.ErrRateLimitExceeded,
			fmt.Sprintf("please wait %s before trying again", ttl.Round(time.Second)))
	}
	return nil
}

func (l *Limiter) TTL(ctx context.Context, userID uint, action string) (time.Duration, error) {
	if l == nil || l.rdb == nil {
		return 0, nil
	}
	return l.rdb.TTL(ctx, key(userID, action)).Result()
}

// Clear ends the cooldown early, used when the guarded write did not happen.
func (l *Limiter) Clear(ctx context.Context, userID uint, action string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, key(userID, action)).Err()
}
