// Package slotlock provides mutual exclusion per (doctor, date, slot) so two
// patients cannot book the same window. Locks live for the booking's lifetime
// and are released when the appointment is rejected or cancelled.
package slotlock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carevault/booking-platform/pkg/logging"
)

// RedisLocker takes slot locks with SET NX and a TTL safety net.
type RedisLocker struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisLocker creates a redis-backed slot locker. The TTL bounds how long
// an orphaned lock can linger if a release is lost.
func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisLocker {
	if client == nil {
		panic("slotlock: redis client required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisLocker{redis: client, ttl: ttl, logger: logger}
}

func slotKey(doctorID, date, slotStart string) string {
	return fmt.Sprintf("slot:%s:%s:%s", doctorID, date, slotStart)
}

// Acquire returns false when another booking already holds the slot. The
// guard fails closed: a redis error refuses the booking.
func (l *RedisLocker) Acquire(ctx context.Context, doctorID, date, slotStart string) (bool, error) {
	key := slotKey(doctorID, date, slotStart)
	ok, err := l.redis.SetNX(ctx, key, "held", l.ttl).Result()
	if err != nil {
		l.logger.Error("slot lock acquire failed", "key", key, "error", err)
		return false, fmt.Errorf("slotlock: acquire %s: %w", key, err)
	}
	return ok, nil
}

// Release frees the slot for rebooking.
func (l *RedisLocker) Release(ctx context.Context, doctorID, date, slotStart string) error {
	key := slotKey(doctorID, date, slotStart)
	if err := l.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("slotlock: release %s: %w", key, err)
	}
	return nil
}
