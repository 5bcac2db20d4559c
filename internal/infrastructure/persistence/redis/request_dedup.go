// Package redis implements Redis-backed infrastructure for the attendance
// service. The broker delivers report requests at-least-once, so the
// consumer tracks seen request ids here to avoid emitting duplicate replies
// when multiple instances share one queue.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration.
type Config struct {
	// Host is the Redis server hostname.
	Host string

	// Port is the Redis server port.
	Port int

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes.
	WriteTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewClient creates a Redis client and verifies the connection.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: failed to ping server: %w", err)
	}
	return client, nil
}

// RequestDeduper tracks processed report request ids with a TTL. MarkSeen
// uses SETNX, so exactly one of the competing consumers wins a given id.
type RequestDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRequestDeduper creates a deduper on an existing client. A non-positive
// ttl falls back to 24h, long enough to outlive any broker redelivery.
func NewRequestDeduper(client *redis.Client, ttl time.Duration) *RequestDeduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RequestDeduper{
		client: client,
		prefix: "attendance:report-request:",
		ttl:    ttl,
	}
}

// MarkSeen records the request id and reports whether it was seen before.
func (d *RequestDeduper) MarkSeen(ctx context.Context, requestID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+requestID, 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: failed to mark request seen: %w", err)
	}
	return !ok, nil
}
