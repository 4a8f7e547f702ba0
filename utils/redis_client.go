package utils

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPool tunes the client's connection pool and timeouts. Zero fields
// keep the go-redis defaults.
type RedisPool struct {
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// redisOptions accepts a redis:// URL or a plain host:port.
func redisOptions(url string, pool RedisPool) *redis.Options {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}

	if pool.PoolSize > 0 {
		opts.PoolSize = pool.PoolSize
	}
	if pool.MinIdleConns > 0 {
		opts.MinIdleConns = pool.MinIdleConns
	}
	if pool.MaxRetries != 0 {
		opts.MaxRetries = pool.MaxRetries
	}
	if pool.DialTimeout > 0 {
		opts.DialTimeout = pool.DialTimeout
	}
	if pool.ReadTimeout > 0 {
		opts.ReadTimeout = pool.ReadTimeout
	}
	if pool.WriteTimeout > 0 {
		opts.WriteTimeout = pool.WriteTimeout
	}
	return opts
}

// NewRedisClient connects to url and pings it once before returning.
func NewRedisClient(ctx context.Context, url string, pool RedisPool) (*redis.Client, error) {
	opts := redisOptions(url, pool)
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: connect %s: %w", opts.Addr, err)
	}

	slog.Info("Connected to Redis", "addr", opts.Addr, "db", opts.DB, "poolSize", opts.PoolSize)
	return client, nil
}

// RedisHealthCheck pings Redis with a short deadline.
func RedisHealthCheck(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	return nil
}
