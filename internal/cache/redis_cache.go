package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
)

const (
	// DefaultRedisAddr is used when no address is configured
	DefaultRedisAddr = ":6379"
	redisKeyPrefix   = appName + ":http:"
)

// RedisPoolOption configures the connection pool behind a RedisCache
type RedisPoolOption struct {
	f func(*redis.Pool)
}

// RedisPoolDial replaces the pool's dial function
func RedisPoolDial(f func() (redis.Conn, error)) RedisPoolOption {
	return RedisPoolOption{func(p *redis.Pool) {
		p.Dial = f
	}}
}

// RedisPoolAddr dials the given TCP address
func RedisPoolAddr(addr string) RedisPoolOption {
	return RedisPoolDial(func() (redis.Conn, error) {
		return redis.Dial("tcp", addr)
	})
}

func RedisPoolIdleTimeout(timeout time.Duration) RedisPoolOption {
	return RedisPoolOption{func(p *redis.Pool) {
		p.IdleTimeout = timeout
	}}
}

func RedisPoolMaxActive(i int) RedisPoolOption {
	return RedisPoolOption{func(p *redis.Pool) {
		p.MaxActive = i
	}}
}

func RedisPoolMaxIdle(i int) RedisPoolOption {
	return RedisPoolOption{func(p *redis.Pool) {
		p.MaxIdle = i
	}}
}

func RedisPoolWait(b bool) RedisPoolOption {
	return RedisPoolOption{func(p *redis.Pool) {
		p.Wait = b
	}}
}

// NewRedisPool builds a pool dialing DefaultRedisAddr unless told otherwise
func NewRedisPool(options ...RedisPoolOption) *redis.Pool {
	pool := &redis.Pool{
		MaxIdle:     4,
		IdleTimeout: 4 * time.Minute,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", DefaultRedisAddr)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}

	for _, option := range options {
		option.f(pool)
	}

	return pool
}

// RedisCache stores responses in Redis with a server-side expiry, so that
// several board instances can share upstream answers.
type RedisCache struct {
	pool *redis.Pool
	ttl  time.Duration
}

// NewRedisCache creates a cache on top of pool
func NewRedisCache(pool *redis.Pool, ttl time.Duration) (*RedisCache, error) {
	if pool == nil {
		return nil, errors.New("redis pool is nil")
	}
	if ttl < time.Second {
		return nil, fmt.Errorf("redis cache ttl must be at least 1s, got %s", ttl)
	}
	return &RedisCache{pool: pool, ttl: ttl}, nil
}

// Ping checks that Redis is reachable
func (c *RedisCache) Ping() error {
	conn := c.pool.Get()
	defer func() { _ = conn.Close() }()

	if _, err := conn.Do("PING"); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func redisKey(key string) string {
	return redisKeyPrefix + hashKey(key)
}

// Get retrieves a value from the cache. Connection errors count as misses.
func (c *RedisCache) Get(key string) ([]byte, bool) {
	conn := c.pool.Get()
	defer func() { _ = conn.Close() }()

	data, err := redis.Bytes(conn.Do("GET", redisKey(key)))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores a value with the cache's TTL
func (c *RedisCache) Set(key string, value []byte) error {
	conn := c.pool.Get()
	defer func() { _ = conn.Close() }()

	seconds := int(c.ttl / time.Second)
	if _, err := conn.Do("SETEX", redisKey(key), seconds, value); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Close releases the pool
func (c *RedisCache) Close() error {
	return c.pool.Close()
}
