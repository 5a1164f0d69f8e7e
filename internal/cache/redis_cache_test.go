package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gomodule/redigo/redis"
)

func newRedisCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)

	c, err := NewRedisCache(NewRedisPool(RedisPoolAddr(s.Addr())), ttl)
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, s
}

func TestNewRedisPool(t *testing.T) {
	s := miniredis.RunT(t)

	pool := NewRedisPool(
		RedisPoolDial(func() (redis.Conn, error) {
			return redis.Dial("tcp", s.Addr())
		}),
		RedisPoolIdleTimeout(42*time.Second),
		RedisPoolMaxActive(42),
		RedisPoolMaxIdle(24),
		RedisPoolWait(true),
	)
	defer func() { _ = pool.Close() }()

	if pool.IdleTimeout != 42*time.Second {
		t.Errorf("got `%v`, want `%v` for pool IdleTimeout", pool.IdleTimeout, 42*time.Second)
	}
	if pool.MaxActive != 42 {
		t.Errorf("got `%d`, want `%d` for pool MaxActive", pool.MaxActive, 42)
	}
	if pool.MaxIdle != 24 {
		t.Errorf("got `%d`, want `%d` for pool MaxIdle", pool.MaxIdle, 24)
	}
	if !pool.Wait {
		t.Error("pool Wait should be true")
	}

	conn := pool.Get()
	defer func() { _ = conn.Close() }()
	resp, err := redis.String(conn.Do("PING"))
	if err != nil || resp != "PONG" {
		t.Errorf("PING = %q, %v", resp, err)
	}
}

func TestNewRedisCache_Validation(t *testing.T) {
	if _, err := NewRedisCache(nil, time.Minute); err == nil {
		t.Error("expected error for nil pool")
	}
	if _, err := NewRedisCache(NewRedisPool(), 500*time.Millisecond); err == nil {
		t.Error("expected error for sub-second ttl")
	}
}

func TestRedisCache_SetAndGet(t *testing.T) {
	c, s := newRedisCache(t, 30*time.Second)

	if err := c.Ping(); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	value := []byte(`{"departures":[]}`)
	if err := c.Set(departuresKey, value); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok := c.Get(departuresKey)
	if !ok {
		t.Fatal("Get() returned false, want true")
	}
	if string(got) != string(value) {
		t.Errorf("Get() = %q, want %q", got, value)
	}

	keys := s.Keys()
	if len(keys) != 1 || !strings.HasPrefix(keys[0], "moko-board:http:") {
		t.Errorf("unexpected keys %v", keys)
	}
	if ttl := s.TTL(keys[0]); ttl != 30*time.Second {
		t.Errorf("TTL = %v, want 30s", ttl)
	}
}

func TestRedisCache_Miss(t *testing.T) {
	c, _ := newRedisCache(t, time.Minute)

	if _, ok := c.Get(stationsKey); ok {
		t.Error("Get() returned true for missing key")
	}
}

func TestRedisCache_Expiration(t *testing.T) {
	c, s := newRedisCache(t, 30*time.Second)

	_ = c.Set(departuresKey, []byte("data"))
	s.FastForward(31 * time.Second)

	if _, ok := c.Get(departuresKey); ok {
		t.Error("Get() returned true for expired key")
	}
}

func TestRedisCache_ServerErrorIsMiss(t *testing.T) {
	c, s := newRedisCache(t, time.Minute)
	_ = c.Set(departuresKey, []byte("data"))

	s.SetError("LOADING Redis is loading the dataset in memory")
	if _, ok := c.Get(departuresKey); ok {
		t.Error("Get() returned true while server errors")
	}
	if err := c.Set(stationsKey, []byte("x")); err == nil {
		t.Error("Set() expected error while server errors")
	}

	s.SetError("")
	if _, ok := c.Get(departuresKey); !ok {
		t.Error("Get() returned false after server recovered")
	}
}
