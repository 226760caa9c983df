package cachekv

import (
	"fmt"

	rediscache "github.com/goware/cachestore-redis"
)

// RedisConfig holds the fields needed to construct a Redis-backed
// cache store.
type RedisConfig struct {
	Host string
	Port int
}

// NewRedisBackend opens a shared Redis-backed cache backend the same
// way cmd/chain-watch does for ethmonitor. Nothing in the service calls
// it: Cache[T] always uses in-process memcache stores, and the Redis
// settings in internal/config are read but not applied anywhere.
func NewRedisBackend(cfg RedisConfig) (*rediscache.Backend, error) {
	backend, err := rediscache.NewBackend(&rediscache.Config{
		Enabled: true,
		Host:    cfg.Host,
		Port:    cfg.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("cachekv: opening redis backend: %w", err)
	}
	return backend, nil
}
