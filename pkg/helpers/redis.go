package helpers

import (
	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the client backing the rate limiters. Connection
// errors surface lazily on first use; the limiters fail open when Redis is
// unreachable.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
