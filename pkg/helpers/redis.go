package helpers

import (
	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// KeyVerifyToken is the redis key mapping an email verification token
// to its user id.
func KeyVerifyToken(token string) string {
	return "email:verify:token:" + token
}
