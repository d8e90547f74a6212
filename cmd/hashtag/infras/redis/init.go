package redis

import (
	"github.com/redis/go-redis/v9"

	"ytgify.com/pkg/cache"
)

var redisDB *redis.Client

func Load() {
	redisDB = cache.RDB
}

// Use 替换客户端, 测试时指向 miniredis
func Use(client *redis.Client) {
	redisDB = client
}
