package sharding

import (
	"gorm.io/sharding"
)

// NewSharding splits tableName into shardingNumber suffixed tables keyed by
// shardingKey. Rows get snowflake primary keys so ids stay unique across shards.
func NewSharding(shardingKey string, shardingNumber uint, tableName string) *sharding.Sharding {
	handler := sharding.Register(sharding.Config{
		ShardingKey:         shardingKey,
		NumberOfShards:      shardingNumber,
		PrimaryKeyGenerator: sharding.PKSnowflake,
	}, tableName)
	return handler
}
