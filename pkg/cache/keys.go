package cache

import "fmt"

// 缓存键名常量
const (
	// 用户点赞过的 gif 集合
	UserLikesKey = "user:likes:%d"
	// 浏览去重, 同一观看者一个窗口内只计一次
	ViewDedupKey = "gif:view:%d:%s"
	// 待刷入数据库的浏览数增量
	ViewBufferKey = "gif:views:%d"
	// 有待刷入浏览数的 gif 集合
	ViewDirtySetKey = "gif:views:dirty"
	// 热门榜单 zset, score 为热度分
	TrendingGifsKey = "trending:gifs"
	// 热门话题缓存
	TrendingHashtagsKey = "trending:hashtags:%d"
	// 已注销的 jwt
	JwtDenyKey = "jwt:deny:%s"
	// 分布式锁前缀
	LockKey = "lock:%s"
	// 已处理事件, 用于消费端幂等
	ProcessedEventKey = "mq:processed:%s"
)

func Key(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
