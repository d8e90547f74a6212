package utils

import (
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
)

var node atomic.Pointer[snowflake.Node]

// InitSnowflake 初始化全局节点, 多实例部署时每个进程应使用不同的 nodeID
func InitSnowflake(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	node.Store(n)
	return nil
}

// GenerateID 生成全局唯一ID, 未初始化时使用节点1
func GenerateID() snowflake.ID {
	n := node.Load()
	if n == nil {
		fallback, _ := snowflake.NewNode(1)
		node.CompareAndSwap(nil, fallback)
		n = node.Load()
	}
	return n.Generate()
}
