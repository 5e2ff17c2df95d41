// Package idgen 提供雪花 ID 与 UUID 生成
package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// Generator 雪花 ID 生成器
type Generator struct {
	node *snowflake.Node
}

// NewGenerator 创建生成器，nodeID 取值 [0, 1023]
func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node %d: %w", nodeID, err)
	}
	return &Generator{node: node}, nil
}

// NextID 生成下一个 ID 的字符串形式
func (g *Generator) NextID() string {
	return g.node.Generate().String()
}

// NewUUID 生成随机 UUID
func NewUUID() string {
	return uuid.NewString()
}
