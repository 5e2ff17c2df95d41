package messaging

import (
	"context"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/db"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"gorm.io/gorm"
)

// AutoMigrate 建 outbox 表
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&outbox.Message{})
}

// OutboxEventPublisher 实现 domain.EventPublisher，使用 Outbox 模式
// context 中带有事务时与定价结果同事务写入，eventType 作为 outbox topic 保存
type OutboxEventPublisher struct {
	manager *outbox.Manager
}

// NewOutboxEventPublisher 创建新的 OutboxEventPublisher 实例
func NewOutboxEventPublisher(manager *outbox.Manager) *OutboxEventPublisher {
	return &OutboxEventPublisher{manager: manager}
}

var _ domain.EventPublisher = (*OutboxEventPublisher)(nil)

// Publish 写入一条待投递事件
func (p *OutboxEventPublisher) Publish(ctx context.Context, eventType, key string, event any) error {
	tx, ok := db.TxFromContext(ctx)
	if !ok {
		tx = p.manager.DB()
	}
	return p.manager.PublishInTx(ctx, tx, eventType, key, event)
}
