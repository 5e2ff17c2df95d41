package domain

import "context"

// EventPublisher 事件发布者接口
// 在 PricingRepository.WithTx 内调用时事件与定价结果在同一事务中落库
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, event any) error
}
