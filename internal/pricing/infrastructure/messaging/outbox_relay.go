package messaging

import (
	"context"
	"time"

	"github.com/wyfcoding/optionpricing/pkg/metrics"
	"github.com/wyfcoding/optionpricing/pkg/mq"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
)

// Producer 消息发送方
type Producer interface {
	SendRecords(ctx context.Context, topic string, records []mq.Record) error
}

// NewKafkaPusher 返回 outbox 处理器回调，其 topic 参数为写入时的事件类型
// 所有事件投递到同一个 Kafka topic，事件类型放在 event_type 头中
func NewKafkaPusher(producer Producer, topic string, m *metrics.Metrics) func(ctx context.Context, eventType, key string, payload []byte) error {
	return func(ctx context.Context, eventType, key string, payload []byte) error {
		record := mq.Record{
			Key:     key,
			Value:   payload,
			Headers: map[string]string{"event_type": eventType},
		}
		if err := producer.SendRecords(ctx, topic, []mq.Record{record}); err != nil {
			m.RecordOutbox("error", 1)
			return err
		}
		m.RecordOutbox("sent", 1)
		return nil
	}
}

// NewOutboxRelay 创建后台投递处理器，按 interval 每批最多 batchSize 条
func NewOutboxRelay(manager *outbox.Manager, push func(ctx context.Context, eventType, key string, payload []byte) error, batchSize int, interval time.Duration) *outbox.Processor {
	if batchSize <= 0 {
		batchSize = 100
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return outbox.NewProcessor(manager, push, batchSize, interval)
}
