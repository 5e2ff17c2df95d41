package domain

import (
	"context"
	"errors"
)

// ErrResultNotFound 没有对应标的的定价结果
var ErrResultNotFound = errors.New("pricing result not found")

// PricingRepository 定价历史仓储接口
type PricingRepository interface {
	Save(ctx context.Context, result *PricingResult) error
	GetLatest(ctx context.Context, symbol string) (*PricingResult, error)
	GetHistory(ctx context.Context, symbol string, limit int) ([]*PricingResult, error)
	// WithTx 在同一事务中执行 fn，fn 内的 Save 与事件发布共享事务
	WithTx(ctx context.Context, fn func(txCtx context.Context) error) error
}
