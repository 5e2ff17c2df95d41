package application

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 500
)

// PricingQueryService 处理定价相关的查询操作
type PricingQueryService struct {
	repo domain.PricingRepository
	now  func() time.Time
}

// NewPricingQueryService 创建新的 PricingQueryService 实例
func NewPricingQueryService(repo domain.PricingRepository) *PricingQueryService {
	return &PricingQueryService{repo: repo, now: time.Now}
}

// GetLatestResult 获取最新定价结果
func (q *PricingQueryService) GetLatestResult(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidArgument)
	}
	return q.repo.GetLatest(ctx, symbol)
}

// GetHistory 按计算时间倒序获取定价历史，limit 不大于 0 时取默认值
func (q *PricingQueryService) GetHistory(ctx context.Context, symbol string, limit int) ([]*domain.PricingResult, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return q.repo.GetHistory(ctx, symbol, limit)
}

// ImpliedVolatility 由市场价格反解 Black-Scholes 隐含波动率
func (q *PricingQueryService) ImpliedVolatility(ctx context.Context, query ImpliedVolatilityQuery) (*ImpliedVolatilityResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	optionType, err := domain.ParseOptionType(query.OptionType)
	if err != nil {
		return nil, err
	}
	T := timeToExpiry(query.TimeToExpiry, query.ExpiryDate, q.now())

	vol, err := domain.ImpliedVolatility(optionType, query.MarketPrice, query.UnderlyingPrice, query.StrikePrice, query.RiskFreeRate, T)
	if err != nil {
		return nil, err
	}
	return &ImpliedVolatilityResult{
		Symbol:            query.Symbol,
		ImpliedVolatility: vol,
		ModelPrice:        domain.BlackScholesPrice(optionType, query.UnderlyingPrice, query.StrikePrice, query.RiskFreeRate, T, vol),
	}, nil
}
