package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/cache"
	"github.com/wyfcoding/optionpricing/pkg/logger"
)

const resultPrefix = "pricing_result:"

// ResultCache 最新定价结果缓存
type ResultCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error
}

var _ ResultCache = (*cache.RedisCache)(nil)

// CachedPricingRepository 在持久化仓储前加一层最新结果缓存
// 事务内保存的结果在提交后才写入缓存
type CachedPricingRepository struct {
	next  domain.PricingRepository
	cache ResultCache
	ttl   time.Duration
}

// NewCachedPricingRepository 创建带缓存的仓储
func NewCachedPricingRepository(next domain.PricingRepository, c ResultCache, ttl time.Duration) *CachedPricingRepository {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedPricingRepository{next: next, cache: c, ttl: ttl}
}

type pendingKey struct{}

type pendingResults struct {
	mu      sync.Mutex
	results []*domain.PricingResult
}

func (r *CachedPricingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(pendingKey{}).(*pendingResults); ok {
		return r.next.WithTx(ctx, fn)
	}
	pending := &pendingResults{}
	if err := r.next.WithTx(context.WithValue(ctx, pendingKey{}, pending), fn); err != nil {
		return err
	}
	for _, res := range pending.results {
		r.store(ctx, res)
	}
	return nil
}

func (r *CachedPricingRepository) Save(ctx context.Context, result *domain.PricingResult) error {
	if err := r.next.Save(ctx, result); err != nil {
		return err
	}
	if pending, ok := ctx.Value(pendingKey{}).(*pendingResults); ok {
		pending.mu.Lock()
		pending.results = append(pending.results, result)
		pending.mu.Unlock()
		return nil
	}
	r.store(ctx, result)
	return nil
}

func (r *CachedPricingRepository) GetLatest(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	var cached domain.PricingResult
	found, err := r.cache.GetJSON(ctx, resultKey(symbol), &cached)
	if err != nil {
		logger.Warn(ctx, "pricing result cache read failed", "symbol", symbol, "error", err)
	}
	if found {
		return &cached, nil
	}

	res, err := r.next.GetLatest(ctx, symbol)
	if err != nil {
		return nil, err
	}
	r.store(ctx, res)
	return res, nil
}

func (r *CachedPricingRepository) GetHistory(ctx context.Context, symbol string, limit int) ([]*domain.PricingResult, error) {
	return r.next.GetHistory(ctx, symbol, limit)
}

// store 缓存写失败只记录日志，数据库仍是事实来源
func (r *CachedPricingRepository) store(ctx context.Context, res *domain.PricingResult) {
	if res == nil {
		return
	}
	if err := r.cache.SetJSON(ctx, resultKey(res.Symbol), res, r.ttl); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn(ctx, "pricing result cache write failed", "symbol", res.Symbol, "error", err)
	}
}

func resultKey(symbol string) string {
	return fmt.Sprintf("%s%s", resultPrefix, symbol)
}
