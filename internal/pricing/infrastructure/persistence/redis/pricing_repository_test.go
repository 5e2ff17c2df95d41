package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/cache"
)

type memoryCache struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	readErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	if c.readErr != nil {
		return false, c.readErr
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value any, expiration time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	c.ttls[key] = expiration
	return nil
}

// storeRepo 记录调用次数，事务失败时不保留写入
type storeRepo struct {
	results     map[string]*domain.PricingResult
	latestCalls int
}

func (s *storeRepo) Save(_ context.Context, result *domain.PricingResult) error {
	s.results[result.Symbol] = result
	return nil
}

func (s *storeRepo) GetLatest(_ context.Context, symbol string) (*domain.PricingResult, error) {
	s.latestCalls++
	if r, ok := s.results[symbol]; ok {
		return r, nil
	}
	return nil, domain.ErrResultNotFound
}

func (s *storeRepo) GetHistory(context.Context, string, int) ([]*domain.PricingResult, error) {
	return nil, nil
}

func (s *storeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := make(map[string]*domain.PricingResult, len(s.results))
	for k, v := range s.results {
		snapshot[k] = v
	}
	if err := fn(ctx); err != nil {
		s.results = snapshot
		return err
	}
	return nil
}

func result(symbol string, price float64) *domain.PricingResult {
	return &domain.PricingResult{
		ResultID:    symbol + "-1",
		Symbol:      symbol,
		OptionPrice: decimal.NewFromFloat(price),
	}
}

func TestSaveInsideTransactionCachesAfterCommit(t *testing.T) {
	c := newMemoryCache()
	repo := NewCachedPricingRepository(&storeRepo{results: map[string]*domain.PricingResult{}}, c, time.Minute)
	ctx := context.Background()

	err := repo.WithTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, repo.Save(txCtx, result("AAPL", 10.45)))
		assert.Empty(t, c.data, "cache is written only after commit")
		return nil
	})
	require.NoError(t, err)
	assert.Contains(t, c.data, "pricing_result:AAPL")
	assert.Equal(t, time.Minute, c.ttls["pricing_result:AAPL"])
}

func TestRolledBackSaveIsNotCached(t *testing.T) {
	c := newMemoryCache()
	repo := NewCachedPricingRepository(&storeRepo{results: map[string]*domain.PricingResult{}}, c, 0)

	boom := errors.New("publish failed")
	err := repo.WithTx(context.Background(), func(txCtx context.Context) error {
		require.NoError(t, repo.Save(txCtx, result("AAPL", 10.45)))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, c.data)
}

func TestGetLatestPrefersCache(t *testing.T) {
	c := newMemoryCache()
	store := &storeRepo{results: map[string]*domain.PricingResult{"AAPL": result("AAPL", 10.45)}}
	repo := NewCachedPricingRepository(store, c, time.Minute)
	ctx := context.Background()

	got, err := repo.GetLatest(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL-1", got.ResultID)
	assert.Equal(t, 1, store.latestCalls)

	got, err = repo.GetLatest(ctx, "AAPL")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(10.45).Equal(got.OptionPrice))
	assert.Equal(t, 1, store.latestCalls, "second read is served from cache")

	_, err = repo.GetLatest(ctx, "TSLA")
	assert.ErrorIs(t, err, domain.ErrResultNotFound)
}

func TestGetLatestFallsBackWhenCacheFails(t *testing.T) {
	c := newMemoryCache()
	c.readErr = errors.New("redis down")
	store := &storeRepo{results: map[string]*domain.PricingResult{"AAPL": result("AAPL", 10.45)}}
	repo := NewCachedPricingRepository(store, c, time.Minute)

	got, err := repo.GetLatest(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, 1, store.latestCalls)
}

func TestCachedRepositoryOverRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	rc, err := cache.New(cache.Config{Host: mr.Host(), Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	store := &storeRepo{results: map[string]*domain.PricingResult{}}
	repo := NewCachedPricingRepository(store, rc, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, repo.WithTx(ctx, func(txCtx context.Context) error {
		return repo.Save(txCtx, result("AAPL", 10.45))
	}))
	assert.True(t, mr.Exists("pricing_result:AAPL"))
	assert.Equal(t, 30*time.Second, mr.TTL("pricing_result:AAPL"))

	got, err := repo.GetLatest(ctx, "AAPL")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(10.45).Equal(got.OptionPrice))
	assert.Equal(t, 0, store.latestCalls, "served from redis")

	mr.FastForward(time.Minute)
	_, err = repo.GetLatest(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, store.latestCalls, "expired entry falls through to the store")
}
