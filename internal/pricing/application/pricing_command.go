package application

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/idgen"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/metrics"
)

// PricingCommandService 处理定价相关的命令操作
// 使用 Outbox 发布领域事件
type PricingCommandService struct {
	repo           domain.PricingRepository
	publisher      domain.EventPublisher
	factory        *InstrumentFactory
	metrics        *metrics.Metrics
	ids            *idgen.Generator
	maxParallelism int
	now            func() time.Time
}

// NewPricingCommandService 创建新的 PricingCommandService 实例
// publisher、m、ids 可以为 nil
func NewPricingCommandService(repo domain.PricingRepository, publisher domain.EventPublisher, factory *InstrumentFactory, m *metrics.Metrics, ids *idgen.Generator, maxParallelism int) *PricingCommandService {
	if maxParallelism <= 0 {
		maxParallelism = 1
	}
	return &PricingCommandService{
		repo:           repo,
		publisher:      publisher,
		factory:        factory,
		metrics:        m,
		ids:            ids,
		maxParallelism: maxParallelism,
		now:            time.Now,
	}
}

// PriceOption 期权定价，结果与 OptionPriced/GreeksCalculated 事件在同一事务中写入
func (c *PricingCommandService) PriceOption(ctx context.Context, cmd PriceOptionCommand) (*domain.PricingResult, error) {
	start := c.now()

	inst, model, err := c.factory.Build(cmd.ContractSpec, start)
	if err != nil {
		c.fail(ctx, cmd, cmd.OptionStyle, cmd.PricingModel, start, err)
		return nil, err
	}

	md := cmd.MarketData()
	valuation, err := domain.Value(inst, md)
	if err != nil {
		c.fail(ctx, cmd, inst.InstrumentType(), model, start, err)
		return nil, err
	}

	result := domain.NewPricingResult(inst, model, md, valuation, start)
	result.ResultID = idgen.NewUUID()

	err = c.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := c.repo.Save(txCtx, result); err != nil {
			return err
		}
		if c.publisher == nil {
			return nil
		}

		occurred := c.now()
		optionEvent := domain.OptionPricedEvent{
			ResultID:        result.ResultID,
			Symbol:          result.Symbol,
			InstrumentType:  result.InstrumentType,
			OptionType:      result.OptionType,
			StrikePrice:     inst.Strike(),
			TimeToExpiry:    inst.TimeToExpiry(),
			OptionPrice:     valuation.Price,
			UnderlyingPrice: md.SpotPrice,
			Volatility:      md.Volatility,
			RiskFreeRate:    md.RiskFreeRate,
			PricingModel:    model,
			CalculatedAt:    result.CalculatedAt,
			OccurredOn:      occurred,
		}
		if err := c.publisher.Publish(txCtx, domain.OptionPricedEventType, result.Symbol, optionEvent); err != nil {
			return err
		}

		greeksEvent := domain.GreeksCalculatedEvent{
			ResultID:        result.ResultID,
			Symbol:          result.Symbol,
			OptionType:      result.OptionType,
			StrikePrice:     inst.Strike(),
			UnderlyingPrice: md.SpotPrice,
			Delta:           valuation.Greeks.Delta,
			Gamma:           valuation.Greeks.Gamma,
			Theta:           valuation.Greeks.Theta,
			Vega:            valuation.Greeks.Vega,
			Rho:             valuation.Greeks.Rho,
			HasRho:          valuation.HasRho,
			CalculatedAt:    result.CalculatedAt,
			OccurredOn:      occurred,
		}
		return c.publisher.Publish(txCtx, domain.GreeksCalculatedEventType, result.Symbol, greeksEvent)
	})
	if err != nil {
		logger.Error(ctx, "failed to persist pricing result", "symbol", cmd.Symbol, "error", err)
		c.metrics.RecordPricing(inst.InstrumentType(), model, domain.ErrorCode(err), time.Since(start))
		return nil, err
	}

	c.metrics.RecordPricing(inst.InstrumentType(), model, "", time.Since(start))
	logger.Debug(ctx, "option priced",
		"symbol", result.Symbol,
		"instrument", result.InstrumentType,
		"model", model,
		"price", valuation.Price,
	)
	return result, nil
}

// fail 记录失败指标并在事务外写入 PricingError 事件
func (c *PricingCommandService) fail(ctx context.Context, cmd PriceOptionCommand, instrument, model string, start time.Time, cause error) {
	code := domain.ErrorCode(cause)
	c.metrics.RecordPricing(instrument, model, code, time.Since(start))
	logger.Warn(ctx, "option pricing failed", "symbol", cmd.Symbol, "code", code, "error", cause)

	if c.publisher == nil {
		return
	}
	now := c.now()
	event := domain.PricingErrorEvent{
		Symbol:      cmd.Symbol,
		OptionStyle: cmd.OptionStyle,
		OptionType:  domain.OptionType(cmd.OptionType),
		StrikePrice: cmd.StrikePrice,
		Error:       cause.Error(),
		ErrorCode:   code,
		OccurredAt:  now.Unix(),
		OccurredOn:  now,
	}
	if err := c.publisher.Publish(ctx, domain.PricingErrorEventType, cmd.Symbol, event); err != nil {
		logger.Error(ctx, "failed to publish pricing error event", "symbol", cmd.Symbol, "error", err)
	}
}

// BatchPriceOptions 批量定价，单个合约失败不影响其它合约
func (c *PricingCommandService) BatchPriceOptions(ctx context.Context, cmd BatchPriceOptionsCommand) (*BatchPricingResult, error) {
	if cmd.BatchID == "" {
		cmd.BatchID = c.nextBatchID()
	}
	defer logger.LogDuration(ctx, "batch pricing", "batch_id", cmd.BatchID, "contracts", len(cmd.Contracts))()

	var (
		mu        sync.Mutex
		totalTime time.Duration
		results   = make([]*domain.PricingResult, len(cmd.Contracts))
		failures  = make([]BatchFailure, 0)
	)

	g := new(errgroup.Group)
	g.SetLimit(c.maxParallelism)
	for i, contract := range cmd.Contracts {
		g.Go(func() error {
			started := time.Now()
			var (
				res *domain.PricingResult
				err = ctx.Err()
			)
			if err == nil {
				res, err = c.PriceOption(ctx, contract)
			}
			elapsed := time.Since(started)

			mu.Lock()
			defer mu.Unlock()
			totalTime += elapsed
			if err != nil {
				failures = append(failures, BatchFailure{
					Index:  i,
					Symbol: contract.Symbol,
					Error:  err.Error(),
					Code:   domain.ErrorCode(err),
				})
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	out := &BatchPricingResult{
		BatchID:  cmd.BatchID,
		Results:  make([]*domain.PricingResult, 0, len(results)),
		Failures: failures,
	}
	for _, r := range results {
		if r != nil {
			out.Results = append(out.Results, r)
		}
	}
	slices.SortFunc(out.Failures, func(a, b BatchFailure) int { return a.Index - b.Index })
	out.SuccessCount = len(out.Results)
	out.FailureCount = len(out.Failures)
	if len(cmd.Contracts) > 0 {
		out.AverageTime = totalTime.Seconds() / float64(len(cmd.Contracts))
	}

	if c.publisher != nil {
		now := c.now()
		err := c.publisher.Publish(ctx, domain.BatchPricingCompletedEventType, cmd.BatchID, domain.BatchPricingCompletedEvent{
			BatchID:        cmd.BatchID,
			Symbols:        extractSymbols(cmd.Contracts),
			TotalContracts: len(cmd.Contracts),
			SuccessCount:   out.SuccessCount,
			FailureCount:   out.FailureCount,
			AverageTime:    out.AverageTime,
			CompletedAt:    now.Unix(),
			OccurredOn:     now,
		})
		if err != nil {
			logger.Error(ctx, "failed to publish batch pricing event", "batch_id", cmd.BatchID, "error", err)
		}
	}
	return out, nil
}

func (c *PricingCommandService) nextBatchID() string {
	if c.ids != nil {
		return c.ids.NextID()
	}
	return idgen.NewUUID()
}

// extractSymbols 按出现顺序去重提取合约代码
func extractSymbols(contracts []PriceOptionCommand) []string {
	symbols := make([]string, 0, len(contracts))
	seen := make(map[string]bool)

	for _, contract := range contracts {
		if !seen[contract.Symbol] {
			symbols = append(symbols, contract.Symbol)
			seen[contract.Symbol] = true
		}
	}

	return symbols
}
