package application

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/metrics"
)

const (
	DefaultVaRScenarios   = 250
	MinVaRScenarios       = 20
	DefaultVaRHorizonDays = 1

	tradingDaysPerYear = 252.0
	varPercentile      = 5.0
)

// RiskService 组合风险计算
type RiskService struct {
	factory        *InstrumentFactory
	publisher      domain.EventPublisher
	metrics        *metrics.Metrics
	scenarios      int
	horizonDays    int
	maxParallelism int
	now            func() time.Time
}

// NewRiskService 创建组合风险服务，publisher 与 m 可以为 nil
func NewRiskService(factory *InstrumentFactory, publisher domain.EventPublisher, m *metrics.Metrics, scenarios, horizonDays, maxParallelism int) *RiskService {
	if scenarios <= 0 {
		scenarios = DefaultVaRScenarios
	}
	scenarios = max(scenarios, MinVaRScenarios)
	if horizonDays <= 0 {
		horizonDays = DefaultVaRHorizonDays
	}
	if maxParallelism <= 0 {
		maxParallelism = 1
	}
	return &RiskService{
		factory:        factory,
		publisher:      publisher,
		metrics:        m,
		scenarios:      scenarios,
		horizonDays:    horizonDays,
		maxParallelism: maxParallelism,
		now:            time.Now,
	}
}

// scenarioShocks 单因子标准正态分位数 z_i = Φ⁻¹((i+0.5)/n)，所有标的共用
func scenarioShocks(n int) []float64 {
	z := make([]float64, n)
	for i := range z {
		z[i] = distuv.UnitNormal.Quantile((float64(i) + 0.5) / float64(n))
	}
	return z
}

// CalculatePortfolioRisk 按数量加权汇总组合估值与 Greeks，并以全重估情景法计算 95% VaR
func (s *RiskService) CalculatePortfolioRisk(ctx context.Context, cmd PortfolioRiskCommand) (*PortfolioRisk, error) {
	start := time.Now()
	if len(cmd.Positions) == 0 {
		return nil, fmt.Errorf("%w: portfolio has no positions", domain.ErrInvalidArgument)
	}

	now := s.now()
	instruments := make([]PricedInstrument, len(cmd.Positions))
	marketData := make([]domain.MarketData, len(cmd.Positions))
	for i, pos := range cmd.Positions {
		if math.IsNaN(pos.Quantity) || math.IsInf(pos.Quantity, 0) {
			return nil, fmt.Errorf("%w: position %d has invalid quantity", domain.ErrInvalidArgument, i)
		}
		md, ok := cmd.MarketData[pos.Symbol]
		if !ok {
			return nil, fmt.Errorf("%w: no market data for %q", domain.ErrInvalidArgument, pos.Symbol)
		}
		inst, _, err := s.factory.Build(pos.ContractSpec, now)
		if err != nil {
			return nil, fmt.Errorf("position %d (%s): %w", i, pos.Symbol, err)
		}
		instruments[i] = inst
		marketData[i] = md
	}

	shocks := scenarioShocks(s.scenarios)
	horizon := math.Sqrt(float64(s.horizonDays) / tradingDaysPerYear)
	positions := make([]PositionRisk, len(cmd.Positions))
	scenarioPnL := make([][]float64, len(cmd.Positions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallelism)
	for i := range cmd.Positions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pos, inst, md := cmd.Positions[i], instruments[i], marketData[i]
			v, err := domain.Value(inst, md)
			if err != nil {
				return fmt.Errorf("position %d (%s): %w", i, pos.Symbol, err)
			}
			positions[i] = PositionRisk{
				Symbol:         pos.Symbol,
				InstrumentType: inst.InstrumentType(),
				Quantity:       pos.Quantity,
				UnitPrice:      v.Price,
				Value:          pos.Quantity * v.Price,
				Delta:          pos.Quantity * v.Greeks.Delta,
				Gamma:          pos.Quantity * v.Greeks.Gamma,
				Vega:           pos.Quantity * v.Greeks.Vega,
				Theta:          pos.Quantity * v.Greeks.Theta,
			}

			pnl := make([]float64, len(shocks))
			for k, z := range shocks {
				if err := gctx.Err(); err != nil {
					return err
				}
				shocked := md
				shocked.SpotPrice = md.SpotPrice * math.Exp(md.Volatility*horizon*z)
				p, err := inst.Price(shocked)
				if err != nil {
					return fmt.Errorf("position %d (%s) scenario %d: %w", i, pos.Symbol, k, err)
				}
				pnl[k] = pos.Quantity * (p - v.Price)
			}
			scenarioPnL[i] = pnl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	risk := &PortfolioRisk{
		PortfolioID:  cmd.PortfolioID,
		Positions:    positions,
		Scenarios:    s.scenarios,
		HorizonDays:  s.horizonDays,
		CalculatedAt: now.Unix(),
	}
	for _, p := range positions {
		risk.TotalValue += p.Value
		risk.TotalDelta += p.Delta
		risk.TotalGamma += p.Gamma
		risk.TotalVega += p.Vega
		risk.TotalTheta += p.Theta
	}

	total := make(stats.Float64Data, len(shocks))
	for _, pnl := range scenarioPnL {
		for k, x := range pnl {
			total[k] += x
		}
	}
	varValue, es, err := valueAtRisk(total)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrComputationFault, err)
	}
	risk.VaR95, risk.ES95 = varValue, es

	s.metrics.RecordPortfolioRisk(time.Since(start))
	s.publish(ctx, risk)
	return risk, nil
}

// valueAtRisk 返回 95% VaR 与对应的期望损失，均不小于 0
func valueAtRisk(pnl stats.Float64Data) (float64, float64, error) {
	cutoff, err := stats.Percentile(pnl, varPercentile)
	if err != nil {
		return 0, 0, err
	}
	tail := make(stats.Float64Data, 0, len(pnl)/10+1)
	for _, x := range pnl {
		if x <= cutoff {
			tail = append(tail, x)
		}
	}
	mean, err := stats.Mean(tail)
	if err != nil {
		return 0, 0, err
	}
	return math.Max(0, -cutoff), math.Max(0, -mean), nil
}

func (s *RiskService) publish(ctx context.Context, risk *PortfolioRisk) {
	if s.publisher == nil {
		return
	}
	event := domain.PortfolioRiskCalculatedEvent{
		PortfolioID:  risk.PortfolioID,
		Positions:    len(risk.Positions),
		TotalValue:   risk.TotalValue,
		TotalDelta:   risk.TotalDelta,
		TotalGamma:   risk.TotalGamma,
		TotalVega:    risk.TotalVega,
		TotalTheta:   risk.TotalTheta,
		VaR95:        risk.VaR95,
		CalculatedAt: risk.CalculatedAt,
		OccurredOn:   s.now(),
	}
	if err := s.publisher.Publish(ctx, domain.PortfolioRiskCalculatedEventType, risk.PortfolioID, event); err != nil {
		logger.Error(ctx, "failed to publish portfolio risk event", "portfolio_id", risk.PortfolioID, "error", err)
	}
}
