package application

import (
	"context"
	"errors"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

func position(symbol, optionType string, strike, quantity float64) Position {
	return Position{
		ContractSpec: ContractSpec{
			Symbol:       symbol,
			OptionType:   optionType,
			StrikePrice:  strike,
			TimeToExpiry: 0.5,
		},
		Quantity: quantity,
	}
}

func TestCalculatePortfolioRisk(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewRiskService(newTestFactory(t), pub, nil, 200, 1, 4)

	aapl := domain.MarketData{SpotPrice: 100, RiskFreeRate: 0.05, Volatility: 0.25}
	msft := domain.MarketData{SpotPrice: 300, RiskFreeRate: 0.05, Volatility: 0.3}
	risk, err := svc.CalculatePortfolioRisk(context.Background(), PortfolioRiskCommand{
		PortfolioID: "pf-1",
		Positions: []Position{
			position("AAPL", "call", 100, 10),
			position("AAPL", "put", 95, -5),
			position("MSFT", "call", 320, 3),
		},
		MarketData: map[string]domain.MarketData{"AAPL": aapl, "MSFT": msft},
	})
	require.NoError(t, err)

	wantValue := 10*domain.CallPrice(100, 100, 0.05, 0.5, 0.25) -
		5*domain.PutPrice(100, 95, 0.05, 0.5, 0.25) +
		3*domain.CallPrice(300, 320, 0.05, 0.5, 0.3)
	wantDelta := 10*domain.CallDelta(100, 100, 0.05, 0.5, 0.25) -
		5*domain.PutDelta(100, 95, 0.05, 0.5, 0.25) +
		3*domain.CallDelta(300, 320, 0.05, 0.5, 0.3)

	assert.Equal(t, "pf-1", risk.PortfolioID)
	require.Len(t, risk.Positions, 3)
	assert.InDelta(t, wantValue, risk.TotalValue, 1e-9)
	assert.InDelta(t, wantDelta, risk.TotalDelta, 1e-9)
	assert.Equal(t, -5.0, risk.Positions[1].Quantity)
	assert.Equal(t, 200, risk.Scenarios)
	assert.Equal(t, 1, risk.HorizonDays)

	assert.Greater(t, risk.VaR95, 0.0)
	assert.GreaterOrEqual(t, risk.ES95, risk.VaR95)

	require.Equal(t, []string{domain.PortfolioRiskCalculatedEventType}, pub.types())
	assert.Equal(t, "pf-1", pub.events[0].key)
}

func TestCalculatePortfolioRiskFlatBook(t *testing.T) {
	svc := NewRiskService(newTestFactory(t), nil, nil, 0, 0, 0)
	assert.Equal(t, DefaultVaRScenarios, svc.scenarios)

	risk, err := svc.CalculatePortfolioRisk(context.Background(), PortfolioRiskCommand{
		Positions:  []Position{position("AAPL", "call", 100, 0)},
		MarketData: map[string]domain.MarketData{"AAPL": {SpotPrice: 100, RiskFreeRate: 0.05, Volatility: 0.2}},
	})
	require.NoError(t, err)
	assert.Zero(t, risk.TotalValue)
	assert.Zero(t, risk.VaR95)
	assert.Zero(t, risk.ES95)
}

func TestCalculatePortfolioRiskErrors(t *testing.T) {
	svc := NewRiskService(newTestFactory(t), nil, nil, 5, 1, 2)
	assert.Equal(t, MinVaRScenarios, svc.scenarios)
	ctx := context.Background()
	md := map[string]domain.MarketData{"AAPL": {SpotPrice: 100, RiskFreeRate: 0.05, Volatility: 0.2}}

	_, err := svc.CalculatePortfolioRisk(ctx, PortfolioRiskCommand{MarketData: md})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument), "empty portfolio")

	_, err = svc.CalculatePortfolioRisk(ctx, PortfolioRiskCommand{
		Positions:  []Position{position("MSFT", "call", 100, 1)},
		MarketData: md,
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument), "missing market data")

	barrier := position("AAPL", "call", 100, 1)
	barrier.OptionStyle = "barrier"
	barrier.Barrier = 130
	barrier.BarrierType = "up_out"
	_, err = svc.CalculatePortfolioRisk(ctx, PortfolioRiskCommand{
		Positions:  []Position{position("AAPL", "put", 100, 1), barrier},
		MarketData: md,
	})
	assert.True(t, errors.Is(err, domain.ErrUnsupportedConfiguration), "one failing position fails the portfolio")

	bad := map[string]domain.MarketData{"AAPL": {SpotPrice: -1, Volatility: 0.2}}
	_, err = svc.CalculatePortfolioRisk(ctx, PortfolioRiskCommand{
		Positions:  []Position{position("AAPL", "put", 100, 1)},
		MarketData: bad,
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument), "invalid market data")
}

func TestScenarioShocks(t *testing.T) {
	z := scenarioShocks(250)
	require.Len(t, z, 250)
	for i := 1; i < len(z); i++ {
		assert.Greater(t, z[i], z[i-1])
	}
	for i := range z {
		assert.InDelta(t, -z[i], z[len(z)-1-i], 1e-9)
	}
	mean, err := stats.Mean(z)
	require.NoError(t, err)
	assert.InDelta(t, 0, mean, 1e-9)
}

func TestValueAtRisk(t *testing.T) {
	pnl := make(stats.Float64Data, 0, 100)
	for x := -20; x < 80; x++ {
		pnl = append(pnl, float64(x))
	}
	v, es, err := valueAtRisk(pnl)
	require.NoError(t, err)
	assert.Equal(t, 16.0, v)
	assert.Equal(t, 18.0, es)

	v, es, err = valueAtRisk(stats.Float64Data{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20})
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.Zero(t, es)

	_, _, err = valueAtRisk(stats.Float64Data{})
	assert.Error(t, err)
}
