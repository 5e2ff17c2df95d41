package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine 以 Black-Scholes 价格近似引擎报价，记录最近一次请求
type fakeEngine struct {
	barrierQuotes []BarrierQuote
	asianQuotes   []AsianQuote
	price         func(t EngineOptionType, spot, strike, r, T, sigma float64) float64
	err           error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		price: func(t EngineOptionType, spot, strike, r, T, sigma float64) float64 {
			if t == EngineOptionCall {
				return CallPrice(spot, strike, r, T, sigma)
			}
			return PutPrice(spot, strike, r, T, sigma)
		},
	}
}

func (f *fakeEngine) BarrierPrice(q BarrierQuote) (float64, error) {
	f.barrierQuotes = append(f.barrierQuotes, q)
	if f.err != nil {
		return 0, f.err
	}
	return f.price(q.OptionType, q.Spot, q.Strike, q.RiskFreeRate, q.TimeToExpiry, q.Volatility), nil
}

func (f *fakeEngine) AsianPrice(q AsianQuote) (float64, error) {
	f.asianQuotes = append(f.asianQuotes, q)
	if f.err != nil {
		return 0, f.err
	}
	return f.price(q.OptionType, q.Spot, q.Strike, q.RiskFreeRate, q.TimeToExpiry, q.Volatility), nil
}

func TestBarrierOptionDelegatesToEngine(t *testing.T) {
	engine := newFakeEngine()
	o, err := NewBarrierOption(OptionTypePut, refK, 80, BarrierDownOut, refT, "AAPL", 1.5, engine)
	require.NoError(t, err)
	assert.True(t, o.IsValid())
	assert.Equal(t, InstrumentTypeBarrier, o.InstrumentType())
	assert.Equal(t, 80.0, o.Barrier())
	assert.Equal(t, BarrierDownOut, o.BarrierType())
	assert.Equal(t, 1.5, o.Rebate())

	price, err := o.Price(refMarket)
	require.NoError(t, err)
	assert.InDelta(t, PutPrice(refS, refK, refR, refT, refSigma), price, 1e-12)

	require.Len(t, engine.barrierQuotes, 1)
	assert.Equal(t, BarrierQuote{
		OptionType:   EngineOptionPut,
		BarrierType:  EngineBarrierDownOut,
		Spot:         refS,
		Strike:       refK,
		Barrier:      80,
		Rebate:       1.5,
		RiskFreeRate: refR,
		Volatility:   refSigma,
		TimeToExpiry: refT,
	}, engine.barrierQuotes[0])

	v, err := Value(o, refMarket)
	require.NoError(t, err)
	assert.False(t, v.HasRho)
	assert.InDelta(t, PutDelta(refS, refK, refR, refT, refSigma), v.Greeks.Delta, 1e-3)
	assert.InDelta(t, Gamma(refS, refK, refR, refT, refSigma), v.Greeks.Gamma, 1e-3)
}

func TestBarrierGreeksOnlyRequireFiniteness(t *testing.T) {
	engine := newFakeEngine()
	// 凹的报价函数：Gamma 与 Vega 为负
	engine.price = func(_ EngineOptionType, spot, _, _, _, sigma float64) float64 {
		return 50 - 0.001*spot*spot - sigma
	}
	o, err := NewBarrierOption(OptionTypeCall, refK, 120, BarrierUpOut, refT, "AAPL", 0, engine)
	require.NoError(t, err)

	gamma, err := o.Gamma(refMarket)
	require.NoError(t, err)
	assert.Less(t, gamma, 0.0)

	vega, err := o.Vega(refMarket)
	require.NoError(t, err)
	assert.Less(t, vega, 0.0)
}

func TestBarrierOptionValidation(t *testing.T) {
	engine := newFakeEngine()
	cases := []struct {
		name        string
		barrier     float64
		barrierType BarrierType
		rebate      float64
	}{
		{"zero barrier", 0, BarrierDownIn, 0},
		{"unknown type", 90, BarrierType("SIDEWAYS"), 0},
		{"negative rebate", 90, BarrierDownIn, -1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			o, err := NewBarrierOption(OptionTypeCall, refK, c.barrier, c.barrierType, refT, "AAPL", c.rebate, engine)
			assert.Nil(t, o)
			assert.True(t, errors.Is(err, ErrInvalidArgument))
		})
	}

	bt, err := ParseBarrierType("up_in")
	require.NoError(t, err)
	assert.Equal(t, BarrierUpIn, bt)
	_, err = ParseBarrierType("")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestAsianOptionDelegatesToEngine(t *testing.T) {
	engine := newFakeEngine()
	o, err := NewAsianOption(OptionTypeCall, refK, refT, "AAPL", AverageGeometric, 12, 0, 0, engine)
	require.NoError(t, err)
	assert.Equal(t, InstrumentTypeAsian, o.InstrumentType())
	assert.Equal(t, AverageGeometric, o.AverageType())
	assert.Equal(t, 12, o.NumFixings())

	price, err := o.Price(refMarket)
	require.NoError(t, err)
	assert.InDelta(t, CallPrice(refS, refK, refR, refT, refSigma), price, 1e-12)
	require.Len(t, engine.asianQuotes, 1)
	assert.Equal(t, EngineAverageGeometric, engine.asianQuotes[0].AverageType)
	assert.Equal(t, EngineOptionCall, engine.asianQuotes[0].OptionType)
	assert.Equal(t, 12, engine.asianQuotes[0].NumFixings)

	theta, err := o.Theta(refMarket)
	require.NoError(t, err)
	assert.Less(t, theta, 0.0)
	// Theta 在 T−Δ 处重新报价
	last := engine.asianQuotes[len(engine.asianQuotes)-1]
	assert.InDelta(t, refT-ThetaBump, last.TimeToExpiry, 1e-15)
}

func TestAsianOptionValidation(t *testing.T) {
	engine := newFakeEngine()
	_, err := NewAsianOption(OptionTypeCall, refK, refT, "AAPL", AverageArithmetic, 0, 0, 0, engine)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = NewAsianOption(OptionTypeCall, refK, refT, "AAPL", AverageArithmetic, 4, 0, 5, engine)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = NewAsianOption(OptionTypeCall, refK, refT, "AAPL", AverageArithmetic, 4, -1, 1, engine)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = NewAsianOption(OptionTypeCall, refK, refT, "AAPL", AverageType("HARMONIC"), 4, 0, 0, engine)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	at, err := ParseAverageType("")
	require.NoError(t, err)
	assert.Equal(t, AverageArithmetic, at)
}

func TestExoticWithoutEngine(t *testing.T) {
	barrier, err := NewBarrierOption(OptionTypeCall, refK, 120, BarrierUpOut, refT, "AAPL", 0, nil)
	require.NoError(t, err)
	assert.True(t, barrier.IsValid())
	_, err = barrier.Price(refMarket)
	assert.True(t, errors.Is(err, ErrUnsupportedConfiguration))
	_, err = barrier.Delta(refMarket)
	assert.True(t, errors.Is(err, ErrUnsupportedConfiguration))

	asian, err := NewAsianOption(OptionTypePut, refK, refT, "AAPL", AverageArithmetic, 4, 0, 0, nil)
	require.NoError(t, err)
	_, err = Value(asian, refMarket)
	assert.True(t, errors.Is(err, ErrUnsupportedConfiguration))
}

func TestExoticEngineFailures(t *testing.T) {
	engine := newFakeEngine()
	o, err := NewBarrierOption(OptionTypeCall, refK, 120, BarrierUpIn, refT, "AAPL", 0, engine)
	require.NoError(t, err)

	engine.err = errors.New("engine down")
	_, err = o.Price(refMarket)
	assert.EqualError(t, err, "engine down")

	engine.err = nil
	engine.price = func(EngineOptionType, float64, float64, float64, float64, float64) float64 { return -1 }
	_, err = o.Price(refMarket)
	assert.True(t, errors.Is(err, ErrComputationFault))
}
