package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEuropeanLatticeConvergesToBlackScholes(t *testing.T) {
	for _, optionType := range []OptionType{OptionTypeCall, OptionTypePut} {
		bs := BlackScholesPrice(optionType, refS, refK, refR, refT, refSigma)
		for _, n := range []int{50, 100, 200, 400, 1000} {
			v, err := EuropeanBinomialPrice(refS, refK, refR, refT, refSigma, optionType, n)
			require.NoError(t, err)
			assert.Less(t, math.Abs(v-bs), 5.0/float64(n), "%s N=%d", optionType, n)
		}
	}
}

func TestAmericanPutExceedsEuropean(t *testing.T) {
	american, err := AmericanBinomialPrice(100, 110, 0.05, 1, 0.3, OptionTypePut, 500)
	require.NoError(t, err)
	european, err := EuropeanBinomialPrice(100, 110, 0.05, 1, 0.3, OptionTypePut, 500)
	require.NoError(t, err)

	assert.Greater(t, american, european)
	assert.Greater(t, american, PutPrice(100, 110, 0.05, 1, 0.3))
	assert.GreaterOrEqual(t, american, 10.0)
}

func TestAmericanCallWithoutDividendsEqualsEuropean(t *testing.T) {
	american, err := AmericanBinomialPrice(refS, refK, refR, refT, refSigma, OptionTypeCall, 300)
	require.NoError(t, err)
	european, err := EuropeanBinomialPrice(refS, refK, refR, refT, refSigma, OptionTypeCall, 300)
	require.NoError(t, err)
	assert.InDelta(t, european, american, 1e-9)
}

func TestLatticeEdgeCases(t *testing.T) {
	t.Run("steps out of range", func(t *testing.T) {
		for _, n := range []int{0, -1, MaxBinomialSteps + 1} {
			_, err := EuropeanBinomialPrice(refS, refK, refR, refT, refSigma, OptionTypeCall, n)
			assert.True(t, errors.Is(err, ErrInvalidArgument), "steps=%d", n)
		}
	})

	t.Run("expired returns intrinsic", func(t *testing.T) {
		v, err := AmericanBinomialPrice(90, 100, refR, 0, refSigma, OptionTypePut, 10)
		require.NoError(t, err)
		assert.Equal(t, 10.0, v)
	})

	t.Run("zero volatility is deterministic", func(t *testing.T) {
		v, err := EuropeanBinomialPrice(refS, refK, refR, refT, 0, OptionTypeCall, 50)
		require.NoError(t, err)
		// 格点在 σ=0 时按确定性路径折现，等于贴现远期的内在价值
		assert.InDelta(t, refS-refK*math.Exp(-refR*refT), v, 1e-9)

		// 确定性路径下深度实值美式看跌立即行权
		v, err = AmericanBinomialPrice(50, 100, refR, refT, 0, OptionTypePut, 50)
		require.NoError(t, err)
		assert.InDelta(t, 50.0, v, 1e-9)
	})

	t.Run("risk-neutral probability outside unit interval", func(t *testing.T) {
		_, err := EuropeanBinomialPrice(refS, refK, 0.5, 1, 0.01, OptionTypeCall, 1)
		assert.True(t, errors.Is(err, ErrComputationFault))
	})
}
