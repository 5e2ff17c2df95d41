package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	refS     = 100.0
	refK     = 100.0
	refR     = 0.05
	refT     = 1.0
	refSigma = 0.2
)

func TestBlackScholesReferenceValues(t *testing.T) {
	assert.InDelta(t, 10.450583572185565, CallPrice(refS, refK, refR, refT, refSigma), 1e-8)
	assert.InDelta(t, 5.573526022256971, PutPrice(refS, refK, refR, refT, refSigma), 1e-8)
	assert.InDelta(t, 0.6368306511756191, CallDelta(refS, refK, refR, refT, refSigma), 1e-8)
	assert.InDelta(t, 0.6368306511756191-1, PutDelta(refS, refK, refR, refT, refSigma), 1e-8)

	res := CalculateBlackScholes(OptionTypeCall, BlackScholesInput{S: refS, K: refK, T: refT, R: refR, V: refSigma})
	assert.InDelta(t, 10.450583572185565, res.Price, 1e-8)
	assert.InDelta(t, 0.6368306511756191, res.Delta, 1e-8)
	assert.Equal(t, Gamma(refS, refK, refR, refT, refSigma), res.Gamma)
	assert.Equal(t, Vega(refS, refK, refR, refT, refSigma), res.Vega)
}

func TestPutCallParity(t *testing.T) {
	cases := []struct{ S, K, r, T, sigma float64 }{
		{100, 100, 0.05, 1, 0.2},
		{80, 100, 0.03, 0.5, 0.35},
		{120, 90, 0.0, 2, 0.15},
		{50, 70, -0.01, 0.25, 0.6},
	}
	for _, c := range cases {
		call := CallPrice(c.S, c.K, c.r, c.T, c.sigma)
		put := PutPrice(c.S, c.K, c.r, c.T, c.sigma)
		assert.InDelta(t, c.S-c.K*math.Exp(-c.r*c.T), call-put, 1e-9)
	}
}

func TestNoArbitrageLowerBounds(t *testing.T) {
	for _, S := range []float64{60, 90, 100, 110, 150} {
		for _, sigma := range []float64{0.05, 0.2, 0.8} {
			fwd := S - refK*math.Exp(-refR*refT)
			assert.GreaterOrEqual(t, CallPrice(S, refK, refR, refT, sigma), math.Max(fwd, 0)-1e-12)
			assert.GreaterOrEqual(t, PutPrice(S, refK, refR, refT, sigma), math.Max(-fwd, 0)-1e-12)
		}
	}
}

func TestBlackScholesDegenerateLimits(t *testing.T) {
	t.Run("expired", func(t *testing.T) {
		assert.Equal(t, 10.0, CallPrice(110, 100, 0.05, 0, 0.2))
		assert.Equal(t, 0.0, PutPrice(110, 100, 0.05, 0, 0.2))
		assert.Equal(t, 1.0, CallDelta(110, 100, 0.05, 0, 0.2))
		assert.Equal(t, -1.0, PutDelta(90, 100, 0.05, 0, 0.2))
		assert.Zero(t, Gamma(110, 100, 0.05, 0, 0.2))
		assert.Zero(t, Vega(110, 100, 0.05, 0, 0.2))
		assert.Zero(t, CallTheta(110, 100, 0.05, 0, 0.2))
	})

	t.Run("zero volatility uses intrinsic value", func(t *testing.T) {
		assert.Zero(t, CallPrice(refS, refK, refR, refT, 0))
		assert.Equal(t, 2.0, PutPrice(98, refK, refR, refT, 0))
		assert.Zero(t, PutPrice(refS, refK, refR, refT, 0))
		assert.Equal(t, 5.0, CallPrice(105, refK, refR, refT, 0))

		assert.Equal(t, 0.0, CallDelta(refS, refK, refR, refT, 0))
		assert.Equal(t, 1.0, CallDelta(101, refK, refR, refT, 0))
		assert.Equal(t, -1.0, PutDelta(98, refK, refR, refT, 0))
		assert.Equal(t, 0.0, PutDelta(refS, refK, refR, refT, 0))

		assert.Zero(t, PutTheta(refS, refK, refR, refT, 0))
		assert.Zero(t, CallRho(105, refK, refR, refT, 0))
		assert.Zero(t, PutRho(98, refK, refR, refT, 0))
	})
}

func TestAnalyticGreeksMatchNumericalDerivatives(t *testing.T) {
	const h = 1e-4

	t.Run("theta", func(t *testing.T) {
		num := -(CallPrice(refS, refK, refR, refT+h, refSigma) - CallPrice(refS, refK, refR, refT-h, refSigma)) / (2 * h)
		assert.InDelta(t, num, CallTheta(refS, refK, refR, refT, refSigma), 1e-5)
		num = -(PutPrice(refS, refK, refR, refT+h, refSigma) - PutPrice(refS, refK, refR, refT-h, refSigma)) / (2 * h)
		assert.InDelta(t, num, PutTheta(refS, refK, refR, refT, refSigma), 1e-5)
	})

	t.Run("rho", func(t *testing.T) {
		num := (CallPrice(refS, refK, refR+h, refT, refSigma) - CallPrice(refS, refK, refR-h, refT, refSigma)) / (2 * h)
		assert.InDelta(t, num, CallRho(refS, refK, refR, refT, refSigma), 1e-5)
		num = (PutPrice(refS, refK, refR+h, refT, refSigma) - PutPrice(refS, refK, refR-h, refT, refSigma)) / (2 * h)
		assert.InDelta(t, num, PutRho(refS, refK, refR, refT, refSigma), 1e-5)
	})

	t.Run("vega", func(t *testing.T) {
		num := (CallPrice(refS, refK, refR, refT, refSigma+h) - CallPrice(refS, refK, refR, refT, refSigma-h)) / (2 * h)
		assert.InDelta(t, num, Vega(refS, refK, refR, refT, refSigma), 1e-5)
	})
}

func TestGammaAndVegaNonNegative(t *testing.T) {
	for _, S := range []float64{1, 50, 100, 200, 1000} {
		for _, T := range []float64{0.01, 0.5, 5} {
			assert.GreaterOrEqual(t, Gamma(S, refK, refR, T, refSigma), 0.0)
			assert.GreaterOrEqual(t, Vega(S, refK, refR, T, refSigma), 0.0)
		}
	}
}
