package domain

import "math"

const (
	ImpliedVolInitialGuess = 0.2
	ImpliedVolTolerance    = 1e-8
	ImpliedVolMaxIter      = 100

	impliedVolFloor    = 0.01
	impliedVolCeiling  = 10.0
	impliedVolMinVega  = 1e-10
	intrinsicTolerance = 1e-10
)

// ImpliedVolatility 用 Newton-Raphson 从 Black-Scholes 价格反解波动率
// 每步后波动率被限制在 [0.01, 10]
func ImpliedVolatility(optionType OptionType, marketPrice, S, K, r, T float64) (float64, error) {
	if !optionType.valid() {
		return 0, invalidArgument("unknown option type %q", optionType)
	}
	if !isFinite(marketPrice) || !isFinite(S) || !isFinite(K) || !isFinite(r) || !isFinite(T) {
		return 0, invalidArgument("implied volatility inputs must be finite")
	}
	if S <= 0 || K <= 0 {
		return 0, invalidArgument("spot and strike must be positive")
	}
	if marketPrice < 0 {
		return 0, invalidArgument("market price cannot be negative")
	}
	if T <= 0 {
		return 0, invalidArgument("cannot calculate implied volatility for expired option")
	}
	if lower := europeanLowerBound(optionType, S, K, r, T); marketPrice < lower-intrinsicTolerance {
		return 0, invalidArgument("market price %.6g below no-arbitrage bound %.6g", marketPrice, lower)
	}

	sigma := ImpliedVolInitialGuess
	for i := 0; i < ImpliedVolMaxIter; i++ {
		diff := BlackScholesPrice(optionType, S, K, r, T, sigma) - marketPrice
		if math.Abs(diff) < ImpliedVolTolerance {
			return sigma, nil
		}
		vega := Vega(S, K, r, T, sigma)
		if vega < impliedVolMinVega {
			return 0, computationFault("vega too small for newton iteration at sigma=%.6g", sigma)
		}
		sigma -= diff / vega
		sigma = math.Min(math.Max(sigma, impliedVolFloor), impliedVolCeiling)
	}
	return 0, computationFault("implied volatility did not converge in %d iterations", ImpliedVolMaxIter)
}

// europeanLowerBound 欧式期权无套利下界 max(S−Ke^(−rT),0) / max(Ke^(−rT)−S,0)
func europeanLowerBound(optionType OptionType, S, K, r, T float64) float64 {
	fwd := S - discountedStrike(K, r, T)
	if optionType == OptionTypeCall {
		return math.Max(fwd, 0)
	}
	return math.Max(-fwd, 0)
}
