package domain

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// BlackScholesInput Black-Scholes 模型输入
type BlackScholesInput struct {
	S float64 // 标的资产价格
	K float64 // 执行价格
	T float64 // 到期时间 (年)
	R float64 // 无风险利率
	V float64 // 波动率
}

// BlackScholesResult Black-Scholes 模型输出
type BlackScholesResult struct {
	Price float64
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}

// CalculateBlackScholes 计算 Black-Scholes 价格和全部解析 Greeks
// 调用方负责输入校验
func CalculateBlackScholes(optionType OptionType, in BlackScholesInput) BlackScholesResult {
	res := BlackScholesResult{
		Gamma: Gamma(in.S, in.K, in.R, in.T, in.V),
		Vega:  Vega(in.S, in.K, in.R, in.T, in.V),
	}
	if optionType == OptionTypeCall {
		res.Price = CallPrice(in.S, in.K, in.R, in.T, in.V)
		res.Delta = CallDelta(in.S, in.K, in.R, in.T, in.V)
		res.Theta = CallTheta(in.S, in.K, in.R, in.T, in.V)
		res.Rho = CallRho(in.S, in.K, in.R, in.T, in.V)
	} else {
		res.Price = PutPrice(in.S, in.K, in.R, in.T, in.V)
		res.Delta = PutDelta(in.S, in.K, in.R, in.T, in.V)
		res.Theta = PutTheta(in.S, in.K, in.R, in.T, in.V)
		res.Rho = PutRho(in.S, in.K, in.R, in.T, in.V)
	}
	return res
}

// BlackScholesPrice 按期权类型计算价格
func BlackScholesPrice(optionType OptionType, S, K, r, T, sigma float64) float64 {
	if optionType == OptionTypeCall {
		return CallPrice(S, K, r, T, sigma)
	}
	return PutPrice(S, K, r, T, sigma)
}

// CallPrice 看涨期权价格
func CallPrice(S, K, r, T, sigma float64) float64 {
	if degenerate(T, sigma) {
		return math.Max(S-K, 0)
	}
	d1, d2 := d1d2(S, K, r, T, sigma)
	return S*normCdf(d1) - discountedStrike(K, r, T)*normCdf(d2)
}

// PutPrice 看跌期权价格
func PutPrice(S, K, r, T, sigma float64) float64 {
	if degenerate(T, sigma) {
		return math.Max(K-S, 0)
	}
	d1, d2 := d1d2(S, K, r, T, sigma)
	return discountedStrike(K, r, T)*normCdf(-d2) - S*normCdf(-d1)
}

// CallDelta 看涨 Delta
func CallDelta(S, K, r, T, sigma float64) float64 {
	if degenerate(T, sigma) {
		if S > K {
			return 1
		}
		return 0
	}
	d1, _ := d1d2(S, K, r, T, sigma)
	return normCdf(d1)
}

// PutDelta 看跌 Delta
func PutDelta(S, K, r, T, sigma float64) float64 {
	if degenerate(T, sigma) {
		if S < K {
			return -1
		}
		return 0
	}
	d1, _ := d1d2(S, K, r, T, sigma)
	return normCdf(d1) - 1
}

// Gamma 看涨看跌相同，恒非负
func Gamma(S, K, r, T, sigma float64) float64 {
	if degenerate(T, sigma) {
		return 0
	}
	d1, _ := d1d2(S, K, r, T, sigma)
	return normPdf(d1) / (S * sigma * math.Sqrt(T))
}

// Vega 每单位波动率，恒非负
func Vega(S, K, r, T, sigma float64) float64 {
	if degenerate(T, sigma) {
		return 0
	}
	d1, _ := d1d2(S, K, r, T, sigma)
	return S * normPdf(d1) * math.Sqrt(T)
}

// CallTheta 看涨 Theta（按年）
func CallTheta(S, K, r, T, sigma float64) float64 {
	if degenerate(T, sigma) {
		return 0
	}
	d1, d2 := d1d2(S, K, r, T, sigma)
	return -S*normPdf(d1)*sigma/(2*math.Sqrt(T)) - r*discountedStrike(K, r, T)*normCdf(d2)
}

// PutTheta 看跌 Theta（按年）
func PutTheta(S, K, r, T, sigma float64) float64 {
	if degenerate(T, sigma) {
		return 0
	}
	d1, d2 := d1d2(S, K, r, T, sigma)
	return -S*normPdf(d1)*sigma/(2*math.Sqrt(T)) + r*discountedStrike(K, r, T)*normCdf(-d2)
}

// CallRho 看涨 Rho（每单位利率）
func CallRho(S, K, r, T, sigma float64) float64 {
	if degenerate(T, sigma) {
		return 0
	}
	_, d2 := d1d2(S, K, r, T, sigma)
	return K * T * math.Exp(-r*T) * normCdf(d2)
}

// PutRho 看跌 Rho（每单位利率）
func PutRho(S, K, r, T, sigma float64) float64 {
	if degenerate(T, sigma) {
		return 0
	}
	_, d2 := d1d2(S, K, r, T, sigma)
	return -K * T * math.Exp(-r*T) * normCdf(-d2)
}

// degenerate T=0 或 σ=0 时 d1/d2 无定义，价格取内在价值 max(S-K,0)/max(K-S,0)，
// Delta 在 S=K 处阶跃，其余 Greeks 为 0
func degenerate(T, sigma float64) bool {
	return T <= 0 || sigma <= 0
}

func d1d2(S, K, r, T, sigma float64) (float64, float64) {
	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	return d1, d1 - sigma*sqrtT
}

func discountedStrike(K, r, T float64) float64 {
	return K * math.Exp(-r*T)
}

// normCdf 标准正态分布累积分布函数
func normCdf(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// normPdf 标准正态分布概率密度函数
func normPdf(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}
