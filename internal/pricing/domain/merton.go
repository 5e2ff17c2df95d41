package domain

import "math"

const (
	// MertonMaxTerms 泊松级数硬上限
	MertonMaxTerms = 200
	// MertonTailTolerance 剩余泊松概率质量阈值
	MertonTailTolerance = 1e-12
)

// JumpParams Merton 跳跃参数
type JumpParams struct {
	Intensity  float64 `json:"intensity"`  // λ，每年跳跃次数
	Mean       float64 `json:"mean"`       // μ_J，对数跳跃幅度均值
	Volatility float64 `json:"volatility"` // σ_J，对数跳跃幅度波动率
}

// Validate 校验跳跃参数
func (j JumpParams) Validate() error {
	if !isFinite(j.Intensity) || !isFinite(j.Mean) || !isFinite(j.Volatility) {
		return invalidArgument("jump parameters must be finite")
	}
	if j.Intensity < 0 {
		return invalidArgument("jump intensity must be non-negative")
	}
	if j.Volatility < 0 {
		return invalidArgument("jump volatility must be non-negative")
	}
	return nil
}

// MertonPrice Merton 跳跃扩散期权价格
//
// 价格为以泊松概率加权的 Black-Scholes 价格之和：
//
//	price = Σ w_n · BS(S, K, r_n, T, σ_n),  w_n = e^(−λ'T)(λ'T)^n / n!
//	λ' = λ(1+κ), κ = e^(μ_J+σ_J²/2) − 1
//	σ_n² = σ² + nσ_J²/T, r_n = r − λκ + n(μ_J+σ_J²/2)/T
//
// 权重在对数空间计算，从泊松众数向两侧展开，每次取权重较大的一侧，
// 剩余概率质量低于 MertonTailTolerance 即停止，最多 MertonMaxTerms 项。
// 看涨每一项不超过 S，截断误差不超过 (1 − Σw)·S；看跌由平价关系得到同阶误差。
// 达到项数上限后剩余质量仍超过阈值时返回 ErrComputationFault。
func MertonPrice(S, K, r, T, sigma float64, optionType OptionType, jumps JumpParams) (float64, error) {
	price, tail := mertonSeries(S, K, r, T, sigma, optionType, jumps)
	if tail > MertonTailTolerance {
		return 0, computationFault("merton series truncated after %d terms with tail mass %.3g (lambda=%g, T=%g)",
			MertonMaxTerms, tail, jumps.Intensity, T)
	}
	return price, nil
}

// mertonSeries 返回价格与未计入的泊松概率质量
func mertonSeries(S, K, r, T, sigma float64, optionType OptionType, jumps JumpParams) (float64, float64) {
	if T <= 0 {
		return IntrinsicValue(optionType, S, K), 0
	}
	if jumps.Intensity == 0 {
		return BlackScholesPrice(optionType, S, K, r, T, sigma), 0
	}

	logJump := jumps.Mean + 0.5*jumps.Volatility*jumps.Volatility
	kappa := math.Exp(logJump) - 1
	lambdaT := jumps.Intensity * (1 + kappa) * T
	logLambdaT := math.Log(lambdaT)

	weight := func(n int) float64 {
		lg, _ := math.Lgamma(float64(n) + 1)
		return math.Exp(-lambdaT + float64(n)*logLambdaT - lg)
	}
	term := func(n int) float64 {
		fn := float64(n)
		sigmaN := math.Sqrt(sigma*sigma + fn*jumps.Volatility*jumps.Volatility/T)
		rN := r - jumps.Intensity*kappa + fn*logJump/T
		return BlackScholesPrice(optionType, S, K, rN, T, sigmaN)
	}

	mode := int(math.Floor(lambdaT))
	w := weight(mode)
	mass := w
	price := w * term(mode)

	// lo/hi 为两侧下一个待加入的项
	lo, hi := mode-1, mode+1
	wLo, wHi := 0.0, weight(hi)
	if lo >= 0 {
		wLo = weight(lo)
	}
	for terms := 1; terms < MertonMaxTerms && 1-mass >= MertonTailTolerance; terms++ {
		if lo >= 0 && wLo >= wHi {
			price += wLo * term(lo)
			mass += wLo
			lo--
			wLo = 0
			if lo >= 0 {
				wLo = weight(lo)
			}
			continue
		}
		price += wHi * term(hi)
		mass += wHi
		hi++
		wHi = weight(hi)
	}
	return price, math.Max(1-mass, 0)
}

// MertonTailMass 返回截断后未计入的泊松概率质量
func MertonTailMass(T float64, jumps JumpParams) float64 {
	_, tail := mertonSeries(1, 1, 0, T, 0, OptionTypeCall, jumps)
	return tail
}
