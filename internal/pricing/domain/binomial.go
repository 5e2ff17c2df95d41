package domain

import "math"

const (
	// DefaultBinomialSteps 默认二叉树步数
	DefaultBinomialSteps = 100
	// MinBinomialSteps / MaxBinomialSteps 步数上下限，计算量为 O(N²)
	MinBinomialSteps = 1
	MaxBinomialSteps = 10000
)

// EuropeanBinomialPrice 使用 Cox-Ross-Rubinstein 二叉树计算欧式期权价格
func EuropeanBinomialPrice(S, K, r, T, sigma float64, optionType OptionType, steps int) (float64, error) {
	return binomialPrice(S, K, r, T, sigma, optionType, steps, false)
}

// AmericanBinomialPrice 使用 Cox-Ross-Rubinstein 二叉树计算美式期权价格，每个节点允许提前行权
func AmericanBinomialPrice(S, K, r, T, sigma float64, optionType OptionType, steps int) (float64, error) {
	return binomialPrice(S, K, r, T, sigma, optionType, steps, true)
}

func validateSteps(steps int) error {
	if steps < MinBinomialSteps || steps > MaxBinomialSteps {
		return invalidArgument("binomial steps must be between %d and %d, got %d", MinBinomialSteps, MaxBinomialSteps, steps)
	}
	return nil
}

func binomialPrice(S, K, r, T, sigma float64, optionType OptionType, steps int, earlyExercise bool) (float64, error) {
	if err := validateSteps(steps); err != nil {
		return 0, err
	}
	if T <= 0 {
		return IntrinsicValue(optionType, S, K), nil
	}
	if sigma <= 0 {
		return deterministicLatticePrice(S, K, r, T, optionType, steps, earlyExercise), nil
	}

	dt := T / float64(steps)
	u := math.Exp(sigma * math.Sqrt(dt))
	d := 1 / u
	p := (math.Exp(r*dt) - d) / (u - d)
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, computationFault("risk-neutral probability %.6g outside [0,1] (r=%g, sigma=%g, dt=%g)", p, r, sigma, dt)
	}
	disc := math.Exp(-r * dt)
	u2 := u * u

	// values[i] 为 i 次上涨后的节点价值
	values := make([]float64, steps+1)
	spot := S * math.Pow(d, float64(steps))
	for i := 0; i <= steps; i++ {
		values[i] = IntrinsicValue(optionType, spot, K)
		spot *= u2
	}

	for step := steps - 1; step >= 0; step-- {
		spot = S * math.Pow(d, float64(step))
		for i := 0; i <= step; i++ {
			cont := disc * (p*values[i+1] + (1-p)*values[i])
			if earlyExercise {
				cont = math.Max(cont, IntrinsicValue(optionType, spot, K))
			}
			values[i] = cont
			spot *= u2
		}
	}
	return values[0], nil
}

// deterministicLatticePrice σ=0 时 u=d，风险中性概率无定义；标的按无风险利率确定性增长
func deterministicLatticePrice(S, K, r, T float64, optionType OptionType, steps int, earlyExercise bool) float64 {
	dt := T / float64(steps)
	disc := math.Exp(-r * dt)
	value := IntrinsicValue(optionType, S*math.Exp(r*T), K)
	for step := steps - 1; step >= 0; step-- {
		value *= disc
		if earlyExercise {
			value = math.Max(value, IntrinsicValue(optionType, S*math.Exp(r*dt*float64(step)), K))
		}
	}
	return value
}
