package domain

// AmericanOption 美式期权，总是使用带提前行权的二叉树定价，Greeks 全部由 bump 计算
type AmericanOption struct {
	contractTerms
	binomialSteps int
}

// NewAmericanOption 创建美式期权，steps 为 0 时使用默认步数
func NewAmericanOption(optionType OptionType, strike, timeToExpiry float64, assetID string, steps int) (*AmericanOption, error) {
	if steps == 0 {
		steps = DefaultBinomialSteps
	}
	o := &AmericanOption{
		contractTerms: contractTerms{
			optionType:   optionType,
			strike:       strike,
			timeToExpiry: timeToExpiry,
			assetID:      assetID,
		},
		binomialSteps: steps,
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *AmericanOption) validate() error {
	if err := o.contractTerms.validate(); err != nil {
		return err
	}
	return validateSteps(o.binomialSteps)
}

// IsValid 合约参数是否合法
func (o *AmericanOption) IsValid() bool {
	return o.validate() == nil
}

// InstrumentType 工具类型
func (o *AmericanOption) InstrumentType() string { return InstrumentTypeAmerican }

// BinomialSteps 二叉树步数
func (o *AmericanOption) BinomialSteps() int { return o.binomialSteps }

// SetBinomialSteps 设置二叉树步数
func (o *AmericanOption) SetBinomialSteps(steps int) error {
	if err := validateSteps(steps); err != nil {
		return err
	}
	o.binomialSteps = steps
	return nil
}

// IntrinsicValue 当前现价下的立即行权价值
func (o *AmericanOption) IntrinsicValue(spot float64) float64 {
	return IntrinsicValue(o.optionType, spot, o.strike)
}

// Price 美式期权价格
func (o *AmericanOption) Price(md MarketData) (float64, error) {
	return o.priceAt(md, o.timeToExpiry)
}

func (o *AmericanOption) priceAt(md MarketData, timeToExpiry float64) (float64, error) {
	if err := md.Validate(); err != nil {
		return 0, err
	}
	v, err := AmericanBinomialPrice(md.SpotPrice, o.strike, md.RiskFreeRate, timeToExpiry, md.Volatility, o.optionType, o.binomialSteps)
	if err != nil {
		return 0, err
	}
	return checkPrice("american option", v)
}

// Delta 数值 Delta
func (o *AmericanOption) Delta(md MarketData) (float64, error) {
	return bumpDelta(o.priceAt, md, o.timeToExpiry)
}

// Gamma 数值 Gamma
func (o *AmericanOption) Gamma(md MarketData) (float64, error) {
	if err := md.Validate(); err != nil {
		return 0, err
	}
	v, err := BumpGamma(o.priceAt, md, o.timeToExpiry)
	if err != nil {
		return 0, err
	}
	return checkNonNegative("gamma", v)
}

// Vega 数值 Vega
func (o *AmericanOption) Vega(md MarketData) (float64, error) {
	if err := md.Validate(); err != nil {
		return 0, err
	}
	v, err := BumpVega(o.priceAt, md, o.timeToExpiry)
	if err != nil {
		return 0, err
	}
	return checkNonNegative("vega", v)
}

// Theta 前向差分 Theta
func (o *AmericanOption) Theta(md MarketData) (float64, error) {
	return forwardTheta(o.priceAt, md, o.timeToExpiry)
}

// bumpDelta 校验市场数据后计算数值 Delta
func bumpDelta(price PriceFunc, md MarketData, timeToExpiry float64) (float64, error) {
	if err := md.Validate(); err != nil {
		return 0, err
	}
	v, err := BumpDelta(price, md, timeToExpiry)
	if err != nil {
		return 0, err
	}
	return checkFinite("delta", v)
}

func forwardTheta(price PriceFunc, md MarketData, timeToExpiry float64) (float64, error) {
	if err := md.Validate(); err != nil {
		return 0, err
	}
	v, err := ForwardTheta(price, md, timeToExpiry)
	if err != nil {
		return 0, err
	}
	return checkFinite("theta", v)
}
