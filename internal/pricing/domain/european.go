package domain

// EuropeanOption 欧式期权，可在 Black-Scholes、二叉树与 Merton 跳跃扩散之间切换定价模型
type EuropeanOption struct {
	contractTerms
	model         PricingModel
	binomialSteps int
	jumps         JumpParams
}

// europeanPricer 在给定剩余期限下的定价策略
type europeanPricer func(o *EuropeanOption, md MarketData, timeToExpiry float64) (float64, error)

var europeanPricers = map[PricingModel]europeanPricer{
	PricingModelBlackScholes: func(o *EuropeanOption, md MarketData, T float64) (float64, error) {
		return BlackScholesPrice(o.optionType, md.SpotPrice, o.strike, md.RiskFreeRate, T, md.Volatility), nil
	},
	PricingModelBinomial: func(o *EuropeanOption, md MarketData, T float64) (float64, error) {
		return EuropeanBinomialPrice(md.SpotPrice, o.strike, md.RiskFreeRate, T, md.Volatility, o.optionType, o.binomialSteps)
	},
	PricingModelMertonJumpDiffusion: func(o *EuropeanOption, md MarketData, T float64) (float64, error) {
		return MertonPrice(md.SpotPrice, o.strike, md.RiskFreeRate, T, md.Volatility, o.optionType, o.jumps)
	},
}

// NewEuropeanOption 创建欧式期权，model 为空时使用 Black-Scholes
func NewEuropeanOption(optionType OptionType, strike, timeToExpiry float64, assetID string, model PricingModel) (*EuropeanOption, error) {
	if model == "" {
		model = PricingModelBlackScholes
	}
	o := &EuropeanOption{
		contractTerms: contractTerms{
			optionType:   optionType,
			strike:       strike,
			timeToExpiry: timeToExpiry,
			assetID:      assetID,
		},
		model:         model,
		binomialSteps: DefaultBinomialSteps,
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *EuropeanOption) validate() error {
	if err := o.contractTerms.validate(); err != nil {
		return err
	}
	if err := validateSteps(o.binomialSteps); err != nil {
		return err
	}
	return o.jumps.Validate()
}

// IsValid 合约参数是否合法
func (o *EuropeanOption) IsValid() bool {
	return o.validate() == nil
}

// InstrumentType 工具类型
func (o *EuropeanOption) InstrumentType() string { return InstrumentTypeEuropean }

// PricingModel 当前定价模型
func (o *EuropeanOption) PricingModel() PricingModel { return o.model }

// SetPricingModel 切换定价模型，未知模型在定价时报错
func (o *EuropeanOption) SetPricingModel(model PricingModel) {
	o.model = model
}

// BinomialSteps 二叉树步数
func (o *EuropeanOption) BinomialSteps() int { return o.binomialSteps }

// SetBinomialSteps 设置二叉树步数
func (o *EuropeanOption) SetBinomialSteps(steps int) error {
	if err := validateSteps(steps); err != nil {
		return err
	}
	o.binomialSteps = steps
	return nil
}

// JumpParams 跳跃参数
func (o *EuropeanOption) JumpParams() JumpParams { return o.jumps }

// SetJumpParameters 设置 Merton 跳跃参数
func (o *EuropeanOption) SetJumpParameters(intensity, mean, volatility float64) error {
	jumps := JumpParams{Intensity: intensity, Mean: mean, Volatility: volatility}
	if err := jumps.Validate(); err != nil {
		return err
	}
	o.jumps = jumps
	return nil
}

// Price 期权价格
func (o *EuropeanOption) Price(md MarketData) (float64, error) {
	return o.priceAt(md, o.timeToExpiry)
}

// priceAt 按指定剩余期限定价，供 bump 计算复用
func (o *EuropeanOption) priceAt(md MarketData, timeToExpiry float64) (float64, error) {
	if err := md.Validate(); err != nil {
		return 0, err
	}
	pricer, ok := europeanPricers[o.model]
	if !ok {
		return 0, unsupportedConfiguration("unknown pricing model %q", o.model)
	}
	v, err := pricer(o, md, timeToExpiry)
	if err != nil {
		return 0, err
	}
	return checkPrice("european option", v)
}

func (o *EuropeanOption) analytic() bool {
	return o.model == PricingModelBlackScholes
}

// Delta 解析或数值 Delta
func (o *EuropeanOption) Delta(md MarketData) (float64, error) {
	if err := md.Validate(); err != nil {
		return 0, err
	}
	var v float64
	if o.analytic() {
		if o.optionType == OptionTypeCall {
			v = CallDelta(md.SpotPrice, o.strike, md.RiskFreeRate, o.timeToExpiry, md.Volatility)
		} else {
			v = PutDelta(md.SpotPrice, o.strike, md.RiskFreeRate, o.timeToExpiry, md.Volatility)
		}
	} else {
		var err error
		if v, err = BumpDelta(o.priceAt, md, o.timeToExpiry); err != nil {
			return 0, err
		}
	}
	return checkFinite("delta", v)
}

// Gamma 解析或数值 Gamma
func (o *EuropeanOption) Gamma(md MarketData) (float64, error) {
	if err := md.Validate(); err != nil {
		return 0, err
	}
	var v float64
	if o.analytic() {
		v = Gamma(md.SpotPrice, o.strike, md.RiskFreeRate, o.timeToExpiry, md.Volatility)
	} else {
		var err error
		if v, err = BumpGamma(o.priceAt, md, o.timeToExpiry); err != nil {
			return 0, err
		}
	}
	return checkNonNegative("gamma", v)
}

// Vega 解析或数值 Vega
func (o *EuropeanOption) Vega(md MarketData) (float64, error) {
	if err := md.Validate(); err != nil {
		return 0, err
	}
	var v float64
	if o.analytic() {
		v = Vega(md.SpotPrice, o.strike, md.RiskFreeRate, o.timeToExpiry, md.Volatility)
	} else {
		var err error
		if v, err = BumpVega(o.priceAt, md, o.timeToExpiry); err != nil {
			return 0, err
		}
	}
	return checkNonNegative("vega", v)
}

// Theta 解析或数值 Theta（按年），剩余期限不足一天时为 0
func (o *EuropeanOption) Theta(md MarketData) (float64, error) {
	if err := md.Validate(); err != nil {
		return 0, err
	}
	if o.timeToExpiry < ThetaBump {
		return 0, nil
	}
	var v float64
	if o.analytic() {
		if o.optionType == OptionTypeCall {
			v = CallTheta(md.SpotPrice, o.strike, md.RiskFreeRate, o.timeToExpiry, md.Volatility)
		} else {
			v = PutTheta(md.SpotPrice, o.strike, md.RiskFreeRate, o.timeToExpiry, md.Volatility)
		}
	} else {
		var err error
		if v, err = ForwardTheta(o.priceAt, md, o.timeToExpiry); err != nil {
			return 0, err
		}
	}
	return checkFinite("theta", v)
}

// Rho 仅 Black-Scholes 模型提供解析 Rho
func (o *EuropeanOption) Rho(md MarketData) (float64, bool, error) {
	if err := md.Validate(); err != nil {
		return 0, false, err
	}
	if !o.analytic() {
		return 0, false, nil
	}
	var v float64
	if o.optionType == OptionTypeCall {
		v = CallRho(md.SpotPrice, o.strike, md.RiskFreeRate, o.timeToExpiry, md.Volatility)
	} else {
		v = PutRho(md.SpotPrice, o.strike, md.RiskFreeRate, o.timeToExpiry, md.Volatility)
	}
	v, err := checkFinite("rho", v)
	return v, true, err
}
