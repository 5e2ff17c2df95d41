package domain

import "strings"

// AverageType 亚式期权平均方式
type AverageType string

const (
	AverageArithmetic AverageType = "ARITHMETIC"
	AverageGeometric  AverageType = "GEOMETRIC"
)

var engineAverageTypes = map[AverageType]EngineAverageType{
	AverageArithmetic: EngineAverageArithmetic,
	AverageGeometric:  EngineAverageGeometric,
}

// ParseAverageType 解析平均方式，空字符串返回算术平均
func ParseAverageType(s string) (AverageType, error) {
	t := AverageType(strings.ToUpper(strings.TrimSpace(s)))
	if t == "" {
		return AverageArithmetic, nil
	}
	if _, ok := engineAverageTypes[t]; !ok {
		return "", invalidArgument("unknown average type %q", s)
	}
	return t, nil
}

// AsianOption 亚式期权，价格由外部引擎给出
type AsianOption struct {
	contractTerms
	averageType AverageType
	numFixings  int
	runningSum  float64
	pastFixings int
	engine      ExoticEngine
}

// NewAsianOption 创建亚式期权
// runningSum 为已观察的 pastFixings 个定盘价累计值（算术平均为和，几何平均为乘积），engine 可以为 nil
func NewAsianOption(optionType OptionType, strike, timeToExpiry float64, assetID string, averageType AverageType, numFixings int, runningSum float64, pastFixings int, engine ExoticEngine) (*AsianOption, error) {
	o := &AsianOption{
		contractTerms: contractTerms{
			optionType:   optionType,
			strike:       strike,
			timeToExpiry: timeToExpiry,
			assetID:      assetID,
		},
		averageType: averageType,
		numFixings:  numFixings,
		runningSum:  runningSum,
		pastFixings: pastFixings,
		engine:      engine,
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *AsianOption) validate() error {
	if err := o.contractTerms.validate(); err != nil {
		return err
	}
	if _, ok := engineAverageTypes[o.averageType]; !ok {
		return invalidArgument("unknown average type %q", o.averageType)
	}
	if o.numFixings < 1 {
		return invalidArgument("number of fixings must be positive")
	}
	if o.pastFixings < 0 || o.pastFixings > o.numFixings {
		return invalidArgument("invalid number of past fixings %d", o.pastFixings)
	}
	if !isFinite(o.runningSum) || o.runningSum < 0 {
		return invalidArgument("running sum must be finite and non-negative")
	}
	return nil
}

// IsValid 合约参数是否合法
func (o *AsianOption) IsValid() bool {
	return o.validate() == nil
}

// InstrumentType 工具类型
func (o *AsianOption) InstrumentType() string { return InstrumentTypeAsian }

// AverageType 平均方式
func (o *AsianOption) AverageType() AverageType { return o.averageType }

// NumFixings 定盘总次数
func (o *AsianOption) NumFixings() int { return o.numFixings }

// Price 委托外部引擎定价
func (o *AsianOption) Price(md MarketData) (float64, error) {
	return o.priceAt(md, o.timeToExpiry)
}

func (o *AsianOption) priceAt(md MarketData, timeToExpiry float64) (float64, error) {
	if err := md.Validate(); err != nil {
		return 0, err
	}
	if o.engine == nil {
		return 0, unsupportedConfiguration("asian option pricing requires an exotic pricing engine; set pricing.exotic_engine_url")
	}
	v, err := o.engine.AsianPrice(AsianQuote{
		OptionType:   engineOptionType(o.optionType),
		AverageType:  engineAverageTypes[o.averageType],
		Spot:         md.SpotPrice,
		Strike:       o.strike,
		RiskFreeRate: md.RiskFreeRate,
		Volatility:   md.Volatility,
		TimeToExpiry: timeToExpiry,
		NumFixings:   o.numFixings,
		RunningSum:   o.runningSum,
		PastFixings:  o.pastFixings,
	})
	if err != nil {
		return 0, err
	}
	return checkPrice("asian option", v)
}

// Delta 数值 Delta
func (o *AsianOption) Delta(md MarketData) (float64, error) {
	return bumpDelta(o.priceAt, md, o.timeToExpiry)
}

// Gamma 数值 Gamma
func (o *AsianOption) Gamma(md MarketData) (float64, error) {
	return finiteGamma(o.priceAt, md, o.timeToExpiry)
}

// Vega 数值 Vega
func (o *AsianOption) Vega(md MarketData) (float64, error) {
	return finiteVega(o.priceAt, md, o.timeToExpiry)
}

// Theta 前向差分 Theta
func (o *AsianOption) Theta(md MarketData) (float64, error) {
	return forwardTheta(o.priceAt, md, o.timeToExpiry)
}
