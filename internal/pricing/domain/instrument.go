package domain

import "math"

// Instrument 可定价金融工具
type Instrument interface {
	Price(md MarketData) (float64, error)
	Delta(md MarketData) (float64, error)
	Gamma(md MarketData) (float64, error)
	Vega(md MarketData) (float64, error)
	Theta(md MarketData) (float64, error)
	// IsValid 不返回错误，仅报告合约参数是否合法
	IsValid() bool
	AssetID() string
	InstrumentType() string
}

const (
	InstrumentTypeEuropean = "EuropeanOption"
	InstrumentTypeAmerican = "AmericanOption"
	InstrumentTypeBarrier  = "BarrierOption"
	InstrumentTypeAsian    = "AsianOption"
)

// negativeTolerance gamma/vega 允许的舍入残差
const negativeTolerance = -1e-10

// contractTerms 所有期权共享的合约条款
type contractTerms struct {
	optionType   OptionType
	strike       float64
	timeToExpiry float64
	assetID      string
}

func (c contractTerms) validate() error {
	if !c.optionType.valid() {
		return invalidArgument("unknown option type %q", c.optionType)
	}
	if !isFinite(c.strike) || c.strike <= 0 {
		return invalidArgument("strike price must be positive")
	}
	if !isFinite(c.timeToExpiry) || c.timeToExpiry < 0 {
		return invalidArgument("time to expiry cannot be negative")
	}
	if c.assetID == "" {
		return invalidArgument("asset id cannot be empty")
	}
	return nil
}

// AssetID 标的资产代码
func (c contractTerms) AssetID() string { return c.assetID }

// OptionType 期权类型
func (c contractTerms) OptionType() OptionType { return c.optionType }

// Strike 行权价
func (c contractTerms) Strike() float64 { return c.strike }

// TimeToExpiry 剩余期限（年）
func (c contractTerms) TimeToExpiry() float64 { return c.timeToExpiry }

func checkPrice(name string, v float64) (float64, error) {
	if !isFinite(v) || v < 0 {
		return 0, computationFault("invalid %s price %v", name, v)
	}
	return v, nil
}

func checkFinite(name string, v float64) (float64, error) {
	if !isFinite(v) {
		return 0, computationFault("invalid %s %v", name, v)
	}
	return v, nil
}

func checkNonNegative(name string, v float64) (float64, error) {
	if !isFinite(v) || v < negativeTolerance {
		return 0, computationFault("invalid %s %v", name, v)
	}
	return math.Max(v, 0), nil
}
