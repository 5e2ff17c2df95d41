package domain

import "strings"

// BarrierType 障碍类型
type BarrierType string

const (
	BarrierDownIn  BarrierType = "DOWN_IN"  // 现价下穿障碍后生效
	BarrierDownOut BarrierType = "DOWN_OUT" // 现价下穿障碍后失效
	BarrierUpIn    BarrierType = "UP_IN"    // 现价上穿障碍后生效
	BarrierUpOut   BarrierType = "UP_OUT"   // 现价上穿障碍后失效
)

var engineBarrierTypes = map[BarrierType]EngineBarrierType{
	BarrierDownIn:  EngineBarrierDownIn,
	BarrierDownOut: EngineBarrierDownOut,
	BarrierUpIn:    EngineBarrierUpIn,
	BarrierUpOut:   EngineBarrierUpOut,
}

// ParseBarrierType 解析障碍类型
func ParseBarrierType(s string) (BarrierType, error) {
	t := BarrierType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := engineBarrierTypes[t]; !ok {
		return "", invalidArgument("unknown barrier type %q", s)
	}
	return t, nil
}

// BarrierOption 障碍期权，价格由外部引擎给出
type BarrierOption struct {
	contractTerms
	barrier     float64
	barrierType BarrierType
	rebate      float64
	engine      ExoticEngine
}

// NewBarrierOption 创建障碍期权，engine 可以为 nil
func NewBarrierOption(optionType OptionType, strike, barrier float64, barrierType BarrierType, timeToExpiry float64, assetID string, rebate float64, engine ExoticEngine) (*BarrierOption, error) {
	o := &BarrierOption{
		contractTerms: contractTerms{
			optionType:   optionType,
			strike:       strike,
			timeToExpiry: timeToExpiry,
			assetID:      assetID,
		},
		barrier:     barrier,
		barrierType: barrierType,
		rebate:      rebate,
		engine:      engine,
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *BarrierOption) validate() error {
	if err := o.contractTerms.validate(); err != nil {
		return err
	}
	if !isFinite(o.barrier) || o.barrier <= 0 {
		return invalidArgument("barrier level must be positive")
	}
	if _, ok := engineBarrierTypes[o.barrierType]; !ok {
		return invalidArgument("unknown barrier type %q", o.barrierType)
	}
	if !isFinite(o.rebate) || o.rebate < 0 {
		return invalidArgument("rebate cannot be negative")
	}
	return nil
}

// IsValid 合约参数是否合法
func (o *BarrierOption) IsValid() bool {
	return o.validate() == nil
}

// InstrumentType 工具类型
func (o *BarrierOption) InstrumentType() string { return InstrumentTypeBarrier }

// Barrier 障碍水平
func (o *BarrierOption) Barrier() float64 { return o.barrier }

// BarrierType 障碍类型
func (o *BarrierOption) BarrierType() BarrierType { return o.barrierType }

// Rebate 敲出/未敲入时的返还
func (o *BarrierOption) Rebate() float64 { return o.rebate }

// Price 委托外部引擎定价
func (o *BarrierOption) Price(md MarketData) (float64, error) {
	return o.priceAt(md, o.timeToExpiry)
}

func (o *BarrierOption) priceAt(md MarketData, timeToExpiry float64) (float64, error) {
	if err := md.Validate(); err != nil {
		return 0, err
	}
	if o.engine == nil {
		return 0, unsupportedConfiguration("barrier option pricing requires an exotic pricing engine; set pricing.exotic_engine_url")
	}
	v, err := o.engine.BarrierPrice(BarrierQuote{
		OptionType:   engineOptionType(o.optionType),
		BarrierType:  engineBarrierTypes[o.barrierType],
		Spot:         md.SpotPrice,
		Strike:       o.strike,
		Barrier:      o.barrier,
		Rebate:       o.rebate,
		RiskFreeRate: md.RiskFreeRate,
		Volatility:   md.Volatility,
		TimeToExpiry: timeToExpiry,
	})
	if err != nil {
		return 0, err
	}
	return checkPrice("barrier option", v)
}

// Delta 数值 Delta
func (o *BarrierOption) Delta(md MarketData) (float64, error) {
	return bumpDelta(o.priceAt, md, o.timeToExpiry)
}

// Gamma 数值 Gamma
func (o *BarrierOption) Gamma(md MarketData) (float64, error) {
	return finiteGamma(o.priceAt, md, o.timeToExpiry)
}

// Vega 数值 Vega
func (o *BarrierOption) Vega(md MarketData) (float64, error) {
	return finiteVega(o.priceAt, md, o.timeToExpiry)
}

// Theta 前向差分 Theta
func (o *BarrierOption) Theta(md MarketData) (float64, error) {
	return forwardTheta(o.priceAt, md, o.timeToExpiry)
}
