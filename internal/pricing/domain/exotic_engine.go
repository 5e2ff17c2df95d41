package domain

// ExoticEngine 外部奇异期权定价引擎
// 障碍期权与亚式期权的估值完全委托给它，未配置时对应工具的 Price 返回 ErrUnsupportedConfiguration
type ExoticEngine interface {
	BarrierPrice(q BarrierQuote) (float64, error)
	AsianPrice(q AsianQuote) (float64, error)
}

// EngineOptionType 引擎侧期权类型
type EngineOptionType string

const (
	EngineOptionCall EngineOptionType = "Call"
	EngineOptionPut  EngineOptionType = "Put"
)

// EngineBarrierType 引擎侧障碍类型
type EngineBarrierType string

const (
	EngineBarrierDownIn  EngineBarrierType = "DownIn"
	EngineBarrierUpIn    EngineBarrierType = "UpIn"
	EngineBarrierDownOut EngineBarrierType = "DownOut"
	EngineBarrierUpOut   EngineBarrierType = "UpOut"
)

// EngineAverageType 引擎侧平均方式
type EngineAverageType string

const (
	EngineAverageArithmetic EngineAverageType = "Arithmetic"
	EngineAverageGeometric  EngineAverageType = "Geometric"
)

// BarrierQuote 障碍期权定价请求
type BarrierQuote struct {
	OptionType   EngineOptionType  `json:"option_type"`
	BarrierType  EngineBarrierType `json:"barrier_type"`
	Spot         float64           `json:"spot"`
	Strike       float64           `json:"strike"`
	Barrier      float64           `json:"barrier"`
	Rebate       float64           `json:"rebate"`
	RiskFreeRate float64           `json:"risk_free_rate"`
	Volatility   float64           `json:"volatility"`
	TimeToExpiry float64           `json:"time_to_expiry"`
}

// AsianQuote 亚式期权定价请求
type AsianQuote struct {
	OptionType   EngineOptionType  `json:"option_type"`
	AverageType  EngineAverageType `json:"average_type"`
	Spot         float64           `json:"spot"`
	Strike       float64           `json:"strike"`
	RiskFreeRate float64           `json:"risk_free_rate"`
	Volatility   float64           `json:"volatility"`
	TimeToExpiry float64           `json:"time_to_expiry"`
	NumFixings   int               `json:"num_fixings"`
	RunningSum   float64           `json:"running_sum"`
	PastFixings  int               `json:"past_fixings"`
}

func engineOptionType(t OptionType) EngineOptionType {
	if t == OptionTypeCall {
		return EngineOptionCall
	}
	return EngineOptionPut
}

// finiteGamma 委托定价工具的数值 Gamma，障碍期权的 Gamma 可以为负，只要求有限
func finiteGamma(price PriceFunc, md MarketData, timeToExpiry float64) (float64, error) {
	if err := md.Validate(); err != nil {
		return 0, err
	}
	v, err := BumpGamma(price, md, timeToExpiry)
	if err != nil {
		return 0, err
	}
	return checkFinite("gamma", v)
}

func finiteVega(price PriceFunc, md MarketData, timeToExpiry float64) (float64, error) {
	if err := md.Validate(); err != nil {
		return 0, err
	}
	v, err := BumpVega(price, md, timeToExpiry)
	if err != nil {
		return 0, err
	}
	return checkFinite("vega", v)
}
