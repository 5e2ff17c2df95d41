package application

import (
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// ContractSpec 期权合约描述，按 OptionStyle 选择对应字段
type ContractSpec struct {
	Symbol       string  `json:"symbol"`
	OptionStyle  string  `json:"option_style"`
	OptionType   string  `json:"option_type"`
	StrikePrice  float64 `json:"strike_price"`
	TimeToExpiry float64 `json:"time_to_expiry"`
	ExpiryDate   int64   `json:"expiry_date"` // 毫秒时间戳，大于 0 时覆盖 TimeToExpiry

	// 欧式期权
	PricingModel   string  `json:"pricing_model"`
	BinomialSteps  int     `json:"binomial_steps"`
	JumpIntensity  float64 `json:"jump_intensity"`
	JumpMean       float64 `json:"jump_mean"`
	JumpVolatility float64 `json:"jump_volatility"`

	// 障碍期权
	Barrier     float64 `json:"barrier"`
	BarrierType string  `json:"barrier_type"`
	Rebate      float64 `json:"rebate"`

	// 亚式期权
	AverageType string  `json:"average_type"`
	NumFixings  int     `json:"num_fixings"`
	RunningSum  float64 `json:"running_sum"`
	PastFixings int     `json:"past_fixings"`
}

// PriceOptionCommand 期权定价命令
type PriceOptionCommand struct {
	ContractSpec
	UnderlyingPrice float64 `json:"underlying_price"`
	Volatility      float64 `json:"volatility"`
	RiskFreeRate    float64 `json:"risk_free_rate"`
}

// MarketData 命令携带的市场数据
func (c PriceOptionCommand) MarketData() domain.MarketData {
	return domain.MarketData{
		SpotPrice:    c.UnderlyingPrice,
		RiskFreeRate: c.RiskFreeRate,
		Volatility:   c.Volatility,
	}
}

// BatchPriceOptionsCommand 批量定价命令
type BatchPriceOptionsCommand struct {
	Contracts []PriceOptionCommand `json:"contracts"`
	BatchID   string               `json:"batch_id"`
}

// BatchFailure 批量定价中单个合约的失败信息
type BatchFailure struct {
	Index  int    `json:"index"`
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
	Code   string `json:"code"`
}

// BatchPricingResult 批量定价结果
type BatchPricingResult struct {
	BatchID      string                  `json:"batch_id"`
	Results      []*domain.PricingResult `json:"results"`
	Failures     []BatchFailure          `json:"failures"`
	SuccessCount int                     `json:"success_count"`
	FailureCount int                     `json:"failure_count"`
	AverageTime  float64                 `json:"average_time"` // 秒
}

// ImpliedVolatilityQuery 隐含波动率查询
type ImpliedVolatilityQuery struct {
	Symbol          string  `json:"symbol"`
	OptionType      string  `json:"option_type"`
	MarketPrice     float64 `json:"market_price"`
	UnderlyingPrice float64 `json:"underlying_price"`
	StrikePrice     float64 `json:"strike_price"`
	RiskFreeRate    float64 `json:"risk_free_rate"`
	TimeToExpiry    float64 `json:"time_to_expiry"`
	ExpiryDate      int64   `json:"expiry_date"`
}

// ImpliedVolatilityResult 隐含波动率结果
type ImpliedVolatilityResult struct {
	Symbol            string  `json:"symbol"`
	ImpliedVolatility float64 `json:"implied_volatility"`
	ModelPrice        float64 `json:"model_price"`
}

// Position 组合中的一笔持仓
type Position struct {
	ContractSpec
	Quantity float64 `json:"quantity"`
}

// PortfolioRiskCommand 组合风险计算命令，MarketData 以标的代码为键
type PortfolioRiskCommand struct {
	PortfolioID string                       `json:"portfolio_id"`
	Positions   []Position                   `json:"positions"`
	MarketData  map[string]domain.MarketData `json:"market_data"`
}

// PositionRisk 单笔持仓的估值与按数量加权的风险
type PositionRisk struct {
	Symbol         string  `json:"symbol"`
	InstrumentType string  `json:"instrument_type"`
	Quantity       float64 `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	Value          float64 `json:"value"`
	Delta          float64 `json:"delta"`
	Gamma          float64 `json:"gamma"`
	Vega           float64 `json:"vega"`
	Theta          float64 `json:"theta"`
}

// PortfolioRisk 组合风险汇总
type PortfolioRisk struct {
	PortfolioID  string         `json:"portfolio_id"`
	Positions    []PositionRisk `json:"positions"`
	TotalValue   float64        `json:"total_value"`
	TotalDelta   float64        `json:"total_delta"`
	TotalGamma   float64        `json:"total_gamma"`
	TotalVega    float64        `json:"total_vega"`
	TotalTheta   float64        `json:"total_theta"`
	VaR95        float64        `json:"var_95"`
	ES95         float64        `json:"es_95"`
	Scenarios    int            `json:"scenarios"`
	HorizonDays  int            `json:"horizon_days"`
	CalculatedAt int64          `json:"calculated_at"`
}
