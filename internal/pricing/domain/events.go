package domain

import "time"

const (
	OptionPricedEventType            = "OptionPriced"
	GreeksCalculatedEventType        = "GreeksCalculated"
	PricingErrorEventType            = "PricingError"
	BatchPricingCompletedEventType   = "BatchPricingCompleted"
	PortfolioRiskCalculatedEventType = "PortfolioRiskCalculated"
)

// OptionPricedEvent 期权定价完成事件
type OptionPricedEvent struct {
	ResultID        string     `json:"result_id"`
	Symbol          string     `json:"symbol"`
	InstrumentType  string     `json:"instrument_type"`
	OptionType      OptionType `json:"option_type"`
	StrikePrice     float64    `json:"strike_price"`
	TimeToExpiry    float64    `json:"time_to_expiry"`
	OptionPrice     float64    `json:"option_price"`
	UnderlyingPrice float64    `json:"underlying_price"`
	Volatility      float64    `json:"volatility"`
	RiskFreeRate    float64    `json:"risk_free_rate"`
	PricingModel    string     `json:"pricing_model"`
	CalculatedAt    int64      `json:"calculated_at"`
	OccurredOn      time.Time  `json:"occurred_on"`
}

// GreeksCalculatedEvent 希腊字母计算完成事件
type GreeksCalculatedEvent struct {
	ResultID        string     `json:"result_id"`
	Symbol          string     `json:"symbol"`
	OptionType      OptionType `json:"option_type"`
	StrikePrice     float64    `json:"strike_price"`
	UnderlyingPrice float64    `json:"underlying_price"`
	Delta           float64    `json:"delta"`
	Gamma           float64    `json:"gamma"`
	Theta           float64    `json:"theta"`
	Vega            float64    `json:"vega"`
	Rho             float64    `json:"rho"`
	HasRho          bool       `json:"has_rho"`
	CalculatedAt    int64      `json:"calculated_at"`
	OccurredOn      time.Time  `json:"occurred_on"`
}

// PricingErrorEvent 定价错误事件
type PricingErrorEvent struct {
	Symbol      string     `json:"symbol"`
	OptionStyle string     `json:"option_style"`
	OptionType  OptionType `json:"option_type"`
	StrikePrice float64    `json:"strike_price"`
	Error       string     `json:"error"`
	ErrorCode   string     `json:"error_code"`
	OccurredAt  int64      `json:"occurred_at"`
	OccurredOn  time.Time  `json:"occurred_on"`
}

// BatchPricingCompletedEvent 批量定价完成事件
type BatchPricingCompletedEvent struct {
	BatchID        string    `json:"batch_id"`
	Symbols        []string  `json:"symbols"`
	TotalContracts int       `json:"total_contracts"`
	SuccessCount   int       `json:"success_count"`
	FailureCount   int       `json:"failure_count"`
	AverageTime    float64   `json:"average_time"`
	CompletedAt    int64     `json:"completed_at"`
	OccurredOn     time.Time `json:"occurred_on"`
}

// PortfolioRiskCalculatedEvent 组合风险计算完成事件
type PortfolioRiskCalculatedEvent struct {
	PortfolioID  string    `json:"portfolio_id"`
	Positions    int       `json:"positions"`
	TotalValue   float64   `json:"total_value"`
	TotalDelta   float64   `json:"total_delta"`
	TotalGamma   float64   `json:"total_gamma"`
	TotalVega    float64   `json:"total_vega"`
	TotalTheta   float64   `json:"total_theta"`
	VaR95        float64   `json:"var_95"`
	CalculatedAt int64     `json:"calculated_at"`
	OccurredOn   time.Time `json:"occurred_on"`
}
