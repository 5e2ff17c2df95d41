package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Greeks 希腊字母
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
}

// Valuation 一次完整估值：价格与全部 Greeks
type Valuation struct {
	Price  float64 `json:"price"`
	Greeks Greeks  `json:"greeks"`
	HasRho bool    `json:"has_rho"`
}

// rhoProvider 提供解析 Rho 的工具
type rhoProvider interface {
	Rho(md MarketData) (float64, bool, error)
}

// Value 对工具做一次完整估值，任一步失败则整体失败
func Value(inst Instrument, md MarketData) (Valuation, error) {
	var (
		v   Valuation
		err error
	)
	if v.Price, err = inst.Price(md); err != nil {
		return Valuation{}, err
	}
	if v.Greeks.Delta, err = inst.Delta(md); err != nil {
		return Valuation{}, err
	}
	if v.Greeks.Gamma, err = inst.Gamma(md); err != nil {
		return Valuation{}, err
	}
	if v.Greeks.Vega, err = inst.Vega(md); err != nil {
		return Valuation{}, err
	}
	if v.Greeks.Theta, err = inst.Theta(md); err != nil {
		return Valuation{}, err
	}
	if rp, ok := inst.(rhoProvider); ok {
		if v.Greeks.Rho, v.HasRho, err = rp.Rho(md); err != nil {
			return Valuation{}, err
		}
	}
	return v, nil
}

// PricingResult 定价结果实体
type PricingResult struct {
	ID              uint            `json:"id"`
	ResultID        string          `json:"result_id"`
	CreatedAt       time.Time       `json:"created_at"`
	Symbol          string          `json:"symbol"`
	InstrumentType  string          `json:"instrument_type"`
	OptionType      OptionType      `json:"option_type"`
	PricingModel    string          `json:"pricing_model"`
	Strike          decimal.Decimal `json:"strike"`
	TimeToExpiry    float64         `json:"time_to_expiry"`
	UnderlyingPrice decimal.Decimal `json:"underlying_price"`
	Volatility      decimal.Decimal `json:"volatility"`
	RiskFreeRate    decimal.Decimal `json:"risk_free_rate"`
	OptionPrice     decimal.Decimal `json:"option_price"`
	Delta           decimal.Decimal `json:"delta"`
	Gamma           decimal.Decimal `json:"gamma"`
	Theta           decimal.Decimal `json:"theta"`
	Vega            decimal.Decimal `json:"vega"`
	Rho             decimal.Decimal `json:"rho"`
	HasRho          bool            `json:"has_rho"`
	CalculatedAt    int64           `json:"calculated_at"`
}

// PricedTerms 定价结果需要记录的合约信息
type PricedTerms interface {
	AssetID() string
	InstrumentType() string
	OptionType() OptionType
	Strike() float64
	TimeToExpiry() float64
}

// NewPricingResult 由估值结果构造定价结果实体
func NewPricingResult(terms PricedTerms, model string, md MarketData, v Valuation, now time.Time) *PricingResult {
	return &PricingResult{
		Symbol:          terms.AssetID(),
		InstrumentType:  terms.InstrumentType(),
		OptionType:      terms.OptionType(),
		PricingModel:    model,
		Strike:          decimal.NewFromFloat(terms.Strike()),
		TimeToExpiry:    terms.TimeToExpiry(),
		UnderlyingPrice: decimal.NewFromFloat(md.SpotPrice),
		Volatility:      decimal.NewFromFloat(md.Volatility),
		RiskFreeRate:    decimal.NewFromFloat(md.RiskFreeRate),
		OptionPrice:     decimal.NewFromFloat(v.Price),
		Delta:           decimal.NewFromFloat(v.Greeks.Delta),
		Gamma:           decimal.NewFromFloat(v.Greeks.Gamma),
		Theta:           decimal.NewFromFloat(v.Greeks.Theta),
		Vega:            decimal.NewFromFloat(v.Greeks.Vega),
		Rho:             decimal.NewFromFloat(v.Greeks.Rho),
		HasRho:          v.HasRho,
		CalculatedAt:    now.Unix(),
	}
}
