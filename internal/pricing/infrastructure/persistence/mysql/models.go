package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// PricingResultModel 定价结果数据库模型
type PricingResultModel struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	ResultID        string    `gorm:"column:result_id;type:varchar(36);uniqueIndex;not null"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	Symbol          string    `gorm:"column:symbol;type:varchar(32);index:idx_symbol_calculated,priority:1;not null"`
	InstrumentType  string    `gorm:"column:instrument_type;type:varchar(32);not null"`
	OptionType      string    `gorm:"column:option_type;type:varchar(8);not null"`
	PricingModel    string    `gorm:"column:pricing_model;type:varchar(32)"`
	Strike          string    `gorm:"column:strike;type:decimal(32,18);not null"`
	TimeToExpiry    float64   `gorm:"column:time_to_expiry;not null"`
	UnderlyingPrice string    `gorm:"column:underlying_price;type:decimal(32,18);not null"`
	Volatility      string    `gorm:"column:volatility;type:decimal(32,18);not null"`
	RiskFreeRate    string    `gorm:"column:risk_free_rate;type:decimal(32,18);not null"`
	OptionPrice     string    `gorm:"column:option_price;type:decimal(32,18);not null"`
	Delta           string    `gorm:"column:delta;type:decimal(32,18)"`
	Gamma           string    `gorm:"column:gamma;type:decimal(32,18)"`
	Theta           string    `gorm:"column:theta;type:decimal(32,18)"`
	Vega            string    `gorm:"column:vega;type:decimal(32,18)"`
	Rho             string    `gorm:"column:rho;type:decimal(32,18)"`
	HasRho          bool      `gorm:"column:has_rho"`
	CalculatedAt    int64     `gorm:"column:calculated_at;type:bigint;index:idx_symbol_calculated,priority:2;not null"`
}

func (PricingResultModel) TableName() string { return "pricing_results" }

// mapping helpers

func toPricingResultModel(res *domain.PricingResult) *PricingResultModel {
	if res == nil {
		return nil
	}
	return &PricingResultModel{
		ID:              res.ID,
		ResultID:        res.ResultID,
		CreatedAt:       res.CreatedAt,
		Symbol:          res.Symbol,
		InstrumentType:  res.InstrumentType,
		OptionType:      string(res.OptionType),
		PricingModel:    res.PricingModel,
		Strike:          res.Strike.String(),
		TimeToExpiry:    res.TimeToExpiry,
		UnderlyingPrice: res.UnderlyingPrice.String(),
		Volatility:      res.Volatility.String(),
		RiskFreeRate:    res.RiskFreeRate.String(),
		OptionPrice:     res.OptionPrice.String(),
		Delta:           res.Delta.String(),
		Gamma:           res.Gamma.String(),
		Theta:           res.Theta.String(),
		Vega:            res.Vega.String(),
		Rho:             res.Rho.String(),
		HasRho:          res.HasRho,
		CalculatedAt:    res.CalculatedAt,
	}
}

func toPricingResult(m *PricingResultModel) *domain.PricingResult {
	if m == nil {
		return nil
	}
	return &domain.PricingResult{
		ID:              m.ID,
		ResultID:        m.ResultID,
		CreatedAt:       m.CreatedAt,
		Symbol:          m.Symbol,
		InstrumentType:  m.InstrumentType,
		OptionType:      domain.OptionType(m.OptionType),
		PricingModel:    m.PricingModel,
		Strike:          parseDecimal(m.Strike),
		TimeToExpiry:    m.TimeToExpiry,
		UnderlyingPrice: parseDecimal(m.UnderlyingPrice),
		Volatility:      parseDecimal(m.Volatility),
		RiskFreeRate:    parseDecimal(m.RiskFreeRate),
		OptionPrice:     parseDecimal(m.OptionPrice),
		Delta:           parseDecimal(m.Delta),
		Gamma:           parseDecimal(m.Gamma),
		Theta:           parseDecimal(m.Theta),
		Vega:            parseDecimal(m.Vega),
		Rho:             parseDecimal(m.Rho),
		HasRho:          m.HasRho,
		CalculatedAt:    m.CalculatedAt,
	}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
