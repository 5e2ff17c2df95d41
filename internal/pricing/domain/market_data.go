package domain

import "math"

// MarketData 市场数据快照
// 每次定价调用按值传入，bump 计算只修改本地副本
type MarketData struct {
	SpotPrice    float64 `json:"spot_price"`     // 标的现价
	RiskFreeRate float64 `json:"risk_free_rate"` // 无风险利率
	Volatility   float64 `json:"volatility"`     // 年化波动率
}

// Validate 校验市场数据
func (md MarketData) Validate() error {
	if !isFinite(md.SpotPrice) {
		return invalidArgument("invalid spot price")
	}
	if !isFinite(md.RiskFreeRate) {
		return invalidArgument("invalid risk-free rate")
	}
	if !isFinite(md.Volatility) {
		return invalidArgument("invalid volatility")
	}
	if md.SpotPrice <= 0 {
		return invalidArgument("spot price must be positive")
	}
	if md.Volatility < 0 {
		return invalidArgument("volatility cannot be negative")
	}
	return nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
