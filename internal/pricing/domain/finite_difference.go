package domain

import "math"

const (
	// SpotBumpRatio 现价 bump 比例
	SpotBumpRatio = 0.01
	// VolatilityBump 波动率绝对 bump
	VolatilityBump = 0.01
	// ThetaBump 一个自然日（年）
	ThetaBump = 1.0 / 365.0
)

// PriceFunc 以市场数据与剩余期限为参数的定价函数
type PriceFunc func(md MarketData, timeToExpiry float64) (float64, error)

// BumpDelta 中心差分 Delta，h = 1% 现价
func BumpDelta(price PriceFunc, md MarketData, timeToExpiry float64) (float64, error) {
	h := md.SpotPrice * SpotBumpRatio

	up, down := md, md
	up.SpotPrice += h
	down.SpotPrice -= h

	priceUp, err := price(up, timeToExpiry)
	if err != nil {
		return 0, err
	}
	priceDown, err := price(down, timeToExpiry)
	if err != nil {
		return 0, err
	}
	return (priceUp - priceDown) / (2 * h), nil
}

// BumpGamma 对 BumpDelta 再做一次中心差分
// 内层 Delta 在各自的 bump 后现价上重新取 1% 步长，共四次定价
func BumpGamma(price PriceFunc, md MarketData, timeToExpiry float64) (float64, error) {
	h := md.SpotPrice * SpotBumpRatio

	up, down := md, md
	up.SpotPrice += h
	down.SpotPrice -= h

	deltaUp, err := BumpDelta(price, up, timeToExpiry)
	if err != nil {
		return 0, err
	}
	deltaDown, err := BumpDelta(price, down, timeToExpiry)
	if err != nil {
		return 0, err
	}
	return (deltaUp - deltaDown) / (2 * h), nil
}

// BumpVega 中心差分 Vega，向下 bump 时波动率不低于 0
func BumpVega(price PriceFunc, md MarketData, timeToExpiry float64) (float64, error) {
	up, down := md, md
	up.Volatility += VolatilityBump
	down.Volatility = math.Max(0, md.Volatility-VolatilityBump)

	priceUp, err := price(up, timeToExpiry)
	if err != nil {
		return 0, err
	}
	priceDown, err := price(down, timeToExpiry)
	if err != nil {
		return 0, err
	}
	return (priceUp - priceDown) / (2 * VolatilityBump), nil
}

// ForwardTheta 前向时间衰减差分 (P(T−Δ) − P(T)) / Δ
// 剩余期限不足一天时返回 0
func ForwardTheta(price PriceFunc, md MarketData, timeToExpiry float64) (float64, error) {
	if timeToExpiry < ThetaBump {
		return 0, nil
	}
	current, err := price(md, timeToExpiry)
	if err != nil {
		return 0, err
	}
	decayed, err := price(md, math.Max(0, timeToExpiry-ThetaBump))
	if err != nil {
		return 0, err
	}
	return (decayed - current) / ThetaBump, nil
}
