// 包 定价服务的领域模型：解析公式、二叉树、跳跃扩散与有限差分希腊字母
package domain

import (
	"math"
	"strings"
)

// OptionType 期权类型
type OptionType string

const (
	OptionTypeCall OptionType = "CALL" // 看涨期权
	OptionTypePut  OptionType = "PUT"  // 看跌期权
)

// ParseOptionType 解析期权类型，大小写不敏感
func ParseOptionType(s string) (OptionType, error) {
	switch OptionType(strings.ToUpper(strings.TrimSpace(s))) {
	case OptionTypeCall:
		return OptionTypeCall, nil
	case OptionTypePut:
		return OptionTypePut, nil
	}
	return "", invalidArgument("unknown option type %q", s)
}

func (t OptionType) valid() bool {
	return t == OptionTypeCall || t == OptionTypePut
}

// PricingModel 欧式期权定价模型
type PricingModel string

const (
	PricingModelBlackScholes        PricingModel = "BLACK_SCHOLES"
	PricingModelBinomial            PricingModel = "BINOMIAL"
	PricingModelMertonJumpDiffusion PricingModel = "MERTON_JUMP_DIFFUSION"
)

// ParsePricingModel 解析定价模型，空字符串返回 Black-Scholes
func ParsePricingModel(s string) (PricingModel, error) {
	switch PricingModel(strings.ToUpper(strings.TrimSpace(s))) {
	case "", PricingModelBlackScholes:
		return PricingModelBlackScholes, nil
	case PricingModelBinomial:
		return PricingModelBinomial, nil
	case PricingModelMertonJumpDiffusion:
		return PricingModelMertonJumpDiffusion, nil
	}
	return "", unsupportedConfiguration("unknown pricing model %q", s)
}

// OptionStyle 期权行权方式
type OptionStyle string

const (
	OptionStyleEuropean OptionStyle = "EUROPEAN"
	OptionStyleAmerican OptionStyle = "AMERICAN"
	OptionStyleBarrier  OptionStyle = "BARRIER"
	OptionStyleAsian    OptionStyle = "ASIAN"
)

// ParseOptionStyle 解析行权方式，空字符串返回欧式
func ParseOptionStyle(s string) (OptionStyle, error) {
	switch OptionStyle(strings.ToUpper(strings.TrimSpace(s))) {
	case "", OptionStyleEuropean:
		return OptionStyleEuropean, nil
	case OptionStyleAmerican:
		return OptionStyleAmerican, nil
	case OptionStyleBarrier:
		return OptionStyleBarrier, nil
	case OptionStyleAsian:
		return OptionStyleAsian, nil
	}
	return "", invalidArgument("unknown option style %q", s)
}

// IntrinsicValue 内在价值
func IntrinsicValue(optionType OptionType, spot, strike float64) float64 {
	if optionType == OptionTypeCall {
		return math.Max(spot-strike, 0)
	}
	return math.Max(strike-spot, 0)
}
