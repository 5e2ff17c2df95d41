package application

import (
	"fmt"
	"time"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

const (
	// ModelExternal 障碍/亚式期权的定价模型标签
	ModelExternal = "EXTERNAL"

	millisPerYear = 365 * 24 * 3600 * 1000.0
)

// PricedInstrument 可定价且能生成定价结果的工具
type PricedInstrument interface {
	domain.Instrument
	domain.PricedTerms
}

// InstrumentFactory 根据合约描述构造定价工具
type InstrumentFactory struct {
	defaultModel domain.PricingModel
	defaultSteps int
	engine       domain.ExoticEngine
}

// NewInstrumentFactory 创建工厂，engine 可以为 nil
func NewInstrumentFactory(defaultModel string, defaultSteps int, engine domain.ExoticEngine) (*InstrumentFactory, error) {
	model, err := domain.ParsePricingModel(defaultModel)
	if err != nil {
		return nil, err
	}
	if defaultSteps <= 0 {
		defaultSteps = domain.DefaultBinomialSteps
	}
	return &InstrumentFactory{defaultModel: model, defaultSteps: defaultSteps, engine: engine}, nil
}

// Build 构造工具并返回其定价模型标签
func (f *InstrumentFactory) Build(spec ContractSpec, now time.Time) (PricedInstrument, string, error) {
	if spec.Symbol == "" {
		return nil, "", fmt.Errorf("%w: symbol is required", domain.ErrInvalidArgument)
	}
	style, err := domain.ParseOptionStyle(spec.OptionStyle)
	if err != nil {
		return nil, "", err
	}
	optionType, err := domain.ParseOptionType(spec.OptionType)
	if err != nil {
		return nil, "", err
	}
	T := timeToExpiry(spec.TimeToExpiry, spec.ExpiryDate, now)

	switch style {
	case domain.OptionStyleAmerican:
		o, err := domain.NewAmericanOption(optionType, spec.StrikePrice, T, spec.Symbol, f.steps(spec.BinomialSteps))
		if err != nil {
			return nil, "", err
		}
		return o, string(domain.PricingModelBinomial), nil

	case domain.OptionStyleBarrier:
		barrierType, err := domain.ParseBarrierType(spec.BarrierType)
		if err != nil {
			return nil, "", err
		}
		o, err := domain.NewBarrierOption(optionType, spec.StrikePrice, spec.Barrier, barrierType, T, spec.Symbol, spec.Rebate, f.engine)
		if err != nil {
			return nil, "", err
		}
		return o, ModelExternal, nil

	case domain.OptionStyleAsian:
		averageType, err := domain.ParseAverageType(spec.AverageType)
		if err != nil {
			return nil, "", err
		}
		o, err := domain.NewAsianOption(optionType, spec.StrikePrice, T, spec.Symbol, averageType, spec.NumFixings, spec.RunningSum, spec.PastFixings, f.engine)
		if err != nil {
			return nil, "", err
		}
		return o, ModelExternal, nil

	default:
		return f.buildEuropean(spec, optionType, T)
	}
}

func (f *InstrumentFactory) buildEuropean(spec ContractSpec, optionType domain.OptionType, T float64) (PricedInstrument, string, error) {
	model := f.defaultModel
	if spec.PricingModel != "" {
		m, err := domain.ParsePricingModel(spec.PricingModel)
		if err != nil {
			return nil, "", err
		}
		model = m
	}
	o, err := domain.NewEuropeanOption(optionType, spec.StrikePrice, T, spec.Symbol, model)
	if err != nil {
		return nil, "", err
	}
	if err := o.SetBinomialSteps(f.steps(spec.BinomialSteps)); err != nil {
		return nil, "", err
	}
	if model == domain.PricingModelMertonJumpDiffusion {
		if err := o.SetJumpParameters(spec.JumpIntensity, spec.JumpMean, spec.JumpVolatility); err != nil {
			return nil, "", err
		}
	}
	return o, string(model), nil
}

func (f *InstrumentFactory) steps(requested int) int {
	if requested != 0 {
		return requested
	}
	return f.defaultSteps
}

// timeToExpiry expiryDate 大于 0 时按到期时间戳折算年化期限，已过期记为 0
func timeToExpiry(T float64, expiryDate int64, now time.Time) float64 {
	if expiryDate <= 0 {
		return T
	}
	years := float64(expiryDate-now.UnixMilli()) / millisPerYear
	if years < 0 {
		return 0
	}
	return years
}
