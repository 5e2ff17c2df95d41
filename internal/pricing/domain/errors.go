package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument 构造参数、变更参数或市场数据不合法
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrComputationFault 定价结果为 NaN/Inf 或违反符号约束
	ErrComputationFault = errors.New("computation fault")
	// ErrUnsupportedConfiguration 定价模型未知或外部定价引擎不可用
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func computationFault(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrComputationFault, fmt.Sprintf(format, args...))
}

func unsupportedConfiguration(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedConfiguration, fmt.Sprintf(format, args...))
}

// ErrorCode 返回错误对应的事件错误码
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return "INVALID_ARGUMENT"
	case errors.Is(err, ErrComputationFault):
		return "COMPUTATION_FAULT"
	case errors.Is(err, ErrUnsupportedConfiguration):
		return "UNSUPPORTED_CONFIGURATION"
	default:
		return "INTERNAL"
	}
}
